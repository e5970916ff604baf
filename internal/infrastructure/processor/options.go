package processor

type Option func(*Compressor)

// Threshold is the size in bytes at or below which images pass through.
func Threshold(size int64) Option {
	return func(c *Compressor) {
		c.threshold = size
	}
}

func Target(size int64) Option {
	return func(c *Compressor) {
		c.target = size
	}
}

func MaxDimension(px int) Option {
	return func(c *Compressor) {
		c.maxDimension = px
	}
}
