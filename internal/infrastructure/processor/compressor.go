package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	// webp sources are decoded, output is always JPEG
	_ "golang.org/x/image/webp"
)

const (
	_defaultThreshold    = 5 * 1024 * 1024
	_defaultTarget       = 8 * 1024 * 1024
	_defaultMaxDimension = 1920
	_defaultStartQuality = 80
	_defaultMinQuality   = 40
	_qualityStep         = 10
)

// Compressor re-encodes oversized images as JPEG that fits a square box of
// maxDimension, lowering quality until the result drops under target.
type Compressor struct {
	threshold    int64
	target       int64
	maxDimension int
	startQuality int
	minQuality   int
}

func New(opts ...Option) *Compressor {
	c := &Compressor{
		threshold:    _defaultThreshold,
		target:       _defaultTarget,
		maxDimension: _defaultMaxDimension,
		startQuality: _defaultStartQuality,
		minQuality:   _defaultMinQuality,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compress returns data untouched when it is under the threshold, cannot be
// decoded or encoded, or would not get any smaller.
func (c *Compressor) Compress(data []byte) []byte {
	if int64(len(data)) <= c.threshold {
		return data
	}

	out, err := c.compress(data)
	if err != nil || len(out) >= len(data) {
		return data
	}

	return out
}

func (c *Compressor) compress(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("Compressor - compress - imaging.Decode: %w", err)
	}

	img = c.fit(img)

	var out []byte
	for q := c.startQuality; q >= c.minQuality; q -= _qualityStep {
		var buf bytes.Buffer

		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q))
		if err != nil {
			return nil, fmt.Errorf("Compressor - compress - imaging.Encode: %w", err)
		}

		out = buf.Bytes()
		if int64(len(out)) <= c.target {
			break
		}
	}

	return out, nil
}

// fit scales down to maxDimension on the longer side, never up.
func (c *Compressor) fit(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= c.maxDimension && b.Dy() <= c.maxDimension {
		return img
	}

	return imaging.Fit(img, c.maxDimension, c.maxDimension, imaging.Lanczos)
}
