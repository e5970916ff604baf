package s3client

import "time"

type Option func(c *S3Client)

func ConnAttempts(attempts int) Option {
	return func(c *S3Client) {
		c.connAttempts = attempts
	}
}

// ConnTimeout is the pause between connection attempts.
func ConnTimeout(timeout time.Duration) Option {
	return func(c *S3Client) {
		c.connTimeout = timeout
	}
}

func Region(region string) Option {
	return func(c *S3Client) {
		c.region = region
	}
}

// UsePathStyle overrides the default, which is path style whenever a custom
// endpoint is set.
func UsePathStyle(use bool) Option {
	return func(c *S3Client) {
		c.usePathStyle = use
	}
}

// RetryMaxAttempts bounds the SDK's own retries of a single request.
func RetryMaxAttempts(attempts int) Option {
	return func(c *S3Client) {
		c.retryMaxAttempts = attempts
	}
}
