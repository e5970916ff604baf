package minioclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	_defaultConnAttempts = 5
	_defaultConnTimeout  = time.Second
)

var errBucketMissing = errors.New("bucket does not exist")

// MinioClient is a connected minio client bound to the media bucket.
type MinioClient struct {
	connAttempts int
	connTimeout  time.Duration

	endpoint  string
	accessKey string
	secretKey string
	region    string
	useSSL    bool

	Bucket string
	Client *minio.Client
}

func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, opts ...Option) (*MinioClient, error) {
	mc := &MinioClient{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		endpoint:     endpoint,
		accessKey:    accessKey,
		secretKey:    secretKey,
		Bucket:       bucket,
	}

	for _, opt := range opts {
		opt(mc)
	}

	var err error
	for mc.connAttempts > 0 {
		err = mc.connect(ctx)
		if err == nil {
			break
		}

		log.Printf("Minio is trying to connect, attempts left: %d", mc.connAttempts)

		time.Sleep(mc.connTimeout)

		mc.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("MinioClient - New - connAttempts == 0: %w", err)
	}

	return mc, nil
}

func (c *MinioClient) connect(ctx context.Context) error {
	client, err := minio.New(c.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.accessKey, c.secretKey, ""),
		Secure: c.useSSL,
		Region: c.region,
	})
	if err != nil {
		return fmt.Errorf("MinioClient - minio.New: %w", err)
	}

	ok, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return fmt.Errorf("MinioClient - client.BucketExists: %w", err)
	}
	if !ok {
		return fmt.Errorf("MinioClient - %q: %w", c.Bucket, errBucketMissing)
	}

	c.Client = client

	return nil
}
