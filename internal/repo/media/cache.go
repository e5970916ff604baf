package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/repo"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const folderKeyPrefix = "media:folder:"

// CachedGateway keeps folder listings in redis. Every listing of one folder
// lives in a single hash keyed by maxResults so one DEL drops them all.
// Redis failures never fail a call; the wrapped gateway answers instead.
type CachedGateway struct {
	repo.MediaGateway

	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Interface
}

func NewCachedGateway(inner repo.MediaGateway, rdb redis.Cmdable, ttl time.Duration, l logger.Interface) *CachedGateway {
	return &CachedGateway{
		MediaGateway: inner,
		rdb:          rdb,
		ttl:          ttl,
		logger:       l,
	}
}

func folderKey(prefix string) string {
	return folderKeyPrefix + dirPrefix(prefix)
}

func (c *CachedGateway) ListFolder(ctx context.Context, prefix string, maxResults int) ([]entity.RemoteResource, error) {
	key := folderKey(prefix)
	field := strconv.Itoa(maxResults)

	b, err := c.rdb.HGet(ctx, key, field).Bytes()
	switch {
	case err == nil:
		var resources []entity.RemoteResource
		if err = json.Unmarshal(b, &resources); err == nil {
			return resources, nil
		}
		c.logger.Warn("CachedGateway - ListFolder - corrupt entry %s: %v", key, err)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("CachedGateway - ListFolder - c.rdb.HGet: %v", err)
	}

	resources, err := c.MediaGateway.ListFolder(ctx, prefix, maxResults)
	if err != nil {
		return nil, fmt.Errorf("CachedGateway - ListFolder: %w", err)
	}

	c.store(ctx, key, field, resources)

	return resources, nil
}

func (c *CachedGateway) store(ctx context.Context, key, field string, resources []entity.RemoteResource) {
	b, err := json.Marshal(resources)
	if err != nil {
		c.logger.Warn("CachedGateway - store - json.Marshal: %v", err)
		return
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, b)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		c.logger.Warn("CachedGateway - store - c.rdb.TxPipelined: %v", err)
	}
}

func (c *CachedGateway) invalidate(ctx context.Context, folder string) {
	err := c.rdb.Del(ctx, folderKey(folder)).Err()
	if err != nil {
		c.logger.Warn("CachedGateway - invalidate - c.rdb.Del: %v", err)
	}
}

func (c *CachedGateway) Upload(ctx context.Context, folder, name string, data io.Reader, size int64, contentType string) (entity.RemoteObject, error) {
	obj, err := c.MediaGateway.Upload(ctx, folder, name, data, size, contentType)
	if err != nil {
		return entity.RemoteObject{}, fmt.Errorf("CachedGateway - Upload: %w", err)
	}

	c.invalidate(ctx, folder)

	return obj, nil
}

func (c *CachedGateway) DeleteFolder(ctx context.Context, prefix string) (int, error) {
	// drop the entry even on partial failure, the listing changed either way
	defer c.invalidate(context.WithoutCancel(ctx), prefix)

	n, err := c.MediaGateway.DeleteFolder(ctx, prefix)
	if err != nil {
		return n, fmt.Errorf("CachedGateway - DeleteFolder: %w", err)
	}

	return n, nil
}
