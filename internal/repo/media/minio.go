package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/pkg/minioclient"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"github.com/minio/minio-go/v7"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
}

type MinioGateway struct {
	client  minioAPI
	bucket  string
	baseURL string
}

func NewMinioGateway(c *minioclient.MinioClient, baseURL string) *MinioGateway {
	return &MinioGateway{
		client:  c.Client,
		bucket:  c.Bucket,
		baseURL: baseURL,
	}
}

func (g *MinioGateway) Upload(ctx context.Context, folder, name string, data io.Reader, size int64, contentType string) (entity.RemoteObject, error) {
	key := objectKey(folder, name)

	_, err := g.client.PutObject(ctx, g.bucket, key, data, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return entity.RemoteObject{}, fmt.Errorf("MinioGateway - Upload - g.client.PutObject: %w", err)
	}

	return entity.RemoteObject{RemoteID: key, URL: objectURL(g.baseURL, key)}, nil
}

func (g *MinioGateway) ListFolder(ctx context.Context, prefix string, maxResults int) ([]entity.RemoteResource, error) {
	objects, err := g.list(ctx, dirPrefix(prefix), true, maxResults)
	if err != nil {
		return nil, fmt.Errorf("MinioGateway - ListFolder: %w", err)
	}

	resources := make([]entity.RemoteResource, 0, len(objects))
	for _, obj := range objects {
		resources = append(resources, entity.RemoteResource{
			RemoteID:  obj.Key,
			URL:       objectURL(g.baseURL, obj.Key),
			Format:    formatOf(obj.Key),
			Bytes:     obj.Size,
			CreatedAt: obj.LastModified,
		})
	}

	return resources, nil
}

func (g *MinioGateway) DeleteFolder(ctx context.Context, prefix string) (int, error) {
	if !entity.ValidateFolderPath(prefix) {
		return 0, fmt.Errorf("MinioGateway - DeleteFolder - %q: %w", prefix, errs.ErrInvalidFolder)
	}

	objects, err := g.list(ctx, dirPrefix(prefix), true, maxDeleteBatch)
	if err != nil {
		return 0, fmt.Errorf("MinioGateway - DeleteFolder: %w", err)
	}

	if len(objects) == 0 {
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(objects))
	for _, obj := range objects {
		objectsCh <- obj
	}
	close(objectsCh)

	var removeErrs []error
	for rErr := range g.client.RemoveObjects(ctx, g.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		removeErrs = append(removeErrs, fmt.Errorf("%s: %w", rErr.ObjectName, rErr.Err))
	}

	if len(removeErrs) > 0 {
		return len(objects) - len(removeErrs), fmt.Errorf("MinioGateway - DeleteFolder - g.client.RemoveObjects: %w", errors.Join(removeErrs...))
	}

	return len(objects), nil
}

func (g *MinioGateway) ListUserFolders(ctx context.Context) ([]entity.RemoteFolder, error) {
	folders, err := g.listPrefixes(ctx, entity.UsersRoot)
	if err != nil {
		return nil, fmt.Errorf("MinioGateway - ListUserFolders: %w", err)
	}

	return folders, nil
}

func (g *MinioGateway) ListSubmissionFolders(ctx context.Context, user string) ([]entity.RemoteFolder, error) {
	folders, err := g.listPrefixes(ctx, entity.UsersRoot+user+"/"+submissionsDir)
	if err != nil {
		return nil, fmt.Errorf("MinioGateway - ListSubmissionFolders: %w", err)
	}

	return folders, nil
}

func (g *MinioGateway) listPrefixes(ctx context.Context, prefix string) ([]entity.RemoteFolder, error) {
	objects, err := g.list(ctx, prefix, false, 0)
	if err != nil {
		return nil, err
	}

	var folders []entity.RemoteFolder
	for _, obj := range objects {
		// non-recursive listings report sub-folders as keys ending in "/"
		if !strings.HasSuffix(obj.Key, "/") {
			continue
		}
		folders = append(folders, entity.RemoteFolder{
			Name: folderName(obj.Key),
			Path: strings.TrimSuffix(obj.Key, "/"),
		})
	}

	return folders, nil
}

// list drains ListObjects, stopping early once limit objects were seen.
// A limit of 0 reads everything.
func (g *MinioGateway) list(ctx context.Context, prefix string, recursive bool, limit int) ([]minio.ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []minio.ObjectInfo
	for obj := range g.client.ListObjects(ctx, g.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
		MaxKeys:   limit,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("g.client.ListObjects: %w", obj.Err)
		}

		objects = append(objects, obj)
		if limit > 0 && len(objects) == limit {
			break
		}
	}

	return objects, nil
}
