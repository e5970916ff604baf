package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/pkg/s3client"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type S3Gateway struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Gateway serves object URLs as baseURL/key.
func NewS3Gateway(c *s3client.S3Client, baseURL string) *S3Gateway {
	return &S3Gateway{
		client:  c.Client,
		bucket:  c.Bucket,
		baseURL: baseURL,
	}
}

func (g *S3Gateway) Upload(ctx context.Context, folder, name string, data io.Reader, size int64, contentType string) (entity.RemoteObject, error) {
	key := objectKey(folder, name)

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return entity.RemoteObject{}, fmt.Errorf("S3Gateway - Upload - g.client.PutObject: %w", err)
	}

	return entity.RemoteObject{RemoteID: key, URL: objectURL(g.baseURL, key)}, nil
}

// ListFolder returns a single page of at most maxResults objects.
func (g *S3Gateway) ListFolder(ctx context.Context, prefix string, maxResults int) ([]entity.RemoteResource, error) {
	out, err := g.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(g.bucket),
		Prefix:  aws.String(dirPrefix(prefix)),
		MaxKeys: aws.Int32(int32(maxResults)),
	})
	if err != nil {
		return nil, fmt.Errorf("S3Gateway - ListFolder - g.client.ListObjectsV2: %w", err)
	}

	resources := make([]entity.RemoteResource, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		resources = append(resources, entity.RemoteResource{
			RemoteID:  key,
			URL:       objectURL(g.baseURL, key),
			Format:    formatOf(key),
			Bytes:     aws.ToInt64(obj.Size),
			CreatedAt: aws.ToTime(obj.LastModified),
		})
	}

	return resources, nil
}

func (g *S3Gateway) DeleteFolder(ctx context.Context, prefix string) (int, error) {
	if !entity.ValidateFolderPath(prefix) {
		return 0, fmt.Errorf("S3Gateway - DeleteFolder - %q: %w", prefix, errs.ErrInvalidFolder)
	}

	out, err := g.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(g.bucket),
		Prefix:  aws.String(dirPrefix(prefix)),
		MaxKeys: aws.Int32(maxDeleteBatch),
	})
	if err != nil {
		return 0, fmt.Errorf("S3Gateway - DeleteFolder - g.client.ListObjectsV2: %w", err)
	}

	if len(out.Contents) == 0 {
		return 0, nil
	}

	ids := make([]types.ObjectIdentifier, 0, len(out.Contents))
	for _, obj := range out.Contents {
		ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
	}

	del, err := g.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(g.bucket),
		Delete: &types.Delete{
			Objects: ids,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("S3Gateway - DeleteFolder - g.client.DeleteObjects: %w", err)
	}

	if len(del.Errors) > 0 {
		first := del.Errors[0]
		return len(ids) - len(del.Errors), fmt.Errorf("S3Gateway - DeleteFolder - %d of %d objects kept, first %s: %s",
			len(del.Errors), len(ids), aws.ToString(first.Key), aws.ToString(first.Message))
	}

	return len(ids), nil
}

func (g *S3Gateway) ListUserFolders(ctx context.Context) ([]entity.RemoteFolder, error) {
	folders, err := g.listPrefixes(ctx, entity.UsersRoot)
	if err != nil {
		return nil, fmt.Errorf("S3Gateway - ListUserFolders: %w", err)
	}

	return folders, nil
}

func (g *S3Gateway) ListSubmissionFolders(ctx context.Context, user string) ([]entity.RemoteFolder, error) {
	folders, err := g.listPrefixes(ctx, entity.UsersRoot+user+"/"+submissionsDir)
	if err != nil {
		return nil, fmt.Errorf("S3Gateway - ListSubmissionFolders: %w", err)
	}

	return folders, nil
}

// listPrefixes enumerates the direct sub-folders of prefix across all pages.
func (g *S3Gateway) listPrefixes(ctx context.Context, prefix string) ([]entity.RemoteFolder, error) {
	paginator := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(g.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var folders []entity.RemoteFolder
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("paginator.NextPage: %w", err)
		}

		for _, cp := range page.CommonPrefixes {
			p := aws.ToString(cp.Prefix)
			folders = append(folders, entity.RemoteFolder{
				Name: folderName(p),
				Path: strings.TrimSuffix(p, "/"),
			})
		}
	}

	return folders, nil
}
