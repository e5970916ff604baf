package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
)

type fakeMinio struct {
	mu      sync.Mutex
	objects map[string]int64
	failOn  map[string]bool
}

func newFakeMinio(keys ...string) *fakeMinio {
	f := &fakeMinio{objects: make(map[string]int64), failOn: make(map[string]bool)}
	for _, k := range keys {
		f.objects[k] = 1024
	}
	return f
}

func (f *fakeMinio) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	f.mu.Lock()
	f.objects[key] = int64(len(b))
	f.mu.Unlock()

	return minio.UploadInfo{Key: key, Size: int64(len(b))}, nil
}

func (f *fakeMinio) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []minio.ObjectInfo
	seen := make(map[string]bool)
	for _, k := range keys {
		if !opts.Recursive {
			rest := strings.TrimPrefix(k, opts.Prefix)
			if i := strings.Index(rest, "/"); i >= 0 {
				cp := opts.Prefix + rest[:i+1]
				if !seen[cp] {
					seen[cp] = true
					out = append(out, minio.ObjectInfo{Key: cp})
				}
				continue
			}
		}
		out = append(out, minio.ObjectInfo{Key: k, Size: f.objects[k]})
	}

	ch := make(chan minio.ObjectInfo, len(out))
	for _, o := range out {
		ch <- o
	}
	close(ch)

	return ch
}

func (f *fakeMinio) RemoveObjects(_ context.Context, _ string, objectsCh <-chan minio.ObjectInfo, _ minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errsOut []minio.RemoveObjectError
	for obj := range objectsCh {
		if f.failOn[obj.Key] {
			errsOut = append(errsOut, minio.RemoveObjectError{ObjectName: obj.Key, Err: errors.New("access denied")})
			continue
		}
		delete(f.objects, obj.Key)
	}

	ch := make(chan minio.RemoveObjectError, len(errsOut))
	for _, e := range errsOut {
		ch <- e
	}
	close(ch)

	return ch
}

func newTestMinioGateway(f *fakeMinio) *MinioGateway {
	return &MinioGateway{client: f, bucket: "media", baseURL: "http://localhost:9000/media"}
}

func TestMinioGateway_UploadListDelete(t *testing.T) {
	f := newFakeMinio()
	g := newTestMinioGateway(f)
	ctx := context.Background()
	folder := "users/jane/submissions/sub_1"

	for i := 0; i < 3; i++ {
		_, err := g.Upload(ctx, folder, fmt.Sprintf("image_%d.png", i), bytes.NewReader(make([]byte, 2048)), 2048, "image/png")
		if err != nil {
			t.Fatal(err)
		}
	}

	res, err := g.ListFolder(ctx, folder, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d resources, want maxResults=2", len(res))
	}
	if res[0].URL != "http://localhost:9000/media/"+folder+"/image_0.png" || res[0].Format != "png" {
		t.Errorf("unexpected resource %+v", res[0])
	}

	n, err := g.DeleteFolder(ctx, folder)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || len(f.objects) != 0 {
		t.Fatalf("deleted %d, %d left", n, len(f.objects))
	}
}

func TestMinioGateway_DeleteFolder_ReportsPartialFailure(t *testing.T) {
	folder := "users/jane/submissions/sub_1"
	f := newFakeMinio(folder+"/image_0.jpg", folder+"/image_1.jpg")
	f.failOn[folder+"/image_1.jpg"] = true
	g := newTestMinioGateway(f)

	n, err := g.DeleteFolder(context.Background(), folder)
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
}

func TestMinioGateway_FolderEnumeration(t *testing.T) {
	f := newFakeMinio(
		"users/jane/submissions/sub_1/image_0.jpg",
		"users/bob/submissions/sub_2/image_0.jpg",
		"users/bob/submissions/sub_3/image_0.jpg",
	)
	g := newTestMinioGateway(f)
	ctx := context.Background()

	users, err := g.ListUserFolders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].Name != "bob" || users[0].Path != "users/bob" {
		t.Fatalf("unexpected users %+v", users)
	}

	subs, err := g.ListSubmissionFolders(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 || subs[1].Name != "sub_3" {
		t.Fatalf("unexpected submissions %+v", subs)
	}
}
