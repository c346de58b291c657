package images

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/janisto/provider-profile/internal/testutil"
)

func setupMinIO(t *testing.T) *MinIOStorage {
	t.Helper()
	env := testutil.SkipIfMinIOUnavailable(t)
	ctx := context.Background()

	admin, err := minio.New(env.Endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(env.AccessKey, env.SecretKey, ""),
	})
	if err != nil {
		t.Fatalf("minio client: %v", err)
	}
	bucket := "test-" + uuid.NewString()[:8]
	if err := admin.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		t.Fatalf("make bucket: %v", err)
	}
	t.Cleanup(func() {
		for obj := range admin.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
			_ = admin.RemoveObject(ctx, bucket, obj.Key, minio.RemoveObjectOptions{})
		}
		_ = admin.RemoveBucket(ctx, bucket)
	})

	store, err := NewMinIOStorage(ctx, MinIOConfig{
		Endpoint:  "http://" + env.Endpoint,
		AccessKey: env.AccessKey,
		SecretKey: env.SecretKey,
		Bucket:    bucket,
	})
	if err != nil {
		t.Fatalf("NewMinIOStorage: %v", err)
	}
	return store
}

func TestMinIOPutAndRemove(t *testing.T) {
	store := setupMinIO(t)
	ctx := context.Background()
	key := "uploads/user-1/a.png"

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := store.Put(ctx, key, "image/png", []byte("png")); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, err := store.client.StatObject(ctx, store.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.ContentType != "image/png" || info.Size != 3 {
		t.Errorf("unexpected object info: %s %d", info.ContentType, info.Size)
	}

	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewMinIOStorageMissingBucket(t *testing.T) {
	env := testutil.SkipIfMinIOUnavailable(t)
	_, err := NewMinIOStorage(context.Background(), MinIOConfig{
		Endpoint:  env.Endpoint,
		AccessKey: env.AccessKey,
		SecretKey: env.SecretKey,
		Bucket:    "missing-" + uuid.NewString()[:8],
	})
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
