package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const publicStorageHost = "https://storage.googleapis.com/"

var ErrStorageUnavailable = errors.New("object storage not initialized")

// ObjectStore holds uploaded newsletters, rosters, team portraits and photos.
type ObjectStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

type BucketStore struct {
	bucket *storage.BucketHandle
	name   string
}

var objectStore ObjectStore

func InitStorageService(app *firebase.App) {
	if app == nil {
		zap.S().Warn("Firebase app unavailable. File uploads are disabled.")
		return
	}

	client, err := app.Storage(context.Background())
	if err != nil {
		zap.S().Errorf("Failed to get Firebase storage client: %v", err)
		return
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		zap.S().Errorf("Failed to open storage bucket: %v", err)
		return
	}

	objectStore = NewBucketStore(bucket)
	zap.S().Infof("Storage service initialized with bucket %s", bucket.BucketName())
}

func NewBucketStore(bucket *storage.BucketHandle) *BucketStore {
	return &BucketStore{bucket: bucket, name: bucket.BucketName()}
}

// GetObjectStore returns nil when storage was never initialized.
func GetObjectStore() ObjectStore {
	return objectStore
}

// SetObjectStore replaces the process-wide store. Tests use it to install fakes.
func SetObjectStore(store ObjectStore) {
	objectStore = store
}

// Upload writes r under folder/<uuid><ext> and returns the public URL.
func (b *BucketStore) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	key := ObjectKey(folder, filename)

	w := b.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.PredefinedACL = "publicRead"
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", key, err)
	}

	return publicStorageHost + b.name + "/" + key, nil
}

// Delete removes the object behind a URL returned by Upload. URLs that point
// elsewhere, and objects already gone, are left alone.
func (b *BucketStore) Delete(ctx context.Context, url string) error {
	key, ok := b.keyFor(url)
	if !ok {
		return nil
	}

	err := b.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (b *BucketStore) keyFor(url string) (string, bool) {
	prefix := publicStorageHost + b.name + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

// ObjectKey builds a collision-free key that keeps the upload's extension.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
}
