package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/newsletters/", "March Bulletin.PDF")

	assert.True(t, strings.HasPrefix(key, "newsletters/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotContains(t, key, "March")
	assert.NotEqual(t, key, ObjectKey("newsletters", "March Bulletin.PDF"))
}

func TestObjectKey_NoExtension(t *testing.T) {
	key := ObjectKey("team", "portrait")
	assert.Len(t, strings.TrimPrefix(key, "team/"), 36)
}

func TestBucketStore_KeyFor(t *testing.T) {
	store := &BucketStore{name: "church-bucket"}

	tests := []struct {
		name     string
		url      string
		expected string
		ok       bool
	}{
		{"own object", "https://storage.googleapis.com/church-bucket/photos/abc.jpg", "photos/abc.jpg", true},
		{"other bucket", "https://storage.googleapis.com/another/photos/abc.jpg", "", false},
		{"external link", "https://example.com/bulletin.pdf", "", false},
		{"bucket root", "https://storage.googleapis.com/church-bucket/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := store.keyFor(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, key)
		})
	}
}

func TestObjectStoreOverride(t *testing.T) {
	old := GetObjectStore()
	t.Cleanup(func() { SetObjectStore(old) })

	SetObjectStore(nil)
	assert.Nil(t, GetObjectStore())

	store := &BucketStore{name: "church-bucket"}
	SetObjectStore(store)
	assert.Same(t, store, GetObjectStore())
}
