package controllers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ChurchPortal/guards"
	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/middlewares"
	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

// SetupTestDB creates a mock database and sets it as the global DB for testing
func SetupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	// Store original DB to restore after test
	originalDB := initializers.DB
	initializers.DB = goqu.New("postgres", db)

	// Return cleanup function
	cleanup := func() {
		// Small delay to allow goroutines (like approval emails) to complete
		time.Sleep(10 * time.Millisecond)
		db.Close()
		initializers.DB = originalDB
	}

	return db, mock, cleanup
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

// SetJSONBody attaches body to the request as JSON
func SetJSONBody(c *gin.Context, method string, body any) {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	c.Request = httptest.NewRequest(method, "/", reader)
	c.Request.Header.Set("Content-Type", "application/json")
}

// SetAuthenticatedUser sets what CheckAuth stores for a signed-in caller
func SetAuthenticatedUser(c *gin.Context, user models.User, state guards.AccessState) {
	c.Set(middlewares.CurrentUserKey, user)
	c.Set(middlewares.AccessStateKey, state)
	c.Set(middlewares.ClaimsKey, &services.AccessClaims{UserID: user.ID, Email: user.Email, ExpiresAt: time.Now().Add(time.Hour)})
	c.Set(middlewares.AccessTokenKey, "test-access-token")
}

// fakeStore records uploads and deletes instead of talking to a bucket
type fakeStore struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakeStore) Upload(_ context.Context, folder, filename, _ string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	io.Copy(io.Discard, r)

	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://storage.googleapis.com/test-bucket/" + services.ObjectKey(folder, filename)
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStore) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

// SetupFakeStore installs a fakeStore as the object store for the test
func SetupFakeStore(t *testing.T) *fakeStore {
	store := &fakeStore{}
	original := services.GetObjectStore()
	services.SetObjectStore(store)
	t.Cleanup(func() { services.SetObjectStore(original) })
	return store
}
