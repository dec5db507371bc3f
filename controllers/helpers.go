package controllers

import (
	"errors"
	"net/http"

	"github.com/ChurchPortal/middlewares"
	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNotFound = errors.New("record not found")

// parseID reads a generated row id from the path and answers 400 when it is
// not a UUID.
func parseID(c *gin.Context, param string) (string, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param, "details": err.Error()})
		return "", false
	}
	return id.String(), true
}

func currentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(middlewares.CurrentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func currentClaims(c *gin.Context) *services.AccessClaims {
	if v, ok := c.Get(middlewares.ClaimsKey); ok {
		if claims, ok := v.(*services.AccessClaims); ok {
			return claims
		}
	}
	return nil
}

// uploadFile stores the multipart file in field under folder. A request
// without that file is not an error; the returned URL is then empty.
func uploadFile(c *gin.Context, field, folder string) (string, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	store := services.GetObjectStore()
	if store == nil {
		return "", services.ErrStorageUnavailable
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return store.Upload(c.Request.Context(), folder, header.Filename, header.Header.Get("Content-Type"), file)
}

func respondUploadError(c *gin.Context, err error) {
	zap.S().Errorf("upload failed: %v", err)
	if errors.Is(err, services.ErrStorageUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File uploads are not available"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file", "details": err.Error()})
}

// removeStoredObject deletes an uploaded file after its row is gone. Failures
// only leave an orphaned object behind, so they are logged.
func removeStoredObject(c *gin.Context, url string) {
	store := services.GetObjectStore()
	if store == nil || url == "" {
		return
	}
	if err := store.Delete(c.Request.Context(), url); err != nil {
		zap.S().Warnf("failed to delete stored object %s: %v", url, err)
	}
}
