package controllers

import (
	"errors"
	"net/http"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const photoFolder = "photos"

func GetPhotoFolders(c *gin.Context) {
	folders := []models.PhotoFolder{}

	err := initializers.DB.From("photo_folders").
		Order(goqu.C("name").Asc()).
		ScanStructsContext(c.Request.Context(), &folders)
	if err != nil {
		zap.S().Errorf("failed to fetch photo folders: %v", err)
		folders = []models.PhotoFolder{}
	}

	c.JSON(http.StatusOK, folders)
}

// GetPhotos lists photos newest first, optionally only those in ?folderId=.
func GetPhotos(c *gin.Context) {
	photos := []models.Photo{}

	query := initializers.DB.From("photos").Order(goqu.C("created_at").Desc())
	if folderID := c.Query("folderId"); folderID != "" {
		if _, err := uuid.Parse(folderID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folderId", "details": err.Error()})
			return
		}
		query = query.Where(goqu.C("folder_id").Eq(folderID))
	}

	if err := query.ScanStructsContext(c.Request.Context(), &photos); err != nil {
		zap.S().Errorf("failed to fetch photos: %v", err)
		photos = []models.Photo{}
	}

	c.JSON(http.StatusOK, photos)
}

func CreatePhotoFolder(c *gin.Context) {
	var form models.PhotoFolderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder name is required", "details": err.Error()})
		return
	}

	var created models.PhotoFolder
	_, err := initializers.DB.Insert("photo_folders").
		Rows(models.PhotoFolder{Name: form.Name}).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &created)
	if err != nil {
		zap.S().Errorf("failed to create photo folder: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create folder"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// DeletePhotoFolder removes the folder with every photo in it.
func DeletePhotoFolder(c *gin.Context) {
	folderID, ok := parseID(c, "folder_id")
	if !ok {
		return
	}

	var urls []string
	ctx := c.Request.Context()
	err := initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		if err := tx.Delete("photos").
			Where(goqu.C("folder_id").Eq(folderID)).
			Returning("url").
			Executor().
			ScanValsContext(ctx, &urls); err != nil {
			return err
		}

		result, err := tx.Delete("photo_folders").
			Where(goqu.C("id").Eq(folderID)).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return errNotFound
		}
		return nil
	})

	switch {
	case errors.Is(err, errNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	case err != nil:
		zap.S().Errorf("failed to delete photo folder %s: %v", folderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete folder"})
		return
	}

	for _, url := range urls {
		removeStoredObject(c, url)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted", "photosDeleted": len(urls)})
}

// UploadPhoto stores the multipart "photo" file and records it, optionally
// in the folder named by the folderId form field.
func UploadPhoto(c *gin.Context) {
	photo := models.Photo{}

	if folderID := c.PostForm("folderId"); folderID != "" {
		if _, err := uuid.Parse(folderID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid folderId", "details": err.Error()})
			return
		}
		photo.Folder_ID = &folderID
	}
	if description := c.PostForm("description"); description != "" {
		photo.Description = &description
	}

	url, err := uploadFile(c, "photo", photoFolder)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A photo file is required"})
		return
	}
	photo.Url = url

	var created models.Photo
	_, err = initializers.DB.Insert("photos").
		Rows(photo).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &created)
	if err != nil {
		zap.S().Errorf("failed to record photo: %v", err)
		removeStoredObject(c, url)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func DeletePhoto(c *gin.Context) {
	photoID, ok := parseID(c, "photo_id")
	if !ok {
		return
	}

	var url string
	found, err := initializers.DB.Delete("photos").
		Where(goqu.C("id").Eq(photoID)).
		Returning("url").
		Executor().
		ScanValContext(c.Request.Context(), &url)
	if err != nil {
		zap.S().Errorf("failed to delete photo %s: %v", photoID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	removeStoredObject(c, url)
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}
