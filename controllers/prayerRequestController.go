package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/utils"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// CreatePrayerRequest accepts requests from visitors and members alike.
// Empty content is rejected before anything reaches the database.
func CreatePrayerRequest(c *gin.Context) {
	var form models.PrayerRequestCreate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer request", "details": err.Error()})
		return
	}

	var userID *string
	if user, ok := currentUser(c); ok {
		userID = &user.ID
	}

	request, err := form.ToPrayerRequest(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var created models.PrayerRequest
	_, err = initializers.DB.Insert("prayer_requests").
		Rows(request).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &created)
	if err != nil {
		zap.S().Errorf("failed to create prayer request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit prayer request"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetPrayerWall lists the requests members may see, newest first.
func GetPrayerWall(c *gin.Context) {
	requests := []models.PrayerRequest{}

	err := initializers.DB.From("prayer_requests").
		Where(goqu.C("is_confidential").IsFalse()).
		Order(goqu.C("created_at").Desc()).
		ScanStructsContext(c.Request.Context(), &requests)
	if err != nil {
		zap.S().Errorf("failed to fetch prayer wall: %v", err)
		requests = []models.PrayerRequest{}
	}

	viewerTimezone := ""
	if user, ok := currentUser(c); ok && user.User_Timezone != nil {
		viewerTimezone = *user.User_Timezone
	}

	c.JSON(http.StatusOK, lo.Map(requests, func(r models.PrayerRequest, _ int) models.PrayerWallEntry {
		return toWallEntry(r, viewerTimezone)
	}))
}

// toWallEntry hides who posted an anonymous request from other members.
func toWallEntry(r models.PrayerRequest, viewerTimezone string) models.PrayerWallEntry {
	if r.Is_Anonymous {
		r.User_ID = nil
		r.Name = models.AnonymousName
	}

	created := r.Created_At.Format(time.RFC3339Nano)
	original := lo.FromPtr(r.User_Timezone)

	return models.PrayerWallEntry{
		PrayerRequest:    r,
		CreatedAgo:       utils.FormatRelative(created, original, viewerTimezone),
		CreatedAtDisplay: utils.FormatFull(created, original, viewerTimezone),
	}
}

func GetAllPrayerRequests(c *gin.Context) {
	requests := []models.PrayerRequest{}

	err := initializers.DB.From("prayer_requests").
		Order(goqu.C("created_at").Desc()).
		ScanStructsContext(c.Request.Context(), &requests)
	if err != nil {
		zap.S().Errorf("failed to fetch prayer requests: %v", err)
		requests = []models.PrayerRequest{}
	}

	c.JSON(http.StatusOK, requests)
}

func UpdatePrayerRequest(c *gin.Context) {
	requestID, ok := parseID(c, "request_id")
	if !ok {
		return
	}

	var form models.PrayerRequestUpdate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update", "details": err.Error()})
		return
	}

	record := goqu.Record{}
	if form.Content != nil {
		if *form.Content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrEmptyPrayerContent.Error()})
			return
		}
		record["content"] = *form.Content
	}
	if form.IsConfidential != nil {
		record["is_confidential"] = *form.IsConfidential
	}
	if len(record) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	result, err := initializers.DB.Update("prayer_requests").
		Set(record).
		Where(goqu.C("id").Eq(requestID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		zap.S().Errorf("failed to update prayer request %s: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prayer request"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prayer request updated"})
}

// DeletePrayerRequest removes the request and everyone's prayer marks on it
// in one transaction.
func DeletePrayerRequest(c *gin.Context) {
	requestID, ok := parseID(c, "request_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	err := initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		if _, err := tx.Delete("prayer_counts").
			Where(goqu.C("prayer_request_id").Eq(requestID)).
			Executor().
			ExecContext(ctx); err != nil {
			return err
		}

		result, err := tx.Delete("prayer_requests").
			Where(goqu.C("id").Eq(requestID)).
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
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer request not found"})
	case err != nil:
		zap.S().Errorf("failed to delete prayer request %s: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete prayer request"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Prayer request deleted"})
	}
}

// TogglePrayer marks or unmarks the caller as praying for a request. The join
// row and the counter change together or not at all.
func TogglePrayer(c *gin.Context) {
	requestID, ok := parseID(c, "request_id")
	if !ok {
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Profile not found"})
		return
	}

	var result models.PrayerToggleResult
	ctx := c.Request.Context()
	err := initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		var err error
		result, err = togglePrayer(ctx, tx, requestID, user.ID)
		return err
	})

	switch {
	case errors.Is(err, errNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer request not found"})
	case err != nil:
		zap.S().Errorf("failed to toggle prayer on %s for %s: %v", requestID, user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prayer count"})
	default:
		c.JSON(http.StatusOK, result)
	}
}

func togglePrayer(ctx context.Context, tx *goqu.TxDatabase, requestID, userID string) (models.PrayerToggleResult, error) {
	var existing models.PrayerCount
	found, err := tx.From("prayer_counts").
		Where(goqu.C("prayer_request_id").Eq(requestID), goqu.C("user_id").Eq(userID)).
		ScanStructContext(ctx, &existing)
	if err != nil {
		return models.PrayerToggleResult{}, err
	}

	counter := goqu.L("prayer_count + 1")
	if found {
		counter = goqu.L("GREATEST(prayer_count - 1, 0)")
		if _, err := tx.Delete("prayer_counts").
			Where(goqu.C("id").Eq(existing.ID)).
			Executor().
			ExecContext(ctx); err != nil {
			return models.PrayerToggleResult{}, err
		}
	} else {
		if _, err := tx.Insert("prayer_counts").
			Rows(models.PrayerCount{Prayer_Request_ID: requestID, User_ID: userID}).
			Executor().
			ExecContext(ctx); err != nil {
			return models.PrayerToggleResult{}, err
		}
	}

	var count int
	updated, err := tx.Update("prayer_requests").
		Set(goqu.Record{"prayer_count": counter}).
		Where(goqu.C("id").Eq(requestID)).
		Returning("prayer_count").
		Executor().
		ScanValContext(ctx, &count)
	if err != nil {
		return models.PrayerToggleResult{}, err
	}
	if !updated {
		return models.PrayerToggleResult{}, errNotFound
	}

	return models.PrayerToggleResult{Praying: !found, PrayerCount: count}, nil
}

// GetMyPrayers returns the ids of the requests the caller is praying for.
func GetMyPrayers(c *gin.Context) {
	ids := []string{}

	user, ok := currentUser(c)
	if ok {
		err := initializers.DB.From("prayer_counts").
			Select("prayer_request_id").
			Where(goqu.C("user_id").Eq(user.ID)).
			ScanValsContext(c.Request.Context(), &ids)
		if err != nil {
			zap.S().Errorf("failed to fetch prayers for %s: %v", user.ID, err)
			ids = []string{}
		}
	}

	c.JSON(http.StatusOK, gin.H{"prayerRequestIds": ids})
}
