package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const rosterFolder = "rosters"

func fetchRosters(c *gin.Context) []models.RosterImage {
	rosters := []models.RosterImage{}

	err := initializers.DB.From("roster_images").
		Order(goqu.C("date").Desc()).
		ScanStructsContext(c.Request.Context(), &rosters)
	if err != nil {
		zap.S().Errorf("failed to fetch rosters: %v", err)
		return []models.RosterImage{}
	}
	return rosters
}

// GetRoster returns one roster, newest first, picked by ?index=n. Indexes
// past either end are clamped.
func GetRoster(c *gin.Context) {
	index := 0
	if raw := c.Query("index"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a number", "details": err.Error()})
			return
		}
		index = parsed
	}

	c.JSON(http.StatusOK, rosterPage(fetchRosters(c), index))
}

func rosterPage(rosters []models.RosterImage, index int) models.RosterPage {
	page := models.RosterPage{Total: len(rosters)}
	if len(rosters) == 0 {
		return page
	}

	page.Index = min(max(index, 0), len(rosters)-1)
	page.Roster = &rosters[page.Index]
	return page
}

func GetRosters(c *gin.Context) {
	c.JSON(http.StatusOK, fetchRosters(c))
}

func CreateRoster(c *gin.Context) {
	var form models.RosterImageForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid roster", "details": err.Error()})
		return
	}

	date, err := time.Parse(models.DateLayout, form.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD", "details": err.Error()})
		return
	}

	pdfURL, err := uploadFile(c, "pdf", rosterFolder)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	if pdfURL == "" {
		pdfURL = form.PdfUrl
	}
	if pdfURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A PDF file or pdfUrl is required"})
		return
	}

	var created models.RosterImage
	_, err = initializers.DB.Insert("roster_images").
		Rows(models.RosterImage{Date: date, Pdf_Url: pdfURL}).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &created)
	if err != nil {
		zap.S().Errorf("failed to create roster: %v", err)
		removeStoredObject(c, pdfURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create roster"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func UpdateRoster(c *gin.Context) {
	rosterID, ok := parseID(c, "roster_id")
	if !ok {
		return
	}

	var form models.RosterImageForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid roster", "details": err.Error()})
		return
	}

	date, err := time.Parse(models.DateLayout, form.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD", "details": err.Error()})
		return
	}

	var current models.RosterImage
	found, err := initializers.DB.From("roster_images").
		Where(goqu.C("id").Eq(rosterID)).
		ScanStructContext(c.Request.Context(), &current)
	if err != nil {
		zap.S().Errorf("failed to load roster %s: %v", rosterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update roster"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Roster not found"})
		return
	}

	pdfURL, err := uploadFile(c, "pdf", rosterFolder)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	if pdfURL == "" {
		pdfURL = lo.Ternary(form.PdfUrl != "", form.PdfUrl, current.Pdf_Url)
	}

	_, err = initializers.DB.Update("roster_images").
		Set(goqu.Record{"date": date, "pdf_url": pdfURL, "updated_at": time.Now()}).
		Where(goqu.C("id").Eq(rosterID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		zap.S().Errorf("failed to update roster %s: %v", rosterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update roster"})
		return
	}

	if pdfURL != current.Pdf_Url {
		removeStoredObject(c, current.Pdf_Url)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Roster updated", "pdfUrl": pdfURL})
}

func DeleteRoster(c *gin.Context) {
	rosterID, ok := parseID(c, "roster_id")
	if !ok {
		return
	}

	var pdfURL string
	found, err := initializers.DB.Delete("roster_images").
		Where(goqu.C("id").Eq(rosterID)).
		Returning("pdf_url").
		Executor().
		ScanValContext(c.Request.Context(), &pdfURL)
	if err != nil {
		zap.S().Errorf("failed to delete roster %s: %v", rosterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete roster"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Roster not found"})
		return
	}

	removeStoredObject(c, pdfURL)
	c.JSON(http.StatusOK, gin.H{"message": "Roster deleted"})
}
