package controllers

import (
	"net/http"
	"slices"
	"sort"
	"time"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const newsletterFolder = "newsletters"

// GetNewsletters answers with the newest issue and the archive behind it.
func GetNewsletters(c *gin.Context) {
	newsletters := []models.Newsletter{}

	err := initializers.DB.From("newsletters").
		Order(goqu.C("created_at").Desc()).
		ScanStructsContext(c.Request.Context(), &newsletters)
	if err != nil {
		zap.S().Errorf("failed to fetch newsletters: %v", err)
		newsletters = []models.Newsletter{}
	}

	c.JSON(http.StatusOK, splitNewsletters(newsletters))
}

// splitNewsletters orders by created_at itself rather than trusting the
// order rows arrived in.
func splitNewsletters(newsletters []models.Newsletter) models.NewsletterList {
	sorted := slices.Clone(newsletters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created_At.After(sorted[j].Created_At)
	})

	list := models.NewsletterList{Archive: []models.Newsletter{}}
	if len(sorted) == 0 {
		return list
	}
	list.Latest = &sorted[0]
	list.Archive = sorted[1:]
	return list
}

// CreateNewsletter takes either an uploaded "pdf" file or a pdfUrl.
func CreateNewsletter(c *gin.Context) {
	var form models.NewsletterForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid newsletter", "details": err.Error()})
		return
	}

	pdfURL, err := uploadFile(c, "pdf", newsletterFolder)
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

	newsletter := models.Newsletter{
		Title:   form.Title,
		Month:   form.Month,
		Year:    form.Year,
		Pdf_Url: pdfURL,
	}

	var created models.Newsletter
	_, err = initializers.DB.Insert("newsletters").
		Rows(newsletter).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &created)
	if err != nil {
		zap.S().Errorf("failed to create newsletter: %v", err)
		removeStoredObject(c, pdfURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create newsletter"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func UpdateNewsletter(c *gin.Context) {
	newsletterID, ok := parseID(c, "newsletter_id")
	if !ok {
		return
	}

	var form models.NewsletterForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid newsletter", "details": err.Error()})
		return
	}

	var current models.Newsletter
	found, err := initializers.DB.From("newsletters").
		Where(goqu.C("id").Eq(newsletterID)).
		ScanStructContext(c.Request.Context(), &current)
	if err != nil {
		zap.S().Errorf("failed to load newsletter %s: %v", newsletterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update newsletter"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Newsletter not found"})
		return
	}

	pdfURL, err := uploadFile(c, "pdf", newsletterFolder)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	if pdfURL == "" {
		pdfURL = lo.Ternary(form.PdfUrl != "", form.PdfUrl, current.Pdf_Url)
	}

	_, err = initializers.DB.Update("newsletters").
		Set(goqu.Record{
			"title":      form.Title,
			"month":      form.Month,
			"year":       form.Year,
			"pdf_url":    pdfURL,
			"updated_at": time.Now(),
		}).
		Where(goqu.C("id").Eq(newsletterID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		zap.S().Errorf("failed to update newsletter %s: %v", newsletterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update newsletter"})
		return
	}

	if pdfURL != current.Pdf_Url {
		removeStoredObject(c, current.Pdf_Url)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Newsletter updated", "pdfUrl": pdfURL})
}

func DeleteNewsletter(c *gin.Context) {
	newsletterID, ok := parseID(c, "newsletter_id")
	if !ok {
		return
	}

	var pdfURL string
	found, err := initializers.DB.Delete("newsletters").
		Where(goqu.C("id").Eq(newsletterID)).
		Returning("pdf_url").
		Executor().
		ScanValContext(c.Request.Context(), &pdfURL)
	if err != nil {
		zap.S().Errorf("failed to delete newsletter %s: %v", newsletterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete newsletter"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Newsletter not found"})
		return
	}

	removeStoredObject(c, pdfURL)
	c.JSON(http.StatusOK, gin.H{"message": "Newsletter deleted"})
}
