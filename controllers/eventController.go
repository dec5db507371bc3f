package controllers

import (
	"net/http"
	"time"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetPublicEvents lists upcoming public events, soonest first.
func GetPublicEvents(c *gin.Context) {
	listEvents(c, goqu.C("is_public").IsTrue(), goqu.C("date").Gte(time.Now().Format(models.DateLayout)))
}

// GetMemberEvents lists every event. ?from=YYYY-MM-DD limits it to that day
// onwards.
func GetMemberEvents(c *gin.Context) {
	from := c.Query("from")
	if from == "" {
		listEvents(c)
		return
	}

	if _, err := time.Parse(models.DateLayout, from); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD", "details": err.Error()})
		return
	}
	listEvents(c, goqu.C("date").Gte(from))
}

func listEvents(c *gin.Context, filters ...exp.Expression) {
	events := []models.Event{}

	err := initializers.DB.From("events").
		Where(filters...).
		Order(goqu.C("date").Asc(), goqu.C("time").Asc()).
		ScanStructsContext(c.Request.Context(), &events)
	if err != nil {
		zap.S().Errorf("failed to fetch events: %v", err)
		events = []models.Event{}
	}

	c.JSON(http.StatusOK, events)
}

func CreateEvent(c *gin.Context) {
	var form models.EventForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event", "details": err.Error()})
		return
	}

	date, err := form.ParseDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD", "details": err.Error()})
		return
	}

	event := models.Event{
		Title:       form.Title,
		Date:        date,
		Time:        form.Time,
		Location:    form.Location,
		Category:    form.Category,
		Description: form.Description,
		Is_Public:   form.IsPublic,
	}

	var created models.Event
	_, err = initializers.DB.Insert("events").
		Rows(event).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &created)
	if err != nil {
		zap.S().Errorf("failed to create event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func UpdateEvent(c *gin.Context) {
	eventID, ok := parseID(c, "event_id")
	if !ok {
		return
	}

	var form models.EventForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event", "details": err.Error()})
		return
	}

	date, err := form.ParseDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD", "details": err.Error()})
		return
	}

	result, err := initializers.DB.Update("events").
		Set(goqu.Record{
			"title":       form.Title,
			"date":        date,
			"time":        form.Time,
			"location":    form.Location,
			"category":    form.Category,
			"description": form.Description,
			"is_public":   form.IsPublic,
			"updated_at":  time.Now(),
		}).
		Where(goqu.C("id").Eq(eventID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		zap.S().Errorf("failed to update event %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event updated"})
}

func DeleteEvent(c *gin.Context) {
	eventID, ok := parseID(c, "event_id")
	if !ok {
		return
	}

	result, err := initializers.DB.Delete("events").
		Where(goqu.C("id").Eq(eventID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		zap.S().Errorf("failed to delete event %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
