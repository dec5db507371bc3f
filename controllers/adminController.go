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
	"golang.org/x/sync/errgroup"
)

// GetAdminSummary gathers the admin dashboard counters concurrently.
func GetAdminSummary(c *gin.Context) {
	var summary models.AdminSummary
	g, ctx := errgroup.WithContext(c.Request.Context())

	count := func(dst *int64, table string, filters ...exp.Expression) {
		g.Go(func() error {
			n, err := initializers.DB.From(table).Where(filters...).CountContext(ctx)
			*dst = n
			return err
		})
	}

	count(&summary.PendingUsers, "users", goqu.C("is_approved").IsFalse())
	count(&summary.Members, "users", goqu.C("is_approved").IsTrue())
	count(&summary.PrayerRequests, "prayer_requests")
	count(&summary.UpcomingEvents, "events", goqu.C("date").Gte(time.Now().Format(models.DateLayout)))
	count(&summary.Newsletters, "newsletters")

	if err := g.Wait(); err != nil {
		zap.S().Errorf("failed to build admin summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
