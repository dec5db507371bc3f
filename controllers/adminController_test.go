package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/ChurchPortal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAdminSummary(t *testing.T) {
	t.Run("counts every table", func(t *testing.T) {
		_, mock, cleanup := SetupTestDB(t)
		defer cleanup()
		mock.MatchExpectationsInOrder(false)

		counts := map[string]int64{
			`FROM "users" WHERE ("is_approved" IS FALSE)`: 2,
			`FROM "users" WHERE ("is_approved" IS TRUE)`:  40,
			`FROM "prayer_requests"`:                      12,
			`FROM "events" WHERE ("date" >=`:              5,
			`FROM "newsletters"`:                          9,
		}
		for query, n := range counts {
			mock.ExpectQuery(regexp.QuoteMeta(query)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(n))
		}

		c, w := SetupTestContext()
		GetAdminSummary(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var summary models.AdminSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, models.AdminSummary{PendingUsers: 2, Members: 40, PrayerRequests: 12, UpcomingEvents: 5, Newsletters: 9}, summary)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("any failure fails the summary", func(t *testing.T) {
		_, mock, cleanup := SetupTestDB(t)
		defer cleanup()
		mock.MatchExpectationsInOrder(false)

		for i := 0; i < 5; i++ {
			mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("too many connections"))
		}

		c, w := SetupTestContext()
		GetAdminSummary(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
