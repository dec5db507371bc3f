package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/ChurchPortal/guards"
	"github.com/ChurchPortal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPendingUsers(t *testing.T) {
	t.Run("lists unapproved users", func(t *testing.T) {
		_, mock, cleanup := SetupTestDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "created_at", "email", "id", "is_approved", "name", "phone", "role", "user_timezone" FROM "users" WHERE ("is_approved" IS FALSE)`)).
			WillReturnRows(userRow(sqlmock.NewRows(userColumns), MockPendingUser()))

		c, w := SetupTestContext()
		GetPendingUsers(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var users []models.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
		require.Len(t, users, 1)
		assert.Equal(t, testPendingID, users[0].ID)
		assert.False(t, users[0].Is_Approved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("backend failure renders an empty list", func(t *testing.T) {
		_, mock, cleanup := SetupTestDB(t)
		defer cleanup()

		mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

		c, w := SetupTestContext()
		GetPendingUsers(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestApproveUser(t *testing.T) {
	t.Run("issues exactly one update", func(t *testing.T) {
		_, mock, cleanup := SetupTestDB(t)
		defer cleanup()

		approved := MockPendingUser()
		approved.ID = testMemberID
		approved.Is_Approved = true

		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "users" SET "is_approved"=TRUE WHERE ("id" = 'abc123') RETURNING *`)).
			WillReturnRows(userRow(sqlmock.NewRows(userColumns), approved))

		c, w := SetupTestContext()
		c.Params = gin.Params{{Key: "user_id", Value: testMemberID}}
		ApproveUser(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"isApproved":true`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, mock, cleanup := SetupTestDB(t)
		defer cleanup()

		mock.ExpectQuery(`UPDATE "users"`).WillReturnRows(sqlmock.NewRows(userColumns))

		c, w := SetupTestContext()
		c.Params = gin.Params{{Key: "user_id", Value: "missing"}}
		ApproveUser(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRejectUserIsIdempotent(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	deletePending := regexp.QuoteMeta(`DELETE FROM "users" WHERE (("id" = 'pending-1') AND ("is_approved" IS FALSE))`)
	mock.ExpectExec(deletePending).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deletePending).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS "count" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	for _, expected := range []string{"User rejected", "User already removed"} {
		c, w := SetupTestContext()
		c.Params = gin.Params{{Key: "user_id", Value: testPendingID}}
		RejectUser(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), expected)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectUserLeavesApprovedMembers(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE (("id" = 'abc123') AND ("is_approved" IS FALSE))`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS "count" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	c, w := SetupTestContext()
	c.Params = gin.Params{{Key: "user_id", Value: testMemberID}}
	RejectUser(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Revoke access")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeUserRole(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		rowsAffected   int64
		expectQuery    bool
		expectedStatus int
	}{
		{name: "promote to admin", body: gin.H{"role": "admin"}, rowsAffected: 1, expectQuery: true, expectedStatus: http.StatusOK},
		{name: "unknown role", body: gin.H{"role": "owner"}, expectedStatus: http.StatusBadRequest},
		{name: "missing role", body: gin.H{}, expectedStatus: http.StatusBadRequest},
		{name: "unknown user", body: gin.H{"role": "member"}, rowsAffected: 0, expectQuery: true, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			if tt.expectQuery {
				mock.ExpectExec(`UPDATE "users" SET "role"=`).WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			}

			c, w := SetupTestContext()
			SetJSONBody(c, http.MethodPatch, tt.body)
			c.Params = gin.Params{{Key: "user_id", Value: testMemberID}}
			ChangeUserRole(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRevokeUserAccess(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "is_approved"=FALSE WHERE ("id" = 'abc123')`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, w := SetupTestContext()
	c.Params = gin.Params{{Key: "user_id", Value: testMemberID}}
	RevokeUserAccess(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMyTimezone(t *testing.T) {
	t.Run("rejects unknown zones", func(t *testing.T) {
		_, mock, cleanup := SetupTestDB(t)
		defer cleanup()

		c, w := SetupTestContext()
		SetJSONBody(c, http.MethodPut, gin.H{"userTimezone": "Mars/Olympus"})
		SetAuthenticatedUser(c, MockUser(), guards.ApprovedMember)
		UpdateMyTimezone(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stores the zone", func(t *testing.T) {
		_, mock, cleanup := SetupTestDB(t)
		defer cleanup()

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "user_timezone"='Europe/London' WHERE ("id" = 'abc123')`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, w := SetupTestContext()
		SetJSONBody(c, http.MethodPut, gin.H{"userTimezone": "Europe/London"})
		SetAuthenticatedUser(c, MockUser(), guards.ApprovedMember)
		UpdateMyTimezone(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
