package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ChurchPortal/guards"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireArea(t *testing.T) {
	tests := []struct {
		name             string
		state            guards.AccessState
		handler          gin.HandlerFunc
		expectedStatus   int
		expectedRedirect string
	}{
		{name: "member data for member", state: guards.ApprovedMember, handler: CheckMember, expectedStatus: http.StatusOK},
		{name: "member data for admin", state: guards.ApprovedAdmin, handler: CheckMember, expectedStatus: http.StatusOK},
		{name: "member pages send admin to console", state: guards.ApprovedAdmin, handler: RequireArea(guards.Member), expectedStatus: http.StatusForbidden, expectedRedirect: guards.AdminPath},
		{name: "anonymous sent to login", state: guards.Anonymous, handler: CheckMember, expectedStatus: http.StatusForbidden, expectedRedirect: guards.LoginPath},
		{name: "unapproved sent to pending", state: guards.Unapproved, handler: CheckAdmin, expectedStatus: http.StatusForbidden, expectedRedirect: guards.PendingApprovalPath},
		{name: "member sent away from admin", state: guards.ApprovedMember, handler: CheckAdmin, expectedStatus: http.StatusForbidden, expectedRedirect: guards.DashboardPath},
		{name: "admin renders admin", state: guards.ApprovedAdmin, handler: CheckAdmin, expectedStatus: http.StatusOK},
		{name: "loading gets placeholder", state: guards.Loading, handler: CheckAdmin, expectedStatus: http.StatusServiceUnavailable},
		{name: "public always renders", state: guards.Anonymous, handler: RequireArea(guards.Public), expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTestContext()
			c.Set(AccessStateKey, tt.state)

			tt.handler(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.False(t, c.IsAborted())
				return
			}

			assert.True(t, c.IsAborted())
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.expectedRedirect != "" {
				assert.Equal(t, tt.expectedRedirect, body["redirect"])
			} else {
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestRequireAreaWithoutAuthIsAnonymous(t *testing.T) {
	c, w := setupTestContext()

	CheckAdmin(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), guards.LoginPath)
}

func TestGuardedGroups(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(state guards.AccessState) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(AccessStateKey, state)
			c.Next()
		})
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }

		member := router.Group("/")
		member.Use(CheckMember)
		member.GET("/prayer-wall", ok)

		admin := router.Group("/admin")
		admin.Use(CheckAdmin)
		admin.GET("/users", ok)
		return router
	}

	tests := []struct {
		name           string
		state          guards.AccessState
		path           string
		expectedStatus int
	}{
		{name: "member reads wall", state: guards.ApprovedMember, path: "/prayer-wall", expectedStatus: http.StatusOK},
		{name: "admin reads wall", state: guards.ApprovedAdmin, path: "/prayer-wall", expectedStatus: http.StatusOK},
		{name: "pending member kept off wall", state: guards.Unapproved, path: "/prayer-wall", expectedStatus: http.StatusForbidden},
		{name: "member kept out of console", state: guards.ApprovedMember, path: "/admin/users", expectedStatus: http.StatusForbidden},
		{name: "admin in console", state: guards.ApprovedAdmin, path: "/admin/users", expectedStatus: http.StatusOK},
		{name: "loading console", state: guards.Loading, path: "/admin/users", expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.state).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
