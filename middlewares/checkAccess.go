package middlewares

import (
	"net/http"

	"github.com/ChurchPortal/guards"
	"github.com/gin-gonic/gin"
)

// RequireArea applies the route guard for area to the caller's access state.
// It must run after CheckAuth or OptionalAuth.
func RequireArea(area guards.Area) gin.HandlerFunc {
	return func(c *gin.Context) {
		apply(c, guards.Evaluate(StateOf(c), area))
	}
}

var memberArea = RequireArea(guards.Member)

// CheckMember guards the member data endpoints. The admin console reads the
// same data, so an approved admin passes where the member pages would send
// them to /admin.
func CheckMember(c *gin.Context) {
	if StateOf(c) == guards.ApprovedAdmin {
		c.Next()
		return
	}
	memberArea(c)
}

// CheckAdmin guards the /admin group.
var CheckAdmin = RequireArea(guards.Admin)

func apply(c *gin.Context, decision guards.Decision) {
	switch decision.Kind {
	case guards.Render:
		c.Next()
	case guards.Placeholder:
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session is still loading", "decision": decision})
	case guards.Redirect:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": decision.Location})
	}
}
