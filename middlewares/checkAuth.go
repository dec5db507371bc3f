package middlewares

import (
	"net/http"
	"strings"

	"github.com/ChurchPortal/guards"
	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the auth middlewares.
const (
	CurrentUserKey = "currentUser"
	AccessStateKey = "accessState"
	ClaimsKey      = "claims"
	AccessTokenKey = "accessToken"
)

// CheckAuth requires a hosted backend access token. The caller's users row is
// loaded with the same deadline the login flow uses; when it is slow the
// request continues in the Loading state and the guards decide what to do.
func CheckAuth(provider *services.SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := provider.VerifyAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		snapshot := provider.Snapshot(c.Request.Context(), claims)
		setSnapshot(c, snapshot, tokenString)

		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise carries on as Anonymous.
func OptionalAuth(provider *services.SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Set(AccessStateKey, guards.Anonymous)
			c.Next()
			return
		}

		claims, err := provider.VerifyAccessToken(tokenString)
		if err != nil {
			zap.S().Debugf("ignoring invalid token on optional route: %v", err)
			c.Set(AccessStateKey, guards.Anonymous)
			c.Next()
			return
		}

		setSnapshot(c, provider.Snapshot(c.Request.Context(), claims), tokenString)
		c.Next()
	}
}

func setSnapshot(c *gin.Context, snapshot services.Snapshot, tokenString string) {
	c.Set(AccessStateKey, snapshot.State)
	c.Set(ClaimsKey, snapshot.Claims)
	c.Set(AccessTokenKey, tokenString)
	if snapshot.User != nil {
		c.Set(CurrentUserKey, *snapshot.User)
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// StateOf returns the access state recorded for the request, Anonymous if none.
func StateOf(c *gin.Context) guards.AccessState {
	if v, ok := c.Get(AccessStateKey); ok {
		if state, ok := v.(guards.AccessState); ok {
			return state
		}
	}
	return guards.Anonymous
}
