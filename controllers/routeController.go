package controllers

import (
	"net/http"

	"github.com/ChurchPortal/guards"
	"github.com/ChurchPortal/middlewares"
	"github.com/gin-gonic/gin"
)

// ResolveRoute tells the app what the guard decides for ?path= and the
// current caller, so links can be checked before navigating.
func ResolveRoute(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	state := middlewares.StateOf(c)
	area := guards.Classify(path)

	c.JSON(http.StatusOK, gin.H{
		"path":     path,
		"area":     area.String(),
		"state":    state.String(),
		"decision": guards.Evaluate(state, area),
	})
}
