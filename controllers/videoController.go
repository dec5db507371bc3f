package controllers

import (
	"net/http"

	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
)

func GetVideos(c *gin.Context) {
	c.JSON(http.StatusOK, services.GetVideoService().Videos(c.Request.Context()))
}
