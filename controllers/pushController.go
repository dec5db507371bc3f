package controllers

import (
	"errors"
	"net/http"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubscribeAdminDevice registers an administrator's device for new member
// alerts.
func SubscribeAdminDevice(c *gin.Context) {
	var sub models.PushSubscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Device token is required", "details": err.Error()})
		return
	}

	err := services.GetPushNotificationService().SubscribeToTopic([]string{sub.Token}, services.AdminTopic)
	if respondPushError(c, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device subscribed", "topic": services.AdminTopic})
}

func UnsubscribeAdminDevice(c *gin.Context) {
	var sub models.PushSubscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Device token is required", "details": err.Error()})
		return
	}

	err := services.GetPushNotificationService().UnsubscribeFromTopic([]string{sub.Token}, services.AdminTopic)
	if respondPushError(c, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unsubscribed", "topic": services.AdminTopic})
}

func respondPushError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, services.ErrPushUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not available"})
	default:
		zap.S().Errorf("push subscription change failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to update push subscription"})
	}
	return true
}
