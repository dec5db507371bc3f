package controllers

import (
	"errors"
	"net/http"
	"os"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitContactForm forwards a visitor's message to the church inbox.
func SubmitContactForm(c *gin.Context) {
	var msg models.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, a valid email and a message are required", "details": err.Error()})
		return
	}

	to := os.Getenv("CONTACT_EMAIL")
	if to == "" {
		to = os.Getenv("ADMIN_EMAIL")
	}

	err := services.GetEmailService().SendContactMessage(to, msg)
	if errors.Is(err, services.ErrEmailUnavailable) || to == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The contact form is not available right now"})
		return
	}
	if err != nil {
		zap.S().Errorf("failed to forward contact message from %s: %v", msg.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thank you! We'll be in touch soon."})
}
