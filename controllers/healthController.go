package controllers

import (
	"net/http"

	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// SendTestEmail sends the approval email to an address of the admin's choice
// so the Resend setup can be checked from the console.
func SendTestEmail(c *gin.Context) {
	type testEmailRequest struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name"`
	}

	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email is required", "details": err.Error()})
		return
	}
	if req.Name == "" {
		req.Name = "Test User"
	}

	emailService := services.GetEmailService()
	if emailService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Email service is not initialized. Check RESEND_API_KEY in .env",
		})
		return
	}

	if err := emailService.SendApprovalEmail(req.Email, req.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send test email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test email sent successfully!", "email": req.Email})
}
