package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitContactForm(t *testing.T) {
	t.Run("invalid email", func(t *testing.T) {
		c, w := SetupTestContext()
		SetJSONBody(c, http.MethodPost, gin.H{"name": "Visitor", "email": "not-an-email", "message": "Hello"})
		SubmitContactForm(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("email not configured", func(t *testing.T) {
		t.Setenv("CONTACT_EMAIL", "office@church.example")

		c, w := SetupTestContext()
		SetJSONBody(c, http.MethodPost, gin.H{"name": "Visitor", "email": "visitor@example.com", "message": "What time is service?"})
		SubmitContactForm(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestPushSubscriptionWithoutFirebase(t *testing.T) {
	c, w := SetupTestContext()
	SetJSONBody(c, http.MethodPost, gin.H{"token": "device-token", "platform": "ios"})
	SubscribeAdminDevice(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	c, w = SetupTestContext()
	SetJSONBody(c, http.MethodPost, gin.H{"token": "device-token", "platform": "blackberry"})
	UnsubscribeAdminDevice(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVideosFallsBackToPlaceholders(t *testing.T) {
	services.InitVideoService("", "")

	c, w := SetupTestContext()
	GetVideos(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var videos []models.Video
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	assert.Len(t, videos, len(services.PlaceholderVideos))
}

func TestPing(t *testing.T) {
	c, w := SetupTestContext()
	Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
