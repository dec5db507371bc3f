package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// AdminTopic is the FCM topic every administrator device subscribes to.
const AdminTopic = "admins"

var ErrPushUnavailable = errors.New("FCM client not initialized")

type PushNotificationService struct {
	fcmClient *messaging.Client
}

type NotificationPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

var pushService *PushNotificationService

func InitPushNotificationService(app *firebase.App) {
	if app == nil {
		zap.S().Warn("Firebase app unavailable. Push notifications are disabled.")
		return
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		zap.S().Errorf("Failed to get Firebase messaging client: %v", err)
		return
	}

	pushService = &PushNotificationService{fcmClient: client}
	zap.S().Info("Push notification service initialized successfully with FCM")
}

// GetPushNotificationService may return nil; all methods tolerate a nil receiver.
func GetPushNotificationService() *PushNotificationService {
	return pushService
}

func (s *PushNotificationService) ready() error {
	if s == nil || s.fcmClient == nil {
		return ErrPushUnavailable
	}
	return nil
}

// NotifyAdmins sends payload to every device subscribed to AdminTopic.
func (s *PushNotificationService) NotifyAdmins(payload NotificationPayload) error {
	return s.SendToTopic(AdminTopic, payload)
}

// SendToTopic sends a notification to all devices subscribed to a topic
func (s *PushNotificationService) SendToTopic(topic string, payload NotificationPayload) error {
	if err := s.ready(); err != nil {
		return err
	}

	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	response, err := s.fcmClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM topic message: %w", err)
	}

	zap.S().Infof("Successfully sent FCM topic notification to %s. Message ID: %s", topic, response)
	return nil
}

// SubscribeToTopic subscribes tokens to a topic
func (s *PushNotificationService) SubscribeToTopic(tokens []string, topic string) error {
	if err := s.ready(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	response, err := s.fcmClient.SubscribeToTopic(ctx, tokens, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}

	zap.S().Infof("Successfully subscribed %d tokens to topic %s. Errors: %d",
		len(tokens)-response.FailureCount, topic, response.FailureCount)

	if response.FailureCount > 0 {
		return fmt.Errorf("%d of %d tokens could not be subscribed to %s", response.FailureCount, len(tokens), topic)
	}
	return nil
}

// UnsubscribeFromTopic unsubscribes tokens from a topic
func (s *PushNotificationService) UnsubscribeFromTopic(tokens []string, topic string) error {
	if err := s.ready(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	response, err := s.fcmClient.UnsubscribeFromTopic(ctx, tokens, topic)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe from topic %s: %w", topic, err)
	}

	zap.S().Infof("Successfully unsubscribed %d tokens from topic %s. Errors: %d",
		len(tokens)-response.FailureCount, topic, response.FailureCount)

	return nil
}
