package initializers

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// InitFirebase builds the Firebase app shared by push notifications and file
// storage. It returns nil when no credentials can be found; both services then
// run disabled.
func InitFirebase() *firebase.App {
	cfg := &firebase.Config{StorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET")}
	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")

	var app *firebase.App
	var err error

	if serviceAccountPath != "" {
		opt := option.WithCredentialsFile(serviceAccountPath)
		app, err = firebase.NewApp(context.Background(), cfg, opt)
		if err != nil {
			zap.S().Errorf("Failed to initialize Firebase app with service account: %v", err)
			return nil
		}
		zap.S().Info("Firebase initialized with service account file")
	} else {
		app, err = firebase.NewApp(context.Background(), cfg)
		if err != nil {
			zap.S().Errorf("Failed to initialize Firebase app with ADC: %v", err)
			return nil
		}
		zap.S().Info("Firebase initialized with Application Default Credentials")
	}

	return app
}
