package initializers

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv reads .env in development. Hosted deployments inject the same
// variables directly, so a missing file is only worth a warning.
func LoadEnv() {
	if os.Getenv("GIN_MODE") == "release" {
		return
	}

	if err := godotenv.Load(); err != nil {
		zap.S().Warn("no .env file loaded, using process environment")
	}
}
