package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const VideoRefreshSchedule = "@every 30m"

// StartScheduler runs the periodic jobs. The caller stops the returned cron
// on shutdown.
func StartScheduler(videos *VideoService) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(VideoRefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := videos.Refresh(ctx); err != nil {
			zap.S().Warnf("scheduled video refresh failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	zap.S().Infof("scheduler started (video refresh %s)", VideoRefreshSchedule)
	return c, nil
}
