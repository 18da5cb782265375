package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IdleSessionPurger drops reading sessions that were not used for a while.
type IdleSessionPurger interface {
	PurgeIdle(ttl time.Duration) int
}

// Janitor periodically purges expired verse cache entries and idle sessions.
type Janitor struct {
	cache      VerseCache
	sessions   IdleSessionPurger
	sessionTTL time.Duration
	schedule   string
	logger     *zap.Logger
}

// NewJanitor creates a new Janitor running on the given cron schedule.
// A zero sessionTTL keeps sessions forever.
func NewJanitor(
	cache VerseCache,
	sessions IdleSessionPurger,
	sessionTTL time.Duration,
	schedule string,
	logger *zap.Logger,
) *Janitor {
	return &Janitor{
		cache:      cache,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		schedule:   schedule,
		logger:     logger,
	}
}

// Start runs the purge loop until ctx is done.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started", zap.String("schedule", j.schedule))

	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(j.schedule, func() {
		j.Purge()
	})
	if err != nil {
		j.logger.Error("failed to add cron job", zap.Error(err))
		return
	}

	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()
	j.logger.Info("janitor stopped")
}

// Purge runs a single purge pass.
func (j *Janitor) Purge() {
	verses := j.cache.Purge()
	sessions := 0
	if j.sessionTTL > 0 {
		sessions = j.sessions.PurgeIdle(j.sessionTTL)
	}

	j.logger.Debug("purge done",
		zap.Int("surahs_evicted", verses),
		zap.Int("sessions_evicted", sessions),
	)
}
