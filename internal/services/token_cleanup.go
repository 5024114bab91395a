package services

import (
	"github.com/robfig/cron/v3"

	"github.com/codehive/server/pkg/logger"
)

// TokenCleanupScheduler purges expired refresh tokens on a fixed schedule so
// the table stays bounded.
type TokenCleanupScheduler struct {
	cron *cron.Cron
	auth *AuthService
}

func NewTokenCleanupScheduler(auth *AuthService) *TokenCleanupScheduler {
	return &TokenCleanupScheduler{
		cron: cron.New(),
		auth: auth,
	}
}

// Start registers the nightly purge and launches the scheduler.
func (s *TokenCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		purged, err := s.auth.PurgeExpiredTokens()
		if err != nil {
			logger.Error().Err(err).Msg("refresh token purge failed")
			return
		}
		if purged > 0 {
			logger.Infof("[TokenCleanup] Purged %d expired refresh tokens", purged)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Infof("[TokenCleanup] Scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for a running purge to finish.
func (s *TokenCleanupScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Infof("[TokenCleanup] Scheduler stopped")
}
