package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/application"
)

// Sweeper periodically purges expired refresh and password-reset tokens from
// both stores. Expired tokens are already rejected at use time; the sweeper
// only reclaims storage.
type Sweeper struct {
	repos    application.Repositories
	interval time.Duration
	logger   *logrus.Logger
}

func NewSweeper(repos application.Repositories, interval time.Duration, logger *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{repos: repos, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.SweepOnce(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("token sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes everything expired as of now from the document store and
// the relational mirror. Each store is swept independently so a failure in one
// does not leave the other growing unbounded.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := time.Now()
	fields := logrus.Fields{}

	if n, err := s.repos.RefreshTokenDocs().DeleteExpired(ctx, now); err != nil {
		s.logger.WithError(err).Warn("sweep refresh tokens (docs) failed")
	} else {
		fields["refresh_docs"] = n
	}
	if n, err := s.repos.RefreshTokenRows().DeleteExpired(ctx, now); err != nil {
		s.logger.WithError(err).Warn("sweep refresh tokens (rows) failed")
	} else {
		fields["refresh_rows"] = n
	}
	if n, err := s.repos.ResetTokenDocs().DeleteExpired(ctx, now); err != nil {
		s.logger.WithError(err).Warn("sweep reset tokens (docs) failed")
	} else {
		fields["reset_docs"] = n
	}
	if n, err := s.repos.ResetTokenRows().DeleteExpired(ctx, now); err != nil {
		s.logger.WithError(err).Warn("sweep reset tokens (rows) failed")
	} else {
		fields["reset_rows"] = n
	}

	s.logger.WithFields(fields).Debug("expired token sweep complete")
}
