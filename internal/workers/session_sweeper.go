package workers

import (
	"context"
	"time"

	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/store"
)

// SessionSweeper periodically deletes sessions that expired more than a
// grace period ago.
type SessionSweeper struct {
	repo     store.SessionRepository
	interval time.Duration
	grace    time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// NewSessionSweeper returns a sweeper running every interval.
func NewSessionSweeper(repo store.SessionRepository, interval, grace time.Duration, log *logger.Logger) *SessionSweeper {
	return &SessionSweeper{
		repo:     repo,
		interval: interval,
		grace:    grace,
		logger:   log,
		now:      time.Now,
	}
}

func (s *SessionSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single deletion pass and returns the number of removed
// sessions. Failures are logged and reported as zero.
func (s *SessionSweeper) Sweep(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.grace)
	deleted, err := s.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Err(err).Str("func", "SessionSweeper.Sweep").Msg("failed to delete expired sessions")
		return 0
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("expired sessions removed")
	}
	return deleted
}
