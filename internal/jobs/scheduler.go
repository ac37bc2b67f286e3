package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"smartcart/api/internal/repository"
)

// Scheduler purges token rows the auth flows no longer need: refresh tokens
// past expiry and reset tokens that are spent or stale. Live traffic never
// depends on it, the conditional updates already ignore dead rows.
type Scheduler struct {
	cron   *cron.Cron
	tokens *repository.RefreshTokenRepository
	resets *repository.ResetTokenRepository
	log    zerolog.Logger
}

func NewScheduler(pool *pgxpool.Pool, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		tokens: repository.NewRefreshTokenRepository(pool),
		resets: repository.NewResetTokenRepository(pool),
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.purgeTokens); err != nil { // hourly
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		s.cron.Stop()
		cancel()
	}()
	return cancel
}

func (s *Scheduler) purgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	refresh, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired refresh tokens failed")
	}

	resets, err := s.resets.DeleteExpiredOrUsed(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("purge reset tokens failed")
	}

	s.log.Info().
		Int64("refresh_tokens", refresh).
		Int64("reset_tokens", resets).
		Msg("token purge complete")
}
