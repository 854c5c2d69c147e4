package sweep

import (
	"context"
	"time"

	"classbook/config"
	"classbook/internal/domains/reservation/service"

	"github.com/rs/zerolog/log"
)

const defaultInterval = time.Hour

// Runner periodically retires overdue pending requests and recreates
// schedule entries lost to a crash mid-approval. Both passes are idempotent,
// so any cadence is safe.
type Runner struct {
	reservations service.Reservation
	interval     time.Duration
}

func NewRunner(reservations service.Reservation, cfg *config.Config) *Runner {
	interval := time.Duration(cfg.Sweep.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Runner{reservations: reservations, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled. The first pass fires
// immediately so a restart does not leave overdue requests pending for a
// full interval.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweep runner stopped")

			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	expired, err := r.reservations.ExpireOverdue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("expiry sweep failed")
	} else if expired > 0 {
		log.Info().Int("expired", expired).Msg("expiry sweep retired overdue requests")
	}

	repaired, err := r.reservations.RepairSchedules(ctx)
	if err != nil {
		log.Error().Err(err).Msg("schedule repair pass failed")
	} else if repaired > 0 {
		log.Info().Int("repaired", repaired).Msg("schedule repair recreated missing entries")
	}
}
