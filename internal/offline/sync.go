package offline

import (
	"context"
	"fmt"
	"time"

	"classbook/config"
	"classbook/internal/domains/reservation/model/dto"
	"classbook/shared/failure"
	"classbook/shared/retry"
	"classbook/shared/timezone"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Report summarizes one sync pass.
type Report struct {
	Synced    int `json:"synced"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// Syncer replays due queue entries against the server. Entries that succeed
// are removed; genuine conflicts are kept for review; transient failures are
// rescheduled with exponential backoff until the attempt cap.
type Syncer struct {
	store     Store
	submitter Submitter
	policy    retry.Policy
	workers   int
}

func NewSyncer(store Store, submitter Submitter, cfg *config.Config) *Syncer {
	policy := retry.Policy{
		MaxAttempts: cfg.Offline.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Offline.BaseDelaySecs) * time.Second,
		Multiplier:  2,
		MaxDelay:    time.Duration(cfg.Offline.MaxDelaySecs) * time.Second,
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 5
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 30 * time.Second
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = 30 * time.Minute
	}

	workers := cfg.Offline.SyncWorkers
	if workers <= 0 {
		workers = 1
	}

	return &Syncer{store: store, submitter: submitter, policy: policy, workers: workers}
}

// Sync replays every due entry with at most `workers` submissions in flight.
// The default of one worker preserves queue order, which keeps two queued
// bookings for the same room from racing each other on the server.
func (s *Syncer) Sync(ctx context.Context) (Report, error) {
	var report Report

	due, err := s.store.Due(ctx, s.policy.MaxAttempts)
	if err != nil {
		return report, fmt.Errorf("failed to load due entries: %w", err)
	}

	results := make([]string, len(due))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for i, entry := range due {
		group.Go(func() error {
			results[i] = s.syncOne(groupCtx, entry)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return report, err
	}

	for _, outcome := range results {
		switch outcome {
		case "synced":
			report.Synced++
		case "conflict":
			report.Conflicts++
		default:
			report.Failed++
		}
	}

	remaining, err := s.store.List(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to count remaining entries: %w", err)
	}

	report.Remaining = len(remaining)

	return report, nil
}

func (s *Syncer) syncOne(ctx context.Context, entry Entry) string {
	if err := s.store.SetStatus(ctx, entry.ID, StatusSyncing); err != nil {
		log.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to mark entry syncing")

		return "failed"
	}

	err := s.submitter.Submit(ctx, dto.SubmitReservationRequest{
		RoomID:         entry.RoomID,
		Date:           entry.Date,
		StartTime:      entry.StartTime,
		EndTime:        entry.EndTime,
		Purpose:        entry.Purpose,
		IdempotencyKey: entry.IdempotencyKey,
	})

	switch {
	case err == nil:
		if err := s.store.Delete(ctx, entry.ID); err != nil {
			log.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to remove synced entry")
		}

		log.Info().Str("entry_id", entry.ID).Msg("queued booking synced")

		return "synced"

	case failure.IsKind(err, failure.KindSyncConflict) || failure.IsKind(err, failure.KindConflictAtApproval):
		explanation := fmt.Sprintf("rejected by the server: %v", err)
		entry.Status = StatusConflict
		entry.LastError = &explanation

		if err := s.store.MarkFailure(ctx, entry); err != nil {
			log.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to park conflicting entry")
		}

		log.Warn().Str("entry_id", entry.ID).Str("reason", explanation).Msg("queued booking conflicts with server state")

		return "conflict"

	case failure.IsKind(err, failure.KindValidation) || failure.IsKind(err, failure.KindUnauthorized):
		// Not retryable and not an overlap; park it like a conflict so the
		// user sees why it will never sync.
		explanation := err.Error()
		entry.Status = StatusConflict
		entry.LastError = &explanation

		if markErr := s.store.MarkFailure(ctx, entry); markErr != nil {
			log.Error().Err(markErr).Str("entry_id", entry.ID).Msg("failed to park rejected entry")
		}

		return "conflict"

	default:
		entry.Attempts++
		entry.Status = StatusFailed
		message := err.Error()
		entry.LastError = &message

		if entry.Attempts < s.policy.MaxAttempts {
			// Delay is keyed by the upcoming attempt number, so the first
			// retry waits the full base delay instead of firing immediately.
			next := timezone.Now().Add(s.policy.Delay(entry.Attempts + 1))
			entry.NextRetryAt = &next
		} else {
			// Attempt cap reached; the entry stays failed until the user
			// removes it or forces another pass.
			entry.NextRetryAt = nil
		}

		if markErr := s.store.MarkFailure(ctx, entry); markErr != nil {
			log.Error().Err(markErr).Str("entry_id", entry.ID).Msg("failed to record entry failure")
		}

		log.Warn().Err(err).Str("entry_id", entry.ID).Int("attempts", entry.Attempts).Msg("queued booking sync failed")

		return "failed"
	}
}
