package bulk

//go:generate go run go.uber.org/mock/mockgen -source=./coordinator.go -destination=./mocks/coordinator_mock.go -package=mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"classbook/internal/domains/reservation/model/dto"
	"classbook/shared/failure"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"

	defaultConcurrency = 4
)

// Decision is one item of a bulk run.
type Decision struct {
	RequestID string `json:"request_id" validate:"required"`
	Action    string `json:"action"     validate:"required,oneof=approve reject"`
	Feedback  string `json:"feedback"   validate:"omitempty,max=500"`
}

// BulkRequest is the wire form of a bulk run.
type BulkRequest struct {
	Decisions []Decision `json:"decisions" validate:"required,min=1,dive"`
}

// ItemResult records how a single decision fared.
type ItemResult struct {
	Decision Decision `json:"decision"`
	Err      string   `json:"error,omitempty"`
	Kind     string   `json:"kind,omitempty"`
}

func (r ItemResult) Failed() bool {
	return r.Err != ""
}

// Report aggregates a bulk run. Items holds one result per input decision,
// in input order.
type Report struct {
	Items     []ItemResult `json:"items"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// FailedDecisions returns the inputs that did not go through, for a retry run.
func (r Report) FailedDecisions() []Decision {
	var failed []Decision

	for _, item := range r.Items {
		if item.Failed() {
			failed = append(failed, item.Decision)
		}
	}

	return failed
}

// Decider is the slice of the reservation service a bulk run needs.
type Decider interface {
	Approve(ctx context.Context, id string, req dto.DecisionRequest) error
	Reject(ctx context.Context, id string, req dto.DecisionRequest) error
}

// Progress is called after every completed item with the number processed so
// far and the total. Calls are serialized.
type Progress func(processed, total int)

// Coordinator fans a list of decisions out over the reservation service with
// bounded concurrency. One failing item never aborts the rest.
type Coordinator struct {
	decider     Decider
	concurrency int
}

func New(decider Decider, concurrency int) *Coordinator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Coordinator{decider: decider, concurrency: concurrency}
}

// Run applies every decision and reports per-item outcomes.
func (c *Coordinator) Run(ctx context.Context, decisions []Decision, progress Progress) Report {
	report := Report{Items: make([]ItemResult, len(decisions))}

	var (
		processed  atomic.Int64
		progressMu sync.Mutex
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)

	for i, decision := range decisions {
		group.Go(func() error {
			report.Items[i] = c.apply(groupCtx, decision)

			done := int(processed.Add(1))

			if progress != nil {
				progressMu.Lock()
				progress(done, len(decisions))
				progressMu.Unlock()
			}

			return nil
		})
	}

	// Workers never return errors; Wait only fences completion.
	_ = group.Wait()

	for _, item := range report.Items {
		if item.Failed() {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}

	return report
}

// RetryFailed re-runs only the failed subset and merges the outcomes into
// the original report, preserving input order.
func (c *Coordinator) RetryFailed(ctx context.Context, original Report, progress Progress) Report {
	failed := original.FailedDecisions()
	if len(failed) == 0 {
		return original
	}

	retried := c.Run(ctx, failed, progress)

	merged := Report{Items: make([]ItemResult, len(original.Items))}
	copy(merged.Items, original.Items)

	next := 0

	for i, item := range merged.Items {
		if item.Failed() {
			merged.Items[i] = retried.Items[next]
			next++
		}
	}

	for _, item := range merged.Items {
		if item.Failed() {
			merged.Failed++
		} else {
			merged.Succeeded++
		}
	}

	return merged
}

func (c *Coordinator) apply(ctx context.Context, decision Decision) ItemResult {
	result := ItemResult{Decision: decision}

	req := dto.DecisionRequest{Feedback: decision.Feedback}

	var err error

	switch decision.Action {
	case ActionApprove:
		err = c.decider.Approve(ctx, decision.RequestID, req)
	case ActionReject:
		err = c.decider.Reject(ctx, decision.RequestID, req)
	default:
		err = failure.BadRequestFromString("unknown bulk action: " + decision.Action)
	}

	if err != nil {
		result.Err = err.Error()
		result.Kind = string(failure.GetKind(err))

		log.Warn().Err(err).Str("request_id", decision.RequestID).Str("action", decision.Action).Msg("bulk decision failed")
	}

	return result
}
