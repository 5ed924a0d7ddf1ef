package fulfillment

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storein/mobile-core/internal/domain/allocation"
	"github.com/storein/mobile-core/internal/domain/shared"
	"github.com/storein/mobile-core/internal/domain/voucher"
)

// CommitService submits an allocation set's items to the backend as
// independent idempotent upserts and aggregates the partial results.
//
// There is no cross-item transaction: each upsert succeeds or fails on its
// own, a failing request never cancels or rolls back its siblings, and the
// backend is the final arbiter of which upserts land. Commit suspends on the
// whole set of requests and resumes only once every one has settled.
type CommitService struct {
	client      ItemUpserter
	logger      *zap.Logger
	maxInFlight int

	// retainFailed keeps failed pending items in the detail when results are
	// applied, instead of dropping them with the source contract's default.
	retainFailed bool
}

// CommitOption is a functional option for configuring CommitService
type CommitOption func(*CommitService)

// WithMaxInFlight bounds the number of concurrent item upserts.
func WithMaxInFlight(n int) CommitOption {
	return func(s *CommitService) {
		if n > 0 {
			s.maxInFlight = n
		}
	}
}

// WithRetainFailedItems switches ApplyResults to keep failed pending items in
// the detail's working set for retry. The default mirrors the historical
// contract: the detail keeps only the successfully committed items, and any
// pending item whose upsert failed is dropped from the in-memory aggregate.
// That default is deliberate but risky; callers who cannot afford to lose
// staged edits should enable this option.
func WithRetainFailedItems(retain bool) CommitOption {
	return func(s *CommitService) {
		s.retainFailed = retain
	}
}

// NewCommitService creates a commit service over the given upserter.
func NewCommitService(client ItemUpserter, logger *zap.Logger, opts ...CommitOption) *CommitService {
	s := &CommitService{
		client:      client,
		logger:      logger,
		maxInFlight: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CommitOutcome aggregates the per-item results of a commit. Results is
// positionally aligned with the submitted items: index i holds the persisted
// item for input i, or nil if that upsert failed.
type CommitOutcome struct {
	Results []*voucher.Item
}

// HasErrors returns true if at least one upsert failed
func (o *CommitOutcome) HasErrors() bool {
	return o.FailureCount() > 0
}

// FailureCount returns the number of failed upserts
func (o *CommitOutcome) FailureCount() int {
	count := 0
	for _, r := range o.Results {
		if r == nil {
			count++
		}
	}
	return count
}

// Committed returns only the successfully persisted items, in input order.
func (o *CommitOutcome) Committed() []voucher.Item {
	result := make([]voucher.Item, 0, len(o.Results))
	for _, r := range o.Results {
		if r != nil {
			result = append(result, *r)
		}
	}
	return result
}

// Commit issues one upsert per item, concurrently and independently, and
// waits for all of them to settle. Individual failures are recorded as nil at
// the item's position and logged; no error is returned for them, the caller
// inspects the outcome.
func (s *CommitService) Commit(ctx context.Context, items []voucher.Item) *CommitOutcome {
	outcome := &CommitOutcome{
		Results: make([]*voucher.Item, len(items)),
	}

	g := new(errgroup.Group)
	g.SetLimit(s.maxInFlight)

	for i, item := range items {
		g.Go(func() error {
			persisted, err := s.client.UpsertItem(ctx, item)
			if err != nil {
				s.logger.Warn("item upsert failed",
					zap.String("item", item.Identity.String()),
					zap.String("detail_id", item.DetailID.String()),
					zap.Error(err))
				// siblings are independent, never abort them
				return nil
			}
			outcome.Results[i] = &persisted
			return nil
		})
	}

	// per-item errors are swallowed above, Wait only joins the group
	_ = g.Wait()

	if outcome.HasErrors() {
		s.logger.Warn("commit completed with failures",
			zap.Int("submitted", len(items)),
			zap.Int("failed", outcome.FailureCount()))
	}

	return outcome
}

// CommitSet validates the allocation set with the commit gate and, if it
// passes, commits its items and applies the results to the detail. Returns
// the outcome together with the exact items that were submitted, so the
// caller can correlate positions.
func (s *CommitService) CommitSet(ctx context.Context, set *allocation.Set, detail *voucher.Detail) (*CommitOutcome, []voucher.Item, error) {
	var v allocation.Validator
	if !v.CanCommit(set) {
		return nil, nil, shared.NewDomainError("COMMIT_BLOCKED",
			"Allocation set is empty or over-allocated and cannot be committed")
	}

	items := set.Items()
	outcome := s.Commit(ctx, items)
	s.ApplyResults(detail, items, outcome)
	return outcome, items, nil
}

// ApplyResults updates the detail's item collection from a commit outcome.
// By default the collection is replaced with only the successfully committed
// items; with WithRetainFailedItems the failed originals are kept alongside
// them, preserving staged edits for retry.
func (s *CommitService) ApplyResults(detail *voucher.Detail, submitted []voucher.Item, outcome *CommitOutcome) {
	items := make([]voucher.Item, 0, len(submitted))
	for i := range outcome.Results {
		if outcome.Results[i] != nil {
			items = append(items, *outcome.Results[i])
			continue
		}
		if s.retainFailed && i < len(submitted) {
			items = append(items, submitted[i])
		}
	}
	detail.ReplaceItems(items)
}
