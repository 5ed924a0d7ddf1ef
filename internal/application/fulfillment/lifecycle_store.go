package fulfillment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storein/mobile-core/internal/domain/voucher"
)

// LifecycleStore lists, loads and transitions storage vouchers. It keeps the
// last successful list page and the currently selected aggregate, and resets
// them on failure so stale data is never presented as current.
//
// All transitions are server-authoritative: the store requests them and
// adopts the returned aggregate, it never computes the next status locally.
type LifecycleStore struct {
	client BackendClient
	logger *zap.Logger

	mu       sync.RWMutex
	results  []voucher.Summary
	count    int
	selected *voucher.StorageVoucher
	lastErr  string
}

// NewLifecycleStore creates a store over the given backend client.
func NewLifecycleStore(client BackendClient, logger *zap.Logger) *LifecycleStore {
	return &LifecycleStore{
		client:  client,
		logger:  logger,
		results: make([]voucher.Summary, 0),
	}
}

// List fetches one page of voucher summaries. On transport failure the cached
// results are cleared, the count resets to zero and a human-readable error
// string is recorded, even if a previous call had populated data.
func (s *LifecycleStore) List(ctx context.Context, query ListQuery) ([]voucher.Summary, int, error) {
	page, err := s.client.ListVouchers(ctx, query.Normalized())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.results = make([]voucher.Summary, 0)
		s.count = 0
		s.lastErr = "Could not load storage vouchers: " + err.Error()
		s.logger.Warn("voucher list failed", zap.Error(err))
		return nil, 0, err
	}

	s.results = page.Results
	s.count = page.Count
	s.lastErr = ""
	return page.Results, page.Count, nil
}

// FetchByID loads the full voucher aggregate. On failure the selected voucher
// is cleared and the error recorded.
func (s *LifecycleStore) FetchByID(ctx context.Context, id uuid.UUID) (*voucher.StorageVoucher, error) {
	v, err := s.client.GetVoucher(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.selected = nil
		s.lastErr = "Could not load storage voucher: " + err.Error()
		s.logger.Warn("voucher fetch failed", zap.String("voucher_id", id.String()), zap.Error(err))
		return nil, err
	}

	s.selected = v
	s.lastErr = ""
	return v, nil
}

// RequestStatus asks the backend to transition the voucher and adopts the
// returned aggregate. The known transition graph is checked only as a
// pre-flight; the server's answer always wins.
func (s *LifecycleStore) RequestStatus(ctx context.Context, id uuid.UUID, target voucher.Status) (*voucher.StorageVoucher, error) {
	v, err := s.client.UpdateVoucherStatus(ctx, id, target)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = "Could not update voucher status: " + err.Error()
		s.logger.Warn("voucher status update failed",
			zap.String("voucher_id", id.String()),
			zap.String("target", target.String()),
			zap.Error(err))
		return nil, err
	}

	s.adoptLocked(v)
	s.lastErr = ""
	return v, nil
}

// RequestProcess asks the backend to move the voucher toward its completed
// state and adopts the returned aggregate. The backend contract requires a
// voucher payload in the response; a response without one fails with
// PROCESS_UNSUPPORTED so callers can tell a missing server contract apart
// from a transport failure. Failure does not mutate the local status.
func (s *LifecycleStore) RequestProcess(ctx context.Context, id uuid.UUID) (*voucher.StorageVoucher, error) {
	v, err := s.client.ProcessVoucher(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = "Could not process storage voucher: " + err.Error()
		s.logger.Warn("voucher process failed", zap.String("voucher_id", id.String()), zap.Error(err))
		return nil, err
	}

	s.adoptLocked(v)
	s.lastErr = ""
	return v, nil
}

// RequestCompletionNotification triggers the completion email. The result is
// reported back verbatim; failure leaves all local voucher state untouched.
func (s *LifecycleStore) RequestCompletionNotification(ctx context.Context, id uuid.UUID) (NotificationResult, error) {
	result, err := s.client.SendProcessCompletedEmail(ctx, id)
	if err != nil {
		s.logger.Warn("completion notification failed", zap.String("voucher_id", id.String()), zap.Error(err))
		return NotificationResult{}, err
	}
	return result, nil
}

// Results returns the last successful page and count.
func (s *LifecycleStore) Results() ([]voucher.Summary, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]voucher.Summary, len(s.results))
	copy(results, s.results)
	return results, s.count
}

// Selected returns the currently loaded aggregate, or nil.
func (s *LifecycleStore) Selected() *voucher.StorageVoucher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Error returns the last recorded error string, empty after any success.
func (s *LifecycleStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// adoptLocked replaces the selected aggregate if it refers to the same
// voucher the caller just transitioned.
func (s *LifecycleStore) adoptLocked(v *voucher.StorageVoucher) {
	if v == nil {
		return
	}
	if s.selected == nil || s.selected.ID == v.ID {
		s.selected = v
	}
}
