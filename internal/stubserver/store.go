package stubserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storein/mobile-core/internal/domain/shared"
	"github.com/storein/mobile-core/internal/domain/voucher"
)

// Store is the mutex-guarded in-memory voucher store behind the stub backend.
// It exists for local development and tests; nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	vouchers map[uuid.UUID]*voucher.StorageVoucher
	order    []uuid.UUID

	// failStock simulates per-stock backend failures for partial-commit tests
	failStock map[uuid.UUID]bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		vouchers:  make(map[uuid.UUID]*voucher.StorageVoucher),
		failStock: make(map[uuid.UUID]bool),
	}
}

// Put inserts or replaces a voucher.
func (s *Store) Put(v *voucher.StorageVoucher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vouchers[v.ID]; !exists {
		s.order = append(s.order, v.ID)
	}
	s.vouchers[v.ID] = v
}

// Get returns the voucher with the given id.
func (s *Store) Get(id uuid.UUID) (*voucher.StorageVoucher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vouchers[id]
	return v, ok
}

// FailStock makes every upsert for the given stock id fail until cleared.
func (s *Store) FailStock(stockID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStock[stockID] = true
}

// ClearFailures removes all injected failures.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStock = make(map[uuid.UUID]bool)
}

// ListFilter mirrors the list endpoint's query parameters.
type ListFilter struct {
	Page       int
	PageSize   int
	Code       string
	Status     voucher.Status
	Priority   voucher.Priority
	AssignedTo uuid.UUID
	DateStart  *time.Time
	DateEnd    *time.Time
	Search     string
}

// List returns one page of matching vouchers plus the total match count.
func (s *Store) List(filter ListFilter) ([]*voucher.StorageVoucher, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*voucher.StorageVoucher, 0)
	for _, id := range s.order {
		v := s.vouchers[id]
		if filter.Code != "" && !strings.Contains(v.Code, filter.Code) {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Priority != 0 && v.Priority != filter.Priority {
			continue
		}
		if filter.AssignedTo != uuid.Nil && v.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.DateStart != nil && v.StorageDate.Before(*filter.DateStart) {
			continue
		}
		if filter.DateEnd != nil && v.StorageDate.After(filter.DateEnd.Add(24*time.Hour-time.Nanosecond)) {
			continue
		}
		if filter.Search != "" && !matchesSearch(v, filter.Search) {
			continue
		}
		matches = append(matches, v)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StorageDate.After(matches[j].StorageDate)
	})

	total := len(matches)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	start := (page - 1) * size
	if start >= total {
		return []*voucher.StorageVoucher{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matches[start:end], total
}

func matchesSearch(v *voucher.StorageVoucher, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(v.Code), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(v.Notes), needle) {
		return true
	}
	for _, d := range v.Details {
		if strings.Contains(strings.ToLower(d.Name), needle) || strings.Contains(strings.ToLower(d.Code), needle) {
			return true
		}
	}
	return false
}

// UpsertItem creates or updates one storage voucher item. A request carrying
// an id updates the existing record; without one a new record is created.
// Repeating an update request leaves exactly one record, which is what makes
// the endpoint idempotent.
func (s *Store) UpsertItem(item voucher.Item) (voucher.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failStock[item.StockID] {
		return voucher.Item{}, shared.NewDomainError("INJECTED_FAILURE", "Simulated backend failure for stock")
	}

	detail := s.findDetailLocked(item.DetailID)
	if detail == nil {
		return voucher.Item{}, shared.ErrNotFound
	}

	item.Status = voucher.ItemStatusStored

	if serverID, ok := item.Identity.ServerID(); ok {
		for i := range detail.Items {
			if existing, committed := detail.Items[i].Identity.ServerID(); committed && existing == serverID {
				detail.Items[i] = item
				return item, nil
			}
		}
		return voucher.Item{}, shared.ErrNotFound
	}

	item.Identity = voucher.CommittedIdentity(uuid.New())
	detail.Items = append(detail.Items, item)
	return item, nil
}

// UpdateStatus applies a status transition, enforcing the transition graph
// the way the real backend does.
func (s *Store) UpdateStatus(id uuid.UUID, target voucher.Status) (*voucher.StorageVoucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vouchers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if !target.IsValid() {
		return nil, shared.ErrInvalidInput
	}
	if !v.Status.CanTransitionTo(target) {
		return nil, shared.ErrInvalidTransition
	}
	v.Status = target
	return v, nil
}

// Process marks the voucher completed if it is ready for processing.
func (s *Store) Process(id uuid.UUID) (*voucher.StorageVoucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vouchers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if v.Status != voucher.StatusApproved || !v.IsValidForProcess {
		return nil, shared.ErrInvalidState
	}
	now := time.Now()
	v.CompletedAt = &now
	return v, nil
}

func (s *Store) findDetailLocked(detailID uuid.UUID) *voucher.Detail {
	for _, id := range s.order {
		v := s.vouchers[id]
		for i := range v.Details {
			if v.Details[i].ID == detailID {
				return &v.Details[i]
			}
		}
	}
	return nil
}
