package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/storein/mobile-core/internal/domain/voucher"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListQuery carries the optional filters and 1-based pagination for voucher
// list requests. Zero values mean "no filter".
type ListQuery struct {
	Page     int
	PageSize int

	Code             string
	Status           voucher.Status
	Priority         voucher.Priority
	AssignedTo       uuid.UUID
	StorageDateStart *time.Time
	StorageDateEnd   *time.Time
	Search           string
}

// Normalized returns a copy with pagination clamped to sane bounds.
func (q ListQuery) Normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return q
}

// VoucherPage is one page of list results plus the total match count.
type VoucherPage struct {
	Results []voucher.Summary
	Count   int
}

// NotificationResult reports the outcome of the completion email call. The
// call is fire-and-report: its failure never mutates local voucher state.
type NotificationResult struct {
	StatusCode int
	Message    string
}
