package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/storein/mobile-core/internal/domain/voucher"
)

// ItemUpserter performs a single idempotent create-or-update of a storage
// voucher item. The request is keyed by the item's identity: a committed
// identity updates the existing record, a pending identity creates a new one.
type ItemUpserter interface {
	UpsertItem(ctx context.Context, item voucher.Item) (voucher.Item, error)
}

// BackendClient is the backend REST surface the fulfillment layer consumes.
// Implementations live in the infrastructure layer; tests substitute fakes.
type BackendClient interface {
	ItemUpserter

	// ListVouchers returns one page of voucher summaries matching the query.
	ListVouchers(ctx context.Context, query ListQuery) (VoucherPage, error)

	// GetVoucher loads the full nested aggregate (details and items).
	GetVoucher(ctx context.Context, id uuid.UUID) (*voucher.StorageVoucher, error)

	// UpdateVoucherStatus requests a status transition and returns the
	// aggregate as the server decided it.
	UpdateVoucherStatus(ctx context.Context, id uuid.UUID, status voucher.Status) (*voucher.StorageVoucher, error)

	// ProcessVoucher requests the processing transition toward completion.
	ProcessVoucher(ctx context.Context, id uuid.UUID) (*voucher.StorageVoucher, error)

	// SendProcessCompletedEmail triggers the completion notification email.
	SendProcessCompletedEmail(ctx context.Context, id uuid.UUID) (NotificationResult, error)
}
