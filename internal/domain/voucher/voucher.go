package voucher

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storein/mobile-core/internal/domain/shared"
)

// Item is one concrete placement of a sub-quantity of a detail into a shelf
// location. The denormalized location names are populated at selection time by
// walking the hierarchy index; they are never read back from stale copies.
type Item struct {
	Identity ItemIdentity
	DetailID uuid.UUID
	StockID  uuid.UUID

	WarehouseID   uuid.UUID
	AreaID        uuid.UUID
	RowID         uuid.UUID
	ShelfID       uuid.UUID
	WarehouseName string
	AreaName      string
	RowName       string
	ShelfName     string

	Quantity decimal.Decimal
	Level    int
	Position int
	Status   ItemStatus
}

// Detail is one line of a storage voucher: a good and the target quantity the
// operator must place across one or more locations.
type Detail struct {
	ID         uuid.UUID
	VoucherID  uuid.UUID
	StockID    uuid.UUID
	Code       string
	Name       string
	Supplier   string
	LotNumber  string
	ExpiryDate *time.Time
	Cost       decimal.Decimal
	Quantity   decimal.Decimal
	Notes      string
	Status     string
	Items      []Item
}

// AllocatedQuantity returns the sum of the detail's item quantities.
func (d *Detail) AllocatedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Quantity)
	}
	return total
}

// RemainingQuantity returns the target quantity minus the allocated quantity.
// The result may be negative while the operator is editing; callers decide
// what to do with the deficit, nothing is clamped here.
func (d *Detail) RemainingQuantity() decimal.Decimal {
	return d.Quantity.Sub(d.AllocatedQuantity())
}

// ReplaceItems swaps the detail's item collection.
func (d *Detail) ReplaceItems(items []Item) {
	d.Items = items
}

// StorageVoucher is the top-level storage request document. It is created
// DRAFT by an external process; the client only requests transitions and
// adopts whatever the server returns.
type StorageVoucher struct {
	ID                uuid.UUID
	Code              string
	StorageDate       time.Time
	Priority          Priority
	Status            Status
	Notes             string
	CreatedBy         string
	AssignedTo        uuid.UUID
	AssignedName      string
	IsValidForProcess bool
	CompletedAt       *time.Time
	Details           []Detail
}

// Detail returns the detail with the given id, if present.
func (v *StorageVoucher) Detail(detailID uuid.UUID) (*Detail, bool) {
	for i := range v.Details {
		if v.Details[i].ID == detailID {
			return &v.Details[i], true
		}
	}
	return nil, false
}

// CanAllocate returns true if the voucher's status permits opening an
// allocation session against its details. Only APPROVED vouchers qualify;
// the check belongs to the caller, the allocation set itself is agnostic
// about voucher status.
func (v *StorageVoucher) CanAllocate() bool {
	return v.Status == StatusApproved
}

// IsCompleted returns true once the external process transition has run.
func (v *StorageVoucher) IsCompleted() bool {
	return v.CompletedAt != nil
}

// Validate checks structural consistency of a voucher aggregate as received
// from the backend.
func (v *StorageVoucher) Validate() error {
	if v.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_VOUCHER", "Voucher ID cannot be empty")
	}
	if !v.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown voucher status "+v.Status.String())
	}
	if !v.Priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Unknown voucher priority")
	}
	for i := range v.Details {
		d := &v.Details[i]
		if d.ID == uuid.Nil {
			return shared.NewDomainError("INVALID_DETAIL", "Detail ID cannot be empty")
		}
		if d.Quantity.IsNegative() {
			return shared.NewDomainError("INVALID_QUANTITY", "Detail target quantity cannot be negative")
		}
	}
	return nil
}

// Summary is the flat representation returned by list queries; the nested
// aggregate is only loaded by fetching a single voucher.
type Summary struct {
	ID           uuid.UUID
	Code         string
	StorageDate  time.Time
	Priority     Priority
	Status       Status
	AssignedTo   uuid.UUID
	AssignedName string
	DetailCount  int
	CompletedAt  *time.Time
}
