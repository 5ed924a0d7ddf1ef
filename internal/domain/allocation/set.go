package allocation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storein/mobile-core/internal/domain/location"
	"github.com/storein/mobile-core/internal/domain/voucher"
)

// Set is the working collection of items for one voucher detail during an
// editing session. It owns the conservation invariant:
//
//	allocated + remaining == total
//
// after every operation. Remaining may go negative while editing; the deficit
// is surfaced through Remaining() and blocks commit via the validator, it is
// never clamped or raised as an error. The set holds no locks, performs no
// I/O and knows nothing about voucher status; discarding it before commit
// persists nothing.
type Set struct {
	detail    *voucher.Detail
	index     *location.HierarchyIndex
	validator Validator

	items []voucher.Item
	seed  []voucher.Item

	// nextSeq numbers pending items created in this session
	nextSeq int64
}

// NewSet seeds a working set from the detail's existing items. The hierarchy
// index drives name resolution for every add/edit in this session.
func NewSet(detail *voucher.Detail, index *location.HierarchyIndex) *Set {
	s := &Set{
		detail: detail,
		index:  index,
	}
	s.seed = make([]voucher.Item, len(detail.Items))
	copy(s.seed, detail.Items)
	s.items = make([]voucher.Item, len(detail.Items))
	copy(s.items, detail.Items)
	return s
}

// DetailID returns the id of the detail this set allocates for.
func (s *Set) DetailID() uuid.UUID {
	return s.detail.ID
}

// Items returns a copy of the current working items.
func (s *Set) Items() []voucher.Item {
	items := make([]voucher.Item, len(s.items))
	copy(items, s.items)
	return items
}

// Total returns the detail's target quantity.
func (s *Set) Total() decimal.Decimal {
	return s.detail.Quantity
}

// Allocated returns the sum of all item quantities in the working set.
func (s *Set) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Quantity)
	}
	return total
}

// Remaining returns total minus allocated. Negative values are first-class:
// they indicate over-allocation and must be inspectable by the caller.
func (s *Set) Remaining() decimal.Decimal {
	return s.Total().Sub(s.Allocated())
}

// Add validates the selection and quantity, resolves the denormalized
// location names through the hierarchy index and appends a pending item.
// A rejected add leaves the set completely unchanged.
func (s *Set) Add(sel location.Selection, quantity decimal.Decimal) error {
	if verr := s.validator.CanAdd(sel, quantity); verr != nil {
		return verr
	}

	resolved, err := s.index.Resolve(sel)
	if err != nil {
		return &ValidationError{Rule: RuleUnresolvableLocation, Field: "shelfId", Message: err.Error()}
	}

	s.nextSeq++
	s.items = append(s.items, voucher.Item{
		Identity:      voucher.PendingIdentity(s.nextSeq),
		DetailID:      s.detail.ID,
		StockID:       s.detail.StockID,
		WarehouseID:   resolved.WarehouseID,
		AreaID:        resolved.AreaID,
		RowID:         resolved.RowID,
		ShelfID:       resolved.ShelfID,
		WarehouseName: resolved.WarehouseName,
		AreaName:      resolved.AreaName,
		RowName:       resolved.RowName,
		ShelfName:     resolved.ShelfName,
		Quantity:      quantity,
		Level:         resolved.Level,
		Position:      resolved.Position,
		Status:        voucher.ItemStatusPending,
	})

	return nil
}

// Edit replaces an item's location and/or quantity in place, preserving its
// identity (committed server id or pending sequence number). A nil selection
// or quantity keeps the current value. Validation mirrors Add; a rejected
// edit leaves the set unchanged.
func (s *Set) Edit(id voucher.ItemIdentity, sel *location.Selection, quantity *decimal.Decimal) error {
	if verr := s.validator.CanEdit(sel, quantity); verr != nil {
		return verr
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return &ValidationError{Rule: RuleItemNotFound, Field: "itemId", Message: "Item not found in allocation set"}
	}

	item := s.items[idx]

	if sel != nil {
		resolved, err := s.index.Resolve(*sel)
		if err != nil {
			return &ValidationError{Rule: RuleUnresolvableLocation, Field: "shelfId", Message: err.Error()}
		}
		item.WarehouseID = resolved.WarehouseID
		item.AreaID = resolved.AreaID
		item.RowID = resolved.RowID
		item.ShelfID = resolved.ShelfID
		item.WarehouseName = resolved.WarehouseName
		item.AreaName = resolved.AreaName
		item.RowName = resolved.RowName
		item.ShelfName = resolved.ShelfName
		item.Level = resolved.Level
		item.Position = resolved.Position
	}
	if quantity != nil {
		item.Quantity = *quantity
	}

	s.items[idx] = item
	return nil
}

// Remove deletes the item with the given identity. Removing an unknown
// identity is a no-op so callers can treat remove as idempotent.
func (s *Set) Remove(id voucher.ItemIdentity) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
}

// Reset returns the set to the state produced by the last initialization.
func (s *Set) Reset() {
	s.items = make([]voucher.Item, len(s.seed))
	copy(s.items, s.seed)
	s.nextSeq = 0
}

// Item returns the working item with the given identity, if present.
func (s *Set) Item(id voucher.ItemIdentity) (voucher.Item, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return voucher.Item{}, false
	}
	return s.items[idx], true
}

// PendingItems returns the working items that have not been persisted yet.
func (s *Set) PendingItems() []voucher.Item {
	result := make([]voucher.Item, 0)
	for _, item := range s.items {
		if item.Identity.IsPending() {
			result = append(result, item)
		}
	}
	return result
}

func (s *Set) indexOf(id voucher.ItemIdentity) int {
	for i := range s.items {
		if s.items[i].Identity.Equal(id) {
			return i
		}
	}
	return -1
}
