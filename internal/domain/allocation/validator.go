package allocation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storein/mobile-core/internal/domain/location"
)

// RuleCode identifies the field-level rule a mutation violated.
type RuleCode string

const (
	RuleIncompleteSelection  RuleCode = "INCOMPLETE_SELECTION"
	RuleNonPositiveQuantity  RuleCode = "NON_POSITIVE_QUANTITY"
	RuleUnresolvableLocation RuleCode = "UNRESOLVABLE_LOCATION"
	RuleItemNotFound         RuleCode = "ITEM_NOT_FOUND"
)

// ValidationError is a structured, per-field rejection of an allocation
// mutation. It is returned as a value rather than thrown so the mutation API
// stays total: a rejected mutation leaves the set untouched and the caller can
// render the reason against the offending field.
type ValidationError struct {
	Rule    RuleCode
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

func incompleteSelection(field string) *ValidationError {
	return &ValidationError{
		Rule:    RuleIncompleteSelection,
		Field:   field,
		Message: "A complete warehouse, area, row and shelf selection is required",
	}
}

func nonPositiveQuantity() *ValidationError {
	return &ValidationError{
		Rule:    RuleNonPositiveQuantity,
		Field:   "quantity",
		Message: "Quantity must be greater than zero",
	}
}

// Validator holds the stateless allocation rules. CanAdd and CanEdit re-expose
// the field checks applied inside Set mutations as pre-flight queries, so the
// caller can surface per-field messages before attempting the mutation.
type Validator struct{}

// CanAdd checks whether a selection/quantity pair would be accepted by
// Set.Add. Returns nil when the pair is acceptable.
func (Validator) CanAdd(sel location.Selection, quantity decimal.Decimal) *ValidationError {
	if field, ok := missingSelectionField(sel); ok {
		return incompleteSelection(field)
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nonPositiveQuantity()
	}
	return nil
}

// CanEdit checks whether an edit with the given optional fields would be
// accepted by Set.Edit. A nil selection or quantity means "keep the current
// value" and is not validated here.
func (v Validator) CanEdit(sel *location.Selection, quantity *decimal.Decimal) *ValidationError {
	if sel != nil {
		if field, ok := missingSelectionField(*sel); ok {
			return incompleteSelection(field)
		}
	}
	if quantity != nil && quantity.LessThanOrEqual(decimal.Zero) {
		return nonPositiveQuantity()
	}
	return nil
}

// CanCommit reports whether the set is in a committable state: at least one
// item and no over-allocation. Under-allocation (remaining > 0) is a valid
// committed state, operators may stage partial placements across sessions.
func (Validator) CanCommit(s *Set) bool {
	return len(s.items) > 0 && !s.Remaining().IsNegative()
}

func missingSelectionField(sel location.Selection) (string, bool) {
	switch {
	case sel.WarehouseID == uuid.Nil:
		return "warehouseId", true
	case sel.AreaID == uuid.Nil:
		return "areaId", true
	case sel.RowID == uuid.Nil:
		return "rowId", true
	case sel.ShelfID == uuid.Nil:
		return "shelfId", true
	}
	return "", false
}
