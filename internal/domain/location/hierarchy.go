package location

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/storein/mobile-core/internal/domain/shared"
)

// HierarchyIndex is a pure lookup over the four flat master-data collections.
// It derives parent→children relationships on demand and never mutates its
// inputs. Consumers must re-derive child lists after every change to a parent
// selection; a child selection that is no longer yielded by its parent must be
// cleared by the consumer, the index never auto-repairs it.
type HierarchyIndex struct {
	warehouses map[uuid.UUID]Warehouse
	areas      map[uuid.UUID]Area
	rows       map[uuid.UUID]Row
	shelves    map[uuid.UUID]Shelf

	// insertion order is preserved so derived lists are stable
	warehouseOrder []uuid.UUID
	areaOrder      []uuid.UUID
	rowOrder       []uuid.UUID
	shelfOrder     []uuid.UUID
}

// NewHierarchyIndex builds an index from plain collections. Inactive and
// deleted entries are excluded up front so no consumer can select them.
func NewHierarchyIndex(warehouses []Warehouse, areas []Area, rows []Row, shelves []Shelf) *HierarchyIndex {
	idx := &HierarchyIndex{
		warehouses: make(map[uuid.UUID]Warehouse, len(warehouses)),
		areas:      make(map[uuid.UUID]Area, len(areas)),
		rows:       make(map[uuid.UUID]Row, len(rows)),
		shelves:    make(map[uuid.UUID]Shelf, len(shelves)),
	}

	for _, w := range warehouses {
		if w.IsActive && !w.IsDeleted {
			idx.warehouses[w.ID] = w
			idx.warehouseOrder = append(idx.warehouseOrder, w.ID)
		}
	}
	for _, a := range areas {
		if a.IsActive && !a.IsDeleted {
			idx.areas[a.ID] = a
			idx.areaOrder = append(idx.areaOrder, a.ID)
		}
	}
	for _, r := range rows {
		if r.IsActive && !r.IsDeleted {
			idx.rows[r.ID] = r
			idx.rowOrder = append(idx.rowOrder, r.ID)
		}
	}
	for _, s := range shelves {
		if s.IsActive && !s.IsDeleted {
			idx.shelves[s.ID] = s
			idx.shelfOrder = append(idx.shelfOrder, s.ID)
		}
	}

	return idx
}

// Warehouses returns all active warehouses.
func (idx *HierarchyIndex) Warehouses() []Warehouse {
	result := make([]Warehouse, 0, len(idx.warehouses))
	for _, id := range idx.warehouseOrder {
		result = append(result, idx.warehouses[id])
	}
	return result
}

// AreasOf returns the areas whose warehouse foreign key equals warehouseID.
// Returns the empty slice if warehouseID is absent or has no areas.
func (idx *HierarchyIndex) AreasOf(warehouseID uuid.UUID) []Area {
	result := make([]Area, 0)
	for _, id := range idx.areaOrder {
		if a := idx.areas[id]; a.WarehouseID == warehouseID {
			result = append(result, a)
		}
	}
	return result
}

// RowsOf returns the rows whose area foreign key equals areaID.
func (idx *HierarchyIndex) RowsOf(areaID uuid.UUID) []Row {
	result := make([]Row, 0)
	for _, id := range idx.rowOrder {
		if r := idx.rows[id]; r.AreaID == areaID {
			result = append(result, r)
		}
	}
	return result
}

// ShelvesOf returns the shelves whose row foreign key equals rowID.
func (idx *HierarchyIndex) ShelvesOf(rowID uuid.UUID) []Shelf {
	result := make([]Shelf, 0)
	for _, id := range idx.shelfOrder {
		if s := idx.shelves[id]; s.RowID == rowID {
			result = append(result, s)
		}
	}
	return result
}

// Shelf returns the shelf with the given id, if present.
func (idx *HierarchyIndex) Shelf(shelfID uuid.UUID) (Shelf, bool) {
	s, ok := idx.shelves[shelfID]
	return s, ok
}

// Resolve walks Shelf→Row→Area→Warehouse for the given selection and returns
// the denormalized names alongside the ids. The denormalized fields are always
// re-derived here at selection time, never trusted from a stale copy.
//
// Resolve fails if any link of the chain is missing, if the selection's ids
// are mutually inconsistent (e.g. the shelf does not belong to the selected
// row), or if (level, position) falls outside the shelf's bounds.
func (idx *HierarchyIndex) Resolve(sel Selection) (ResolvedLocation, error) {
	if !sel.IsComplete() {
		return ResolvedLocation{}, shared.NewDomainError("INCOMPLETE_SELECTION", "Warehouse, area, row and shelf must all be selected")
	}

	shelf, ok := idx.shelves[sel.ShelfID]
	if !ok {
		return ResolvedLocation{}, shared.NewDomainError("UNKNOWN_SHELF", "Selected shelf does not exist")
	}
	if shelf.RowID != sel.RowID {
		return ResolvedLocation{}, shared.NewDomainError("INCONSISTENT_SELECTION", "Selected shelf does not belong to the selected row")
	}

	row, ok := idx.rows[sel.RowID]
	if !ok {
		return ResolvedLocation{}, shared.NewDomainError("UNKNOWN_ROW", "Selected row does not exist")
	}
	if row.AreaID != sel.AreaID {
		return ResolvedLocation{}, shared.NewDomainError("INCONSISTENT_SELECTION", "Selected row does not belong to the selected area")
	}

	area, ok := idx.areas[sel.AreaID]
	if !ok {
		return ResolvedLocation{}, shared.NewDomainError("UNKNOWN_AREA", "Selected area does not exist")
	}
	if area.WarehouseID != sel.WarehouseID {
		return ResolvedLocation{}, shared.NewDomainError("INCONSISTENT_SELECTION", "Selected area does not belong to the selected warehouse")
	}

	warehouse, ok := idx.warehouses[sel.WarehouseID]
	if !ok {
		return ResolvedLocation{}, shared.NewDomainError("UNKNOWN_WAREHOUSE", "Selected warehouse does not exist")
	}

	if sel.Level < 1 || sel.Level > shelf.LevelCount {
		return ResolvedLocation{}, shared.NewDomainError("INVALID_LEVEL",
			fmt.Sprintf("Level %d is out of range for shelf %s (1-%d)", sel.Level, shelf.Code, shelf.LevelCount))
	}
	if sel.Position < 1 || sel.Position > shelf.PositionsPerLevel {
		return ResolvedLocation{}, shared.NewDomainError("INVALID_POSITION",
			fmt.Sprintf("Position %d is out of range for shelf %s (1-%d)", sel.Position, shelf.Code, shelf.PositionsPerLevel))
	}

	return ResolvedLocation{
		WarehouseID:   warehouse.ID,
		AreaID:        area.ID,
		RowID:         row.ID,
		ShelfID:       shelf.ID,
		WarehouseName: warehouse.Name,
		AreaName:      area.Name,
		RowName:       row.Name,
		ShelfName:     shelf.Name,
		Level:         sel.Level,
		Position:      sel.Position,
	}, nil
}
