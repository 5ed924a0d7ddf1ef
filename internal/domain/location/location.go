package location

import (
	"github.com/google/uuid"
)

// Warehouse is the root of the physical location hierarchy.
type Warehouse struct {
	ID        uuid.UUID
	Code      string
	Name      string
	IsActive  bool
	IsDeleted bool
}

// Area belongs to exactly one warehouse.
type Area struct {
	ID          uuid.UUID
	WarehouseID uuid.UUID
	Code        string
	Name        string
	IsActive    bool
	IsDeleted   bool
}

// Row belongs to exactly one area.
type Row struct {
	ID        uuid.UUID
	AreaID    uuid.UUID
	Code      string
	Name      string
	IsActive  bool
	IsDeleted bool
}

// Shelf belongs to exactly one row. LevelCount and PositionsPerLevel bound
// the valid (level, position) pairs on the shelf.
type Shelf struct {
	ID                uuid.UUID
	RowID             uuid.UUID
	Code              string
	Name              string
	LevelCount        int
	PositionsPerLevel int
	IsActive          bool
	IsDeleted         bool
}

// Selection identifies one concrete placement target chosen by the operator:
// a full warehouse→area→row→shelf path plus a (level, position) slot.
type Selection struct {
	WarehouseID uuid.UUID
	AreaID      uuid.UUID
	RowID       uuid.UUID
	ShelfID     uuid.UUID
	Level       int
	Position    int
}

// IsComplete returns true if all four hierarchy ids are present.
func (s Selection) IsComplete() bool {
	return s.WarehouseID != uuid.Nil &&
		s.AreaID != uuid.Nil &&
		s.RowID != uuid.Nil &&
		s.ShelfID != uuid.Nil
}

// ResolvedLocation is a selection enriched with the denormalized names derived
// by walking Shelf→Row→Area→Warehouse through the hierarchy index.
type ResolvedLocation struct {
	WarehouseID   uuid.UUID
	AreaID        uuid.UUID
	RowID         uuid.UUID
	ShelfID       uuid.UUID
	WarehouseName string
	AreaName      string
	RowName       string
	ShelfName     string
	Level         int
	Position      int
}
