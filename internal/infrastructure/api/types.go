package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storein/mobile-core/internal/domain/voucher"
)

// Wire representations of the backend's storage-voucher resources. Ids travel
// as strings; quantities and costs as JSON numbers parsed into decimals.

type listEnvelope struct {
	Data  []summaryPayload `json:"data"`
	Count int              `json:"count"`
}

type summaryPayload struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	StorageDate  time.Time  `json:"storageDate"`
	Priority     int        `json:"priority"`
	Status       string     `json:"status"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
	AssignedName string     `json:"assignedName,omitempty"`
	DetailCount  int        `json:"detailCount"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

type voucherPayload struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	StorageDate       time.Time       `json:"storageDate"`
	Priority          int             `json:"priority"`
	Status            string          `json:"status"`
	Notes             string          `json:"notes,omitempty"`
	CreatedBy         string          `json:"createdBy,omitempty"`
	AssignedTo        string          `json:"assignedTo,omitempty"`
	AssignedName      string          `json:"assignedName,omitempty"`
	IsValidForProcess bool            `json:"isValidForProcess"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	Details           []detailPayload `json:"details"`
}

type detailPayload struct {
	ID         string          `json:"id"`
	VoucherID  string          `json:"voucherId,omitempty"`
	StockID    string          `json:"stockId"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Supplier   string          `json:"supplier,omitempty"`
	LotNumber  string          `json:"lotNumber,omitempty"`
	ExpiryDate *time.Time      `json:"expiryDate,omitempty"`
	Cost       decimal.Decimal `json:"cost"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notes      string          `json:"notes,omitempty"`
	Status     string          `json:"status,omitempty"`
	Items      []itemPayload   `json:"storageVoucherItems"`
}

type itemPayload struct {
	ID            string          `json:"id"`
	DetailID      string          `json:"detailId"`
	StockID       string          `json:"stockId"`
	WarehouseID   string          `json:"warehouseId"`
	AreaID        string          `json:"areaId"`
	RowID         string          `json:"rowId"`
	ShelfID       string          `json:"shelfId"`
	WarehouseName string          `json:"warehouseName,omitempty"`
	AreaName      string          `json:"areaName,omitempty"`
	RowName       string          `json:"rowName,omitempty"`
	ShelfName     string          `json:"shelfName,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Level         int             `json:"level"`
	Position      int             `json:"position"`
	Status        string          `json:"status,omitempty"`
}

type itemEnvelope struct {
	Data itemPayload `json:"data"`
}

// upsertItemRequest always carries the full denormalized location fields plus
// stockId and detailId. The id is present only for committed items; its
// absence makes the request a create from the server's perspective.
type upsertItemRequest struct {
	ID            string          `json:"id,omitempty"`
	DetailID      string          `json:"detailId" validate:"required,uuid"`
	StockID       string          `json:"stockId" validate:"required,uuid"`
	WarehouseID   string          `json:"warehouseId" validate:"required,uuid"`
	AreaID        string          `json:"areaId" validate:"required,uuid"`
	RowID         string          `json:"rowId" validate:"required,uuid"`
	ShelfID       string          `json:"shelfId" validate:"required,uuid"`
	WarehouseName string          `json:"warehouseName"`
	AreaName      string          `json:"areaName"`
	RowName       string          `json:"rowName"`
	ShelfName     string          `json:"shelfName"`
	Quantity      decimal.Decimal `json:"quantity"`
	Level         int             `json:"level" validate:"min=1"`
	Position      int             `json:"position" validate:"min=1"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type emailResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func (p summaryPayload) toDomain() (voucher.Summary, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return voucher.Summary{}, fmt.Errorf("invalid voucher id %q: %w", p.ID, err)
	}
	assignedTo, _ := uuid.Parse(p.AssignedTo)
	return voucher.Summary{
		ID:           id,
		Code:         p.Code,
		StorageDate:  p.StorageDate,
		Priority:     voucher.Priority(p.Priority),
		Status:       voucher.Status(p.Status),
		AssignedTo:   assignedTo,
		AssignedName: p.AssignedName,
		DetailCount:  p.DetailCount,
		CompletedAt:  p.CompletedAt,
	}, nil
}

func (p voucherPayload) toDomain() (*voucher.StorageVoucher, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid voucher id %q: %w", p.ID, err)
	}
	assignedTo, _ := uuid.Parse(p.AssignedTo)

	v := &voucher.StorageVoucher{
		ID:                id,
		Code:              p.Code,
		StorageDate:       p.StorageDate,
		Priority:          voucher.Priority(p.Priority),
		Status:            voucher.Status(p.Status),
		Notes:             p.Notes,
		CreatedBy:         p.CreatedBy,
		AssignedTo:        assignedTo,
		AssignedName:      p.AssignedName,
		IsValidForProcess: p.IsValidForProcess,
		CompletedAt:       p.CompletedAt,
		Details:           make([]voucher.Detail, 0, len(p.Details)),
	}
	for _, dp := range p.Details {
		d, err := dp.toDomain(id)
		if err != nil {
			return nil, err
		}
		v.Details = append(v.Details, d)
	}
	return v, nil
}

func (p detailPayload) toDomain(voucherID uuid.UUID) (voucher.Detail, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return voucher.Detail{}, fmt.Errorf("invalid detail id %q: %w", p.ID, err)
	}
	stockID, err := uuid.Parse(p.StockID)
	if err != nil {
		return voucher.Detail{}, fmt.Errorf("invalid stock id %q: %w", p.StockID, err)
	}

	d := voucher.Detail{
		ID:         id,
		VoucherID:  voucherID,
		StockID:    stockID,
		Code:       p.Code,
		Name:       p.Name,
		Supplier:   p.Supplier,
		LotNumber:  p.LotNumber,
		ExpiryDate: p.ExpiryDate,
		Cost:       p.Cost,
		Quantity:   p.Quantity,
		Notes:      p.Notes,
		Status:     p.Status,
		Items:      make([]voucher.Item, 0, len(p.Items)),
	}
	for _, ip := range p.Items {
		item, err := ip.toDomain()
		if err != nil {
			return voucher.Detail{}, err
		}
		d.Items = append(d.Items, item)
	}
	return d, nil
}

func (p itemPayload) toDomain() (voucher.Item, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return voucher.Item{}, fmt.Errorf("invalid item id %q: %w", p.ID, err)
	}
	detailID, err := uuid.Parse(p.DetailID)
	if err != nil {
		return voucher.Item{}, fmt.Errorf("invalid item detail id %q: %w", p.DetailID, err)
	}
	stockID, _ := uuid.Parse(p.StockID)
	warehouseID, _ := uuid.Parse(p.WarehouseID)
	areaID, _ := uuid.Parse(p.AreaID)
	rowID, _ := uuid.Parse(p.RowID)
	shelfID, _ := uuid.Parse(p.ShelfID)

	status := voucher.ItemStatus(p.Status)
	if !status.IsValid() {
		status = voucher.ItemStatusStored
	}

	return voucher.Item{
		Identity:      voucher.CommittedIdentity(id),
		DetailID:      detailID,
		StockID:       stockID,
		WarehouseID:   warehouseID,
		AreaID:        areaID,
		RowID:         rowID,
		ShelfID:       shelfID,
		WarehouseName: p.WarehouseName,
		AreaName:      p.AreaName,
		RowName:       p.RowName,
		ShelfName:     p.ShelfName,
		Quantity:      p.Quantity,
		Level:         p.Level,
		Position:      p.Position,
		Status:        status,
	}, nil
}

func upsertRequestFromItem(item voucher.Item) upsertItemRequest {
	req := upsertItemRequest{
		DetailID:      item.DetailID.String(),
		StockID:       item.StockID.String(),
		WarehouseID:   item.WarehouseID.String(),
		AreaID:        item.AreaID.String(),
		RowID:         item.RowID.String(),
		ShelfID:       item.ShelfID.String(),
		WarehouseName: item.WarehouseName,
		AreaName:      item.AreaName,
		RowName:       item.RowName,
		ShelfName:     item.ShelfName,
		Quantity:      item.Quantity,
		Level:         item.Level,
		Position:      item.Position,
	}
	if serverID, ok := item.Identity.ServerID(); ok {
		req.ID = serverID.String()
	}
	return req
}
