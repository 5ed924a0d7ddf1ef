package stubserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storein/mobile-core/internal/domain/shared"
	"github.com/storein/mobile-core/internal/domain/voucher"
	"github.com/storein/mobile-core/internal/infrastructure/logger"
)

// Server is an in-memory stand-in for the storage-voucher backend. It serves
// the same REST surface the mobile client consumes, so the client, the CLI
// and the integration-style tests can run without a real backend.
type Server struct {
	store  *Store
	logger *zap.Logger
	engine *gin.Engine
}

// New creates a stub server over the given store.
func New(store *Store, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(logger.Recovery(log), logger.GinMiddleware(log))

	s := &Server{
		store:  store,
		logger: log,
		engine: engine,
	}

	mobile := engine.Group("/api/mobile/storage-vouchers")
	mobile.GET("", s.listVouchers)
	mobile.GET("/send-email-process-completed/:id", s.sendCompletionEmail)
	mobile.GET("/:id", s.getVoucher)

	base := engine.Group("/api/storage-vouchers")
	base.PATCH("/:id/status", s.updateStatus)
	base.POST("/create-or-update-item", s.upsertItem)
	base.POST("/:id/process", s.processVoucher)

	return s
}

// Handler returns the http.Handler for test servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("stub backend listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func (s *Server) listVouchers(c *gin.Context) {
	filter := ListFilter{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "pageSize", 20),
		Code:     c.Query("code"),
		Status:   voucher.Status(c.Query("status")),
		Search:   c.Query("search"),
	}
	if p, err := strconv.Atoi(c.Query("priorityList")); err == nil {
		filter.Priority = voucher.Priority(p)
	}
	if assigned, err := uuid.Parse(c.Query("assignedTo")); err == nil {
		filter.AssignedTo = assigned
	}
	if t, err := time.Parse("2006-01-02", c.Query("storageDateStart")); err == nil {
		filter.DateStart = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("storageDateEnd")); err == nil {
		filter.DateEnd = &t
	}

	matches, count := s.store.List(filter)
	data := make([]gin.H, 0, len(matches))
	for _, v := range matches {
		data = append(data, summaryJSON(v))
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "count": count})
}

func (s *Server) getVoucher(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Voucher id must be a UUID"))
		return
	}
	v, ok := s.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, errorJSON("NOT_FOUND", "Storage voucher not found"))
		return
	}
	c.JSON(http.StatusOK, voucherJSON(v))
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) updateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Voucher id must be a UUID"))
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_BODY", err.Error()))
		return
	}

	v, err := s.store.UpdateStatus(id, voucher.Status(req.Status))
	if err != nil {
		s.renderStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucherJSON(v))
}

type upsertRequest struct {
	ID            string          `json:"id"`
	DetailID      string          `json:"detailId" binding:"required,uuid"`
	StockID       string          `json:"stockId" binding:"required,uuid"`
	WarehouseID   string          `json:"warehouseId" binding:"required,uuid"`
	AreaID        string          `json:"areaId" binding:"required,uuid"`
	RowID         string          `json:"rowId" binding:"required,uuid"`
	ShelfID       string          `json:"shelfId" binding:"required,uuid"`
	WarehouseName string          `json:"warehouseName"`
	AreaName      string          `json:"areaName"`
	RowName       string          `json:"rowName"`
	ShelfName     string          `json:"shelfName"`
	Quantity      decimal.Decimal `json:"quantity"`
	Level         int             `json:"level" binding:"min=1"`
	Position      int             `json:"position" binding:"min=1"`
}

func (s *Server) upsertItem(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_BODY", err.Error()))
		return
	}
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_QUANTITY", "Quantity must be greater than zero"))
		return
	}

	item := voucher.Item{
		DetailID:      uuid.MustParse(req.DetailID),
		StockID:       uuid.MustParse(req.StockID),
		WarehouseID:   uuid.MustParse(req.WarehouseID),
		AreaID:        uuid.MustParse(req.AreaID),
		RowID:         uuid.MustParse(req.RowID),
		ShelfID:       uuid.MustParse(req.ShelfID),
		WarehouseName: req.WarehouseName,
		AreaName:      req.AreaName,
		RowName:       req.RowName,
		ShelfName:     req.ShelfName,
		Quantity:      req.Quantity,
		Level:         req.Level,
		Position:      req.Position,
	}
	if req.ID != "" {
		serverID, err := uuid.Parse(req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Item id must be a UUID"))
			return
		}
		item.Identity = voucher.CommittedIdentity(serverID)
	} else {
		item.Identity = voucher.PendingIdentity(0)
	}

	persisted, err := s.store.UpsertItem(item)
	if err != nil {
		s.renderStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": itemJSON(persisted)})
}

func (s *Server) processVoucher(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Voucher id must be a UUID"))
		return
	}
	v, err := s.store.Process(id)
	if err != nil {
		s.renderStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucherJSON(v))
}

func (s *Server) sendCompletionEmail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Voucher id must be a UUID"))
		return
	}
	if _, ok := s.store.Get(id); !ok {
		c.JSON(http.StatusNotFound, errorJSON("NOT_FOUND", "Storage voucher not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"statusCode": http.StatusOK,
		"message":    "Completion email queued",
	})
}

func (s *Server) renderStoreError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	status := http.StatusInternalServerError
	code := "INTERNAL"
	switch {
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
		code = shared.ErrNotFound.Code
	case errors.Is(err, shared.ErrInvalidTransition), errors.Is(err, shared.ErrInvalidState), errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusConflict
		code = "CONFLICT"
	}
	message := err.Error()
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	s.logger.Debug("stub request rejected", zap.String("code", code), zap.Error(err))
	c.JSON(status, errorJSON(code, message))
}

func errorJSON(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

func summaryJSON(v *voucher.StorageVoucher) gin.H {
	h := gin.H{
		"id":           v.ID.String(),
		"code":         v.Code,
		"storageDate":  v.StorageDate,
		"priority":     int(v.Priority),
		"status":       v.Status.String(),
		"assignedName": v.AssignedName,
		"detailCount":  len(v.Details),
	}
	if v.AssignedTo != uuid.Nil {
		h["assignedTo"] = v.AssignedTo.String()
	}
	if v.CompletedAt != nil {
		h["completedAt"] = v.CompletedAt
	}
	return h
}

func voucherJSON(v *voucher.StorageVoucher) gin.H {
	details := make([]gin.H, 0, len(v.Details))
	for i := range v.Details {
		details = append(details, detailJSON(&v.Details[i]))
	}
	h := gin.H{
		"id":                v.ID.String(),
		"code":              v.Code,
		"storageDate":       v.StorageDate,
		"priority":          int(v.Priority),
		"status":            v.Status.String(),
		"notes":             v.Notes,
		"createdBy":         v.CreatedBy,
		"assignedName":      v.AssignedName,
		"isValidForProcess": v.IsValidForProcess,
		"details":           details,
	}
	if v.AssignedTo != uuid.Nil {
		h["assignedTo"] = v.AssignedTo.String()
	}
	if v.CompletedAt != nil {
		h["completedAt"] = v.CompletedAt
	}
	return h
}

func detailJSON(d *voucher.Detail) gin.H {
	items := make([]gin.H, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, itemJSON(item))
	}
	h := gin.H{
		"id":                  d.ID.String(),
		"voucherId":           d.VoucherID.String(),
		"stockId":             d.StockID.String(),
		"code":                d.Code,
		"name":                d.Name,
		"supplier":            d.Supplier,
		"lotNumber":           d.LotNumber,
		"cost":                d.Cost,
		"quantity":            d.Quantity,
		"notes":               d.Notes,
		"status":              d.Status,
		"storageVoucherItems": items,
	}
	if d.ExpiryDate != nil {
		h["expiryDate"] = d.ExpiryDate
	}
	return h
}

func itemJSON(item voucher.Item) gin.H {
	serverID, _ := item.Identity.ServerID()
	return gin.H{
		"id":            serverID.String(),
		"detailId":      item.DetailID.String(),
		"stockId":       item.StockID.String(),
		"warehouseId":   item.WarehouseID.String(),
		"areaId":        item.AreaID.String(),
		"rowId":         item.RowID.String(),
		"shelfId":       item.ShelfID.String(),
		"warehouseName": item.WarehouseName,
		"areaName":      item.AreaName,
		"rowName":       item.RowName,
		"shelfName":     item.ShelfName,
		"quantity":      item.Quantity,
		"level":         item.Level,
		"position":      item.Position,
		"status":        string(item.Status),
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return fallback
}
