package api_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storein/mobile-core/internal/application/fulfillment"
	"github.com/storein/mobile-core/internal/domain/shared"
	"github.com/storein/mobile-core/internal/domain/voucher"
	"github.com/storein/mobile-core/internal/infrastructure/api"
	"github.com/storein/mobile-core/internal/stubserver"
)

func fulfillmentQuery(page, size int) fulfillment.ListQuery {
	return fulfillment.ListQuery{Page: page, PageSize: size}
}

type clientFixture struct {
	store  *stubserver.Store
	client *api.StorageVoucherClient

	voucherID uuid.UUID
	detailID  uuid.UUID
	stockID   uuid.UUID
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()

	f := &clientFixture{
		store:     stubserver.NewStore(),
		voucherID: uuid.New(),
		detailID:  uuid.New(),
		stockID:   uuid.New(),
	}
	f.store.Put(&voucher.StorageVoucher{
		ID:                f.voucherID,
		Code:              "SV-100",
		StorageDate:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Priority:          voucher.PriorityHigh,
		Status:            voucher.StatusApproved,
		IsValidForProcess: true,
		Details: []voucher.Detail{
			{
				ID:        f.detailID,
				VoucherID: f.voucherID,
				StockID:   f.stockID,
				Code:      "GOOD-1",
				Name:      "Widget",
				Quantity:  decimal.NewFromInt(50),
			},
		},
	})
	f.store.Put(&voucher.StorageVoucher{
		ID:          uuid.New(),
		Code:        "SV-200",
		StorageDate: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Priority:    voucher.PriorityLow,
		Status:      voucher.StatusPending,
	})

	server := httptest.NewServer(stubserver.New(f.store, zap.NewNop()).Handler())
	t.Cleanup(server.Close)

	transport := api.NewTransport(server.URL, api.StaticTokenSource("test-token"))
	f.client = api.NewStorageVoucherClient(transport)
	return f
}

func (f *clientFixture) item(qty int64) voucher.Item {
	return voucher.Item{
		Identity:      voucher.PendingIdentity(1),
		DetailID:      f.detailID,
		StockID:       f.stockID,
		WarehouseID:   uuid.New(),
		AreaID:        uuid.New(),
		RowID:         uuid.New(),
		ShelfID:       uuid.New(),
		WarehouseName: "Main",
		AreaName:      "Receiving",
		RowName:       "Row 1",
		ShelfName:     "Shelf 1",
		Quantity:      decimal.NewFromInt(qty),
		Level:         1,
		Position:      2,
	}
}

func TestStorageVoucherClient_ListVouchers(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	t.Run("unfiltered list returns every voucher", func(t *testing.T) {
		page, err := f.client.ListVouchers(ctx, fulfillmentQuery(1, 20))
		require.NoError(t, err)
		assert.Equal(t, 2, page.Count)
		assert.Len(t, page.Results, 2)
	})

	t.Run("status filter narrows the results", func(t *testing.T) {
		query := fulfillmentQuery(1, 20)
		query.Status = voucher.StatusApproved
		page, err := f.client.ListVouchers(ctx, query)
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "SV-100", page.Results[0].Code)
		assert.Equal(t, 1, page.Results[0].DetailCount)
	})

	t.Run("date range filter", func(t *testing.T) {
		start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
		query := fulfillmentQuery(1, 20)
		query.StorageDateStart = &start
		page, err := f.client.ListVouchers(ctx, query)
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "SV-200", page.Results[0].Code)
	})

	t.Run("pagination clamps past the last page", func(t *testing.T) {
		page, err := f.client.ListVouchers(ctx, fulfillmentQuery(5, 20))
		require.NoError(t, err)
		assert.Equal(t, 2, page.Count)
		assert.Empty(t, page.Results)
	})
}

func TestStorageVoucherClient_GetVoucher(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	v, err := f.client.GetVoucher(ctx, f.voucherID)
	require.NoError(t, err)
	assert.Equal(t, "SV-100", v.Code)
	require.Len(t, v.Details, 1)
	assert.True(t, v.Details[0].Quantity.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, f.voucherID, v.Details[0].VoucherID)

	_, err = f.client.GetVoucher(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStorageVoucherClient_UpsertItem(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	t.Run("create assigns a server identity", func(t *testing.T) {
		persisted, err := f.client.UpsertItem(ctx, f.item(20))
		require.NoError(t, err)

		serverID, ok := persisted.Identity.ServerID()
		require.True(t, ok)
		assert.NotEqual(t, uuid.Nil, serverID)
		assert.Equal(t, voucher.ItemStatusStored, persisted.Status)
		assert.True(t, persisted.Quantity.Equal(decimal.NewFromInt(20)))
	})

	t.Run("repeating an update leaves exactly one record", func(t *testing.T) {
		persisted, err := f.client.UpsertItem(ctx, f.item(10))
		require.NoError(t, err)

		persisted.Quantity = decimal.NewFromInt(15)
		for range 2 {
			persisted, err = f.client.UpsertItem(ctx, persisted)
			require.NoError(t, err)
		}

		v, err := f.client.GetVoucher(ctx, f.voucherID)
		require.NoError(t, err)
		detail, ok := v.Detail(f.detailID)
		require.True(t, ok)

		matches := 0
		for _, item := range detail.Items {
			if item.Identity.Equal(persisted.Identity) {
				matches++
				assert.True(t, item.Quantity.Equal(decimal.NewFromInt(15)))
			}
		}
		assert.Equal(t, 1, matches)
	})

	t.Run("invalid payload fails before any network call", func(t *testing.T) {
		item := f.item(5)
		item.ShelfID = uuid.Nil
		_, err := f.client.UpsertItem(ctx, item)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("injected backend failure surfaces as a request error", func(t *testing.T) {
		f.store.FailStock(f.stockID)
		defer f.store.ClearFailures()

		_, err := f.client.UpsertItem(ctx, f.item(5))
		assert.ErrorIs(t, err, shared.ErrRequestFailed)
	})
}

func TestStorageVoucherClient_UpdateVoucherStatus(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	t.Run("allowed transition returns the updated aggregate", func(t *testing.T) {
		v, err := f.client.UpdateVoucherStatus(ctx, f.voucherID, voucher.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, voucher.StatusCancelled, v.Status)
	})

	t.Run("forbidden transition is rejected by the server", func(t *testing.T) {
		_, err := f.client.UpdateVoucherStatus(ctx, f.voucherID, voucher.StatusApproved)
		assert.ErrorIs(t, err, shared.ErrRequestFailed)
	})

	t.Run("unknown status fails locally", func(t *testing.T) {
		_, err := f.client.UpdateVoucherStatus(ctx, f.voucherID, voucher.Status("BOGUS"))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestStorageVoucherClient_ProcessVoucher(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	v, err := f.client.ProcessVoucher(ctx, f.voucherID)
	require.NoError(t, err)
	assert.True(t, v.IsCompleted())

	_, err = f.client.ProcessVoucher(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStorageVoucherClient_SendProcessCompletedEmail(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	result, err := f.client.SendProcessCompletedEmail(ctx, f.voucherID)
	require.NoError(t, err)
	assert.Equal(t, 200, result.StatusCode)
	assert.NotEmpty(t, result.Message)

	_, err = f.client.SendProcessCompletedEmail(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
