package fulfillment

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storein/mobile-core/internal/domain/allocation"
	"github.com/storein/mobile-core/internal/domain/location"
	"github.com/storein/mobile-core/internal/domain/shared"
	"github.com/storein/mobile-core/internal/domain/voucher"
)

// fakeUpserter assigns server ids to pending items and fails any stock id
// registered through failStock.
type fakeUpserter struct {
	mu        sync.Mutex
	calls     int
	failStock map[uuid.UUID]bool
}

func newFakeUpserter() *fakeUpserter {
	return &fakeUpserter{failStock: make(map[uuid.UUID]bool)}
}

func (f *fakeUpserter) UpsertItem(_ context.Context, item voucher.Item) (voucher.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failStock[item.StockID] {
		return voucher.Item{}, shared.NewDomainError("INJECTED_FAILURE", "simulated upsert failure")
	}
	if item.Identity.IsPending() {
		item.Identity = voucher.CommittedIdentity(uuid.New())
	}
	item.Status = voucher.ItemStatusStored
	return item, nil
}

func pendingItem(seq int64, stockID uuid.UUID, qty int64) voucher.Item {
	return voucher.Item{
		Identity: voucher.PendingIdentity(seq),
		DetailID: uuid.New(),
		StockID:  stockID,
		Quantity: decimal.NewFromInt(qty),
		Status:   voucher.ItemStatusPending,
	}
}

func TestCommitService_Commit(t *testing.T) {
	t.Run("results stay positionally aligned with input", func(t *testing.T) {
		upserter := newFakeUpserter()
		badStock := uuid.New()
		upserter.failStock[badStock] = true
		svc := NewCommitService(upserter, zap.NewNop())

		good := pendingItem(1, uuid.New(), 10)
		bad := pendingItem(2, badStock, 20)
		outcome := svc.Commit(context.Background(), []voucher.Item{good, bad})

		require.Len(t, outcome.Results, 2)
		require.NotNil(t, outcome.Results[0])
		assert.False(t, outcome.Results[0].Identity.IsPending())
		assert.Nil(t, outcome.Results[1])

		assert.True(t, outcome.HasErrors())
		assert.Equal(t, 1, outcome.FailureCount())
		assert.Len(t, outcome.Committed(), 1)
	})

	t.Run("a failing item never aborts its siblings", func(t *testing.T) {
		upserter := newFakeUpserter()
		badStock := uuid.New()
		upserter.failStock[badStock] = true
		svc := NewCommitService(upserter, zap.NewNop(), WithMaxInFlight(1))

		items := []voucher.Item{
			pendingItem(1, badStock, 1),
			pendingItem(2, uuid.New(), 2),
			pendingItem(3, uuid.New(), 3),
		}
		outcome := svc.Commit(context.Background(), items)

		assert.Equal(t, 3, upserter.calls)
		assert.Equal(t, 1, outcome.FailureCount())
		require.NotNil(t, outcome.Results[2])
		assert.True(t, outcome.Results[2].Quantity.Equal(decimal.NewFromInt(3)))
	})

	t.Run("empty input yields an empty outcome", func(t *testing.T) {
		svc := NewCommitService(newFakeUpserter(), zap.NewNop())
		outcome := svc.Commit(context.Background(), nil)
		assert.Empty(t, outcome.Results)
		assert.False(t, outcome.HasErrors())
	})
}

func TestCommitService_ApplyResults(t *testing.T) {
	upserter := newFakeUpserter()
	badStock := uuid.New()
	upserter.failStock[badStock] = true

	submitted := []voucher.Item{
		pendingItem(1, uuid.New(), 10),
		pendingItem(2, badStock, 20),
	}

	t.Run("default drops failed items from the detail", func(t *testing.T) {
		svc := NewCommitService(upserter, zap.NewNop())
		detail := &voucher.Detail{ID: uuid.New(), Quantity: decimal.NewFromInt(30)}

		outcome := svc.Commit(context.Background(), submitted)
		svc.ApplyResults(detail, submitted, outcome)

		require.Len(t, detail.Items, 1)
		assert.False(t, detail.Items[0].Identity.IsPending())
	})

	t.Run("retain option keeps failed originals for retry", func(t *testing.T) {
		svc := NewCommitService(upserter, zap.NewNop(), WithRetainFailedItems(true))
		detail := &voucher.Detail{ID: uuid.New(), Quantity: decimal.NewFromInt(30)}

		outcome := svc.Commit(context.Background(), submitted)
		svc.ApplyResults(detail, submitted, outcome)

		require.Len(t, detail.Items, 2)
		assert.False(t, detail.Items[0].Identity.IsPending())
		assert.True(t, detail.Items[1].Identity.Equal(submitted[1].Identity))
	})
}

func TestCommitService_CommitSet(t *testing.T) {
	warehouse := location.Warehouse{ID: uuid.New(), Code: "WH1", Name: "Main", IsActive: true}
	area := location.Area{ID: uuid.New(), WarehouseID: warehouse.ID, Code: "A1", Name: "Receiving", IsActive: true}
	row := location.Row{ID: uuid.New(), AreaID: area.ID, Code: "R1", Name: "Row 1", IsActive: true}
	shelf := location.Shelf{ID: uuid.New(), RowID: row.ID, Code: "S1", Name: "Shelf 1", LevelCount: 2, PositionsPerLevel: 2, IsActive: true}
	index := location.NewHierarchyIndex(
		[]location.Warehouse{warehouse}, []location.Area{area}, []location.Row{row}, []location.Shelf{shelf})
	sel := location.Selection{
		WarehouseID: warehouse.ID, AreaID: area.ID, RowID: row.ID, ShelfID: shelf.ID, Level: 1, Position: 1,
	}

	t.Run("blocked sets never reach the backend", func(t *testing.T) {
		upserter := newFakeUpserter()
		svc := NewCommitService(upserter, zap.NewNop())
		detail := &voucher.Detail{ID: uuid.New(), StockID: uuid.New(), Quantity: decimal.NewFromInt(10)}
		set := allocation.NewSet(detail, index)
		require.NoError(t, set.Add(sel, decimal.NewFromInt(15)))

		_, _, err := svc.CommitSet(context.Background(), set, detail)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "COMMIT_BLOCKED", domainErr.Code)
		assert.Equal(t, 0, upserter.calls)
	})

	t.Run("valid set commits and the detail adopts committed items", func(t *testing.T) {
		upserter := newFakeUpserter()
		svc := NewCommitService(upserter, zap.NewNop())
		detail := &voucher.Detail{ID: uuid.New(), StockID: uuid.New(), Quantity: decimal.NewFromInt(10)}
		set := allocation.NewSet(detail, index)
		require.NoError(t, set.Add(sel, decimal.NewFromInt(4)))
		require.NoError(t, set.Add(sel, decimal.NewFromInt(6)))

		outcome, submitted, err := svc.CommitSet(context.Background(), set, detail)
		require.NoError(t, err)
		assert.Len(t, submitted, 2)
		assert.False(t, outcome.HasErrors())

		require.Len(t, detail.Items, 2)
		for _, item := range detail.Items {
			assert.False(t, item.Identity.IsPending())
			assert.Equal(t, voucher.ItemStatusStored, item.Status)
		}
		assert.True(t, detail.RemainingQuantity().IsZero())
	})
}
