package voucher

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusRejected, true},
		{StatusDraft, StatusCancelled, true},
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusDraft, false},
		{StatusPending, StatusRejected, true},
		{StatusApproved, StatusRejected, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusDraft, false},
		{StatusRejected, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
	assert.False(t, Status("BOGUS").IsValid())
}

func TestItemIdentity(t *testing.T) {
	serverID := uuid.New()

	t.Run("committed and pending never compare equal", func(t *testing.T) {
		committed := CommittedIdentity(serverID)
		pending := PendingIdentity(1)
		assert.False(t, committed.Equal(pending))
		assert.False(t, pending.Equal(committed))
	})

	t.Run("equality within a variant is by payload", func(t *testing.T) {
		assert.True(t, CommittedIdentity(serverID).Equal(CommittedIdentity(serverID)))
		assert.False(t, CommittedIdentity(serverID).Equal(CommittedIdentity(uuid.New())))
		assert.True(t, PendingIdentity(7).Equal(PendingIdentity(7)))
		assert.False(t, PendingIdentity(7).Equal(PendingIdentity(8)))
	})

	t.Run("server id is only exposed for committed items", func(t *testing.T) {
		got, ok := CommittedIdentity(serverID).ServerID()
		assert.True(t, ok)
		assert.Equal(t, serverID, got)

		_, ok = PendingIdentity(1).ServerID()
		assert.False(t, ok)
	})

	t.Run("zero identity", func(t *testing.T) {
		var id ItemIdentity
		assert.True(t, id.IsZero())
		assert.False(t, id.IsPending())
		assert.False(t, id.Equal(PendingIdentity(0)))
	})
}

func TestDetail_Quantities(t *testing.T) {
	d := Detail{
		ID:       uuid.New(),
		Quantity: decimal.NewFromInt(100),
		Items: []Item{
			{Identity: CommittedIdentity(uuid.New()), Quantity: decimal.NewFromInt(40)},
			{Identity: PendingIdentity(1), Quantity: decimal.NewFromInt(35)},
		},
	}

	assert.True(t, d.AllocatedQuantity().Equal(decimal.NewFromInt(75)))
	assert.True(t, d.RemainingQuantity().Equal(decimal.NewFromInt(25)))

	// over-allocation surfaces as a negative remaining, not an error
	d.Items = append(d.Items, Item{Identity: PendingIdentity(2), Quantity: decimal.NewFromInt(50)})
	assert.True(t, d.RemainingQuantity().Equal(decimal.NewFromInt(-25)))
}

func TestStorageVoucher(t *testing.T) {
	v := &StorageVoucher{
		ID:       uuid.New(),
		Code:     "SV-1",
		Priority: PriorityMedium,
		Status:   StatusApproved,
		Details: []Detail{
			{ID: uuid.New(), Quantity: decimal.NewFromInt(10)},
		},
	}

	t.Run("only approved vouchers allocate", func(t *testing.T) {
		assert.True(t, v.CanAllocate())
		for _, s := range []Status{StatusDraft, StatusPending, StatusRejected, StatusCancelled} {
			other := *v
			other.Status = s
			assert.False(t, other.CanAllocate(), s)
		}
	})

	t.Run("detail lookup", func(t *testing.T) {
		d, ok := v.Detail(v.Details[0].ID)
		require.True(t, ok)
		assert.Equal(t, v.Details[0].ID, d.ID)

		_, ok = v.Detail(uuid.New())
		assert.False(t, ok)
	})

	t.Run("completion follows the timestamp", func(t *testing.T) {
		assert.False(t, v.IsCompleted())
		now := time.Now()
		v.CompletedAt = &now
		assert.True(t, v.IsCompleted())
	})

	t.Run("validate", func(t *testing.T) {
		require.NoError(t, v.Validate())

		bad := *v
		bad.Status = Status("NOPE")
		assert.Error(t, bad.Validate())

		bad = *v
		bad.ID = uuid.Nil
		assert.Error(t, bad.Validate())
	})
}
