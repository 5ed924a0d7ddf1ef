package voucher

import (
	"fmt"

	"github.com/google/uuid"
)

type identityKind int

const (
	identityCommitted identityKind = iota + 1
	identityPending
)

// ItemIdentity is the tagged identity of a storage voucher item. An item is
// either Committed, carrying the server-assigned id, or Pending, carrying a
// client-local sequence number until the first successful upsert. The two
// variants never compare equal, so a pending item can always be told apart
// from a committed one without flag fields or id-prefix conventions.
type ItemIdentity struct {
	kind     identityKind
	serverID uuid.UUID
	seq      int64
}

// CommittedIdentity returns the identity of an item persisted under serverID.
func CommittedIdentity(serverID uuid.UUID) ItemIdentity {
	return ItemIdentity{kind: identityCommitted, serverID: serverID}
}

// PendingIdentity returns the identity of a not-yet-persisted item.
func PendingIdentity(seq int64) ItemIdentity {
	return ItemIdentity{kind: identityPending, seq: seq}
}

// IsZero returns true for the zero identity
func (id ItemIdentity) IsZero() bool {
	return id.kind == 0
}

// IsPending returns true if the item has not been persisted yet
func (id ItemIdentity) IsPending() bool {
	return id.kind == identityPending
}

// ServerID returns the server-assigned id, if the item is committed.
func (id ItemIdentity) ServerID() (uuid.UUID, bool) {
	if id.kind == identityCommitted {
		return id.serverID, true
	}
	return uuid.Nil, false
}

// Equal reports whether both identities refer to the same item
func (id ItemIdentity) Equal(other ItemIdentity) bool {
	if id.kind != other.kind {
		return false
	}
	switch id.kind {
	case identityCommitted:
		return id.serverID == other.serverID
	case identityPending:
		return id.seq == other.seq
	}
	return false
}

// String returns a diagnostic representation of the identity
func (id ItemIdentity) String() string {
	switch id.kind {
	case identityCommitted:
		return fmt.Sprintf("committed(%s)", id.serverID)
	case identityPending:
		return fmt.Sprintf("pending(%d)", id.seq)
	}
	return "unidentified"
}
