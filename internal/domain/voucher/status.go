package voucher

// Status represents the lifecycle status of a storage voucher.
//
// All status transitions are server-authoritative: the client requests a
// transition and adopts whatever status the server returns. CanTransitionTo
// exists only as a pre-flight check so callers can disable actions the server
// would reject anyway.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that allow no further transition
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// REJECTED and CANCELLED are reachable from any non-terminal state.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPending || target == StatusRejected || target == StatusCancelled
	case StatusPending:
		return target == StatusApproved || target == StatusRejected || target == StatusCancelled
	case StatusApproved:
		return target == StatusRejected || target == StatusCancelled
	case StatusRejected, StatusCancelled:
		return false
	}
	return false
}

// Priority is the ordinal priority of a storage voucher.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

// IsValid checks if the priority is a known ordinal
func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// String returns the display name of the priority
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return "Unknown"
}

// ItemStatus represents the status of a single storage voucher item.
type ItemStatus string

const (
	// ItemStatusPending marks an item that has not been persisted yet
	ItemStatusPending ItemStatus = "PENDING"
	// ItemStatusStored marks an item the backend has accepted
	ItemStatusStored ItemStatus = "STORED"
)

// IsValid checks if the item status is known
func (s ItemStatus) IsValid() bool {
	return s == ItemStatusPending || s == ItemStatusStored
}
