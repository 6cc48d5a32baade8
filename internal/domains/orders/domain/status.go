package domain

import (
	"errors"
	"fmt"
)

// Status enumerates order lifecycle progression.
type Status string

const (
	StatusBookingCreated       Status = "BOOKING_CREATED"
	StatusPickupScheduled      Status = "PICKUP_SCHEDULED"
	StatusPickupInProgress     Status = "PICKUP_IN_PROGRESS"
	StatusCountApprovalPending Status = "COUNT_APPROVAL_PENDING"
	StatusPickedUp             Status = "PICKED_UP"
	StatusProcessingInProgress Status = "PROCESSING_IN_PROGRESS"
	StatusReadyForDelivery     Status = "READY_FOR_DELIVERY"
	StatusOutForDelivery       Status = "OUT_FOR_DELIVERY"
	StatusDelivered            Status = "DELIVERED"
	StatusCompleted            Status = "COMPLETED"
	StatusCancelled            Status = "CANCELLED"
)

// progression is the total order of normal advancement. CANCELLED sits
// outside it and is reachable from any non-terminal state.
var progression = []Status{
	StatusBookingCreated,
	StatusPickupScheduled,
	StatusPickupInProgress,
	StatusCountApprovalPending,
	StatusPickedUp,
	StatusProcessingInProgress,
	StatusReadyForDelivery,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCompleted,
}

var statusRank = func() map[Status]int {
	ranks := make(map[Status]int, len(progression))
	for i, s := range progression {
		ranks[s] = i
	}
	return ranks
}()

var ErrUnknownStatus = errors.New("unknown order status")

// ToStatus parses and validates a status string.
func ToStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// Valid reports whether the status belongs to the lifecycle.
func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Rank returns the position in the normal progression. CANCELLED has no
// rank; callers must branch on it before comparing progress.
func (s Status) Rank() (int, bool) {
	rank, ok := statusRank[s]
	return rank, ok
}

// Next returns the immediate successor in the normal progression, or false
// when the status is terminal or outside the progression.
func (s Status) Next() (Status, bool) {
	rank, ok := statusRank[s]
	if !ok || rank == len(progression)-1 {
		return "", false
	}
	return progression[rank+1], true
}

// IsTerminal reports whether the order can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanAdvanceTo reports whether target is a legal move: the immediate
// successor, or CANCELLED while the current status is not terminal.
func (s Status) CanAdvanceTo(target Status) bool {
	if target == StatusCancelled {
		return !s.IsTerminal()
	}
	next, ok := s.Next()
	return ok && next == target
}

// MergeServiceStatuses derives the aggregate order status from its
// per-service child statuses: the least-advanced non-cancelled child wins.
// Cancelled children do not hold the aggregate back; only when every child
// is cancelled does the aggregate become CANCELLED.
func MergeServiceStatuses(children []Status) (Status, error) {
	if len(children) == 0 {
		return "", errors.New("no service statuses to merge")
	}
	merged := Status("")
	mergedRank := len(progression)
	cancelled := 0
	for _, child := range children {
		if child == StatusCancelled {
			cancelled++
			continue
		}
		rank, ok := child.Rank()
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownStatus, child)
		}
		if rank < mergedRank {
			merged = child
			mergedRank = rank
		}
	}
	if cancelled == len(children) {
		return StatusCancelled, nil
	}
	return merged, nil
}
