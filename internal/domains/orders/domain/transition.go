package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/societyos/laundry-api/internal/shared/actor"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorizedActor = errors.New("actor role not permitted for transition")
)

// Transition identifies one edge of the lifecycle.
type Transition struct {
	From Status
	To   Status
}

// TransitionPolicy maps lifecycle edges to the roles allowed to trigger
// them. It is configuration supplied alongside the state machine, not
// behavior baked into it.
type TransitionPolicy map[Transition][]actor.Role

// Allows reports whether the role may trigger the edge. PLATFORM_ADMIN may
// trigger every edge regardless of the table.
func (p TransitionPolicy) Allows(from, to Status, role actor.Role) bool {
	if role == actor.RolePlatformAdmin {
		return true
	}
	for _, allowed := range p[Transition{From: from, To: to}] {
		if allowed == role {
			return true
		}
	}
	// Cancellation rows may be registered once with a wildcard From.
	if to == StatusCancelled {
		for _, allowed := range p[Transition{To: StatusCancelled}] {
			if allowed == role {
				return true
			}
		}
	}
	return false
}

// DefaultTransitionPolicy reflects who physically performs each step:
// the vendor moves laundry through pickup, processing, and delivery; the
// resident (or their society admin) approves counts and confirms
// completion; cancellation is open to both sides while the order is live.
func DefaultTransitionPolicy() TransitionPolicy {
	vendor := []actor.Role{actor.RoleVendor}
	residentSide := []actor.Role{actor.RoleResident, actor.RoleSocietyAdmin}
	return TransitionPolicy{
		{StatusBookingCreated, StatusPickupScheduled}:            vendor,
		{StatusPickupScheduled, StatusPickupInProgress}:          vendor,
		{StatusPickupInProgress, StatusCountApprovalPending}:     vendor,
		{StatusCountApprovalPending, StatusPickedUp}:             residentSide,
		{StatusPickedUp, StatusProcessingInProgress}:             vendor,
		{StatusProcessingInProgress, StatusReadyForDelivery}:     vendor,
		{StatusReadyForDelivery, StatusOutForDelivery}:           vendor,
		{StatusOutForDelivery, StatusDelivered}:                  vendor,
		{StatusDelivered, StatusCompleted}:                       residentSide,
		{To: StatusCancelled}:                                    {actor.RoleResident, actor.RoleVendor, actor.RoleSocietyAdmin},
	}
}

// AdvanceRequest describes one requested transition.
type AdvanceRequest struct {
	Target      Status
	Actor       actor.Role
	Corrections []ItemCorrection
	Now         time.Time
}

// Advance moves the aggregate to the requested status, enforcing the
// progression precondition, the role policy, and the count-approval
// reconciliation contract. The caller persists under a compare-and-swap on
// the previous status.
func (o *Order) Advance(req AdvanceRequest, policy TransitionPolicy) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrOrderImmutable, o.Status)
	}
	if !req.Target.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, req.Target)
	}
	// A PARTIAL order's aggregate status is derived from its service rows;
	// only cancellation may be forced at the aggregate level.
	if o.DeliveryPreference == DeliveryPartial && len(o.ServiceStatuses) > 0 && req.Target != StatusCancelled {
		return fmt.Errorf("%w: PARTIAL orders advance per service", ErrInvalidTransition)
	}
	if !o.Status.CanAdvanceTo(req.Target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, req.Target)
	}
	if !policy.Allows(o.Status, req.Target, req.Actor) {
		return fmt.Errorf("%w: role %s may not move %s -> %s", ErrUnauthorizedActor, req.Actor, o.Status, req.Target)
	}
	if o.Status == StatusCountApprovalPending && req.Target == StatusPickedUp {
		if err := o.ApplyCorrections(req.Corrections); err != nil {
			return err
		}
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	o.Status = req.Target
	o.UpdatedAt = now
	switch req.Target {
	case StatusDelivered:
		o.ActualDelivery = &now
	case StatusCompleted:
		if o.FinalPrice == nil {
			price := o.EstimatedPrice
			o.FinalPrice = &price
		}
	}
	return nil
}

// AdvanceService moves one PARTIAL child row forward and re-derives the
// aggregate status from the merge rule. The aggregate never advances past
// the least-advanced child.
func (o *Order) AdvanceService(serviceID int64, req AdvanceRequest, policy TransitionPolicy) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrOrderImmutable, o.Status)
	}
	if o.DeliveryPreference != DeliveryPartial {
		return fmt.Errorf("%w: order delivery preference is %s", ErrServiceNotInOrder, o.DeliveryPreference)
	}
	row, err := o.ServiceStatus(serviceID)
	if err != nil {
		return err
	}
	if !req.Target.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, req.Target)
	}
	if !row.Status.CanAdvanceTo(req.Target) {
		return fmt.Errorf("%w: service %d: %s -> %s", ErrInvalidTransition, serviceID, row.Status, req.Target)
	}
	if !policy.Allows(row.Status, req.Target, req.Actor) {
		return fmt.Errorf("%w: role %s may not move service %d %s -> %s", ErrUnauthorizedActor, req.Actor, serviceID, row.Status, req.Target)
	}
	if row.Status == StatusCountApprovalPending && req.Target == StatusPickedUp {
		if err := o.applyServiceCorrections(serviceID, req.Corrections); err != nil {
			return err
		}
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	row.Status = req.Target
	row.UpdatedAt = now
	if req.Target == StatusDelivered {
		row.ActualDeliveryDate = &now
	}
	merged, err := o.MergedStatus()
	if err != nil {
		return err
	}
	o.Status = merged
	o.UpdatedAt = now
	return nil
}
