// Package lifecycle answers which request actions a booking currently allows.
//
// The state of a (booking, kind) pair is derived, never stored:
//
//	NONE -> PENDING -> APPROVED -> ACTED
//	NONE -> PENDING -> REJECTED
//
// ACTED means the booking itself moved to modified or cancelled. Every gate in
// this package is a pure function of the booking and its request history.
package lifecycle

import "github.com/Domenick1991/airbooking-modify/internal/domain"

type State string

const (
	StateNone     State = "none"
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateActed    State = "acted"
)

// Gate is the outcome of a gating query. Reason is label text for a disabled
// control and is empty when the action is allowed.
type Gate struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Gate { return Gate{Allowed: true} }
func deny(reason string) Gate { return Gate{Reason: reason} }

// Err converts a closed gate into a domain.StateGateError.
func (g Gate) Err(action string) error {
	if g.Allowed {
		return nil
	}
	return domain.StateGateError{Action: action, Reason: g.Reason}
}

// Actions bundles every gate of a booking for the dashboard.
type Actions struct {
	RequestModification Gate `json:"request_modification"`
	ModifyBooking       Gate `json:"modify_booking"`
	RequestCancellation Gate `json:"request_cancellation"`
	CancelBooking       Gate `json:"cancel_booking"`
}

// Latest returns the most recently created request of kind for the booking.
func Latest(bookingID string, requests []domain.Request, kind domain.RequestKind) *domain.Request {
	var latest *domain.Request
	for i := range requests {
		r := &requests[i]
		if r.BookingID != bookingID || r.Kind != kind {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	return latest
}

// StateOf derives the lifecycle state of the booking for kind.
func StateOf(b domain.Booking, requests []domain.Request, kind domain.RequestKind) State {
	if (kind == domain.RequestKindModification && b.Status == domain.BookingStatusModified) ||
		(kind == domain.RequestKindCancellation && b.Status == domain.BookingStatusCancelled) {
		return StateActed
	}
	latest := Latest(b.ID, requests, kind)
	if latest == nil {
		return StateNone
	}
	switch latest.Status {
	case domain.RequestStatusPending:
		return StatePending
	case domain.RequestStatusApproved:
		return StateApproved
	case domain.RequestStatusRejected:
		return StateRejected
	}
	return StateNone
}

func lockedReason(b domain.Booking) string {
	switch b.Status {
	case domain.BookingStatusModified:
		return "this booking has already been modified"
	case domain.BookingStatusCancelled:
		return "this booking has been cancelled"
	}
	return ""
}

func ModificationRequestGate(b domain.Booking, requests []domain.Request) Gate {
	if b.Status.IsLocked() {
		return deny(lockedReason(b))
	}
	if StateOf(b, requests, domain.RequestKindCancellation) == StatePending {
		return deny("a cancellation request is awaiting review")
	}
	switch StateOf(b, requests, domain.RequestKindModification) {
	case StatePending:
		return deny("a modification request is awaiting review")
	case StateApproved:
		return deny("an approved modification is waiting to be applied")
	case StateRejected:
		return deny("the modification request for this booking was rejected")
	}
	return allow()
}

func ModifyBookingGate(b domain.Booking, requests []domain.Request) Gate {
	if b.Status != domain.BookingStatusConfirmed {
		return deny(lockedReason(b))
	}
	switch StateOf(b, requests, domain.RequestKindModification) {
	case StateApproved:
		return allow()
	case StatePending:
		return deny("the modification request has not been approved yet")
	case StateRejected:
		return deny("the modification request for this booking was rejected")
	}
	return deny("request a modification and wait for approval first")
}

func CancellationRequestGate(b domain.Booking, requests []domain.Request) Gate {
	if b.Status.IsLocked() {
		return deny(lockedReason(b))
	}
	switch StateOf(b, requests, domain.RequestKindCancellation) {
	case StatePending:
		return deny("a cancellation request is awaiting review")
	case StateApproved:
		return deny("an approved cancellation is waiting to be applied")
	case StateRejected:
		return deny("the cancellation request for this booking was rejected")
	}
	return allow()
}

func CancelBookingGate(b domain.Booking, requests []domain.Request) Gate {
	if b.Status != domain.BookingStatusConfirmed {
		return deny(lockedReason(b))
	}
	switch StateOf(b, requests, domain.RequestKindCancellation) {
	case StateApproved:
		return allow()
	case StatePending:
		return deny("the cancellation request has not been approved yet")
	case StateRejected:
		return deny("the cancellation request for this booking was rejected")
	}
	return deny("request a cancellation and wait for approval first")
}

func CanRequestModification(b domain.Booking, requests []domain.Request) bool {
	return ModificationRequestGate(b, requests).Allowed
}

func CanActOnApprovedModification(b domain.Booking, requests []domain.Request) bool {
	return ModifyBookingGate(b, requests).Allowed
}

func CanRequestCancellation(b domain.Booking, requests []domain.Request) bool {
	return CancellationRequestGate(b, requests).Allowed
}

func CanActOnApprovedCancellation(b domain.Booking, requests []domain.Request) bool {
	return CancelBookingGate(b, requests).Allowed
}

// GateFor returns the request gate for kind.
func GateFor(kind domain.RequestKind, b domain.Booking, requests []domain.Request) Gate {
	if kind == domain.RequestKindCancellation {
		return CancellationRequestGate(b, requests)
	}
	return ModificationRequestGate(b, requests)
}

func ActionsFor(b domain.Booking, requests []domain.Request) Actions {
	return Actions{
		RequestModification: ModificationRequestGate(b, requests),
		ModifyBooking:       ModifyBookingGate(b, requests),
		RequestCancellation: CancellationRequestGate(b, requests),
		CancelBooking:       CancelBookingGate(b, requests),
	}
}
