package domain

import "time"

type RequestKind string

const (
	RequestKindModification RequestKind = "modification"
	RequestKindCancellation RequestKind = "cancellation"
)

func (k RequestKind) Valid() bool {
	return k == RequestKindModification || k == RequestKindCancellation
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// CanTransitionTo reports whether an administrator may move the request to target.
// Requests are decided exactly once.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	return s == RequestStatusPending && (target == RequestStatusApproved || target == RequestStatusRejected)
}

// ReasonCodes lists the accepted reason codes per request kind.
var ReasonCodes = map[RequestKind][]string{
	RequestKindModification: {"schedule_change", "route_change", "passenger_change", "seat_change", "other"},
	RequestKindCancellation: {"change_of_plans", "medical", "weather", "duplicate_booking", "other"},
}

const ReasonOther = "other"

func ValidReasonCode(kind RequestKind, code string) bool {
	for _, c := range ReasonCodes[kind] {
		if c == code {
			return true
		}
	}
	return false
}

type Request struct {
	ID             string        `json:"id"`
	BookingID      string        `json:"booking_id"`
	RequesterID    string        `json:"requester_id"`
	RequesterEmail string        `json:"requester_email"`
	RequesterName  string        `json:"requester_name"`
	Kind           RequestKind   `json:"kind"`
	ReasonCode     string        `json:"reason_code"`
	Detail         string        `json:"detail"`
	Status         RequestStatus `json:"status"`
	AdminNote      *string       `json:"admin_note,omitempty"`
	Amount         *Money        `json:"amount_cents,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	RespondedAt    *time.Time    `json:"responded_at,omitempty"`
}
