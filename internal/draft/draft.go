// Package draft holds the working copy of a booking modification.
//
// Every price affecting edit made through SetField goes through the pricing
// package and is recorded in the draft's adjustment ledger; turning a section
// off removes that section's entries again. TotalPrice always equals the
// original total plus the sum of the ledger.
package draft

import (
	"context"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/validation"
	"github.com/google/uuid"
)

// FareLookup lists bookable fares for a route.
type FareLookup interface {
	ListCandidateFares(ctx context.Context, origin, destination string) ([]domain.Fare, error)
}

type Editor struct {
	fares FareLookup
	now   func() time.Time
}

type EditorOption func(*Editor)

// WithClock overrides the clock used for validation.
func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) {
		e.now = now
	}
}

func NewEditor(fares FareLookup, opts ...EditorOption) *Editor {
	e := &Editor{fares: fares, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Seed opens a draft that mirrors b. No section is enabled and the total is
// the booking's total.
func Seed(b domain.Booking, approved domain.Request, now time.Time) *domain.Draft {
	orig := b.Clone()
	work := b.Clone()
	return &domain.Draft{
		ID:             uuid.NewString(),
		BookingID:      b.ID,
		RequestID:      approved.ID,
		Original:       orig,
		TripType:       work.TripType,
		Origin:         work.Origin,
		Destination:    work.Destination,
		DepartureDate:  work.DepartureDate,
		ReturnDate:     work.ReturnDate,
		PassengerCount: work.PassengerCount,
		Passengers:     work.Passengers,
		Contact:        work.Contact,
		OutboundSeats:  work.OutboundSeats,
		ReturnSeats:    work.ReturnSeats,
		OutboundFare:   work.OutboundFare,
		ReturnFare:     work.ReturnFare,
		TotalPrice:     b.TotalPrice,
		OpenedAt:       now,
	}
}

// ToggleSection enables or disables a section. Enabling never changes the
// price; disabling restores the section's booked values and removes its price
// adjustments from the ledger.
func (e *Editor) ToggleSection(d *domain.Draft, section domain.Section, enabled bool) error {
	was := d.SectionEnabled(section)
	switch section {
	case domain.SectionDates:
		d.ModifyDates = enabled
	case domain.SectionRoute:
		d.ModifyRoute = enabled
	case domain.SectionPassengers:
		d.ModifyPassengers = enabled
	case domain.SectionSeats:
		d.ModifySeats = enabled
	default:
		return domain.ValidationError{Field: "section", Msg: "unknown section " + string(section)}
	}
	if was && !enabled {
		revertSection(d, section)
	}
	e.Revalidate(d)
	return nil
}

// Revalidate refreshes the draft's field error map.
func (e *Editor) Revalidate(d *domain.Draft) validation.Errors {
	errs := validation.ValidateModificationForm(d, e.now())
	d.Errors = errs.Map()
	return errs
}
