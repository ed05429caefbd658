package domain

import "time"

type Section string

const (
	SectionDates      Section = "dates"
	SectionRoute      Section = "route"
	SectionPassengers Section = "passengers"
	SectionSeats      Section = "seats"
)

// PriceAdjustment is one applied delta on the draft total, attributed to the
// section whose edit produced it.
type PriceAdjustment struct {
	Section Section `json:"section"`
	Reason  string  `json:"reason"`
	Amount  Money   `json:"amount_cents"`
}

// Draft is the working copy of a booking modification. It is never persisted
// as a booking; only the payload built from it on submit is.
type Draft struct {
	ID        string  `json:"id"`
	BookingID string  `json:"booking_id"`
	RequestID string  `json:"request_id"`
	Original  Booking `json:"original"`

	TripType       TripType          `json:"trip_type"`
	Origin         string            `json:"origin"`
	Destination    string            `json:"destination"`
	DepartureDate  string            `json:"departure_date"`
	ReturnDate     string            `json:"return_date,omitempty"`
	PassengerCount int               `json:"passenger_count"`
	Passengers     []PassengerRecord `json:"passengers"`
	Contact        Contact           `json:"contact"`
	OutboundSeats  []string          `json:"outbound_seats"`
	ReturnSeats    []string          `json:"return_seats"`
	OutboundFare   *Fare             `json:"outbound_fare,omitempty"`
	ReturnFare     *Fare             `json:"return_fare,omitempty"`

	ModifyDates      bool `json:"modify_dates"`
	ModifyRoute      bool `json:"modify_route"`
	ModifyPassengers bool `json:"modify_passengers"`
	ModifySeats      bool `json:"modify_seats"`

	TotalPrice  Money             `json:"total_price_cents"`
	Adjustments []PriceAdjustment `json:"adjustments"`

	OutboundOptions []Fare            `json:"outbound_options,omitempty"`
	ReturnOptions   []Fare            `json:"return_options,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`

	OpenedAt time.Time `json:"opened_at"`
}

// SectionEnabled reports the toggle for s.
func (d *Draft) SectionEnabled(s Section) bool {
	switch s {
	case SectionDates:
		return d.ModifyDates
	case SectionRoute:
		return d.ModifyRoute
	case SectionPassengers:
		return d.ModifyPassengers
	case SectionSeats:
		return d.ModifySeats
	}
	return false
}

// AnySectionEnabled reports whether at least one section is being modified.
func (d *Draft) AnySectionEnabled() bool {
	return d.ModifyDates || d.ModifyRoute || d.ModifyPassengers || d.ModifySeats
}

// AdjustmentSum is the sum of all applied price deltas.
func (d *Draft) AdjustmentSum() Money {
	var sum Money
	for _, a := range d.Adjustments {
		sum += a.Amount
	}
	return sum
}
