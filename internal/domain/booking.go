package domain

import "time"

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusModified  BookingStatus = "modified"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed: {BookingStatusModified, BookingStatusCancelled},
	BookingStatusModified:  {},
	BookingStatusCancelled: {},
}

// CanTransitionTo reports whether the status may move forward to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsLocked reports whether no further modification or cancellation is possible.
func (s BookingStatus) IsLocked() bool {
	return s == BookingStatusModified || s == BookingStatusCancelled
}

type BookingKind string

const (
	BookingKindFlight  BookingKind = "flight"
	BookingKindAirTaxi BookingKind = "air_taxi"
)

type TripType string

const (
	TripTypeOneWay    TripType = "one_way"
	TripTypeRoundTrip TripType = "round_trip"
)

func (t TripType) Valid() bool {
	return t == TripTypeOneWay || t == TripTypeRoundTrip
}

type PassengerRecord struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Nationality    string `json:"nationality"`
	DocumentNumber string `json:"document_number"`
	SpecialRequest string `json:"special_request,omitempty"`
}

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Booking struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Kind           BookingKind       `json:"kind"`
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
	TotalPrice     Money             `json:"total_price_cents"`
	Status         BookingStatus     `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	ModifiedAt     *time.Time        `json:"modified_at,omitempty"`
}

// Clone returns a deep copy so drafts and read models never share slices.
func (b Booking) Clone() Booking {
	c := b
	c.Passengers = append([]PassengerRecord(nil), b.Passengers...)
	c.OutboundSeats = append([]string(nil), b.OutboundSeats...)
	c.ReturnSeats = append([]string(nil), b.ReturnSeats...)
	if b.OutboundFare != nil {
		f := *b.OutboundFare
		c.OutboundFare = &f
	}
	if b.ReturnFare != nil {
		f := *b.ReturnFare
		c.ReturnFare = &f
	}
	if b.ModifiedAt != nil {
		t := *b.ModifiedAt
		c.ModifiedAt = &t
	}
	return c
}

// ParseDate accepts a YYYY-MM-DD date or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// NormalizeDate rewrites s in DateLayout. Empty input stays empty.
func NormalizeDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}
