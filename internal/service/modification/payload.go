package modification

import (
	"reflect"
	"strings"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
)

// BuildPayload merges the enabled sections of d over original. Fields of
// disabled sections keep the original values. Contact and the draft total are
// always taken from the draft.
func BuildPayload(original domain.Booking, d *domain.Draft, now time.Time) (domain.Booking, error) {
	p := original.Clone()

	if d.ModifyDates {
		p.DepartureDate = d.DepartureDate
		p.ReturnDate = d.ReturnDate
	}

	if d.ModifyRoute {
		p.TripType = d.TripType
		p.Origin = strings.TrimSpace(d.Origin)
		p.Destination = strings.TrimSpace(d.Destination)
		if d.OutboundFare != nil {
			f := *d.OutboundFare
			p.OutboundFare = &f
		}
		p.ReturnFare = nil
		if d.ReturnFare != nil {
			f := *d.ReturnFare
			p.ReturnFare = &f
		}
		if p.TripType == domain.TripTypeRoundTrip && p.ReturnDate == "" {
			p.ReturnDate = d.ReturnDate
		}
		if p.TripType == domain.TripTypeRoundTrip && original.TripType != domain.TripTypeRoundTrip && !d.ModifySeats {
			p.ReturnSeats = nil
		}
	}

	if d.ModifyPassengers {
		p.PassengerCount = d.PassengerCount
		p.Passengers = make([]domain.PassengerRecord, 0, d.PassengerCount)
		for i := 0; i < d.PassengerCount && i < len(d.Passengers); i++ {
			p.Passengers = append(p.Passengers, d.Passengers[i])
		}
	}

	if d.ModifySeats || d.ModifyPassengers {
		p.OutboundSeats = compactSeats(d.OutboundSeats)
		p.ReturnSeats = compactSeats(d.ReturnSeats)
	}

	if p.TripType == domain.TripTypeOneWay {
		p.ReturnDate = ""
		p.ReturnSeats = nil
		p.ReturnFare = nil
	}

	p.Contact = domain.Contact{
		Email: strings.TrimSpace(d.Contact.Email),
		Phone: strings.TrimSpace(d.Contact.Phone),
	}
	p.TotalPrice = d.TotalPrice

	var err error
	if p.DepartureDate, err = domain.NormalizeDate(p.DepartureDate); err != nil {
		return domain.Booking{}, domain.ValidationError{Field: "departure_date", Msg: "departure date is not a valid date", Err: err}
	}
	if p.ReturnDate != "" {
		if p.ReturnDate, err = domain.NormalizeDate(p.ReturnDate); err != nil {
			return domain.Booking{}, domain.ValidationError{Field: "return_date", Msg: "return date is not a valid date", Err: err}
		}
	}

	stamp := now.UTC()
	p.ModifiedAt = &stamp
	p.UpdatedAt = stamp
	p.Status = domain.BookingStatusModified
	return p, nil
}

// compactSeats drops unassigned entries and upper-cases seat codes.
func compactSeats(seats []string) []string {
	if seats == nil {
		return nil
	}
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Reconcile overlays the server's booking on the optimistic one. Every field
// the server sets wins; numeric fields are taken from any server response
// that identifies a booking.
func Reconcile(optimistic, server domain.Booking) domain.Booking {
	out := optimistic.Clone()
	srv := server.Clone()

	setString(&out.ID, srv.ID)
	setString(&out.UserID, srv.UserID)
	setString((*string)(&out.Kind), string(srv.Kind))
	setString((*string)(&out.TripType), string(srv.TripType))
	setString(&out.Origin, srv.Origin)
	setString(&out.Destination, srv.Destination)
	setString(&out.DepartureDate, srv.DepartureDate)
	setString(&out.ReturnDate, srv.ReturnDate)
	setString((*string)(&out.Status), string(srv.Status))
	setString(&out.Contact.Email, srv.Contact.Email)
	setString(&out.Contact.Phone, srv.Contact.Phone)

	if srv.Passengers != nil {
		out.Passengers = srv.Passengers
	}
	if srv.OutboundSeats != nil {
		out.OutboundSeats = srv.OutboundSeats
	}
	if srv.ReturnSeats != nil {
		out.ReturnSeats = srv.ReturnSeats
	}
	if srv.OutboundFare != nil {
		out.OutboundFare = srv.OutboundFare
	}
	if srv.ReturnFare != nil {
		out.ReturnFare = srv.ReturnFare
	}
	if srv.ModifiedAt != nil {
		out.ModifiedAt = srv.ModifiedAt
	}
	if !srv.CreatedAt.IsZero() {
		out.CreatedAt = srv.CreatedAt
	}
	if !srv.UpdatedAt.IsZero() {
		out.UpdatedAt = srv.UpdatedAt
	}
	if srv.ID != "" {
		out.PassengerCount = srv.PassengerCount
		out.TotalPrice = srv.TotalPrice
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Drift lists the fields where a re-fetched booking differs from the one
// served after submission.
func Drift(served, fetched domain.Booking) []string {
	var fields []string
	check := func(name string, a, b interface{}) {
		if !reflect.DeepEqual(a, b) {
			fields = append(fields, name)
		}
	}
	check("trip_type", served.TripType, fetched.TripType)
	check("origin", served.Origin, fetched.Origin)
	check("destination", served.Destination, fetched.Destination)
	check("departure_date", served.DepartureDate, fetched.DepartureDate)
	check("return_date", served.ReturnDate, fetched.ReturnDate)
	check("passenger_count", served.PassengerCount, fetched.PassengerCount)
	check("passengers", served.Passengers, fetched.Passengers)
	check("contact", served.Contact, fetched.Contact)
	check("outbound_seats", nonNil(served.OutboundSeats), nonNil(fetched.OutboundSeats))
	check("return_seats", nonNil(served.ReturnSeats), nonNil(fetched.ReturnSeats))
	check("total_price", served.TotalPrice, fetched.TotalPrice)
	check("status", served.Status, fetched.Status)
	return fields
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
