// Package validation holds the field rules of a booking modification draft.
//
// Rules are evaluated section by section in a fixed order (dates, route,
// passengers, seats, contact, price) so the first reported error is stable.
// Sections whose toggle is off are never evaluated.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
)

const (
	FieldForm = "form"

	msgNoSection = "please select at least one modification option"
)

// ValidateModificationForm runs every rule that applies to d.
func ValidateModificationForm(d *domain.Draft, now time.Time) Errors {
	if !d.AnySectionEnabled() {
		return Errors{{Field: FieldForm, Message: msgNoSection}}
	}
	today := Today(now)

	var errs Errors
	if d.ModifyDates {
		errs = append(errs, ValidateDates(d, today)...)
	}
	if d.ModifyRoute {
		errs = append(errs, ValidateRoute(d)...)
	}
	if d.ModifyPassengers {
		errs = append(errs, ValidatePassengers(d, today)...)
	}
	if d.ModifySeats {
		errs = append(errs, ValidateSeats(d)...)
	}
	errs = append(errs, ValidateContact(d.Contact)...)
	errs.add("total_price", TotalPrice(d.TotalPrice))
	return errs
}

func ValidateDates(d *domain.Draft, today time.Time) Errors {
	var errs Errors

	if strings.TrimSpace(d.DepartureDate) == "" {
		errs.add("departure_date", "departure date is required")
		return errs
	}
	dep, err := domain.ParseDate(d.DepartureDate)
	if err != nil {
		errs.add("departure_date", "departure date is not a valid date")
		return errs
	}
	if !dep.After(today) {
		errs.add("departure_date", "departure date must be after today")
	} else if dep.After(today.AddDate(1, 0, 0)) {
		errs.add("departure_date", "departure date cannot be more than one year from today")
	}

	if d.TripType != domain.TripTypeRoundTrip {
		return errs
	}
	if strings.TrimSpace(d.ReturnDate) == "" {
		errs.add("return_date", "return date is required for round trips")
		return errs
	}
	ret, err := domain.ParseDate(d.ReturnDate)
	if err != nil {
		errs.add("return_date", "return date is not a valid date")
		return errs
	}
	if !ret.After(dep) {
		errs.add("return_date", "return date must be after the departure date")
	} else if ret.After(dep.AddDate(1, 0, 0)) {
		errs.add("return_date", "return date cannot be more than one year after departure")
	}
	return errs
}

func ValidateRoute(d *domain.Draft) Errors {
	var errs Errors

	if !d.TripType.Valid() {
		errs.add("trip_type", "trip type must be one_way or round_trip")
	} else if d.Original.Kind == domain.BookingKindAirTaxi && d.TripType == domain.TripTypeRoundTrip {
		errs.add("trip_type", "air taxi bookings cover a single leg and cannot be round trips")
	}

	originMsg := Place("origin", d.Origin)
	destMsg := Place("destination", d.Destination)
	errs.add("origin", originMsg)
	errs.add("destination", destMsg)
	if originMsg == "" && destMsg == "" && strings.EqualFold(strings.TrimSpace(d.Origin), strings.TrimSpace(d.Destination)) {
		errs.add("destination", "origin and destination must be different")
	}

	if d.OutboundFare == nil && !retainsOriginalOutbound(d) {
		errs.add("outbound_fare", "select an outbound flight")
	}
	if d.TripType == domain.TripTypeRoundTrip && d.ReturnFare == nil {
		errs.add("return_fare", "select a return flight")
	}
	if addsReturnLeg(d) {
		if !d.ModifyDates {
			errs.add("return_date", "enable date changes to choose a return date")
		}
		if !d.ModifySeats {
			errs.add("return_seats", "enable seat changes to choose return seats")
		}
	}
	return errs
}

// addsReturnLeg reports a one-way booking being converted to a round trip.
// The new leg has no booked date or seats to fall back on.
func addsReturnLeg(d *domain.Draft) bool {
	return d.Original.TripType == domain.TripTypeOneWay && d.TripType == domain.TripTypeRoundTrip
}

// retainsOriginalOutbound reports a one-way to round-trip conversion on the
// original route, where the booked outbound leg is kept as is.
func retainsOriginalOutbound(d *domain.Draft) bool {
	return addsReturnLeg(d) &&
		strings.EqualFold(d.Origin, d.Original.Origin) &&
		strings.EqualFold(d.Destination, d.Original.Destination)
}

func ValidatePassengers(d *domain.Draft, today time.Time) Errors {
	var errs Errors

	if d.PassengerCount < MinPassengers || d.PassengerCount > MaxPassengers {
		errs.add("passenger_count", fmt.Sprintf("passenger count must be between %d and %d", MinPassengers, MaxPassengers))
		return errs
	}

	for i := 0; i < d.PassengerCount; i++ {
		var p domain.PassengerRecord
		if i < len(d.Passengers) {
			p = d.Passengers[i]
		}
		prefix := fmt.Sprintf("passengers[%d].", i)
		label := fmt.Sprintf("passenger %d ", i+1)

		errs.add(prefix+"first_name", Name(label+"first name", p.FirstName))
		errs.add(prefix+"last_name", Name(label+"last name", p.LastName))
		errs.add(prefix+"date_of_birth", DateOfBirth(label+"date of birth", p.DateOfBirth, today))
		errs.add(prefix+"document_number", DocumentNumber(label+"document number", p.DocumentNumber))
		errs.add(prefix+"nationality", Nationality(label+"nationality", p.Nationality))
		errs.add(prefix+"special_request", SpecialRequest(label+"special request", p.SpecialRequest))
	}
	return errs
}

func ValidateSeats(d *domain.Draft) Errors {
	errs := validateLeg("outbound_seats", "outbound flight", d.OutboundSeats, d.PassengerCount)
	if d.TripType == domain.TripTypeRoundTrip {
		errs = append(errs, validateLeg("return_seats", "return flight", d.ReturnSeats, d.PassengerCount)...)
	}
	return errs
}

func validateLeg(field, leg string, seats []string, passengers int) Errors {
	var errs Errors

	filled := 0
	for _, s := range seats {
		if strings.TrimSpace(s) != "" {
			filled++
		}
	}
	if filled != passengers || len(seats) != passengers {
		errs.add(field, fmt.Sprintf("select exactly one seat per passenger on the %s", leg))
		return errs
	}

	seen := make(map[string]bool, len(seats))
	for i, s := range seats {
		path := fmt.Sprintf("%s[%d]", field, i)
		if msg := SeatCode(s); msg != "" {
			errs.add(path, msg)
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(s))
		if seen[code] {
			errs.add(path, fmt.Sprintf("seat %s is assigned more than once on the %s", code, leg))
		}
		seen[code] = true
	}
	return errs
}

func ValidateContact(c domain.Contact) Errors {
	var errs Errors
	errs.add("contact.email", Email(c.Email))
	errs.add("contact.phone", Phone(c.Phone))
	return errs
}
