package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/pricing"
	"github.com/Domenick1991/airbooking-modify/internal/validation"
)

var pathRegex = regexp.MustCompile(`^([a-z_]+)(?:\[(\d+)\])?(?:\.([a-z_]+))?$`)

type fieldPath struct {
	raw   string
	root  string
	index int
	leaf  string
}

func parsePath(raw string) (fieldPath, error) {
	m := pathRegex.FindStringSubmatch(raw)
	if m == nil {
		return fieldPath{}, domain.ValidationError{Field: raw, Msg: fmt.Sprintf("unknown field %q", raw)}
	}
	p := fieldPath{raw: raw, root: m[1], index: -1, leaf: m[3]}
	if m[2] != "" {
		p.index, _ = strconv.Atoi(m[2])
	}
	return p, nil
}

var sectionOf = map[string]domain.Section{
	"trip_type":       domain.SectionRoute,
	"origin":          domain.SectionRoute,
	"destination":     domain.SectionRoute,
	"outbound_fare":   domain.SectionRoute,
	"return_fare":     domain.SectionRoute,
	"departure_date":  domain.SectionDates,
	"return_date":     domain.SectionDates,
	"passenger_count": domain.SectionPassengers,
	"passengers":      domain.SectionPassengers,
	"outbound_seats":  domain.SectionSeats,
	"return_seats":    domain.SectionSeats,
}

// SetField sets the value at path from its JSON encoding and runs the side
// effects of that field. A failed edit leaves the draft unchanged.
func (e *Editor) SetField(ctx context.Context, d *domain.Draft, path string, value json.RawMessage) error {
	p, err := parsePath(path)
	if err != nil {
		return err
	}

	if p.root != "contact" {
		section, ok := sectionOf[p.root]
		if !ok {
			return domain.ValidationError{Field: path, Msg: fmt.Sprintf("unknown field %q", path)}
		}
		if !d.SectionEnabled(section) {
			return domain.ValidationError{Field: path, Msg: fmt.Sprintf("enable the %s section before changing %s", section, path)}
		}
	}

	switch p.root {
	case "trip_type":
		err = e.setTripType(ctx, d, p, value)
	case "origin", "destination":
		err = e.setEndpoint(ctx, d, p, value)
	case "outbound_fare":
		err = setOutboundFare(d, p, value)
	case "return_fare":
		err = setReturnFare(d, p, value)
	case "departure_date":
		err = decodeString(p, value, func(s string) { d.DepartureDate = s })
	case "return_date":
		err = decodeString(p, value, func(s string) { d.ReturnDate = s })
	case "passenger_count":
		err = setPassengerCount(d, p, value)
	case "passengers":
		err = setPassengers(d, p, value)
	case "outbound_seats":
		err = setSeats(d, p, value, &d.OutboundSeats)
	case "return_seats":
		if d.TripType != domain.TripTypeRoundTrip {
			return domain.ValidationError{Field: path, Msg: "return seats can only be chosen for round trips"}
		}
		err = setSeats(d, p, value, &d.ReturnSeats)
	case "contact":
		err = setContact(d, p, value)
	}
	if err != nil {
		return err
	}

	e.Revalidate(d)
	return nil
}

func invalidValue(p fieldPath, msg string) error {
	return domain.ValidationError{Field: p.raw, Msg: msg}
}

func decodeString(p fieldPath, value json.RawMessage, set func(string)) error {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return invalidValue(p, fmt.Sprintf("%s must be a string", p.raw))
	}
	set(strings.TrimSpace(s))
	return nil
}

func applyDelta(d *domain.Draft, section domain.Section, reason string, delta domain.Money) error {
	total, applied, err := pricing.Apply(d.TotalPrice, delta)
	if err != nil {
		return domain.ValidationError{Field: "total_price", Msg: err.Error(), Err: err}
	}
	d.TotalPrice = total
	if applied != 0 {
		d.Adjustments = append(d.Adjustments, domain.PriceAdjustment{Section: section, Reason: reason, Amount: applied})
	}
	return nil
}

func farePrice(f *domain.Fare) *domain.Money {
	if f == nil {
		return nil
	}
	p := f.Price
	return &p
}

func itineraryOf(d *domain.Draft) pricing.Itinerary {
	it := pricing.Itinerary{
		TripType:       d.TripType,
		PassengerCount: d.PassengerCount,
		Total:          d.TotalPrice,
	}
	if d.OutboundFare != nil {
		it.SingleFarePrice = d.OutboundFare.Price
	}
	return it
}

func (e *Editor) setTripType(ctx context.Context, d *domain.Draft, p fieldPath, value json.RawMessage) error {
	var target domain.TripType
	if err := json.Unmarshal(value, &target); err != nil || !target.Valid() {
		return invalidValue(p, "trip type must be one_way or round_trip")
	}
	if target == d.TripType {
		return nil
	}

	if target == domain.TripTypeRoundTrip {
		options, err := e.fares.ListCandidateFares(ctx, d.Destination, d.Origin)
		if err != nil {
			return fmt.Errorf("list return fares %s-%s: %w", d.Destination, d.Origin, err)
		}
		d.TripType = target
		d.ReturnSeats = make([]string, d.PassengerCount)
		d.ReturnOptions = options
		return nil
	}

	var returnPrice domain.Money
	if d.ReturnFare != nil {
		returnPrice = d.ReturnFare.Price
	}
	delta := pricing.TripTypeConversionDelta(itineraryOf(d), target, returnPrice)
	if err := applyDelta(d, domain.SectionRoute, "round trip converted to one way", delta); err != nil {
		return err
	}
	d.TripType = target
	d.ReturnFare = nil
	d.ReturnDate = ""
	d.ReturnSeats = nil
	d.ReturnOptions = nil
	return nil
}

func (e *Editor) setEndpoint(ctx context.Context, d *domain.Draft, p fieldPath, value json.RawMessage) error {
	var v string
	if err := json.Unmarshal(value, &v); err != nil {
		return invalidValue(p, fmt.Sprintf("%s must be a string", p.root))
	}
	v = strings.TrimSpace(v)

	origin, destination := d.Origin, d.Destination
	if p.root == "origin" {
		origin = v
	} else {
		destination = v
	}
	if origin == d.Origin && destination == d.Destination {
		return nil
	}

	var options, returnOptions []domain.Fare
	if origin != "" && destination != "" {
		var err error
		options, err = e.fares.ListCandidateFares(ctx, origin, destination)
		if err != nil {
			return fmt.Errorf("list fares %s-%s: %w", origin, destination, err)
		}
		if d.TripType == domain.TripTypeRoundTrip {
			returnOptions, err = e.fares.ListCandidateFares(ctx, destination, origin)
			if err != nil {
				return fmt.Errorf("list return fares %s-%s: %w", destination, origin, err)
			}
		}
	}

	if d.OutboundFare != nil {
		delta := -pricing.FlightSubstitutionDelta(nil, d.OutboundFare.Price, d.PassengerCount)
		if err := applyDelta(d, domain.SectionRoute, "outbound flight "+d.OutboundFare.FlightNumber+" released", delta); err != nil {
			return err
		}
		d.OutboundFare = nil
	}
	if d.ReturnFare != nil {
		delta := -pricing.FlightSubstitutionDelta(nil, d.ReturnFare.Price, d.PassengerCount)
		if err := applyDelta(d, domain.SectionRoute, "return flight "+d.ReturnFare.FlightNumber+" released", delta); err != nil {
			return err
		}
		d.ReturnFare = nil
	}
	d.Origin, d.Destination = origin, destination
	d.OutboundOptions = options
	d.ReturnOptions = returnOptions
	return nil
}

func decodeFareID(p fieldPath, value json.RawMessage) (int64, error) {
	var id int64
	if err := json.Unmarshal(value, &id); err != nil {
		return 0, invalidValue(p, "fare must be referenced by its numeric id")
	}
	return id, nil
}

func findFare(options []domain.Fare, id int64) *domain.Fare {
	for i := range options {
		if options[i].ID == id {
			f := options[i]
			return &f
		}
	}
	return nil
}

func setOutboundFare(d *domain.Draft, p fieldPath, value json.RawMessage) error {
	id, err := decodeFareID(p, value)
	if err != nil {
		return err
	}
	fare := findFare(d.OutboundOptions, id)
	if fare == nil {
		return invalidValue(p, fmt.Sprintf("fare %d is not among the available outbound flights", id))
	}

	delta := pricing.FlightSubstitutionDelta(farePrice(d.OutboundFare), fare.Price, d.PassengerCount)
	if err := applyDelta(d, domain.SectionRoute, "outbound flight "+fare.FlightNumber, delta); err != nil {
		return err
	}
	d.OutboundFare = fare
	return nil
}

func setReturnFare(d *domain.Draft, p fieldPath, value json.RawMessage) error {
	if d.TripType != domain.TripTypeRoundTrip {
		return invalidValue(p, "a return flight can only be selected for round trips")
	}
	id, err := decodeFareID(p, value)
	if err != nil {
		return err
	}
	fare := findFare(d.ReturnOptions, id)
	if fare == nil {
		return invalidValue(p, fmt.Sprintf("fare %d is not among the available return flights", id))
	}

	var delta domain.Money
	reason := "return flight " + fare.FlightNumber
	if d.ReturnFare == nil {
		it := pricing.Itinerary{TripType: domain.TripTypeOneWay, PassengerCount: d.PassengerCount, Total: d.TotalPrice}
		delta = pricing.TripTypeConversionDelta(it, domain.TripTypeRoundTrip, fare.Price)
		if d.Original.TripType == domain.TripTypeOneWay {
			reason = "one way converted to round trip with " + reason
		}
	} else {
		delta = pricing.FlightSubstitutionDelta(farePrice(d.ReturnFare), fare.Price, d.PassengerCount)
	}
	if err := applyDelta(d, domain.SectionRoute, reason, delta); err != nil {
		return err
	}
	d.ReturnFare = fare
	return nil
}

// perPassengerFare is the fare of one traveller across every booked leg, or
// the average share of the total when no fare is attached.
func perPassengerFare(d *domain.Draft) domain.Money {
	var fare domain.Money
	if d.OutboundFare != nil {
		fare += d.OutboundFare.Price
	}
	if d.ReturnFare != nil {
		fare += d.ReturnFare.Price
	}
	if fare == 0 && d.PassengerCount > 0 {
		fare = d.TotalPrice / domain.Money(d.PassengerCount)
	}
	return fare
}

func setPassengerCount(d *domain.Draft, p fieldPath, value json.RawMessage) error {
	var n int
	if err := json.Unmarshal(value, &n); err != nil {
		return invalidValue(p, "passenger count must be a whole number")
	}
	if n < validation.MinPassengers || n > validation.MaxPassengers {
		return invalidValue(p, fmt.Sprintf("passenger count must be between %d and %d", validation.MinPassengers, validation.MaxPassengers))
	}
	if n == d.PassengerCount {
		return nil
	}

	delta := pricing.PassengerCountDelta(d.PassengerCount, n, d.TotalPrice, perPassengerFare(d))
	if err := applyDelta(d, domain.SectionPassengers, fmt.Sprintf("passengers %d to %d", d.PassengerCount, n), delta); err != nil {
		return err
	}

	d.PassengerCount = n
	d.Passengers = resize(d.Passengers, n)
	d.OutboundSeats = resize(d.OutboundSeats, n)
	if d.TripType == domain.TripTypeRoundTrip {
		d.ReturnSeats = resize(d.ReturnSeats, n)
	}
	return nil
}

// resize truncates s to n entries or appends zero values up to n.
func resize[T any](s []T, n int) []T {
	if len(s) >= n {
		return s[:n:n]
	}
	out := make([]T, n)
	copy(out, s)
	return out
}

func checkIndex(d *domain.Draft, p fieldPath) error {
	if p.index < 0 || p.index >= d.PassengerCount {
		return invalidValue(p, fmt.Sprintf("index %d is outside the %d booked passengers", p.index, d.PassengerCount))
	}
	return nil
}

func setPassengers(d *domain.Draft, p fieldPath, value json.RawMessage) error {
	if p.index < 0 {
		var list []domain.PassengerRecord
		if err := json.Unmarshal(value, &list); err != nil {
			return invalidValue(p, "passengers must be a list of passenger records")
		}
		if len(list) != d.PassengerCount {
			return invalidValue(p, fmt.Sprintf("expected %d passenger records, got %d", d.PassengerCount, len(list)))
		}
		d.Passengers = list
		return nil
	}

	if err := checkIndex(d, p); err != nil {
		return err
	}
	d.Passengers = resize(d.Passengers, d.PassengerCount)
	rec := &d.Passengers[p.index]

	if p.leaf == "" {
		var r domain.PassengerRecord
		if err := json.Unmarshal(value, &r); err != nil {
			return invalidValue(p, "passenger must be a passenger record")
		}
		*rec = r
		return nil
	}

	var target *string
	switch p.leaf {
	case "first_name":
		target = &rec.FirstName
	case "last_name":
		target = &rec.LastName
	case "date_of_birth":
		target = &rec.DateOfBirth
	case "nationality":
		target = &rec.Nationality
	case "document_number":
		target = &rec.DocumentNumber
	case "special_request":
		target = &rec.SpecialRequest
	default:
		return invalidValue(p, fmt.Sprintf("unknown field %q", p.raw))
	}
	return decodeString(p, value, func(s string) { *target = s })
}

func setSeats(d *domain.Draft, p fieldPath, value json.RawMessage, seats *[]string) error {
	if p.leaf != "" {
		return invalidValue(p, fmt.Sprintf("unknown field %q", p.raw))
	}
	if p.index < 0 {
		var list []string
		if err := json.Unmarshal(value, &list); err != nil {
			return invalidValue(p, "seats must be a list of seat codes")
		}
		for i := range list {
			list[i] = strings.ToUpper(strings.TrimSpace(list[i]))
		}
		*seats = list
		return nil
	}

	if err := checkIndex(d, p); err != nil {
		return err
	}
	*seats = resize(*seats, d.PassengerCount)
	return decodeString(p, value, func(s string) { (*seats)[p.index] = strings.ToUpper(s) })
}

func setContact(d *domain.Draft, p fieldPath, value json.RawMessage) error {
	switch p.leaf {
	case "email":
		return decodeString(p, value, func(s string) { d.Contact.Email = s })
	case "phone":
		return decodeString(p, value, func(s string) { d.Contact.Phone = s })
	}
	return invalidValue(p, fmt.Sprintf("unknown field %q", p.raw))
}
