// Package pricing computes the price deltas of a booking modification.
// Every function is pure: it returns a delta and the caller applies it with Apply.
package pricing

import (
	"errors"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
)

var ErrInvalidTotal = errors.New("price calculation produced an invalid total")

// Itinerary is the pricing view of the booking being converted.
type Itinerary struct {
	TripType        domain.TripType
	SingleFarePrice domain.Money
	PassengerCount  int
	Total           domain.Money
}

// TripTypeConversionDelta prices a one-way <-> round-trip conversion. Adding a
// return leg charges the return fare per passenger; dropping it refunds the same
// amount without taking the total below zero.
func TripTypeConversionDelta(it Itinerary, target domain.TripType, returnFarePrice domain.Money) domain.Money {
	if it.TripType == target {
		return 0
	}
	amount := returnFarePrice.Times(it.PassengerCount)
	switch target {
	case domain.TripTypeRoundTrip:
		return amount
	case domain.TripTypeOneWay:
		return floorAt(it.Total, -amount)
	}
	return 0
}

// PassengerCountDelta prices a passenger count change. An increase doubles the
// current total; a decrease refunds the per-passenger fare for each removed
// passenger.
func PassengerCountDelta(oldCount, newCount int, currentTotal, perPassengerFare domain.Money) domain.Money {
	switch {
	case newCount > oldCount:
		return currentTotal
	case newCount < oldCount:
		return floorAt(currentTotal, -perPassengerFare.Times(oldCount-newCount))
	}
	return 0
}

// FlightSubstitutionDelta prices selecting newFare in place of previousFare.
// A nil previousFare means nothing was selected for that leg yet.
func FlightSubstitutionDelta(previousFare *domain.Money, newFare domain.Money, passengerCount int) domain.Money {
	if previousFare == nil {
		return newFare.Times(passengerCount)
	}
	return (newFare - *previousFare).Times(passengerCount)
}

// Apply adds delta to total. The result is floored at zero and the delta that
// was actually applied is returned alongside it. On overflow, including a delta
// that already saturated while being computed, the previous total is kept and
// ErrInvalidTotal is returned.
func Apply(total, delta domain.Money) (domain.Money, domain.Money, error) {
	if total < 0 || delta.Saturated() {
		return total, 0, ErrInvalidTotal
	}
	next := total + delta
	if (delta > 0 && next < total) || (delta < 0 && next > total) {
		return total, 0, ErrInvalidTotal
	}
	if next < 0 {
		return 0, -total, nil
	}
	return next, delta, nil
}

// floorAt caps a refund at total. Saturated deltas pass through so Apply can
// reject them.
func floorAt(total, delta domain.Money) domain.Money {
	if delta.Saturated() {
		return delta
	}
	if total+delta < 0 {
		return -total
	}
	return delta
}
