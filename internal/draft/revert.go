package draft

import "github.com/Domenick1991/airbooking-modify/internal/domain"

// revertSection puts a disabled section back to the booking's values and
// drops its price adjustments. Adjustments are priced against the draft as it
// stood when they were applied, so every adjustment recorded after the first
// one being dropped goes too, and the sections that own them are reverted
// along with it. The total is rebuilt from the surviving ledger prefix.
func revertSection(d *domain.Draft, section domain.Section) {
	reverted := map[domain.Section]bool{section: true}
	cut := len(d.Adjustments)
	for {
		for i, adj := range d.Adjustments {
			if reverted[adj.Section] && i < cut {
				cut = i
				break
			}
		}
		grown := false
		for _, adj := range d.Adjustments[cut:] {
			if !reverted[adj.Section] {
				reverted[adj.Section] = true
				grown = true
			}
		}
		if !grown {
			break
		}
	}

	d.Adjustments = d.Adjustments[:cut:cut]
	d.TotalPrice = d.Original.TotalPrice + d.AdjustmentSum()

	orig := d.Original.Clone()
	for s := range reverted {
		restoreSection(d, orig, s)
	}
	reshape(d, orig)
}

func restoreSection(d *domain.Draft, orig domain.Booking, s domain.Section) {
	switch s {
	case domain.SectionRoute:
		d.TripType = orig.TripType
		d.Origin = orig.Origin
		d.Destination = orig.Destination
		d.OutboundFare = orig.OutboundFare
		d.ReturnFare = orig.ReturnFare
		d.OutboundOptions = nil
		d.ReturnOptions = nil
	case domain.SectionPassengers:
		d.PassengerCount = orig.PassengerCount
		d.Passengers = orig.Passengers
	case domain.SectionDates:
		d.DepartureDate = orig.DepartureDate
		d.ReturnDate = orig.ReturnDate
	case domain.SectionSeats:
		d.OutboundSeats = orig.OutboundSeats
		d.ReturnSeats = orig.ReturnSeats
	}
}

// reshape fits the per-passenger and per-leg fields to the restored trip type
// and passenger count.
func reshape(d *domain.Draft, orig domain.Booking) {
	d.Passengers = resize(d.Passengers, d.PassengerCount)
	d.OutboundSeats = resize(d.OutboundSeats, d.PassengerCount)
	if d.TripType != domain.TripTypeRoundTrip {
		d.ReturnDate = ""
		d.ReturnSeats = nil
		return
	}
	if d.ReturnDate == "" {
		d.ReturnDate = orig.ReturnDate
	}
	if d.ReturnSeats == nil {
		d.ReturnSeats = orig.ReturnSeats
	}
	d.ReturnSeats = resize(d.ReturnSeats, d.PassengerCount)
}
