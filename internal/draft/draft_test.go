package draft

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFareLookup struct {
	mock.Mock
}

func (m *MockFareLookup) ListCandidateFares(ctx context.Context, origin, destination string) ([]domain.Fare, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fare), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func oneWayBooking() domain.Booking {
	return domain.Booking{
		ID:             "bk-1",
		Kind:           domain.BookingKindFlight,
		TripType:       domain.TripTypeOneWay,
		Origin:         "Oslo",
		Destination:    "Bergen",
		DepartureDate:  "2026-04-01",
		PassengerCount: 2,
		Passengers: []domain.PassengerRecord{
			{FirstName: "Ingrid", LastName: "Dahl", DateOfBirth: "1990-05-01", Nationality: "Norwegian", DocumentNumber: "AB123456"},
			{FirstName: "Lars", LastName: "Dahl", DateOfBirth: "1988-12-24", Nationality: "Norwegian", DocumentNumber: "XY987654"},
		},
		Contact:       domain.Contact{Email: "ingrid@example.com", Phone: "+47 22 12 34 56"},
		OutboundSeats: []string{"12A", "12B"},
		OutboundFare:  &domain.Fare{ID: 10, FlightNumber: "SK101", Origin: "Oslo", Destination: "Bergen", Price: 30000},
		TotalPrice:    60000,
		Status:        domain.BookingStatusConfirmed,
	}
}

func newEditor(fares *MockFareLookup) *Editor {
	return NewEditor(fares, WithClock(func() time.Time { return fixedNow }))
}

func assertLedger(t *testing.T, d *domain.Draft) {
	t.Helper()
	assert.Equal(t, d.Original.TotalPrice+d.AdjustmentSum(), d.TotalPrice)
	assert.GreaterOrEqual(t, d.TotalPrice, domain.Money(0))
}

func TestSeed(t *testing.T) {
	b := oneWayBooking()
	d := Seed(b, domain.Request{ID: "rq-1", Kind: domain.RequestKindModification}, fixedNow)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "bk-1", d.BookingID)
	assert.Equal(t, "rq-1", d.RequestID)
	assert.Equal(t, b.TotalPrice, d.TotalPrice)
	assert.False(t, d.AnySectionEnabled())
	assert.Equal(t, b.Passengers, d.Passengers)

	d.Passengers[0].FirstName = "Changed"
	d.OutboundSeats[0] = "1A"
	assert.Equal(t, "Ingrid", d.Original.Passengers[0].FirstName)
	assert.Equal(t, "Ingrid", b.Passengers[0].FirstName)
	assert.Equal(t, "12A", d.Original.OutboundSeats[0])
}

func roundTripBooking() domain.Booking {
	b := oneWayBooking()
	b.TripType = domain.TripTypeRoundTrip
	b.ReturnDate = "2026-04-08"
	b.ReturnSeats = []string{"20C", "20D"}
	b.OutboundFare.Price = 25000
	b.ReturnFare = &domain.Fare{ID: 11, FlightNumber: "SK202", Origin: "Bergen", Destination: "Oslo", Price: 25000}
	b.TotalPrice = 100000
	return b
}

func TestToggleSectionEnableKeepsPrice(t *testing.T) {
	e := newEditor(&MockFareLookup{})
	d := Seed(oneWayBooking(), domain.Request{}, fixedNow)

	for _, s := range []domain.Section{domain.SectionDates, domain.SectionRoute, domain.SectionPassengers, domain.SectionSeats} {
		require.NoError(t, e.ToggleSection(d, s, true))
		assert.Equal(t, domain.Money(60000), d.TotalPrice)
	}
	require.NoError(t, e.ToggleSection(d, domain.SectionRoute, false))
	assert.False(t, d.ModifyRoute)
	assert.Equal(t, domain.Money(60000), d.TotalPrice)
	assert.Empty(t, d.Adjustments)

	err := e.ToggleSection(d, domain.Section("meals"), true)
	assert.True(t, domain.IsValidation(err))
}

func TestToggleSectionOff_RevertsRouteAndPrice(t *testing.T) {
	fares := &MockFareLookup{}
	e := newEditor(fares)
	ctx := context.Background()
	b := roundTripBooking()
	d := Seed(b, domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionRoute, true))

	fares.On("ListCandidateFares", ctx, "Oslo", "Tromso").Return([]domain.Fare{{ID: 31, FlightNumber: "WF310", Price: 45000}}, nil).Once()
	fares.On("ListCandidateFares", ctx, "Tromso", "Oslo").Return([]domain.Fare{{ID: 41, FlightNumber: "WF410", Price: 44000}}, nil).Once()
	require.NoError(t, e.SetField(ctx, d, "destination", raw(t, "Tromso")))
	assert.Equal(t, domain.Money(0), d.TotalPrice)

	require.NoError(t, e.ToggleSection(d, domain.SectionRoute, false))
	require.NoError(t, e.ToggleSection(d, domain.SectionDates, true))

	assert.Equal(t, "Bergen", d.Destination)
	assert.Equal(t, b.OutboundFare, d.OutboundFare)
	assert.Equal(t, b.ReturnFare, d.ReturnFare)
	assert.Nil(t, d.OutboundOptions)
	assert.Nil(t, d.ReturnOptions)
	assert.Equal(t, b.TotalPrice, d.TotalPrice)
	assert.Empty(t, d.Adjustments)
	assert.NotContains(t, d.Errors, "outbound_fare")
	assert.NotContains(t, d.Errors, "return_fare")
	assertLedger(t, d)

	fares.AssertExpectations(t)
}

func TestToggleSectionOff_RevertsPassengerCount(t *testing.T) {
	e := newEditor(&MockFareLookup{})
	ctx := context.Background()
	d := Seed(oneWayBooking(), domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, true))
	require.NoError(t, e.ToggleSection(d, domain.SectionSeats, true))

	require.NoError(t, e.SetField(ctx, d, "passenger_count", raw(t, 3)))
	require.NoError(t, e.SetField(ctx, d, "outbound_seats[0]", raw(t, "1A")))
	assert.Equal(t, domain.Money(120000), d.TotalPrice)

	require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, false))
	assert.Equal(t, 2, d.PassengerCount)
	assert.Len(t, d.Passengers, 2)
	assert.Equal(t, []string{"1A", "12B"}, d.OutboundSeats, "seat edits survive, resized to the booked count")
	assert.Equal(t, domain.Money(60000), d.TotalPrice)
	assertLedger(t, d)
}

func TestToggleSectionOff_DropsLaterAdjustments(t *testing.T) {
	tromso := []domain.Fare{{ID: 32, FlightNumber: "WF320", Origin: "Oslo", Destination: "Tromso", Price: 40000}}

	t.Run("earlier section cascades to later ones", func(t *testing.T) {
		fares := &MockFareLookup{}
		e := newEditor(fares)
		ctx := context.Background()
		d := Seed(oneWayBooking(), domain.Request{}, fixedNow)
		require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, true))
		require.NoError(t, e.ToggleSection(d, domain.SectionRoute, true))
		fares.On("ListCandidateFares", ctx, "Oslo", "Tromso").Return(tromso, nil).Once()

		require.NoError(t, e.SetField(ctx, d, "passenger_count", raw(t, 3)))
		require.NoError(t, e.SetField(ctx, d, "destination", raw(t, "Tromso")))
		require.NoError(t, e.SetField(ctx, d, "outbound_fare", raw(t, 32)))
		assert.Equal(t, domain.Money(150000), d.TotalPrice)

		require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, false))
		assert.True(t, d.ModifyRoute)
		assert.Equal(t, 2, d.PassengerCount)
		assert.Equal(t, "Bergen", d.Destination)
		assert.Equal(t, "SK101", d.OutboundFare.FlightNumber)
		assert.Equal(t, domain.Money(60000), d.TotalPrice)
		assert.Empty(t, d.Adjustments)
		assertLedger(t, d)
	})

	t.Run("later section leaves earlier ones", func(t *testing.T) {
		fares := &MockFareLookup{}
		e := newEditor(fares)
		ctx := context.Background()
		d := Seed(oneWayBooking(), domain.Request{}, fixedNow)
		require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, true))
		require.NoError(t, e.ToggleSection(d, domain.SectionRoute, true))
		fares.On("ListCandidateFares", ctx, "Oslo", "Tromso").Return(tromso, nil).Once()

		require.NoError(t, e.SetField(ctx, d, "destination", raw(t, "Tromso")))
		require.NoError(t, e.SetField(ctx, d, "outbound_fare", raw(t, 32)))
		require.NoError(t, e.SetField(ctx, d, "passenger_count", raw(t, 3)))
		assert.Equal(t, domain.Money(160000), d.TotalPrice)

		require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, false))
		assert.Equal(t, 2, d.PassengerCount)
		assert.Equal(t, "Tromso", d.Destination)
		assert.Equal(t, "WF320", d.OutboundFare.FlightNumber)
		assert.Equal(t, domain.Money(80000), d.TotalPrice)
		require.Len(t, d.Adjustments, 2)
		assert.Equal(t, domain.SectionRoute, d.Adjustments[1].Section)
		assertLedger(t, d)
	})
}

func TestSetField_DisabledSectionRefused(t *testing.T) {
	e := newEditor(&MockFareLookup{})
	d := Seed(oneWayBooking(), domain.Request{}, fixedNow)

	err := e.SetField(context.Background(), d, "passenger_count", raw(t, 3))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 2, d.PassengerCount)

	require.NoError(t, e.SetField(context.Background(), d, "contact.email", raw(t, "new@example.com")))
	assert.Equal(t, "new@example.com", d.Contact.Email)
}

func TestSetField_PassengerIncreaseDoublesTotal(t *testing.T) {
	e := newEditor(&MockFareLookup{})
	b := oneWayBooking()
	b.TotalPrice = 40000
	b.OutboundFare.Price = 20000
	d := Seed(b, domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, true))

	require.NoError(t, e.SetField(context.Background(), d, "passenger_count", raw(t, 3)))

	assert.Equal(t, domain.Money(80000), d.TotalPrice)
	assert.Len(t, d.Passengers, 3)
	assert.Len(t, d.OutboundSeats, 3)
	assert.Equal(t, "", d.OutboundSeats[2])
	assert.Nil(t, d.ReturnSeats)
	assertLedger(t, d)

	require.NoError(t, e.SetField(context.Background(), d, "passenger_count", raw(t, 1)))
	assert.Equal(t, domain.Money(40000), d.TotalPrice)
	assert.Len(t, d.Passengers, 1)
	assert.Equal(t, []string{"12A"}, d.OutboundSeats)
	assertLedger(t, d)
}

func TestSetField_PassengerCountRejectsBadValues(t *testing.T) {
	e := newEditor(&MockFareLookup{})
	d := Seed(oneWayBooking(), domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, true))

	for _, v := range []json.RawMessage{raw(t, 0), raw(t, 10), json.RawMessage(`2.5`), json.RawMessage(`"two"`)} {
		err := e.SetField(context.Background(), d, "passenger_count", v)
		assert.True(t, domain.IsValidation(err), "value %s", v)
	}
	assert.Equal(t, 2, d.PassengerCount)
	assert.Equal(t, domain.Money(60000), d.TotalPrice)
}

func TestSetField_OneWayToRoundTrip(t *testing.T) {
	fares := &MockFareLookup{}
	e := newEditor(fares)
	ctx := context.Background()
	d := Seed(oneWayBooking(), domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionRoute, true))

	returns := []domain.Fare{{ID: 20, FlightNumber: "SK202", Origin: "Bergen", Destination: "Oslo", Price: 25000}}
	fares.On("ListCandidateFares", ctx, "Bergen", "Oslo").Return(returns, nil).Once()

	require.NoError(t, e.SetField(ctx, d, "trip_type", raw(t, domain.TripTypeRoundTrip)))
	assert.Equal(t, domain.TripTypeRoundTrip, d.TripType)
	assert.Equal(t, []string{"", ""}, d.ReturnSeats)
	assert.Equal(t, returns, d.ReturnOptions)
	assert.Equal(t, domain.Money(60000), d.TotalPrice)

	require.NoError(t, e.SetField(ctx, d, "return_fare", raw(t, 20)))
	assert.Equal(t, domain.Money(60000+50000), d.TotalPrice)
	assert.NotNil(t, d.OutboundFare, "original outbound is retained")
	assert.NotContains(t, d.Errors, "outbound_fare")
	assertLedger(t, d)

	require.NoError(t, e.SetField(ctx, d, "trip_type", raw(t, domain.TripTypeOneWay)))
	assert.Equal(t, domain.Money(60000), d.TotalPrice)
	assert.Nil(t, d.ReturnFare)
	assert.Nil(t, d.ReturnSeats)
	assertLedger(t, d)

	fares.AssertExpectations(t)
}

func TestSetField_RouteChangeClearsOutbound(t *testing.T) {
	fares := &MockFareLookup{}
	e := newEditor(fares)
	ctx := context.Background()
	d := Seed(oneWayBooking(), domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionRoute, true))

	options := []domain.Fare{
		{ID: 31, FlightNumber: "WF310", Origin: "Oslo", Destination: "Tromso", Price: 45000},
		{ID: 32, FlightNumber: "WF320", Origin: "Oslo", Destination: "Tromso", Price: 40000},
	}
	fares.On("ListCandidateFares", ctx, "Oslo", "Tromso").Return(options, nil).Once()

	require.NoError(t, e.SetField(ctx, d, "destination", raw(t, "Tromso")))
	assert.Nil(t, d.OutboundFare)
	assert.Equal(t, options, d.OutboundOptions)
	assert.Equal(t, "select an outbound flight", d.Errors["outbound_fare"])
	assertLedger(t, d)

	require.NoError(t, e.SetField(ctx, d, "outbound_fare", raw(t, 31)))
	assert.Equal(t, domain.Money(90000), d.TotalPrice)
	require.NoError(t, e.SetField(ctx, d, "outbound_fare", raw(t, 32)))
	assert.Equal(t, domain.Money(80000), d.TotalPrice)
	assertLedger(t, d)

	err := e.SetField(ctx, d, "outbound_fare", raw(t, 99))
	assert.True(t, domain.IsValidation(err))

	fares.AssertExpectations(t)
}

func TestSetField_RouteChangeReleasesReturnFare(t *testing.T) {
	fares := &MockFareLookup{}
	e := newEditor(fares)
	ctx := context.Background()
	d := Seed(roundTripBooking(), domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionRoute, true))

	returns := []domain.Fare{{ID: 41, FlightNumber: "WF410", Origin: "Tromso", Destination: "Oslo", Price: 44000}}
	fares.On("ListCandidateFares", ctx, "Oslo", "Tromso").Return([]domain.Fare{{ID: 31, FlightNumber: "WF310", Price: 45000}}, nil).Once()
	fares.On("ListCandidateFares", ctx, "Tromso", "Oslo").Return(returns, nil).Once()

	require.NoError(t, e.SetField(ctx, d, "destination", raw(t, "Tromso")))
	assert.Nil(t, d.OutboundFare)
	assert.Nil(t, d.ReturnFare)
	assert.Equal(t, returns, d.ReturnOptions)
	assert.Equal(t, domain.Money(0), d.TotalPrice)
	assert.Equal(t, "select a return flight", d.Errors["return_fare"])
	require.Len(t, d.Adjustments, 2)
	assert.Equal(t, domain.Money(-50000), d.Adjustments[1].Amount)
	assertLedger(t, d)

	require.NoError(t, e.SetField(ctx, d, "outbound_fare", raw(t, 31)))
	require.NoError(t, e.SetField(ctx, d, "return_fare", raw(t, 41)))
	assert.Equal(t, domain.Money(2*45000+2*44000), d.TotalPrice)
	assertLedger(t, d)

	fares.AssertExpectations(t)
}

func TestSetField_FareLookupFailureLeavesDraft(t *testing.T) {
	fares := &MockFareLookup{}
	e := newEditor(fares)
	ctx := context.Background()
	d := Seed(oneWayBooking(), domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionRoute, true))

	fares.On("ListCandidateFares", ctx, "Oslo", "Tromso").Return(nil, errors.New("connection refused")).Once()

	err := e.SetField(ctx, d, "destination", raw(t, "Tromso"))
	require.Error(t, err)
	assert.Equal(t, "Bergen", d.Destination)
	assert.NotNil(t, d.OutboundFare)
	assert.Equal(t, domain.Money(60000), d.TotalPrice)
}

func TestSetField_PassengerAndSeatPaths(t *testing.T) {
	e := newEditor(&MockFareLookup{})
	ctx := context.Background()
	d := Seed(oneWayBooking(), domain.Request{}, fixedNow)
	require.NoError(t, e.ToggleSection(d, domain.SectionPassengers, true))
	require.NoError(t, e.ToggleSection(d, domain.SectionSeats, true))

	require.NoError(t, e.SetField(ctx, d, "passengers[1].first_name", raw(t, " Erik ")))
	assert.Equal(t, "Erik", d.Passengers[1].FirstName)

	tomorrow := fixedNow.AddDate(0, 0, 1).Format(domain.DateLayout)
	require.NoError(t, e.SetField(ctx, d, "passengers[0].date_of_birth", raw(t, tomorrow)))
	assert.Contains(t, d.Errors["passengers[0].date_of_birth"], "date of birth cannot be in the future")

	require.NoError(t, e.SetField(ctx, d, "outbound_seats[1]", raw(t, "14c")))
	assert.Equal(t, "14C", d.OutboundSeats[1])

	assert.True(t, domain.IsValidation(e.SetField(ctx, d, "passengers[2].first_name", raw(t, "Ghost"))))
	assert.True(t, domain.IsValidation(e.SetField(ctx, d, "passengers[0].shoe_size", raw(t, "44"))))
	assert.True(t, domain.IsValidation(e.SetField(ctx, d, "return_seats[0]", raw(t, "1A"))))
	assert.True(t, domain.IsValidation(e.SetField(ctx, d, "meal", raw(t, "veg"))))
	assert.True(t, domain.IsValidation(e.SetField(ctx, d, "passengers", raw(t, []domain.PassengerRecord{{FirstName: "Solo"}}))))
}

func TestResize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, resize([]string{"a", "b"}, 3))
	assert.Equal(t, []string{"a"}, resize([]string{"a", "b"}, 1))
	assert.Len(t, resize[domain.PassengerRecord](nil, 2), 2)
}
