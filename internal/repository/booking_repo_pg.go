package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type BookingRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ApplyModification(ctx context.Context, id string, payload domain.Booking) (*domain.Booking, error)
	MarkCancelled(ctx context.Context, id string) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, kind, trip_type, origin, destination,
	to_char(departure_date, 'YYYY-MM-DD') AS departure_date,
	to_char(return_date, 'YYYY-MM-DD') AS return_date,
	passenger_count, passengers, contact_email, contact_phone,
	outbound_seats, return_seats, outbound_fare, return_fare,
	total_price_cents, status, created_at, updated_at, modified_at`

type bookingRow struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	Kind            string         `db:"kind"`
	TripType        string         `db:"trip_type"`
	Origin          string         `db:"origin"`
	Destination     string         `db:"destination"`
	DepartureDate   string         `db:"departure_date"`
	ReturnDate      sql.NullString `db:"return_date"`
	PassengerCount  int            `db:"passenger_count"`
	Passengers      []byte         `db:"passengers"`
	ContactEmail    string         `db:"contact_email"`
	ContactPhone    string         `db:"contact_phone"`
	OutboundSeats   pq.StringArray `db:"outbound_seats"`
	ReturnSeats     pq.StringArray `db:"return_seats"`
	OutboundFare    []byte         `db:"outbound_fare"`
	ReturnFare      []byte         `db:"return_fare"`
	TotalPriceCents int64          `db:"total_price_cents"`
	Status          string         `db:"status"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	ModifiedAt      sql.NullTime   `db:"modified_at"`
}

func (r bookingRow) toDomain() (domain.Booking, error) {
	b := domain.Booking{
		ID:             r.ID,
		UserID:         r.UserID,
		Kind:           domain.BookingKind(r.Kind),
		TripType:       domain.TripType(r.TripType),
		Origin:         r.Origin,
		Destination:    r.Destination,
		DepartureDate:  r.DepartureDate,
		ReturnDate:     r.ReturnDate.String,
		PassengerCount: r.PassengerCount,
		Contact:        domain.Contact{Email: r.ContactEmail, Phone: r.ContactPhone},
		OutboundSeats:  []string(r.OutboundSeats),
		ReturnSeats:    []string(r.ReturnSeats),
		TotalPrice:     domain.Money(r.TotalPriceCents),
		Status:         domain.BookingStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.ModifiedAt.Valid {
		t := r.ModifiedAt.Time
		b.ModifiedAt = &t
	}
	if len(r.Passengers) > 0 {
		if err := json.Unmarshal(r.Passengers, &b.Passengers); err != nil {
			return domain.Booking{}, fmt.Errorf("decode passengers of booking %s: %w", r.ID, err)
		}
	}
	if len(r.OutboundFare) > 0 {
		b.OutboundFare = &domain.Fare{}
		if err := json.Unmarshal(r.OutboundFare, b.OutboundFare); err != nil {
			return domain.Booking{}, fmt.Errorf("decode outbound fare of booking %s: %w", r.ID, err)
		}
	}
	if len(r.ReturnFare) > 0 {
		b.ReturnFare = &domain.Fare{}
		if err := json.Unmarshal(r.ReturnFare, b.ReturnFare); err != nil {
			return domain.Booking{}, fmt.Errorf("decode return fare of booking %s: %w", r.ID, err)
		}
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY departure_date, created_at`, userID); err != nil {
		return nil, err
	}

	bookings := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id); err != nil {
		return nil, notFound("booking", err)
	}
	b, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ApplyModification stores the full modified booking in one statement. Only a
// confirmed booking can be modified.
func (r *PGBookingRepository) ApplyModification(ctx context.Context, id string, payload domain.Booking) (*domain.Booking, error) {
	passengers, err := json.Marshal(payload.Passengers)
	if err != nil {
		return nil, fmt.Errorf("encode passengers: %w", err)
	}
	outbound, err := jsonValue(payload.OutboundFare)
	if err != nil {
		return nil, fmt.Errorf("encode outbound fare: %w", err)
	}
	ret, err := jsonValue(payload.ReturnFare)
	if err != nil {
		return nil, fmt.Errorf("encode return fare: %w", err)
	}

	var row bookingRow
	err = r.db.GetContext(ctx, &row, `UPDATE bookings SET
		trip_type=$2, origin=$3, destination=$4, departure_date=$5::date, return_date=$6::date,
		passenger_count=$7, passengers=$8, contact_email=$9, contact_phone=$10,
		outbound_seats=$11, return_seats=$12, outbound_fare=$13, return_fare=$14,
		total_price_cents=$15, status=$16, modified_at=$17, updated_at=now()
		WHERE id=$1 AND status='confirmed'
		RETURNING `+bookingColumns,
		id, payload.TripType, payload.Origin, payload.Destination, payload.DepartureDate, nullString(payload.ReturnDate),
		payload.PassengerCount, passengers, payload.Contact.Email, payload.Contact.Phone,
		pq.StringArray(payload.OutboundSeats), pq.StringArray(payload.ReturnSeats), outbound, ret,
		int64(payload.TotalPrice), payload.Status, payload.ModifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ConflictError{Msg: "this booking is no longer confirmed and cannot be modified", Err: err}
	}
	if err != nil {
		return nil, err
	}

	b, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) MarkCancelled(ctx context.Context, id string) (*domain.Booking, error) {
	var row bookingRow
	err := r.db.GetContext(ctx, &row, `UPDATE bookings SET status=$2, updated_at=now()
		WHERE id=$1 AND status=$3
		RETURNING `+bookingColumns, id, domain.BookingStatusCancelled, domain.BookingStatusConfirmed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ConflictError{Msg: "this booking is no longer confirmed and cannot be cancelled", Err: err}
	}
	if err != nil {
		return nil, err
	}

	b, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
