package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/jmoiron/sqlx"
)

type FareRepository interface {
	ListByRoute(ctx context.Context, origin, destination string, after time.Time) ([]domain.Fare, error)
	GetByID(ctx context.Context, id int64) (*domain.Fare, error)
}

type PGFareRepository struct {
	db *sqlx.DB
}

func NewFareRepository(db *sqlx.DB) FareRepository {
	return &PGFareRepository{db: db}
}

const fareColumns = `id, flight_number, carrier, origin, destination, departure_time, arrival_time, price_cents, seats_available`

type fareRow struct {
	ID             int64     `db:"id"`
	FlightNumber   string    `db:"flight_number"`
	Carrier        string    `db:"carrier"`
	Origin         string    `db:"origin"`
	Destination    string    `db:"destination"`
	DepartureTime  time.Time `db:"departure_time"`
	ArrivalTime    time.Time `db:"arrival_time"`
	PriceCents     int64     `db:"price_cents"`
	SeatsAvailable int       `db:"seats_available"`
}

func (r fareRow) toDomain() domain.Fare {
	return domain.Fare{
		ID:             r.ID,
		FlightNumber:   r.FlightNumber,
		Carrier:        r.Carrier,
		Origin:         r.Origin,
		Destination:    r.Destination,
		DepartureTime:  r.DepartureTime,
		ArrivalTime:    r.ArrivalTime,
		Price:          domain.Money(r.PriceCents),
		SeatsAvailable: r.SeatsAvailable,
	}
}

// ListByRoute returns bookable fares between two places departing after the
// given instant, earliest first. Places match case-insensitively.
func (r *PGFareRepository) ListByRoute(ctx context.Context, origin, destination string, after time.Time) ([]domain.Fare, error) {
	var rows []fareRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+fareColumns+` FROM fares
		WHERE lower(origin)=lower($1) AND lower(destination)=lower($2) AND departure_time > $3 AND seats_available > 0
		ORDER BY departure_time`, origin, destination, after)
	if err != nil {
		return nil, err
	}

	fares := make([]domain.Fare, 0, len(rows))
	for _, row := range rows {
		fares = append(fares, row.toDomain())
	}
	return fares, nil
}

func (r *PGFareRepository) GetByID(ctx context.Context, id int64) (*domain.Fare, error) {
	var row fareRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+fareColumns+` FROM fares WHERE id=$1`, id); err != nil {
		return nil, notFound("fare", err)
	}
	f := row.toDomain()
	return &f, nil
}

var _ FareRepository = (*PGFareRepository)(nil)
