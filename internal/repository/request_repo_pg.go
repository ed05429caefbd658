package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/jmoiron/sqlx"
)

type RequestRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Request, error)
	ListByBooking(ctx context.Context, bookingID string) ([]domain.Request, error)
	ListPending(ctx context.Context) ([]domain.Request, error)
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	Create(ctx context.Context, req *domain.Request) error
	Respond(ctx context.Context, id string, status domain.RequestStatus, note *string, amount *domain.Money) (*domain.Request, error)
}

type PGRequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) RequestRepository {
	return &PGRequestRepository{db: db}
}

const requestColumns = `r.id, r.booking_id, r.requester_id, r.requester_email, r.requester_name,
	r.kind, r.reason_code, r.detail, r.status, r.admin_note, r.amount_cents, r.created_at, r.responded_at`

type requestRow struct {
	ID             string         `db:"id"`
	BookingID      string         `db:"booking_id"`
	RequesterID    string         `db:"requester_id"`
	RequesterEmail string         `db:"requester_email"`
	RequesterName  string         `db:"requester_name"`
	Kind           string         `db:"kind"`
	ReasonCode     string         `db:"reason_code"`
	Detail         string         `db:"detail"`
	Status         string         `db:"status"`
	AdminNote      sql.NullString `db:"admin_note"`
	AmountCents    sql.NullInt64  `db:"amount_cents"`
	CreatedAt      time.Time      `db:"created_at"`
	RespondedAt    sql.NullTime   `db:"responded_at"`
}

func (r requestRow) toDomain() domain.Request {
	req := domain.Request{
		ID:             r.ID,
		BookingID:      r.BookingID,
		RequesterID:    r.RequesterID,
		RequesterEmail: r.RequesterEmail,
		RequesterName:  r.RequesterName,
		Kind:           domain.RequestKind(r.Kind),
		ReasonCode:     r.ReasonCode,
		Detail:         r.Detail,
		Status:         domain.RequestStatus(r.Status),
		CreatedAt:      r.CreatedAt,
	}
	if r.AdminNote.Valid {
		note := r.AdminNote.String
		req.AdminNote = &note
	}
	if r.AmountCents.Valid {
		amount := domain.Money(r.AmountCents.Int64)
		req.Amount = &amount
	}
	if r.RespondedAt.Valid {
		t := r.RespondedAt.Time
		req.RespondedAt = &t
	}
	return req
}

func toRequests(rows []requestRow) []domain.Request {
	out := make([]domain.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

// ListByUser returns every request raised against the user's bookings.
func (r *PGRequestRepository) ListByUser(ctx context.Context, userID string) ([]domain.Request, error) {
	var rows []requestRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+requestColumns+` FROM booking_requests r
		JOIN bookings b ON b.id = r.booking_id
		WHERE b.user_id=$1 ORDER BY r.created_at`, userID)
	if err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

func (r *PGRequestRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.Request, error) {
	var rows []requestRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+requestColumns+` FROM booking_requests r WHERE r.booking_id=$1 ORDER BY r.created_at`, bookingID); err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

func (r *PGRequestRepository) ListPending(ctx context.Context) ([]domain.Request, error) {
	var rows []requestRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+requestColumns+` FROM booking_requests r WHERE r.status=$1 ORDER BY r.created_at`, domain.RequestStatusPending); err != nil {
		return nil, err
	}
	return toRequests(rows), nil
}

func (r *PGRequestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	var row requestRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+requestColumns+` FROM booking_requests r WHERE r.id=$1`, id); err != nil {
		return nil, notFound("request", err)
	}
	req := row.toDomain()
	return &req, nil
}

// Create inserts a pending request. The schema allows one pending request per
// booking and kind; a second one is reported as a conflict.
func (r *PGRequestRepository) Create(ctx context.Context, req *domain.Request) error {
	err := r.db.QueryRowxContext(ctx, `INSERT INTO booking_requests
		(id, booking_id, requester_id, requester_email, requester_name, kind, reason_code, detail, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		req.ID, req.BookingID, req.RequesterID, req.RequesterEmail, req.RequesterName,
		req.Kind, req.ReasonCode, req.Detail, req.Status,
	).Scan(&req.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ConflictError{Msg: "a request of this kind is already awaiting review", Err: err}
	}
	return err
}

// Respond records an admin decision. Only pending requests can be decided.
func (r *PGRequestRepository) Respond(ctx context.Context, id string, status domain.RequestStatus, note *string, amount *domain.Money) (*domain.Request, error) {
	var cents sql.NullInt64
	if amount != nil {
		cents = sql.NullInt64{Int64: int64(*amount), Valid: true}
	}

	var row requestRow
	err := r.db.GetContext(ctx, &row, `UPDATE booking_requests r SET status=$2, admin_note=$3, amount_cents=$4, responded_at=now()
		WHERE r.id=$1 AND r.status=$5
		RETURNING `+requestColumns, id, status, note, cents, domain.RequestStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ConflictError{Msg: "this request has already been decided", Err: err}
	}
	if err != nil {
		return nil, err
	}
	req := row.toDomain()
	return &req, nil
}

var _ RequestRepository = (*PGRequestRepository)(nil)
