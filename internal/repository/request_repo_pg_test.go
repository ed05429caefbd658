package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requestRowColumns = []string{
	"id", "booking_id", "requester_id", "requester_email", "requester_name",
	"kind", "reason_code", "detail", "status", "admin_note", "amount_cents",
	"created_at", "responded_at",
}

func TestPGRequestRepository_ListByBooking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM booking_requests r WHERE r.booking_id=\$1`).
		WithArgs("bk-1").
		WillReturnRows(sqlmock.NewRows(requestRowColumns).
			AddRow("rq-1", "bk-1", "user-1", "ada@example.com", "Ada", "modification", "seat_change", "", "approved", "ok", int64(2500), now, now).
			AddRow("rq-2", "bk-1", "user-1", "ada@example.com", "Ada", "cancellation", "medical", "flu", "pending", nil, nil, now, nil))

	reqs, err := repo.ListByBooking(context.Background(), "bk-1")
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, domain.RequestStatusApproved, reqs[0].Status)
	require.NotNil(t, reqs[0].AdminNote)
	assert.Equal(t, "ok", *reqs[0].AdminNote)
	require.NotNil(t, reqs[0].Amount)
	assert.Equal(t, domain.Money(2500), *reqs[0].Amount)
	assert.NotNil(t, reqs[0].RespondedAt)

	assert.Equal(t, domain.RequestKindCancellation, reqs[1].Kind)
	assert.Nil(t, reqs[1].AdminNote)
	assert.Nil(t, reqs[1].Amount)
	assert.Nil(t, reqs[1].RespondedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRequestRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectQuery(`JOIN bookings b ON b.id = r.booking_id\s+WHERE b.user_id=\$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(requestRowColumns))

	reqs, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, reqs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRequestRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	req := &domain.Request{
		ID:          "rq-9",
		BookingID:   "bk-1",
		RequesterID: "user-1",
		Kind:        domain.RequestKindModification,
		ReasonCode:  "seat_change",
		Status:      domain.RequestStatusPending,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO booking_requests`).
			WithArgs("rq-9", "bk-1", "user-1", "", "", sqlmock.AnyArg(), "seat_change", "", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

		require.NoError(t, repo.Create(context.Background(), req))
		assert.True(t, created.Equal(req.CreatedAt))
	})

	t.Run("Duplicate pending", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO booking_requests`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "booking_requests_one_pending"})

		err := repo.Create(context.Background(), req)
		assert.True(t, domain.IsConflict(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRequestRepository_Respond(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	now := time.Now()
	note := "approved, fee applies"
	amount := domain.Money(1500)

	t.Run("Pending request", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE booking_requests r SET status=\$2`).
			WithArgs("rq-1", domain.RequestStatusApproved, &note, sql.NullInt64{Int64: 1500, Valid: true}, domain.RequestStatusPending).
			WillReturnRows(sqlmock.NewRows(requestRowColumns).
				AddRow("rq-1", "bk-1", "user-1", "ada@example.com", "Ada", "modification", "other", "", "approved", note, int64(1500), now, now))

		req, err := repo.Respond(context.Background(), "rq-1", domain.RequestStatusApproved, &note, &amount)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusApproved, req.Status)
		assert.Equal(t, amount, *req.Amount)
	})

	t.Run("Already decided", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE booking_requests r SET`).WillReturnError(sql.ErrNoRows)

		_, err := repo.Respond(context.Background(), "rq-1", domain.RequestStatusRejected, nil, nil)
		assert.True(t, domain.IsConflict(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
