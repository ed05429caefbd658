package api

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/lifecycle"
	"github.com/Domenick1991/airbooking-modify/internal/service/requests"
	"github.com/stretchr/testify/mock"
)

type bookingUseCaseMock struct{ mock.Mock }

func (m *bookingUseCaseMock) ListBookings(ctx context.Context, who domain.Identity) ([]domain.Booking, error) {
	args := m.Called(ctx, who)
	list, _ := args.Get(0).([]domain.Booking)
	return list, args.Error(1)
}

func (m *bookingUseCaseMock) GetBooking(ctx context.Context, who domain.Identity, id string) (*domain.Booking, error) {
	args := m.Called(ctx, who, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *bookingUseCaseMock) Actions(ctx context.Context, who domain.Identity, id string) (lifecycle.Actions, error) {
	args := m.Called(ctx, who, id)
	a, _ := args.Get(0).(lifecycle.Actions)
	return a, args.Error(1)
}

func (m *bookingUseCaseMock) CancelBooking(ctx context.Context, who domain.Identity, id string) (*domain.Booking, error) {
	args := m.Called(ctx, who, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

type modificationUseCaseMock struct{ mock.Mock }

func (m *modificationUseCaseMock) draft(args mock.Arguments) (*domain.Draft, error) {
	d, _ := args.Get(0).(*domain.Draft)
	return d, args.Error(1)
}

func (m *modificationUseCaseMock) OpenDraft(ctx context.Context, who domain.Identity, id string) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, who, id))
}

func (m *modificationUseCaseMock) GetDraft(ctx context.Context, who domain.Identity, id string) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, who, id))
}

func (m *modificationUseCaseMock) ToggleSection(ctx context.Context, who domain.Identity, id string, section domain.Section, enabled bool) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, who, id, section, enabled))
}

func (m *modificationUseCaseMock) SetField(ctx context.Context, who domain.Identity, id, path string, value json.RawMessage) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, who, id, path, value))
}

func (m *modificationUseCaseMock) Validate(ctx context.Context, who domain.Identity, id string) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, who, id))
}

func (m *modificationUseCaseMock) Submit(ctx context.Context, who domain.Identity, id string) (*domain.Booking, error) {
	args := m.Called(ctx, who, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *modificationUseCaseMock) DiscardDraft(ctx context.Context, who domain.Identity, id string) error {
	return m.Called(ctx, who, id).Error(0)
}

type requestUseCaseMock struct{ mock.Mock }

func (m *requestUseCaseMock) CreateRequest(ctx context.Context, who domain.Identity, input requests.CreateRequestInput) (*domain.Request, error) {
	args := m.Called(ctx, who, input)
	r, _ := args.Get(0).(*domain.Request)
	return r, args.Error(1)
}

func (m *requestUseCaseMock) ListRequests(ctx context.Context, who domain.Identity) ([]domain.Request, error) {
	args := m.Called(ctx, who)
	list, _ := args.Get(0).([]domain.Request)
	return list, args.Error(1)
}

func (m *requestUseCaseMock) ListPending(ctx context.Context, who domain.Identity) ([]domain.Request, error) {
	args := m.Called(ctx, who)
	list, _ := args.Get(0).([]domain.Request)
	return list, args.Error(1)
}

func (m *requestUseCaseMock) Respond(ctx context.Context, who domain.Identity, id string, input requests.DecisionInput) (*domain.Request, error) {
	args := m.Called(ctx, who, id, input)
	r, _ := args.Get(0).(*domain.Request)
	return r, args.Error(1)
}

type fareUseCaseMock struct{ mock.Mock }

func (m *fareUseCaseMock) ListCandidateFares(ctx context.Context, origin, destination string) ([]domain.Fare, error) {
	args := m.Called(ctx, origin, destination)
	list, _ := args.Get(0).([]domain.Fare)
	return list, args.Error(1)
}

func (m *fareUseCaseMock) GetByID(ctx context.Context, id int64) (*domain.Fare, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*domain.Fare)
	return f, args.Error(1)
}
