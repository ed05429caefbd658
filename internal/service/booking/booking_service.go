package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/kafka"
	"github.com/Domenick1991/airbooking-modify/internal/lifecycle"
	"github.com/Domenick1991/airbooking-modify/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	ListBookings(ctx context.Context, who domain.Identity) ([]domain.Booking, error)
	GetBooking(ctx context.Context, who domain.Identity, bookingID string) (*domain.Booking, error)
	Actions(ctx context.Context, who domain.Identity, bookingID string) (lifecycle.Actions, error)
	CancelBooking(ctx context.Context, who domain.Identity, bookingID string) (*domain.Booking, error)
}

// Cache is the per-user booking read model.
type Cache interface {
	GetBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	SetBookings(ctx context.Context, userID string, bookings []domain.Booking) error
	PutBooking(ctx context.Context, b domain.Booking) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	requests           repository.RequestRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	log                *logrus.Logger
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	requests repository.RequestRepository,
	cache Cache,
	log *logrus.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		requests: requests,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// ListBookings serves the caller's bookings from the read model, loading and
// caching them on a miss.
func (s *BookingService) ListBookings(ctx context.Context, who domain.Identity) ([]domain.Booking, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetBookings(ctx, who.ID); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.WithError(err).WithField("user_id", who.ID).Warn("booking cache read failed")
		}
	}

	bookings, err := s.bookings.ListByUser(ctx, who.ID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetBookings(ctx, who.ID, bookings); err != nil {
			s.log.WithError(err).WithField("user_id", who.ID).Warn("booking cache write failed")
		}
	}
	return bookings, nil
}

// GetBooking loads a booking the caller may access. Bookings of other users
// are reported as missing.
func (s *BookingService) GetBooking(ctx context.Context, who domain.Identity, bookingID string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !who.CanAccess(*b) {
		return nil, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (s *BookingService) Actions(ctx context.Context, who domain.Identity, bookingID string) (lifecycle.Actions, error) {
	b, err := s.GetBooking(ctx, who, bookingID)
	if err != nil {
		return lifecycle.Actions{}, err
	}
	requests, err := s.requests.ListByBooking(ctx, b.ID)
	if err != nil {
		return lifecycle.Actions{}, err
	}
	return lifecycle.ActionsFor(*b, requests), nil
}

// CancelBooking acts on an approved cancellation request.
func (s *BookingService) CancelBooking(ctx context.Context, who domain.Identity, bookingID string) (*domain.Booking, error) {
	b, err := s.GetBooking(ctx, who, bookingID)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CancelBookingGate(*b, requests).Err("cancel booking"); err != nil {
		return nil, err
	}

	updated, err := s.bookings.MarkCancelled(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.PutBooking(ctx, *updated); err != nil {
			s.log.WithError(err).WithField("booking_id", updated.ID).Warn("booking cache update failed")
		}
	}

	approved := lifecycle.Latest(b.ID, requests, domain.RequestKindCancellation)
	if err := s.publish(ctx, kafka.EventBookingCancelled, updated, approved); err != nil {
		s.log.WithError(err).WithField("booking_id", updated.ID).Warn("failed to publish booking_cancelled")
	}
	return updated, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking, req *domain.Request) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		BookingID:  b.ID,
		UserID:     b.UserID,
		Email:      b.Contact.Email,
		Status:     string(b.Status),
		TotalPrice: b.TotalPrice,
		OccurredAt: s.now(),
	}
	if req != nil {
		event.RequestID = req.ID
		event.Kind = string(req.Kind)
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, b.ID, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
