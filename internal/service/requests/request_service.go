package requests

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/kafka"
	"github.com/Domenick1991/airbooking-modify/internal/lifecycle"
	"github.com/Domenick1991/airbooking-modify/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	MaxDetailLength    = 500
	MaxAdminNoteLength = 1000
)

type RequestUseCase interface {
	CreateRequest(ctx context.Context, who domain.Identity, input CreateRequestInput) (*domain.Request, error)
	ListRequests(ctx context.Context, who domain.Identity) ([]domain.Request, error)
	ListPending(ctx context.Context, who domain.Identity) ([]domain.Request, error)
	Respond(ctx context.Context, who domain.Identity, requestID string, input DecisionInput) (*domain.Request, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateRequestInput struct {
	BookingID  string             `json:"booking_id" binding:"required"`
	Kind       domain.RequestKind `json:"kind" binding:"required,request_kind"`
	ReasonCode string             `json:"reason_code" binding:"required"`
	Detail     string             `json:"detail" binding:"max=500"`
}

type DecisionInput struct {
	Status    domain.RequestStatus `json:"status" binding:"required,oneof=approved rejected"`
	AdminNote *string              `json:"admin_note" binding:"omitempty,max=1000"`
	Amount    *domain.Money        `json:"amount_cents" binding:"omitempty,min=0"`
}

type RequestService struct {
	bookings           repository.BookingRepository
	requests           repository.RequestRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	log                *logrus.Logger
	now                func() time.Time
}

type RequestServiceOption func(*RequestService)

func WithProducer(producer Producer, bookingTopic string) RequestServiceOption {
	return func(s *RequestService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) RequestServiceOption {
	return func(s *RequestService) {
		s.notificationsTopic = topic
	}
}

func NewRequestService(
	bookings repository.BookingRepository,
	requests repository.RequestRepository,
	log *logrus.Logger,
	opts ...RequestServiceOption,
) *RequestService {
	s := &RequestService{
		bookings: bookings,
		requests: requests,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest files a modification or cancellation request for one of the
// caller's bookings. The requester is always the caller.
func (s *RequestService) CreateRequest(ctx context.Context, who domain.Identity, input CreateRequestInput) (*domain.Request, error) {
	if !input.Kind.Valid() {
		return nil, domain.ValidationError{Field: "kind", Msg: "unknown request kind"}
	}
	if !domain.ValidReasonCode(input.Kind, input.ReasonCode) {
		return nil, domain.ValidationError{Field: "reason_code", Msg: "please select a reason"}
	}
	detail := strings.TrimSpace(input.Detail)
	if utf8.RuneCountInString(detail) > MaxDetailLength {
		return nil, domain.ValidationError{Field: "detail", Msg: "details must be 500 characters or fewer"}
	}
	if input.ReasonCode == domain.ReasonOther && detail == "" {
		return nil, domain.ValidationError{Field: "detail", Msg: "please describe the reason"}
	}

	b, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != who.ID {
		return nil, domain.NotFoundError{Resource: "booking"}
	}

	history, err := s.requests.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.GateFor(input.Kind, *b, history).Err("request " + string(input.Kind)); err != nil {
		return nil, err
	}

	req := &domain.Request{
		ID:             uuid.NewString(),
		BookingID:      b.ID,
		RequesterID:    who.ID,
		RequesterEmail: who.Email,
		RequesterName:  who.DisplayName,
		Kind:           input.Kind,
		ReasonCode:     input.ReasonCode,
		Detail:         detail,
		Status:         domain.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventRequestCreated, req)
	return req, nil
}

func (s *RequestService) ListRequests(ctx context.Context, who domain.Identity) ([]domain.Request, error) {
	return s.requests.ListByUser(ctx, who.ID)
}

func (s *RequestService) ListPending(ctx context.Context, who domain.Identity) ([]domain.Request, error) {
	if !who.IsAdmin() {
		return nil, domain.ForbiddenError{Action: "review requests"}
	}
	return s.requests.ListPending(ctx)
}

// Respond records an admin decision on a pending request. A request is
// decided once.
func (s *RequestService) Respond(ctx context.Context, who domain.Identity, requestID string, input DecisionInput) (*domain.Request, error) {
	if !who.IsAdmin() {
		return nil, domain.ForbiddenError{Action: "review requests"}
	}
	if input.Status != domain.RequestStatusApproved && input.Status != domain.RequestStatusRejected {
		return nil, domain.ValidationError{Field: "status", Msg: "status must be approved or rejected"}
	}
	if input.Amount != nil && (*input.Amount < 0 || *input.Amount > domain.MaxBookingTotal) {
		return nil, domain.ValidationError{Field: "amount_cents", Msg: "amount must be between 0 and 100000.00"}
	}

	var note *string
	if input.AdminNote != nil {
		if trimmed := strings.TrimSpace(*input.AdminNote); trimmed != "" {
			if utf8.RuneCountInString(trimmed) > MaxAdminNoteLength {
				return nil, domain.ValidationError{Field: "admin_note", Msg: "note must be 1000 characters or fewer"}
			}
			note = &trimmed
		}
	}

	current, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(input.Status) {
		return nil, domain.ConflictError{Msg: "this request has already been decided"}
	}

	updated, err := s.requests.Respond(ctx, requestID, input.Status, note, input.Amount)
	if err != nil {
		return nil, err
	}

	eventType := kafka.EventRequestRejected
	if updated.Status == domain.RequestStatusApproved {
		eventType = kafka.EventRequestApproved
	}
	s.publish(ctx, eventType, updated)
	return updated, nil
}

func (s *RequestService) publish(ctx context.Context, eventType string, req *domain.Request) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		BookingID:  req.BookingID,
		RequestID:  req.ID,
		UserID:     req.RequesterID,
		Email:      req.RequesterEmail,
		Name:       req.RequesterName,
		Status:     string(req.Status),
		Kind:       string(req.Kind),
		Amount:     req.Amount,
		OccurredAt: s.now(),
	}
	if req.AdminNote != nil {
		event.AdminNote = *req.AdminNote
	}

	entry := s.log.WithFields(logrus.Fields{"type": eventType, "request_id": req.ID})
	if err := s.producer.Publish(ctx, s.bookingTopic, req.BookingID, event); err != nil {
		entry.WithError(err).Warn("failed to publish request event")
		return
	}
	if s.notificationsTopic != "" && eventType != kafka.EventRequestCreated {
		if err := s.producer.Publish(ctx, s.notificationsTopic, req.BookingID, event); err != nil {
			entry.WithError(err).Warn("failed to publish notification")
		}
	}
}

var _ RequestUseCase = (*RequestService)(nil)

// Backlog summarises the requests awaiting review.
type Backlog struct {
	Total     int
	ByKind    map[domain.RequestKind]int
	OldestAge time.Duration
}

// PendingBacklog is used by the worker to report the review queue.
func (s *RequestService) PendingBacklog(ctx context.Context) (Backlog, error) {
	pending, err := s.requests.ListPending(ctx)
	if err != nil {
		return Backlog{}, err
	}
	b := Backlog{Total: len(pending), ByKind: make(map[domain.RequestKind]int)}
	now := s.now()
	for _, r := range pending {
		b.ByKind[r.Kind]++
		if age := now.Sub(r.CreatedAt); age > b.OldestAge {
			b.OldestAge = age
		}
	}
	return b, nil
}
