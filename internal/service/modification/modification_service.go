// Package modification runs the booking modification workflow: opening a
// draft for an approved request, editing it, and submitting the result.
package modification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/draft"
	"github.com/Domenick1991/airbooking-modify/internal/kafka"
	"github.com/Domenick1991/airbooking-modify/internal/lifecycle"
	"github.com/Domenick1991/airbooking-modify/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	msgSubmitRetry  = "could not save your changes, please try again"
	msgInProgress   = "changes to this booking are already being saved"
	refreshDeadline = 10 * time.Second
)

type ModificationUseCase interface {
	OpenDraft(ctx context.Context, who domain.Identity, bookingID string) (*domain.Draft, error)
	GetDraft(ctx context.Context, who domain.Identity, bookingID string) (*domain.Draft, error)
	ToggleSection(ctx context.Context, who domain.Identity, bookingID string, section domain.Section, enabled bool) (*domain.Draft, error)
	SetField(ctx context.Context, who domain.Identity, bookingID, path string, value json.RawMessage) (*domain.Draft, error)
	Validate(ctx context.Context, who domain.Identity, bookingID string) (*domain.Draft, error)
	Submit(ctx context.Context, who domain.Identity, bookingID string) (*domain.Booking, error)
	DiscardDraft(ctx context.Context, who domain.Identity, bookingID string) error
}

// DraftStore keeps one open draft per booking and the submission guard.
type DraftStore interface {
	GetDraft(ctx context.Context, bookingID string) (*domain.Draft, error)
	SaveDraft(ctx context.Context, d *domain.Draft) error
	DeleteDraft(ctx context.Context, bookingID string) error
	AcquireProcessing(ctx context.Context, bookingID string) (bool, error)
	ReleaseProcessing(ctx context.Context, bookingID string) error
}

// ReadModel is the cached booking list shown to users.
type ReadModel interface {
	PutBooking(ctx context.Context, b domain.Booking) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Scheduler runs a task outside the calling request.
type Scheduler func(task func())

func goScheduler(task func()) { go task() }

type ModificationService struct {
	bookings           repository.BookingRepository
	requests           repository.RequestRepository
	drafts             DraftStore
	readModel          ReadModel
	editor             *draft.Editor
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	schedule           Scheduler
	log                *logrus.Logger
	now                func() time.Time
}

type ModificationServiceOption func(*ModificationService)

func WithProducer(producer Producer, bookingTopic string) ModificationServiceOption {
	return func(s *ModificationService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) ModificationServiceOption {
	return func(s *ModificationService) {
		s.notificationsTopic = topic
	}
}

func WithScheduler(schedule Scheduler) ModificationServiceOption {
	return func(s *ModificationService) {
		s.schedule = schedule
	}
}

func WithClock(now func() time.Time) ModificationServiceOption {
	return func(s *ModificationService) {
		s.now = now
	}
}

func NewModificationService(
	bookings repository.BookingRepository,
	requests repository.RequestRepository,
	drafts DraftStore,
	readModel ReadModel,
	fares draft.FareLookup,
	log *logrus.Logger,
	opts ...ModificationServiceOption,
) *ModificationService {
	s := &ModificationService{
		bookings:  bookings,
		requests:  requests,
		drafts:    drafts,
		readModel: readModel,
		schedule:  goScheduler,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.editor = draft.NewEditor(fares, draft.WithClock(s.now))
	return s
}

// loadGated returns the booking with its request history once the caller may
// modify it.
func (s *ModificationService) loadGated(ctx context.Context, who domain.Identity, bookingID string) (*domain.Booking, []domain.Request, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if !who.CanAccess(*b) {
		return nil, nil, domain.NotFoundError{Resource: "booking"}
	}
	history, err := s.requests.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := lifecycle.ModifyBookingGate(*b, history).Err("modify booking"); err != nil {
		return nil, nil, err
	}
	return b, history, nil
}

// OpenDraft starts editing a booking with an approved modification request.
// An already open draft is returned as is.
func (s *ModificationService) OpenDraft(ctx context.Context, who domain.Identity, bookingID string) (*domain.Draft, error) {
	b, history, err := s.loadGated(ctx, who, bookingID)
	if err != nil {
		return nil, err
	}

	existing, err := s.drafts.GetDraft(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	approved := lifecycle.Latest(b.ID, history, domain.RequestKindModification)
	d := draft.Seed(*b, *approved, s.now())
	s.editor.Revalidate(d)
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "request_id": approved.ID}).Info("modification draft opened")
	return d, nil
}

func (s *ModificationService) loadDraft(ctx context.Context, who domain.Identity, bookingID string) (*domain.Draft, error) {
	d, err := s.drafts.GetDraft(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if d == nil || !who.CanAccess(d.Original) {
		return nil, domain.NotFoundError{Resource: "draft"}
	}
	return d, nil
}

func (s *ModificationService) GetDraft(ctx context.Context, who domain.Identity, bookingID string) (*domain.Draft, error) {
	return s.loadDraft(ctx, who, bookingID)
}

func (s *ModificationService) ToggleSection(ctx context.Context, who domain.Identity, bookingID string, section domain.Section, enabled bool) (*domain.Draft, error) {
	d, err := s.loadDraft(ctx, who, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.editor.ToggleSection(d, section, enabled); err != nil {
		return nil, err
	}
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetField applies one edit. A rejected edit leaves the stored draft as it was.
func (s *ModificationService) SetField(ctx context.Context, who domain.Identity, bookingID, path string, value json.RawMessage) (*domain.Draft, error) {
	d, err := s.loadDraft(ctx, who, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.editor.SetField(ctx, d, path, value); err != nil {
		return nil, err
	}
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate refreshes the draft's error map. The draft is returned together
// with a ValidationError when any rule fails.
func (s *ModificationService) Validate(ctx context.Context, who domain.Identity, bookingID string) (*domain.Draft, error) {
	d, err := s.loadDraft(ctx, who, bookingID)
	if err != nil {
		return nil, err
	}
	errs := s.editor.Revalidate(d)
	if err := s.drafts.SaveDraft(ctx, d); err != nil {
		return nil, err
	}
	return d, errs.Err()
}

func (s *ModificationService) DiscardDraft(ctx context.Context, who domain.Identity, bookingID string) error {
	if _, err := s.loadDraft(ctx, who, bookingID); err != nil {
		return err
	}
	return s.drafts.DeleteDraft(ctx, bookingID)
}

// Submit validates the draft and stores the merged booking. Validation always
// finishes before the booking store is called; on any failure the draft is
// kept so the user can retry.
func (s *ModificationService) Submit(ctx context.Context, who domain.Identity, bookingID string) (*domain.Booking, error) {
	d, err := s.loadDraft(ctx, who, bookingID)
	if err != nil {
		return nil, err
	}

	acquired, err := s.drafts.AcquireProcessing(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ConflictError{Msg: msgInProgress}
	}
	defer func() {
		if err := s.drafts.ReleaseProcessing(context.WithoutCancel(ctx), bookingID); err != nil {
			s.log.WithError(err).WithField("booking_id", bookingID).Warn("failed to release processing guard")
		}
	}()

	current, history, err := s.loadGated(ctx, who, bookingID)
	if err != nil {
		return nil, err
	}

	if errs := s.editor.Revalidate(d); !errs.Empty() {
		if err := s.drafts.SaveDraft(ctx, d); err != nil {
			s.log.WithError(err).WithField("booking_id", bookingID).Warn("failed to store draft errors")
		}
		return nil, errs.Err()
	}

	payload, err := BuildPayload(*current, d, s.now())
	if err != nil {
		return nil, err
	}

	stored, err := s.bookings.ApplyModification(ctx, bookingID, payload)
	if err != nil {
		return nil, submissionError(err)
	}

	merged := Reconcile(payload, *stored)
	entry := s.log.WithFields(logrus.Fields{"booking_id": merged.ID, "user_id": merged.UserID})
	entry.WithField("total_price", merged.TotalPrice.String()).Info("booking modified")

	if s.readModel != nil {
		if err := s.readModel.PutBooking(ctx, merged); err != nil {
			entry.WithError(err).Warn("booking cache update failed")
		}
	}
	if err := s.drafts.DeleteDraft(ctx, bookingID); err != nil {
		entry.WithError(err).Warn("failed to discard draft")
	}

	approved := lifecycle.Latest(bookingID, history, domain.RequestKindModification)
	if err := s.publish(ctx, &merged, approved); err != nil {
		entry.WithError(err).Warn("failed to publish booking_modified")
	}

	s.schedule(func() { s.refresh(merged) })
	return &merged, nil
}

// submissionError keeps messages of known domain failures and hides the rest
// behind a retry message.
func submissionError(err error) error {
	if domain.IsConflict(err) || domain.IsNotFound(err) || domain.IsValidation(err) {
		return err
	}
	var subErr domain.SubmissionError
	if errors.As(err, &subErr) {
		return err
	}
	return domain.SubmissionError{Message: msgSubmitRetry, Err: err}
}

// refresh re-reads the booking after submission and adopts the stored
// version. Differences are logged at debug level only.
func (s *ModificationService) refresh(served domain.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshDeadline)
	defer cancel()

	entry := s.log.WithField("booking_id", served.ID)
	fetched, err := s.bookings.GetByID(ctx, served.ID)
	if err != nil {
		entry.WithError(err).Warn("post-submit refresh failed")
		return
	}
	if drift := Drift(served, *fetched); len(drift) > 0 {
		entry.WithField("fields", drift).Debug("reconciliation drift, adopting stored booking")
	}
	if s.readModel != nil {
		if err := s.readModel.PutBooking(ctx, *fetched); err != nil {
			entry.WithError(err).Warn("booking cache update failed")
		}
	}
}

func (s *ModificationService) publish(ctx context.Context, b *domain.Booking, req *domain.Request) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		ID:         uuid.NewString(),
		Type:       kafka.EventBookingModified,
		BookingID:  b.ID,
		UserID:     b.UserID,
		Email:      b.Contact.Email,
		Status:     string(b.Status),
		Kind:       string(domain.RequestKindModification),
		TotalPrice: b.TotalPrice,
		OccurredAt: s.now(),
	}
	if req != nil {
		event.RequestID = req.ID
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, b.ID, event)
	}
	return nil
}

var _ ModificationUseCase = (*ModificationService)(nil)
