package flights

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/repository"
	"github.com/sirupsen/logrus"
)

type FareUseCase interface {
	ListCandidateFares(ctx context.Context, origin, destination string) ([]domain.Fare, error)
	GetByID(ctx context.Context, id int64) (*domain.Fare, error)
}

type FareCache interface {
	GetFares(ctx context.Context, origin, destination string) ([]domain.Fare, error)
	SetFares(ctx context.Context, origin, destination string, fares []domain.Fare) error
}

type FareService struct {
	repo  repository.FareRepository
	cache FareCache
	log   *logrus.Logger
	now   func() time.Time
}

func NewFareService(repo repository.FareRepository, cache FareCache, log *logrus.Logger) *FareService {
	return &FareService{repo: repo, cache: cache, log: log, now: time.Now}
}

// ListCandidateFares lists future fares for origin to destination, earliest
// departure first. Results are cached per route.
func (s *FareService) ListCandidateFares(ctx context.Context, origin, destination string) ([]domain.Fare, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, domain.ValidationError{Field: "route", Msg: "origin and destination are required"}
	}

	if s.cache != nil {
		if cached, err := s.cache.GetFares(ctx, origin, destination); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.WithError(err).Warn("fare cache read failed")
		}
	}

	fares, err := s.repo.ListByRoute(ctx, origin, destination, s.now())
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFares(ctx, origin, destination, fares); err != nil {
			s.log.WithError(err).Warn("fare cache write failed")
		}
	}
	return fares, nil
}

func (s *FareService) GetByID(ctx context.Context, id int64) (*domain.Fare, error) {
	return s.repo.GetByID(ctx, id)
}

var _ FareUseCase = (*FareService)(nil)
