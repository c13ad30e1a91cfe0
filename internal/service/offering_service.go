package service

import (
	"context"
	"errors"
	"time"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrCapacityLocked is returned when capacity changes on an offering that
// already has enrollments.
var ErrCapacityLocked = errors.New("capacity cannot change once students are enrolled")

// OfferingService manages commissions and final exam sittings.
type OfferingService struct {
	offeringRepo repository.OfferingRepository
	notifier     AvailabilityNotifier
	log          zerolog.Logger
	now          func() time.Time
}

// NewOfferingService creates a new OfferingService. notifier may be nil.
func NewOfferingService(offeringRepo repository.OfferingRepository, notifier AvailabilityNotifier, log zerolog.Logger) *OfferingService {
	return &OfferingService{
		offeringRepo: offeringRepo,
		notifier:     notifier,
		log:          log.With().Str("component", "offering_service").Logger(),
		now:          time.Now,
	}
}

// List returns offerings matching the filter.
func (s *OfferingService) List(ctx context.Context, filter model.OfferingFilter) ([]model.Offering, error) {
	return s.offeringRepo.List(ctx, filter)
}

// ListOpenForCareer returns the offerings of a career that still accept
// enrollments, with their remaining seats.
func (s *OfferingService) ListOpenForCareer(ctx context.Context, careerID int, kind model.OfferingKind) ([]model.OfferingWithAvailability, error) {
	now := s.now()
	offerings, err := s.offeringRepo.List(ctx, model.OfferingFilter{
		Kind:      kind,
		CareerID:  &careerID,
		OpenAfter: &now,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.OfferingWithAvailability, len(offerings))
	for i, o := range offerings {
		out[i] = model.OfferingWithAvailability{Offering: o, Remaining: o.Remaining()}
	}
	return out, nil
}

// GetByID retrieves an offering.
func (s *OfferingService) GetByID(ctx context.Context, id int) (*model.Offering, error) {
	o, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, offeringErr(err)
	}
	return o, nil
}

// Create adds a new offering with no enrollments.
func (s *OfferingService) Create(ctx context.Context, req model.CreateOfferingRequest) (*model.Offering, error) {
	o := &model.Offering{
		Kind:        req.Kind,
		SubjectID:   req.SubjectID,
		ProfessorID: req.ProfessorID,
		Label:       req.Label,
		Room:        req.Room,
		ScheduledAt: req.ScheduledAt,
		Capacity:    req.Capacity,
		AutoConfirm: req.AutoConfirm,
	}
	if err := s.offeringRepo.Create(ctx, o); err != nil {
		return nil, writeErr(err)
	}

	s.log.Info().
		Int("offering_id", o.ID).
		Str("kind", string(o.Kind)).
		Int("capacity", o.Capacity).
		Msg("Offering created")
	return o, nil
}

// Update changes an offering's schedule, professor or capacity. The capacity
// is frozen once the first student enrolled.
func (s *OfferingService) Update(ctx context.Context, id int, req model.UpdateOfferingRequest) (*model.Offering, error) {
	o, err := s.offeringRepo.UpdateLocked(ctx, id, func(o *model.Offering) error {
		if req.Capacity != o.Capacity && o.Occupied > 0 {
			return ErrCapacityLocked
		}
		o.ProfessorID = req.ProfessorID
		o.Label = req.Label
		o.Room = req.Room
		o.ScheduledAt = req.ScheduledAt
		o.Capacity = req.Capacity
		o.AutoConfirm = req.AutoConfirm
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCapacityLocked) {
			return nil, err
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOfferingNotFound
		}
		return nil, writeErr(err)
	}

	if s.notifier != nil {
		s.notifier.OfferingChanged(ctx, id)
	}
	return o, nil
}

// Delete removes an offering that never had enrollments.
func (s *OfferingService) Delete(ctx context.Context, id int) error {
	err := s.offeringRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOfferingNotFound
	}
	return deleteErr(err)
}
