package service

import (
	"context"
	"errors"
	"time"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Admission errors. Each one is terminal except ErrBusy, which callers may
// retry later.
var (
	ErrOfferingNotFound   = errors.New("offering not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrOfferingClosed     = errors.New("offering is no longer open")
	ErrAlreadyEnrolled    = errors.New("student already holds an active enrollment in this offering")
	ErrSeatsExhausted     = errors.New("no seats remaining")
	ErrNotCancelable      = errors.New("only pending enrollments can be cancelled")
	ErrForbidden          = errors.New("operation not permitted for this user")
	ErrInvalidDecision    = errors.New("decision is not valid for this offering kind")
	ErrInvalidTransition  = errors.New("enrollment has already been reviewed")
	ErrBusy               = errors.New("offering is busy, try again")
)

// AvailabilityNotifier is told about offerings whose seat counter changed.
// Notifications happen after commit and never affect the admission result.
type AvailabilityNotifier interface {
	OfferingChanged(ctx context.Context, offeringID int)
}

// Requester identifies who asks to cancel an enrollment. Override is set for
// staff allowed to cancel on behalf of any student.
type Requester struct {
	StudentID int
	Override  bool
}

// Reviewer identifies the staff member recording a review decision.
// ReviewAll lifts the professor-of-record restriction.
type Reviewer struct {
	StaffID   int
	ReviewAll bool
}

// AdmissionService decides every change to an offering's seat counter.
// Each decision runs in one transaction holding the offering's row lock, so
// the counter never exceeds capacity and always equals the number of active
// enrollments.
type AdmissionService struct {
	store      repository.AdmissionStore
	notifier   AvailabilityNotifier
	log        zerolog.Logger
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

// NewAdmissionService creates a new AdmissionService. notifier may be nil.
func NewAdmissionService(store repository.AdmissionStore, notifier AvailabilityNotifier, cfg *config.Config, log zerolog.Logger) *AdmissionService {
	return &AdmissionService{
		store:      store,
		notifier:   notifier,
		log:        log.With().Str("component", "admission").Logger(),
		maxRetries: cfg.AdmissionMaxRetries,
		backoff:    cfg.AdmissionRetryBackoff,
		now:        time.Now,
	}
}

// RequestEnrollment admits a student into an offering if a seat is free.
// Preconditions are checked in order: the offering exists, it is still open,
// the student holds no active enrollment in it, and a seat remains.
func (s *AdmissionService) RequestEnrollment(ctx context.Context, studentID, offeringID int) (*model.Enrollment, *model.Availability, error) {
	var (
		enrollment *model.Enrollment
		avail      model.Availability
	)

	err := s.inTx(ctx, "request", func(ctx context.Context, tx repository.AdmissionTx) error {
		offering, err := tx.LockOffering(ctx, offeringID)
		if err != nil {
			return offeringErr(err)
		}

		now := s.now()
		if !offering.IsOpen(now) {
			return ErrOfferingClosed
		}

		_, err = tx.ActiveEnrollment(ctx, offeringID, studentID)
		switch {
		case err == nil:
			return ErrAlreadyEnrolled
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if offering.Occupied >= offering.Capacity {
			return ErrSeatsExhausted
		}

		status := model.EnrollmentPending
		if offering.AutoConfirm {
			status = model.EnrollmentConfirmed
		}
		e := &model.Enrollment{
			OfferingID: offeringID,
			StudentID:  studentID,
			Status:     status,
			CreatedAt:  now,
		}
		if err := tx.InsertEnrollment(ctx, e); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrAlreadyEnrolled
			case errors.Is(err, repository.ErrForeignKey):
				return ErrStudentNotFound
			}
			return err
		}

		occupied, err := tx.AddOccupied(ctx, offeringID, 1)
		if err != nil {
			if errors.Is(err, repository.ErrCheckViolation) {
				return ErrSeatsExhausted
			}
			return err
		}

		offering.Occupied = occupied
		enrollment = e
		avail = offering.Availability()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Int("enrollment_id", enrollment.ID).
		Int("offering_id", offeringID).
		Int("student_id", studentID).
		Str("status", string(enrollment.Status)).
		Int("remaining", avail.Remaining).
		Msg("Enrollment admitted")

	s.notify(ctx, offeringID)
	return enrollment, &avail, nil
}

// CancelEnrollment withdraws a pending enrollment and releases its seat.
func (s *AdmissionService) CancelEnrollment(ctx context.Context, enrollmentID int, requester Requester) (*model.Enrollment, error) {
	var cancelled *model.Enrollment

	err := s.inTx(ctx, "cancel", func(ctx context.Context, tx repository.AdmissionTx) error {
		current, err := tx.GetEnrollment(ctx, enrollmentID)
		if err != nil {
			return enrollmentErr(err)
		}
		if !requester.Override && current.StudentID != requester.StudentID {
			return ErrForbidden
		}

		offering, err := tx.LockOffering(ctx, current.OfferingID)
		if err != nil {
			return offeringErr(err)
		}
		e, err := tx.LockEnrollment(ctx, enrollmentID)
		if err != nil {
			return enrollmentErr(err)
		}

		if e.Status.IsTerminal() {
			return ErrNotCancelable
		}
		now := s.now()
		if !offering.IsOpen(now) {
			return ErrOfferingClosed
		}

		e.Status = model.EnrollmentCancelled
		e.CancelledAt = &now
		e.UpdatedAt = now
		if err := tx.UpdateEnrollment(ctx, e); err != nil {
			return err
		}
		if _, err := tx.AddOccupied(ctx, e.OfferingID, -1); err != nil {
			return err
		}

		cancelled = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("enrollment_id", cancelled.ID).
		Int("offering_id", cancelled.OfferingID).
		Bool("override", requester.Override).
		Msg("Enrollment cancelled")

	s.notify(ctx, cancelled.OfferingID)
	return cancelled, nil
}

// ReviewEnrollment records a reviewer's decision on a pending enrollment.
// The seat stays held whatever the decision.
func (s *AdmissionService) ReviewEnrollment(ctx context.Context, enrollmentID int, decision model.EnrollmentStatus, reviewer Reviewer) (*model.Enrollment, error) {
	var reviewed *model.Enrollment

	err := s.inTx(ctx, "review", func(ctx context.Context, tx repository.AdmissionTx) error {
		current, err := tx.GetEnrollment(ctx, enrollmentID)
		if err != nil {
			return enrollmentErr(err)
		}

		offering, err := tx.LockOffering(ctx, current.OfferingID)
		if err != nil {
			return offeringErr(err)
		}
		if !reviewer.ReviewAll && !offering.IsProfessor(reviewer.StaffID) {
			return ErrForbidden
		}
		if !model.IsValidDecision(offering.Kind, decision) {
			return ErrInvalidDecision
		}

		e, err := tx.LockEnrollment(ctx, enrollmentID)
		if err != nil {
			return enrollmentErr(err)
		}
		if e.Status.IsTerminal() {
			return ErrInvalidTransition
		}

		now := s.now()
		staffID := reviewer.StaffID
		e.Status = decision
		e.ReviewedBy = &staffID
		e.ReviewedAt = &now
		e.UpdatedAt = now
		if err := tx.UpdateEnrollment(ctx, e); err != nil {
			return err
		}

		reviewed = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("enrollment_id", reviewed.ID).
		Int("staff_id", reviewer.StaffID).
		Str("decision", string(decision)).
		Msg("Enrollment reviewed")

	return reviewed, nil
}

// GetAvailability reads an offering's seat counts straight from the store.
func (s *AdmissionService) GetAvailability(ctx context.Context, offeringID int) (*model.Availability, error) {
	a, err := s.store.Availability(ctx, offeringID)
	if err != nil {
		return nil, offeringErr(err)
	}
	return a, nil
}

// inTx runs fn in a store transaction, retrying transient conflicts with
// exponential backoff. Once retries run out it reports ErrBusy.
func (s *AdmissionService) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx repository.AdmissionTx) error) error {
	backoff := s.backoff
	for attempt := 0; ; attempt++ {
		err := s.store.InTx(ctx, fn)
		if err == nil || !repository.IsTransient(err) {
			return err
		}

		if attempt >= s.maxRetries {
			s.log.Warn().Err(err).Str("op", op).Int("attempts", attempt+1).Msg("Admission retries exhausted")
			return ErrBusy
		}
		s.log.Debug().Err(err).Str("op", op).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("Retrying admission transaction")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}

func (s *AdmissionService) notify(ctx context.Context, offeringID int) {
	if s.notifier != nil {
		s.notifier.OfferingChanged(ctx, offeringID)
	}
}

func offeringErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOfferingNotFound
	}
	return err
}

func enrollmentErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEnrollmentNotFound
	}
	return err
}
