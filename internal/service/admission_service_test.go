package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

const (
	professorID = 7
	otherStaff  = 8
)

func newAdmission(t *testing.T, store *memStore) (*AdmissionService, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	cfg := &config.Config{AdmissionMaxRetries: 3, AdmissionRetryBackoff: time.Millisecond}
	svc := NewAdmissionService(store, notifier, cfg, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc, notifier
}

func openOffering(id, capacity int, kind model.OfferingKind) model.Offering {
	prof := professorID
	return model.Offering{
		ID:          id,
		Kind:        kind,
		SubjectID:   1,
		ProfessorID: &prof,
		Label:       "Comisión A",
		ScheduledAt: testNow.Add(72 * time.Hour),
		Capacity:    capacity,
	}
}

func TestRequestEnrollment_Admits(t *testing.T) {
	store := newMemStore()
	store.addOffering(openOffering(1, 2, model.OfferingCommission))
	store.addStudents(100)
	svc, notifier := newAdmission(t, store)

	e, avail, err := svc.RequestEnrollment(context.Background(), 100, 1)
	require.NoError(t, err)

	assert.Equal(t, model.EnrollmentPending, e.Status)
	assert.Equal(t, 100, e.StudentID)
	assert.Equal(t, testNow, e.CreatedAt)
	assert.Equal(t, model.Availability{OfferingID: 1, Capacity: 2, Occupied: 1, Remaining: 1}, *avail)
	assert.Equal(t, 1, store.offering(1).Occupied)
	assert.Equal(t, []int{1}, notifier.calls())
}

func TestRequestEnrollment_AutoConfirm(t *testing.T) {
	store := newMemStore()
	o := openOffering(1, 5, model.OfferingFinalExam)
	o.AutoConfirm = true
	store.addOffering(o)
	store.addStudents(100)
	svc, _ := newAdmission(t, store)

	e, _, err := svc.RequestEnrollment(context.Background(), 100, 1)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentConfirmed, e.Status)
}

func TestRequestEnrollment_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *memStore)
		student int
		want    error
	}{
		{
			name:    "unknown offering",
			setup:   func(s *memStore) {},
			student: 100,
			want:    ErrOfferingNotFound,
		},
		{
			name: "closed wins over full and enrolled",
			setup: func(s *memStore) {
				o := openOffering(1, 1, model.OfferingFinalExam)
				o.ScheduledAt = testNow
				o.Occupied = 1
				s.addOffering(o)
				s.enrollments[1] = model.Enrollment{ID: 1, OfferingID: 1, StudentID: 100, Status: model.EnrollmentPending}
				s.nextID = 2
			},
			student: 100,
			want:    ErrOfferingClosed,
		},
		{
			name: "already enrolled wins over full",
			setup: func(s *memStore) {
				o := openOffering(1, 1, model.OfferingFinalExam)
				o.Occupied = 1
				s.addOffering(o)
				s.enrollments[1] = model.Enrollment{ID: 1, OfferingID: 1, StudentID: 100, Status: model.EnrollmentApproved}
				s.nextID = 2
			},
			student: 100,
			want:    ErrAlreadyEnrolled,
		},
		{
			name: "full",
			setup: func(s *memStore) {
				o := openOffering(1, 1, model.OfferingCommission)
				o.Occupied = 1
				s.addOffering(o)
				s.enrollments[1] = model.Enrollment{ID: 1, OfferingID: 1, StudentID: 101, Status: model.EnrollmentPending}
				s.nextID = 2
			},
			student: 100,
			want:    ErrSeatsExhausted,
		},
		{
			name:    "unknown student",
			setup:   func(s *memStore) { s.addOffering(openOffering(1, 3, model.OfferingCommission)) },
			student: 999,
			want:    ErrStudentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.addStudents(100, 101)
			tt.setup(store)
			before := store.offering(1)
			svc, notifier := newAdmission(t, store)

			_, _, err := svc.RequestEnrollment(context.Background(), tt.student, 1)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, store.offering(1), "failed request must not touch the offering")
			assert.Empty(t, notifier.calls())
		})
	}
}

func TestRequestEnrollment_AfterCancelAllowed(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct {
		name   string
		second int
	}{
		{name: "same student", second: 100},
		{name: "different student", second: 101},
	} {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.addOffering(openOffering(1, 1, model.OfferingCommission))
			store.addStudents(100, 101)
			svc, _ := newAdmission(t, store)

			first, _, err := svc.RequestEnrollment(ctx, 100, 1)
			require.NoError(t, err)
			_, err = svc.CancelEnrollment(ctx, first.ID, Requester{StudentID: 100})
			require.NoError(t, err)

			second, avail, err := svc.RequestEnrollment(ctx, tt.second, 1)
			require.NoError(t, err)
			assert.NotEqual(t, first.ID, second.ID)
			assert.Equal(t, tt.second, second.StudentID)
			assert.Equal(t, 0, avail.Remaining)
			assert.Equal(t, 1, store.activeCount(1))
		})
	}
}

func TestRequestEnrollment_FullCancelRefill(t *testing.T) {
	const capacity = 30
	ctx := context.Background()

	store := newMemStore()
	store.addOffering(openOffering(1, capacity, model.OfferingCommission))
	students := make([]int, capacity+1)
	for i := range students {
		students[i] = 200 + i
	}
	store.addStudents(students...)
	svc, _ := newAdmission(t, store)

	enrollments := make([]*model.Enrollment, capacity)
	for i := 0; i < capacity; i++ {
		e, _, err := svc.RequestEnrollment(ctx, students[i], 1)
		require.NoError(t, err)
		enrollments[i] = e
	}
	require.Equal(t, capacity, store.offering(1).Occupied)

	late := students[capacity]
	_, _, err := svc.RequestEnrollment(ctx, late, 1)
	require.ErrorIs(t, err, ErrSeatsExhausted)
	assert.Equal(t, capacity, store.offering(1).Occupied)

	_, err = svc.CancelEnrollment(ctx, enrollments[4].ID, Requester{StudentID: students[4]})
	require.NoError(t, err)
	assert.Equal(t, capacity-1, store.offering(1).Occupied)

	e, avail, err := svc.RequestEnrollment(ctx, late, 1)
	require.NoError(t, err)
	assert.Equal(t, late, e.StudentID)
	assert.Equal(t, capacity, avail.Occupied)
	assert.Equal(t, 0, avail.Remaining)
	assert.Equal(t, capacity, store.offering(1).Occupied)
	assert.Equal(t, capacity, store.activeCount(1))
}

func TestRequestEnrollment_RollsBackOnFailure(t *testing.T) {
	store := newMemStore()
	store.addOffering(openOffering(1, 3, model.OfferingCommission))
	store.addStudents(100)
	store.failAddOccupied = true
	svc, notifier := newAdmission(t, store)

	_, _, err := svc.RequestEnrollment(context.Background(), 100, 1)
	require.Error(t, err)

	assert.Equal(t, 0, store.activeCount(1), "enrollment row must be rolled back")
	assert.Equal(t, 0, store.offering(1).Occupied)
	assert.Empty(t, notifier.calls())
}

func TestCancelEnrollment(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memStore, *AdmissionService, int) {
		store := newMemStore()
		store.addOffering(openOffering(1, 2, model.OfferingCommission))
		store.addStudents(100, 101)
		svc, _ := newAdmission(t, store)
		e, _, err := svc.RequestEnrollment(ctx, 100, 1)
		require.NoError(t, err)
		return store, svc, e.ID
	}

	t.Run("owner cancels and frees the seat", func(t *testing.T) {
		store, svc, id := setup(t)
		e, err := svc.CancelEnrollment(ctx, id, Requester{StudentID: 100})
		require.NoError(t, err)

		assert.Equal(t, model.EnrollmentCancelled, e.Status)
		require.NotNil(t, e.CancelledAt)
		assert.Equal(t, testNow, *e.CancelledAt)
		assert.Equal(t, 0, store.offering(1).Occupied)
		assert.Equal(t, model.EnrollmentCancelled, store.enrollment(id).Status)
	})

	t.Run("other student is forbidden", func(t *testing.T) {
		store, svc, id := setup(t)
		_, err := svc.CancelEnrollment(ctx, id, Requester{StudentID: 101})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, 1, store.offering(1).Occupied)
	})

	t.Run("override cancels any enrollment", func(t *testing.T) {
		store, svc, id := setup(t)
		_, err := svc.CancelEnrollment(ctx, id, Requester{Override: true})
		require.NoError(t, err)
		assert.Equal(t, 0, store.offering(1).Occupied)
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.CancelEnrollment(ctx, 404, Requester{StudentID: 100})
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})

	t.Run("reviewed enrollment is not cancelable", func(t *testing.T) {
		store, svc, id := setup(t)
		_, err := svc.ReviewEnrollment(ctx, id, model.EnrollmentConfirmed, Reviewer{StaffID: professorID})
		require.NoError(t, err)

		_, err = svc.CancelEnrollment(ctx, id, Requester{StudentID: 100})
		assert.ErrorIs(t, err, ErrNotCancelable)
		assert.Equal(t, 1, store.offering(1).Occupied)
	})

	t.Run("approved exam enrollment is not cancelable", func(t *testing.T) {
		store := newMemStore()
		store.addOffering(openOffering(1, 2, model.OfferingFinalExam))
		store.addStudents(100)
		svc, _ := newAdmission(t, store)

		e, _, err := svc.RequestEnrollment(ctx, 100, 1)
		require.NoError(t, err)
		_, err = svc.ReviewEnrollment(ctx, e.ID, model.EnrollmentApproved, Reviewer{StaffID: professorID})
		require.NoError(t, err)

		_, err = svc.CancelEnrollment(ctx, e.ID, Requester{StudentID: 100})
		assert.ErrorIs(t, err, ErrNotCancelable)
		assert.Equal(t, model.EnrollmentApproved, store.enrollment(e.ID).Status)
		assert.Equal(t, 1, store.offering(1).Occupied)
	})

	t.Run("second cancel is not cancelable", func(t *testing.T) {
		store, svc, id := setup(t)
		_, err := svc.CancelEnrollment(ctx, id, Requester{StudentID: 100})
		require.NoError(t, err)
		_, err = svc.CancelEnrollment(ctx, id, Requester{StudentID: 100})
		assert.ErrorIs(t, err, ErrNotCancelable)
		assert.Equal(t, 0, store.offering(1).Occupied)
	})

	t.Run("closed offering", func(t *testing.T) {
		store, svc, id := setup(t)
		svc.now = func() time.Time { return testNow.Add(96 * time.Hour) }

		_, err := svc.CancelEnrollment(ctx, id, Requester{StudentID: 100})
		assert.ErrorIs(t, err, ErrOfferingClosed)
		assert.Equal(t, 1, store.offering(1).Occupied)
	})
}

func TestReviewEnrollment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		kind     model.OfferingKind
		decision model.EnrollmentStatus
		reviewer Reviewer
		want     error
	}{
		{"exam approved", model.OfferingFinalExam, model.EnrollmentApproved, Reviewer{StaffID: professorID}, nil},
		{"exam absent", model.OfferingFinalExam, model.EnrollmentAbsent, Reviewer{StaffID: professorID}, nil},
		{"exam free", model.OfferingFinalExam, model.EnrollmentFree, Reviewer{StaffID: professorID}, nil},
		{"exam rejected", model.OfferingFinalExam, model.EnrollmentRejected, Reviewer{StaffID: professorID}, nil},
		{"commission confirmed", model.OfferingCommission, model.EnrollmentConfirmed, Reviewer{StaffID: professorID}, nil},
		{"commission rejected", model.OfferingCommission, model.EnrollmentRejected, Reviewer{StaffID: professorID}, nil},
		{"review all", model.OfferingCommission, model.EnrollmentConfirmed, Reviewer{StaffID: otherStaff, ReviewAll: true}, nil},
		{"not the professor", model.OfferingFinalExam, model.EnrollmentApproved, Reviewer{StaffID: otherStaff}, ErrForbidden},
		{"confirm on exam", model.OfferingFinalExam, model.EnrollmentConfirmed, Reviewer{StaffID: professorID}, ErrInvalidDecision},
		{"approve on commission", model.OfferingCommission, model.EnrollmentApproved, Reviewer{StaffID: professorID}, ErrInvalidDecision},
		{"cancel via review", model.OfferingCommission, model.EnrollmentCancelled, Reviewer{StaffID: professorID}, ErrInvalidDecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.addOffering(openOffering(1, 3, tt.kind))
			store.addStudents(100)
			svc, _ := newAdmission(t, store)

			created, _, err := svc.RequestEnrollment(ctx, 100, 1)
			require.NoError(t, err)

			e, err := svc.ReviewEnrollment(ctx, created.ID, tt.decision, tt.reviewer)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				assert.Equal(t, model.EnrollmentPending, store.enrollment(created.ID).Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.decision, e.Status)
			require.NotNil(t, e.ReviewedBy)
			assert.Equal(t, tt.reviewer.StaffID, *e.ReviewedBy)
			assert.Equal(t, 1, store.offering(1).Occupied, "review never moves the seat counter")
		})
	}
}

func TestReviewEnrollment_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addOffering(openOffering(1, 3, model.OfferingFinalExam))
	store.addStudents(100)
	svc, _ := newAdmission(t, store)

	created, _, err := svc.RequestEnrollment(ctx, 100, 1)
	require.NoError(t, err)
	_, err = svc.ReviewEnrollment(ctx, created.ID, model.EnrollmentRejected, Reviewer{StaffID: professorID})
	require.NoError(t, err)

	_, err = svc.ReviewEnrollment(ctx, created.ID, model.EnrollmentApproved, Reviewer{StaffID: professorID})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.EnrollmentRejected, store.enrollment(created.ID).Status)

	// A rejected enrollment is still active: the student cannot re-enroll.
	_, _, err = svc.RequestEnrollment(ctx, 100, 1)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	_, err = svc.ReviewEnrollment(ctx, 404, model.EnrollmentApproved, Reviewer{StaffID: professorID})
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestAdmission_RetriesTransientConflicts(t *testing.T) {
	store := newMemStore()
	store.addOffering(openOffering(1, 3, model.OfferingCommission))
	store.addStudents(100)
	store.transientFailures = 2
	svc, _ := newAdmission(t, store)

	_, _, err := svc.RequestEnrollment(context.Background(), 100, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, store.transactions())
	assert.Equal(t, 1, store.offering(1).Occupied)
}

func TestAdmission_BusyAfterRetries(t *testing.T) {
	store := newMemStore()
	store.addOffering(openOffering(1, 3, model.OfferingCommission))
	store.addStudents(100)
	store.transientFailures = 100
	svc, notifier := newAdmission(t, store)

	_, _, err := svc.RequestEnrollment(context.Background(), 100, 1)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 4, store.transactions(), "one attempt plus three retries")
	assert.Equal(t, 0, store.offering(1).Occupied)
	assert.Empty(t, notifier.calls())
}

func TestAdmission_RetryStopsOnContextCancel(t *testing.T) {
	store := newMemStore()
	store.addOffering(openOffering(1, 3, model.OfferingCommission))
	store.addStudents(100)
	store.transientFailures = 100
	svc, _ := newAdmission(t, store)
	svc.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.RequestEnrollment(ctx, 100, 1)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, store.transactions())
}

func TestGetAvailability(t *testing.T) {
	store := newMemStore()
	o := openOffering(1, 30, model.OfferingFinalExam)
	o.Occupied = 12
	store.addOffering(o)
	svc, _ := newAdmission(t, store)

	a, err := svc.GetAvailability(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 18, a.Remaining)

	_, err = svc.GetAvailability(context.Background(), 2)
	assert.ErrorIs(t, err, ErrOfferingNotFound)
}

// ─── Concurrency ───────────────────────────────────────────────────────

func TestRequestEnrollment_ConcurrentNeverOverbooks(t *testing.T) {
	const (
		capacity = 10
		students = 60
	)
	store := newMemStore()
	store.addOffering(openOffering(1, capacity, model.OfferingFinalExam))
	for id := 1; id <= students; id++ {
		store.addStudents(id)
	}
	svc, _ := newAdmission(t, store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		admitted  int
		exhausted int
	)
	for id := 1; id <= students; id++ {
		wg.Add(1)
		go func(studentID int) {
			defer wg.Done()
			_, _, err := svc.RequestEnrollment(context.Background(), studentID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, ErrSeatsExhausted):
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, capacity, admitted)
	assert.Equal(t, students-capacity, exhausted)
	assert.Equal(t, capacity, store.offering(1).Occupied)
	assert.Equal(t, capacity, store.activeCount(1))
}

func TestRequestEnrollment_ConcurrentSameStudent(t *testing.T) {
	store := newMemStore()
	store.addOffering(openOffering(1, 50, model.OfferingCommission))
	store.addStudents(100)
	svc, _ := newAdmission(t, store)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		dup      int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.RequestEnrollment(context.Background(), 100, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				admitted++
			} else if errors.Is(err, ErrAlreadyEnrolled) {
				dup++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, 19, dup)
	assert.Equal(t, 1, store.offering(1).Occupied)
}

func TestAdmission_ConcurrentRequestAndCancelKeepCounter(t *testing.T) {
	const capacity = 5
	store := newMemStore()
	store.addOffering(openOffering(1, capacity, model.OfferingCommission))
	for id := 1; id <= 40; id++ {
		store.addStudents(id)
	}
	svc, _ := newAdmission(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for id := 1; id <= 40; id++ {
		wg.Add(1)
		go func(studentID int) {
			defer wg.Done()
			for round := 0; round < 3; round++ {
				e, _, err := svc.RequestEnrollment(ctx, studentID, 1)
				if err != nil {
					continue
				}
				if round%2 == 0 {
					_, _ = svc.CancelEnrollment(ctx, e.ID, Requester{StudentID: studentID})
				}
			}
		}(id)
	}
	wg.Wait()

	o := store.offering(1)
	assert.LessOrEqual(t, o.Occupied, capacity)
	assert.Equal(t, store.activeCount(1), o.Occupied)
}
