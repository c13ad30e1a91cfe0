package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
)

// memStore is an in-memory AdmissionStore. Transactions run one at a time
// against a private copy of the state that replaces the shared state only
// when fn returns nil, which gives the same all-or-nothing behaviour as a
// PostgreSQL transaction holding the offering lock.
type memStore struct {
	mu          sync.Mutex
	offerings   map[int]model.Offering
	enrollments map[int]model.Enrollment
	students    map[int]bool
	nextID      int

	// transientFailures makes the next N transactions fail before running.
	transientFailures int
	// failAddOccupied makes AddOccupied fail after the enrollment row was written.
	failAddOccupied bool
	txCount         int
}

func newMemStore() *memStore {
	return &memStore{
		offerings:   map[int]model.Offering{},
		enrollments: map[int]model.Enrollment{},
		students:    map[int]bool{},
		nextID:      1,
	}
}

func (m *memStore) addOffering(o model.Offering) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offerings[o.ID] = o
}

func (m *memStore) addStudents(ids ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.students[id] = true
	}
}

func (m *memStore) offering(id int) model.Offering {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offerings[id]
}

func (m *memStore) enrollment(id int) model.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enrollments[id]
}

func (m *memStore) activeCount(offeringID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.enrollments {
		if e.OfferingID == offeringID && e.Status.IsActive() {
			n++
		}
	}
	return n
}

func (m *memStore) transactions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txCount
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.AdmissionTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txCount++
	if m.transientFailures > 0 {
		m.transientFailures--
		return fmt.Errorf("%w: canceling statement due to lock timeout", repository.ErrTransient)
	}

	tx := &memTx{
		store:       m,
		offerings:   make(map[int]model.Offering, len(m.offerings)),
		enrollments: make(map[int]model.Enrollment, len(m.enrollments)),
		nextID:      m.nextID,
	}
	for k, v := range m.offerings {
		tx.offerings[k] = v
	}
	for k, v := range m.enrollments {
		tx.enrollments[k] = v
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	m.offerings = tx.offerings
	m.enrollments = tx.enrollments
	m.nextID = tx.nextID
	return nil
}

func (m *memStore) Availability(_ context.Context, offeringID int) (*model.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offerings[offeringID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a := o.Availability()
	return &a, nil
}

type memTx struct {
	store       *memStore
	offerings   map[int]model.Offering
	enrollments map[int]model.Enrollment
	nextID      int
}

func (t *memTx) LockOffering(_ context.Context, offeringID int) (*model.Offering, error) {
	o, ok := t.offerings[offeringID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (t *memTx) GetEnrollment(_ context.Context, enrollmentID int) (*model.Enrollment, error) {
	e, ok := t.enrollments[enrollmentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (t *memTx) LockEnrollment(ctx context.Context, enrollmentID int) (*model.Enrollment, error) {
	return t.GetEnrollment(ctx, enrollmentID)
}

func (t *memTx) ActiveEnrollment(_ context.Context, offeringID, studentID int) (*model.Enrollment, error) {
	for _, e := range t.enrollments {
		if e.OfferingID == offeringID && e.StudentID == studentID && e.Status.IsActive() {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *memTx) InsertEnrollment(ctx context.Context, e *model.Enrollment) error {
	if !t.store.students[e.StudentID] {
		return fmt.Errorf("%w: enrollments_student_id_fkey", repository.ErrForeignKey)
	}
	if _, err := t.ActiveEnrollment(ctx, e.OfferingID, e.StudentID); err == nil {
		return fmt.Errorf("%w: uq_enrollments_active", repository.ErrDuplicate)
	}
	e.ID = t.nextID
	t.nextID++
	e.UpdatedAt = e.CreatedAt
	t.enrollments[e.ID] = *e
	return nil
}

func (t *memTx) UpdateEnrollment(_ context.Context, e *model.Enrollment) error {
	if _, ok := t.enrollments[e.ID]; !ok {
		return repository.ErrNotFound
	}
	t.enrollments[e.ID] = *e
	return nil
}

func (t *memTx) AddOccupied(_ context.Context, offeringID, delta int) (int, error) {
	if t.store.failAddOccupied {
		return 0, errors.New("connection reset by peer")
	}
	o, ok := t.offerings[offeringID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	o.Occupied += delta
	if o.Occupied < 0 || o.Occupied > o.Capacity {
		return 0, fmt.Errorf("%w: offerings_occupied_within_capacity", repository.ErrCheckViolation)
	}
	t.offerings[offeringID] = o
	return o.Occupied, nil
}

// recordingNotifier collects the offering IDs it was told about.
type recordingNotifier struct {
	mu  sync.Mutex
	ids []int
}

func (n *recordingNotifier) OfferingChanged(_ context.Context, offeringID int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, offeringID)
}

func (n *recordingNotifier) calls() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.ids...)
}
