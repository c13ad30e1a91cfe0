package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	counts map[int]model.Availability
	err    error
	asked  [][]int
}

func (f *fakeSource) ListAvailabilities(_ context.Context, ids []int) ([]model.Availability, error) {
	f.asked = append(f.asked, ids)
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Availability{}
	for _, id := range ids {
		if a, ok := f.counts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeProjector struct {
	published  []model.Availability
	requeued   []int
	publishErr error
}

func (f *fakeProjector) Publish(_ context.Context, avails []model.Availability) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, avails...)
	return nil
}

func (f *fakeProjector) Enqueue(_ context.Context, ids ...int) error {
	f.requeued = append(f.requeued, ids...)
	return nil
}

func TestRefreshBatch_Dedupe(t *testing.T) {
	b := newRefreshBatch()
	for _, id := range []int{7, 3, 7, 7, 12, 3} {
		b.add(id)
	}

	assert.Equal(t, 3, b.len())
	assert.Equal(t, []int{3, 7, 12}, b.drain())
	assert.Zero(t, b.len())
	assert.Empty(t, b.drain())
}

func TestAvailabilityWorker_FlushPublishes(t *testing.T) {
	src := &fakeSource{counts: map[int]model.Availability{
		1: {OfferingID: 1, Capacity: 10, Occupied: 4, Remaining: 6},
		2: {OfferingID: 2, Capacity: 5, Occupied: 5, Remaining: 0},
	}}
	proj := &fakeProjector{}
	w := NewAvailabilityWorker(nil, src, proj, zerolog.Nop())

	w.flushSafe(context.Background(), []int{1, 2})

	require.Len(t, src.asked, 1)
	assert.Equal(t, []int{1, 2}, src.asked[0])
	assert.Len(t, proj.published, 2)
	assert.Empty(t, proj.requeued)
}

func TestAvailabilityWorker_FlushRequeuesOnFailure(t *testing.T) {
	t.Run("source error", func(t *testing.T) {
		proj := &fakeProjector{}
		w := NewAvailabilityWorker(nil, &fakeSource{err: errors.New("db down")}, proj, zerolog.Nop())

		w.flushSafe(context.Background(), []int{4, 9})
		assert.Equal(t, []int{4, 9}, proj.requeued)
		assert.Empty(t, proj.published)
	})

	t.Run("publish error", func(t *testing.T) {
		proj := &fakeProjector{publishErr: errors.New("redis down")}
		src := &fakeSource{counts: map[int]model.Availability{4: {OfferingID: 4}}}
		w := NewAvailabilityWorker(nil, src, proj, zerolog.Nop())

		w.flushSafe(context.Background(), []int{4})
		assert.Equal(t, []int{4}, proj.requeued)
	})
}

func TestAvailabilityWorker_FlushEmpty(t *testing.T) {
	src := &fakeSource{}
	w := NewAvailabilityWorker(nil, src, &fakeProjector{}, zerolog.Nop())

	w.flushSafe(context.Background(), nil)
	assert.Empty(t, src.asked)
}
