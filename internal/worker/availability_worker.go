package worker

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	RefreshBatchSize    = 100
	RefreshBatchTimeout = 500 * time.Millisecond
	RefreshPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
	refreshErrorBackoff = 3 * time.Second
)

// AvailabilitySource reads committed seat counts for a set of offerings.
type AvailabilitySource interface {
	ListAvailabilities(ctx context.Context, offeringIDs []int) ([]model.Availability, error)
}

// AvailabilityProjector writes the seat projection and requeues refreshes.
type AvailabilityProjector interface {
	Publish(ctx context.Context, avails []model.Availability) error
	Enqueue(ctx context.Context, offeringIDs ...int) error
}

// AvailabilityWorker consumes the refresh queue and republishes the seat
// counts of every offering named in it.
type AvailabilityWorker struct {
	rdb       *redis.Client
	source    AvailabilitySource
	projector AvailabilityProjector
	log       zerolog.Logger
}

// NewAvailabilityWorker creates a new AvailabilityWorker.
func NewAvailabilityWorker(rdb *redis.Client, source AvailabilitySource, projector AvailabilityProjector, log zerolog.Logger) *AvailabilityWorker {
	return &AvailabilityWorker{
		rdb:       rdb,
		source:    source,
		projector: projector,
		log:       log.With().Str("component", "availability_worker").Logger(),
	}
}

// refreshBatch collects distinct offering IDs. A burst of enrollments on one
// offering collapses into a single refresh.
type refreshBatch struct {
	ids map[int]struct{}
}

func newRefreshBatch() *refreshBatch {
	return &refreshBatch{ids: make(map[int]struct{}, RefreshBatchSize)}
}

func (b *refreshBatch) add(id int) { b.ids[id] = struct{}{} }

func (b *refreshBatch) len() int { return len(b.ids) }

// drain returns the collected IDs in ascending order and empties the batch.
func (b *refreshBatch) drain() []int {
	out := make([]int, 0, len(b.ids))
	for id := range b.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	clear(b.ids)
	return out
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs the worker loop until ctx is cancelled. Call in a goroutine.
func (w *AvailabilityWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AvailabilityWorker started")

	batch := newRefreshBatch()
	lastFlush := time.Now()

	for {
		if batch.len() > 0 &&
			(batch.len() >= RefreshBatchSize || time.Since(lastFlush) >= RefreshBatchTimeout) {
			w.flushSafe(ctx, batch.drain())
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch.drain())
			return
		default:
		}

		item, err := w.rdb.BLPop(ctx, RefreshPollTimeout, config.WorkerKey.AvailabilityRefreshQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping")
			select {
			case <-ctx.Done():
			case <-time.After(refreshErrorBackoff):
			}
			continue
		}

		if len(item) < 2 {
			continue
		}

		id, err := service.DecodeRefresh(item[1])
		if err != nil {
			w.log.Error().Err(err).Str("payload", item[1]).Msg("Invalid refresh payload")
			continue
		}
		batch.add(id)
	}
}

// ----------------------------------------------------------------
// Flush
// ----------------------------------------------------------------

// flushSafe republishes the batch. On failure the IDs go back on the queue
// so the next pass retries them.
func (w *AvailabilityWorker) flushSafe(ctx context.Context, ids []int) {
	if len(ids) == 0 {
		return
	}

	if err := w.flush(ctx, ids); err != nil {
		w.log.Warn().Err(err).Int("offerings", len(ids)).Msg("Availability refresh failed, requeueing")
		if err := w.projector.Enqueue(context.WithoutCancel(ctx), ids...); err != nil {
			w.log.Error().Err(err).Ints("offering_ids", ids).Msg("Requeue failed")
		}
		return
	}

	w.log.Debug().Int("offerings", len(ids)).Msg("Availability refreshed")
}

func (w *AvailabilityWorker) flush(ctx context.Context, ids []int) error {
	avails, err := w.source.ListAvailabilities(ctx, ids)
	if err != nil {
		return err
	}
	return w.projector.Publish(ctx, avails)
}
