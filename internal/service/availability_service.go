package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AvailabilitySource reads authoritative seat counts. The admission store
// satisfies it.
type AvailabilitySource interface {
	Availability(ctx context.Context, offeringID int) (*model.Availability, error)
}

// AvailabilityEvent is the message published on an offering's events channel.
type AvailabilityEvent struct {
	Type string `json:"type"`
	model.Availability
}

const availabilityEventType = "availability"

// AvailabilityService keeps the Redis projection of seat counts. The
// projection is for display only: admission decisions never read it.
type AvailabilityService struct {
	rdb    *redis.Client
	source AvailabilitySource
	ttl    time.Duration
	log    zerolog.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(rdb *redis.Client, source AvailabilitySource, cfg *config.Config, log zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		rdb:    rdb,
		source: source,
		ttl:    cfg.AvailabilityCacheTTL,
		log:    log.With().Str("component", "availability_service").Logger(),
	}
}

type refreshPayload struct {
	OfferingID int `json:"offering_id"`
}

// OfferingChanged queues the offering for a projection refresh. Failures are
// logged; the cache expires on its own.
func (s *AvailabilityService) OfferingChanged(ctx context.Context, offeringID int) {
	if err := s.Enqueue(context.WithoutCancel(ctx), offeringID); err != nil {
		s.log.Warn().Err(err).Int("offering_id", offeringID).Msg("Failed to queue availability refresh")
	}
}

// Enqueue pushes offering IDs onto the refresh queue.
func (s *AvailabilityService) Enqueue(ctx context.Context, offeringIDs ...int) error {
	if len(offeringIDs) == 0 {
		return nil
	}
	values := make([]interface{}, len(offeringIDs))
	for i, id := range offeringIDs {
		raw, err := json.Marshal(refreshPayload{OfferingID: id})
		if err != nil {
			return err
		}
		values[i] = raw
	}
	return s.rdb.RPush(ctx, config.WorkerKey.AvailabilityRefreshQueue, values...).Err()
}

// DecodeRefresh parses a refresh queue item.
func DecodeRefresh(raw string) (int, error) {
	var p refreshPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return 0, err
	}
	if p.OfferingID <= 0 {
		return 0, fmt.Errorf("invalid offering id %d", p.OfferingID)
	}
	return p.OfferingID, nil
}

// Get returns the cached availability, reading through to the source on a
// miss and filling the cache if it is still empty.
func (s *AvailabilityService) Get(ctx context.Context, offeringID int) (*model.Availability, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.OfferingAvailabilityKey(offeringID)).Bytes()
	if err == nil {
		var a model.Availability
		if jsonErr := json.Unmarshal(raw, &a); jsonErr == nil {
			return &a, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int("offering_id", offeringID).Msg("Availability cache read failed")
	}

	a, err := s.source.Availability(ctx, offeringID)
	if err != nil {
		return nil, offeringErr(err)
	}
	if err := s.fill(ctx, s.rdb, *a); err != nil {
		s.log.Warn().Err(err).Int("offering_id", offeringID).Msg("Availability cache write failed")
	}
	return a, nil
}

// Publish writes fresh counts to the cache and announces them to subscribers.
func (s *AvailabilityService) Publish(ctx context.Context, avails []model.Availability) error {
	if len(avails) == 0 {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for _, a := range avails {
		if err := s.store(ctx, pipe, a); err != nil {
			return err
		}
		event, err := json.Marshal(AvailabilityEvent{Type: availabilityEventType, Availability: a})
		if err != nil {
			return err
		}
		pipe.Publish(ctx, config.CacheKey.OfferingEventsChannel(a.OfferingID), event)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Subscribe attaches to the events channels of the given offerings. More
// channels can be added later on the returned PubSub. Callers close it.
func (s *AvailabilityService) Subscribe(ctx context.Context, offeringIDs ...int) *redis.PubSub {
	channels := make([]string, len(offeringIDs))
	for i, id := range offeringIDs {
		channels[i] = config.CacheKey.OfferingEventsChannel(id)
	}
	return s.rdb.Subscribe(ctx, channels...)
}

// DecodeEvent parses a message received from an events channel.
func DecodeEvent(payload string) (*AvailabilityEvent, error) {
	var ev AvailabilityEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// fill writes a read-through value only when the key is absent, so it never
// replaces counts the worker published after the read.
func (s *AvailabilityService) fill(ctx context.Context, c redis.Cmdable, a model.Availability) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.SetNX(ctx, config.CacheKey.OfferingAvailabilityKey(a.OfferingID), raw, s.ttl).Err()
}

func (s *AvailabilityService) store(ctx context.Context, c redis.Cmdable, a model.Availability) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.Set(ctx, config.CacheKey.OfferingAvailabilityKey(a.OfferingID), raw, s.ttl).Err()
}
