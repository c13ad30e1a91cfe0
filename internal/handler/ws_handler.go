package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/middleware"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/service"
	ws "github.com/autogestion/autogestion-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live seat counts to students.
type WSHandler struct {
	availabilityService *service.AvailabilityService
	log                 zerolog.Logger
	upgrader            websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(availabilityService *service.AvailabilityService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		availabilityService: availabilityService,
		log:                 log.With().Str("component", "ws_handler").Logger(),
		upgrader:            buildUpgrader(allowedOrigins),
	}
}

// wsConn serialises writes; gorilla connections allow one writer at a time.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) send(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ws.WriteTyped(w.conn, v)
}

func (w *wsConn) fail(msg string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ws.WriteError(w.conn, msg)
}

// AvailabilityStream godoc
// WS /ws/v1/student/offerings/:id/availability?token=...
// Watches the offering in the path; clients may watch more with
// {"action":"watch","offering_ids":[...]}.
func (h *WSHandler) AvailabilityStream(c *gin.Context) {
	claims := middleware.GetClaims(c)

	offeringID, ok := paramID(c, "id")
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("student_id", claims.UserID).Logger()
	wsLog.Info().Int("offering_id", offeringID).Msg("Student connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &wsConn{conn: conn}
	watched := ws.NewWatchSet(ws.MaxWatched)

	// Subscribing with no channels only opens the connection; channels are
	// added as offerings are watched.
	pubsub := h.availabilityService.Subscribe(ctx)
	defer pubsub.Close()

	go h.forwardEvents(ctx, pubsub, out, wsLog)

	if err := h.watch(ctx, pubsub, watched, out, []int{offeringID}); err != nil {
		wsLog.Warn().Err(err).Msg("Initial watch failed")
		return
	}

	for {
		var raw json.RawMessage
		if err := ws.ReadJSON(conn, &raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			out.fail("invalid message")
			continue
		}

		switch envelope.Action {
		case ws.ActionPing:
			out.send(ws.PongResponse{Event: ws.EventPong})

		case ws.ActionWatch, ws.ActionUnwatch:
			var req ws.WatchRequest
			if err := json.Unmarshal(raw, &req); err != nil || len(req.OfferingIDs) == 0 {
				out.fail("offering_ids is required")
				continue
			}
			if envelope.Action == ws.ActionWatch {
				err = h.watch(ctx, pubsub, watched, out, req.OfferingIDs)
			} else {
				err = h.unwatch(ctx, pubsub, watched, out, req.OfferingIDs)
			}
			if err != nil {
				wsLog.Warn().Err(err).Str("action", string(envelope.Action)).Msg("Watch update failed")
				out.fail("could not update watched offerings")
			}

		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			out.fail("unknown action: " + string(envelope.Action))
		}
	}
}

// watch subscribes to new offerings and replies with a snapshot of them.
// Unknown offerings are skipped in the snapshot.
func (h *WSHandler) watch(ctx context.Context, pubsub *redis.PubSub, watched *ws.WatchSet, out *wsConn, ids []int) error {
	added, ok := watched.Add(ids)
	if !ok {
		return out.fail("too many watched offerings")
	}

	if len(added) > 0 {
		channels := make([]string, len(added))
		for i, id := range added {
			channels[i] = config.CacheKey.OfferingEventsChannel(id)
		}
		if err := pubsub.Subscribe(ctx, channels...); err != nil {
			watched.Remove(added)
			return err
		}
	}

	snapshot := make([]model.Availability, 0, len(added))
	for _, id := range added {
		a, err := h.availabilityService.Get(ctx, id)
		if err != nil {
			continue
		}
		snapshot = append(snapshot, *a)
	}

	return out.send(ws.WatchingResponse{
		Event:       ws.EventWatching,
		OfferingIDs: watched.IDs(),
		Snapshot:    snapshot,
	})
}

func (h *WSHandler) unwatch(ctx context.Context, pubsub *redis.PubSub, watched *ws.WatchSet, out *wsConn, ids []int) error {
	removed := watched.Remove(ids)
	if len(removed) > 0 {
		channels := make([]string, len(removed))
		for i, id := range removed {
			channels[i] = config.CacheKey.OfferingEventsChannel(id)
		}
		if err := pubsub.Unsubscribe(ctx, channels...); err != nil {
			return err
		}
	}

	return out.send(ws.WatchingResponse{
		Event:       ws.EventWatching,
		OfferingIDs: watched.IDs(),
		Snapshot:    []model.Availability{},
	})
}

// forwardEvents pushes published availability events to the client until
// ctx is cancelled or the subscription closes.
func (h *WSHandler) forwardEvents(ctx context.Context, pubsub *redis.PubSub, out *wsConn, log zerolog.Logger) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev, err := service.DecodeEvent(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("Invalid availability event")
				continue
			}
			if err := out.send(ws.AvailabilityResponse{Event: ws.EventAvailability, Availability: ev.Availability}); err != nil {
				log.Debug().Err(err).Msg("Event write failed")
				return
			}
		}
	}
}
