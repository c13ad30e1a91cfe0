package websocket

import "github.com/autogestion/autogestion-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionWatch   Action = "watch"
	ActionUnwatch Action = "unwatch"
	ActionPing    Action = "ping"
)

// MaxWatched caps how many offerings one connection may follow.
const MaxWatched = 50

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// WatchRequest starts or stops following the seat counts of offerings.
type WatchRequest struct {
	Action      Action `json:"action"`
	OfferingIDs []int  `json:"offering_ids"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError        Event = "error"
	EventWatching     Event = "watching"
	EventAvailability Event = "availability"
	EventPong         Event = "pong"
)

// WatchingResponse confirms the current watch set and carries a snapshot of
// every offering in it.
type WatchingResponse struct {
	Event       Event                `json:"event"`
	OfferingIDs []int                `json:"offering_ids"`
	Snapshot    []model.Availability `json:"snapshot"`
}

// AvailabilityResponse pushes new seat counts for one offering.
type AvailabilityResponse struct {
	Event Event `json:"event"`
	model.Availability
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
