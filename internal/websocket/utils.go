package websocket

import (
	"sort"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}

// WatchSet tracks the offerings a connection follows.
type WatchSet struct {
	ids   map[int]struct{}
	limit int
}

// NewWatchSet creates an empty set holding at most limit offerings.
func NewWatchSet(limit int) *WatchSet {
	return &WatchSet{ids: make(map[int]struct{}), limit: limit}
}

// Add inserts the IDs and returns the ones that were new. It returns false
// without changing the set when the result would exceed the limit.
func (s *WatchSet) Add(ids []int) ([]int, bool) {
	added := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := s.ids[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		added = append(added, id)
	}
	if len(s.ids)+len(added) > s.limit {
		return nil, false
	}
	for _, id := range added {
		s.ids[id] = struct{}{}
	}
	return added, true
}

// Remove drops the IDs and returns the ones that were present.
func (s *WatchSet) Remove(ids []int) []int {
	removed := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			delete(s.ids, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// IDs returns the watched offerings in ascending order.
func (s *WatchSet) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
