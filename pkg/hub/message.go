// Package hub fans scan and voice events out to websocket subscribers.
package hub

import (
	"encoding/json"
	"time"
)

// Event types.
const (
	EventScan       = "scan"
	EventCommand    = "command"
	EventTranscript = "transcript"
)

// Event is one broadcast notification.
type Event struct {
	Type string    `json:"type"`
	ID   string    `json:"id,omitempty"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ, id string, data any) Event {
	return Event{Type: typ, ID: id, Time: time.Now().UTC(), Data: data}
}

// Encode returns the event as JSON.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
