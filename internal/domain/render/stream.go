package render

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClientNotFound = errors.New("stream client not found")
	ErrChannelFull    = errors.New("stream client channel full")
)

// Event is one rendered update pushed to stream clients. MessageRef ties
// successive summary renders of the same poll together.
type Event struct {
	ID         string          `json:"id"`
	Kind       string          `json:"event"`
	MessageRef string          `json:"messageRef,omitempty"`
	Data       json.RawMessage `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewEvent creates a stream event.
func NewEvent(kind, messageRef string, data json.RawMessage) *Event {
	return &Event{
		ID:         uuid.New().String(),
		Kind:       kind,
		MessageRef: messageRef,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

// Client is one active stream subscription, scoped to a poll and optionally
// to a user (for private ballot events).
type Client struct {
	ClientID    string
	PollID      string
	UserID      *string
	ConnectedAt time.Time
	Events      chan *Event
}

// NewClient creates a stream client with a buffered event channel.
func NewClient(clientID, pollID string, userID *string) *Client {
	return &Client{
		ClientID:    clientID,
		PollID:      pollID,
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
		Events:      make(chan *Event, 100),
	}
}

// Close closes the client's event channel.
func (c *Client) Close() {
	close(c.Events)
}
