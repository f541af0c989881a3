package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quadvote/quadvote/internal/domain/poll"
	"github.com/quadvote/quadvote/internal/domain/render"
)

const (
	eventSummary = "summary"
	eventBallot  = "ballot"
)

// Renderer implements render.Renderer over the SSE hub: summaries broadcast
// to every watcher of a poll, ballots target one user's clients. The message
// ref is the id clients use to replace an earlier summary in place.
type Renderer struct {
	hub    *Hub
	logger zerolog.Logger
}

func NewRenderer(hub *Hub, logger zerolog.Logger) *Renderer {
	return &Renderer{
		hub:    hub,
		logger: logger.With().Str("component", "sse_renderer").Logger(),
	}
}

func (r *Renderer) RenderSummary(ctx context.Context, s poll.Summary) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	ref := uuid.New().String()
	r.hub.BroadcastToPoll(s.PollID, render.NewEvent(eventSummary, ref, data))
	return ref, nil
}

func (r *Renderer) UpdateSummary(ctx context.Context, messageRef string, s poll.Summary) error {
	if messageRef == "" {
		return fmt.Errorf("missing message ref")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.hub.BroadcastToPoll(s.PollID, render.NewEvent(eventSummary, messageRef, data))
	return nil
}

func (r *Renderer) RenderPrivateBallot(ctx context.Context, userID string, b poll.Ballot) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	err = r.hub.SendToUser(b.PollID, userID, render.NewEvent(eventBallot, "", data))
	if errors.Is(err, render.ErrClientNotFound) {
		// No open stream is normal; the ballot also rides the HTTP response.
		r.logger.Debug().Str("poll_id", b.PollID).Str("user_id", userID).Msg("no stream client for ballot")
		return nil
	}
	return err
}
