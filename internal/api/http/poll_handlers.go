package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	appVoting "github.com/quadvote/quadvote/internal/application/voting"
	domainParticipant "github.com/quadvote/quadvote/internal/domain/participant"
	"github.com/quadvote/quadvote/internal/domain/poll"
	"github.com/quadvote/quadvote/internal/domain/render"
)

// Data types for requests

type pollCreateRequest struct {
	Topic       string     `json:"topic"`
	Options     []string   `json:"options"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	HideVotes   bool       `json:"hide_votes,omitempty"`
	Passphrase  string     `json:"passphrase,omitempty"`
	CreatorName string     `json:"creator_name"`
}

type pollJoinRequest struct {
	Name       string `json:"name"`
	Passphrase string `json:"passphrase,omitempty"`
}

type castVoteRequest struct {
	OptionIndex int    `json:"option_index"`
	Direction   string `json:"direction"`
}

type joinResponse struct {
	UserID string      `json:"user_id"`
	Token  string      `json:"token"`
	Ballot poll.Ballot `json:"ballot"`
}

type castVoteResponse struct {
	Cost    int          `json:"cost"`
	Ballot  poll.Ballot  `json:"ballot"`
	Summary poll.Summary `json:"summary"`
}

func (s *Server) createPoll(w http.ResponseWriter, r *http.Request) {
	var req pollCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.CreatorName == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "creator_name is required")
		return
	}

	var passphraseHash string
	if req.Passphrase != "" {
		hash, err := domainParticipant.HashPassphrase(req.Passphrase)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		passphraseHash = hash
	}

	creatorID := uuid.New()
	p, err := s.votingSvc.CreatePoll(r.Context(), appVoting.CreatePollInput{
		Topic:          req.Topic,
		Options:        req.Options,
		EndTime:        req.EndTime,
		HideVotes:      req.HideVotes,
		PassphraseHash: passphraseHash,
		CreatorID:      creatorID.String(),
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}

	_, token, err := s.identitySvc.Register(r.Context(), p.ID, creatorID, req.CreatorName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"poll_id":          p.ID.String(),
		"starting_tickets": p.StartingTickets,
		"user_id":          creatorID.String(),
		"token":            token,
		"summary":          p.BuildSummary(),
		"ballot":           p.BuildBallot(creatorID.String()),
	})
}

func (s *Server) getPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseUUIDParam(r, "pollID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid poll id")
		return
	}
	summary, err := s.votingSvc.GetSummary(r.Context(), pollID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) joinPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseUUIDParam(r, "pollID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid poll id")
		return
	}
	var req pollJoinRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}

	p, err := s.votingSvc.GetPoll(r.Context(), pollID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if p.Ended() {
		respondError(w, http.StatusConflict, "POLL_ENDED", "voting is closed for this poll")
		return
	}
	if p.PassphraseHash != "" && !domainParticipant.VerifyPassphrase(p.PassphraseHash, req.Passphrase) {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "invalid passphrase")
		return
	}

	userID := uuid.New()
	_, token, err := s.identitySvc.Register(r.Context(), pollID, userID, req.Name)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, joinResponse{
		UserID: userID.String(),
		Token:  token,
		Ballot: p.BuildBallot(userID.String()),
	})
}

func (s *Server) castVote(w http.ResponseWriter, r *http.Request) {
	voter := voterFromContext(r.Context())
	var req castVoteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	direction, err := poll.ParseDirection(req.Direction)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}

	p, cost, err := s.votingSvc.CastVote(r.Context(), voter.PollID, voter.UserID.String(), req.OptionIndex, direction)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, castVoteResponse{
		Cost:    cost,
		Ballot:  p.BuildBallot(voter.UserID.String()),
		Summary: p.BuildSummary(),
	})
}

func (s *Server) endPoll(w http.ResponseWriter, r *http.Request) {
	voter := voterFromContext(r.Context())
	p, err := s.votingSvc.EndPoll(r.Context(), voter.PollID, voter.UserID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p.BuildSummary())
}

func (s *Server) getBallot(w http.ResponseWriter, r *http.Request) {
	voter := voterFromContext(r.Context())
	ballot, err := s.votingSvc.GetBallot(r.Context(), voter.PollID, voter.UserID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ballot)
}

// pollEvents streams summary (and, for authenticated voters, ballot) updates
// over SSE.
func (s *Server) pollEvents(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseUUIDParam(r, "pollID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid poll id")
		return
	}

	// A bearer token is optional here; with one, the stream also carries the
	// voter's private ballot updates.
	var userPtr *string
	if token := extractToken(r); token != "" {
		p, err := s.identitySvc.Authenticate(r.Context(), token)
		if err != nil || p.PollID != pollID {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}
		uid := p.UserID.String()
		userPtr = &uid
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}

	clientID := uuid.New().String()
	client := render.NewClient(clientID, pollID.String(), userPtr)
	s.sseHub.Register(client)
	defer s.sseHub.Unregister(clientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Initial comment flushes headers and keeps the connection alive.
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case ev := <-client.Events:
			if ev == nil {
				return
			}
			writeEvent(w, flusher, ev)
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev *render.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n\n"))
	flusher.Flush()
}
