package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appIdentity "github.com/quadvote/quadvote/internal/application/identity"
	appVoting "github.com/quadvote/quadvote/internal/application/voting"
	"github.com/quadvote/quadvote/internal/domain/poll"
	"github.com/quadvote/quadvote/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	votingSvc   *appVoting.Service
	identitySvc *appIdentity.Service
	sseHub      *sse.Hub
}

func NewServer(votingSvc *appVoting.Service, identitySvc *appIdentity.Service, sseHub *sse.Hub) *Server {
	return &Server{
		votingSvc:   votingSvc,
		identitySvc: identitySvc,
		sseHub:      sseHub,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Post("/", s.createPoll)
			r.Get("/{pollID}", s.getPoll)
			r.Post("/{pollID}/join", s.joinPoll)
			r.Get("/{pollID}/events", s.pollEvents)

			r.Group(func(r chi.Router) {
				r.Use(s.requireParticipant)
				r.Post("/{pollID}/votes", s.castVote)
				r.Post("/{pollID}/end", s.endPoll)
				r.Get("/{pollID}/ballot", s.getBallot)
			})
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondDomainError maps voting errors onto the HTTP surface. Ledger
// decisions carry enough detail for the caller to render a precise message.
func respondDomainError(w http.ResponseWriter, err error) {
	var insufficient *poll.InsufficientTokensError
	switch {
	case errors.Is(err, poll.ErrNotFound):
		respondError(w, http.StatusNotFound, "POLL_NOT_FOUND", err.Error())
	case errors.Is(err, poll.ErrInvalidOption):
		respondError(w, http.StatusBadRequest, "INVALID_OPTION", err.Error())
	case errors.Is(err, poll.ErrPollEnded):
		respondError(w, http.StatusConflict, "POLL_ENDED", "voting is closed for this poll")
	case errors.Is(err, poll.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "UNAUTHORIZED", err.Error())
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   "INSUFFICIENT_TOKENS",
			"message": insufficient.Error(),
			"cost":    insufficient.Cost,
			"balance": insufficient.Balance,
		})
	case errors.Is(err, poll.ErrUpdateConflict):
		respondError(w, http.StatusConflict, "UPDATE_CONFLICT", "the poll was updated concurrently, please retry")
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
