package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type authContextKey string

const voterKey authContextKey = "voter"

// Voter is the authenticated participant in context.
type Voter struct {
	UserID uuid.UUID
	PollID uuid.UUID
	Name   string
}

func withVoter(ctx context.Context, v *Voter) context.Context {
	if v == nil {
		return ctx
	}
	return context.WithValue(ctx, voterKey, v)
}

func voterFromContext(ctx context.Context) *Voter {
	if v, ok := ctx.Value(voterKey).(*Voter); ok {
		return v
	}
	return nil
}

// requireParticipant resolves the bearer token to a participant and checks
// it belongs to the poll in the URL. Handlers downstream only ever see the
// resolved user id.
func (s *Server) requireParticipant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pollID, err := parseUUIDParam(r, "pollID")
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid poll id")
			return
		}
		p, err := s.identitySvc.Authenticate(r.Context(), extractToken(r))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}
		if p.PollID != pollID {
			respondError(w, http.StatusForbidden, "FORBIDDEN", "token does not belong to this poll")
			return
		}
		ctx := withVoter(r.Context(), &Voter{
			UserID: p.UserID,
			PollID: p.PollID,
			Name:   p.Name,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}
