package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domainParticipant "github.com/quadvote/quadvote/internal/domain/participant"
)

// Service registers poll participants and resolves bearer tokens back to
// them. The voting core never sees a token, only the resolved user id.
type Service struct {
	participants domainParticipant.Repository
	logger       zerolog.Logger
}

// NewService creates an identity service.
func NewService(participants domainParticipant.Repository, logger zerolog.Logger) *Service {
	return &Service{
		participants: participants,
		logger:       logger.With().Str("service", "identity").Logger(),
	}
}

// Register creates a participant on a poll under the given user id and
// returns the bearer token to hand back to the client. Display names are
// unique per poll.
func (s *Service) Register(ctx context.Context, pollID, userID uuid.UUID, name string) (*domainParticipant.Participant, string, error) {
	name = domainParticipant.NormalizeName(name)
	if err := domainParticipant.ValidateName(name); err != nil {
		return nil, "", err
	}
	existing, err := s.participants.GetByName(ctx, pollID, name)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("name %q is already taken on this poll", name)
	}

	token, err := generateToken()
	if err != nil {
		return nil, "", err
	}
	p := &domainParticipant.Participant{
		PollID:    pollID,
		UserID:    userID,
		Name:      name,
		TokenHash: hashToken(token),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.participants.Create(ctx, p); err != nil {
		return nil, "", err
	}
	s.logger.Info().
		Str("poll_id", pollID.String()).
		Str("user_id", userID.String()).
		Msg("participant registered")
	return p, token, nil
}

// Authenticate resolves a bearer token to its participant.
func (s *Service) Authenticate(ctx context.Context, token string) (*domainParticipant.Participant, error) {
	if token == "" {
		return nil, fmt.Errorf("missing token")
	}
	p, err := s.participants.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("unknown token")
	}
	return p, nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
