package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quadvote/quadvote/internal/domain/participant"
	"github.com/quadvote/quadvote/internal/domain/participant/mocks"
)

func TestRegisterIssuesToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, zerolog.Nop())

	pollID := uuid.New()
	userID := uuid.New()

	var created *participant.Participant
	repo.EXPECT().GetByName(gomock.Any(), pollID, "Ada Lovelace").Return(nil, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *participant.Participant) error {
			created = p
			return nil
		})

	p, token, err := svc.Register(context.Background(), pollID, userID, "  Ada   Lovelace ")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, pollID, p.PollID)
	assert.Equal(t, userID, p.UserID)
	assert.NotEmpty(t, token)
	// The raw token never hits storage, only its hash does.
	assert.NotEqual(t, token, created.TokenHash)
	assert.Equal(t, hashToken(token), created.TokenHash)
	assert.Len(t, created.TokenHash, 64)
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, zerolog.Nop())

	pollID := uuid.New()
	repo.EXPECT().GetByName(gomock.Any(), pollID, "Ada").Return(&participant.Participant{Name: "Ada"}, nil)

	_, _, err := svc.Register(context.Background(), pollID, uuid.New(), "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already taken")
}

func TestRegisterRejectsInvalidName(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, zerolog.Nop())

	_, _, err := svc.Register(context.Background(), uuid.New(), uuid.New(), "   ")
	require.Error(t, err)
}

func TestAuthenticateRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, zerolog.Nop())

	pollID := uuid.New()
	var storedHash string
	repo.EXPECT().GetByName(gomock.Any(), pollID, "Ada").Return(nil, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *participant.Participant) error {
			storedHash = p.TokenHash
			return nil
		})

	registered, token, err := svc.Register(context.Background(), pollID, uuid.New(), "Ada")
	require.NoError(t, err)

	repo.EXPECT().GetByTokenHash(gomock.Any(), storedHash).Return(registered, nil)

	resolved, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, resolved.UserID)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, zerolog.Nop())

	repo.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := svc.Authenticate(context.Background(), "not-a-real-token")
	require.Error(t, err)
}

func TestAuthenticateEmptyToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Authenticate(context.Background(), "")
	require.Error(t, err)
}

func TestAuthenticateRepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, zerolog.Nop())

	repo.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := svc.Authenticate(context.Background(), "token")
	require.Error(t, err)
}
