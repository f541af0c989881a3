package participant

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines participant persistence.
type Repository interface {
	Create(ctx context.Context, p *Participant) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Participant, error)
	GetByName(ctx context.Context, pollID uuid.UUID, name string) (*Participant, error)
}
