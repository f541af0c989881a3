package poll

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines poll persistence. Get returns an opaque version counter
// alongside the poll; CompareAndSwap writes the poll back only if the stored
// version still matches, returning false (and writing nothing) otherwise.
type Repository interface {
	Create(ctx context.Context, p *Poll) error
	Get(ctx context.Context, id uuid.UUID) (*Poll, int64, error)
	CompareAndSwap(ctx context.Context, p *Poll, expectedVersion int64) (bool, error)
	SetMessageRef(ctx context.Context, id uuid.UUID, ref string) error
}
