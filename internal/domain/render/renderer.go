package render

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_renderer.go -package=mocks . Renderer

import (
	"context"

	"github.com/quadvote/quadvote/internal/domain/poll"
)

// Renderer is the rendering collaborator. The engine hands it projections and
// is agnostic to layout. RenderSummary posts a fresh summary and returns the
// message ref the engine records on the poll; UpdateSummary refreshes an
// existing one. Renderer failures never affect ledger correctness.
type Renderer interface {
	RenderSummary(ctx context.Context, s poll.Summary) (string, error)
	UpdateSummary(ctx context.Context, messageRef string, s poll.Summary) error
	RenderPrivateBallot(ctx context.Context, userID string, b poll.Ballot) error
}
