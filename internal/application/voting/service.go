package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quadvote/quadvote/internal/application/budget"
	"github.com/quadvote/quadvote/internal/domain/poll"
	"github.com/quadvote/quadvote/internal/domain/render"
)

// DefaultRetryAttempts bounds the optimistic write retry loop.
const DefaultRetryAttempts = 5

// Service is the voting engine. Every mutation of shared poll state flows
// through the conditional-write path in mutate; there are no unguarded
// writes anywhere in the system.
type Service struct {
	polls    poll.Repository
	renderer render.Renderer
	budget   *budget.Policy
	retries  int
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a voting service. A nil budget policy falls back to the
// built-in formula; a non-positive retryAttempts uses the default.
func NewService(polls poll.Repository, renderer render.Renderer, budgetPolicy *budget.Policy, retryAttempts int, logger zerolog.Logger) *Service {
	if retryAttempts <= 0 {
		retryAttempts = DefaultRetryAttempts
	}
	return &Service{
		polls:    polls,
		renderer: renderer,
		budget:   budgetPolicy,
		retries:  retryAttempts,
		logger:   logger.With().Str("service", "voting").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreatePollInput carries poll creation fields.
type CreatePollInput struct {
	Topic          string
	Options        []string
	EndTime        *time.Time
	HideVotes      bool
	PassphraseHash string
	CreatorID      string
}

// CreatePoll creates a poll, assigns the starting ticket budget from the
// configured formula and posts the initial public summary.
func (s *Service) CreatePoll(ctx context.Context, in CreatePollInput) (*poll.Poll, error) {
	tickets := budget.Default(len(in.Options))
	if s.budget != nil {
		computed, err := s.budget.StartingTickets(len(in.Options))
		if err != nil {
			s.logger.Warn().Err(err).Msg("ticket formula failed, using default budget")
		} else {
			tickets = computed
		}
	}
	p, err := poll.New(in.Topic, in.Options, tickets, in.EndTime, in.HideVotes, in.CreatorID, s.now())
	if err != nil {
		return nil, err
	}
	p.PassphraseHash = in.PassphraseHash
	if err := s.polls.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}
	s.logger.Info().
		Str("poll_id", p.ID.String()).
		Int("options", len(p.Options)).
		Int("starting_tickets", p.StartingTickets).
		Msg("poll created")
	s.renderSummary(ctx, p)
	return p, nil
}

// CastVote applies one ±1 vote step for a participant. The poll is resolved
// against the clock first; ledger decisions are recomputed from fresh state
// on every retry so a losing writer never commits a stale economic decision.
func (s *Service) CastVote(ctx context.Context, pollID uuid.UUID, userID string, optionIndex int, d poll.Direction) (*poll.Poll, int, error) {
	var cost int
	var expired bool
	p, err := s.mutate(ctx, pollID, func(p *poll.Poll) (bool, error) {
		cost = 0
		if optionIndex < 0 || optionIndex >= len(p.Options) {
			return false, poll.ErrInvalidOption
		}
		expired = p.Resolve(s.now())
		if p.Ended() {
			return expired, poll.ErrPollEnded
		}
		c, err := p.ApplyVote(userID, optionIndex, d, s.now())
		if err != nil {
			return false, err
		}
		cost = c
		return true, nil
	})
	if expired && p != nil {
		// The lazy close just committed; the summary goes terminal once.
		s.renderSummary(ctx, p)
	}
	if err != nil {
		var insufficient *poll.InsufficientTokensError
		if errors.As(err, &insufficient) {
			s.logger.Debug().
				Str("poll_id", pollID.String()).
				Int("cost", insufficient.Cost).
				Int("balance", insufficient.Balance).
				Msg("vote rejected, insufficient tokens")
		}
		return nil, 0, err
	}
	s.logger.Info().
		Str("poll_id", pollID.String()).
		Str("user_id", userID).
		Int("option", optionIndex).
		Str("direction", string(d)).
		Int("cost", cost).
		Msg("vote cast")
	s.renderSummary(ctx, p)
	s.renderBallot(ctx, p, userID)
	return p, cost, nil
}

// EndPoll closes a poll on the creator's request and renders the terminal
// summary. A non-creator gets ErrUnauthorized with no state change.
func (s *Service) EndPoll(ctx context.Context, pollID uuid.UUID, requesterID string) (*poll.Poll, error) {
	var expired bool
	p, err := s.mutate(ctx, pollID, func(p *poll.Poll) (bool, error) {
		expired = p.Resolve(s.now())
		if err := p.End(requesterID, s.now()); err != nil {
			return expired, err
		}
		return true, nil
	})
	if err != nil {
		if errors.Is(err, poll.ErrUnauthorized) {
			s.logger.Warn().
				Str("poll_id", pollID.String()).
				Str("requester_id", requesterID).
				Msg("unauthorized attempt to end poll")
		}
		if expired && p != nil {
			s.renderSummary(ctx, p)
		}
		return nil, err
	}
	s.logger.Info().Str("poll_id", pollID.String()).Msg("poll ended")
	s.renderSummary(ctx, p)
	return p, nil
}

// GetSummary returns the public projection, persisting the lazy expiry
// transition when the clock has passed the end time.
func (s *Service) GetSummary(ctx context.Context, pollID uuid.UUID) (poll.Summary, error) {
	p, err := s.resolveView(ctx, pollID)
	if err != nil {
		return poll.Summary{}, err
	}
	return p.BuildSummary(), nil
}

// GetBallot returns a participant's private ballot projection.
func (s *Service) GetBallot(ctx context.Context, pollID uuid.UUID, userID string) (poll.Ballot, error) {
	p, err := s.resolveView(ctx, pollID)
	if err != nil {
		return poll.Ballot{}, err
	}
	return p.BuildBallot(userID), nil
}

// GetPoll returns the raw poll after lifecycle resolution.
func (s *Service) GetPoll(ctx context.Context, pollID uuid.UUID) (*poll.Poll, error) {
	return s.resolveView(ctx, pollID)
}

// resolveView loads a poll for reading, committing (and rendering) the
// expiry transition if one is due. A read racing other writers on the
// transition itself is served from its local copy; the winners persist it.
func (s *Service) resolveView(ctx context.Context, pollID uuid.UUID) (*poll.Poll, error) {
	var expired bool
	p, err := s.mutate(ctx, pollID, func(p *poll.Poll) (bool, error) {
		expired = p.Resolve(s.now())
		return expired, nil
	})
	if errors.Is(err, poll.ErrUpdateConflict) && p != nil {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	if expired {
		s.renderSummary(ctx, p)
	}
	return p, nil
}

// mutate is the optimistic read-modify-write guard. Each attempt refetches
// the poll, applies fn to a deep copy and conditionally writes it back; a
// version mismatch discards the copy and retries against the winner's
// committed state. fn returns whether its changes should be written. The
// returned poll is fn's final copy even when fn reports an error (including
// retry exhaustion), so callers can still serve or render the state fn
// derived from the last committed fetch.
func (s *Service) mutate(ctx context.Context, pollID uuid.UUID, fn func(*poll.Poll) (bool, error)) (*poll.Poll, error) {
	var last *poll.Poll
	for attempt := 0; attempt < s.retries; attempt++ {
		stored, version, err := s.polls.Get(ctx, pollID)
		if err != nil {
			return nil, err
		}
		p := stored.Clone()
		commit, opErr := fn(p)
		if !commit {
			return p, opErr
		}
		ok, err := s.polls.CompareAndSwap(ctx, p, version)
		if err != nil {
			return nil, fmt.Errorf("conditional update: %w", err)
		}
		if ok {
			return p, opErr
		}
		last = p
		s.logger.Debug().
			Str("poll_id", pollID.String()).
			Int("attempt", attempt+1).
			Msg("conditional update lost the race, retrying")
	}
	return last, poll.ErrUpdateConflict
}

// renderSummary posts or refreshes the public summary. A stale message ref
// falls back to a fresh post, and the new ref is recorded on the poll.
// Rendering failures are logged and never propagated: the ledger is the
// source of truth and the next successful render reconciles the display.
func (s *Service) renderSummary(ctx context.Context, p *poll.Poll) {
	summary := p.BuildSummary()
	if p.MessageRef != "" {
		err := s.renderer.UpdateSummary(ctx, p.MessageRef, summary)
		if err == nil {
			return
		}
		s.logger.Warn().Err(err).Str("poll_id", p.ID.String()).Msg("summary update failed, reposting")
	}
	ref, err := s.renderer.RenderSummary(ctx, summary)
	if err != nil {
		s.logger.Warn().Err(err).Str("poll_id", p.ID.String()).Msg("summary render failed")
		return
	}
	p.MessageRef = ref
	if err := s.polls.SetMessageRef(ctx, p.ID, ref); err != nil {
		s.logger.Warn().Err(err).Str("poll_id", p.ID.String()).Msg("recording message ref failed")
	}
}

func (s *Service) renderBallot(ctx context.Context, p *poll.Poll, userID string) {
	if err := s.renderer.RenderPrivateBallot(ctx, userID, p.BuildBallot(userID)); err != nil {
		s.logger.Warn().Err(err).Str("poll_id", p.ID.String()).Str("user_id", userID).Msg("ballot render failed")
	}
}
