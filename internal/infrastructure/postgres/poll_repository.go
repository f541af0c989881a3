package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadvote/quadvote/internal/domain/poll"
)

// PollRepository implements poll.Repository. Votes and token balances live in
// JSONB columns; a version counter column backs the conditional update.
type PollRepository struct {
	pool *pgxpool.Pool
}

func NewPollRepository(pool *pgxpool.Pool) *PollRepository {
	return &PollRepository{pool: pool}
}

func (r *PollRepository) Create(ctx context.Context, p *poll.Poll) error {
	options, votes, tokens, err := marshalPollState(p)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO polls
		(poll_id, topic, options, votes, user_tokens, starting_tickets, status, end_time, hide_votes, creator_id, passphrase_hash, message_ref, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,1,$13,$14)
	`, p.ID, p.Topic, options, votes, tokens, p.StartingTickets, p.Status, p.EndTime, p.HideVotes, p.CreatorID, p.PassphraseHash, p.MessageRef, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PollRepository) Get(ctx context.Context, id uuid.UUID) (*poll.Poll, int64, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT poll_id, topic, options, votes, user_tokens, starting_tickets, status, end_time, hide_votes, creator_id, passphrase_hash, message_ref, version, created_at, updated_at
		FROM polls WHERE poll_id=$1
	`, id)
	var p poll.Poll
	var options, votes, tokens json.RawMessage
	var version int64
	err := row.Scan(&p.ID, &p.Topic, &options, &votes, &tokens, &p.StartingTickets, &p.Status, &p.EndTime, &p.HideVotes, &p.CreatorID, &p.PassphraseHash, &p.MessageRef, &version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, 0, poll.ErrNotFound
		}
		return nil, 0, err
	}
	if err := unmarshalPollState(&p, options, votes, tokens); err != nil {
		return nil, 0, err
	}
	return &p, version, nil
}

// CompareAndSwap writes the mutable poll fields back only if the stored
// version still equals expectedVersion. The version bump and field update
// are one statement, so a losing writer changes nothing.
func (r *PollRepository) CompareAndSwap(ctx context.Context, p *poll.Poll, expectedVersion int64) (bool, error) {
	_, votes, tokens, err := marshalPollState(p)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE polls
		SET votes=$1, user_tokens=$2, status=$3, end_time=$4, updated_at=$5, version=version+1
		WHERE poll_id=$6 AND version=$7
	`, votes, tokens, p.Status, p.EndTime, p.UpdatedAt, p.ID, expectedVersion)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PollRepository) SetMessageRef(ctx context.Context, id uuid.UUID, ref string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE polls SET message_ref=$1 WHERE poll_id=$2
	`, ref, id)
	return err
}

func marshalPollState(p *poll.Poll) (options, votes, tokens []byte, err error) {
	if options, err = json.Marshal(p.Options); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal options: %w", err)
	}
	if votes, err = json.Marshal(p.Votes); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal votes: %w", err)
	}
	if tokens, err = json.Marshal(p.UserTokens); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal user tokens: %w", err)
	}
	return options, votes, tokens, nil
}

func unmarshalPollState(p *poll.Poll, options, votes, tokens json.RawMessage) error {
	if err := json.Unmarshal(options, &p.Options); err != nil {
		return fmt.Errorf("unmarshal options: %w", err)
	}
	if err := json.Unmarshal(votes, &p.Votes); err != nil {
		return fmt.Errorf("unmarshal votes: %w", err)
	}
	if err := json.Unmarshal(tokens, &p.UserTokens); err != nil {
		return fmt.Errorf("unmarshal user tokens: %w", err)
	}
	// JSONB null round-trips as missing maps; a poll always carries one
	// vote map per option.
	for i := range p.Votes {
		if p.Votes[i] == nil {
			p.Votes[i] = map[string]int{}
		}
	}
	if p.UserTokens == nil {
		p.UserTokens = map[string]int{}
	}
	return nil
}
