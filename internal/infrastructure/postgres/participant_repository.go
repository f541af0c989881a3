package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadvote/quadvote/internal/domain/participant"
)

// ParticipantRepository implements participant.Repository.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *participant.Participant) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO participants (poll_id, user_id, name, token_hash, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, p.PollID, p.UserID, p.Name, p.TokenHash, p.CreatedAt).Scan(&p.ID)
}

func (r *ParticipantRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*participant.Participant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, poll_id, user_id, name, token_hash, created_at
		FROM participants WHERE token_hash=$1
	`, tokenHash)
	return scanParticipant(row)
}

func (r *ParticipantRepository) GetByName(ctx context.Context, pollID uuid.UUID, name string) (*participant.Participant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, poll_id, user_id, name, token_hash, created_at
		FROM participants WHERE poll_id=$1 AND name=$2
	`, pollID, name)
	return scanParticipant(row)
}

func scanParticipant(row pgx.Row) (*participant.Participant, error) {
	var p participant.Participant
	if err := row.Scan(&p.ID, &p.PollID, &p.UserID, &p.Name, &p.TokenHash, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
