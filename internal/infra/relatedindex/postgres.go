package relatedindex

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

// Postgres implements the index with pgvector nearest neighbour lookups.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs the index.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Index(ctx context.Context, questionID uuid.UUID, embedding []float32) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO question_embeddings (question_id, embedding)
		VALUES ($1, $2)
		ON CONFLICT (question_id) DO UPDATE SET embedding = EXCLUDED.embedding
	`, questionID, pgvector.NewVector(embedding))
	return err
}

func (p *Postgres) Nearest(ctx context.Context, embedding []float32, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, `
		SELECT question_id
		FROM question_embeddings
		ORDER BY embedding <-> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

var _ qna.RelatedIndex = (*Postgres)(nil)
