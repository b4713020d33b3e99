package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"blupr/internal/domain"
)

// ResponseRepository guarda cada respuesta como registro append-only.
type ResponseRepository interface {
	Append(ctx context.Context, record domain.ResponseRecord) error
	// ListByIdentity devuelve los registros en orden de respuesta; los empates de
	// answered_at se resuelven por orden de insercion.
	ListByIdentity(ctx context.Context, identity string) ([]domain.ResponseRecord, error)
}

type PgResponseRepository struct {
	db dbtx
}

func NewPgResponseRepository(pool *pgxpool.Pool) *PgResponseRepository {
	return &PgResponseRepository{db: pool}
}

func (r *PgResponseRepository) Append(ctx context.Context, record domain.ResponseRecord) error {
	const query = `
		INSERT INTO response_records (id, identity, question_id, score, answered_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.Identity,
		record.QuestionID,
		record.Score,
		record.AnsweredAt,
	)
	return err
}

func (r *PgResponseRepository) ListByIdentity(ctx context.Context, identity string) ([]domain.ResponseRecord, error) {
	const query = `
		SELECT id, identity, question_id, score, answered_at
		FROM response_records
		WHERE identity = $1
		ORDER BY answered_at, seq
	`
	rows, err := r.db.Query(ctx, query, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgxRows) ([]domain.ResponseRecord, error) {
	var records []domain.ResponseRecord
	for rows.Next() {
		var rec domain.ResponseRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Identity,
			&rec.QuestionID,
			&rec.Score,
			&rec.AnsweredAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
