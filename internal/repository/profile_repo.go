package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"blupr/internal/domain"
)

var ErrProfileExists = errors.New("profile already exists")

// ProfileRepository persiste blueprints completos. El vector se guarda en una columna
// pgvector para poder pre-filtrar candidatos por distancia L2.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	Upsert(ctx context.Context, profile domain.Profile) error
	GetByIdentity(ctx context.Context, identity string) (domain.Profile, error)
	Nearest(ctx context.Context, vector domain.BeliefVector, excludeIdentity string, limit int) ([]domain.Profile, error)
}

type PgProfileRepository struct {
	db dbtx
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{db: pool}
}

const profileColumns = `id, identity, display_name, responses, belief_vector, clan_name, created_at`

// Create falla con ErrProfileExists si la identidad ya tiene perfil.
func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	args, err := profileArgs(profile)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrProfileExists
		}
		return err
	}
	return nil
}

func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (identity)
		DO UPDATE SET
			display_name = EXCLUDED.display_name,
			responses = EXCLUDED.responses,
			belief_vector = EXCLUDED.belief_vector,
			clan_name = EXCLUDED.clan_name
	`
	args, err := profileArgs(profile)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *PgProfileRepository) GetByIdentity(ctx context.Context, identity string) (domain.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE identity = $1
	`
	rows, err := r.db.Query(ctx, query, identity)
	if err != nil {
		return domain.Profile{}, err
	}
	defer rows.Close()

	profiles, err := scanProfiles(rows)
	if err != nil {
		return domain.Profile{}, err
	}
	if len(profiles) == 0 {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return profiles[0], nil
}

// Nearest ordena por distancia L2, que es monótona con la similitud del motor.
func (r *PgProfileRepository) Nearest(ctx context.Context, vector domain.BeliefVector, excludeIdentity string, limit int) ([]domain.Profile, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE identity <> $1
		ORDER BY belief_vector <-> $2, created_at, id
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, excludeIdentity, pgvector.NewVector(vector.Float32()), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func profileArgs(p domain.Profile) ([]any, error) {
	responses, err := json.Marshal(p.Responses)
	if err != nil {
		return nil, fmt.Errorf("encode responses: %w", err)
	}
	return []any{
		p.ID,
		p.Identity,
		p.DisplayName,
		responses,
		pgvector.NewVector(p.Vector.Float32()),
		p.Clan,
		p.CreatedAt,
	}, nil
}

func scanProfiles(rows pgxRows) ([]domain.Profile, error) {
	var profiles []domain.Profile
	for rows.Next() {
		var (
			p         domain.Profile
			responses []byte
			vector    pgvector.Vector
		)
		if err := rows.Scan(
			&p.ID,
			&p.Identity,
			&p.DisplayName,
			&responses,
			&vector,
			&p.Clan,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(responses, &p.Responses); err != nil {
			return nil, fmt.Errorf("decode responses for %s: %w", p.Identity, err)
		}
		p.Vector = toBeliefVector(vector)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func toBeliefVector(v pgvector.Vector) domain.BeliefVector {
	raw := v.Slice()
	out := make(domain.BeliefVector, len(raw))
	for i, x := range raw {
		out[i] = float64(x)
	}
	return out
}
