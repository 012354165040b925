// adapters/pg/sponsor.go — Implementación PostgreSQL de SponsorRepository.
package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
)

type sponsorRepo struct {
	pool *pgxpool.Pool
}

func newSponsorRepo(pool *pgxpool.Pool) *sponsorRepo {
	return &sponsorRepo{pool: pool}
}

func (r *sponsorRepo) Create(ctx context.Context, input repository.CreateSponsorInput) (*repository.Sponsor, error) {
	const query = `
		INSERT INTO sponsor (name, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, name, email, password_hash, created_at`

	var s repository.Sponsor
	err := r.pool.QueryRow(ctx, query, input.Name, input.Email, input.PasswordHash).Scan(
		&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &s, nil
}

func (r *sponsorRepo) GetByID(ctx context.Context, id string) (*repository.Sponsor, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM sponsor WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *sponsorRepo) GetByEmail(ctx context.Context, email string) (*repository.Sponsor, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM sponsor WHERE lower(email) = lower($1)`
	return r.scanOne(ctx, query, email)
}

func (r *sponsorRepo) scanOne(ctx context.Context, query string, arg any) (*repository.Sponsor, error) {
	var s repository.Sponsor
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
