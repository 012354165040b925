// Package pg implementa el adapter PostgreSQL del store.
// Usa pgxpool directamente.
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/store"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pg: DSN is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	return &connection{
		pool:     pool,
		requests: newRequestRepo(pool),
		sponsors: newSponsorRepo(pool),
		posts:    newPostRepo(pool),
	}, nil
}

type connection struct {
	pool     *pgxpool.Pool
	requests *requestRepo
	sponsors *sponsorRepo
	posts    *postRepo
}

func (c *connection) Name() string { return "postgres" }

func (c *connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *connection) Close() error {
	c.pool.Close()
	return nil
}

func (c *connection) Requests() repository.RequestRepository { return c.requests }
func (c *connection) Sponsors() repository.SponsorRepository { return c.sponsors }
func (c *connection) Posts() repository.PostRepository       { return c.posts }

// nullIfEmpty returns nil if the string is empty, otherwise the string pointer.
// Useful for inserting optional string fields into PostgreSQL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
