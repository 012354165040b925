// adapters/pg/post.go — Implementación PostgreSQL de PostRepository.
package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
)

type postRepo struct {
	pool *pgxpool.Pool
}

func newPostRepo(pool *pgxpool.Pool) *postRepo {
	return &postRepo{pool: pool}
}

const postColumns = `id, author_id, author_role, title, body, status, created_at, updated_at`

func scanPost(row pgx.Row) (*repository.Post, error) {
	var p repository.Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorRole, &p.Title, &p.Body, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) Create(ctx context.Context, input repository.CreatePostInput) (*repository.Post, error) {
	const query = `
		INSERT INTO post (author_id, author_role, title, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'active', NOW(), NOW())
		RETURNING ` + postColumns
	return scanPost(r.pool.QueryRow(ctx, query, input.AuthorID, input.AuthorRole, input.Title, input.Body))
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*repository.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM post WHERE id = $1`
	p, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postRepo) List(ctx context.Context, filter repository.ListPostsFilter) ([]repository.Post, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conds = append(conds, fmt.Sprintf("author_id = $%d", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM post`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *postRepo) Update(ctx context.Context, id string, input repository.UpdatePostInput) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	if input.Title != nil {
		args = append(args, *input.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if input.Body != nil {
		args = append(args, *input.Body)
		sets = append(sets, fmt.Sprintf("body = $%d", len(args)))
	}
	if input.Status != nil {
		args = append(args, *input.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `UPDATE post SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM post WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
