// adapters/pg/request.go — Implementación PostgreSQL de RequestRepository.
// Tabla: recipient_request (ver migrations/postgres).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
)

type requestRepo struct {
	pool *pgxpool.Pool
}

// newRequestRepo crea un repositorio de solicitudes de recipient.
func newRequestRepo(pool *pgxpool.Pool) *requestRepo {
	return &requestRepo{pool: pool}
}

// flagColumn retorna la columna de flag según el kind.
// Solo kinds con flag (EmailKind.HasFlag) tienen columna.
func flagColumn(k repository.EmailKind) (string, error) {
	switch k {
	case repository.KindConfirmation:
		return "confirmation_sent", nil
	case repository.KindApproval:
		return "approval_sent", nil
	case repository.KindVerification:
		return "verification_sent", nil
	case repository.KindFollowUp:
		return "verification_follow_up_sent", nil
	}
	return "", fmt.Errorf("pg: kind %q has no send flag", k)
}

const requestColumns = `
	id, name, email, password_hash, status,
	confirmation_sent, approval_sent, verification_sent, verification_follow_up_sent,
	last_email_sent, last_email_type, notes, reviewed_by, reviewed_at, created_at
`

func scanRequest(row pgx.Row) (*repository.RecipientRequest, error) {
	var r repository.RecipientRequest
	var lastType, notes, reviewedBy *string
	err := row.Scan(
		&r.ID, &r.Name, &r.Email, &r.PasswordHash, &r.Status,
		&r.EmailsSent.Confirmation, &r.EmailsSent.Approval,
		&r.EmailsSent.Verification, &r.EmailsSent.VerificationFollowUp,
		&r.LastEmailSent, &lastType, &notes, &reviewedBy, &r.ReviewedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.LastEmailType = derefString(lastType)
	r.Notes = derefString(notes)
	r.ReviewedBy = derefString(reviewedBy)
	return &r, nil
}

func (r *requestRepo) Create(ctx context.Context, input repository.CreateRequestInput) (*repository.RecipientRequest, error) {
	const query = `
		INSERT INTO recipient_request (name, email, password_hash, status, created_at)
		VALUES ($1, $2, $3, 'pending', NOW())
		RETURNING ` + requestColumns

	req, err := scanRequest(r.pool.QueryRow(ctx, query, input.Name, input.Email, input.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*repository.RecipientRequest, error) {
	const query = `SELECT ` + requestColumns + ` FROM recipient_request WHERE id = $1`
	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepo) GetByEmail(ctx context.Context, email string) (*repository.RecipientRequest, error) {
	const query = `SELECT ` + requestColumns + ` FROM recipient_request WHERE lower(email) = lower($1)`
	req, err := scanRequest(r.pool.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepo) List(ctx context.Context, filter repository.ListRequestsFilter) ([]repository.RecipientRequest, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	query := `SELECT ` + requestColumns + ` FROM recipient_request`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestRepo) FindByStatus(ctx context.Context, status repository.RequestStatus) ([]repository.RecipientRequest, error) {
	const query = `SELECT ` + requestColumns + ` FROM recipient_request WHERE status = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestRepo) FindPendingEmail(ctx context.Context, status repository.RequestStatus, kind repository.EmailKind) ([]repository.RecipientRequest, error) {
	col, err := flagColumn(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + requestColumns + ` FROM recipient_request
		WHERE status = $1 AND ` + col + ` = FALSE ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestRepo) FindFollowUpCandidates(ctx context.Context, olderThan time.Time) ([]repository.RecipientRequest, error) {
	const query = `SELECT ` + requestColumns + ` FROM recipient_request
		WHERE status = 'rejected'
		  AND verification_sent = TRUE
		  AND verification_follow_up_sent = FALSE
		  AND last_email_sent IS NOT NULL
		  AND last_email_sent < $1
		ORDER BY last_email_sent`
	rows, err := r.pool.Query(ctx, query, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *requestRepo) Review(ctx context.Context, id string, input repository.ReviewInput) error {
	const query = `
		UPDATE recipient_request
		SET status = $2, notes = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, input.Status,
		nullIfEmpty(input.Notes), nullIfEmpty(input.ReviewedBy), input.ReviewedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkEmailSent setea el flag de forma condicional: el WHERE exige flag en
// FALSE, así dos pases concurrentes no pueden escribir los dos. El perdedor
// recibe ErrAlreadySent y lo trata como no-op.
func (r *requestRepo) MarkEmailSent(ctx context.Context, id string, kind repository.EmailKind, at time.Time) error {
	col, err := flagColumn(kind)
	if err != nil {
		return err
	}
	query := `
		UPDATE recipient_request
		SET ` + col + ` = TRUE, last_email_sent = $2, last_email_type = $3
		WHERE id = $1 AND ` + col + ` = FALSE
		RETURNING id`
	var got string
	err = r.pool.QueryRow(ctx, query, id, at, string(kind)).Scan(&got)
	if err == nil {
		return nil
	}
	if err != pgx.ErrNoRows {
		return err
	}

	// Distinguir "no existe" de "flag ya seteado".
	var exists bool
	if scanErr := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM recipient_request WHERE id = $1)`, id).Scan(&exists); scanErr != nil {
		return scanErr
	}
	if exists {
		return repository.ErrAlreadySent
	}
	return repository.ErrNotFound
}

func (r *requestRepo) ForceTouchEmail(ctx context.Context, id string, kind repository.EmailKind, at time.Time) error {
	col, err := flagColumn(kind)
	if err != nil {
		return err
	}
	query := `
		UPDATE recipient_request
		SET ` + col + ` = TRUE, last_email_sent = $2, last_email_type = $3
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, at, string(kind))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *requestRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipient_request WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func collectRequests(rows pgx.Rows) ([]repository.RecipientRequest, error) {
	var out []repository.RecipientRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}
