// Package memory implementa el adapter in-memory del store.
// Mismo contrato que adapters/pg, con las mismas semánticas condicionales
// de MarkEmailSent bajo mutex. Pensado para desarrollo y tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return NewConnection(), nil
}

// NewConnection crea una conexión in-memory vacía.
// Exportado para que los tests construyan el store sin pasar por el registry.
func NewConnection() store.AdapterConnection {
	c := &connection{}
	c.requests = &requestRepo{conn: c, byID: map[string]*repository.RecipientRequest{}}
	c.sponsors = &sponsorRepo{conn: c, byID: map[string]*repository.Sponsor{}}
	c.posts = &postRepo{conn: c, byID: map[string]*repository.Post{}}
	return c
}

type connection struct {
	mu       sync.Mutex
	requests *requestRepo
	sponsors *sponsorRepo
	posts    *postRepo
}

func (c *connection) Name() string                   { return "memory" }
func (c *connection) Ping(ctx context.Context) error { return nil }
func (c *connection) Close() error                   { return nil }

func (c *connection) Requests() repository.RequestRepository { return c.requests }
func (c *connection) Sponsors() repository.SponsorRepository { return c.sponsors }
func (c *connection) Posts() repository.PostRepository       { return c.posts }

// ─── Requests ───

type requestRepo struct {
	conn *connection
	byID map[string]*repository.RecipientRequest
}

func (r *requestRepo) Create(ctx context.Context, input repository.CreateRequestInput) (*repository.RecipientRequest, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for _, req := range r.byID {
		if strings.EqualFold(req.Email, input.Email) {
			return nil, repository.ErrConflict
		}
	}

	req := &repository.RecipientRequest{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Status:       repository.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[req.ID] = req
	out := *req
	return &out, nil
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*repository.RecipientRequest, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *req
	return &out, nil
}

func (r *requestRepo) GetByEmail(ctx context.Context, email string) (*repository.RecipientRequest, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for _, req := range r.byID {
		if strings.EqualFold(req.Email, email) {
			out := *req
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *requestRepo) List(ctx context.Context, filter repository.ListRequestsFilter) ([]repository.RecipientRequest, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var out []repository.RecipientRequest
	for _, req := range r.byID {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *requestRepo) FindByStatus(ctx context.Context, status repository.RequestStatus) ([]repository.RecipientRequest, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	var out []repository.RecipientRequest
	for _, req := range r.byID {
		if req.Status == status {
			out = append(out, *req)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *requestRepo) FindPendingEmail(ctx context.Context, status repository.RequestStatus, kind repository.EmailKind) ([]repository.RecipientRequest, error) {
	if !kind.HasFlag() {
		return nil, repository.ErrInvalidInput
	}

	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	var out []repository.RecipientRequest
	for _, req := range r.byID {
		if req.Status == status && !req.EmailsSent.Sent(kind) {
			out = append(out, *req)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *requestRepo) FindFollowUpCandidates(ctx context.Context, olderThan time.Time) ([]repository.RecipientRequest, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	var out []repository.RecipientRequest
	for _, req := range r.byID {
		if req.Status != repository.StatusRejected {
			continue
		}
		if !req.EmailsSent.Verification || req.EmailsSent.VerificationFollowUp {
			continue
		}
		if req.LastEmailSent == nil || !req.LastEmailSent.Before(olderThan) {
			continue
		}
		out = append(out, *req)
	}
	sortByCreated(out)
	return out, nil
}

func (r *requestRepo) Review(ctx context.Context, id string, input repository.ReviewInput) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = input.Status
	req.Notes = input.Notes
	req.ReviewedBy = input.ReviewedBy
	at := input.ReviewedAt
	req.ReviewedAt = &at
	return nil
}

func (r *requestRepo) MarkEmailSent(ctx context.Context, id string, kind repository.EmailKind, at time.Time) error {
	if !kind.HasFlag() {
		return repository.ErrInvalidInput
	}

	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if req.EmailsSent.Sent(kind) {
		return repository.ErrAlreadySent
	}
	req.EmailsSent.Set(kind)
	ts := at
	req.LastEmailSent = &ts
	req.LastEmailType = string(kind)
	return nil
}

func (r *requestRepo) ForceTouchEmail(ctx context.Context, id string, kind repository.EmailKind, at time.Time) error {
	if !kind.HasFlag() {
		return repository.ErrInvalidInput
	}

	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.EmailsSent.Set(kind)
	ts := at
	req.LastEmailSent = &ts
	req.LastEmailType = string(kind)
	return nil
}

func (r *requestRepo) Delete(ctx context.Context, id string) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func sortByCreated(reqs []repository.RecipientRequest) {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.Before(reqs[j].CreatedAt) })
}

// ─── Sponsors ───

type sponsorRepo struct {
	conn *connection
	byID map[string]*repository.Sponsor
}

func (r *sponsorRepo) Create(ctx context.Context, input repository.CreateSponsorInput) (*repository.Sponsor, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for _, s := range r.byID {
		if strings.EqualFold(s.Email, input.Email) {
			return nil, repository.ErrConflict
		}
	}
	s := &repository.Sponsor{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[s.ID] = s
	out := *s
	return &out, nil
}

func (r *sponsorRepo) GetByID(ctx context.Context, id string) (*repository.Sponsor, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (r *sponsorRepo) GetByEmail(ctx context.Context, email string) (*repository.Sponsor, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	for _, s := range r.byID {
		if strings.EqualFold(s.Email, email) {
			out := *s
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ─── Posts ───

type postRepo struct {
	conn *connection
	byID map[string]*repository.Post
}

func (r *postRepo) Create(ctx context.Context, input repository.CreatePostInput) (*repository.Post, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	now := time.Now().UTC()
	p := &repository.Post{
		ID:         uuid.NewString(),
		AuthorID:   input.AuthorID,
		AuthorRole: input.AuthorRole,
		Title:      input.Title,
		Body:       input.Body,
		Status:     repository.PostActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.byID[p.ID] = p
	out := *p
	return &out, nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*repository.Post, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *postRepo) List(ctx context.Context, filter repository.ListPostsFilter) ([]repository.Post, error) {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var out []repository.Post
	for _, p := range r.byID {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *postRepo) Update(ctx context.Context, id string, input repository.UpdatePostInput) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if input.Title != nil {
		p.Title = *input.Title
	}
	if input.Body != nil {
		p.Body = *input.Body
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
