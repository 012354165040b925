// Package posts implementa las publicaciones de la plataforma, con un
// cache de corta vida sobre el listado más consultado (posts activos,
// primera página).
package posts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/learn2grow/internal/cache"
	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
)

// Errores del service
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrNotFound      = errors.New("post not found")
	ErrForbidden     = errors.New("not the author")
	ErrInvalidStatus = errors.New("invalid post status")
)

const (
	hotListKey = "posts:active:p0"
	hotListTTL = 30 * time.Second
)

// CreateInput son los datos de creación de un post.
type CreateInput struct {
	AuthorID   string
	AuthorRole repository.AuthorRole
	Title      string
	Body       string
}

// UpdateInput son los campos editables de un post.
type UpdateInput struct {
	Title  *string
	Body   *string
	Status *repository.PostStatus
}

// Deps contiene las dependencias del service.
type Deps struct {
	Repo  repository.PostRepository
	Cache cache.Client // nil = sin cache
}

// Service implementa las operaciones sobre posts.
type Service struct {
	deps Deps
}

// New crea el service de posts.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

// Create crea un post activo y invalida el listado cacheado.
func (s *Service) Create(ctx context.Context, in CreateInput) (*repository.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if in.AuthorID == "" || in.Title == "" || in.Body == "" {
		return nil, ErrMissingFields
	}

	p, err := s.deps.Repo.Create(ctx, repository.CreatePostInput{
		AuthorID:   in.AuthorID,
		AuthorRole: in.AuthorRole,
		Title:      in.Title,
		Body:       in.Body,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.From(ctx).Info("post created",
		logger.PostID(p.ID),
		logger.String("author_role", string(p.AuthorRole)),
	)
	return p, nil
}

// Get busca un post por ID.
func (s *Service) Get(ctx context.Context, id string) (*repository.Post, error) {
	p, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List lista posts. La primera página de posts activos sin filtro de
// autor se sirve del cache; un miss cae al repo y repobla.
func (s *Service) List(ctx context.Context, filter repository.ListPostsFilter) ([]repository.Post, error) {
	if filter.Status != "" && filter.Status != repository.PostActive && filter.Status != repository.PostClosed {
		return nil, ErrInvalidStatus
	}

	cacheable := s.deps.Cache != nil &&
		filter.Status == repository.PostActive &&
		filter.AuthorID == "" && filter.Offset == 0 && filter.Limit == 0

	if cacheable {
		if raw, err := s.deps.Cache.Get(ctx, hotListKey); err == nil {
			var cached []repository.Post
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	posts, err := s.deps.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if raw, err := json.Marshal(posts); err == nil {
			if err := s.deps.Cache.Set(ctx, hotListKey, string(raw), hotListTTL); err != nil {
				logger.From(ctx).Warn("post list cache set failed", logger.Err(err))
			}
		}
	}
	return posts, nil
}

// Update edita un post. Solo el autor (o asAdmin) puede hacerlo.
func (s *Service) Update(ctx context.Context, id, actorID string, asAdmin bool, in UpdateInput) (*repository.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !asAdmin && p.AuthorID != actorID {
		return nil, ErrForbidden
	}
	if in.Status != nil && *in.Status != repository.PostActive && *in.Status != repository.PostClosed {
		return nil, ErrInvalidStatus
	}

	err = s.deps.Repo.Update(ctx, id, repository.UpdatePostInput{
		Title:  in.Title,
		Body:   in.Body,
		Status: in.Status,
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete elimina un post. Solo el autor (o asAdmin) puede hacerlo.
func (s *Service) Delete(ctx context.Context, id, actorID string, asAdmin bool) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !asAdmin && p.AuthorID != actorID {
		return ErrForbidden
	}

	if err := s.deps.Repo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Delete(ctx, hotListKey); err != nil {
		logger.From(ctx).Warn("post list cache invalidation failed", logger.Err(err))
	}
}
