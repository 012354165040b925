// Package posts contiene el controller de publicaciones.
package posts

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/http/dto"
	httperrors "github.com/dropDatabas3/learn2grow/internal/http/errors"
	"github.com/dropDatabas3/learn2grow/internal/http/helpers"
	"github.com/dropDatabas3/learn2grow/internal/http/middlewares"
	svc "github.com/dropDatabas3/learn2grow/internal/http/services/posts"
	"github.com/dropDatabas3/learn2grow/internal/observability/logger"
	"github.com/dropDatabas3/learn2grow/internal/security/token"
)

// Controller maneja el CRUD de posts.
type Controller struct {
	service *svc.Service
}

// New crea el controller de posts.
func New(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// RegisterPublic monta las rutas de lectura (sin auth).
func (c *Controller) RegisterPublic(r chi.Router) {
	r.Get("/", c.List)
	r.Get("/{id}", c.Get)
}

// RegisterAuthenticated monta las rutas de escritura (requieren auth).
func (c *Controller) RegisterAuthenticated(r chi.Router) {
	r.Post("/", c.Create)
	r.Patch("/{id}", c.Update)
	r.Delete("/{id}", c.Delete)
}

// List lista posts con filtros opcionales.
// GET /api/v1/posts?status=&author_id=&limit=&offset=
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Posts.List"))

	q := r.URL.Query()
	filter := repository.ListPostsFilter{
		Status:   repository.PostStatus(q.Get("status")),
		AuthorID: q.Get("author_id"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("limit"))
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("offset"))
			return
		}
		filter.Offset = n
	}

	posts, err := c.service.List(ctx, filter)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	out := dto.PostListResponse{
		Posts:  make([]dto.PostResponse, 0, len(posts)),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i := range posts {
		out.Posts = append(out.Posts, dto.NewPostResponse(&posts[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Get devuelve un post.
// GET /api/v1/posts/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Posts.Get"))

	p, err := c.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewPostResponse(p))
}

// Create crea un post con el usuario autenticado como autor.
// POST /api/v1/posts
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Posts.Create"))

	claims := middlewares.GetClaims(ctx)
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	role, ok := authorRole(claims.Role)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("admins cannot author posts"))
		return
	}

	var in dto.CreatePostRequest
	if err := helpers.DecodeJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	p, err := c.service.Create(ctx, svc.CreateInput{
		AuthorID:   claims.Subject,
		AuthorRole: role,
		Title:      in.Title,
		Body:       in.Body,
	})
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.NewPostResponse(p))
}

// Update edita un post propio (o cualquiera, siendo admin).
// PATCH /api/v1/posts/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Posts.Update"))

	claims := middlewares.GetClaims(ctx)
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var in dto.UpdatePostRequest
	if err := helpers.DecodeJSON(w, r, &in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	var status *repository.PostStatus
	if in.Status != nil {
		s := repository.PostStatus(*in.Status)
		status = &s
	}

	p, err := c.service.Update(ctx, chi.URLParam(r, "id"), claims.Subject,
		claims.Role == token.RoleAdmin, svc.UpdateInput{
			Title:  in.Title,
			Body:   in.Body,
			Status: status,
		})
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewPostResponse(p))
}

// Delete elimina un post propio (o cualquiera, siendo admin).
// DELETE /api/v1/posts/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Posts.Delete"))

	claims := middlewares.GetClaims(ctx)
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	err := c.service.Delete(ctx, chi.URLParam(r, "id"), claims.Subject,
		claims.Role == token.RoleAdmin)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func authorRole(r token.Role) (repository.AuthorRole, bool) {
	switch r {
	case token.RoleSponsor:
		return repository.RoleSponsor, true
	case token.RoleRecipient:
		return repository.RoleRecipient, true
	}
	return "", false
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch err {
	case svc.ErrMissingFields:
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case svc.ErrNotFound:
		httperrors.WriteError(w, httperrors.ErrNotFound)
	case svc.ErrForbidden:
		httperrors.WriteError(w, httperrors.ErrForbidden)
	case svc.ErrInvalidStatus:
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("status"))
	default:
		log.Error("unexpected post error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
