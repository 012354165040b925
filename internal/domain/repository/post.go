package repository

import (
	"context"
	"time"
)

// PostStatus es el estado de publicación de un post.
type PostStatus string

const (
	PostActive PostStatus = "active"
	PostClosed PostStatus = "closed"
)

// AuthorRole indica qué tipo de usuario publicó el post.
type AuthorRole string

const (
	RoleSponsor   AuthorRole = "sponsor"
	RoleRecipient AuthorRole = "recipient"
)

// Post es una publicación (pedido de ayuda u ofrecimiento) en la plataforma.
type Post struct {
	ID         string
	AuthorID   string
	AuthorRole AuthorRole
	Title      string
	Body       string
	Status     PostStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreatePostInput contiene los datos para crear un post.
type CreatePostInput struct {
	AuthorID   string
	AuthorRole AuthorRole
	Title      string
	Body       string
}

// UpdatePostInput contiene los campos actualizables de un post.
type UpdatePostInput struct {
	Title  *string
	Body   *string
	Status *PostStatus
}

// ListPostsFilter opciones para listar posts.
type ListPostsFilter struct {
	Status   PostStatus // vacío = todos
	AuthorID string     // opcional
	Limit    int        // Default 50, max 200
	Offset   int
}

// PostRepository define operaciones sobre posts.
type PostRepository interface {
	// Create crea un post activo.
	Create(ctx context.Context, input CreatePostInput) (*Post, error)

	// GetByID busca un post por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Post, error)

	// List lista posts con paginación.
	List(ctx context.Context, filter ListPostsFilter) ([]Post, error)

	// Update actualiza campos de un post. Retorna ErrNotFound si no existe.
	Update(ctx context.Context, id string, input UpdatePostInput) error

	// Delete elimina un post. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
