package dto

import (
	"time"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
)

// CreatePostRequest representa la creación de un post.
type CreatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// UpdatePostRequest representa la edición parcial de un post.
type UpdatePostRequest struct {
	Title  *string `json:"title,omitempty"`
	Body   *string `json:"body,omitempty"`
	Status *string `json:"status,omitempty"` // "active" | "closed"
}

// PostResponse es la vista pública de un post.
type PostResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorRole string    `json:"author_role"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewPostResponse mapea el modelo de dominio a la vista pública.
func NewPostResponse(p *repository.Post) PostResponse {
	return PostResponse{
		ID:         p.ID,
		AuthorID:   p.AuthorID,
		AuthorRole: string(p.AuthorRole),
		Title:      p.Title,
		Body:       p.Body,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// PostListResponse es la respuesta paginada del listado de posts.
type PostListResponse struct {
	Posts  []PostResponse `json:"posts"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
