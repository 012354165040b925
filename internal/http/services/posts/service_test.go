package posts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/learn2grow/internal/cache"
	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/store/adapters/memory"
)

func newTestService(t *testing.T) (*Service, repository.PostRepository) {
	t.Helper()
	repo := memory.NewConnection().Posts()
	c, err := cache.New(cache.Config{Kind: "memory", DefaultTTL: time.Minute})
	require.NoError(t, err)
	return New(Deps{Repo: repo, Cache: c}), repo
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{
		AuthorID:   "sponsor-1",
		AuthorRole: repository.RoleSponsor,
		Title:      "Útiles escolares",
		Body:       "Kits completos para primaria.",
	})
	require.NoError(t, err)
	require.Equal(t, repository.PostActive, p.Status)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Útiles escolares", got.Title)
}

func TestCreate_MissingFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{AuthorID: "x", Title: "   "})
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestList_ServesHotPageFromCache(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		AuthorID: "sponsor-1", AuthorRole: repository.RoleSponsor,
		Title: "Uno", Body: "cuerpo",
	})
	require.NoError(t, err)

	filter := repository.ListPostsFilter{Status: repository.PostActive}
	first, err := svc.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Escritura directa al repo, sin pasar por el service: el cache
	// todavía sirve la página vieja.
	_, err = repo.Create(ctx, repository.CreatePostInput{
		AuthorID: "sponsor-2", AuthorRole: repository.RoleSponsor,
		Title: "Dos", Body: "cuerpo",
	})
	require.NoError(t, err)

	stale, err := svc.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, stale, 1, "la página caliente sale del cache")

	// Una mutación vía service invalida y refresca.
	_, err = svc.Create(ctx, CreateInput{
		AuthorID: "sponsor-3", AuthorRole: repository.RoleSponsor,
		Title: "Tres", Body: "cuerpo",
	})
	require.NoError(t, err)

	fresh, err := svc.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, fresh, 3)
}

func TestUpdate_OnlyAuthorOrAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{
		AuthorID: "recipient-1", AuthorRole: repository.RoleRecipient,
		Title: "Necesito libros", Body: "Para terminar el secundario.",
	})
	require.NoError(t, err)

	title := "Necesito libros de química"
	_, err = svc.Update(ctx, p.ID, "otro-usuario", false, UpdateInput{Title: &title})
	require.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Update(ctx, p.ID, "recipient-1", false, UpdateInput{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, got.Title)

	// Admin puede cerrar cualquier post.
	closed := repository.PostClosed
	got, err = svc.Update(ctx, p.ID, "admin", true, UpdateInput{Status: &closed})
	require.NoError(t, err)
	require.Equal(t, repository.PostClosed, got.Status)
}

func TestDelete_OnlyAuthorOrAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{
		AuthorID: "sponsor-1", AuthorRole: repository.RoleSponsor,
		Title: "Borrable", Body: "x",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, p.ID, "otro", false), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, p.ID, "sponsor-1", false))

	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
