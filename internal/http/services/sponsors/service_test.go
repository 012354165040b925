package sponsors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/security/password"
	"github.com/dropDatabas3/learn2grow/internal/store/adapters/memory"
)

func newTestService(t *testing.T) (*Service, repository.SponsorRepository) {
	t.Helper()
	repo := memory.NewConnection().Sponsors()
	return New(Deps{Repo: repo, Policy: password.Policy{MinLength: 8}}), repo
}

func TestRegister_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sp, err := svc.Register(ctx, RegisterInput{
		Name:     "Fundación Demo",
		Email:    "  Fundacion@Example.ORG ",
		Password: "sponsor-pass-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sp.ID)
	require.Equal(t, "fundacion@example.org", sp.Email)
	require.True(t, password.Verify("sponsor-pass-1", sp.PasswordHash))

	got, err := svc.Get(ctx, sp.ID)
	require.NoError(t, err)
	require.Equal(t, "Fundación Demo", got.Name)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "X", Email: "x@x.com"})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Register(ctx, RegisterInput{Name: "X", Email: "sin-arroba", Password: "sponsor-pass-1"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, RegisterInput{Name: "X", Email: "x@x.com", Password: "corta"})
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := RegisterInput{Name: "Uno", Email: "dup@example.org", Password: "sponsor-pass-1"}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	in.Name = "Dos"
	_, err = svc.Register(ctx, in)
	require.ErrorIs(t, err, ErrEmailInUse)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrNotFound)
}
