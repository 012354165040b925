package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
	"github.com/dropDatabas3/learn2grow/internal/security/password"
	"github.com/dropDatabas3/learn2grow/internal/security/token"
	"github.com/dropDatabas3/learn2grow/internal/store/adapters/memory"
)

// Params baratos para que los tests no quemen CPU en argon2.
var testParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func newTestService(t *testing.T) (*Service, repository.RequestRepository, repository.SponsorRepository) {
	t.Helper()
	conn := memory.NewConnection()
	issuer, err := token.NewIssuer("test-secret-0123456789", "learn2grow-test", time.Hour)
	require.NoError(t, err)

	adminHash, err := password.Hash(testParams, "admin-password-1")
	require.NoError(t, err)

	svc := New(Deps{
		Requests: conn.Requests(),
		Sponsors: conn.Sponsors(),
		Issuer:   issuer,
		Admin: AdminCredential{
			Email:        "root@learn2grow.test",
			PasswordHash: adminHash,
		},
	})
	return svc, conn.Requests(), conn.Sponsors()
}

func TestLogin_Admin(t *testing.T) {
	svc, _, _ := newTestService(t)

	res, err := svc.Login(context.Background(), "Root@Learn2Grow.test", "admin-password-1")
	require.NoError(t, err)
	require.Equal(t, token.RoleAdmin, res.Role)
	require.NotEmpty(t, res.AccessToken)
	require.True(t, res.ExpiresAt.After(time.Now()))
}

func TestLogin_AdminWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "root@learn2grow.test", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Sponsor(t *testing.T) {
	svc, _, sponsors := newTestService(t)
	ctx := context.Background()

	hash, err := password.Hash(testParams, "sponsor-password-1")
	require.NoError(t, err)
	sp, err := sponsors.Create(ctx, repository.CreateSponsorInput{
		Name: "Fundación", Email: "sponsor@example.org", PasswordHash: hash,
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "sponsor@example.org", "sponsor-password-1")
	require.NoError(t, err)
	require.Equal(t, token.RoleSponsor, res.Role)
	_ = sp
}

func TestLogin_RecipientRequiresApproval(t *testing.T) {
	svc, requests, _ := newTestService(t)
	ctx := context.Background()

	hash, err := password.Hash(testParams, "recipient-pass-1")
	require.NoError(t, err)
	req, err := requests.Create(ctx, repository.CreateRequestInput{
		Name: "Ana", Email: "ana@example.org", PasswordHash: hash,
	})
	require.NoError(t, err)

	// Pending: credencial válida pero sin aprobar.
	_, err = svc.Login(ctx, "ana@example.org", "recipient-pass-1")
	require.ErrorIs(t, err, ErrNotApproved)

	// Aprobada: entra con rol recipient.
	err = requests.Review(ctx, req.ID, repository.ReviewInput{
		Status: repository.StatusApproved, ReviewedAt: time.Now(),
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ana@example.org", "recipient-pass-1")
	require.NoError(t, err)
	require.Equal(t, token.RoleRecipient, res.Role)
	require.Equal(t, req.ID, mustParse(t, svc, res.AccessToken).Subject)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nadie@example.org", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "", "")
	require.ErrorIs(t, err, ErrMissingFields)
}

func mustParse(t *testing.T, svc *Service, raw string) *token.Claims {
	t.Helper()
	claims, err := svc.deps.Issuer.Parse(raw)
	require.NoError(t, err)
	return claims
}
