package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/internal/users"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *TokenManager) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	userSvc, err := users.NewService(users.NewRepository(conn))
	require.NoError(t, err)
	_, err = userSvc.Create(context.Background(), users.Input{
		Username:    "dana",
		Password:    "secret",
		DisplayName: "Dana",
		Role:        enums.RoleCashier,
	})
	require.NoError(t, err)

	tokens, err := NewTokenManager("test-secret", "pos-backend", time.Hour)
	require.NoError(t, err)
	svc, err := NewService(userSvc, tokens, nil)
	require.NoError(t, err)
	return svc, tokens
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newTestService(t)

	token, user, err := svc.Login(context.Background(), "dana", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "dana", user.Username)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "dana", claims.Username)
	require.Equal(t, "Dana", claims.DisplayName)
	require.Equal(t, enums.RoleCashier, claims.Role)
	require.Equal(t, user.ID.String(), claims.Subject)
}

func TestLoginRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "dana", "wrong")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)

	_, _, err = svc.Login(ctx, "ghost", "secret")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, _, err = svc.Login(ctx, "", "")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestVerifyRejectsTamperedAndExpiredTokens(t *testing.T) {
	svc, tokens := newTestService(t)

	token, _, err := svc.Login(context.Background(), "dana", "secret")
	require.NoError(t, err)

	_, err = svc.Verify(token + "x")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Verify("not-a-token")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Verify(token)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "expired token must be rejected")
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	_, tokens := newTestService(t)

	other, err := NewTokenManager("test-secret", "someone-else", time.Hour)
	require.NoError(t, err)
	token, err := other.Issue(&models.User{Username: "dana", Role: enums.RoleCashier})
	require.NoError(t, err)

	_, err = tokens.Verify(token)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}
