package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kantina/internal/core/apperror"
	"kantina/pkg/logger"
)

type stubRepo struct {
	users map[string]*User
}

func (r *stubRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", email)
}

func newTestAuth(t *testing.T) (*Service, *User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := NewUser("admin@kantina.local", string(hash))
	repo := &stubRepo{users: map[string]*User{user.Email: user}}
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, jwtService, logger.Default()), user
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, user := newTestAuth(t)

	token, got, err := svc.Login(context.Background(), Credentials{
		Email:    "admin@kantina.local",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, token.AccessToken)

	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	claims, err := jwtService.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), claims.UserID)
	require.Equal(t, user.Email, claims.Email)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "admin@kantina.local",
		Password: "wrong",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLoginRejectsUnknownUserUniformly(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "nobody@kantina.local",
		Password: "s3cret",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, user := newTestAuth(t)
	user.IsActive = false

	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "admin@kantina.local",
		Password: "s3cret",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	token, _, err := issuer.GenerateAccessToken("u1", "a@b.c")
	require.NoError(t, err)

	other := NewJWTService(DefaultJWTConfig("secret-b"))
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}
