package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kantina/internal/core/apperror"
	"kantina/pkg/logger"
)

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Service handles authentication.
type Service struct {
	repo Repository
	jwt  *JWTService
	log  *logger.Logger
}

// NewService creates an auth service.
func NewService(repo Repository, jwtService *JWTService, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		jwt:  jwtService,
		log:  log.WithComponent("auth"),
	}
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	user, err := s.repo.GetByEmail(ctx, creds.Email)
	if err != nil {
		// Uniform error so the response does not reveal whether the
		// account exists.
		s.log.WithContext(ctx).Infow("login failed", "email", creds.Email)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.log.WithContext(ctx).Infow("login failed", "email", creds.Email)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	accessToken, expiresAt, err := s.jwt.GenerateAccessToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, nil, apperror.NewInternal(err)
	}

	s.log.WithContext(ctx).Infow("login succeeded", "user_id", user.ID)
	return &Token{AccessToken: accessToken, ExpiresAt: expiresAt}, user, nil
}
