package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/tillpoint/pos-backend/internal/users"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
	"github.com/tillpoint/pos-backend/pkg/logger"
)

// Service authenticates operators and issues session tokens. Passwords are
// stored and compared in plain text; the terminal runs on a trusted device.
type Service interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Verify(token string) (*Claims, error)
}

type service struct {
	users  users.Service
	tokens *TokenManager
	logg   *logger.Logger
}

// NewService wires the login flow with the provided stack.
func NewService(userSvc users.Service, tokens *TokenManager, logg *logger.Logger) (Service, error) {
	if userSvc == nil {
		return nil, fmt.Errorf("user service required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token manager required")
	}
	return &service{users: userSvc, tokens: tokens, logg: logg}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return "", nil, invalidCredentials()
		}
		return "", nil, err
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithUsername(ctx, username), "login rejected")
		}
		return "", nil, invalidCredentials()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, username), "login accepted")
	}
	return token, user, nil
}

func (s *service) Verify(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

// invalidCredentials is deliberately identical for unknown users and wrong
// passwords.
func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}
