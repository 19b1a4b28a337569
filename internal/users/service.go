package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpoint/pos-backend/pkg/db"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
)

// Service exposes operator administration.
type Service interface {
	List(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, input Input) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Input captures the admin payload for creating or updating an operator. An
// empty Password on update keeps the stored one.
type Input struct {
	Username    string
	Password    string
	DisplayName string
	Role        enums.Role
}

type service struct {
	repo Repository
}

// NewService wires a user service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.User, error) {
	if err := validateInput(input, true); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          uuid.New(),
		Username:    strings.TrimSpace(input.Username),
		Password:    input.Password,
		DisplayName: displayNameOrUsername(input),
		Role:        input.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, err
	}
	return user, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.User, error) {
	if err := validateInput(input, false); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}

	// Demoting the only admin would lock everyone out of administration.
	if user.Role == enums.RoleAdmin && input.Role != enums.RoleAdmin {
		admins, err := s.repo.CountByRole(ctx, enums.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "last admin is protected")
		}
	}

	user.Username = strings.TrimSpace(input.Username)
	user.DisplayName = displayNameOrUsername(input)
	user.Role = input.Role
	if input.Password != "" {
		user.Password = input.Password
	}
	if err := s.repo.Save(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, err
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return err
	}

	if user.Role == enums.RoleAdmin {
		admins, err := s.repo.CountByRole(ctx, enums.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return pkgerrors.New(pkgerrors.CodeConflict, "last admin is protected")
		}
	}

	return s.repo.Delete(ctx, id)
}

func validateInput(input Input, requirePassword bool) error {
	if strings.TrimSpace(input.Username) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if requirePassword && input.Password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	return nil
}

func displayNameOrUsername(input Input) string {
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(input.Username)
}
