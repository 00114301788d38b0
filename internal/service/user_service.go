package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/auth"
	"github.com/campus-mts/mts/internal/domain"
	"github.com/campus-mts/mts/internal/repository"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// UserService manages accounts. Only admins reach the write paths.
type UserService struct {
	users      repository.UserRepository
	catalog    CatalogInvalidator
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles user service collaborators.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Catalog    CatalogInvalidator
	BcryptCost int
	Logger     *zap.Logger
}

// UserInput is the create/update payload. An empty Password on update keeps the current one.
type UserInput struct {
	Name       string
	Password   string
	Department string
	Role       domain.Role
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		catalog:    deps.Catalog,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return user, nil
}

// Create registers a new account.
func (s *UserService) Create(ctx context.Context, input UserInput) (*domain.User, error) {
	if err := validateUserInput(input, true); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, passwordError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Department:   strings.TrimSpace(input.Department),
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidate(ctx)
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update edits an account.
func (s *UserService) Update(ctx context.Context, id int64, input UserInput) (*domain.User, error) {
	if err := validateUserInput(input, false); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	user.Name = strings.TrimSpace(input.Name)
	user.Department = strings.TrimSpace(input.Department)
	user.Role = input.Role
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, passwordError(err)
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	s.invalidate(ctx)
	return user, nil
}

// Delete removes an account. Tickets keep their rows with the creator or technician cleared.
func (s *UserService) Delete(ctx context.Context, requester *domain.User, id int64) error {
	if requester != nil && requester.ID == id {
		return apperrors.NewForbidden("cannot delete own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return apperrors.MapDeleteError(err, "user", id)
	}
	s.invalidate(ctx)
	return nil
}

func (s *UserService) invalidate(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
}

func validateUserInput(input UserInput, creating bool) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewMissingField("name")
	}
	if creating && input.Password == "" {
		return apperrors.NewMissingField("password")
	}
	if input.Role == "" {
		return apperrors.NewMissingField("role")
	}
	if !input.Role.Valid() {
		return apperrors.NewInvalidField("role", "must be admin, maintenance or faculty/staff")
	}
	return nil
}

func passwordError(err error) error {
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return apperrors.NewInvalidField("password", err.Error())
	}
	return apperrors.NewInternalError(err)
}

// notFoundOr turns pgx.ErrNoRows into a NotFound for resource and maps anything else.
func notFoundOr(err error, resource string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

// EnsureAdmin creates the bootstrap administrator unless a user with that name exists.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, password string) (bool, error) {
	if _, err := s.users.GetByName(ctx, strings.TrimSpace(name)); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, apperrors.MapError(err)
	}
	if _, err := s.Create(ctx, UserInput{Name: name, Password: password, Role: domain.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}
