package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

// UserService manages accounts. Who may call each method (admin, or the
// user themselves) is enforced by middleware on the /users routes.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Create is the admin-only account creation. Unlike registration it honours
// nu.IsAdmin. The returned token is for the new user, not the admin.
func (s *UserService) Create(ctx context.Context, nu model.NewUser) (*model.User, string, error) {
	user, err := register(ctx, s.users, s.passwords, nu)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(auth.Claims{Username: user.Username, IsAdmin: user.IsAdmin})
	if err != nil {
		return nil, "", fmt.Errorf("service/user: issuing token for %s: %w", user.Username, err)
	}

	s.logger.Info("user created",
		slog.String("username", user.Username),
		slog.Bool("isAdmin", user.IsAdmin),
	)
	return user, token, nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	users, err := s.users.List(ctx, listOptions(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// Update applies a partial patch. A new password is validated and hashed
// here; the repository only ever sees the digest.
func (s *UserService) Update(ctx context.Context, username string, patch repository.UserPatch) (*model.User, error) {
	if patch.Empty() {
		return nil, apperror.ValidationFailed("", "No data")
	}

	var err error
	if patch.FirstName, err = optionalText("firstName", patch.FirstName, 0); err != nil {
		return nil, err
	}
	if patch.LastName, err = optionalText("lastName", patch.LastName, 0); err != nil {
		return nil, err
	}
	if patch.Email != nil {
		email, err := validateEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("service/user: hashing password: %w", err)
		}
		patch.Password = &hash
	}

	user, err := s.users.Update(ctx, username, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", slog.String("username", username))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.String("username", username))
	return nil
}
