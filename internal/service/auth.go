package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

// AuthService handles registration and login.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                                 ↘ PasswordService (bcrypt)
//	                                 ↘ TokenService (JWT)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// errBadCredentials is returned for both "no such user" and "wrong password";
// the response must not reveal which usernames exist.
func errBadCredentials() error {
	return apperror.Unauthorized("Invalid username/password")
}

// Register creates a regular (non-admin) account and returns a token for it.
// Whatever isAdmin the client sent is ignored; only an admin creating a user
// through UserService.Create can grant it.
func (s *AuthService) Register(ctx context.Context, nu model.NewUser) (string, error) {
	nu.IsAdmin = false

	user, err := register(ctx, s.users, s.passwords, nu)
	if err != nil {
		return "", err
	}

	s.logger.Info("user registered", slog.String("username", user.Username))

	return s.issue(user)
}

// Authenticate checks a username and password and returns the user.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("", "username and password are required")
	}

	ua, err := s.users.GetAuthByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errBadCredentials()
		}
		return nil, fmt.Errorf("service/auth: loading %s: %w", username, err)
	}

	if !s.passwords.Verify(ua.PasswordHash, password) {
		s.logger.Warn("failed login", slog.String("username", username))
		return nil, errBadCredentials()
	}

	user := ua.User
	return &user, nil
}

// Login is Authenticate followed by issuing a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.issue(user)
}

func (s *AuthService) issue(u *model.User) (string, error) {
	token, err := s.tokens.Issue(auth.Claims{Username: u.Username, IsAdmin: u.IsAdmin})
	if err != nil {
		return "", fmt.Errorf("service/auth: issuing token for %s: %w", u.Username, err)
	}
	return token, nil
}

// register validates nu, rejects a taken username BEFORE hashing (bcrypt is
// the expensive part), then stores the user. The store's UNIQUE constraint
// still catches a concurrent registration that slips between the two.
func register(ctx context.Context, users repository.UserRepository, passwords *auth.PasswordService, nu model.NewUser) (*model.User, error) {
	nu, err := validateNewUser(nu)
	if err != nil {
		return nil, err
	}

	exists, err := users.Exists(ctx, nu.Username)
	if err != nil {
		return nil, fmt.Errorf("service: checking username %s: %w", nu.Username, err)
	}
	if exists {
		return nil, apperror.Duplicate("username", nu.Username)
	}

	hash, err := passwords.Hash(nu.Password)
	if err != nil {
		return nil, fmt.Errorf("service: hashing password: %w", err)
	}

	user, err := users.Create(ctx, nu, hash)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func validateNewUser(nu model.NewUser) (model.NewUser, error) {
	var err error
	if nu.Username, err = requireText("username", nu.Username, MaxUsernameLength); err != nil {
		return nu, err
	}
	if err = validatePassword(nu.Password); err != nil {
		return nu, err
	}
	if nu.FirstName, err = requireText("firstName", nu.FirstName, 0); err != nil {
		return nu, err
	}
	if nu.LastName, err = requireText("lastName", nu.LastName, 0); err != nil {
		return nu, err
	}
	if nu.Email, err = validateEmail(nu.Email); err != nil {
		return nu, err
	}
	return nu, nil
}

func validatePassword(p string) error {
	if len(p) < MinPasswordLength {
		return apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(p) > MaxPasswordLength {
		return apperror.ValidationFailed("password", fmt.Sprintf("password must be %d bytes or fewer", MaxPasswordLength))
	}
	return nil
}

func validateEmail(e string) (string, error) {
	e, err := requireText("email", e, 0)
	if err != nil {
		return "", err
	}
	if at := strings.IndexByte(e, '@'); at < 1 || at == len(e)-1 {
		return "", apperror.ValidationFailed("email", "invalid email format")
	}
	return e, nil
}
