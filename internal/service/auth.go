package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/shop_api/internal/events"
	"github.com/Skotchmaster/shop_api/internal/hash"
	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/tokens"
)

const maxUsernameLen = 64

var ErrAdminSignupDisabled = errors.New("admin registration is disabled")

type AuthService struct {
	Notifier
	Repo             *repo.GormRepo
	Tokens           *tokens.Service
	AllowAdminSignup bool
	// HashPassword defaults to hash.HashPassword.
	HashPassword func(string) (string, error)
}

func NewAuthService(r *repo.GormRepo, ts *tokens.Service, n Notifier, allowAdminSignup bool) *AuthService {
	return &AuthService{
		Notifier:         n,
		Repo:             r,
		Tokens:           ts,
		AllowAdminSignup: allowAdminSignup,
	}
}

type RegisterResult struct {
	Token string
	Role  models.Role
}

type userRegistered struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func validateCredentials(username, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("username is required: %w", ErrValidation)
	case len(username) > maxUsernameLen:
		return fmt.Errorf("username longer than %d: %w", maxUsernameLen, ErrValidation)
	case password == "":
		return fmt.Errorf("password is required: %w", ErrValidation)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, username, password string, role models.Role) (*RegisterResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", username)

	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrValidation)
	}
	if role == models.RoleAdmin && !s.AllowAdminSignup {
		return nil, ErrAdminSignupDisabled
	}

	exists, err := s.Repo.UserExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("register %s: %w", username, repo.ErrUserExists)
	}

	hasher := s.HashPassword
	if hasher == nil {
		hasher = hash.HashPassword
	}
	digest, err := hasher(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, PasswordHash: digest, Role: role}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	token, err := s.Tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicUser, user.Username, events.New("user_registered", userRegistered{
		Username: user.Username,
		Role:     user.Role,
	}))
	l.Info("user_registered", "role", user.Role)
	return &RegisterResult{Token: token, Role: user.Role}, nil
}

// Login returns repo.ErrUserNotFound or repo.ErrInvalidCredentials on a
// failed attempt so callers can tell the two apart.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if err := validateCredentials(username, password); err != nil {
		return "", err
	}

	user, err := s.Repo.VerifyCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}

	role, err := s.Repo.RoleOf(ctx, user.Username)
	if err != nil {
		return "", err
	}
	return s.Tokens.Issue(user.Username, role)
}
