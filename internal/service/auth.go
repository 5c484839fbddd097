package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/leozw/domainy/internal/auth"
	"github.com/leozw/domainy/internal/core"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer inputs.
	maxPasswordLength = 72
)

type AuthService struct {
	users  UserStore
	tokens *auth.Tokens
	logger *zap.Logger
	cost   int
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens *auth.Tokens, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger.With(zap.String("component", "auth_service")),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in core.RegisterInput) (*core.AuthResponse, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", core.ErrValidation, minPasswordLength)
	}
	if len(in.Password) > maxPasswordLength {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", core.ErrValidation, maxPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &core.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, fmt.Errorf("%w: user with this email already exists", core.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.respond(user)
}

// Login does not distinguish an unknown email from a wrong password.
func (s *AuthService) Login(ctx context.Context, in core.LoginInput) (*core.AuthResponse, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, core.ErrInvalidCredentials
	}

	return s.respond(user)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(token string) (uuid.UUID, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) respond(user *core.User) (*core.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &core.AuthResponse{User: user, Token: token}, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("%w: invalid email address", core.ErrValidation)
	}
	return strings.ToLower(addr.Address), nil
}
