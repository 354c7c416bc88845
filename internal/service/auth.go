package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcodive/divesite/internal/apperror"
	"github.com/marcodive/divesite/internal/auth"
	"github.com/marcodive/divesite/internal/model"
	"github.com/marcodive/divesite/internal/repository"
)

// RegisterInput is the email+password sign-up payload.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the email+password sign-in payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService issues session tokens for the two sign-in paths: Google
// OAuth and email+password.
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

// LoginWithGoogle upserts the user from their Google profile and issues a
// session token. Repeat sign-ins keep the same internal user ID but refresh
// the stored name and avatar, so future reviews carry the current profile.
func (s *AuthService) LoginWithGoogle(ctx context.Context, gUser *auth.GoogleUser) (token string, user *model.User, err error) {
	user = &model.User{
		GoogleID:  gUser.ID,
		Email:     strings.ToLower(gUser.Email),
		Name:      gUser.Name,
		AvatarURL: gUser.AvatarURL,
	}

	if err := s.users.UpsertGoogle(ctx, user); err != nil {
		return "", nil, fmt.Errorf("upserting Google user: %w", err)
	}

	token, err = s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user signed in with Google", slog.String("userID", user.ID))
	return token, user, nil
}

// Register creates an email+password account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (token string, user *model.User, err error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	if err := validate.Struct(input); err != nil {
		return "", nil, apperror.ValidationFailed("register", "email, name, and a password of at least 8 characters are required")
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return "", nil, err
	}

	user = &model.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
	}

	if err := s.users.CreateWithPassword(ctx, user); err != nil {
		return "", nil, err
	}

	token, err = s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return token, user, nil
}

// Login verifies an email+password pair and issues a session token.
//
// Both the unknown-email and wrong-password paths return the same
// unauthorized error, so a caller can't probe which addresses have
// accounts.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (token string, user *model.User, err error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := validate.Struct(input); err != nil {
		return "", nil, apperror.ValidationFailed("login", "email and password are required")
	}

	user, err = s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return "", nil, apperror.Unauthorized("invalid email or password")
	}

	if user.PasswordHash == "" {
		// Google-only account; there is no password to check.
		return "", nil, apperror.Unauthorized("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, input.Password); err != nil {
		return "", nil, apperror.Unauthorized("invalid email or password")
	}

	token, err = s.tokens.Generate(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))
	return token, user, nil
}

// GetUser loads a user by ID, for the session-info endpoint.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
