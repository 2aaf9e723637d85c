// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/omnidash/omnidash/internal/audit"
	"github.com/omnidash/omnidash/internal/auth"
	"github.com/omnidash/omnidash/internal/metrics"
	"github.com/omnidash/omnidash/internal/model"
	"github.com/omnidash/omnidash/internal/store"
)

// Service errors.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrBlankField         = errors.New("field cannot be empty")
)

// Federated-login sentinel record. The password marker is not a valid
// Argon2id digest, so that account can never log in via the password path.
const (
	federatedEmail          = "google_user@example.com"
	federatedName           = "Google User"
	federatedPasswordMarker = "oauth"
)

// ProfileService handles registration, login and profile management over the
// in-memory credential store.
type ProfileService struct {
	store   *store.Store
	tokens  *auth.TokenService
	logger  *slog.Logger
	metrics metrics.Recorder
	audit   audit.Publisher
}

// NewProfileService creates a new ProfileService.
func NewProfileService(st *store.Store, tokens *auth.TokenService, logger *slog.Logger, recorder metrics.Recorder, publisher audit.Publisher) *ProfileService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = audit.NewNoop()
	}
	return &ProfileService{
		store:   st,
		tokens:  tokens,
		logger:  logger.With("component", "service.profile"),
		metrics: recorder,
		audit:   publisher,
	}
}

// Register creates a new account with a hashed password and a generated id.
// Fails with ErrDuplicateEmail when the email is already registered.
func (s *ProfileService) Register(ctx context.Context, email, name, password string) (model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.PutIfAbsent(user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, err
	}

	s.metrics.IncUserRegistered()
	s.audit.EmitAsync(audit.Event{Action: audit.ActionRegister, UserID: user.ID, Email: user.Email})
	s.logger.Info("user registered", "user_id", user.ID)

	return user, nil
}

// Login verifies the credentials and issues an access token.
// An unknown email and a wrong password are deliberately indistinguishable.
func (s *ProfileService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.Get(email)
	if err != nil {
		s.metrics.IncLoginFailure()
		s.audit.EmitAsync(audit.Event{Action: audit.ActionLoginFailure, Email: email})
		return "", ErrInvalidCredentials
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailure()
		s.audit.EmitAsync(audit.Event{Action: audit.ActionLoginFailure, Email: email})
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()
	s.audit.EmitAsync(audit.Event{Action: audit.ActionLoginSuccess, UserID: user.ID, Email: user.Email})

	return token, nil
}

// Resolve decodes the token and looks up the subject in the store.
// A failed signature check and a subject that no longer resolves surface the
// same ErrInvalidToken to the caller; the two causes are logged and counted
// separately for operability.
func (s *ProfileService) Resolve(token string) (model.User, error) {
	email, err := s.tokens.Decode(token)
	if err != nil {
		s.metrics.IncTokenRejected("decode_failed")
		s.logger.Warn("token rejected", "reason", "decode_failed")
		return model.User{}, ErrInvalidToken
	}

	user, err := s.store.Get(email)
	if err != nil {
		s.metrics.IncTokenRejected("unknown_subject")
		s.logger.Warn("token rejected", "reason", "unknown_subject")
		return model.User{}, ErrInvalidToken
	}

	return user, nil
}

// Me returns the profile of the token's subject.
func (s *ProfileService) Me(ctx context.Context, token string) (model.User, error) {
	return s.Resolve(token)
}

// EditInput defines the optional profile updates. A nil field is left
// untouched; a provided field takes effect even when empty, except Email and
// Password, for which an empty value is rejected with ErrBlankField.
type EditInput struct {
	Name     *string
	Bio      *string
	Phone    *string
	Email    *string
	Password *string
}

// Edit applies the provided updates to the token's subject. When Email is
// provided the store key is relocated inside a single critical section, so
// the record is never observable under both keys or neither. Fails with
// ErrDuplicateEmail when the target email already belongs to another record.
func (s *ProfileService) Edit(ctx context.Context, token string, input EditInput) (model.User, error) {
	user, err := s.Resolve(token)
	if err != nil {
		return model.User{}, err
	}

	if input.Email != nil && *input.Email == "" {
		return model.User{}, fmt.Errorf("email: %w", ErrBlankField)
	}

	var hash string
	if input.Password != nil {
		if *input.Password == "" {
			return model.User{}, fmt.Errorf("password: %w", ErrBlankField)
		}
		// Hash outside the store lock; Argon2id is deliberately slow.
		hash, err = auth.HashPassword(*input.Password)
		if err != nil {
			return model.User{}, fmt.Errorf("hash password: %w", err)
		}
	}

	updated, err := s.store.Update(user.Email, func(u *model.User) error {
		if input.Name != nil {
			u.Name = *input.Name
		}
		if input.Bio != nil {
			u.Bio = *input.Bio
		}
		if input.Phone != nil {
			u.Phone = *input.Phone
		}
		if input.Email != nil {
			u.Email = *input.Email
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			return model.User{}, ErrDuplicateEmail
		case errors.Is(err, store.ErrUserNotFound):
			// The record vanished between resolve and update; to the caller
			// this is indistinguishable from a stale token.
			return model.User{}, ErrInvalidToken
		default:
			return model.User{}, err
		}
	}

	s.metrics.IncProfileEdited()
	s.audit.EmitAsync(audit.Event{Action: audit.ActionProfileEdit, UserID: updated.ID, Email: updated.Email})
	s.logger.Info("profile updated",
		"user_id", updated.ID,
		"email_changed", input.Email != nil,
	)

	return updated, nil
}

// FederatedLogin simulates a third-party login. The assertion is not
// verified against any identity provider; a sentinel record is created on
// first use and every call issues a token for it.
func (s *ProfileService) FederatedLogin(ctx context.Context, assertion string) (string, error) {
	now := time.Now().UTC()
	user := model.User{
		ID:           ulid.Make().String(),
		Email:        federatedEmail,
		Name:         federatedName,
		PasswordHash: federatedPasswordMarker,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Create-if-absent under one lock keeps repeated calls idempotent:
	// the first caller's record wins and keeps its id.
	if err := s.store.PutIfAbsent(user); err != nil && !errors.Is(err, store.ErrEmailTaken) {
		return "", err
	}

	token, err := s.tokens.Issue(federatedEmail)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncFederatedLogin()
	s.audit.EmitAsync(audit.Event{Action: audit.ActionFederatedLogin, Email: federatedEmail})

	return token, nil
}
