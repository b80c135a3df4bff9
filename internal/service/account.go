package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sakif/volcano-explorer/internal/apperror"
	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
	"github.com/sakif/volcano-explorer/internal/repository"
)

// Profile request keys, as sent by clients.
const (
	fieldFirstName = "firstName"
	fieldLastName  = "lastName"
	fieldDOB       = "dob"
	fieldAddress   = "address"
)

const (
	msgCredentialsRequired = "Request body incomplete, both email and password are required"
	msgBadCredentials      = "Incorrect email or password"
	msgProfileIncomplete   = "Request body incomplete: firstName, lastName, dob and address are required."
	msgProfileNotStrings   = "Request body invalid: firstName, lastName and address must be strings only."
	msgDOBFormat           = "Invalid input: dob must be a real date in format YYYY-MM-DD."
	msgDOBFuture           = "Invalid input: dob must be a date in the past."
)

// AccountService handles registration, login and profiles.
//
// DEPENDENCIES (injected via NewAccountService):
//   - users      repository.UserRepository  → read/write accounts
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - tokens     *auth.TokenService         → issue JWTs at login
//   - logger     *slog.Logger               → structured logging
type AccountService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
	now       clock
}

func NewAccountService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
		now:       systemClock,
	}
}

// LoginResult is the bearer token handed out by Login.
type LoginResult struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// Register creates an account. Only the bcrypt digest of password is stored.
func (s *AccountService) Register(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return apperror.ValidationFailed("email", msgCredentialsRequired)
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return apperror.Internal(err)
	}

	if err := s.users.CreateUser(ctx, &model.User{Email: email, PasswordHash: hash}); err != nil {
		return apperror.Wrap("service/account: register", err)
	}

	s.logger.Info("user registered", slog.String("email", email))
	return nil
}

// Authenticate checks credentials. An unknown email and a wrong password
// both yield the same Unauthorized error.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (auth.Identity, error) {
	if email == "" || password == "" {
		return auth.Anonymous, apperror.ValidationFailed("email", msgCredentialsRequired)
	}

	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return auth.Anonymous, apperror.Unauthorized(msgBadCredentials)
		}
		return auth.Anonymous, apperror.Wrap("service/account: authenticate", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return auth.Anonymous, apperror.Unauthorized(msgBadCredentials)
		}
		return auth.Anonymous, apperror.Internal(err)
	}

	return auth.Identity{Email: user.Email}, nil
}

// Login authenticates and issues a bearer token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	id, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(id.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info("user logged in", slog.String("email", id.Email))

	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL() / time.Second),
	}, nil
}

// GetProfile returns email and names to anyone; dob and address only to the
// account owner.
func (s *AccountService) GetProfile(ctx context.Context, email string, caller auth.Identity) (*model.Profile, error) {
	if email == "" {
		return nil, apperror.ValidationFailed("email", "Email is a required parameter")
	}

	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, apperror.Wrap("service/account: get profile", err)
	}
	return projectProfile(user, auth.VisibilityForOwned(caller, user.Email)), nil
}

// UpdateProfile replaces all four profile fields of the caller's own account.
//
// fields is the decoded JSON object: every key must be present, firstName,
// lastName and address must be strings, and dob must be a real past (or
// today's) date in YYYY-MM-DD form.
func (s *AccountService) UpdateProfile(ctx context.Context, email string, fields map[string]any, caller auth.Identity) (*model.Profile, error) {
	if !caller.Authenticated() {
		return nil, apperror.Unauthorized(msgUnauthorized)
	}
	if !caller.Is(email) {
		return nil, apperror.Forbidden("Forbidden")
	}

	update, err := s.parseProfileUpdate(fields)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, email, update, s.now())
	if err != nil {
		return nil, apperror.Wrap("service/account: update profile", err)
	}

	s.logger.Info("profile updated", slog.String("email", email))
	return projectProfile(user, auth.Owner), nil
}

func (s *AccountService) parseProfileUpdate(fields map[string]any) (model.ProfileUpdate, error) {
	for _, key := range []string{fieldFirstName, fieldLastName, fieldDOB, fieldAddress} {
		if _, ok := fields[key]; !ok {
			return model.ProfileUpdate{}, apperror.ValidationFailed(key, msgProfileIncomplete)
		}
	}

	var u model.ProfileUpdate
	var ok bool
	if u.FirstName, ok = fields[fieldFirstName].(string); !ok {
		return u, apperror.ValidationFailed(fieldFirstName, msgProfileNotStrings)
	}
	if u.LastName, ok = fields[fieldLastName].(string); !ok {
		return u, apperror.ValidationFailed(fieldLastName, msgProfileNotStrings)
	}
	if u.Address, ok = fields[fieldAddress].(string); !ok {
		return u, apperror.ValidationFailed(fieldAddress, msgProfileNotStrings)
	}
	if u.DateOfBirth, ok = fields[fieldDOB].(string); !ok {
		return u, apperror.ValidationFailed(fieldDOB, msgDOBFormat)
	}

	dob, err := time.Parse(time.DateOnly, u.DateOfBirth)
	if err != nil {
		return u, apperror.ValidationFailed(fieldDOB, msgDOBFormat)
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dob.After(today) {
		return u, apperror.ValidationFailed(fieldDOB, msgDOBFuture)
	}

	return u, nil
}

func projectProfile(u *model.User, v auth.Visibility) *model.Profile {
	p := &model.Profile{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if v == auth.Owner {
		p.PrivateDetails = &model.PrivateDetails{
			DateOfBirth: u.DateOfBirth,
			Address:     u.Address,
		}
	}
	return p
}
