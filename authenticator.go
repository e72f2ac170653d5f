package keygate

import (
	"context"
	"crypto/subtle"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Auther drives the per-user session state machine. A user is LoggedOut when
// the stored refresh-token slot is empty and Active when it holds a token;
// Signup and Login transition to Active by overwriting the slot, Logout
// transitions back by clearing it. Refresh reads the slot without mutating
// it, there is no rotation.
type Auther struct {
	users  Users
	tokens TokenService
	logger Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(users Users, tokens TokenService) *Auther {
	return &Auther{
		users:  users,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

var _ Authenticator = (*Auther)(nil)

// Signup registers a new user and opens a session. The email must be unused;
// the created record defaults to the USER role.
func (s *Auther) Signup(ctx context.Context, name, email, password string) (*TokenPair, *User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.Create(ctx, &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID.String())
	return pair, user, nil
}

// Login verifies credentials and opens a session. An unknown email and a
// wrong password return the identical error so the response cannot confirm
// whether an account exists. Any refresh token from an earlier session is
// overwritten and becomes unusable.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID.String())
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token. The token must
// verify cryptographically AND match the stored slot byte for byte; a token
// superseded by a later login or cleared by logout fails the second check
// even though its signature is still good. The stored token is left in place.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrMissingToken
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.resolveUser(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		s.logger.Warn("refresh token superseded or revoked", "user_id", user.ID.String())
		return "", ErrRefreshSuperseded
	}

	return s.tokens.IssueAccessToken(user.ID.String())
}

// Logout closes the session named by the refresh token. It is idempotent:
// a missing or invalid token is a no-op success, since there is nothing to
// invalidate. The caller always responds no-content regardless of branch so
// an unauthenticated request learns nothing about token validity.
func (s *Auther) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	user, err := s.resolveUser(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	if err := s.users.ClearRefreshToken(ctx, user.ID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	s.logger.Info("user logged out", "user_id", user.ID.String())
	return nil
}

// openSession issues a token pair and persists the refresh half, making it
// the single authoritative token for the user.
func (s *Auther) openSession(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID.String())
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefreshToken(userID.String())
	if err != nil {
		return nil, err
	}

	if err := s.users.SaveRefreshToken(ctx, userID, refresh); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Auther) resolveUser(ctx context.Context, rawID string) (*User, error) {
	return resolveUser(ctx, s.users, rawID)
}

// resolveUser loads a user by its string-form id. An unparseable id reads as
// a missing user rather than a distinct failure.
func resolveUser(ctx context.Context, users Users, rawID string) (*User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return users.GetByID(ctx, id)
}
