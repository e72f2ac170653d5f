package keygate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Logger is the minimal structured logger the package depends on. The server
// binary wires a logrus implementation; tests and defaults use defLogger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// TokenIssuer mints signed tokens bound to a user identity.
type TokenIssuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
}

// TokenVerifier validates a raw token against one key class and returns the
// embedded claims. Access and refresh tokens are signed with different
// secrets, so a token presented against the wrong class fails verification.
type TokenVerifier interface {
	VerifyAccessToken(raw string) (*TokenClaims, error)
	VerifyRefreshToken(raw string) (*TokenClaims, error)
}

// TokenService combines issuance and verification for both token classes.
type TokenService interface {
	TokenIssuer
	TokenVerifier
}

// Users is the store the session state machine mutates. The refresh-token
// slot on the user record is the only shared mutable state in the system.
type Users interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) (*User, error)

	SaveRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
}

// Authenticator holds the auth session transitions.
type Authenticator interface {
	Signup(ctx context.Context, name, email, password string) (*TokenPair, *User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
}

// TokenPair is the result of a successful signup or login. The refresh token
// travels only in the session cookie, never in a response body.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args...) }
func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args...) }

func (d defLogger) print(level, msg string, args ...any) {
	if len(args) == 0 {
		fmt.Printf("[%s] KEYGATE %s\n", level, msg)
		return
	}
	fmt.Printf("[%s] KEYGATE %s %v\n", level, msg, args)
}
