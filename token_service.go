package keygate

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// SigningConfig holds the secret and validity window for one token class.
type SigningConfig struct {
	Key []byte
	TTL time.Duration
}

// TokenServiceImpl implements the TokenService interface. Access and refresh
// tokens are signed with distinct secrets so neither can be replayed against
// the other class's verifier.
type TokenServiceImpl struct {
	access  SigningConfig
	refresh SigningConfig
	issuer  string
	logger  Logger
	now     func() time.Time
}

// NewTokenService creates a new TokenService instance
func NewTokenService(access, refresh SigningConfig, issuer string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		access:  access,
		refresh: refresh,
		issuer:  issuer,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the verification clock, useful for expiry tests.
func (ts *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.now = now
	}
	return ts
}

var _ TokenService = (*TokenServiceImpl)(nil)

// IssueAccessToken mints a short-lived token carrying the user identity.
func (ts *TokenServiceImpl) IssueAccessToken(userID string) (string, error) {
	return ts.sign(userID, ts.access)
}

// IssueRefreshToken mints a long-lived token carrying the user identity.
func (ts *TokenServiceImpl) IssueRefreshToken(userID string) (string, error) {
	return ts.sign(userID, ts.refresh)
}

// VerifyAccessToken validates raw against the access key class.
func (ts *TokenServiceImpl) VerifyAccessToken(raw string) (*TokenClaims, error) {
	return ts.verify(raw, ts.access)
}

// VerifyRefreshToken validates raw against the refresh key class.
func (ts *TokenServiceImpl) VerifyRefreshToken(raw string) (*TokenClaims, error) {
	return ts.verify(raw, ts.refresh)
}

func (ts *TokenServiceImpl) sign(userID string, cfg SigningConfig) (string, error) {
	if userID == "" {
		return "", errors.New("user id must not be empty", errors.CategoryBadInput)
	}

	now := ts.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
		UID: userID,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(cfg.Key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// verify parses and validates a token string. Error values never include the
// raw token; any structural or signature failure collapses into the generic
// invalid-token error.
func (ts *TokenServiceImpl) verify(raw string, cfg SigningConfig) (*TokenClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return cfg.Key, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService verify could not decode or validate claims")
	return nil, ErrInvalidToken
}
