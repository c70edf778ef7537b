// Package credentials mints the two-tier session credentials: a short-lived
// access token for per-request authorization and a longer-lived refresh
// token for renewal. There is no server-side revocation list; logout is
// client-side token discard.
package credentials

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/teamgate/internal/config"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrMissingSecret   = errors.New("token signing secret is not configured")
	ErrNotRefreshToken = errors.New("token is not a refresh token")
)

const refreshTokenType = "refresh"

// AccessClaims are carried by access tokens.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	OrgID string `json:"org"`
	jwt.RegisteredClaims
}

// refreshClaims carry the minimum needed to renew a session.
type refreshClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is an issued credential set.
type Pair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Issuer signs and verifies session credentials. Access and refresh tokens
// use distinct secrets.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(cfg config.Config) (*Issuer, error) {
	if strings.TrimSpace(cfg.AccessTokenSecret) == "" || strings.TrimSpace(cfg.RefreshTokenSecret) == "" {
		return nil, ErrMissingSecret
	}
	return &Issuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}, nil
}

// IssuePair mints an access/refresh pair bound to the user.
func (i *Issuer) IssuePair(user *userdomain.User) (*Pair, error) {
	now := time.Now().UTC()
	accessExpiry := now.Add(i.accessTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Email: user.Email,
		Role:  string(user.Role),
		OrgID: user.OrgID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
	})
	accessSigned, err := access.SignedString(i.accessSecret)
	if err != nil {
		return nil, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
	})
	refreshSigned, err := refresh.SignedString(i.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  accessSigned,
		RefreshToken: refreshSigned,
		ExpiresAt:    accessExpiry,
	}, nil
}

// VerifyAccess parses and validates an access token.
func (i *Issuer) VerifyAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, i.keyFunc(i.accessSecret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh parses a refresh token and returns the subject user ID.
func (i *Issuer) VerifyRefresh(raw string) (snowflake.ID, error) {
	claims := &refreshClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, i.keyFunc(i.refreshSecret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.TokenType != refreshTokenType {
		return 0, ErrNotRefreshToken
	}
	id, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func (i *Issuer) keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		return secret, nil
	}
}
