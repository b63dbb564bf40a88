// Package auth implements stateless signing and verification of the
// short-lived JWTs used by the task list server.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access tokens from signed refresh tokens so that
// one can never be replayed in place of the other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the claim set embedded in every token: the registered claims
// (Subject carries the user ID) plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"kind"`
}

// Codec signs and verifies tokens with a symmetric key loaded once at
// process start. The same key verifies all tokens for the process lifetime;
// there is no runtime key rotation.
type Codec struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secretKey []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{secretKey: secretKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccessToken produces a signed access token for the given subject
// with issuedAt=now and expiresAt=now+accessTTL.
func (c *Codec) IssueAccessToken(subject string) (string, error) {
	return c.issue(subject, KindAccess, c.accessTTL)
}

// IssueRefreshToken produces a signed token marked as a refresh credential,
// valid for the refresh TTL.
func (c *Codec) IssueRefreshToken(subject string) (string, error) {
	return c.issue(subject, KindRefresh, c.refreshTTL)
}

func (c *Codec) issue(subject string, kind TokenKind, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Kind: kind,
	})

	tokenString, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// subject and kind on success. Every failure mode (bad signature,
// malformed structure, unexpected algorithm, expiry) collapses into
// common.ErrInvalidToken so the caller cannot tell them apart.
func (c *Codec) Verify(tokenString string) (string, TokenKind, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", "", common.ErrInvalidToken
	}

	return claims.Subject, claims.Kind, nil
}

// KindOf reports the kind of a verified token.
func (c *Codec) KindOf(tokenString string) (TokenKind, error) {
	_, kind, err := c.Verify(tokenString)
	return kind, err
}
