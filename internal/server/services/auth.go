// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, login, token refresh, logout and
// resolving bearer tokens to identities.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/config"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult bundles a short-lived access token, the opaque refresh token,
// and the public identity fields returned by register and login.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService provides authentication-related operations:
//   - Register: create accounts and mint an initial token pair
//   - Login: verify credentials and mint tokens
//   - Refresh: mint a new access token from a stored refresh token
//   - Logout: revoke a refresh token
//   - CurrentUser: resolve an access token to an identity
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	codec                        *auth.Codec
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
}

// NewAuthService constructs an AuthService using repositories, the token
// codec, and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		codec:                        codec,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
	}
}

// Register creates a new active account and returns an initial token pair.
// Fails with common.ErrDuplicateEmail if the email is already registered;
// no row is created in that case. New accounts always store a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	userRepo := s.repomanager.Users(s.db)

	exists, err := userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, common.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	var result *AuthResult
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user := &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			Active:       true,
		}
		user, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		var genErr error
		result, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// Login verifies the provided credentials and, on success, returns a new
// token pair. Unknown email, wrong password and inactive account all yield
// common.ErrInvalidCredentials. Earlier refresh tokens are left untouched:
// multiple concurrent sessions per user are allowed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	userRepo := s.repomanager.Users(s.db)

	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}
	if !user.Active {
		return nil, common.ErrInvalidCredentials
	}
	if !s.checkPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, user, s.db)
}

// Refresh validates a stored refresh token and mints a NEW ACCESS TOKEN
// ONLY. The refresh token itself is not rotated: a compromised refresh
// token stays usable until it expires or is logged out. That is a known,
// accepted trade-off of this flow, kept for client compatibility.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// revoked and unknown tokens are indistinguishable here
			return "", common.ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("error searching refresh token: %w", err)
	}

	// Expiry is checked against our own clock rather than in SQL.
	if token.Expires.Before(time.Now()) {
		return "", common.ErrInvalidRefreshToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidRefreshToken
		}
		return "", common.ErrInternal
	}
	if !user.Active {
		return "", common.ErrInvalidRefreshToken
	}

	accessToken, err := s.codec.IssueAccessToken(user.ID)
	if err != nil {
		return "", common.ErrInternal
	}
	return accessToken, nil
}

// Logout revokes the given refresh token. It succeeds regardless of whether
// the token existed or was already revoked, so the outcome never leaks
// token validity to the caller.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.db).Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// CurrentUser resolves an access token to the full (password-excluded)
// identity record. Missing, malformed, expired and wrong-kind tokens, as
// well as subjects that no longer resolve to an active account, all yield
// common.ErrUnauthenticated.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	subject, kind, err := s.codec.Verify(accessToken)
	if err != nil || kind != auth.KindAccess {
		return nil, common.ErrUnauthenticated
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, common.ErrInternal
	}
	if !user.Active {
		return nil, common.ErrUnauthenticated
	}

	return user.Public(), nil
}

// --- helpers below ---

// checkPassword verifies candidate against the stored credential in two
// steps: the bcrypt comparison first, then a constant-time equality check
// against the stored value. The fallback exists only for accounts created
// before hashing was introduced; new accounts always store a hash. Legacy
// rows are NOT upgraded on successful fallback login.
func (s *AuthService) checkPassword(stored, candidate string) bool {
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func (s *AuthService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*AuthResult, error) {
	accessToken, err := s.codec.IssueAccessToken(user.ID)
	if err != nil {
		return nil, common.ErrInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrInternal
	}

	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrInternal
	}

	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken, User: user.Public()}, nil
}
