package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryabkov/filegallery/internal/models"
	"github.com/ryabkov/filegallery/internal/storage"
	"github.com/ryabkov/filegallery/internal/util"
)

var (
	ErrInvalidCredentials         = errors.New("invalid credentials")
	ErrMissingRefreshToken        = errors.New("missing refresh token")
	ErrRefreshTokenInvalid        = errors.New("invalid refresh token")
	ErrRefreshTokenNotFoundOrUsed = errors.New("refresh token expired")
	ErrTooManyLoginAttempts       = errors.New("too many login attempts")
)

type AuthService struct {
	tokens   *TokenService
	sessions storage.SessionRepository
	limiter  LoginLimiter
	admin    *util.AdminConfig
	log      *zap.SugaredLogger
}

func NewAuthService(
	tokens *TokenService,
	sessions storage.SessionRepository,
	limiter LoginLimiter,
	admin *util.AdminConfig,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		tokens:   tokens,
		sessions: sessions,
		limiter:  limiter,
		admin:    admin,
		log:      log,
	}
}

func (s *AuthService) Tokens() *TokenService { return s.tokens }

// Login checks the configured admin credentials and opens a new refresh
// session. clientKey identifies the caller for throttling (client IP).
func (s *AuthService) Login(ctx context.Context, email, password, clientKey string) (*models.Credentials, error) {
	blocked, err := s.limiter.IsBlocked(ctx, clientKey)
	if err != nil {
		// A limiter outage must not take logins down with it.
		s.log.Warnw("login limiter unavailable", "error", err)
	} else if blocked {
		return nil, ErrTooManyLoginAttempts
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.admin.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	if !emailOK || !passwordOK {
		if err := s.limiter.RegisterFailure(ctx, clientKey); err != nil {
			s.log.Warnw("failed to register login failure", "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, clientKey); err != nil {
		s.log.Warnw("failed to reset login attempts", "error", err)
	}

	now := time.Now().UTC()
	creds, session, err := s.mintPair(now)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.CreateSession(ctx, *session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Infow("admin logged in", "session_id", session.ID)
	return creds, nil
}

// Refresh rotates a valid refresh session into a new token pair. Every
// failure mode collapses to an unauthorized-class error; in particular a
// replayed token whose session was already rotated away trips the hash
// mismatch even though its signature still verifies.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.Credentials, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	sessionID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrRefreshTokenNotFoundOrUsed
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	now := time.Now().UTC()
	presentedHash := s.tokens.HashRefreshToken(refreshToken)
	if subtle.ConstantTimeCompare([]byte(presentedHash), []byte(session.RefreshTokenHash)) != 1 {
		s.log.Warnw("refresh token replay detected", "session_id", session.ID)
		return nil, ErrRefreshTokenNotFoundOrUsed
	}
	if !session.Active(now) {
		return nil, ErrRefreshTokenNotFoundOrUsed
	}

	creds, next, err := s.mintPair(now)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.RotateSession(ctx, session.ID, now, *next); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	s.log.Infow("session rotated", "old_session_id", session.ID, "new_session_id", next.ID)
	return creds, nil
}

// Logout revokes the session named by the refresh token. An invalid or
// missing token is a no-op success: the caller's session is already
// unusable, which is all they asked for.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	sessionID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	if err := s.sessions.RevokeSession(ctx, sessionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.log.Infow("admin logged out", "session_id", sessionID)
	return nil
}

func (s *AuthService) mintPair(now time.Time) (*models.Credentials, *models.Session, error) {
	sessionID := uuid.NewString()

	refreshToken, err := s.tokens.CreateRefreshToken(sessionID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("create refresh token: %w", err)
	}
	accessToken, err := s.tokens.CreateAccessToken(now)
	if err != nil {
		return nil, nil, fmt.Errorf("create access token: %w", err)
	}

	session := &models.Session{
		ID:               sessionID,
		RefreshTokenHash: s.tokens.HashRefreshToken(refreshToken),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.tokens.RefreshTTL()),
	}

	return &models.Credentials{AccessToken: accessToken, RefreshToken: refreshToken}, session, nil
}
