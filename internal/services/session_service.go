package services

import (
	"errors"
	"fmt"
	"time"

	"elpunto/internal/auth"
	"elpunto/internal/models"
	"elpunto/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionConfig configures SessionService.
type SessionConfig struct {
	Secret      string
	SessionTTL  time.Duration // lifetime of a session without "remember me"
	RememberTTL time.Duration // lifetime of a remembered session
	Now         func() time.Time
}

// SessionToken is what the client stores, plus how long it should keep it.
type SessionToken struct {
	Value     string
	ExpiresAt time.Time
	// Persistent is false for sessions that should end with the browser session.
	Persistent bool
}

// SessionService issues, resolves and revokes session tokens. A token is an
// HS256 JWT whose jti names a row in the sessions table; the row is what
// makes logout effective before the token expires.
type SessionService struct {
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	secret   []byte
	ttl      time.Duration
	remember time.Duration
	now      func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions repositories.SessionRepository, users repositories.UserRepository, cfg SessionConfig) *SessionService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions: sessions,
		users:    users,
		secret:   []byte(cfg.Secret),
		ttl:      cfg.SessionTTL,
		remember: cfg.RememberTTL,
		now:      now,
	}
}

// StartSession opens a session for user and returns its signed token.
func (s *SessionService) StartSession(user *models.User, remember bool) (SessionToken, error) {
	now := s.now().UTC()
	ttl := s.ttl
	if remember {
		ttl = s.remember
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Remember:  remember,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(session); err != nil {
		return SessionToken{}, persistenceError("start session", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Id:        session.ID,
		Subject:   user.ID,
		IssuedAt:  now.Unix(),
		ExpiresAt: session.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return SessionToken{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return SessionToken{Value: signed, ExpiresAt: session.ExpiresAt, Persistent: remember}, nil
}

// CurrentIdentity resolves a token to its principal. Any problem with the
// token, its session or its user yields auth.Anonymous.
func (s *SessionService) CurrentIdentity(token string) auth.Principal {
	claims, ok := s.parse(token)
	if !ok {
		return auth.Anonymous
	}

	session, err := s.sessions.GetByID(claims.Id)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Error().Err(err).Msg("failed to load session")
		}
		return auth.Anonymous
	}
	if session.UserID != claims.Subject || !session.Active(s.now()) {
		return auth.Anonymous
	}

	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Error().Err(err).Str("user_id", session.UserID).Msg("failed to load session user")
		}
		return auth.Anonymous
	}
	return auth.Principal{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}
}

// EndSession revokes the session behind token. Unknown, invalid and already
// ended sessions are ignored.
func (s *SessionService) EndSession(token string) error {
	claims, ok := s.parse(token)
	if !ok {
		return nil
	}
	if err := s.sessions.Revoke(claims.Id, s.now().UTC()); err != nil {
		return persistenceError("end session", err)
	}
	return nil
}

// parse verifies the signature of token. A correctly signed but expired
// token still parses; CurrentIdentity rejects it through the session row.
func (s *SessionService) parse(token string) (*jwt.StandardClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		// Only an expired but otherwise valid token is usable.
		if !errors.As(err, &verr) || verr.Errors != jwt.ValidationErrorExpired {
			return nil, false
		}
	}
	if claims.Id == "" || claims.Subject == "" {
		return nil, false
	}
	return claims, true
}
