package session

import (
	"errors"
	"sync"
	"time"

	"github.com/freshveg/basket-agent/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

const RoleCustomer = "customer"

var ErrInvalidToken = errors.New("invalid session token")

// Session holds the current auth state of the agent. It is the single
// source of truth for "is an authenticated session active": every
// background dispatch re-reads it at execution time, never at the time
// the user action began.
type Session struct {
	mu         sync.RWMutex
	token      string
	role       string
	expiresAt  time.Time
	generation uint64
}

func New() *Session {
	return &Session{}
}

// SetToken installs an access token issued by the auth subsystem. Claims
// are read without signature verification: the agent never holds the
// server secret and only needs role and expiry for local decisions.
func (s *Session) SetToken(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		logger.Warn("Rejecting malformed session token", map[string]interface{}{
			"error": err.Error(),
		})
		return ErrInvalidToken
	}

	role, _ := claims["role"].(string)

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	s.mu.Lock()
	s.token = token
	s.role = role
	s.expiresAt = expiresAt
	s.mu.Unlock()

	logger.Info("Session established", map[string]interface{}{
		"role":       role,
		"expires_at": expiresAt,
	})
	return nil
}

// IsAuthenticated reports whether an unexpired session is active.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return false
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return false
	}
	return true
}

// Role returns the role claim of the current token, or "" in guest mode.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Token returns the raw access token for outgoing API calls.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Generation advances every time the session is dropped, whether by
// logout or by server rejection. The login reconciliation guard keys on
// it: a sync that ran for an older generation must run again.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Clear drops the session on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.role = ""
	s.expiresAt = time.Time{}
	s.generation++
	s.mu.Unlock()

	logger.Info("Session cleared", nil)
}

// Invalidate drops the session after the server rejected it. The caller
// keeps operating in guest mode; from the user's perspective nothing
// failed.
func (s *Session) Invalidate() {
	s.mu.Lock()
	wasActive := s.token != ""
	s.token = ""
	s.role = ""
	s.expiresAt = time.Time{}
	s.generation++
	s.mu.Unlock()

	if wasActive {
		logger.Warn("Session invalidated by server, degrading to guest mode", nil)
	}
}
