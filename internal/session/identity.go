package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/mentorexpress/mentorexpress-web/pkg/jwt"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"go.uber.org/zap"
)

// Storage scopes. Session scope lives as long as the browser session,
// local scope survives browser restarts.
const (
	ScopeSession = "session"
	ScopeLocal   = "local"
)

const (
	SessionCookieName = "mx_session"
	VisitorCookieName = "mx_visitor"
	tokenIssuer       = "mentorexpress-web"
)

// IDs addresses the two storage scopes of one browser
type IDs struct {
	SessionID string
	VisitorID string
}

// For returns the id of the given scope
func (ids IDs) For(scope string) string {
	if scope == ScopeLocal {
		return ids.VisitorID
	}
	return ids.SessionID
}

type idsKey struct{}

// WithIDs attaches the browser ids to a context
func WithIDs(ctx context.Context, ids IDs) context.Context {
	return context.WithValue(ctx, idsKey{}, ids)
}

// FromContext returns the browser ids attached by the session middleware
func FromContext(ctx context.Context) (IDs, bool) {
	ids, ok := ctx.Value(idsKey{}).(IDs)
	return ids, ok && ids.SessionID != "" && ids.VisitorID != ""
}

// Manager issues and verifies the signed cookie tokens carrying the scope ids
type Manager struct {
	tokens       *jwt.TokenManager
	sessionTTL   time.Duration
	visitorTTL   time.Duration
	cookieDomain string
	cookieSecure bool
}

// NewManager creates a cookie manager from the session configuration
func NewManager(cfg *config.Config) *Manager {
	secret := cfg.Session.Secret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("SESSION_SECRET not set, using an ephemeral secret; sessions will not survive restarts")
	}

	return &Manager{
		tokens:       jwt.NewTokenManager(secret, tokenIssuer),
		sessionTTL:   cfg.SessionTTL(),
		visitorTTL:   cfg.ProfileTTL(),
		cookieDomain: cfg.Session.CookieDomain,
		cookieSecure: cfg.Session.CookieSecure,
	}
}

// Resolve returns the id carried by token for scope. When the token is missing
// or invalid a new id is minted and fresh is the token to set on the response.
func (m *Manager) Resolve(token, scope string) (id string, fresh string, err error) {
	if token != "" {
		claims, verr := m.tokens.ValidateToken(token, scope)
		if verr == nil {
			return claims.SessionID, "", nil
		}
		logger.Debug("Discarding session cookie", zap.String("scope", scope), zap.Error(verr))
	}

	id = uuid.NewString()
	fresh, err = m.tokens.GenerateToken(id, scope, m.TokenTTL(scope))
	if err != nil {
		return "", "", err
	}
	return id, fresh, nil
}

// TokenTTL returns how long a token of the given scope is accepted
func (m *Manager) TokenTTL(scope string) time.Duration {
	if scope == ScopeLocal {
		return m.visitorTTL
	}
	return m.sessionTTL
}

// CookieMaxAge returns the cookie Max-Age for a scope; 0 makes a browser-session cookie
func (m *Manager) CookieMaxAge(scope string) int {
	if scope == ScopeLocal {
		return int(m.visitorTTL.Seconds())
	}
	return 0
}

func (m *Manager) CookieDomain() string { return m.cookieDomain }

func (m *Manager) CookieSecure() bool { return m.cookieSecure }
