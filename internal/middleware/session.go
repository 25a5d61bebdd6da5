package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorexpress/mentorexpress-web/internal/session"
)

// SessionMiddleware resolves the browser-session and visitor cookies, minting
// fresh ones when missing or invalid, and attaches both ids to the request context.
func SessionMiddleware(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := resolveScope(c, manager, session.SessionCookieName, session.ScopeSession)
		if err != nil {
			_ = c.Error(fmt.Errorf("issue session cookie: %w", err)) //nolint:errcheck
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		visitorID, err := resolveScope(c, manager, session.VisitorCookieName, session.ScopeLocal)
		if err != nil {
			_ = c.Error(fmt.Errorf("issue visitor cookie: %w", err)) //nolint:errcheck
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		ids := session.IDs{SessionID: sessionID, VisitorID: visitorID}
		c.Request = c.Request.WithContext(session.WithIDs(c.Request.Context(), ids))
		c.Next()
	}
}

func resolveScope(c *gin.Context, manager *session.Manager, cookieName, scope string) (string, error) {
	// A missing cookie yields "" and a fresh token
	token, _ := c.Cookie(cookieName) //nolint:errcheck
	id, fresh, err := manager.Resolve(token, scope)
	if err != nil {
		return "", err
	}
	if fresh != "" {
		setCookie(c, cookieName, fresh, manager.CookieMaxAge(scope), manager.CookieDomain(), manager.CookieSecure())
	}
	return id, nil
}

func setCookie(c *gin.Context, name, token string, maxAge int, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		name,
		token,
		maxAge,
		"/",
		domain,
		secure,
		true, // HttpOnly
	)
}
