package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meeplehaven/boardshelf/cache"
	"github.com/meeplehaven/boardshelf/config"
)

const AccountIDKey = "account_id"

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "bg_session"

// SessionKey returns the cache key under which a session token is stored.
// The cache entry's TTL is the session's idle expiry.
func SessionKey(token string) string {
	return "session:" + token
}

// sessionToken extracts the session token from the cookie, falling back to
// an Authorization Bearer header for non-browser clients.
func sessionToken(c *gin.Context) string {
	if tok, err := c.Cookie(SessionCookie); err == nil && tok != "" {
		return tok
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireAuth validates the session token and the server-side session entry.
// Requests without a live session are redirected to the login page.
func RequireAuth(sec config.SecurityConfig, store cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenStr := sessionToken(ctx)
		if tokenStr == "" {
			redirectToLogin(ctx)
			return
		}

		claims, err := ParseToken(tokenStr, sec.SessionSecret)
		if err != nil {
			redirectToLogin(ctx)
			return
		}

		// The cache entry is the authority: logout deletes it, idle
		// sessions expire with it.
		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		exists, err := store.Exists(cacheCtx, SessionKey(tokenStr))
		if err != nil || !exists {
			redirectToLogin(ctx)
			return
		}

		// Sliding idle expiry.
		_ = store.Expire(cacheCtx, SessionKey(tokenStr), sec.SessionTTL)

		ctx.Set(AccountIDKey, claims.AccountID)
		ctx.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

// GetAccountID retrieves the authenticated account ID from the Gin context.
// It returns 0 for anonymous requests.
func GetAccountID(c *gin.Context) int64 {
	if v, exists := c.Get(AccountIDKey); exists {
		return v.(int64)
	}
	return 0
}

// CurrentAccountID is like GetAccountID but also reports whether a session
// is bound, for routes that render differently for anonymous visitors.
func CurrentAccountID(c *gin.Context, sec config.SecurityConfig, store cache.Cache) (int64, bool) {
	tokenStr := sessionToken(c)
	if tokenStr == "" {
		return 0, false
	}
	claims, err := ParseToken(tokenStr, sec.SessionSecret)
	if err != nil {
		return 0, false
	}
	cacheCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	exists, err := store.Exists(cacheCtx, SessionKey(tokenStr))
	if err != nil || !exists {
		return 0, false
	}
	return claims.AccountID, true
}
