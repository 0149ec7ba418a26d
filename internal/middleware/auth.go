package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tablecritic/tablecritic/internal/repository"
)

// SessionUserKey is the session entry holding the principal's user id.
const SessionUserKey = "user_id"

// Context keys set for downstream handlers and templates.
const (
	CtxUserIDKey = "user_id"
	CtxUserKey   = "current_user"
)

type AuthMiddleware struct {
	userRepo repository.UserRepository
}

func NewAuthMiddleware(userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{userRepo: userRepo}
}

// RequireAuth redirects anonymous requests to the login page, carrying the
// original path in the next parameter. No error content is rendered.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		raw, ok := sess.Get(SessionUserKey).(string)
		if !ok || raw == "" {
			redirectToLogin(c)
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			// Stale or tampered session; drop it and start over.
			sess.Delete(SessionUserKey)
			_ = sess.Save()
			redirectToLogin(c)
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// CurrentUser hydrates the logged-in user for template rendering. It never
// blocks the request: anonymous visitors simply get no user in context.
func (m *AuthMiddleware) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		raw, ok := sess.Get(SessionUserKey).(string)
		if !ok || raw == "" {
			c.Next()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			c.Next()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			// The account may have been deleted since login.
			sess.Delete(SessionUserKey)
			_ = sess.Save()
			c.Next()
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Set(CtxUserKey, user)
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	next := url.QueryEscape(c.Request.URL.Path)
	c.Redirect(http.StatusFound, "/login/?next="+next)
	c.Abort()
}
