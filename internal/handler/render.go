package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tablecritic/tablecritic/internal/middleware"
	"github.com/tablecritic/tablecritic/pkg/apperror"
)

// render writes an HTML page, folding the logged-in user (when present)
// into the template data so every page can show the session state.
func render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := c.Get(middleware.CtxUserKey); ok {
		data["CurrentUser"] = user
	}
	c.HTML(code, name, data)
}

// renderError maps a domain error onto an HTML error page.
func renderError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	message := http.StatusText(code)
	render(c, code, "error.html", gin.H{
		"Status":  code,
		"Message": message,
	})
}

// authedUserID returns the principal placed in context by RequireAuth.
func authedUserID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(middleware.CtxUserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}
