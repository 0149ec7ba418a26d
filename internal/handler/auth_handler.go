package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tablecritic/tablecritic/internal/dto"
	"github.com/tablecritic/tablecritic/internal/middleware"
	"github.com/tablecritic/tablecritic/internal/service"
	"github.com/tablecritic/tablecritic/pkg/forms"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) SignUpForm(c *gin.Context) {
	render(c, http.StatusOK, "signup.html", gin.H{
		"Username": "",
	})
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var form dto.SignUpForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusOK, "signup.html", gin.H{
			"Errors":   forms.FromBindingError(err),
			"Username": c.PostForm("username"),
		})
		return
	}

	if _, err := h.service.SignUp(c.Request.Context(), form); err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			errs := forms.Errors{}
			errs.Add("username", "A user with that username already exists.")
			render(c, http.StatusOK, "signup.html", gin.H{
				"Errors":   errs,
				"Username": form.Username,
			})
			return
		}
		renderError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/login/")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{
		"Next":     c.Query("next"),
		"Username": "",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusOK, "login.html", gin.H{
			"Errors":   forms.FromBindingError(err),
			"Username": c.PostForm("username"),
			"Next":     c.PostForm("next"),
		})
		return
	}

	user, err := h.service.Login(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			render(c, http.StatusOK, "login.html", gin.H{
				"LoginError": "Please enter a correct username and password.",
				"Username":   form.Username,
				"Next":       c.PostForm("next"),
			})
			return
		}
		renderError(c, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserKey, user.ID.String())
	if err := sess.Save(); err != nil {
		renderError(c, err)
		return
	}

	c.Redirect(http.StatusFound, safeNext(c.PostForm("next")))
}

// Logout clears the session and lands back on the home page. Both GET and
// POST are routed here.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Delete(middleware.SessionUserKey)
	sess.Options(sessions.Options{MaxAge: -1, Path: "/"})
	_ = sess.Save()

	c.Redirect(http.StatusFound, "/")
}

// safeNext only follows same-site relative targets, anything else goes home.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
