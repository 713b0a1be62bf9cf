package handlers

import (
	"errors"
	"net/http"
	"strings"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidLogin     = "Invalid email or password."
	msgEmailNotFound    = "Email not found."
	msgWrongPassword    = "Incorrect password."
	msgPasswordMismatch = "Passwords do not match."
	msgEmailTaken       = "That email is already registered."
	msgTryLater         = "Something went wrong. Please try again later."
)

type registerForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (h *Handler) index(c *gin.Context) {
	// the landing page is public but still shows who is logged in
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		if sess, err := h.services.Sessions.ResolveSession(c.Request.Context(), token); err == nil {
			c.Set(ctxSessionKey, sess)
		}
	}
	h.renderPage(c, http.StatusOK, pageIndex, "Welcome", nil)
}

func (h *Handler) registerForm(c *gin.Context) {
	h.renderPage(c, http.StatusOK, pageRegister, "Register", gin.H{"Form": registerForm{}})
}

func (h *Handler) register(c *gin.Context) {
	var form registerForm
	h.bindForm(c, &form)

	fail := func(status int, msg string) {
		form.Password, form.ConfirmPassword = "", ""
		h.renderPage(c, status, pageRegister, "Register", gin.H{"Form": form, "Error": msg})
	}

	if form.Password != form.ConfirmPassword {
		fail(http.StatusBadRequest, msgPasswordMismatch)
		return
	}

	id, err := h.services.Credentials.Register(c.Request.Context(), form.Username, form.Email, form.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrValidation):
		fail(http.StatusBadRequest, validationMessage(err))
		return
	case errors.Is(err, service.ErrDuplicateEmail):
		fail(http.StatusConflict, msgEmailTaken)
		return
	default:
		h.log.Errorw("register_failed", "err", err)
		fail(http.StatusInternalServerError, msgTryLater)
		return
	}

	h.log.Infow("user_registered", "user_id", id)
	h.setFlash(c, flashSuccess, "Registration successful. Please log in.")
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) loginForm(c *gin.Context) {
	h.renderPage(c, http.StatusOK, pageLogin, "Log in", gin.H{"Form": loginForm{}})
}

func (h *Handler) login(c *gin.Context) {
	var form loginForm
	h.bindForm(c, &form)
	ctx := c.Request.Context()

	fail := func(status int, msg string) {
		h.renderPage(c, status, pageLogin, "Log in", gin.H{"Form": loginForm{Email: form.Email}, "Error": msg})
	}

	u, err := h.services.Credentials.Verify(ctx, form.Email, form.Password)
	if err != nil {
		if service.IsAuthFailure(err) {
			h.log.Infow("login_failed", "reason", err.Error())
			fail(http.StatusUnauthorized, h.loginFailureMessage(err))
			return
		}
		h.log.Errorw("login_failed", "err", err)
		fail(http.StatusInternalServerError, msgTryLater)
		return
	}

	sess, err := h.services.Sessions.StartSession(ctx, u.ID, u.Username)
	if err != nil {
		h.log.Errorw("session_start_failed", "user_id", u.ID, "err", err)
		fail(http.StatusInternalServerError, msgTryLater)
		return
	}

	h.setSessionCookie(c, sess.Token)
	h.setFlash(c, flashSuccess, "You are now logged in.")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) loginFailureMessage(err error) string {
	if !h.opts.DistinctLoginErrors {
		return msgInvalidLogin
	}
	if errors.Is(err, service.ErrUserNotFound) {
		return msgEmailNotFound
	}
	return msgWrongPassword
}

func (h *Handler) logout(c *gin.Context) {
	if sess := currentSession(c); sess != nil {
		if err := h.services.Sessions.EndSession(c.Request.Context(), sess.Token); err != nil {
			h.log.Errorw("session_end_failed", "user_id", sess.UserID, "err", err)
		}
	}
	h.clearSessionCookie(c)
	h.setFlash(c, flashSuccess, "You have been logged out.")
	c.Redirect(http.StatusFound, "/login")
}

// validationMessage turns a *service.ValidationError into a sentence for the form.
func validationMessage(err error) string {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		return msgTryLater
	}
	field := strings.ReplaceAll(verr.Field, "_", " ")
	if field != "" {
		field = strings.ToUpper(field[:1]) + field[1:]
	}
	return field + " " + verr.Msg + "."
}
