package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "session_token"
	ctxSessionKey = "session"

	msgLoginRequired = "Please log in to access this page."
)

// requireSession guards HTML pages: without a live session the user is sent
// to the login page with a notice.
func (h *Handler) requireSession(c *gin.Context) {
	sess, err := h.resolveSession(c)
	if err != nil {
		h.setFlash(c, flashDanger, msgLoginRequired)
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Set(ctxSessionKey, sess)
	c.Next()
}

// requireSessionJSON is requireSession for the JSON API.
func (h *Handler) requireSessionJSON(c *gin.Context) {
	sess, err := h.resolveSession(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
		return
	}
	c.Set(ctxSessionKey, sess)
	c.Next()
}

func (h *Handler) resolveSession(c *gin.Context) (*models.Session, error) {
	token, _ := c.Cookie(sessionCookie)
	sess, err := h.services.Sessions.ResolveSession(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, service.ErrNoSession) {
			h.log.Errorw("session_resolve_failed", "err", err)
		}
		return nil, err
	}
	if sess.Renewed {
		h.setSessionCookie(c, sess.Token)
	}
	return sess, nil
}

// currentSession returns the session stored by the guard, or nil on public routes.
func currentSession(c *gin.Context) *models.Session {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*models.Session)
	return sess
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	h.setCookie(c, sessionCookie, token, int(h.opts.SessionTTL/time.Second))
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	h.setCookie(c, sessionCookie, "", -1)
}

// requireSweepToken checks the bearer token presented by the reminder scheduler.
func (h *Handler) requireSweepToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	if err := h.services.SweepAuth.ParseSweepToken(parts[1]); err != nil {
		h.log.Infow("sweep_token_rejected", "err", err, "remote", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}
	c.Next()
}

// requestLogger writes one line per request.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
}
