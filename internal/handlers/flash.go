package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

// Flash kinds, used as CSS suffixes.
const (
	flashSuccess = "success"
	flashDanger  = "danger"
	flashWarning = "warning"
)

type flash struct {
	Kind    string
	Message string
}

// setFlash stores a one-shot message shown on the next rendered page.
func (h *Handler) setFlash(c *gin.Context, kind, msg string) {
	v := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + msg))
	h.setCookie(c, flashCookie, v, 0)
}

// popFlash reads and clears the pending flash message, if any.
func (h *Handler) popFlash(c *gin.Context) *flash {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}
	h.setCookie(c, flashCookie, "", -1)

	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(string(raw), "|")
	if !ok || msg == "" {
		return nil
	}
	switch kind {
	case flashSuccess, flashDanger, flashWarning:
	default:
		kind = flashWarning
	}
	return &flash{Kind: kind, Message: msg}
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.opts.SecureCookie, true)
}
