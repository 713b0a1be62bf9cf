package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"expense_tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// Page template names. Each one is parsed together with base.html.
const (
	pageIndex    = "index"
	pageRegister = "register"
	pageLogin    = "login"
	pageDash     = "dashboard"
	pageAdd      = "add_expense"
	pageHistory  = "expense_history"
)

var pages = []string{pageIndex, pageRegister, pageLogin, pageDash, pageAdd, pageHistory}

var templateFuncs = template.FuncMap{
	"money": func(cents int64) string { return models.CentsToDecimal(cents).StringFixed(2) },
	"date":  formatDate,
	"dateptr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return formatDate(*t)
	},
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}

// pageRender is a gin HTMLRender holding one template set per page, so every
// page can define its own "content" block.
type pageRender struct {
	templates map[string]*template.Template
}

func newPageRender(fsys fs.FS) (*pageRender, error) {
	r := &pageRender{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(templateFuncs).
			ParseFS(fsys, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *pageRender) Instance(name string, data any) render.Render {
	return render.HTML{Template: r.templates[name], Name: "base", Data: data}
}

// bindForm fills dst from the posted form. A malformed body leaves dst
// partly empty and the field checks downstream report it.
func (h *Handler) bindForm(c *gin.Context, dst any) {
	if err := c.ShouldBind(dst); err != nil {
		h.log.Infow("form_bind_failed", "path", c.FullPath(), "err", err)
	}
}
