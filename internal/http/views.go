package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

var pages = []string{
	"index.html",
	"login.html",
	"register.html",
	"add_expense.html",
	"budget.html",
	"summary.html",
}

// views holds one template set per page, each layered on base.html.
type views struct {
	pages map[string]*template.Template
}

func loadViews(fsys fs.FS) (*views, error) {
	funcs := template.FuncMap{
		"amount": func(d decimal.Decimal) string { return core.FormatAmount(d) },
	}

	v := &views{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(fsys, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		v.pages[page] = t
	}
	return v, nil
}

// pageData is what every view receives.
type pageData struct {
	Authenticated bool
	Flashes       []flashMessage
	Form          map[string]string

	Today     string
	Budget    *core.Budget
	Summary   *core.Summary
	Remaining *decimal.Decimal
}

// render writes page with status. Queued flashes are consumed and any extra
// notices are shown after them.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData, notices ...flashMessage) {
	ctx := r.Context()
	t, ok := s.views.pages[page]
	if !ok {
		log.FromContext(ctx).ErrorContext(ctx, "Unknown view", "template", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data.Authenticated = requestContextFrom(ctx).Authenticated()
	data.Flashes = append(consumeFlashes(w, r), notices...)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentTemplate).ErrorContext(ctx, "Template execution failed",
			"template", page, log.FieldError, err, log.FieldOperation, log.OpRender)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// serverError logs an unexpected failure and answers 500.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), msg, log.FieldError, err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
