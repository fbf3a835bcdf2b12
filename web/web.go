// Package web holds the HTML templates and the echo renderer that serves
// them.
package web

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"folio/domain"
	"folio/editor"
)

//go:embed templates/*.html
var files embed.FS

const excerptLen = 200

var pages = []string{
	"blog-list.html",
	"blog-post.html",
	"not-found.html",
	"admin-list.html",
	"post-edit.html",
	"post-delete.html",
	"access-denied.html",
	"user-login.html",
	"user-signup.html",
	"error.html",
}

// Layout is embedded by every view.
type Layout struct {
	PageTitle string
	Session   domain.Session
}

type TemplateRegistry struct {
	templates map[string]*template.Template
}

func NewTemplateRegistry() (*TemplateRegistry, error) {
	t := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(files, "templates/"+page, "templates/base.html")
		if err != nil {
			return nil, err
		}
		t[page] = tmpl
	}
	return &TemplateRegistry{templates: t}, nil
}

func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return errors.New("template not found: " + name)
	}
	return tmpl.ExecuteTemplate(w, "base.html", data)
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"pubdate": func(p domain.Post) string {
		if p.PublishedAt != nil {
			return p.PublishedAt.Format("January 2, 2006")
		}
		return p.CreatedAt.Format("January 2, 2006")
	},
	"excerpt": func(p domain.Post) string {
		if p.Excerpt != "" {
			return p.Excerpt
		}
		return editor.PlainText(p.Content, excerptLen)
	},
	// content is sanitized when stored; it is sanitized again on the way out.
	"content": func(src string) template.HTML {
		return template.HTML(editor.Sanitize(src))
	},
	"contains": func(ids []string, id string) bool {
		return slices.Contains(ids, id)
	},
}
