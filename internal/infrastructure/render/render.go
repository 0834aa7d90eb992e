// Package render turns a document template plus borrower fields into the
// bytes that get uploaded. The rest of the system treats the output as
// opaque.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"creditflow-backend/internal/domain/document"
)

const ContentTypeHTML = "text/html; charset=utf-8"

// Fields is the data one document is rendered from.
type Fields struct {
	LoanID            string
	FullName          string
	DocumentNumber    string
	SignatureURL      string
	Cantity           string
	Entity            string
	BankNumberAccount string
	IssuedAt          time.Time
}

type Renderer interface {
	Render(ctx context.Context, kind document.Type, f Fields) ([]byte, error)
	ContentType() string
	Extension() string
}

//go:embed templates/*.html
var templateFS embed.FS

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	t, err := template.New("documents").Funcs(template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse document templates: %w", err)
	}
	for _, k := range document.CanonicalTypes {
		if t.Lookup(templateName(k)) == nil {
			return nil, fmt.Errorf("missing template for %s", k)
		}
	}
	return &HTMLRenderer{tmpl: t}, nil
}

func templateName(k document.Type) string { return string(k) + ".html" }

func (r *HTMLRenderer) Render(ctx context.Context, kind document.Type, f Fields) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.IssuedAt.IsZero() {
		f.IssuedAt = time.Now().UTC()
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, templateName(kind), f); err != nil {
		return nil, fmt.Errorf("render %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) ContentType() string { return ContentTypeHTML }
func (r *HTMLRenderer) Extension() string   { return "html" }
