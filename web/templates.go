// ABOUTME: Template loading, rendering, and FuncMap for the board web UI.
// ABOUTME: Provides TemplateRenderer that parses base + partials and renders named templates.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// TemplateRenderer loads and renders HTML templates for the web UI.
// Templates are parsed once at construction and reused for each request.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses all templates from the given filesystem. It
// expects templates/base.html, page templates beside it, and a
// templates/partials/ subdirectory.
func NewTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	tmpl := template.New("base.html").Funcs(buildFuncMap())

	err := fs.WalkDir(fsys, "templates", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		data, readErr := fs.ReadFile(fsys, path)
		if readErr != nil {
			return fmt.Errorf("read template %s: %w", path, readErr)
		}
		name := path[strings.LastIndex(path, "/")+1:]
		if _, parseErr := tmpl.New(name).Parse(string(data)); parseErr != nil {
			return fmt.Errorf("parse template %s: %w", path, parseErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &TemplateRenderer{templates: tmpl}, nil
}

// Render executes a named page template inside the base layout.
func (r *TemplateRenderer) Render(w http.ResponseWriter, templateName string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, templateName, data); err != nil {
		http.Error(w, fmt.Sprintf("template render error: %v", err), http.StatusInternalServerError)
	}
}

// RenderPartial executes a named partial template with no base layout wrapping.
func (r *TemplateRenderer) RenderPartial(w http.ResponseWriter, partialName string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, partialName, data); err != nil {
		http.Error(w, fmt.Sprintf("partial render error: %v", err), http.StatusInternalServerError)
	}
}

// buildFuncMap creates the template FuncMap with helper functions for rendering.
func buildFuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown": markdownToHTML,
		"timeAgo":  timeAgo,
		"truncate": truncate,
	}
}

// markdownToHTML converts a markdown string to HTML using goldmark.
// Raw HTML in the input is escaped by goldmark's defaults to prevent XSS.
func markdownToHTML(input string) template.HTML {
	var buf bytes.Buffer
	md := goldmark.New()
	if err := md.Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}

// timeAgo formats a time as a relative duration string (e.g. "5m ago", "2h ago").
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}

// truncate shortens a string to at most maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
