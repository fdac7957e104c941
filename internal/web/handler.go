/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_stage/internal/eventbus"
	"github.com/friendsincode/heimdall_stage/internal/hub"
	"github.com/friendsincode/heimdall_stage/internal/logbuffer"
	"github.com/friendsincode/heimdall_stage/internal/storage"
	"github.com/friendsincode/heimdall_stage/internal/store"
)

// Handler provides web UI endpoints with server-rendered templates.
type Handler struct {
	store     store.Store
	hub       *hub.Hub
	bus       eventbus.Bus
	logBuf    *logbuffer.Buffer
	reports   storage.ObjectStore // nil when report archiving is disabled
	stageName string
	logger    zerolog.Logger

	templates map[string]*template.Template // Each page gets its own template set
	partials  *template.Template            // Shared partials
}

// PageData holds common data passed to all templates.
type PageData struct {
	Title       string
	StageName   string
	CurrentPath string
	Data        any
}

// NewHandler creates a new web handler.
func NewHandler(st store.Store, h *hub.Hub, bus eventbus.Bus, logBuf *logbuffer.Buffer, reports storage.ObjectStore, stageName string, logger zerolog.Logger) (*Handler, error) {
	handler := &Handler{
		store:     st,
		hub:       h,
		bus:       bus,
		logBuf:    logBuf,
		reports:   reports,
		stageName: stageName,
		logger:    logger.With().Str("component", "web").Logger(),
	}

	if err := handler.loadTemplates(); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	return handler, nil
}

func (h *Handler) loadTemplates() error {
	funcMap := template.FuncMap{
		"lower":    strings.ToLower,
		"upper":    strings.ToUpper,
		"safeHTML": safeHTML,
		"isActive": isActive,
	}

	h.templates = make(map[string]*template.Template)

	// First, collect all layout and partial templates
	var layoutFiles []string
	var partialFiles []string
	var pageFiles []string

	err := fs.WalkDir(TemplateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		if strings.HasPrefix(path, "templates/layouts/") {
			layoutFiles = append(layoutFiles, path)
		} else if strings.HasPrefix(path, "templates/partials/") {
			partialFiles = append(partialFiles, path)
		} else if strings.HasPrefix(path, "templates/pages/") {
			pageFiles = append(pageFiles, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Load partials into a shared template set
	h.partials = template.New("").Funcs(funcMap)
	for _, path := range partialFiles {
		content, err := fs.ReadFile(TemplateFS, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		name := strings.TrimPrefix(path, "templates/")
		name = strings.TrimSuffix(name, ".html")
		if _, err := h.partials.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		h.logger.Debug().Str("template", name).Msg("loaded partial")
	}

	// For each page template, create its own template set with layouts
	for _, pagePath := range pageFiles {
		tmpl := template.New("").Funcs(funcMap)

		for _, layoutPath := range layoutFiles {
			content, err := fs.ReadFile(TemplateFS, layoutPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", layoutPath, err)
			}
			name := strings.TrimPrefix(layoutPath, "templates/")
			name = strings.TrimSuffix(name, ".html")
			if _, err := tmpl.New(name).Parse(string(content)); err != nil {
				return fmt.Errorf("parse %s: %w", layoutPath, err)
			}
		}

		// Pages share the partial set so fragments render identically
		// inline and over the socket.
		for _, partialPath := range partialFiles {
			content, err := fs.ReadFile(TemplateFS, partialPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", partialPath, err)
			}
			name := strings.TrimPrefix(partialPath, "templates/")
			name = strings.TrimSuffix(name, ".html")
			if _, err := tmpl.New(name).Parse(string(content)); err != nil {
				return fmt.Errorf("parse %s: %w", partialPath, err)
			}
		}

		pageContent, err := fs.ReadFile(TemplateFS, pagePath)
		if err != nil {
			return fmt.Errorf("read %s: %w", pagePath, err)
		}
		pageName := strings.TrimPrefix(pagePath, "templates/")
		pageName = strings.TrimSuffix(pageName, ".html")

		if _, err := tmpl.New(pageName).Parse(string(pageContent)); err != nil {
			return fmt.Errorf("parse %s: %w", pagePath, err)
		}

		h.templates[pageName] = tmpl
		h.logger.Debug().Str("template", pageName).Msg("loaded template")
	}

	return nil
}

// Render renders a template with the given data.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request, name string, data PageData) {
	data.CurrentPath = r.URL.Path
	if data.StageName == "" {
		data.StageName = h.stageName
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl, ok := h.templates[name]
	if !ok {
		h.logger.Error().Str("template", name).Msg("template not found")
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("template render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// RenderPartial renders a partial template (for HTMX responses).
func (h *Handler) RenderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.partials.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("partial render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// staticResponseWriter wraps http.ResponseWriter to force correct MIME types
type staticResponseWriter struct {
	http.ResponseWriter
	contentType string
	wroteHeader bool
}

func (w *staticResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader && w.contentType != "" {
		w.Header().Set("Content-Type", w.contentType)
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *staticResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// StaticHandler returns an http.Handler for static files.
func (h *Handler) StaticHandler() http.Handler {
	fsys, _ := fs.Sub(StaticFS, "static")
	fileServer := http.FileServer(http.FS(fsys))
	return http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Determine correct MIME type for embedded files
		path := r.URL.Path
		var contentType string
		switch {
		case strings.HasSuffix(path, ".css"):
			contentType = "text/css; charset=utf-8"
		case strings.HasSuffix(path, ".js"):
			contentType = "application/javascript; charset=utf-8"
		case strings.HasSuffix(path, ".svg"):
			contentType = "image/svg+xml"
		case strings.HasSuffix(path, ".ico"):
			contentType = "image/x-icon"
		}

		sw := &staticResponseWriter{ResponseWriter: w, contentType: contentType}
		fileServer.ServeHTTP(sw, r)
	}))
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

func isActive(currentPath, linkPath string) bool {
	if linkPath == "/" {
		return currentPath == "/"
	}
	return strings.HasPrefix(currentPath, linkPath)
}
