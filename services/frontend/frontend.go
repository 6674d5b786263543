// Package frontend renders the static browser client for the user API:
// one HTML page plus its script and stylesheet.
package frontend

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"useradmin/apperrors"
	"useradmin/pkg/logger"
	"useradmin/pkg/metrics"
	"useradmin/services/users"

	"github.com/gofiber/template/html/v2"
)

//go:embed web/templates/*.html
var templatesFS embed.FS

//go:embed web/assets/*.js web/assets/*.css
var assetsFS embed.FS

const (
	IndexTemplate = "index"
	ErrorTemplate = "error"

	// ServerAssetPrefix is where the preview server mounts the assets.
	// Generated bundles keep them next to index.html instead.
	ServerAssetPrefix = "/assets/"
)

type Options struct {
	Title               string
	APIBaseURL          string
	NotificationTimeout time.Duration
	AssetPrefix         string
	Logger              *logger.Logger
}

type Generator struct {
	engine *html.Engine
	opts   Options
	log    *logger.Logger
}

type tabView struct {
	ID    string
	Name  string
	Title string
}

// clientConfig is injected into the page for app.js
type clientConfig struct {
	APIBaseURL            string            `json:"apiBaseUrl"`
	NotificationTimeoutMS int64             `json:"notificationTimeoutMs"`
	Titles                map[string]string `json:"titles"`
}

// PageData is the binding of the index template
type PageData struct {
	Title       string
	APIBaseURL  string
	AssetPrefix string
	Tabs        []tabView
	Roles       []users.Role
	Endpoints   []users.Endpoint
	Config      clientConfig
}

func New(opts Options) (*Generator, error) {
	if opts.Title == "" {
		opts.Title = "User Management"
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = "/api"
	}
	if opts.NotificationTimeout <= 0 {
		opts.NotificationTimeout = users.DefaultNotificationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}

	sub, err := fs.Sub(templatesFS, "web/templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	addTemplateFunctions(engine)
	if err := engine.Load(); err != nil {
		return nil, apperrors.NewRenderError("*", err)
	}

	return &Generator{
		engine: engine,
		opts:   opts,
		log:    opts.Logger.Component("frontend"),
	}, nil
}

// Engine exposes the template engine so the preview server can use it as
// its fiber view engine.
func (g *Generator) Engine() *html.Engine {
	return g.engine
}

func (g *Generator) PageData() PageData {
	titles := make(map[string]string, len(users.Tabs))
	tabs := make([]tabView, 0, len(users.Tabs))
	for _, t := range users.Tabs {
		tabs = append(tabs, tabView{ID: t.ElementID(), Name: string(t), Title: t.Title()})
		titles[t.ElementID()] = t.Title()
	}

	return PageData{
		Title:       g.opts.Title,
		APIBaseURL:  g.opts.APIBaseURL,
		AssetPrefix: g.opts.AssetPrefix,
		Tabs:        tabs,
		Roles:       users.Roles,
		Endpoints:   users.Endpoints(),
		Config: clientConfig{
			APIBaseURL:            g.opts.APIBaseURL,
			NotificationTimeoutMS: g.opts.NotificationTimeout.Milliseconds(),
			Titles:                titles,
		},
	}
}

// Render executes the named template into w
func (g *Generator) Render(w io.Writer, name string, binding any) error {
	if err := g.engine.Render(w, name, binding); err != nil {
		return apperrors.NewRenderError(name, err)
	}
	return nil
}

func (g *Generator) RenderToString(name string, binding any) (string, error) {
	buf := new(bytes.Buffer)
	if err := g.Render(buf, name, binding); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderIndex writes the application page
func (g *Generator) RenderIndex(w io.Writer) error {
	return g.Render(w, IndexTemplate, g.PageData())
}

// Generate writes index.html, app.js and style.css into outDir, creating
// it when needed, and returns the written paths.
func (g *Generator) Generate(outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, apperrors.NewWriteError(outDir, err)
	}

	page := new(bytes.Buffer)
	if err := g.RenderIndex(page); err != nil {
		return nil, err
	}

	files := map[string][]byte{"index.html": page.Bytes()}
	for _, name := range AssetNames() {
		data, err := Asset(name)
		if err != nil {
			return nil, apperrors.NewWriteError(name, err)
		}
		files[name] = data
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		target := filepath.Join(outDir, name)
		if err := os.WriteFile(target, files[name], 0o644); err != nil {
			return written, apperrors.NewWriteError(target, err)
		}
		metrics.FrontendFilesGenerated.Inc()
		written = append(written, target)
	}

	g.log.WithFields(map[string]any{
		"dir":   outDir,
		"files": len(written),
		"api":   g.opts.APIBaseURL,
	}).Info("frontend generated")
	return written, nil
}

// Asset returns the embedded static file with the given base name
func Asset(name string) ([]byte, error) {
	return assetsFS.ReadFile(path.Join("web/assets", path.Base(name)))
}

// AssetNames lists the embedded static files
func AssetNames() []string {
	entries, err := assetsFS.ReadDir("web/assets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
