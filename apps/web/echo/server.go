// Package echoweb serves the built admin panel. Every deep link must resolve
// to the bootstrap document: client-side route guarding depends on it.
package echoweb

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

type (
	Options struct {
		Addr           string
		DistDir        string
		Debug          bool
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.opts.Debug

	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/favicon.ico", s.favicon)
	s.app.GET("/*", s.serve)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// serve answers asset requests (paths with an extension) from the dist dir
// and everything else with index.html, so deep links load the SPA bootstrap
// document.
func (s *server) serve(ctx echo.Context) error {
	reqPath := path.Clean("/" + ctx.Request().URL.Path)

	if path.Ext(reqPath) == "" {
		return s.serveIndex(ctx)
	}

	fp := filepath.Join(s.opts.DistDir, filepath.FromSlash(reqPath))
	if fi, err := os.Stat(fp); err != nil || fi.IsDir() {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	setCacheHeaders(ctx.Response().Header(), reqPath)
	return ctx.File(fp)
}

func (s *server) serveIndex(ctx echo.Context) error {
	fp := filepath.Join(s.opts.DistDir, "index.html")
	if _, err := os.Stat(fp); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Application error")
	}
	setCacheHeaders(ctx.Response().Header(), "/index.html")
	return ctx.File(fp)
}

// favicon falls back to the vite default icon, then 204 so browsers stop
// retrying.
func (s *server) favicon(ctx echo.Context) error {
	fp := filepath.Join(s.opts.DistDir, "vite.svg")
	if _, err := os.Stat(fp); err != nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	setCacheHeaders(ctx.Response().Header(), "/vite.svg")
	return ctx.File(fp)
}

// setCacheHeaders mirrors the caching strategy the panel was deployed with:
// never cache HTML, cache hashed assets forever, everything else for an hour.
func setCacheHeaders(h http.Header, reqPath string) {
	switch {
	case strings.HasSuffix(reqPath, ".html"):
		h.Set("Cache-Control", "public, max-age=0, must-revalidate")
		h.Set("Pragma", "no-cache")
	case strings.Contains(reqPath, "/assets/"):
		h.Set("Cache-Control", "public, max-age=31536000, immutable")
	default:
		h.Set("Cache-Control", "public, max-age=3600")
	}
}
