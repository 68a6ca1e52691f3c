// Package web serves the record table and its JSON API over HTTP.
//
// Routes:
//
//	GET  /                          HTML table page
//	GET  /api/rows                  one computed page (search, sort, dir, page_size, page)
//	POST /api/rows/:index/status    change a row's call-center status
//	POST /api/refresh               manual refresh, rate limited per client IP
//	GET  /api/notices               active and recent notices
//	GET  /api/health                desk status
//
// Row indexes in URLs are authoritative indexes, as carried by every row of
// a query result, never positions on the current page.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/numberdesk/internal/desk"
	"github.com/roach88/numberdesk/internal/query"
	"github.com/roach88/numberdesk/internal/record"
	"github.com/roach88/numberdesk/internal/store"
)

// Desk is the subset of *desk.Desk the server uses.
type Desk interface {
	Query(p query.Params) query.Result
	Status() desk.Status
	Refresh(ctx context.Context) error
	RequestStatusChange(ctx context.Context, index int, status record.Status, confirm desk.Confirmer) (store.Change, error)
	Notices() *desk.Notices
}

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 5 * time.Second

// Server is the HTTP front end for a Desk.
type Server struct {
	desk     Desk
	router   *gin.Engine
	page     *template.Template
	pageSize query.PageSize
	reload   time.Duration

	refreshPerMinute int
	refreshBurst     int
}

// Option configures a Server.
type Option func(*Server)

// WithPageSize sets the page size used when a request does not name one.
func WithPageSize(size query.PageSize) Option {
	return func(s *Server) {
		if size != 0 {
			s.pageSize = size
		}
	}
}

// WithReloadInterval sets how often the browser page re-requests itself to
// pick up polled records. Zero or less disables the reload.
func WithReloadInterval(d time.Duration) Option {
	return func(s *Server) {
		s.reload = d
	}
}

// WithRefreshLimit throttles POST /api/refresh per client IP. A
// non-positive perMinute disables the limit.
func WithRefreshLimit(perMinute, burst int) Option {
	return func(s *Server) {
		s.refreshPerMinute = perMinute
		s.refreshBurst = burst
	}
}

// New creates a Server for d. gin's mode is left to the caller.
func New(d Desk, opts ...Option) *Server {
	s := &Server{
		desk:             d,
		page:             pageTemplate,
		pageSize:         query.DefaultPageSize,
		reload:           desk.DefaultRefreshInterval,
		refreshPerMinute: 60,
		refreshBurst:     5,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	router.GET("/", s.handlePage)

	api := router.Group("/api")
	api.GET("/rows", s.handleRows)
	api.POST("/rows/:index/status", s.handleStatus)
	api.POST("/refresh", RateLimitMiddleware(s.refreshPerMinute, s.refreshBurst), s.handleRefresh)
	api.GET("/notices", s.handleNotices)
	api.GET("/health", s.handleHealth)

	return router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	slog.Info("web server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("web server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
