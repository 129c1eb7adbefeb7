// Package server is the hosted backend: the identity primitive and the
// workspace and todo tables behind a row policy, served over HTTP.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/store"
	"github.com/existflow/toedo/server/database"
)

// Backend is everything the handlers need from storage
type Backend interface {
	store.Store
	store.Identity
}

// Server is the toedo API server
type Server struct {
	backend Backend
	closer  io.Closer
	cfg     Config
	echo    *echo.Echo
	now     func() time.Time
}

// Session and magic link lifetimes used when the config leaves them unset
const (
	DefaultSessionTTL   = 30 * 24 * time.Hour
	DefaultMagicLinkTTL = 15 * time.Minute
)

// New creates a server over backend
func New(backend Backend, cfg Config) *Server {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MagicLinkTTL <= 0 {
		cfg.MagicLinkTTL = DefaultMagicLinkTTL
	}
	s := &Server{
		backend: backend,
		cfg:     cfg,
		now:     time.Now,
	}
	s.setupEcho()
	return s
}

// Open connects to Postgres, runs migrations and creates the server
func Open(ctx context.Context, cfg Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := New(database.New(db), cfg)
	s.closer = db
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, HeaderWorkspacePassword,
		},
	}))

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/magic-link", s.handleMagicLink)
	api.GET("/magic-link/:token", s.handleMagicLinkVerify)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)

	// Table API; the row policy decides per request
	rest := e.Group("/rest/v1")
	rest.Use(s.optionalAuthMiddleware)
	rest.GET("/workspace", s.handleListWorkspaces)
	rest.POST("/workspace", s.handleInsertWorkspace)
	rest.PATCH("/workspace", s.handleUpdateWorkspaces)
	rest.DELETE("/workspace", s.handleDeleteWorkspaces)
	rest.GET("/todo", s.handleListTodos)
	rest.POST("/todo", s.handleInsertTodo)
	rest.PATCH("/todo", s.handleUpdateTodos)
	rest.DELETE("/todo", s.handleDeleteTodos)

	s.echo = e
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		logger.Info("HTTP Response",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))

		return nil
	}
}

// Close closes the database connection
func (s *Server) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
