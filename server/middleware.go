package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/store"
)

// HeaderWorkspacePassword carries the visitor's workspace password on the
// public route
const HeaderWorkspacePassword = "X-Workspace-Password"

const (
	ctxUserID = "user_id"
	ctxToken  = "token"
)

var (
	errNoAuthorization  = errors.New("authorization required")
	errBadAuthorization = errors.New("invalid authorization format")
	errInvalidToken     = errors.New("invalid token")
	errTokenExpired     = errors.New("token expired")
)

// authenticate resolves the bearer token. It returns "" without error when
// the request carries no Authorization header.
func (s *Server) authenticate(c echo.Context) (string, error) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if auth == "" {
		return "", nil
	}

	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth || token == "" {
		return "", errBadAuthorization
	}

	session, err := s.backend.GetSession(c.Request().Context(), token)
	if errors.Is(err, store.ErrNotFound) {
		return "", errInvalidToken
	}
	if err != nil {
		return "", err
	}
	if session.IsExpired(s.now()) {
		return "", errTokenExpired
	}

	c.Set(ctxUserID, session.UserID)
	c.Set(ctxToken, token)
	return session.UserID, nil
}

func (s *Server) authFailed(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errBadAuthorization), errors.Is(err, errInvalidToken), errors.Is(err, errTokenExpired):
		return jsonError(c, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("Session lookup failed", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}
}

// authMiddleware checks for valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := s.authenticate(c)
		if err != nil {
			return s.authFailed(c, err)
		}
		if userID == "" {
			return jsonError(c, http.StatusUnauthorized, errNoAuthorization.Error())
		}
		return next(c)
	}
}

// optionalAuthMiddleware resolves a session when one is presented. Anonymous
// requests pass through; a bad token is still refused.
func (s *Server) optionalAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := s.authenticate(c); err != nil {
			return s.authFailed(c, err)
		}
		return next(c)
	}
}

// callerID returns the signed-in user, "" for anonymous requests
func callerID(c echo.Context) string {
	id, _ := c.Get(ctxUserID).(string)
	return id
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
