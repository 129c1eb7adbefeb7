package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

// MinPasswordLength is the shortest accepted account password
const MinPasswordLength = 6

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by every sign-in endpoint
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "email and password required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid email address")
	}
	if len(req.Password) < MinPasswordLength {
		return jsonError(c, http.StatusBadRequest, "password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("bcrypt error", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	ctx := c.Request().Context()
	if err := s.backend.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return jsonError(c, http.StatusConflict, "email already registered")
		}
		logger.Error("db error", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}

	logger.Info("User registered", logger.F("user_id", user.ID))
	return s.signIn(c, user)
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	user, err := s.backend.GetUserByEmail(c.Request().Context(), normalizeEmail(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		return jsonError(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		logger.Error("db error", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return jsonError(c, http.StatusUnauthorized, "invalid credentials")
	}

	logger.Info("User logged in", logger.F("user_id", user.ID))
	return s.signIn(c, *user)
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	user, err := s.backend.GetUserByID(c.Request().Context(), callerID(c))
	if err != nil {
		return jsonError(c, http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id":    user.ID,
		"email": user.Email,
	})
}

// handleLogout ends the presented session
func (s *Server) handleLogout(c echo.Context) error {
	token, _ := c.Get(ctxToken).(string)
	if err := s.backend.DeleteSession(c.Request().Context(), token); err != nil {
		logger.Error("db error", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}

// signIn creates a session for user and writes the auth response
func (s *Server) signIn(c echo.Context, user model.User) error {
	token, expiresAt, err := s.createSession(c, user.ID)
	if err != nil {
		logger.Error("session error", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    user.ID,
		Email:     user.Email,
	})
}

// createSession creates a new session for a user
func (s *Server) createSession(c echo.Context, userID string) (string, time.Time, error) {
	token, err := randomToken()
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.SessionTTL)
	err = s.backend.CreateSession(c.Request().Context(), model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})

	return token, expiresAt, err
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
