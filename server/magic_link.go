package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/model"
	"github.com/existflow/toedo/internal/store"
)

const magicLinkMessage = "if email exists, a magic link will be sent"

type magicLinkRequest struct {
	Email string `json:"email"`
}

// handleMagicLink creates a magic link for passwordless login
func (s *Server) handleMagicLink(c echo.Context) error {
	var req magicLinkRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	email := normalizeEmail(req.Email)
	if email == "" {
		return jsonError(c, http.StatusBadRequest, "email required")
	}

	ctx := c.Request().Context()
	if _, err := s.backend.GetUserByEmail(ctx, email); err != nil {
		// Don't reveal if email exists
		return c.JSON(http.StatusOK, map[string]string{"message": magicLinkMessage})
	}

	token, err := randomToken()
	if err != nil {
		logger.Error("token generation error", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}

	now := s.now()
	err = s.backend.CreateMagicLink(ctx, model.MagicLink{
		ID:        uuid.NewString(),
		Email:     email,
		Token:     token,
		ExpiresAt: now.Add(s.cfg.MagicLinkTTL),
		CreatedAt: now,
	})
	if err != nil {
		logger.Error("db error", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}

	logger.Info("Magic link created")

	resp := map[string]string{"message": magicLinkMessage}
	if s.cfg.ExposeMagicToken {
		resp["token"] = token
	}
	return c.JSON(http.StatusOK, resp)
}

// handleMagicLinkVerify verifies a magic link and creates a session
func (s *Server) handleMagicLinkVerify(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return jsonError(c, http.StatusBadRequest, "token required")
	}

	ctx := c.Request().Context()
	link, err := s.backend.GetMagicLink(ctx, token)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid token")
	}
	if link.Used {
		return jsonError(c, http.StatusBadRequest, "token already used")
	}
	if link.IsExpired(s.now()) {
		return jsonError(c, http.StatusBadRequest, "token expired")
	}

	if err := s.backend.MarkMagicLinkUsed(ctx, token, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return jsonError(c, http.StatusBadRequest, "token already used")
		}
		logger.Error("db error", logger.F("error", err))
		return jsonError(c, http.StatusInternalServerError, "internal error")
	}

	user, err := s.backend.GetUserByEmail(ctx, link.Email)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "user not found")
	}

	logger.Info("Magic link login", logger.F("user_id", user.ID))
	return s.signIn(c, *user)
}
