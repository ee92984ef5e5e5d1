package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/MdAmzadAli/skillArena/internal/middleware"
	"github.com/MdAmzadAli/skillArena/internal/model"
	"github.com/MdAmzadAli/skillArena/internal/service"
	"github.com/MdAmzadAli/skillArena/internal/store"
)

type AuthHandler struct {
	svc    *service.UserService
	secure bool
}

// NewAuthHandler creates the auth handler. secure controls the cookie's
// Secure flag (off in development so plain-HTTP logins work).
func NewAuthHandler(svc *service.UserService, secure bool) *AuthHandler {
	return &AuthHandler{svc: svc, secure: secure}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	username, errMsg := middleware.ValidateUsername(req.Username)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if errMsg := middleware.ValidatePassword(req.Password); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Register(c.Context(), username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return middleware.ErrorResponse(c, fiber.StatusConflict, "USERNAME_TAKEN", "Username already taken")
		}
		middleware.Logger.Error().Err(err).Msg("auth: register failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register")
	}

	h.setSessionCookie(c, resp.Token)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", "username and password are required")
	}

	resp, err := h.svc.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		}
		middleware.Logger.Error().Err(err).Msg("auth: login failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
	}

	h.setSessionCookie(c, resp.Token)
	return c.JSON(resp)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c fiber.Ctx) error {
	user, err := h.svc.Get(c.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Account no longer exists")
		}
		middleware.Logger.Error().Err(err).Msg("auth: me lookup failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load account")
	}
	return c.JSON(user.ToResponse())
}

func (h *AuthHandler) setSessionCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
