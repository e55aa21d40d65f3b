package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepnest/prepnest/internal/domain/users"
)

// AuthHandler exposes registration and token endpoints.
type AuthHandler struct {
	svc    users.Service
	logger *slog.Logger
}

// NewAuthHandler constructs the auth HTTP handler.
func NewAuthHandler(svc users.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger.With("component", "http.auth"),
	}
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req users.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	view, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "auth_failed"))
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req users.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "auth_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh issues a fresh token pair from a refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req users.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, fromDomainError(err, "auth_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
