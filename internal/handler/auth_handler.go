package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bolx/internal/service"
)

// AuthHandler issues access tokens for service callers.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// IssueToken handles POST /api/v1/tokens
// @Summary Issue an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body IssueTokenRequest true "Token subject and role"
// @Success 201 {object} Response{data=TokenResponse} "Issued token"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 403 {object} ErrorResponseBody "Admin role required"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tokens [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if !req.Role.Valid() {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "role must be admin or service")
		return
	}

	var ttl time.Duration
	if req.TTL != "" {
		d, err := time.ParseDuration(req.TTL)
		if err != nil || d <= 0 {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "ttl must be a positive duration such as 24h")
			return
		}
		ttl = d
	}

	tok, err := h.authService.IssueToken(req.Subject, req.Role, ttl)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, tok)
}
