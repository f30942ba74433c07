package handler

import (
	"errors"
	"net/http"

	"devconnector-server/internal/domain"
	"devconnector-server/internal/middleware"
	"devconnector-server/internal/service"
	"devconnector-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService *service.AuthService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		logger:      logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Errors(w, http.StatusBadRequest, response.ErrorItem{Msg: "Invalid credentials"})
			return
		}
		h.logger.Error().Err(err).Msg("login")
		response.ServerError(w)
		return
	}

	response.Success(w, domain.TokenResponse{Token: token})
}

// Me returns the authenticated user without the password hash.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Me(r.Context(), middleware.GetUserID(r))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		h.logger.Error().Err(err).Msg("load current user")
		response.ServerError(w)
		return
	}

	response.Success(w, user)
}
