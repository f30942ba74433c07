package handler

import (
	"errors"
	"net/http"

	"devconnector-server/internal/domain"
	"devconnector-server/internal/service"
	"devconnector-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	authService *service.AuthService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewUserHandler(authService *service.AuthService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    newValidator(),
		logger:      logger,
	}
}

// Register handles POST /api/users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	token, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			response.Errors(w, http.StatusBadRequest, response.ErrorItem{Msg: "User already exists"})
			return
		}
		h.logger.Error().Err(err).Msg("register")
		response.ServerError(w)
		return
	}

	response.Success(w, domain.TokenResponse{Token: token})
}
