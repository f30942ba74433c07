package handler

import (
	"errors"
	"net/http"

	"devconnector-server/internal/domain"
	"devconnector-server/internal/middleware"
	"devconnector-server/internal/service"
	"devconnector-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type PostHandler struct {
	service  *service.PostService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewPostHandler(service *service.PostService, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePostRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	post, err := h.service.Create(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		h.fail(w, err, "create post")
		return
	}

	response.Success(w, domain.PostResponse{Post: post})
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, err, "list posts")
		return
	}

	response.Success(w, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err, "get post")
		return
	}

	response.Success(w, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorised) {
			response.Unauthorized(w, "User not authorised")
			return
		}
		h.fail(w, err, "delete post")
		return
	}

	response.Success(w, response.MessageBody{Msg: "Post removed"})
}

func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.service.Like(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err, "like post")
		return
	}

	response.Success(w, likes)
}

func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	likes, err := h.service.Unlike(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err, "unlike post")
		return
	}

	response.Success(w, likes)
}

func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCommentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	comments, err := h.service.Comment(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		h.fail(w, err, "comment on post")
		return
	}

	response.Success(w, comments)
}

func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	comments, err := h.service.DeleteComment(r.Context(), middleware.GetUserID(r), vars["id"], vars["comment_id"])
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorised) {
			response.Unauthorized(w, "User not authorised.")
			return
		}
		h.fail(w, err, "delete comment")
		return
	}

	response.Success(w, comments)
}

// fail maps service errors shared by every post route. Anything
// unrecognised is logged and reported as a bare 500.
func (h *PostHandler) fail(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(w, "Post Not Found.")
	case errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(w, "Comment does not exist.")
	case errors.Is(err, service.ErrAlreadyLiked):
		response.BadRequest(w, "Post already liked.")
	case errors.Is(err, service.ErrNotLiked):
		response.BadRequest(w, "Post has not yet been liked.")
	case errors.Is(err, service.ErrConcurrentUpdate):
		response.Conflict(w, "Post was modified concurrently, try again")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(w, "User not found")
	default:
		h.logger.Error().Err(err).Msg(op)
		response.ServerError(w)
	}
}
