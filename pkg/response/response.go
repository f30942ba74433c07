package response

import (
	"encoding/json"
	"net/http"
)

// ErrorItem is one entry of a 400 error list. Param and Location are set
// for field validation failures only.
type ErrorItem struct {
	Msg      string      `json:"msg"`
	Param    string      `json:"param,omitempty"`
	Location string      `json:"location,omitempty"`
	Value    interface{} `json:"value,omitempty"`
}

type MessageBody struct {
	Msg string `json:"msg"`
}

type ErrorsBody struct {
	Errors []ErrorItem `json:"errors"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Message(w http.ResponseWriter, statusCode int, msg string) {
	JSON(w, statusCode, MessageBody{Msg: msg})
}

func Errors(w http.ResponseWriter, statusCode int, items ...ErrorItem) {
	JSON(w, statusCode, ErrorsBody{Errors: items})
}

func BadRequest(w http.ResponseWriter, msg string) {
	Message(w, http.StatusBadRequest, msg)
}

func Unauthorized(w http.ResponseWriter, msg string) {
	Message(w, http.StatusUnauthorized, msg)
}

func NotFound(w http.ResponseWriter, msg string) {
	Message(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string) {
	Message(w, http.StatusConflict, msg)
}

func TooManyRequests(w http.ResponseWriter, msg string) {
	Message(w, http.StatusTooManyRequests, msg)
}

// ServerError never carries detail; callers log the cause themselves.
func ServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte("Server Error"))
}
