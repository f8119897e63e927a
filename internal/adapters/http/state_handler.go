package http

import (
	"net/http"

	"lorryadmin/internal/adapters/http/response"
	"lorryadmin/internal/domain"
)

type StateSource interface {
	State() domain.AppState
}

type StateHandler struct {
	src    StateSource
	writer response.ResponseWriter
}

func NewStateHandler(src StateSource, w response.ResponseWriter) *StateHandler {
	return &StateHandler{src: src, writer: w}
}

func (h *StateHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.writer.Write(w, http.StatusOK, &response.Response{
		Data: h.src.State(),
	})
}
