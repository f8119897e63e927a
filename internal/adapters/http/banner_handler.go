package http

import (
	"errors"
	"io"
	"net/http"

	"lorryadmin/internal/adapters/http/response"
	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"
)

const maxBannerUpload = 10 << 20

type BannerHandler struct {
	svc    domain.BannerService
	writer response.ResponseWriter
	log    logger.Logger
}

func NewBannerHandler(svc domain.BannerService, w response.ResponseWriter, log logger.Logger) *BannerHandler {
	return &BannerHandler{svc: svc, writer: w, log: log}
}

func (h *BannerHandler) Store(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBannerUpload)
	if err := r.ParseMultipartForm(maxBannerUpload); err != nil {
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: "invalid multipart form",
		})
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := domain.BannerRequest{
		Name:        r.FormValue("name"),
		Grade:       r.FormValue("grade"),
		Price:       r.FormValue("price"),
		Available:   r.FormValue("available"),
		Metrics:     r.FormValue("metrics"),
		ActionLabel: r.FormValue("action_label"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			h.writer.Write(w, http.StatusBadRequest, &response.Response{
				Message: "failed to read image",
			})
			return
		}
		req.Image = data
		req.ContentType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
	default:
		h.writer.Write(w, http.StatusBadRequest, &response.Response{
			Message: "invalid image upload",
		})
		return
	}

	banner, err := h.svc.Publish(r.Context(), req)
	if err != nil {
		h.writePublishError(w, err)
		return
	}

	h.writer.Write(w, http.StatusCreated, &response.Response{
		Message: "Banner Uploaded Successfully",
		Data:    banner,
	})
}

func (h *BannerHandler) writePublishError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBannerIncomplete), errors.Is(err, domain.ErrInvalidPrice):
		h.writer.Write(w, http.StatusUnprocessableEntity, &response.Response{
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrUnauthorized):
		h.writer.Write(w, http.StatusUnauthorized, &response.Response{
			Message: "unauthorized",
		})
	case errors.Is(err, domain.ErrUploadFailed):
		h.writer.Write(w, http.StatusBadGateway, &response.Response{
			Message: domain.ErrUploadFailed.Error(),
		})
	case errors.Is(err, domain.ErrPublishFailed):
		h.writer.Write(w, http.StatusBadGateway, &response.Response{
			Message: domain.ErrPublishFailed.Error(),
		})
	default:
		h.log.Error("http: banner publish failed", "error", err)
		h.writer.Write(w, http.StatusInternalServerError, &response.Response{
			Message: "failed to publish banner",
		})
	}
}
