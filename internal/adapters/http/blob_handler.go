package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"lorryadmin/internal/domain"
)

type BlobReader interface {
	GetBlob(ctx context.Context, path string) (*domain.Blob, error)
}

type BlobHandler struct {
	blobs BlobReader
}

func NewBlobHandler(blobs BlobReader) *BlobHandler {
	return &BlobHandler{blobs: blobs}
}

func (h *BlobHandler) Show(w http.ResponseWriter, r *http.Request) {
	blob, err := h.blobs.GetBlob(r.Context(), r.PathValue("path"))
	if err != nil {
		if errors.Is(err, domain.ErrBlobNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to read blob", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(blob.Data)
}
