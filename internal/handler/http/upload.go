package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stephenstephen/review/internal/storage"
	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/httputil"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 << 10

// UploadHandler accepts product image uploads and serves stored images.
type UploadHandler struct {
	storage  storage.Storage
	maxBytes int64
	logger   *slog.Logger
}

func NewUploadHandler(s storage.Storage, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{storage: s, maxBytes: maxBytes, logger: logger}
}

// Upload handles POST /api/v1/uploads with a multipart "file" field. The
// type is sniffed from the content, never taken from the client.
// @Summary Upload a product image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/uploads [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteValidationError(w, apperrors.InvalidInput(fmt.Sprintf("file exceeds %d bytes", h.maxBytes)))
			return
		}
		httputil.WriteValidationError(w, apperrors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		httputil.WriteValidationError(w, apperrors.InvalidInput(fmt.Sprintf("file exceeds %d bytes", h.maxBytes)))
		return
	}

	head := make([]byte, storage.SniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		httputil.WriteError(w, r, fmt.Errorf("read upload: %w", err), h.logger)
		return
	}
	head = head[:n]
	if n == 0 {
		httputil.WriteValidationError(w, apperrors.InvalidInput("file is empty"))
		return
	}

	contentType, ext, err := storage.DetectImage(head)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.storage.Upload(r.Context(), &storage.UploadInput{
		Key:         storage.NewKey(header.Filename, ext),
		ContentType: contentType,
		Size:        header.Size,
		Data:        io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "image uploaded",
		slog.String("filename", result.Key),
		slog.String("content_type", contentType),
		slog.Int64("size", header.Size),
	)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// Serve handles GET /uploads/{filename}.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "filename")
	fail := func(err error) {
		w.Header().Set("Cache-Control", "no-store")
		httputil.WriteError(w, r, err, h.logger)
	}
	if !storage.ValidKey(key) {
		fail(apperrors.NotFound("file", key))
		return
	}

	rc, info, err := h.storage.Open(r.Context(), key)
	if err != nil {
		fail(err)
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, key, info.ModTime, rc)
}
