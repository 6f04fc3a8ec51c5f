package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/matheus3301/pairchat/internal/auth"
	"github.com/matheus3301/pairchat/internal/blob"
	"github.com/matheus3301/pairchat/internal/store"
	"go.uber.org/zap"
)

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Key string `json:"Key"`
}

// HeaderUpsert set to "true" overwrites an existing object.
const HeaderUpsert = "x-upsert"

const defaultContentType = "application/octet-stream"

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bucket, name := vars["bucket"], vars["name"]
	owner, _ := auth.ParticipantFrom(r.Context())
	upsert := strings.EqualFold(r.Header.Get(HeaderUpsert), "true")

	if err := blob.ValidateName(bucket, name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if upsert {
		existing, err := s.db.GetBlob(r.Context(), bucket, name)
		switch {
		case err == nil && existing.OwnerID != "" && existing.OwnerID != owner:
			writeError(w, http.StatusForbidden, "object belongs to another participant")
			return
		case err != nil && !errors.Is(err, store.ErrBlobNotFound):
			s.fail(w, "lookup object", err)
			return
		}
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	meta := store.Blob{Bucket: bucket, Name: name, ContentType: contentType, OwnerID: owner}

	stored, err := s.blobs.Put(r.Context(), meta, r.Body, upsert)
	switch {
	case errors.Is(err, store.ErrBlobExists):
		writeError(w, http.StatusConflict, "object already exists")
		return
	case errors.Is(err, blob.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "object too large")
		return
	case errors.Is(err, blob.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.fail(w, "store object", err)
		return
	}

	s.logger.Info("object uploaded",
		zap.String("bucket", bucket),
		zap.String("name", name),
		zap.String("owner", owner),
		zap.Int64("size", stored.Size),
	)
	writeJSON(w, http.StatusOK, UploadResponse{Key: bucket + "/" + name})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	f, meta, err := s.blobs.Open(r.Context(), vars["bucket"], vars["name"])
	switch {
	case errors.Is(err, blob.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrBlobNotFound):
		writeError(w, http.StatusNotFound, "object not found")
		return
	case err != nil:
		s.fail(w, "open object", err)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, meta.Name, meta.UpdatedAt, f)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, op+" failed")
}
