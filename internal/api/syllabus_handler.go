package api

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/Script-GH/Ai-tutor/internal/api/shared"
	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before parts spill to temporary files.
const multipartMemory = 8 << 20

// SyllabusHandler handles syllabus upload, download and search.
type SyllabusHandler struct {
	syllabi        store.SyllabusStore
	blobs          store.BlobStore
	maxUploadBytes int64
}

// NewSyllabusHandler creates a SyllabusHandler. Upload bodies larger than
// maxUploadBytes are rejected.
func NewSyllabusHandler(syllabi store.SyllabusStore, blobs store.BlobStore, maxUploadBytes int64) *SyllabusHandler {
	return &SyllabusHandler{
		syllabi:        syllabi,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload handles POST /api/upload/syllabus with a multipart "file" part and
// an optional "status" field (temporary or permanent).
func (h *SyllabusHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		// Browsers send an empty, filename-less part when nothing was chosen.
		if _, present := r.MultipartForm.Value["file"]; present {
			shared.RespondWithError(w, r, http.StatusBadRequest, "No file selected")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if header.Filename == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No file selected")
		return
	}

	status, err := domain.ParseSyllabusStatus(r.FormValue("status"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "File upload failed", err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	blobID, err := h.blobs.Put(r.Context(), data, header.Filename, contentType)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "File upload failed", err)
		return
	}

	syllabus, err := domain.NewSyllabusFile(string(blobID), header.Filename, contentType,
		int64(len(data)), userID, status)
	if err != nil {
		h.discardBlob(r, blobID)
		HandleAPIError(w, r, err, "File upload failed")
		return
	}

	if err := h.syllabi.Create(r.Context(), syllabus); err != nil {
		h.discardBlob(r, blobID)
		HandleAPIError(w, r, err, "File upload failed")
		return
	}

	log.Info("syllabus uploaded",
		"syllabus_id", syllabus.ID,
		"file_id", blobID,
		"size", syllabus.Size,
		"status", syllabus.Status)

	shared.RespondWithJSON(w, r, http.StatusOK, UploadResponse{
		Message:    "File uploaded successfully",
		FileID:     string(blobID),
		SyllabusID: syllabus.ID,
	})
}

// discardBlob removes a blob stored for a failed upload unless an existing
// syllabus shares the same content.
func (h *SyllabusHandler) discardBlob(r *http.Request, id store.BlobID) {
	log := logger.FromContext(r.Context())

	referenced, err := h.syllabi.FileReferenced(r.Context(), string(id))
	if err != nil {
		log.Warn("could not check blob references", "file_id", id, "error", err)
		return
	}
	if referenced {
		return
	}
	if err := h.blobs.Delete(r.Context(), id); err != nil {
		log.Warn("failed to delete orphaned blob", "file_id", id, "error", err)
	}
}

// Download handles GET /api/upload/syllabus/{id}. Only the uploader can
// fetch the file; anyone else gets 404.
func (h *SyllabusHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, syllabusID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	syllabus, err := h.syllabi.GetByID(r.Context(), syllabusID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve file")
		return
	}
	if syllabus.UploadedBy != userID {
		HandleAPIError(w, r, store.ErrSyllabusNotFound, "")
		return
	}

	data, err := h.blobs.Get(r.Context(), store.BlobID(syllabus.FileID))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve file")
		return
	}

	contentType := syllabus.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": syllabus.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.FromContext(r.Context()).Warn("failed to write file response", "error", err)
	}
}
