package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/mocks"
)

const testMaxUpload = 1 << 20

// multipartBody builds a multipart form. A nil content adds no file part.
func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if content != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", "application/pdf")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, h *SyllabusHandler, userID uuid.UUID, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content, fields)
	req := newRequest(http.MethodPost, "/api/upload/syllabus", body, userID)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)
	return w
}

func TestUploadAndDownload(t *testing.T) {
	t.Parallel()

	syllabi := mocks.NewMockSyllabusStore()
	blobs := mocks.NewMockBlobStore()
	handler := NewSyllabusHandler(syllabi, blobs, testMaxUpload)
	owner := uuid.New()
	content := []byte("%PDF-1.4 algebra syllabus")

	w := upload(t, handler, owner, "algebra.pdf", content, map[string]string{"status": "temporary"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[UploadResponse](t, w)
	assert.Equal(t, "File uploaded successfully", resp.Message)
	assert.Len(t, resp.FileID, 64)

	stored, err := syllabi.GetByID(context.Background(), resp.SyllabusID)
	require.NoError(t, err)
	assert.Equal(t, "algebra.pdf", stored.Filename)
	assert.Equal(t, owner, stored.UploadedBy)
	assert.Equal(t, domain.SyllabusStatusTemporary, stored.Status)
	assert.Equal(t, int64(len(content)), stored.Size)
	assert.Equal(t, "application/pdf", stored.ContentType)

	t.Run("owner downloads the bytes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := withURLParam(newRequest(http.MethodGet, "/api/upload/syllabus/x", nil, owner), "id", resp.SyllabusID.String())
		handler.Download(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, content, w.Body.Bytes())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "algebra.pdf")
	})

	t.Run("other users get 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := withURLParam(newRequest(http.MethodGet, "/api/upload/syllabus/x", nil, uuid.New()), "id", resp.SyllabusID.String())
		handler.Download(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := withURLParam(newRequest(http.MethodGet, "/api/upload/syllabus/x", nil, owner), "id", uuid.NewString())
		handler.Download(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "File not found")
	})

	t.Run("malformed id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := withURLParam(newRequest(http.MethodGet, "/api/upload/syllabus/x", nil, owner), "id", "not-a-uuid")
		handler.Download(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUploadDefaultsToPermanent(t *testing.T) {
	t.Parallel()

	syllabi := mocks.NewMockSyllabusStore()
	handler := NewSyllabusHandler(syllabi, mocks.NewMockBlobStore(), testMaxUpload)

	w := upload(t, handler, uuid.New(), "notes.pdf", []byte("notes"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[UploadResponse](t, w)
	stored, err := syllabi.GetByID(context.Background(), resp.SyllabusID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyllabusStatusPermanent, stored.Status)
}

func TestUploadRejections(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		maxBytes   int64
		send       func(t *testing.T, h *SyllabusHandler) *httptest.ResponseRecorder
		wantStatus int
		wantBody   string
	}{
		{
			name: "no file part",
			send: func(t *testing.T, h *SyllabusHandler) *httptest.ResponseRecorder {
				return upload(t, h, userID, "", nil, map[string]string{"status": "permanent"})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "No file provided",
		},
		{
			name: "empty file selection",
			send: func(t *testing.T, h *SyllabusHandler) *httptest.ResponseRecorder {
				return upload(t, h, userID, "", []byte{}, nil)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "No file selected",
		},
		{
			name: "not multipart",
			send: func(t *testing.T, h *SyllabusHandler) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				h.Upload(w, newJSONRequest(http.MethodPost, "/api/upload/syllabus", `{}`, userID))
				return w
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "No file provided",
		},
		{
			name: "invalid status",
			send: func(t *testing.T, h *SyllabusHandler) *httptest.ResponseRecorder {
				return upload(t, h, userID, "a.pdf", []byte("a"), map[string]string{"status": "forever"})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid status",
		},
		{
			name:     "file too large",
			maxBytes: 1024,
			send: func(t *testing.T, h *SyllabusHandler) *httptest.ResponseRecorder {
				return upload(t, h, userID, "big.pdf", []byte(strings.Repeat("x", 8192)), nil)
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   "File too large",
		},
		{
			name: "unauthenticated",
			send: func(t *testing.T, h *SyllabusHandler) *httptest.ResponseRecorder {
				return upload(t, h, uuid.Nil, "a.pdf", []byte("a"), nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxBytes := tt.maxBytes
			if maxBytes == 0 {
				maxBytes = testMaxUpload
			}
			syllabi := mocks.NewMockSyllabusStore()
			blobs := mocks.NewMockBlobStore()
			handler := NewSyllabusHandler(syllabi, blobs, maxBytes)

			w := tt.send(t, handler)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			assert.Empty(t, syllabi.Syllabi, "no metadata record is created")
			assert.Empty(t, blobs.Blobs, "no blob is stored")
		})
	}
}

func TestUploadStorageFailures(t *testing.T) {
	t.Parallel()

	t.Run("blob store failure", func(t *testing.T) {
		blobs := mocks.NewMockBlobStore()
		blobs.PutErr = errors.New("s3: connection refused")
		handler := NewSyllabusHandler(mocks.NewMockSyllabusStore(), blobs, testMaxUpload)

		w := upload(t, handler, uuid.New(), "a.pdf", []byte("a"), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "File upload failed")
		assert.NotContains(t, w.Body.String(), "s3")
	})

	t.Run("metadata failure discards the blob", func(t *testing.T) {
		syllabi := mocks.NewMockSyllabusStore()
		syllabi.CreateFn = func(context.Context, *domain.SyllabusFile) error {
			return errors.New("insert failed")
		}
		blobs := mocks.NewMockBlobStore()
		handler := NewSyllabusHandler(syllabi, blobs, testMaxUpload)

		w := upload(t, handler, uuid.New(), "a.pdf", []byte("orphan"), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Len(t, blobs.Deleted, 1)
		assert.Empty(t, blobs.Blobs)
	})
}
