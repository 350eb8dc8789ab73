package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyllabusStatus marks whether an upload is eligible for periodic cleanup.
type SyllabusStatus string

const (
	// SyllabusStatusTemporary uploads are removed once they exceed the retention window.
	SyllabusStatusTemporary SyllabusStatus = "temporary"
	// SyllabusStatusPermanent uploads are never removed by cleanup.
	SyllabusStatusPermanent SyllabusStatus = "permanent"
)

var (
	ErrEmptyFilename         = fmt.Errorf("%w: filename cannot be empty", ErrValidation)
	ErrEmptyFileID           = fmt.Errorf("%w: file ID cannot be empty", ErrValidation)
	ErrEmptyUploader         = fmt.Errorf("%w: uploader cannot be empty", ErrValidation)
	ErrInvalidSyllabusStatus = fmt.Errorf("%w: invalid syllabus status", ErrValidation)
)

// SyllabusFile is the metadata record of an uploaded syllabus.
// FileID references the blob holding the content.
type SyllabusFile struct {
	ID          uuid.UUID      `json:"id"`
	FileID      string         `json:"file_id"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Size        int64          `json:"size"`
	UploadedBy  uuid.UUID      `json:"uploaded_by"`
	UploadedAt  time.Time      `json:"uploaded_at"`
	Status      SyllabusStatus `json:"status"`
}

// NewSyllabusFile builds a metadata record for a stored blob.
func NewSyllabusFile(
	fileID, filename, contentType string,
	size int64,
	uploadedBy uuid.UUID,
	status SyllabusStatus,
) (*SyllabusFile, error) {
	s := &SyllabusFile{
		ID:          uuid.New(),
		FileID:      fileID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  uploadedBy,
		UploadedAt:  time.Now().UTC(),
		Status:      status,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the SyllabusFile has valid data.
func (s *SyllabusFile) Validate() error {
	if s.FileID == "" {
		return ErrEmptyFileID
	}
	if s.Filename == "" {
		return ErrEmptyFilename
	}
	if s.UploadedBy == uuid.Nil {
		return ErrEmptyUploader
	}
	if !s.Status.Valid() {
		return ErrInvalidSyllabusStatus
	}
	return nil
}

// Valid reports whether the status is a known value.
func (st SyllabusStatus) Valid() bool {
	return st == SyllabusStatusTemporary || st == SyllabusStatusPermanent
}

// ParseSyllabusStatus maps form input to a status. Empty input means permanent.
func ParseSyllabusStatus(raw string) (SyllabusStatus, error) {
	if raw == "" {
		return SyllabusStatusPermanent, nil
	}
	st := SyllabusStatus(raw)
	if !st.Valid() {
		return "", ErrInvalidSyllabusStatus
	}
	return st, nil
}

// RetentionCutoff is the upload time before which temporary syllabi expire.
func RetentionCutoff(now time.Time, retention time.Duration) time.Time {
	return now.Add(-retention)
}

// ExpiredBy reports whether cleanup should remove the record: it must be
// temporary and uploaded strictly before cutoff.
func (s *SyllabusFile) ExpiredBy(cutoff time.Time) bool {
	return s.Status == SyllabusStatusTemporary && s.UploadedAt.Before(cutoff)
}
