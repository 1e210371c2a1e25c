// Package sources implements the source domain for Veracity: uploaded
// documentary evidence files and their extracted page records. A source's
// sha256_hex is the content address of the raw uploaded bytes and is
// independently recomputable from stored bytes; sources and page records
// are immutable after creation.
package sources

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes primary evidence from supporting material.
type Role string

const (
	RolePrimary   Role = "PRIMARY"
	RoleSecondary Role = "SECONDARY"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePrimary || r == RoleSecondary
}

// Source represents one uploaded evidence file.
type Source struct {
	ID          uuid.UUID `json:"id"`
	CorpusID    uuid.UUID `json:"corpus_id"`
	Role        Role      `json:"role"`
	Filename    string    `json:"filename"`
	SHA256Hex   string    `json:"sha256_hex"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
	PageCount   *int      `json:"page_count"`
}

// PageRecord is one extracted page of a source. The page text itself never
// leaves the system through export; only its hash does.
type PageRecord struct {
	SourceID          uuid.UUID `json:"source_id"`
	PageIndex         int       `json:"page_index"`
	PageText          string    `json:"page_text"`
	PageTextSHA256Hex string    `json:"page_text_sha256_hex"`
	PagePNGPath       *string   `json:"page_png_path"`
}

// CreateCommand carries the data needed to upload and register a new source.
// Data holds the raw file bytes; the repository computes the content hash
// and page count (via pdfcpu for PDFs) before persisting.
type CreateCommand struct {
	CorpusID    uuid.UUID
	Data        []byte
	Filename    string
	ContentType string
	Role        Role
}
