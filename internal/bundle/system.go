package bundle

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for bundle export and verification.
type System interface {
	Handler() *Handler

	// Export gathers the corpus's entire state and assembles the bundle
	// archive. Corpora over the ledger event cap are refused.
	Export(ctx context.Context, corpusID uuid.UUID, opts Options) (*Archive, error)

	// AuditLines renders the flat proof ledger for a corpus.
	AuditLines(ctx context.Context, corpusID uuid.UUID) (string, error)

	// VerifyArchive checks an uploaded bundle ZIP against its manifest.
	VerifyArchive(ctx context.Context, data []byte, strict bool) (*VerifyResult, error)
}
