package packets

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for evidence packet operations.
type System interface {
	Handler() *Handler

	ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Packet, error)
	Find(ctx context.Context, id uuid.UUID) (*Packet, error)

	// Create binds a DEFENSIBLE, anchored claim to an existing snapshot
	// whose scope includes it. Anything else is a policy refusal.
	Create(ctx context.Context, corpusID, claimID, snapshotID uuid.UUID) (*Packet, error)

	// Verify recomputes the packet hash from its embedded payload.
	Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error)

	// VerifyChain additionally recomputes the referenced snapshot's hash
	// and re-checks scope membership, reporting each check separately.
	VerifyChain(ctx context.Context, id uuid.UUID) (*ChainResult, error)
}
