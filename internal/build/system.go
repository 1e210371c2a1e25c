package build

import "context"

// System defines the public contract for build runs.
type System interface {
	Handler() *Handler

	// Run executes the extraction pipeline for every source in the
	// corpus and commits pages, anchors, and the BUILD_RUN event in one
	// transaction.
	Run(ctx context.Context, cmd Command) (*Result, error)
}
