package ports

import (
	"context"

	"github.com/bft-labs/drawstream/internal/domain"
)

// StatusRepository persists statistics snapshots for operators.
// Implementations should write atomically so a reader never sees a torn file.
type StatusRepository interface {
	// Load returns the last saved snapshot, or a zero snapshot if none exists.
	Load(ctx context.Context) (domain.Status, error)

	// Save persists the snapshot.
	Save(ctx context.Context, status domain.Status) error
}
