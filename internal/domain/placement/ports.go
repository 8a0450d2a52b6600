package placement

import (
	"context"

	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// SnapshotRepository keeps the in-progress placement step of each player so
// a step can be resumed, undo log included, after a restart
type SnapshotRepository interface {
	Save(ctx context.Context, player shared.PlayerID, snap *Snapshot) error

	// Load returns nil, nil when the player has no step in progress
	Load(ctx context.Context, player shared.PlayerID) (*Snapshot, error)

	Delete(ctx context.Context, player shared.PlayerID) error
}
