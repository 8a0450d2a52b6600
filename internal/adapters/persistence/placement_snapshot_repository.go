package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// GormSnapshotRepository implements placement.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSnapshotRepository creates a new GORM placement snapshot repository
func NewGormSnapshotRepository(db *gorm.DB, clock shared.Clock) *GormSnapshotRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSnapshotRepository{db: db, clock: clock}
}

// Save upserts the player's snapshot
func (r *GormSnapshotRepository) Save(ctx context.Context, player shared.PlayerID, snap *placement.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal placement snapshot: %w", err)
	}

	model := &PlacementSnapshotModel{
		Player:    player.Value(),
		Records:   len(snap.Records),
		Data:      string(data),
		UpdatedAt: r.clock.Now(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player"}},
		DoUpdates: clause.AssignmentColumns([]string{"records", "data", "updated_at"}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save placement snapshot: %w", result.Error)
	}
	return nil
}

// Load returns the player's snapshot, or nil if none is stored
func (r *GormSnapshotRepository) Load(ctx context.Context, player shared.PlayerID) (*placement.Snapshot, error) {
	var model PlacementSnapshotModel
	result := r.db.WithContext(ctx).Where("player = ?", player.Value()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load placement snapshot: %w", result.Error)
	}

	var snap placement.Snapshot
	if err := json.Unmarshal([]byte(model.Data), &snap); err != nil {
		return nil, fmt.Errorf("invalid placement snapshot in database: %w", err)
	}
	return &snap, nil
}

// Delete removes the player's snapshot
func (r *GormSnapshotRepository) Delete(ctx context.Context, player shared.PlayerID) error {
	result := r.db.WithContext(ctx).Where("player = ?", player.Value()).Delete(&PlacementSnapshotModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete placement snapshot: %w", result.Error)
	}
	return nil
}

// UpdatedAt returns when the player's snapshot was last written
func (r *GormSnapshotRepository) UpdatedAt(ctx context.Context, player shared.PlayerID) (time.Time, error) {
	var model PlacementSnapshotModel
	if err := r.db.WithContext(ctx).Select("updated_at").Where("player = ?", player.Value()).First(&model).Error; err != nil {
		return time.Time{}, fmt.Errorf("failed to read placement snapshot: %w", err)
	}
	return model.UpdatedAt, nil
}

var _ placement.SnapshotRepository = (*GormSnapshotRepository)(nil)
