package persistence

import (
	"time"
)

// HistoryEventModel represents the history_events table
// Seq preserves write order between events that share a timestamp
type HistoryEventModel struct {
	Seq         int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	ID          string    `gorm:"column:id;uniqueIndex;not null"`
	Player      string    `gorm:"column:player;index:idx_history_player_time;not null"`
	Timestamp   time.Time `gorm:"column:timestamp;index:idx_history_player_time;not null"`
	EventType   string    `gorm:"column:event_type;not null"`
	Region      string    `gorm:"column:region"`
	Description string    `gorm:"column:description;not null"`
	UnitIDs     string    `gorm:"column:unit_ids;type:text"` // JSON array as text
	ParentID    *string   `gorm:"column:parent_id"`
}

func (HistoryEventModel) TableName() string {
	return "history_events"
}

// PlacementSnapshotModel represents the placement_snapshots table
// One row per player holds the in-progress placement step
type PlacementSnapshotModel struct {
	Player    string    `gorm:"column:player;primaryKey"`
	Records   int       `gorm:"column:records;not null;default:0"`
	Data      string    `gorm:"column:data;type:text;not null"` // JSON snapshot
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (PlacementSnapshotModel) TableName() string {
	return "placement_snapshots"
}
