package helpers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// MockSnapshotRepository keeps placement snapshots in memory. Snapshots are
// stored as JSON so a loaded snapshot never aliases the saved one.
type MockSnapshotRepository struct {
	mu        sync.Mutex
	snapshots map[string][]byte
	SaveCalls int
}

// NewMockSnapshotRepository creates a new mock snapshot repository
func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{snapshots: make(map[string][]byte)}
}

func (m *MockSnapshotRepository) Save(ctx context.Context, player shared.PlayerID, snap *placement.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[player.Value()] = data
	m.SaveCalls++
	return nil
}

func (m *MockSnapshotRepository) Load(ctx context.Context, player shared.PlayerID) (*placement.Snapshot, error) {
	m.mu.Lock()
	data, ok := m.snapshots[player.Value()]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var snap placement.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *MockSnapshotRepository) Delete(ctx context.Context, player shared.PlayerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, player.Value())
	return nil
}

// Has returns true if a snapshot is stored for player
func (m *MockSnapshotRepository) Has(player string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.snapshots[player]
	return ok
}

var _ placement.SnapshotRepository = (*MockSnapshotRepository)(nil)
