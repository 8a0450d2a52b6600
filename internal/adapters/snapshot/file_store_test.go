package snapshot_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/placement-go/internal/adapters/snapshot"
	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

var (
	germany = shared.MustNewPlayerID("Germany")
	savedAt = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
)

func sample() *placement.Snapshot {
	return &placement.Snapshot{
		Ledger: map[string][]string{"Western Germany": {"transport-001", "transport-002"}},
		Records: []placement.RecordSnapshot{{
			ID:          placement.NewRecordID().String(),
			Index:       0,
			Player:      "Germany",
			Producer:    "Western Germany",
			Destination: "North Sea",
			Units:       []string{"transport-001", "transport-002"},
			PlacedAt:    savedAt,
		}},
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	// Arrange
	store := snapshot.NewFileStore(t.TempDir(), shared.NewMockClock(savedAt))
	ctx := context.Background()

	// Act
	require.NoError(t, store.Save(ctx, germany, sample()))
	loaded, err := store.Load(ctx, germany)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sample().Ledger, loaded.Ledger)
	require.Len(t, loaded.Records, 1)
	assert.Equal(t, "North Sea", loaded.Records[0].Destination)

	header, _, err := snapshot.ReadFile(store.Path(germany))
	require.NoError(t, err)
	assert.Equal(t, snapshot.Version, header.Version)
	assert.Equal(t, "Germany", header.Player)
	assert.Equal(t, 1, header.Records)
	assert.True(t, header.SavedAt.Equal(savedAt))
}

func TestFileStore_LoadMissing(t *testing.T) {
	// Arrange
	store := snapshot.NewFileStore(t.TempDir(), nil)

	// Act
	loaded, err := store.Load(context.Background(), germany)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_Delete(t *testing.T) {
	// Arrange
	store := snapshot.NewFileStore(t.TempDir(), nil)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, germany, sample()))

	// Act
	err := store.Delete(ctx, germany)

	// Assert
	require.NoError(t, err)
	_, statErr := os.Stat(store.Path(germany))
	assert.True(t, os.IsNotExist(statErr))
	assert.NoError(t, store.Delete(ctx, germany))
}

func TestFileStore_PathIsSanitised(t *testing.T) {
	// Arrange
	store := snapshot.NewFileStore("/var/lib/placement", nil)

	// Act
	path := store.Path(shared.MustNewPlayerID("../Soviet Union"))

	// Assert
	assert.Equal(t, "/var/lib/placement/___Soviet_Union.snap.zst", path)
}

func TestReadFile_RejectsUnknownVersion(t *testing.T) {
	// Arrange
	path := t.TempDir() + "/old.snap.zst"
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte("{\"version\":99,\"player\":\"Germany\"}\n{}\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	// Act
	_, _, err = snapshot.ReadFile(path)

	// Assert
	assert.ErrorContains(t, err, "unsupported snapshot version 99")
}
