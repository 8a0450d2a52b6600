// Package snapshot stores in-progress placement steps as zstd-compressed files.
//
// A file holds one JSON header line followed by the JSON body:
//
//	{"version":1,"player":"Germany","records":2,"saved_at":"..."}
//	{"ledger":{...},"records":[...]}
package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/andrescamacho/placement-go/internal/domain/placement"
	"github.com/andrescamacho/placement-go/internal/domain/shared"
)

// Version is the current file format version
const Version = 1

const extension = ".snap.zst"

// Header is the first line of a snapshot file
type Header struct {
	Version int       `json:"version"`
	Player  string    `json:"player"`
	Records int       `json:"records"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore implements placement.SnapshotRepository with one file per player
type FileStore struct {
	dir   string
	clock shared.Clock
}

// NewFileStore creates a store writing into dir
func NewFileStore(dir string, clock shared.Clock) *FileStore {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &FileStore{dir: dir, clock: clock}
}

// Path returns the file a player's snapshot is written to
func (s *FileStore) Path(player shared.PlayerID) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, player.Value())
	return filepath.Join(s.dir, name+extension)
}

// Save writes the snapshot through a temporary file so a crash never leaves a torn file
func (s *FileStore) Save(ctx context.Context, player shared.PlayerID, snap *placement.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	path := s.Path(player)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	header := Header{
		Version: Version,
		Player:  player.Value(),
		Records: len(snap.Records),
		SavedAt: s.clock.Now(),
	}
	if err := writeSnapshot(tmp, header, snap); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

func writeSnapshot(f *os.File, header Header, snap *placement.Snapshot) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Load reads the player's snapshot, or returns nil if there is none
func (s *FileStore) Load(ctx context.Context, player shared.PlayerID) (*placement.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, snap, err := ReadFile(s.Path(player))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if header.Player != player.Value() {
		return nil, fmt.Errorf("snapshot belongs to %s, not %s", header.Player, player.Value())
	}
	return snap, nil
}

// Delete removes the player's snapshot file if present
func (s *FileStore) Delete(ctx context.Context, player shared.PlayerID) error {
	if err := os.Remove(s.Path(player)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// ReadFile decodes a snapshot file
func ReadFile(path string) (Header, *placement.Snapshot, error) {
	var header Header
	f, err := os.Open(path)
	if err != nil {
		return header, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return header, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return header, nil, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &header); err != nil {
		return header, nil, fmt.Errorf("decode header: %w", err)
	}
	if header.Version != Version {
		return header, nil, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}

	var snap placement.Snapshot
	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return header, nil, fmt.Errorf("json decode: %w", err)
	}
	return header, &snap, nil
}

var _ placement.SnapshotRepository = (*FileStore)(nil)
