package config

// Fighter relocation policies: which existing fighters board a new carrier
const (
	RelocationLowestID  = "lowest-id"
	RelocationHighestID = "highest-id"
)

// RelocationPolicies lists every accepted engine.relocation value
var RelocationPolicies = []string{RelocationLowestID, RelocationHighestID}

// Snapshot stores for the in-progress step
const (
	SnapshotStoreNone     = "none"
	SnapshotStoreDatabase = "database"
	SnapshotStoreFile     = "file"
)

// EngineConfig holds placement engine configuration
type EngineConfig struct {
	// Scenario file loaded when no --scenario flag is given
	ScenarioPath string `mapstructure:"scenario_path"`

	Relocation string `mapstructure:"relocation" validate:"required,relocation"`

	// Where the in-progress step is kept between commands: none, database, file
	SnapshotStore string `mapstructure:"snapshot_store" validate:"required,oneof=none database file"`

	// Directory for zstd snapshot files
	SnapshotDir string `mapstructure:"snapshot_dir" validate:"required_if=SnapshotStore file"`

	DisableHistory bool `mapstructure:"disable_history"`

	// Lock file held while a command changes the step; empty disables locking
	LockFile string `mapstructure:"lock_file" validate:"omitempty,lockfile"`
}
