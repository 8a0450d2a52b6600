package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned when another live process holds the lock
var ErrLocked = errors.New("placement step is locked")

// PIDFile keeps one process at a time changing a player's placement step.
// The file holds the owning process id and the player on two lines.
type PIDFile struct {
	path string
}

// New creates a lock at path
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the lock file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire takes the lock for player. A lock left by a dead process or an
// unreadable lock file is taken over.
func (p *PIDFile) Acquire(player string) error {
	if pid, holder, err := p.read(); err == nil {
		if pid != os.Getpid() && isProcessRunning(pid) {
			return fmt.Errorf("%w: %s is placing in PID %d", ErrLocked, holder, pid)
		}
		_ = os.Remove(p.path)
	} else if !os.IsNotExist(err) {
		_ = os.Remove(p.path)
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create lock directory: %w", err)
		}
	}

	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: lock taken while acquiring", ErrLocked)
		}
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%d\n%s\n", os.Getpid(), player); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return nil
}

// Release removes the lock if this process holds it
func (p *PIDFile) Release() error {
	pid, _, err := p.read()
	if os.IsNotExist(err) {
		return nil
	}
	if err == nil && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (p *PIDFile) read() (int, string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, "", err
	}
	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	pid, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return 0, "", fmt.Errorf("corrupt lock file: %w", err)
	}
	holder := ""
	if len(lines) == 2 {
		holder = strings.TrimSpace(lines[1])
	}
	return pid, holder, nil
}

// isProcessRunning sends signal 0, which only checks that pid exists
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM: the process exists but belongs to someone else
	return errors.Is(err, syscall.EPERM)
}
