// Package lockfile provides the advisory per-working-directory lock
// that serializes whole akari invocations against one environment.
// The history store's own ref atomicity still guards the individual
// write; the lock only prevents interleaved operations.
package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrLocked = errors.New("environment is locked by another akari process")

// Lock is a held advisory lock.
type Lock struct {
	path  string
	Token string
}

type lockInfo struct {
	PID      int       `json:"pid"`
	Token    string    `json:"token"`
	Acquired time.Time `json:"acquired"`
}

// Acquire takes the advisory lock for a working directory. A lock left
// behind by a dead process is broken and re-acquired once.
func Acquire(dir, name string) (*Lock, error) {
	path := filepath.Join(dir, name)

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			token := uuid.NewString()
			info := lockInfo{PID: os.Getpid(), Token: token, Acquired: time.Now().UTC()}
			if encErr := json.NewEncoder(file).Encode(info); encErr != nil {
				file.Close()
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", encErr)
			}
			if err := file.Close(); err != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", err)
			}
			return &Lock{path: path, Token: token}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file %s: %w", path, err)
		}

		holder, readErr := read(path)
		if readErr == nil && processAlive(holder.PID) {
			return nil, fmt.Errorf("held by pid %d since %s: %w",
				holder.PID, holder.Acquired.Format(time.RFC3339), ErrLocked)
		}
		// Unreadable lock files count as stale too.
		log.Warnf("breaking stale lock %s", path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to break stale lock %s: %w", path, err)
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrLocked)
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lock %s: %w", l.path, err)
	}
	return nil
}

func read(path string) (lockInfo, error) {
	var info lockInfo
	data, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(data, &info)
	return info, err
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
