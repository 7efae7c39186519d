package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by AcquirePIDFile when another live daemon
// owns the PID file.
var ErrAlreadyRunning = errors.New("daemon already running")

// ErrInvalidPID is returned by Read when the file holds no PID, e.g. after a
// crash mid-write.
var ErrInvalidPID = errors.New("invalid PID in file")

// PIDFile guards against two daemons sharing one database.
type PIDFile struct {
	path string
}

// OpenPIDFile returns the PID file in dir without touching it.
func OpenPIDFile(dir string) *PIDFile {
	return &PIDFile{path: filepath.Join(dir, "clipboard-history.pid")}
}

// AcquirePIDFile writes the current PID into dir. A stale file left by a dead
// process, or one that holds no valid PID, is replaced.
func AcquirePIDFile(dir string) (*PIDFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create PID directory: %w", err)
	}

	p := OpenPIDFile(dir)
	pid, err := p.Read()
	switch {
	case errors.Is(err, ErrInvalidPID):
		slog.Warn("replacing unreadable PID file", "path", p.path, "err", err)
		pid = 0
	case err != nil:
		return nil, err
	}
	if pid != 0 && pid != os.Getpid() && isRunning(pid) {
		return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return nil, fmt.Errorf("failed to write PID file: %w", err)
	}
	return p, nil
}

// Path returns the file location.
func (p *PIDFile) Path() string { return p.path }

// Read returns the stored PID, or 0 when there is no file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPID, data)
	}
	return pid, nil
}

// Release removes the PID file.
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Terminate asks the daemon recorded in the file to exit.
func (p *PIDFile) Terminate() (int, error) {
	pid, err := p.Read()
	if err != nil {
		return 0, err
	}
	if pid == 0 || !isRunning(pid) {
		return pid, errors.New("daemon is not running")
	}
	return pid, killProcess(pid)
}

// killProcess attempts to kill a process with the given PID
func killProcess(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	// SIGTERM first so the daemon can shut down cleanly
	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}
	return nil
}
