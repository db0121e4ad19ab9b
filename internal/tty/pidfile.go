// Package tty implements display power control on bare virtual
// terminals: a short-lived coordinator (the CLI side) and a background
// daemon that holds DRM master while displays are off.
package tty

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dwlr/dpms/internal/logger"
	"golang.org/x/sys/unix"
)

const pidFileName = "dpms.pid"

// PIDFilePath returns ${XDG_RUNTIME_DIR}/dpms.pid. The xdg library
// falls back to /run/user/$UID when the variable is unset.
func PIDFilePath() string {
	return filepath.Join(xdg.RuntimeDir, pidFileName)
}

// ReadPIDFile parses the PID file. A missing file returns
// os.ErrNotExist; garbage content returns a parse error (the caller
// treats both as "no daemon", the latter as stale).
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file contents %q", strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// WritePIDFile atomically publishes the daemon PID: write a temp
// sibling, fsync-free rename into place, mode 0600.
func WritePIDFile(path string, pid int) error {
	tmp := fmt.Sprintf("%s.%d.tmp", path, pid)
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)+"\n"), 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// RemovePIDFile unlinks the PID file; a missing file is not an error.
func RemovePIDFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// LivePID returns the PID of the running daemon, or 0. Stale PID files
// (unparsable, dead process, or a recycled PID now naming some other
// program) are unlinked on the way.
func LivePID() int {
	path := PIDFilePath()
	pid, err := ReadPIDFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		logger.Debugf("stale pid file: %v", err)
		_ = RemovePIDFile(path)
		return 0
	}

	if !processAlive(pid) {
		logger.Debugf("stale pid file: process %d is gone", pid)
		_ = RemovePIDFile(path)
		return 0
	}

	if comm := processComm(pid); comm != "" && comm != selfComm() {
		logger.Debugf("stale pid file: pid %d is %q, not this program", pid, comm)
		_ = RemovePIDFile(path)
		return 0
	}
	return pid
}

// processAlive probes a PID with signal 0. EPERM still means the
// process exists.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

func processComm(pid int) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func selfComm() string {
	data, err := os.ReadFile("/proc/self/comm")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
