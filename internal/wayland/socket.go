package wayland

import (
	"net"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/dwlr/dpms/internal/logger"
	"github.com/dwlr/dpms/internal/power"
)

const probeTimeout = 100 * time.Millisecond

// DiscoverSocket locates the compositor socket. Preference order:
// an explicit override (config), WAYLAND_DISPLAY (absolute paths are
// used verbatim, names are joined to the runtime dir), and finally a
// scan of the runtime dir and its user-scoped siblings for wayland-N
// sockets — the case of an SSH session into a machine with a running
// compositor. Returns ErrUnsupportedEnvironment when nothing is
// reachable.
func DiscoverSocket(override string) (string, error) {
	name := override
	if name == "" {
		name = os.Getenv("WAYLAND_DISPLAY")
	}

	if name != "" {
		if filepath.IsAbs(name) {
			return name, nil
		}
		return filepath.Join(xdg.RuntimeDir, name), nil
	}

	if path := scanForSocket(xdg.RuntimeDir); path != "" {
		logger.Debugf("auto-discovered wayland socket %s", path)
		return path, nil
	}
	return "", power.ErrUnsupportedEnvironment
}

// scanForSocket looks for reachable wayland-N sockets in runtimeDir
// first, then in its sibling per-user runtime dirs. Candidates are
// probed smallest name first.
func scanForSocket(runtimeDir string) string {
	dirs := []string{runtimeDir}
	parent := filepath.Dir(runtimeDir)
	if entries, err := os.ReadDir(parent); err == nil {
		for _, e := range entries {
			sibling := filepath.Join(parent, e.Name())
			if e.IsDir() && sibling != runtimeDir {
				dirs = append(dirs, sibling)
			}
		}
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		var candidates []string
		for _, e := range entries {
			if isSocketName(e.Name()) {
				candidates = append(candidates, e.Name())
			}
		}
		sort.Strings(candidates)
		for _, c := range candidates {
			path := filepath.Join(dir, c)
			if reachable(path) {
				return path
			}
		}
	}
	return ""
}

// isSocketName reports whether name matches wayland-[0-9]*.
func isSocketName(name string) bool {
	const prefix = "wayland-"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false
	}
	for _, r := range name[len(prefix):] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func reachable(path string) bool {
	conn, err := net.DialTimeout("unix", path, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
