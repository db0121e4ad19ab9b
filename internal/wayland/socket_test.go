package wayland

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/dwlr/dpms/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T, path string) {
	t.Helper()
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
}

func runtimeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

func TestIsSocketName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "wayland-0", want: true},
		{name: "wayland-1", want: true},
		{name: "wayland-12", want: true},
		{name: "wayland-", want: false},
		{name: "wayland-0.lock", want: false},
		{name: "wayland-abc", want: false},
		{name: "x11-0", want: false},
		{name: "wayland", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSocketName(tt.name))
		})
	}
}

func TestDiscoverSocketAbsolutePath(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "/somewhere/wayland-9")

	path, err := DiscoverSocket("")
	require.NoError(t, err)
	assert.Equal(t, "/somewhere/wayland-9", path, "absolute WAYLAND_DISPLAY is used verbatim")
}

func TestDiscoverSocketJoinsRuntimeDir(t *testing.T) {
	dir := runtimeDir(t)
	t.Setenv("WAYLAND_DISPLAY", "wayland-1")

	path, err := DiscoverSocket("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wayland-1"), path)
}

func TestDiscoverSocketOverrideWinsOverEnv(t *testing.T) {
	dir := runtimeDir(t)
	t.Setenv("WAYLAND_DISPLAY", "wayland-1")

	path, err := DiscoverSocket("wayland-7")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wayland-7"), path)
}

func TestDiscoverSocketScansRuntimeDir(t *testing.T) {
	dir := runtimeDir(t)
	t.Setenv("WAYLAND_DISPLAY", "")

	listen(t, filepath.Join(dir, "wayland-1"))
	listen(t, filepath.Join(dir, "wayland-0"))

	path, err := DiscoverSocket("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wayland-0"), path, "lexicographically smallest reachable socket wins")
}

func TestDiscoverSocketSkipsUnreachable(t *testing.T) {
	dir := runtimeDir(t)
	t.Setenv("WAYLAND_DISPLAY", "")

	// A dead socket file: present on disk, nobody listening.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wayland-0"), nil, 0o600))
	listen(t, filepath.Join(dir, "wayland-1"))

	path, err := DiscoverSocket("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wayland-1"), path)
}

func TestDiscoverSocketScansSiblingDirs(t *testing.T) {
	parent := t.TempDir()
	own := filepath.Join(parent, "1000")
	sibling := filepath.Join(parent, "1001")
	require.NoError(t, os.MkdirAll(own, 0o700))
	require.NoError(t, os.MkdirAll(sibling, 0o700))

	t.Setenv("XDG_RUNTIME_DIR", own)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Setenv("WAYLAND_DISPLAY", "")

	listen(t, filepath.Join(sibling, "wayland-0"))

	path, err := DiscoverSocket("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sibling, "wayland-0"), path)
}

func TestDiscoverSocketNothingReachable(t *testing.T) {
	runtimeDir(t)
	t.Setenv("WAYLAND_DISPLAY", "")

	_, err := DiscoverSocket("")
	assert.ErrorIs(t, err, power.ErrUnsupportedEnvironment)
}
