package tty

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dwlr/dpms/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// advertiseSelf plants a PID file naming the test process, which passes
// both liveness and comm checks and so counts as a live daemon.
func advertiseSelf(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, WritePIDFile(filepath.Join(dir, pidFileName), os.Getpid()))
}

func TestGetPowerDefaultNoDaemon(t *testing.T) {
	withRuntimeDir(t)
	b := NewBackend("")

	displays, err := b.GetPower(power.DefaultTarget())
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, "Display", displays[0].Name)
	assert.Equal(t, power.PowerOn, displays[0].Power)
}

func TestGetPowerDefaultDaemonRunning(t *testing.T) {
	dir := withRuntimeDir(t)
	advertiseSelf(t, dir)
	b := NewBackend("")

	displays, err := b.GetPower(power.DefaultTarget())
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, power.PowerOff, displays[0].Power)
}

func TestGetPowerDefaultStalePIDFile(t *testing.T) {
	dir := withRuntimeDir(t)
	path := filepath.Join(dir, pidFileName)
	require.NoError(t, os.WriteFile(path, []byte("99999999\n"), 0o600))
	b := NewBackend("")

	displays, err := b.GetPower(power.DefaultTarget())
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, power.PowerOn, displays[0].Power, "stale daemon must read as On")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "stale pid file must be unlinked by the query")
}

func TestSetPowerOffIdempotent(t *testing.T) {
	dir := withRuntimeDir(t)
	advertiseSelf(t, dir)
	b := NewBackend("")

	// A live daemon means the display is already off; no second daemon
	// may be spawned and the command succeeds.
	require.NoError(t, b.SetPower(power.DefaultTarget(), power.PowerOff))
	assert.Equal(t, os.Getpid(), LivePID(), "pid file must be untouched")
}

func TestSetPowerOnIdempotent(t *testing.T) {
	withRuntimeDir(t)
	b := NewBackend("")

	// No daemon: already on, nothing to signal.
	require.NoError(t, b.SetPower(power.DefaultTarget(), power.PowerOn))
	assert.Zero(t, LivePID())
}

func TestCloseIsANoop(t *testing.T) {
	assert.NoError(t, NewBackend("").Close())
}
