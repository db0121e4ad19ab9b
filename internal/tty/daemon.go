package tty

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/dwlr/dpms/internal/drm"
	"github.com/dwlr/dpms/internal/logger"
	"github.com/dwlr/dpms/internal/power"
	"github.com/dwlr/dpms/internal/seat"
)

// DaemonCommand is the hidden subcommand the CLI re-executes itself
// with instead of forking; the child performs the acquire-and-wait
// loop of the daemon.
const DaemonCommand = "__daemon"

const (
	startPollInterval = 100 * time.Millisecond
	startPollAttempts = 20

	stopPollInterval = 100 * time.Millisecond
	stopPollAttempts = 50
)

// RunDaemon is the daemon main: it runs inside the re-executed child,
// which is already a session leader with stdio on /dev/null.
//
// Lifecycle: acquire seat and DRM device, disable the target CRTCs,
// advertise via the PID file, block until SIGTERM/SIGINT, restore,
// clean up. If the process dies instead, closing the DRM fd drops
// master and the kernel restores CRTC state on its own.
func RunDaemon(connectors []string, cardOverride string) error {
	// Install handlers before touching the hardware so a very early
	// signal cannot leave displays off.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	dev, sess, err := openDevice(cardOverride)
	if err != nil {
		return err
	}
	defer func() {
		dev.Close()
		if sess != nil {
			sess.Close()
		}
	}()

	conns, err := dev.Connectors()
	if err != nil {
		return err
	}
	crtcs, err := selectCrtcs(conns, connectors)
	if err != nil {
		return err
	}

	disabled := make([]uint32, 0, len(crtcs))
	for _, crtc := range crtcs {
		if err := dev.SetCrtcActive(crtc, false); err != nil {
			restore(dev, disabled)
			return err
		}
		disabled = append(disabled, crtc)
	}

	pidPath := PIDFilePath()
	if err := WritePIDFile(pidPath, os.Getpid()); err != nil {
		restore(dev, disabled)
		return &power.DaemonStartError{Reason: "writing pid file", Err: err}
	}

	logger.Infof("daemon up, %d crtc(s) off", len(disabled))
	<-sigCh

	restore(dev, disabled)
	if err := RemovePIDFile(pidPath); err != nil {
		logger.Errorf("removing pid file: %v", err)
	}
	return nil
}

func restore(dev *drm.Device, crtcs []uint32) {
	for _, crtc := range crtcs {
		if err := dev.SetCrtcActive(crtc, true); err != nil {
			logger.Errorf("restoring crtc %d: %v", crtc, err)
		}
	}
}

// openDevice obtains a DRM device, preferring a seat-granted fd and
// falling back to a direct open with explicit master acquisition.
func openDevice(cardOverride string) (*drm.Device, *seat.Session, error) {
	cards := drm.Cards()
	if cardOverride != "" {
		cards = []string{cardOverride}
	}
	if len(cards) == 0 {
		return nil, nil, &power.DrmError{Op: "open", Err: os.ErrNotExist}
	}

	if sess, err := seat.Open(); err == nil {
		for _, card := range cards {
			fd, err := sess.TakeDevice(card)
			if err != nil {
				logger.Debugf("seat open of %s failed: %v", card, err)
				continue
			}
			dev := drm.NewDevice(fd, func() error { return syscall.Close(fd) })
			if err := dev.SetAtomicCap(); err != nil {
				dev.Close()
				continue
			}
			return dev, sess, nil
		}
		sess.Close()
	} else {
		logger.Debugf("seat unavailable, trying direct DRM access: %v", err)
	}

	var lastErr error
	for _, card := range cards {
		dev, err := drm.OpenDirect(card)
		if err != nil {
			lastErr = err
			continue
		}
		if err := dev.SetAtomicCap(); err != nil {
			dev.Close()
			lastErr = err
			continue
		}
		return dev, nil, nil
	}
	if lastErr == nil {
		lastErr = os.ErrNotExist
	}
	return nil, nil, &power.DrmError{Op: "open", Err: lastErr}
}

// selectCrtcs resolves the daemon's command-line connector names to
// CRTC ids. With no names the first connected connector is driven,
// mirroring the single-display behavior of plain "dpms off".
func selectCrtcs(conns []drm.Connector, names []string) ([]uint32, error) {
	if len(conns) == 0 {
		return nil, power.ErrNoDisplayFound
	}

	if len(names) == 0 {
		return []uint32{conns[0].CrtcID}, nil
	}

	byName := make(map[string]uint32, len(conns))
	infos := make([]power.DisplayInfo, len(conns))
	for i, c := range conns {
		byName[c.Name] = c.CrtcID
		infos[i] = power.DisplayInfo{Name: c.Name}
	}

	seen := make(map[uint32]bool)
	var crtcs []uint32
	for _, name := range names {
		selected, err := power.Resolve(power.NamedTarget(name), infos)
		if err != nil {
			return nil, err
		}
		crtc := byName[selected[0].Name]
		if !seen[crtc] {
			seen[crtc] = true
			crtcs = append(crtcs, crtc)
		}
	}
	return crtcs, nil
}

// StartDaemon spawns the daemon by re-executing the current binary with
// the hidden daemon subcommand and waits for it to advertise itself.
func StartDaemon(connectors []string) error {
	exe, err := os.Executable()
	if err != nil {
		return &power.DaemonStartError{Reason: "locating executable", Err: err}
	}

	args := append([]string{DaemonCommand}, connectors...)
	cmd := exec.Command(exe, args...)
	// The child becomes a session leader; stdio stays on /dev/null
	// (exec.Cmd's default for nil streams).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return &power.DaemonStartError{Reason: "spawning daemon", Err: err}
	}
	childPID := cmd.Process.Pid
	_ = cmd.Process.Release()

	pidPath := PIDFilePath()
	for i := 0; i < startPollAttempts; i++ {
		time.Sleep(startPollInterval)
		pid, err := ReadPIDFile(pidPath)
		if err == nil && pid == childPID {
			return nil
		}
	}
	return &power.DaemonStartError{Reason: "daemon did not advertise within timeout"}
}

// StopDaemon signals the daemon with SIGTERM and waits for it to exit.
// Returns the daemon PID that was stopped, or 0 when none was running.
func StopDaemon() (int, error) {
	pid := LivePID()
	if pid == 0 {
		return 0, nil
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		if err == syscall.ESRCH {
			_ = RemovePIDFile(PIDFilePath())
			return 0, nil
		}
		return pid, &power.DaemonStartError{Reason: "signalling daemon", Err: err}
	}

	for i := 0; i < stopPollAttempts; i++ {
		time.Sleep(stopPollInterval)
		if !processAlive(pid) {
			// The daemon unlinks its own PID file; clean up anyway in
			// case it died between restore and unlink.
			_ = RemovePIDFile(PIDFilePath())
			return pid, nil
		}
	}
	return pid, &power.DaemonStopTimeoutError{PID: pid}
}
