package cmd

import (
	"errors"
	"os"

	"github.com/dwlr/dpms/internal/config"
	"github.com/dwlr/dpms/internal/logger"
	"github.com/dwlr/dpms/internal/power"
	"github.com/dwlr/dpms/internal/tty"
	"github.com/dwlr/dpms/internal/wayland"
	"github.com/mattn/go-isatty"
)

// newBackend classifies the environment and constructs the matching
// backend. A reachable Wayland socket wins; a socket that turns out to
// be unusable degrades to the TTY backend with a warning when the
// session looks like a console (stale WAYLAND_DISPLAY over SSH is the
// common case); otherwise its error is returned. A DISPLAY-only session
// is X11, which this tool does not speak.
func newBackend() (power.Backend, error) {
	cfg := config.Get()

	b, err := wayland.NewBackend(cfg.Wayland.Display)
	if err == nil {
		return b, nil
	}

	if errors.Is(err, power.ErrUnsupportedEnvironment) {
		// No Wayland socket anywhere.
		if os.Getenv("DISPLAY") != "" {
			return nil, power.ErrProtocolNotSupported
		}
		if ttyEnvironment() {
			return tty.NewBackend(cfg.Drm.Card), nil
		}
		return nil, power.ErrUnsupportedEnvironment
	}

	var wlErr *power.WaylandError
	if errors.As(err, &wlErr) && ttyEnvironment() {
		logger.Warnf("wayland backend failed, falling back to TTY: %v", err)
		return tty.NewBackend(cfg.Drm.Card), nil
	}
	return nil, err
}

// ttyEnvironment reports whether this looks like a seat-backed console
// session: an interactive stdin, or a logind tty session (covers SSH).
func ttyEnvironment() bool {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return true
	}
	return os.Getenv("XDG_SESSION_TYPE") == "tty"
}

func runSetPower(args []string, all bool, state power.PowerState) error {
	target := power.TargetFromArgs(displayArg(args), all)

	backend, err := newBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	return backend.SetPower(target, state)
}
