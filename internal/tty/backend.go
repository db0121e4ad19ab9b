package tty

import (
	"fmt"
	"os"

	"github.com/dwlr/dpms/internal/drm"
	"github.com/dwlr/dpms/internal/logger"
	"github.com/dwlr/dpms/internal/power"
)

// defaultDisplayName is the pseudo-display reported for the
// no-argument status path, kept for compatibility with the original
// single-display output surface.
const defaultDisplayName = "Display"

// Backend coordinates the TTY daemon: power-off spawns it, power-on
// signals it, state queries derive from its liveness. The backend
// itself holds no DRM resources beyond short read-only enumerations.
type Backend struct {
	card string
}

// NewBackend returns a TTY backend. card optionally pins the DRM
// device path.
func NewBackend(card string) *Backend {
	return &Backend{card: card}
}

// SetPower implements power.Backend.
func (b *Backend) SetPower(target power.DisplayTarget, state power.PowerState) error {
	switch state {
	case power.PowerOff:
		return b.powerOff(target)
	default:
		return b.powerOn()
	}
}

func (b *Backend) powerOff(target power.DisplayTarget) error {
	if LivePID() != 0 {
		fmt.Fprintln(os.Stderr, "Display already off")
		return nil
	}

	connectors, err := b.targetConnectors(target)
	if err != nil {
		return err
	}
	return StartDaemon(connectors)
}

func (b *Backend) powerOn() error {
	if LivePID() == 0 {
		fmt.Fprintln(os.Stderr, "Display already on")
		return nil
	}
	pid, err := StopDaemon()
	if err != nil {
		return err
	}
	if pid != 0 {
		logger.Debugf("daemon %d stopped", pid)
	}
	return nil
}

// targetConnectors maps a target to the connector names handed to the
// daemon. The default target passes none: the daemon then drives the
// first connected connector itself, so power-off works even when the
// coordinator cannot enumerate (e.g. no read access to the card).
func (b *Backend) targetConnectors(target power.DisplayTarget) ([]string, error) {
	if target.Kind == power.TargetDefault {
		return nil, nil
	}

	available, err := b.enumerate()
	if err != nil {
		return nil, err
	}
	selected, err := power.Resolve(target, available)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, power.ErrNoDisplayFound
	}
	return power.Names(selected), nil
}

// GetPower implements power.Backend. Power state is the daemon's
// liveness, never the KMS ACTIVE bits: those reflect the daemon's own
// action, not user intent.
func (b *Backend) GetPower(target power.DisplayTarget) ([]power.DisplayInfo, error) {
	state := power.PowerOn
	if LivePID() != 0 {
		state = power.PowerOff
	}

	if target.Kind == power.TargetDefault {
		return []power.DisplayInfo{{
			Name:        defaultDisplayName,
			Power:       state,
			Description: "TTY console display",
		}}, nil
	}

	available, err := b.enumerate()
	if err != nil {
		return nil, err
	}
	selected, err := power.Resolve(target, available)
	if err != nil {
		return nil, err
	}
	for i := range selected {
		selected[i].Power = state
	}
	return selected, nil
}

// ListDisplays implements power.Backend. Enumeration is read-only; if
// the card cannot be opened at all the single pseudo-display is
// reported instead so status surfaces remain usable over SSH.
func (b *Backend) ListDisplays() ([]power.DisplayInfo, error) {
	infos, err := b.GetPower(power.AllTarget())
	if err != nil {
		logger.Debugf("drm enumeration failed, reporting console display: %v", err)
		return b.GetPower(power.DefaultTarget())
	}
	return infos, nil
}

// enumerate lists connected connectors without claiming DRM master.
func (b *Backend) enumerate() ([]power.DisplayInfo, error) {
	cards := drm.Cards()
	if b.card != "" {
		cards = []string{b.card}
	}

	var lastErr error
	for _, card := range cards {
		dev, err := drm.OpenReadOnly(card)
		if err != nil {
			lastErr = err
			continue
		}
		conns, err := dev.Connectors()
		dev.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if len(conns) == 0 {
			continue
		}
		infos := make([]power.DisplayInfo, len(conns))
		for i, c := range conns {
			infos[i] = power.DisplayInfo{Name: c.Name, Power: power.PowerOn}
		}
		return infos, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, power.ErrNoDisplayFound
}

// Close implements power.Backend; the coordinator holds nothing open.
func (b *Backend) Close() error { return nil }
