// Package wayland implements the compositor-session power backend over
// the wlr-output-power-management-v1 protocol.
package wayland

import (
	"fmt"
	"sort"

	"github.com/bnema/wlturbo/wl"
	"github.com/dwlr/dpms/internal/logger"
	"github.com/dwlr/dpms/internal/power"
	"github.com/dwlr/dpms/internal/wlproto"
)

// Backend drives display power through the compositor. It lives for one
// CLI invocation: connect, discover, act, Close.
type Backend struct {
	display  *wl.Display
	registry *wl.Registry
	manager  *wlproto.OutputPowerManager
	outputs  map[uint32]*trackedOutput
}

// trackedOutput is the registry-side view of one connected output.
type trackedOutput struct {
	registryName uint32
	proxy        *wlproto.Output
	name         string
	description  string
	vendor       string
	model        string
}

// NewBackend connects to the compositor socket and seeds the output
// map. The first roundtrip drains registry globals, the second the
// wl_output property events.
func NewBackend(socketOverride string) (*Backend, error) {
	socket, err := DiscoverSocket(socketOverride)
	if err != nil {
		return nil, err
	}

	display, err := wl.Connect(socket)
	if err != nil {
		return nil, &power.WaylandError{Context: fmt.Sprintf("connect to %s", socket), Err: err}
	}

	b := &Backend{
		display: display,
		outputs: make(map[uint32]*trackedOutput),
	}

	b.registry = display.GetRegistry()
	b.registry.AddGlobalHandler(b)
	b.registry.AddGlobalRemoveHandler(b)

	if err := display.Roundtrip(); err != nil {
		b.Close()
		return nil, &power.WaylandError{Context: "registry roundtrip", Err: err}
	}
	if err := display.Roundtrip(); err != nil {
		b.Close()
		return nil, &power.WaylandError{Context: "output roundtrip", Err: err}
	}

	logger.Debugf("wayland backend ready, %d outputs", len(b.outputs))
	return b, nil
}

// HandleRegistryGlobal implements wl.RegistryGlobalHandler.
func (b *Backend) HandleRegistryGlobal(event wl.RegistryGlobalEvent) {
	switch event.Interface {
	case wlproto.OutputInterface:
		out := wlproto.NewOutput(b.display.Context())
		version := event.Version
		if version > wlproto.OutputBindVersion {
			version = wlproto.OutputBindVersion
		}
		if err := b.registry.Bind(event.Name, event.Interface, version, out); err != nil {
			logger.Warnf("failed to bind wl_output %d: %v", event.Name, err)
			return
		}

		tracked := &trackedOutput{registryName: event.Name, proxy: out}
		out.SetNameHandler(func(name string) { tracked.name = name })
		out.SetDescriptionHandler(func(desc string) { tracked.description = desc })
		out.SetGeometryHandler(func(mk, model string) {
			tracked.vendor = mk
			tracked.model = model
		})
		b.outputs[event.Name] = tracked

	case wlproto.OutputPowerManagerInterface:
		manager := wlproto.NewOutputPowerManager(b.display.Context())
		if err := b.registry.Bind(event.Name, event.Interface, 1, manager); err != nil {
			logger.Warnf("failed to bind output power manager: %v", err)
			return
		}
		b.manager = manager
	}
}

// HandleRegistryGlobalRemove implements wl.RegistryGlobalRemoveHandler.
func (b *Backend) HandleRegistryGlobalRemove(event wl.RegistryGlobalRemoveEvent) {
	delete(b.outputs, event.Name)
}

// connected returns the tracked outputs in discovery order. Registry
// names grow monotonically with announcement order, so sorting by name
// keeps the order stable for a given compositor state.
func (b *Backend) connected() []*trackedOutput {
	list := make([]*trackedOutput, 0, len(b.outputs))
	for _, out := range b.outputs {
		list = append(list, out)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].registryName < list[j].registryName })
	return list
}

func (t *trackedOutput) info() power.DisplayInfo {
	name := t.name
	if name == "" {
		// wl_output < v4 has no name event
		name = fmt.Sprintf("output-%d", t.registryName)
	}
	return power.DisplayInfo{
		Name:        name,
		Power:       power.PowerOn,
		Description: t.description,
		Make:        t.vendor,
		Model:       t.model,
	}
}

// resolve maps a target onto tracked outputs via the shared selector.
func (b *Backend) resolve(target power.DisplayTarget) ([]*trackedOutput, error) {
	outs := b.connected()
	if len(outs) == 0 {
		return nil, power.ErrNoDisplayFound
	}

	infos := make([]power.DisplayInfo, len(outs))
	byName := make(map[string]*trackedOutput, len(outs))
	for i, out := range outs {
		infos[i] = out.info()
		byName[infos[i].Name] = out
	}

	selected, err := power.Resolve(target, infos)
	if err != nil {
		return nil, err
	}

	result := make([]*trackedOutput, len(selected))
	for i, info := range selected {
		result[i] = byName[info.Name]
	}
	return result, nil
}

// SetPower implements power.Backend.
func (b *Backend) SetPower(target power.DisplayTarget, state power.PowerState) error {
	selected, err := b.resolve(target)
	if err != nil {
		return err
	}
	if b.manager == nil {
		return power.ErrProtocolNotSupported
	}

	mode := uint32(wlproto.PowerModeOn)
	if state == power.PowerOff {
		mode = wlproto.PowerModeOff
	}

	for _, out := range selected {
		ctrl, err := b.manager.GetOutputPower(out.proxy)
		if err != nil {
			return &power.WaylandError{Context: "get_output_power", Err: err}
		}

		failed := false
		ctrl.SetFailedHandler(func() { failed = true })

		if err := ctrl.SetMode(mode); err != nil {
			return &power.WaylandError{Context: "set_mode", Err: err}
		}
		if err := b.display.Roundtrip(); err != nil {
			return &power.WaylandError{Context: "set_mode roundtrip", Err: err}
		}
		if err := ctrl.Destroy(); err != nil {
			return &power.WaylandError{Context: "destroy output power", Err: err}
		}
		if failed {
			return power.ErrProtocolNotSupported
		}
	}
	return nil
}

// GetPower implements power.Backend. The power mode is observed through
// a short-lived control object per output: the compositor reports the
// current mode right after get_output_power.
func (b *Backend) GetPower(target power.DisplayTarget) ([]power.DisplayInfo, error) {
	selected, err := b.resolve(target)
	if err != nil {
		return nil, err
	}

	infos := make([]power.DisplayInfo, 0, len(selected))
	for _, out := range selected {
		info := out.info()
		if b.manager != nil {
			state, err := b.queryMode(out)
			if err != nil {
				return nil, err
			}
			info.Power = state
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (b *Backend) queryMode(out *trackedOutput) (power.PowerState, error) {
	ctrl, err := b.manager.GetOutputPower(out.proxy)
	if err != nil {
		return power.PowerOn, &power.WaylandError{Context: "get_output_power", Err: err}
	}

	// Compositor default when no mode event arrives: treat as on.
	state := power.PowerOn
	ctrl.SetModeHandler(func(mode uint32) {
		if mode == wlproto.PowerModeOff {
			state = power.PowerOff
		} else {
			state = power.PowerOn
		}
	})

	if err := b.display.Roundtrip(); err != nil {
		return power.PowerOn, &power.WaylandError{Context: "mode roundtrip", Err: err}
	}
	if err := ctrl.Destroy(); err != nil {
		return power.PowerOn, &power.WaylandError{Context: "destroy output power", Err: err}
	}
	return state, nil
}

// ListDisplays implements power.Backend.
func (b *Backend) ListDisplays() ([]power.DisplayInfo, error) {
	return b.GetPower(power.AllTarget())
}

// Close tears down the compositor connection.
func (b *Backend) Close() error {
	if b.manager != nil {
		_ = b.manager.Destroy()
		b.manager = nil
	}
	if b.display != nil {
		return b.display.Context().Close()
	}
	return nil
}
