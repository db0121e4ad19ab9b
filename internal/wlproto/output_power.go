package wlproto

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	OutputPowerManagerInterface = "zwlr_output_power_manager_v1"
	OutputPowerInterface        = "zwlr_output_power_v1"
)

// Power mode values from the protocol.
const (
	PowerModeOff = 0
	PowerModeOn  = 1
)

// OutputPowerManager is the bound zwlr_output_power_manager_v1 global.
type OutputPowerManager struct {
	wl.BaseProxy
}

// NewOutputPowerManager creates an unbound manager proxy; bind it
// through the registry before use.
func NewOutputPowerManager(ctx *wl.Context) *OutputPowerManager {
	manager := &OutputPowerManager{}
	manager.SetContext(ctx)
	return manager
}

// GetOutputPower creates a power control object for the given output.
// Per the protocol each object is single-use: issue a request or read
// the mode event, then Destroy it.
func (m *OutputPowerManager) GetOutputPower(output *Output) (*OutputPower, error) {
	id := m.Context().AllocateID()

	p := &OutputPower{}
	p.SetContext(m.Context())
	p.SetID(id)
	m.Context().Register(p)

	// Opcode 0: get_output_power(id new_id, output wl_output)
	const opcode = 0
	if err := m.Context().SendRequest(m, opcode, p, output); err != nil {
		m.Context().Unregister(p)
		return nil, err
	}
	return p, nil
}

// Destroy destroys the manager.
func (m *OutputPowerManager) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events (the manager has none).
func (m *OutputPowerManager) Dispatch(_ *wl.Event) {}

// OutputPower is a zwlr_output_power_v1 object controlling one output.
type OutputPower struct {
	wl.BaseProxy

	modeHandler   func(mode uint32)
	failedHandler func()
}

// SetModeHandler sets the handler for the mode event.
func (p *OutputPower) SetModeHandler(handler func(mode uint32)) {
	p.modeHandler = handler
}

// SetFailedHandler sets the handler for the failed event, sent when the
// object became inert (output disappeared or another client took over).
func (p *OutputPower) SetFailedHandler(handler func()) {
	p.failedHandler = handler
}

// SetMode requests a new power mode for the output.
func (p *OutputPower) SetMode(mode uint32) error {
	// Opcode 0: set_mode
	const opcode = 0
	return p.Context().SendRequest(p, opcode, mode)
}

// Destroy destroys the power control object.
func (p *OutputPower) Destroy() error {
	// Opcode 1: destroy
	const opcode = 1
	err := p.Context().SendRequest(p, opcode)
	p.Context().Unregister(p)
	return err
}

// Dispatch handles incoming events.
func (p *OutputPower) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case 0: // mode
		mode := event.Uint32()
		if p.modeHandler != nil {
			p.modeHandler(mode)
		}
	case 1: // failed
		if p.failedHandler != nil {
			p.failedHandler()
		}
	}
}
