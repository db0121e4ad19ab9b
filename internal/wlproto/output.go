// Package wlproto provides the low-level Wayland protocol objects this
// tool binds: wl_output for display discovery and the
// wlr-output-power-management-v1 extension for power control.
package wlproto

import (
	"github.com/bnema/wlturbo/wl"
)

// Protocol interface names
const (
	OutputInterface = "wl_output"

	// OutputBindVersion is the highest wl_output version we understand.
	// Version 4 adds the name and description events.
	OutputBindVersion = 4
)

// wl_output event opcodes
const (
	outputEventGeometry    = 0
	outputEventMode        = 1
	outputEventDone        = 2
	outputEventScale       = 3
	outputEventName        = 4
	outputEventDescription = 5
)

// Output is a bound wl_output global.
type Output struct {
	wl.BaseProxy

	nameHandler        func(string)
	descriptionHandler func(string)
	geometryHandler    func(make, model string)
	doneHandler        func()
}

// NewOutput creates an unbound wl_output proxy; bind it through the
// registry before use.
func NewOutput(ctx *wl.Context) *Output {
	output := &Output{}
	output.SetContext(ctx)
	return output
}

// SetNameHandler sets the handler for the name event (since v4).
func (o *Output) SetNameHandler(handler func(string)) {
	o.nameHandler = handler
}

// SetDescriptionHandler sets the handler for the description event (since v4).
func (o *Output) SetDescriptionHandler(handler func(string)) {
	o.descriptionHandler = handler
}

// SetGeometryHandler sets the handler for the make/model fields of the
// geometry event.
func (o *Output) SetGeometryHandler(handler func(make, model string)) {
	o.geometryHandler = handler
}

// SetDoneHandler sets the handler for the done event (since v2).
func (o *Output) SetDoneHandler(handler func()) {
	o.doneHandler = handler
}

// Release releases the output object (request since v3).
func (o *Output) Release() error {
	// Opcode 0: release
	const opcode = 0
	err := o.Context().SendRequest(o, opcode)
	o.Context().Unregister(o)
	return err
}

// Dispatch handles incoming wl_output events.
func (o *Output) Dispatch(event *wl.Event) {
	switch event.Opcode {
	case outputEventGeometry:
		event.Int32() // x
		event.Int32() // y
		event.Int32() // physical width
		event.Int32() // physical height
		event.Int32() // subpixel
		mk := event.String()
		model := event.String()
		if o.geometryHandler != nil {
			o.geometryHandler(mk, model)
		}
	case outputEventMode, outputEventScale:
		// Pixel modes and scale do not affect power control.
	case outputEventDone:
		if o.doneHandler != nil {
			o.doneHandler()
		}
	case outputEventName:
		if o.nameHandler != nil {
			o.nameHandler(event.String())
		}
	case outputEventDescription:
		if o.descriptionHandler != nil {
			o.descriptionHandler(event.String())
		}
	}
}
