// Package drm drives display power through the kernel modesetting
// uAPI: connector enumeration and atomic commits flipping the CRTC
// ACTIVE property.
package drm

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"unsafe"

	"github.com/dwlr/dpms/internal/logger"
	"github.com/dwlr/dpms/internal/power"
)

// Device is an open DRM card. The fd may come from the seat layer
// (master granted by logind) or from a direct open.
type Device struct {
	fd      int
	release func() error
}

// NewDevice wraps a DRM fd. release is invoked by Close and may be nil.
func NewDevice(fd int, release func() error) *Device {
	return &Device{fd: fd, release: release}
}

// OpenDirect opens a card node without the seat layer and tries to take
// DRM master. This works from SSH sessions for users in the video group
// as long as no compositor holds master.
func OpenDirect(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	d := NewDevice(int(f.Fd()), f.Close)
	if err := d.SetMaster(); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// OpenReadOnly opens a card node for enumeration only; no master is
// taken, so this never disturbs a running compositor.
func OpenReadOnly(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return NewDevice(int(f.Fd()), f.Close), nil
}

// Close releases the underlying fd. For a daemon holding master this is
// the moment the kernel restores the previous CRTC state.
func (d *Device) Close() error {
	if d.release == nil {
		return nil
	}
	return d.release()
}

// Cards lists the primary card nodes under /dev/dri, sorted for stable
// ordering.
func Cards() []string {
	entries, err := os.ReadDir("/dev/dri")
	if err != nil {
		return nil
	}
	var cards []string
	for _, e := range entries {
		if isCardName(e.Name()) {
			cards = append(cards, filepath.Join("/dev/dri", e.Name()))
		}
	}
	sort.Strings(cards)
	return cards
}

// SetMaster acquires DRM master on the fd.
func (d *Device) SetMaster() error {
	if err := ioctl(d.fd, ioctlSetMaster, nil); err != nil {
		return &power.DrmError{Op: "DRM_IOCTL_SET_MASTER", Err: err}
	}
	return nil
}

// DropMaster releases DRM master.
func (d *Device) DropMaster() error {
	if err := ioctl(d.fd, ioctlDropMaster, nil); err != nil {
		return &power.DrmError{Op: "DRM_IOCTL_DROP_MASTER", Err: err}
	}
	return nil
}

// SetAtomicCap enables the atomic modesetting client capability, which
// ACTIVE-property commits require.
func (d *Device) SetAtomicCap() error {
	req := setClientCap{Capability: capAtomic, Value: 1}
	if err := ioctl(d.fd, ioctlSetClientCap, unsafe.Pointer(&req)); err != nil {
		return &power.DrmError{Op: "DRM_IOCTL_SET_CLIENT_CAP", Err: err}
	}
	return nil
}

// Connector is a connected physical port with its resolved CRTC.
type Connector struct {
	ID     uint32
	CrtcID uint32
	Name   string
}

// Connectors enumerates the connected connectors in kernel order, each
// with a stable name (DP-1, eDP-1, ...) and its bound or preferred
// CRTC. Connectors whose CRTC cannot be resolved are skipped with a
// debug log.
func (d *Device) Connectors() ([]Connector, error) {
	crtcs, connectorIDs, err := d.resources()
	if err != nil {
		return nil, err
	}

	var connectors []Connector
	for _, id := range connectorIDs {
		conn, connected, err := d.connector(id, crtcs)
		if err != nil {
			return nil, err
		}
		if !connected {
			continue
		}
		if conn.CrtcID == 0 {
			logger.Debugf("connector %s has no usable CRTC, skipping", conn.Name)
			continue
		}
		connectors = append(connectors, conn)
	}
	return connectors, nil
}

// resources fetches the CRTC and connector id lists with the usual
// two-call count-then-fill dance.
func (d *Device) resources() (crtcs, connectors []uint32, err error) {
	var res modeCardRes
	if err := ioctl(d.fd, ioctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return nil, nil, &power.DrmError{Op: "DRM_IOCTL_MODE_GETRESOURCES", Err: err}
	}

	if res.CountCrtcs == 0 && res.CountConnectors == 0 {
		return nil, nil, nil
	}

	crtcs = make([]uint32, res.CountCrtcs)
	connectors = make([]uint32, res.CountConnectors)

	fill := modeCardRes{
		CountCrtcs:      res.CountCrtcs,
		CountConnectors: res.CountConnectors,
	}
	if len(crtcs) > 0 {
		fill.CrtcIDPtr = uint64(uintptr(unsafe.Pointer(&crtcs[0])))
	}
	if len(connectors) > 0 {
		fill.ConnectorIDPtr = uint64(uintptr(unsafe.Pointer(&connectors[0])))
	}
	if err := ioctl(d.fd, ioctlModeGetResources, unsafe.Pointer(&fill)); err != nil {
		return nil, nil, &power.DrmError{Op: "DRM_IOCTL_MODE_GETRESOURCES", Err: err}
	}
	runtime.KeepAlive(crtcs)
	runtime.KeepAlive(connectors)

	// A hotplug between the two calls may shrink the arrays.
	crtcs = crtcs[:min(int(fill.CountCrtcs), len(crtcs))]
	connectors = connectors[:min(int(fill.CountConnectors), len(connectors))]
	return crtcs, connectors, nil
}

// connector probes one connector and resolves its CRTC: the currently
// bound encoder's CRTC when there is one, otherwise the first CRTC the
// connector's encoders may drive.
func (d *Device) connector(id uint32, crtcs []uint32) (Connector, bool, error) {
	probe := modeGetConnector{ConnectorID: id}
	if err := ioctl(d.fd, ioctlModeGetConnector, unsafe.Pointer(&probe)); err != nil {
		return Connector{}, false, &power.DrmError{Op: "DRM_IOCTL_MODE_GETCONNECTOR", Err: err}
	}

	conn := Connector{
		ID:   id,
		Name: connectorName(probe.ConnectorType, probe.ConnectorTypeID),
	}
	if probe.Connection != connectionConnected {
		return conn, false, nil
	}

	if probe.EncoderID != 0 {
		enc, err := d.encoder(probe.EncoderID)
		if err != nil {
			return Connector{}, false, err
		}
		if enc.CrtcID != 0 {
			conn.CrtcID = enc.CrtcID
			return conn, true, nil
		}
	}

	// No CRTC currently bound: consult the possible encoders.
	if probe.CountEncoders > 0 {
		encoders := make([]uint32, probe.CountEncoders)
		fill := modeGetConnector{
			ConnectorID:   id,
			CountEncoders: probe.CountEncoders,
			EncodersPtr:   uint64(uintptr(unsafe.Pointer(&encoders[0]))),
		}
		if err := ioctl(d.fd, ioctlModeGetConnector, unsafe.Pointer(&fill)); err != nil {
			return Connector{}, false, &power.DrmError{Op: "DRM_IOCTL_MODE_GETCONNECTOR", Err: err}
		}
		runtime.KeepAlive(encoders)

		for _, encID := range encoders[:min(int(fill.CountEncoders), len(encoders))] {
			enc, err := d.encoder(encID)
			if err != nil {
				return Connector{}, false, err
			}
			if crtc := PickCrtc(enc.PossibleCrtcs, crtcs); crtc != 0 {
				conn.CrtcID = crtc
				return conn, true, nil
			}
		}
	}
	return conn, true, nil
}

func (d *Device) encoder(id uint32) (modeGetEncoder, error) {
	enc := modeGetEncoder{EncoderID: id}
	if err := ioctl(d.fd, ioctlModeGetEncoder, unsafe.Pointer(&enc)); err != nil {
		return enc, &power.DrmError{Op: "DRM_IOCTL_MODE_GETENCODER", Err: err}
	}
	return enc, nil
}

// PickCrtc returns the first CRTC from crtcs allowed by the encoder's
// possible_crtcs bitmask (bit i covers crtcs[i]), or 0.
func PickCrtc(possible uint32, crtcs []uint32) uint32 {
	for i, crtc := range crtcs {
		if i >= 32 {
			break
		}
		if possible&(1<<uint(i)) != 0 {
			return crtc
		}
	}
	return 0
}

// ActivePropID resolves the numeric id of the CRTC's ACTIVE property.
func (d *Device) ActivePropID(crtcID uint32) (uint32, error) {
	query := modeObjGetProperties{ObjID: crtcID, ObjType: objectCrtc}
	if err := ioctl(d.fd, ioctlModeObjGetProperties, unsafe.Pointer(&query)); err != nil {
		return 0, &power.DrmError{Op: "DRM_IOCTL_MODE_OBJ_GETPROPERTIES", Err: err}
	}
	if query.CountProps == 0 {
		return 0, &power.DrmError{Op: "DRM_IOCTL_MODE_OBJ_GETPROPERTIES", Err: fmt.Errorf("CRTC %d exposes no properties", crtcID)}
	}

	props := make([]uint32, query.CountProps)
	values := make([]uint64, query.CountProps)
	fill := modeObjGetProperties{
		ObjID:         crtcID,
		ObjType:       objectCrtc,
		CountProps:    query.CountProps,
		PropsPtr:      uint64(uintptr(unsafe.Pointer(&props[0]))),
		PropValuesPtr: uint64(uintptr(unsafe.Pointer(&values[0]))),
	}
	if err := ioctl(d.fd, ioctlModeObjGetProperties, unsafe.Pointer(&fill)); err != nil {
		return 0, &power.DrmError{Op: "DRM_IOCTL_MODE_OBJ_GETPROPERTIES", Err: err}
	}
	runtime.KeepAlive(values)

	for _, propID := range props[:min(int(fill.CountProps), len(props))] {
		prop := modeGetProperty{PropID: propID}
		if err := ioctl(d.fd, ioctlModeGetProperty, unsafe.Pointer(&prop)); err != nil {
			return 0, &power.DrmError{Op: "DRM_IOCTL_MODE_GETPROPERTY", Err: err}
		}
		if propName(prop.Name) == "ACTIVE" {
			return propID, nil
		}
	}
	return 0, &power.DrmError{Op: "DRM_IOCTL_MODE_GETPROPERTY", Err: fmt.Errorf("CRTC %d has no ACTIVE property", crtcID)}
}

// SetCrtcActive submits a one-property atomic commit toggling the CRTC
// ACTIVE state. Synchronous; ALLOW_MODESET is required for ACTIVE
// transitions.
func (d *Device) SetCrtcActive(crtcID uint32, active bool) error {
	propID, err := d.ActivePropID(crtcID)
	if err != nil {
		return err
	}

	var value uint64
	if active {
		value = 1
	}

	objs := []uint32{crtcID}
	countProps := []uint32{1}
	props := []uint32{propID}
	values := []uint64{value}

	req := modeAtomic{
		Flags:         atomicAllowModeset,
		CountObjs:     1,
		ObjsPtr:       uint64(uintptr(unsafe.Pointer(&objs[0]))),
		CountPropsPtr: uint64(uintptr(unsafe.Pointer(&countProps[0]))),
		PropsPtr:      uint64(uintptr(unsafe.Pointer(&props[0]))),
		PropValuesPtr: uint64(uintptr(unsafe.Pointer(&values[0]))),
	}
	if err := ioctl(d.fd, ioctlModeAtomic, unsafe.Pointer(&req)); err != nil {
		return &power.DrmError{Op: "DRM_IOCTL_MODE_ATOMIC", Err: err}
	}
	runtime.KeepAlive(objs)
	runtime.KeepAlive(countProps)
	runtime.KeepAlive(props)
	runtime.KeepAlive(values)
	return nil
}

// isCardName reports whether a /dev/dri entry is a primary card node
// (card0, card1, ...) rather than a render or control node.
func isCardName(name string) bool {
	const prefix = "card"
	if len(name) <= len(prefix) || !strings.HasPrefix(name, prefix) {
		return false
	}
	for _, r := range name[len(prefix):] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func connectorName(connectorType, typeID uint32) string {
	name, ok := connectorTypeNames[connectorType]
	if !ok {
		name = "Unknown"
	}
	return fmt.Sprintf("%s-%d", name, typeID)
}

func propName(raw [propNameLen]byte) string {
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw[:])
}
