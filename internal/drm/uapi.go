package drm

import "unsafe"

// Kernel DRM uAPI structures and constants (drm.h / drm_mode.h). Only
// the surface needed for connector enumeration and CRTC ACTIVE toggling
// is mirrored here.

// ioctl numbers
const (
	nrSetClientCap         = 0x0d
	nrSetMaster            = 0x1e
	nrDropMaster           = 0x1f
	nrModeGetResources     = 0xa0
	nrModeGetEncoder       = 0xa6
	nrModeGetConnector     = 0xa7
	nrModeGetProperty      = 0xaa
	nrModeObjGetProperties = 0xb9
	nrModeAtomic           = 0xbc
)

// client capabilities
const capAtomic = 3

// connector connection state
const (
	connectionConnected    = 1
	connectionDisconnected = 2
)

// DRM_MODE_OBJECT_CRTC
const objectCrtc = 0xcccccccc

// DRM_MODE_ATOMIC_ALLOW_MODESET
const atomicAllowModeset = 0x0400

// DRM_PROP_NAME_LEN
const propNameLen = 32

type setClientCap struct {
	Capability uint64
	Value      uint64
}

type modeCardRes struct {
	FbIDPtr         uint64
	CrtcIDPtr       uint64
	ConnectorIDPtr  uint64
	EncoderIDPtr    uint64
	CountFbs        uint32
	CountCrtcs      uint32
	CountConnectors uint32
	CountEncoders   uint32
	MinWidth        uint32
	MaxWidth        uint32
	MinHeight       uint32
	MaxHeight       uint32
}

type modeGetConnector struct {
	EncodersPtr     uint64
	ModesPtr        uint64
	PropsPtr        uint64
	PropValuesPtr   uint64
	CountModes      uint32
	CountProps      uint32
	CountEncoders   uint32
	EncoderID       uint32
	ConnectorID     uint32
	ConnectorType   uint32
	ConnectorTypeID uint32
	Connection      uint32
	MmWidth         uint32
	MmHeight        uint32
	Subpixel        uint32
	Pad             uint32
}

type modeGetEncoder struct {
	EncoderID      uint32
	EncoderType    uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

type modeObjGetProperties struct {
	PropsPtr      uint64
	PropValuesPtr uint64
	CountProps    uint32
	ObjID         uint32
	ObjType       uint32
}

type modeGetProperty struct {
	ValuesPtr      uint64
	EnumBlobPtr    uint64
	PropID         uint32
	Flags          uint32
	Name           [propNameLen]byte
	CountValues    uint32
	CountEnumBlobs uint32
}

type modeAtomic struct {
	Flags         uint32
	CountObjs     uint32
	ObjsPtr       uint64
	CountPropsPtr uint64
	PropsPtr      uint64
	PropValuesPtr uint64
	Reserved      uint64
	UserData      uint64
}

var (
	ioctlSetClientCap         = drmIOW(nrSetClientCap, unsafe.Sizeof(setClientCap{}))
	ioctlSetMaster            = drmIO(nrSetMaster)
	ioctlDropMaster           = drmIO(nrDropMaster)
	ioctlModeGetResources     = drmIOWR(nrModeGetResources, unsafe.Sizeof(modeCardRes{}))
	ioctlModeGetConnector     = drmIOWR(nrModeGetConnector, unsafe.Sizeof(modeGetConnector{}))
	ioctlModeGetEncoder       = drmIOWR(nrModeGetEncoder, unsafe.Sizeof(modeGetEncoder{}))
	ioctlModeGetProperty      = drmIOWR(nrModeGetProperty, unsafe.Sizeof(modeGetProperty{}))
	ioctlModeObjGetProperties = drmIOWR(nrModeObjGetProperties, unsafe.Sizeof(modeObjGetProperties{}))
	ioctlModeAtomic           = drmIOWR(nrModeAtomic, unsafe.Sizeof(modeAtomic{}))
)

// connectorTypeNames maps connector_type to the prefix of the stable
// user-visible connector name, as libdrm spells them.
var connectorTypeNames = map[uint32]string{
	0:  "Unknown",
	1:  "VGA",
	2:  "DVI-I",
	3:  "DVI-D",
	4:  "DVI-A",
	5:  "Composite",
	6:  "SVIDEO",
	7:  "LVDS",
	8:  "Component",
	9:  "DIN",
	10: "DP",
	11: "HDMI-A",
	12: "HDMI-B",
	13: "TV",
	14: "eDP",
	15: "Virtual",
	16: "DSI",
	17: "DPI",
	18: "Writeback",
	19: "SPI",
	20: "USB",
}
