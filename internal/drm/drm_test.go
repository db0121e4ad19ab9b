package drm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoctlRequestEncoding(t *testing.T) {
	// Anchored against the values libdrm computes for the same calls.
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{name: "DRM_IOCTL_SET_MASTER", got: ioctlSetMaster, want: 0x641e},
		{name: "DRM_IOCTL_DROP_MASTER", got: ioctlDropMaster, want: 0x641f},
		{name: "DRM_IOCTL_SET_CLIENT_CAP", got: ioctlSetClientCap, want: 0x4010640d},
		{name: "DRM_IOCTL_MODE_GETRESOURCES", got: ioctlModeGetResources, want: 0xc04064a0},
		{name: "DRM_IOCTL_MODE_GETENCODER", got: ioctlModeGetEncoder, want: 0xc01464a6},
		{name: "DRM_IOCTL_MODE_GETCONNECTOR", got: ioctlModeGetConnector, want: 0xc05064a7},
		{name: "DRM_IOCTL_MODE_GETPROPERTY", got: ioctlModeGetProperty, want: 0xc04064aa},
		{name: "DRM_IOCTL_MODE_OBJ_GETPROPERTIES", got: ioctlModeObjGetProperties, want: 0xc02064b9},
		{name: "DRM_IOCTL_MODE_ATOMIC", got: ioctlModeAtomic, want: 0xc03864bc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConnectorName(t *testing.T) {
	tests := []struct {
		connectorType uint32
		typeID        uint32
		want          string
	}{
		{connectorType: 10, typeID: 1, want: "DP-1"},
		{connectorType: 14, typeID: 1, want: "eDP-1"},
		{connectorType: 11, typeID: 2, want: "HDMI-A-2"},
		{connectorType: 7, typeID: 1, want: "LVDS-1"},
		{connectorType: 999, typeID: 3, want: "Unknown-3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, connectorName(tt.connectorType, tt.typeID))
		})
	}
}

func TestPickCrtc(t *testing.T) {
	crtcs := []uint32{40, 41, 42}

	tests := []struct {
		name     string
		possible uint32
		want     uint32
	}{
		{name: "first bit", possible: 0b001, want: 40},
		{name: "second bit", possible: 0b010, want: 41},
		{name: "several bits picks lowest", possible: 0b110, want: 41},
		{name: "no bits", possible: 0, want: 0},
		{name: "bit beyond crtc list", possible: 0b1000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickCrtc(tt.possible, crtcs))
		})
	}
}

func TestIsCardName(t *testing.T) {
	assert.True(t, isCardName("card0"))
	assert.True(t, isCardName("card12"))
	assert.False(t, isCardName("card"))
	assert.False(t, isCardName("renderD128"))
	assert.False(t, isCardName("card0-DP-1"))
	assert.False(t, isCardName("controlD64"))
}

func TestPropName(t *testing.T) {
	var raw [propNameLen]byte
	copy(raw[:], "ACTIVE")
	assert.Equal(t, "ACTIVE", propName(raw))

	var full [propNameLen]byte
	for i := range full {
		full[i] = 'A'
	}
	assert.Len(t, propName(full), propNameLen)
}
