package tty

import (
	"errors"
	"testing"

	"github.com/dwlr/dpms/internal/drm"
	"github.com/dwlr/dpms/internal/power"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConnectors = []drm.Connector{
	{ID: 100, CrtcID: 40, Name: "eDP-1"},
	{ID: 101, CrtcID: 41, Name: "DP-1"},
	{ID: 102, CrtcID: 42, Name: "DP-2"},
}

func TestSelectCrtcsDefault(t *testing.T) {
	crtcs, err := selectCrtcs(testConnectors, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint32{40}, crtcs, "no names selects the first connected connector")
}

func TestSelectCrtcsNamed(t *testing.T) {
	crtcs, err := selectCrtcs(testConnectors, []string{"DP-1"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{41}, crtcs)
}

func TestSelectCrtcsPrefix(t *testing.T) {
	crtcs, err := selectCrtcs(testConnectors, []string{"eDP"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{40}, crtcs)
}

func TestSelectCrtcsSeveralNames(t *testing.T) {
	crtcs, err := selectCrtcs(testConnectors, []string{"DP-2", "eDP-1"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{42, 40}, crtcs, "order follows the argument list")
}

func TestSelectCrtcsDeduplicates(t *testing.T) {
	crtcs, err := selectCrtcs(testConnectors, []string{"DP-1", "DP-1"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{41}, crtcs)
}

func TestSelectCrtcsAmbiguous(t *testing.T) {
	_, err := selectCrtcs(testConnectors, []string{"DP"})
	var ambiguous *power.AmbiguousDisplayError
	require.True(t, errors.As(err, &ambiguous))
	assert.ElementsMatch(t, []string{"DP-1", "DP-2"}, ambiguous.Candidates)
}

func TestSelectCrtcsUnknownName(t *testing.T) {
	_, err := selectCrtcs(testConnectors, []string{"HDMI-A-1"})
	var notFound *power.DisplayNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "HDMI-A-1", notFound.Name)
}

func TestSelectCrtcsNoConnectors(t *testing.T) {
	_, err := selectCrtcs(nil, nil)
	assert.ErrorIs(t, err, power.ErrNoDisplayFound)
}
