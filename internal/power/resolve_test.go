package power

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func displays(names ...string) []DisplayInfo {
	list := make([]DisplayInfo, len(names))
	for i, n := range names {
		list[i] = DisplayInfo{Name: n, Power: PowerOn}
	}
	return list
}

func TestResolveAllAndDefault(t *testing.T) {
	available := displays("DP-1", "eDP-1")

	for _, target := range []DisplayTarget{AllTarget(), DefaultTarget()} {
		got, err := Resolve(target, available)
		require.NoError(t, err)
		assert.Equal(t, available, got, "All/Default must return every display in discovery order")
	}
}

func TestResolveNamed(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		query     string
		want      string
	}{
		{name: "exact match", available: []string{"DP-1", "eDP-1"}, query: "DP-1", want: "DP-1"},
		{name: "prefix match", available: []string{"DP-1", "eDP-1"}, query: "DP", want: "DP-1"},
		{name: "prefix match edp", available: []string{"DP-1", "eDP-1"}, query: "eDP", want: "eDP-1"},
		{name: "exact preferred over prefix", available: []string{"DP", "DP-1"}, query: "DP", want: "DP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(NamedTarget(tt.query), displays(tt.available...))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Name)
		})
	}
}

func TestResolveAmbiguous(t *testing.T) {
	_, err := Resolve(NamedTarget("DP"), displays("DP-1", "DP-2"))

	var ambiguous *AmbiguousDisplayError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "DP", ambiguous.Name)
	assert.Equal(t, []string{"DP-1", "DP-2"}, ambiguous.Candidates)
}

func TestResolveNotFound(t *testing.T) {
	_, err := Resolve(NamedTarget("HDMI-1"), displays("DP-1", "eDP-1"))

	var notFound *DisplayNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "HDMI-1", notFound.Name)
	assert.Equal(t, []string{"DP-1", "eDP-1"}, notFound.Available)
}

func TestResolveNeverBothErrors(t *testing.T) {
	// For any (available, name) pair the resolver yields exactly one of:
	// a unique match, AmbiguousDisplay, or DisplayNotFound.
	available := displays("DP-1", "DP-2", "eDP-1")
	queries := []string{"DP-1", "DP", "eDP", "e", "HDMI", "", "DP-2"}

	for _, q := range queries {
		got, err := Resolve(NamedTarget(q), available)
		if err != nil {
			var ambiguous *AmbiguousDisplayError
			var notFound *DisplayNotFoundError
			isAmbiguous := errors.As(err, &ambiguous)
			isNotFound := errors.As(err, &notFound)
			assert.True(t, isAmbiguous != isNotFound, "query %q: error must be exactly one kind, got %v", q, err)
			continue
		}
		require.Len(t, got, 1, "query %q", q)
		name := got[0].Name
		assert.True(t, name == q || len(name) > len(q) && name[:len(q)] == q, "query %q resolved to %q", q, name)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"DP-1", "eDP-1"}, Names(displays("DP-1", "eDP-1")))
	assert.Empty(t, Names(nil))
}
