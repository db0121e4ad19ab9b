// Package output renders display power state for stdout. The text and
// JSON shapes are a stable machine-consumed surface; nothing here may
// write extra whitespace or reorder displays.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dwlr/dpms/internal/power"
)

type displayJSON struct {
	Name  string `json:"name"`
	Power string `json:"power"`
}

type powerOnlyJSON struct {
	Power string `json:"power"`
}

// FormatStatus renders the status command output. In JSON mode the
// shape depends on how the displays were addressed: a bare
// {"power":...} object when the caller gave no name and exactly one
// display exists (v1 compatibility), a single named object for a
// resolved named target, and an array otherwise.
func FormatStatus(displays []power.DisplayInfo, target power.DisplayTarget, asJSON bool) string {
	if !asJSON {
		return formatLines(displays, false)
	}

	if len(displays) == 1 {
		switch target.Kind {
		case power.TargetDefault:
			return marshal(powerOnlyJSON{Power: displays[0].Power.JSON()})
		case power.TargetNamed:
			return marshal(displayJSON{Name: displays[0].Name, Power: displays[0].Power.JSON()})
		}
	}
	return marshalList(displays)
}

// FormatList renders the list command output. JSON is always the array
// form.
func FormatList(displays []power.DisplayInfo, asJSON, verbose bool) string {
	if asJSON {
		return marshalList(displays)
	}
	return formatLines(displays, verbose)
}

func formatLines(displays []power.DisplayInfo, verbose bool) string {
	var b strings.Builder
	for _, d := range displays {
		if verbose && (d.Make != "" || d.Model != "") {
			fmt.Fprintf(&b, "%s: %s (%s)\n", d.Name, d.Power, strings.TrimSpace(d.Make+" "+d.Model))
		} else {
			fmt.Fprintf(&b, "%s: %s\n", d.Name, d.Power)
		}
	}
	return b.String()
}

func marshalList(displays []power.DisplayInfo) string {
	list := make([]displayJSON, len(displays))
	for i, d := range displays {
		list[i] = displayJSON{Name: d.Name, Power: d.Power.JSON()}
	}
	return marshal(list)
}

// marshal never fails for the closed schema above; connector names are
// plain ASCII, and encoding/json escapes quote and backslash anyway
// should that ever change.
func marshal(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
