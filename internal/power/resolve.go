package power

import "strings"

// Resolve selects the subset of available displays addressed by target.
// All and Default return every display in discovery order. A named
// target matches exactly first; failing that, a case-sensitive prefix
// match is applied. A unique prefix match wins, multiple matches are an
// AmbiguousDisplayError and zero matches a DisplayNotFoundError.
func Resolve(target DisplayTarget, available []DisplayInfo) ([]DisplayInfo, error) {
	if target.Kind != TargetNamed {
		return available, nil
	}

	for _, d := range available {
		if d.Name == target.Name {
			return []DisplayInfo{d}, nil
		}
	}

	var matches []DisplayInfo
	for _, d := range available {
		if strings.HasPrefix(d.Name, target.Name) {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 1:
		return matches, nil
	case 0:
		return nil, &DisplayNotFoundError{Name: target.Name, Available: Names(available)}
	default:
		return nil, &AmbiguousDisplayError{Name: target.Name, Candidates: Names(matches)}
	}
}

// Names projects the display names in discovery order.
func Names(displays []DisplayInfo) []string {
	names := make([]string, len(displays))
	for i, d := range displays {
		names[i] = d.Name
	}
	return names
}
