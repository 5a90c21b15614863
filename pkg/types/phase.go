package types

import (
	"fmt"
	"strings"
)

// Phase orders rules that match the same file. All pre rules run before
// normal rules, which run before post rules.
type Phase int

const (
	PhasePre Phase = iota
	PhaseNormal
	PhasePost
)

// String returns the configuration name of the phase
func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseNormal:
		return "normal"
	case PhasePost:
		return "post"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase converts a configuration value into a Phase.
// An empty string means PhaseNormal.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return PhaseNormal, nil
	case "pre":
		return PhasePre, nil
	case "post":
		return PhasePost, nil
	default:
		return PhaseNormal, fmt.Errorf("unknown phase %q (want pre, normal or post)", s)
	}
}
