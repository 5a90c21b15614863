package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Report palette. AdaptiveColor picks the variant for light or dark terminals.
var (
	// Outcome colors
	SuccessColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD54F"}
	CachedColor  = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}

	// Text colors
	HeadingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	PathColor    = lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
)

// Rule phase colors
var (
	PrePhaseColor    = lipgloss.AdaptiveColor{Light: "#0EA5E9", Dark: "#38BDF8"}
	NormalPhaseColor = lipgloss.AdaptiveColor{Light: "#8B5CF6", Dark: "#A78BFA"}
	PostPhaseColor   = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
)
