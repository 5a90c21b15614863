package style

import (
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

var (
	SubtitleStyle = lipgloss.NewStyle().Foreground(HeadingColor).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	PathStyle     = lipgloss.NewStyle().Foreground(PathColor)
	WarningStyle  = lipgloss.NewStyle().Foreground(WarningColor)
)

// Status indicators, one rune wide
var (
	SuccessIndicator = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true).Render("✓")
	ErrorIndicator   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true).Render("✗")
	WarningIndicator = WarningStyle.Render("!")
	CachedIndicator  = lipgloss.NewStyle().Foreground(CachedColor).Render("↺")
	PendingIndicator = MutedStyle.Render("○")
)

var phaseStyles = map[types.Phase]lipgloss.Style{
	types.PhasePre:    lipgloss.NewStyle().Foreground(PrePhaseColor).Bold(true),
	types.PhaseNormal: lipgloss.NewStyle().Foreground(NormalPhaseColor),
	types.PhasePost:   lipgloss.NewStyle().Foreground(PostPhaseColor).Bold(true),
}

// PhaseStyle returns the style used to print a rule phase. Unknown phases
// print like normal ones.
func PhaseStyle(p types.Phase) lipgloss.Style {
	if s, ok := phaseStyles[p]; ok {
		return s
	}
	return phaseStyles[types.PhaseNormal]
}

// Indent pads every line of s by two spaces per level
func Indent(s string, level int) string {
	if level <= 0 {
		return s
	}
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}
