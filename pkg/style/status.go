package style

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/bundler/pkg/manifest"
	"github.com/arthur-debert/bundler/pkg/pipeline"
	"github.com/pterm/pterm"
)

// Status is the outcome of one source file in a build
type Status string

const (
	StatusBuilt  Status = "built"  // Transformed by at least one rule
	StatusCached Status = "cached" // Served from the transform cache
	StatusCopied Status = "copied" // No rule applied; copied through
	StatusInline Status = "inline" // Embedded as a data URI
	StatusFailed Status = "failed" // A fatal error was recorded
)

// StatusStyle returns the pterm style for a status badge
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusBuilt:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case StatusCached:
		return pterm.NewStyle(pterm.FgCyan)
	case StatusInline:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	case StatusFailed:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// FileStatus is one report line
type FileStatus struct {
	Path   string
	Status Status
	Rules  []string
	// Outputs are the manifest paths the file contributed to
	Outputs  []string
	Duration time.Duration
}

// FileStatuses pairs every file of a run with the outputs it produced.
// The manifest may be nil for a failed build.
func FileStatuses(res *pipeline.Result) []FileStatus {
	outputs, inline := outputsBySource(res.Manifest)

	statuses := make([]FileStatus, 0, len(res.Files))
	for _, f := range res.Files {
		fs := FileStatus{
			Path:     f.Path,
			Rules:    f.Rules,
			Outputs:  outputs[f.Path],
			Duration: f.Duration,
		}
		switch {
		case f.Failed:
			fs.Status = StatusFailed
		case inline[f.Path]:
			fs.Status = StatusInline
		case f.Copied:
			fs.Status = StatusCopied
		case f.CacheHit:
			fs.Status = StatusCached
		default:
			fs.Status = StatusBuilt
		}
		statuses = append(statuses, fs)
	}
	return statuses
}

func outputsBySource(m *manifest.Manifest) (map[string][]string, map[string]bool) {
	outputs := map[string][]string{}
	inline := map[string]bool{}
	if m == nil {
		return outputs, inline
	}
	for _, e := range m.Entries() {
		sources := e.Sources
		if len(sources) == 0 {
			sources = []string{e.SourcePath}
		}
		for _, src := range sources {
			outputs[src] = append(outputs[src], e.Path)
		}
	}
	for _, a := range m.Inline() {
		inline[a.SourcePath] = true
	}
	return outputs, inline
}

// RenderFileStatus renders a single file status line
func RenderFileStatus(fs FileStatus) string {
	badge := StatusStyle(fs.Status).Sprint(fmt.Sprintf("%-7s", fs.Status))

	var msg string
	switch fs.Status {
	case StatusFailed:
		msg = "see errors below"
	case StatusInline:
		msg = "embedded in manifest"
	case StatusCopied:
		msg = "copied to " + joinOrDash(fs.Outputs)
	default:
		msg = fmt.Sprintf("%s -> %s", strings.Join(fs.Rules, " > "), joinOrDash(fs.Outputs))
	}

	return fmt.Sprintf("    %s : %s : %s", badge, PathStyle.Render(fs.Path), msg)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// Summary counts file outcomes of a run
type Summary struct {
	Files    int           `json:"files"`
	Built    int           `json:"built"`
	Cached   int           `json:"cached"`
	Copied   int           `json:"copied"`
	Inline   int           `json:"inline"`
	Failed   int           `json:"failed"`
	Written  int           `json:"written"`
	Warnings int           `json:"warnings"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// Summarize aggregates statuses into counts
func Summarize(res *pipeline.Result, statuses []FileStatus) Summary {
	s := Summary{
		Files:    len(statuses),
		Written:  res.Written,
		Warnings: len(res.Warnings),
		Duration: res.Duration,
	}
	if res.Manifest != nil {
		s.Bytes = res.Manifest.TotalSize()
	}
	for _, fs := range statuses {
		switch fs.Status {
		case StatusBuilt:
			s.Built++
		case StatusCached:
			s.Cached++
		case StatusCopied:
			s.Copied++
		case StatusInline:
			s.Inline++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
