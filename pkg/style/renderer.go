package style

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/pipeline"
	"github.com/arthur-debert/bundler/pkg/rules"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// Renderer turns command results into printable output
type Renderer interface {
	RenderBuild(res *pipeline.Result, err error) string
	RenderMatch(path string, decisions []rules.Decision) string
	RenderRules(list []types.Rule) string
	RenderError(err error) string
}

// NewRenderer returns the renderer for a resolved format. FormatAuto falls
// back to plain text. Verbose build reports list every file, not only
// failures.
func NewRenderer(f Format, verbose bool) Renderer {
	switch f {
	case FormatTerminal:
		return &TerminalRenderer{Verbose: verbose}
	case FormatJSON:
		return NewJSONRenderer()
	default:
		return &PlainRenderer{Verbose: verbose}
	}
}

// TerminalRenderer renders with colors, status badges and tables
type TerminalRenderer struct {
	// Verbose lists every file, not only failures
	Verbose bool
}

func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderBuild renders the per-file report and a summary line
func (r *TerminalRenderer) RenderBuild(res *pipeline.Result, err error) string {
	var out strings.Builder

	if res != nil {
		statuses := FileStatuses(res)
		for _, fs := range statuses {
			if r.Verbose || fs.Status == StatusFailed {
				out.WriteString(RenderFileStatus(fs) + "\n")
			}
		}
		for _, w := range res.Warnings {
			out.WriteString(fmt.Sprintf("%s %s\n", WarningIndicator, WarningStyle.Render(w.Error())))
		}

		s := Summarize(res, statuses)
		indicator := SuccessIndicator
		switch {
		case s.Failed > 0 || err != nil:
			indicator = ErrorIndicator
		case s.Files > 0 && s.Cached == s.Files:
			indicator = CachedIndicator
		}
		out.WriteString(fmt.Sprintf("%s %s\n", indicator, summaryLine(s)))
	}

	if err != nil {
		out.WriteString(r.RenderError(err) + "\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

// RenderMatch renders a table of rules and whether each applies to path
func (r *TerminalRenderer) RenderMatch(path string, decisions []rules.Decision) string {
	if len(decisions) == 0 {
		return MutedStyle.Render("No rules configured")
	}

	data := pterm.TableData{{"", "Rule", "Phase", "Chain", "Reason"}}
	applied := 0
	for _, d := range decisions {
		mark := PendingIndicator
		if d.Applies {
			mark = SuccessIndicator
			applied++
		}
		data = append(data, []string{
			mark,
			d.Rule.DisplayName(),
			PhaseStyle(d.Rule.Phase).Render(d.Rule.Phase.String()),
			chainString(d.Rule),
			d.Reason,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return r.RenderError(err)
	}
	header := SubtitleStyle.Render(path) + MutedStyle.Render(fmt.Sprintf(" (%d of %d rules apply)", applied, len(decisions)))
	return header + "\n" + strings.TrimRight(table, "\n")
}

// RenderRules renders the configured rules in declaration order
func (r *TerminalRenderer) RenderRules(list []types.Rule) string {
	if len(list) == 0 {
		return MutedStyle.Render("No rules configured")
	}

	data := pterm.TableData{{"#", "Rule", "Phase", "Match", "Chain", "Output"}}
	for _, rule := range list {
		data = append(data, []string{
			fmt.Sprintf("%d", rule.Index+1),
			ruleLabel(rule),
			PhaseStyle(rule.Phase).Render(rule.Phase.String()),
			matchString(rule),
			chainString(rule),
			outputString(rule),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return r.RenderError(err)
	}
	return strings.TrimRight(table, "\n")
}

// RenderError renders an error, listing every cause of a failed build
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}

	var failed *errors.BuildFailedError
	if errors.As(err, &failed) {
		var out strings.Builder
		out.WriteString(fmt.Sprintf("%s Error [%s]: %d fatal errors\n",
			pterm.Error.Prefix.Text,
			pterm.Error.MessageStyle.Sprint(errors.ErrBuildFailed),
			len(failed.Errors)))
		for _, cause := range failed.Errors {
			out.WriteString(Indent(fmt.Sprintf("%s [%s] %s", ErrorIndicator, errors.GetErrorCode(cause), cause.Error()), 1) + "\n")
		}
		return strings.TrimRight(out.String(), "\n")
	}

	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return fmt.Sprintf("%s Error [%s]: %s",
			pterm.Error.Prefix.Text,
			pterm.Error.MessageStyle.Sprint(code),
			err.Error())
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

// PlainRenderer renders without any styling
type PlainRenderer struct {
	Verbose bool
}

func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

func (r *PlainRenderer) RenderBuild(res *pipeline.Result, err error) string {
	var out strings.Builder

	if res != nil {
		statuses := FileStatuses(res)
		for _, fs := range statuses {
			if r.Verbose || fs.Status == StatusFailed {
				out.WriteString(fmt.Sprintf("%s: %s %s\n", fs.Status, fs.Path, joinOrDash(fs.Outputs)))
			}
		}
		for _, w := range res.Warnings {
			out.WriteString("warning: " + w.Error() + "\n")
		}
		out.WriteString(summaryLine(Summarize(res, statuses)) + "\n")
	}

	if err != nil {
		out.WriteString(r.RenderError(err) + "\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

func (r *PlainRenderer) RenderMatch(path string, decisions []rules.Decision) string {
	if len(decisions) == 0 {
		return "No rules configured"
	}

	var out strings.Builder
	out.WriteString(path + ":\n")
	for _, d := range decisions {
		if d.Applies {
			out.WriteString(fmt.Sprintf("  + %s [%s] %s\n", d.Rule.DisplayName(), d.Rule.Phase, chainString(d.Rule)))
		} else {
			out.WriteString(fmt.Sprintf("  - %s: %s\n", d.Rule.DisplayName(), d.Reason))
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

func (r *PlainRenderer) RenderRules(list []types.Rule) string {
	if len(list) == 0 {
		return "No rules configured"
	}

	var out strings.Builder
	for _, rule := range list {
		out.WriteString(fmt.Sprintf("%d. %s [%s] %s: %s\n",
			rule.Index+1, ruleLabel(rule), rule.Phase, matchString(rule), chainString(rule)))
	}
	return strings.TrimRight(out.String(), "\n")
}

func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", strings.TrimRight(err.Error(), "\n"))
}

// JSONRenderer renders machine-readable documents
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

type jsonFile struct {
	Path     string   `json:"path"`
	Status   Status   `json:"status"`
	Rules    []string `json:"rules,omitempty"`
	Outputs  []string `json:"outputs,omitempty"`
	Duration int64    `json:"durationMs"`
}

type jsonBuild struct {
	Summary  *Summary   `json:"summary,omitempty"`
	Files    []jsonFile `json:"files,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
	Error    *jsonError `json:"error,omitempty"`
}

type jsonError struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Causes  []jsonError      `json:"causes,omitempty"`
}

type jsonDecision struct {
	Rule    string `json:"rule"`
	Phase   string `json:"phase"`
	Chain   string `json:"chain"`
	Applies bool   `json:"applies"`
	Reason  string `json:"reason,omitempty"`
}

type jsonRule struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Phase    string `json:"phase"`
	Pattern  string `json:"pattern,omitempty"`
	Test     string `json:"test,omitempty"`
	Chain    string `json:"chain"`
	Template string `json:"nameTemplate,omitempty"`
	Final    bool   `json:"final,omitempty"`
}

func (r *JSONRenderer) RenderBuild(res *pipeline.Result, err error) string {
	doc := jsonBuild{Error: toJSONError(err)}
	if res != nil {
		statuses := FileStatuses(res)
		s := Summarize(res, statuses)
		doc.Summary = &s
		for _, fs := range statuses {
			doc.Files = append(doc.Files, jsonFile{
				Path:     fs.Path,
				Status:   fs.Status,
				Rules:    fs.Rules,
				Outputs:  fs.Outputs,
				Duration: fs.Duration.Milliseconds(),
			})
		}
		for _, w := range res.Warnings {
			doc.Warnings = append(doc.Warnings, w.Error())
		}
	}
	return r.encode(doc)
}

func (r *JSONRenderer) RenderMatch(path string, decisions []rules.Decision) string {
	doc := struct {
		Path  string         `json:"path"`
		Rules []jsonDecision `json:"rules"`
	}{Path: path, Rules: []jsonDecision{}}
	for _, d := range decisions {
		doc.Rules = append(doc.Rules, jsonDecision{
			Rule:    d.Rule.DisplayName(),
			Phase:   d.Rule.Phase.String(),
			Chain:   chainString(d.Rule),
			Applies: d.Applies,
			Reason:  d.Reason,
		})
	}
	return r.encode(doc)
}

func (r *JSONRenderer) RenderRules(list []types.Rule) string {
	doc := make([]jsonRule, 0, len(list))
	for _, rule := range list {
		doc = append(doc, jsonRule{
			Index:    rule.Index,
			Name:     rule.DisplayName(),
			Phase:    rule.Phase.String(),
			Pattern:  rule.Pattern,
			Test:     rule.Test,
			Chain:    chainString(rule),
			Template: rule.NameTemplate,
			Final:    rule.Final,
		})
	}
	return r.encode(doc)
}

func (r *JSONRenderer) RenderError(err error) string {
	return r.encode(struct {
		Error *jsonError `json:"error"`
	}{toJSONError(err)})
}

func (r *JSONRenderer) encode(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":{"code":%q,"message":%q}}`, errors.ErrInternal, err.Error())
	}
	return string(data)
}

func toJSONError(err error) *jsonError {
	if err == nil {
		return nil
	}
	je := &jsonError{Code: errors.GetErrorCode(err), Message: err.Error()}
	var failed *errors.BuildFailedError
	if errors.As(err, &failed) {
		for _, cause := range failed.Errors {
			je.Causes = append(je.Causes, *toJSONError(cause))
		}
	}
	return je
}

func summaryLine(s Summary) string {
	line := fmt.Sprintf("%d files: %d built, %d cached, %d copied, %d inline, %d failed; wrote %d outputs (%s) in %s",
		s.Files, s.Built, s.Cached, s.Copied, s.Inline, s.Failed, s.Written,
		humanize.Bytes(uint64(s.Bytes)), s.Duration.Round(time.Millisecond))
	if s.Warnings > 0 {
		line += fmt.Sprintf(", %d warnings", s.Warnings)
	}
	return line
}

func chainString(rule types.Rule) string {
	if len(rule.Chain) == 0 {
		return "-"
	}
	ids := make([]string, len(rule.Chain))
	for i, ref := range rule.Chain {
		ids[i] = ref.ID
	}
	return strings.Join(ids, " > ")
}

func matchString(rule types.Rule) string {
	var parts []string
	if rule.Pattern != "" {
		parts = append(parts, rule.Pattern)
	}
	if rule.Test != "" {
		parts = append(parts, "/"+rule.Test+"/")
	}
	for _, inc := range rule.Include {
		parts = append(parts, "+"+inc)
	}
	for _, exc := range rule.Exclude {
		parts = append(parts, "!"+exc)
	}
	return strings.Join(parts, " ")
}

func ruleLabel(rule types.Rule) string {
	if rule.Final {
		return rule.DisplayName() + " (final)"
	}
	return rule.DisplayName()
}

func outputString(rule types.Rule) string {
	switch {
	case rule.Options.Extract != "":
		return "extract " + rule.Options.Extract
	case rule.NameTemplate != "":
		return rule.NameTemplate
	default:
		return "-"
	}
}
