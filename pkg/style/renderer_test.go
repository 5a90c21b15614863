package style_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/manifest"
	"github.com/arthur-debert/bundler/pkg/pipeline"
	"github.com/arthur-debert/bundler/pkg/rules"
	"github.com/arthur-debert/bundler/pkg/style"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) *pipeline.Result {
	t.Helper()
	b := manifest.NewBuilder()
	require.NoError(t, b.Add("css/site.css", "styles/site.css", []byte("body{}")))
	require.NoError(t, b.Add("readme.txt", "readme.txt", []byte("hello")))
	b.AddInline("img/dot.png", "data:image/png;base64,eA==", []byte("x"))

	return &pipeline.Result{
		Manifest: b.Build(),
		Files: []pipeline.FileStat{
			{Path: "img/dot.png", Rules: []string{"images"}},
			{Path: "readme.txt", Copied: true},
			{Path: "styles/site.css", Rules: []string{"styles", "compress"}, CacheHit: true},
		},
		Warnings: []error{&errors.NoRuleMatchedError{Path: "readme.txt"}},
		Written:  2,
		Duration: 1500 * time.Millisecond,
	}
}

func sampleRules() []types.Rule {
	return []types.Rule{
		{Name: "styles", Pattern: "*.css", Chain: []types.TransformRef{{ID: "css"}}, Phase: types.PhaseNormal, NameTemplate: "css/[name].[ext]"},
		{Name: "compress", Test: `\.css$`, Chain: []types.TransformRef{{ID: "gzip"}}, Phase: types.PhasePost, Final: true, Index: 1},
	}
}

func TestFileStatuses(t *testing.T) {
	statuses := style.FileStatuses(sampleResult(t))
	require.Len(t, statuses, 3)

	assert.Equal(t, style.StatusInline, statuses[0].Status)
	assert.Equal(t, style.StatusCopied, statuses[1].Status)
	assert.Equal(t, []string{"readme.txt"}, statuses[1].Outputs)
	assert.Equal(t, style.StatusCached, statuses[2].Status)
	assert.Equal(t, []string{"css/site.css"}, statuses[2].Outputs)
}

func TestFileStatusesWithoutManifest(t *testing.T) {
	res := &pipeline.Result{Files: []pipeline.FileStat{
		{Path: "a.js", Rules: []string{"scripts"}},
		{Path: "b.js", Rules: []string{"scripts"}, Failed: true},
	}}

	statuses := style.FileStatuses(res)
	require.Len(t, statuses, 2)
	assert.Equal(t, style.StatusBuilt, statuses[0].Status)
	assert.Empty(t, statuses[0].Outputs)
	assert.Equal(t, style.StatusFailed, statuses[1].Status)
}

func TestSummarize(t *testing.T) {
	res := sampleResult(t)
	s := style.Summarize(res, style.FileStatuses(res))

	assert.Equal(t, 3, s.Files)
	assert.Equal(t, 1, s.Inline)
	assert.Equal(t, 1, s.Copied)
	assert.Equal(t, 1, s.Cached)
	assert.Equal(t, 0, s.Failed)
	assert.Equal(t, 2, s.Written)
	assert.Equal(t, 1, s.Warnings)
	assert.Equal(t, int64(11), s.Bytes)
}

func TestRenderFileStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   style.FileStatus
		contains []string
	}{
		{
			name:     "built",
			status:   style.FileStatus{Path: "app.js", Status: style.StatusBuilt, Rules: []string{"scripts", "compress"}, Outputs: []string{"app.js", "app.js.gz"}},
			contains: []string{"built", "app.js", "scripts > compress", "app.js.gz"},
		},
		{
			name:     "copied",
			status:   style.FileStatus{Path: "robots.txt", Status: style.StatusCopied, Outputs: []string{"robots.txt"}},
			contains: []string{"copied", "copied to robots.txt"},
		},
		{
			name:     "inline",
			status:   style.FileStatus{Path: "dot.png", Status: style.StatusInline},
			contains: []string{"inline", "embedded in manifest"},
		},
		{
			name:     "failed",
			status:   style.FileStatus{Path: "bad.svg", Status: style.StatusFailed},
			contains: []string{"failed", "bad.svg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := style.RenderFileStatus(tt.status)
			for _, want := range tt.contains {
				assert.Contains(t, result, want)
			}
		})
	}
}

func TestTerminalRenderer(t *testing.T) {
	r := style.NewRenderer(style.FormatTerminal, true)

	t.Run("build", func(t *testing.T) {
		out := r.RenderBuild(sampleResult(t), nil)
		assert.Contains(t, out, "styles/site.css")
		assert.Contains(t, out, "no rule matched readme.txt")
		assert.Contains(t, out, "3 files")
		assert.Contains(t, out, "1 cached")
	})

	t.Run("build_failed", func(t *testing.T) {
		err := errors.NewBuildFailed([]error{
			&errors.TransformError{TransformID: "svgo", Path: "bad.svg", Cause: errors.New(errors.ErrInvalidInput, "bad xml")},
		})
		out := r.RenderBuild(nil, err)
		assert.Contains(t, out, "BUILD_FAILED")
		assert.Contains(t, out, "TRANSFORM")
		assert.Contains(t, out, "bad.svg")
	})

	t.Run("match", func(t *testing.T) {
		decisions := []rules.Decision{
			{Rule: sampleRules()[0], Applies: true},
			{Rule: sampleRules()[1], Reason: "test does not match"},
		}
		out := r.RenderMatch("styles/site.css", decisions)
		assert.Contains(t, out, "1 of 2 rules apply")
		assert.Contains(t, out, "test does not match")
		assert.Contains(t, out, "gzip")
	})

	t.Run("rules", func(t *testing.T) {
		out := r.RenderRules(sampleRules())
		assert.Contains(t, out, "compress (final)")
		assert.Contains(t, out, "css/[name].[ext]")
		assert.Contains(t, out, "post")
	})

	t.Run("empty", func(t *testing.T) {
		assert.Contains(t, r.RenderRules(nil), "No rules configured")
		assert.Contains(t, r.RenderMatch("a.js", nil), "No rules configured")
		assert.Empty(t, r.RenderError(nil))
	})

	t.Run("coded_error", func(t *testing.T) {
		out := r.RenderError(errors.New(errors.ErrConfigValid, "unknown phase"))
		assert.Contains(t, out, "CONFIG_INVALID")
		assert.Contains(t, out, "unknown phase")
	})
}

func TestTerminalRendererHidesSuccessfulFiles(t *testing.T) {
	out := style.NewRenderer(style.FormatTerminal, false).RenderBuild(sampleResult(t), nil)
	assert.NotContains(t, out, "styles/site.css")
	assert.Contains(t, out, "3 files")
}

func TestPlainRenderer(t *testing.T) {
	r := style.NewRenderer(style.FormatText, true)

	out := r.RenderBuild(sampleResult(t), nil)
	assert.Contains(t, out, "copied: readme.txt readme.txt")
	assert.Contains(t, out, "warning: no rule matched readme.txt")
	assert.NotContains(t, out, "\x1b[")

	match := r.RenderMatch("styles/site.css", []rules.Decision{
		{Rule: sampleRules()[0], Applies: true},
		{Rule: sampleRules()[1], Reason: "stopped by an earlier final rule"},
	})
	assert.Equal(t, strings.Join([]string{
		"styles/site.css:",
		"  + styles [normal] css",
		"  - compress: stopped by an earlier final rule",
	}, "\n"), match)

	assert.Equal(t, strings.Join([]string{
		"1. styles [normal] *.css: css",
		`2. compress (final) [post] /\.css$/: gzip`,
	}, "\n"), r.RenderRules(sampleRules()))

	assert.Equal(t, "Error: [NOT_FOUND] missing", r.RenderError(errors.New(errors.ErrNotFound, "missing")))
}

func TestJSONRenderer(t *testing.T) {
	r := style.NewRenderer(style.FormatJSON, false)

	t.Run("build", func(t *testing.T) {
		var doc struct {
			Summary struct {
				Files   int `json:"files"`
				Written int `json:"written"`
			} `json:"summary"`
			Files []struct {
				Path   string `json:"path"`
				Status string `json:"status"`
			} `json:"files"`
			Warnings []string `json:"warnings"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.RenderBuild(sampleResult(t), nil)), &doc))

		assert.Equal(t, 3, doc.Summary.Files)
		assert.Equal(t, 2, doc.Summary.Written)
		require.Len(t, doc.Files, 3)
		assert.Equal(t, "inline", doc.Files[0].Status)
		assert.Equal(t, []string{"no rule matched readme.txt"}, doc.Warnings)
	})

	t.Run("error_causes", func(t *testing.T) {
		err := errors.NewBuildFailed([]error{
			&errors.OutputCollisionError{Path: "css/style.css", Sources: []string{"a/style.css", "b/style.css"}},
		})
		var doc struct {
			Error struct {
				Code   string `json:"code"`
				Causes []struct {
					Code string `json:"code"`
				} `json:"causes"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.RenderError(err)), &doc))
		assert.Equal(t, "BUILD_FAILED", doc.Error.Code)
		require.Len(t, doc.Error.Causes, 1)
		assert.Equal(t, "OUTPUT_COLLISION", doc.Error.Causes[0].Code)
	})

	t.Run("rules", func(t *testing.T) {
		var doc []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(r.RenderRules(sampleRules())), &doc))
		require.Len(t, doc, 2)
		assert.Equal(t, "styles", doc[0]["name"])
		assert.Equal(t, true, doc[1]["final"])
	})
}
