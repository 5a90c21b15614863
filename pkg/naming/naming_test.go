package naming_test

import (
	"testing"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/naming"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateErrors(t *testing.T) {
	for _, tmpl := range []string{
		"",
		"[name",
		"name].js",
		"[unknown].js",
		"[name:3].js",
		"[hash:0].js",
		"[hash:17].js",
		"[hash:x].js",
		"../[name].[ext]",
	} {
		t.Run(tmpl, func(t *testing.T) {
			_, err := naming.ParseTemplate(tmpl)
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestExpand(t *testing.T) {
	file := types.NewSourceFile("assets/img/logo.svg", []byte("<svg/>"))
	out := []byte("<svg></svg>")
	outHash := types.HashContent(out)

	tests := []struct {
		tmpl string
		want string
	}{
		{naming.DefaultTemplate, "assets/img/logo.svg"},
		{"img/[name].[hash:7].[ext]", "img/logo." + outHash[:7] + ".svg"},
		{"[folder]/[name].[contenthash:4].[ext]", "img/logo." + outHash[:4] + ".svg"},
		{"static/[name]-[hash].[ext]", "static/logo-" + outHash + ".svg"},
		{"[name].[sourcehash:8].[ext]", "logo." + file.Hash[:8] + ".svg"},
		{"/abs/[name].[ext]", "abs/logo.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			tmpl := naming.MustParseTemplate(tt.tmpl)
			assert.Equal(t, tt.want, tmpl.Expand(file, out))
		})
	}

	t.Run("root_file_without_extension", func(t *testing.T) {
		f := types.NewSourceFile("LICENSE", []byte("MIT"))
		assert.Equal(t, "LICENSE", naming.MustParseTemplate(naming.DefaultTemplate).Expand(f, f.Content))
		assert.Equal(t, "LICENSE", naming.MustParseTemplate("[folder]/[name]").Expand(f, f.Content))
	})
}

func TestExpandIsPure(t *testing.T) {
	tmpl := naming.MustParseTemplate("[path][name].[hash:8].[ext]")
	file := types.NewSourceFile("js/app.js", []byte("src"))

	first := tmpl.Expand(file, []byte("compiled"))
	assert.Equal(t, first, tmpl.Expand(file, []byte("compiled")))
	assert.Equal(t, first, tmpl.Expand(types.NewSourceFile("js/app.js", []byte("src")), []byte("compiled")))
	assert.NotEqual(t, first, tmpl.Expand(file, []byte("compiled differently")))
	assert.True(t, tmpl.Hashed())
	assert.False(t, naming.MustParseTemplate("[name]").Hashed())
}

func TestNamer(t *testing.T) {
	rules := []types.Rule{
		{Index: 0, Pattern: "*.svg", NameTemplate: "img/[name].[hash:7].[ext]"},
		{Index: 1, Pattern: "*.svg", Phase: types.PhasePost},
		{Index: 2, Pattern: "*.css", NameTemplate: "css/[name].[ext]"},
	}
	namer, err := naming.NewNamer("", rules)
	require.NoError(t, err)

	svg := types.NewSourceFile("assets/logo.svg", []byte("<svg/>"))
	got := namer.Name(svg, rules[:2], []byte("<svg/>"))
	assert.Regexp(t, `^img/logo\.[0-9a-f]{7}\.svg$`, got)

	js := types.NewSourceFile("js/app.js", []byte("x"))
	assert.Equal(t, "js/app.js", namer.Name(js, nil, js.Content))

	_, err = naming.NewNamer("", []types.Rule{{Pattern: "*.js", NameTemplate: "[bogus]"}})
	assert.True(t, errors.IsConfigurationError(err))
}

func TestTrackerCollision(t *testing.T) {
	namer, err := naming.NewNamer("css/[name].[ext]", nil)
	require.NoError(t, err)
	tracker := naming.NewTracker()

	a := types.NewSourceFile("a/style.css", []byte("a{}"))
	b := types.NewSourceFile("b/style.css", []byte("b{}"))

	require.NoError(t, tracker.Claim(namer.Name(a, nil, a.Content), a.Path))
	require.NoError(t, tracker.Claim(namer.Name(a, nil, a.Content), a.Path), "same source may claim twice")

	err = tracker.Claim(namer.Name(b, nil, b.Content), b.Path)
	var collision *errors.OutputCollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, "css/style.css", collision.Path)
	assert.Equal(t, []string{"a/style.css", "b/style.css"}, collision.Sources)

	owner, ok := tracker.Owner("css/style.css")
	assert.True(t, ok)
	assert.Equal(t, "a/style.css", owner)
	assert.Len(t, tracker.Collisions(), 1)
}
