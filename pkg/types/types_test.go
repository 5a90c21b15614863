package types

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in      string
		want    Phase
		wantErr bool
	}{
		{"", PhaseNormal, false},
		{"pre", PhasePre, false},
		{"POST", PhasePost, false},
		{" normal ", PhaseNormal, false},
		{"late", PhaseNormal, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePhase(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceFile(t *testing.T) {
	f := NewSourceFile("./assets/img/logo.svg", []byte("<svg/>"))

	assert.Equal(t, "assets/img/logo.svg", f.Path)
	assert.Equal(t, "logo", f.Name())
	assert.Equal(t, "svg", f.Ext())
	assert.Equal(t, "assets/img", f.Dir())
	assert.Len(t, f.Hash, HashLength)
	assert.Equal(t, HashContent([]byte("<svg/>")), f.Hash)

	root := NewSourceFile("manifest.json", []byte("{}"))
	assert.Equal(t, "", root.Dir())
}

func TestHashContentIsStable(t *testing.T) {
	assert.Equal(t, HashContent([]byte("a")), HashContent([]byte("a")))
	assert.NotEqual(t, HashContent([]byte("a")), HashContent([]byte("b")))
}

func TestTransformRefIdentity(t *testing.T) {
	a := TransformRef{ID: "url", Options: map[string]interface{}{"limit": 100, "mime": "image/png"}}
	b := TransformRef{ID: "url", Options: map[string]interface{}{"mime": "image/png", "limit": 100}}
	c := TransformRef{ID: "url", Options: map[string]interface{}{"limit": 200}}

	assert.Equal(t, a.Identity(), b.Identity())
	assert.NotEqual(t, a.Identity(), c.Identity())
	assert.Equal(t, "raw", TransformRef{ID: "raw"}.Identity())
}

func TestChainIdentity(t *testing.T) {
	rules := []Rule{
		{Phase: PhasePre, Chain: []TransformRef{{ID: "banner", Options: map[string]interface{}{"text": "x"}}}},
		{Phase: PhaseNormal, Chain: []TransformRef{{ID: "css"}, {ID: "gzip"}}},
	}
	assert.Equal(t, `pre:banner{"text":"x"} | normal:css>gzip`, ChainIdentity(rules))
	assert.Equal(t, "", ChainIdentity(nil))
}

func TestRuleDisplayName(t *testing.T) {
	assert.Equal(t, "styles", Rule{Name: "styles", Pattern: "*.css"}.DisplayName())
	assert.Equal(t, "*.css", Rule{Pattern: "*.css"}.DisplayName())
	assert.Equal(t, `/\.jsx?$/`, Rule{Test: `\.jsx?$`}.DisplayName())
}

func TestTransformResult(t *testing.T) {
	fatal := &errors.TransformError{TransformID: "json", Path: "a.json", Cause: stderrors.New("bad"), Fatal: true}
	warning := &errors.TransformError{TransformID: "banner", Path: "a.json", Cause: stderrors.New("meh")}

	r := &TransformResult{
		Outputs: []Output{
			{Name: ".gz", Content: []byte("zz")},
			{Content: []byte("main")},
		},
		Errors: []error{warning, fatal},
	}

	require.NotNil(t, r.Primary())
	assert.Equal(t, "main", string(r.Primary().Content))
	assert.Len(t, r.Named(), 1)
	assert.Equal(t, int64(6), r.Size())
	assert.True(t, r.Failed())
	assert.Equal(t, []error{fatal}, r.FatalErrors())
	assert.Equal(t, []error{warning}, r.Warnings())

	assert.True(t, IsFatal(stderrors.New("plain")))
	assert.Nil(t, (&TransformResult{}).Primary())
}
