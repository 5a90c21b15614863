package transform_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/registry"
	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransform runs fn as its Apply
type fakeTransform struct {
	id string
	fn func(input []byte, tc *transform.Context) (*types.TransformResult, error)
}

func (f *fakeTransform) ID() string                                    { return f.id }
func (f *fakeTransform) ValidateOptions(map[string]interface{}) error { return nil }
func (f *fakeTransform) Apply(_ context.Context, input []byte, _ map[string]interface{}, tc *transform.Context) (*types.TransformResult, error) {
	return f.fn(input, tc)
}

func primary(content string) *types.TransformResult {
	return &types.TransformResult{Outputs: []types.Output{{Content: []byte(content)}}}
}

func newTestRegistry() transform.Registry {
	reg := transform.NewRegistry()
	registry.MustRegister[transform.Transform](reg, "upper", &fakeTransform{id: "upper", fn: func(in []byte, _ *transform.Context) (*types.TransformResult, error) {
		return primary(strings.ToUpper(string(in))), nil
	}})
	registry.MustRegister[transform.Transform](reg, "suffix", &fakeTransform{id: "suffix", fn: func(in []byte, tc *transform.Context) (*types.TransformResult, error) {
		return primary(string(in) + "|" + tc.Rule), nil
	}})
	registry.MustRegister[transform.Transform](reg, "map", &fakeTransform{id: "map", fn: func(in []byte, _ *transform.Context) (*types.TransformResult, error) {
		return &types.TransformResult{
			Outputs:      []types.Output{{Name: ".map", Content: []byte("map of " + string(in))}},
			Dependencies: []string{"shared/base.css"},
		}, nil
	}})
	registry.MustRegister[transform.Transform](reg, "noop", &fakeTransform{id: "noop", fn: func([]byte, *transform.Context) (*types.TransformResult, error) {
		return nil, nil
	}})
	registry.MustRegister[transform.Transform](reg, "fail", &fakeTransform{id: "fail", fn: func([]byte, *transform.Context) (*types.TransformResult, error) {
		return nil, stderrors.New("boom")
	}})
	registry.MustRegister[transform.Transform](reg, "soft", &fakeTransform{id: "soft", fn: func([]byte, *transform.Context) (*types.TransformResult, error) {
		return nil, transform.Recoverable(stderrors.New("degraded"))
	}})
	registry.MustRegister[transform.Transform](reg, "warn", &fakeTransform{id: "warn", fn: func(in []byte, _ *transform.Context) (*types.TransformResult, error) {
		res := primary(string(in))
		res.Errors = []error{stderrors.New("just a warning")}
		return res, nil
	}})
	registry.MustRegister[transform.Transform](reg, "panic", &fakeTransform{id: "panic", fn: func([]byte, *transform.Context) (*types.TransformResult, error) {
		panic("unexpected")
	}})
	return reg
}

func ref(ids ...string) []types.TransformRef {
	refs := make([]types.TransformRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, types.TransformRef{ID: id})
	}
	return refs
}

func TestChainRun(t *testing.T) {
	chain := transform.NewChain(newTestRegistry(), afero.NewMemMapFs(), "")
	file := types.NewSourceFile("css/site.css", []byte("body"))

	t.Run("no_rules_passes_through", func(t *testing.T) {
		res := chain.Run(context.Background(), file, nil)
		require.Len(t, res.Outputs, 1)
		assert.Equal(t, "body", string(res.Primary().Content))
		assert.Empty(t, res.Errors)
	})

	t.Run("output_pipes_across_rules", func(t *testing.T) {
		rules := []types.Rule{
			{Name: "first", Chain: ref("upper", "noop")},
			{Name: "second", Chain: ref("suffix")},
		}
		res := chain.Run(context.Background(), file, rules)
		assert.Equal(t, "BODY|second", string(res.Primary().Content))
	})

	t.Run("named_outputs_follow_primary", func(t *testing.T) {
		rules := []types.Rule{{Name: "r", Chain: ref("upper", "map", "map")}}
		res := chain.Run(context.Background(), file, rules)

		require.Len(t, res.Outputs, 2)
		assert.Equal(t, "", res.Outputs[0].Name)
		assert.Equal(t, ".map", res.Outputs[1].Name)
		assert.Equal(t, "map of BODY", string(res.Outputs[1].Content))
		assert.Equal(t, []string{"shared/base.css"}, res.Dependencies)
	})

	t.Run("fatal_error_aborts", func(t *testing.T) {
		rules := []types.Rule{{Name: "r", Chain: ref("fail", "upper")}}
		res := chain.Run(context.Background(), file, rules)

		assert.True(t, res.Failed())
		assert.Empty(t, res.Outputs)
		var terr *errors.TransformError
		require.True(t, errors.As(res.Errors[0], &terr))
		assert.Equal(t, "fail", terr.TransformID)
		assert.Equal(t, "css/site.css", terr.Path)
		assert.True(t, terr.Fatal)
	})

	t.Run("recoverable_error_is_warning", func(t *testing.T) {
		rules := []types.Rule{{Name: "r", Chain: ref("soft")}}
		res := chain.Run(context.Background(), file, rules)

		assert.False(t, res.Failed())
		assert.Len(t, res.Warnings(), 1)
	})

	t.Run("reported_errors_are_warnings", func(t *testing.T) {
		rules := []types.Rule{{Name: "r", Chain: ref("warn", "upper")}}
		res := chain.Run(context.Background(), file, rules)

		assert.False(t, res.Failed())
		assert.Len(t, res.Warnings(), 1)
		assert.Equal(t, "BODY", string(res.Primary().Content))
	})

	t.Run("panic_is_contained", func(t *testing.T) {
		rules := []types.Rule{{Name: "r", Chain: ref("panic")}}
		res := chain.Run(context.Background(), file, rules)

		assert.True(t, res.Failed())
		assert.Contains(t, res.Errors[0].Error(), "transform panicked")
	})

	t.Run("unknown_transform", func(t *testing.T) {
		rules := []types.Rule{{Name: "r", Chain: ref("missing")}}
		res := chain.Run(context.Background(), file, rules)
		assert.True(t, res.Failed())
	})
}

func TestContextResolve(t *testing.T) {
	tc := transform.NewContext(nil, "src", "css/site.css")

	assert.Equal(t, "css/base.css", tc.Resolve("base.css"))
	assert.Equal(t, "img/logo.png", tc.Resolve("../img/logo.png?v=2"))
	assert.Equal(t, "fonts/a.woff", tc.Resolve("/fonts/a.woff"))
}

func TestContextReadSibling(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/css/base.css", []byte("base"), 0644))

	tc := transform.NewContext(fs, "src", "css/site.css")
	data, resolved, err := tc.ReadSibling("base.css")
	require.NoError(t, err)
	assert.Equal(t, "base", string(data))
	assert.Equal(t, "css/base.css", resolved)

	_, _, err = tc.ReadSibling("missing.css")
	assert.Error(t, err)
}

func TestDecodeOptions(t *testing.T) {
	var opts struct {
		Limit    int64 `option:"limit"`
		Minimize bool  `option:"minimize"`
	}

	require.NoError(t, transform.DecodeOptions(map[string]interface{}{"limit": "8192", "minimize": 1}, &opts))
	assert.Equal(t, int64(8192), opts.Limit)
	assert.True(t, opts.Minimize)

	assert.Error(t, transform.DecodeOptions(map[string]interface{}{"unknown": true}, &opts))
}
