package builtin

import (
	"context"
	"regexp"
	"strings"

	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/evanw/esbuild/pkg/api"
)

// CSS minifies stylesheets through esbuild's CSS loader and reports the
// files a stylesheet refers to as dependencies
type CSS struct{}

type cssOptions struct {
	Minimize bool `option:"minimize"`
}

var (
	cssImportPattern = regexp.MustCompile(`@import\s+(?:url\(\s*)?["']?([^"')\s;]+)["']?\s*\)?`)
	cssURLPattern    = regexp.MustCompile(`url\(\s*["']?([^"')]+)["']?\s*\)`)
)

func (c *CSS) ID() string { return IDCSS }

func (c *CSS) ValidateOptions(options map[string]interface{}) error {
	return transform.DecodeOptions(options, &cssOptions{})
}

func (c *CSS) Apply(_ context.Context, input []byte, options map[string]interface{}, tc *transform.Context) (*types.TransformResult, error) {
	var opts cssOptions
	if err := transform.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	minify := opts.Minimize || tc.RuleOptions.Minimize

	deps := cssDependencies(input, tc)

	res := api.Transform(string(input), api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       tc.Path,
		MinifyWhitespace: minify,
		MinifySyntax:     minify,
	})
	if len(res.Errors) > 0 {
		return &types.TransformResult{Dependencies: deps}, messagesError(res.Errors)
	}

	return &types.TransformResult{
		Outputs:      []types.Output{{Content: res.Code}},
		Dependencies: deps,
	}, nil
}

// cssDependencies lists local files referenced by @import and url()
func cssDependencies(input []byte, tc *transform.Context) []string {
	var deps []string
	seen := map[string]bool{}
	add := func(ref string) {
		if !isLocalRef(ref) {
			return
		}
		resolved := tc.Resolve(ref)
		if !seen[resolved] {
			seen[resolved] = true
			deps = append(deps, resolved)
		}
	}

	for _, m := range cssImportPattern.FindAllSubmatch(input, -1) {
		add(string(m[1]))
	}
	for _, m := range cssURLPattern.FindAllSubmatch(input, -1) {
		add(string(m[1]))
	}
	return deps
}

func isLocalRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return false
	}
	for _, prefix := range []string{"data:", "http:", "https:", "//"} {
		if strings.HasPrefix(ref, prefix) {
			return false
		}
	}
	return true
}
