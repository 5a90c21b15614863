package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/evanw/esbuild/pkg/api"
)

// Esbuild compiles JavaScript, JSX and TypeScript sources
type Esbuild struct{}

type esbuildOptions struct {
	Minimize bool   `option:"minimize"`
	Format   string `option:"format"`
	Target   string `option:"target"`
	Loader   string `option:"loader"`
}

var esbuildTargets = map[string]api.Target{
	"":       api.ESNext,
	"esnext": api.ESNext,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
}

var esbuildFormats = map[string]api.Format{
	"":     api.FormatDefault,
	"esm":  api.FormatESModule,
	"iife": api.FormatIIFE,
	"cjs":  api.FormatCommonJS,
}

var esbuildLoaders = map[string]api.Loader{
	"js":  api.LoaderJS,
	"mjs": api.LoaderJS,
	"cjs": api.LoaderJS,
	"jsx": api.LoaderJSX,
	"ts":  api.LoaderTS,
	"mts": api.LoaderTS,
	"tsx": api.LoaderTSX,
}

func (e *Esbuild) ID() string { return IDEsbuild }

func (e *Esbuild) ValidateOptions(options map[string]interface{}) error {
	_, err := e.decode(options)
	return err
}

func (e *Esbuild) decode(options map[string]interface{}) (esbuildOptions, error) {
	var opts esbuildOptions
	if err := transform.DecodeOptions(options, &opts); err != nil {
		return opts, err
	}
	opts.Target = strings.ToLower(opts.Target)
	opts.Format = strings.ToLower(opts.Format)
	if _, ok := esbuildTargets[opts.Target]; !ok {
		return opts, fmt.Errorf("unknown target %q", opts.Target)
	}
	if _, ok := esbuildFormats[opts.Format]; !ok {
		return opts, fmt.Errorf("unknown format %q (want esm, iife or cjs)", opts.Format)
	}
	if opts.Loader != "" {
		if _, ok := esbuildLoaders[opts.Loader]; !ok {
			return opts, fmt.Errorf("unknown loader %q", opts.Loader)
		}
	}
	return opts, nil
}

func (e *Esbuild) Apply(_ context.Context, input []byte, options map[string]interface{}, tc *transform.Context) (*types.TransformResult, error) {
	opts, err := e.decode(options)
	if err != nil {
		return nil, err
	}
	minify := opts.Minimize || tc.RuleOptions.Minimize

	loaderName := opts.Loader
	if loaderName == "" {
		loaderName = extOf(tc.Path)
	}
	loader, ok := esbuildLoaders[loaderName]
	if !ok {
		loader = api.LoaderJS
	}

	res := api.Transform(string(input), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        tc.Path,
		Target:            esbuildTargets[opts.Target],
		Format:            esbuildFormats[opts.Format],
		JSX:               api.JSXAutomatic,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
	})
	if len(res.Errors) > 0 {
		return nil, messagesError(res.Errors)
	}

	result := &types.TransformResult{Outputs: []types.Output{{Content: res.Code}}}
	for _, w := range res.Warnings {
		result.Errors = append(result.Errors, fmt.Errorf("%s", formatMessage(w)))
	}
	return result, nil
}

func messagesError(msgs []api.Message) error {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, formatMessage(m))
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text)
}

func extOf(p string) string {
	i := strings.LastIndex(p, ".")
	if i < 0 || strings.Contains(p[i:], "/") {
		return ""
	}
	return strings.ToLower(p[i+1:])
}
