package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Chain runs matched rules against a file
type Chain struct {
	registry Registry
	fs       afero.Fs
	root     string
	logger   zerolog.Logger
}

// NewChain creates a chain runner resolving transforms from reg. Sibling
// lookups made by transforms read from fs under root.
func NewChain(reg Registry, fs afero.Fs, root string) *Chain {
	return &Chain{
		registry: reg,
		fs:       fs,
		root:     root,
		logger:   logging.GetLogger("transform.chain"),
	}
}

// Run executes every rule's chain in order and returns the combined result.
// With no rules the file passes through unchanged.
func (c *Chain) Run(ctx context.Context, file *types.SourceFile, rules []types.Rule) *types.TransformResult {
	result := &types.TransformResult{}
	current := types.Output{Content: file.Content}
	named := map[string]int{}
	seenDeps := map[string]bool{}

	for _, rule := range rules {
		for _, ref := range rule.Chain {
			tc := NewContext(c.fs, c.root, file.Path)
			tc.Rule = rule.DisplayName()
			tc.RuleOptions = rule.Options

			start := time.Now()
			step, err := c.apply(ctx, ref, current.Content, tc)
			if err != nil {
				terr := &errors.TransformError{
					TransformID: ref.ID,
					Path:        file.Path,
					Cause:       err,
					Fatal:       !errors.Is(err, ErrRecoverable),
				}
				c.logger.Warn().
					Err(err).
					Str("path", file.Path).
					Str("transform", ref.ID).
					Str("rule", tc.Rule).
					Bool("fatal", terr.Fatal).
					Msg("Transform failed, aborting chain for file")
				result.Errors = append(result.Errors, terr)
				result.Dependencies = appendDeps(result.Dependencies, seenDeps, stepDeps(step))
				return result
			}

			c.logger.Trace().
				Str("path", file.Path).
				Str("transform", ref.ID).
				Dur("duration", time.Since(start)).
				Msg("Transform applied")

			if step == nil {
				continue
			}
			for _, werr := range step.Errors {
				result.Errors = append(result.Errors, &errors.TransformError{
					TransformID: ref.ID,
					Path:        file.Path,
					Cause:       werr,
				})
			}
			result.Dependencies = appendDeps(result.Dependencies, seenDeps, step.Dependencies)
			for _, out := range step.Outputs {
				if out.Name == "" {
					current = out
					continue
				}
				if i, ok := named[out.Name]; ok {
					result.Outputs[i] = out
					continue
				}
				named[out.Name] = len(result.Outputs)
				result.Outputs = append(result.Outputs, out)
			}
		}
	}

	result.Outputs = append([]types.Output{current}, result.Outputs...)
	return result
}

// apply runs a single transform inside a failure boundary
func (c *Chain) apply(ctx context.Context, ref types.TransformRef, input []byte, tc *Context) (res *types.TransformResult, err error) {
	t, err := c.registry.Get(ref.ID)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()

	return t.Apply(ctx, input, ref.Options, tc)
}

func stepDeps(step *types.TransformResult) []string {
	if step == nil {
		return nil
	}
	return step.Dependencies
}

func appendDeps(deps []string, seen map[string]bool, add []string) []string {
	for _, d := range add {
		if !seen[d] {
			seen[d] = true
			deps = append(deps, d)
		}
	}
	return deps
}
