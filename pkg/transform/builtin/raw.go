package builtin

import (
	"context"

	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
)

// Raw passes its input through unchanged
type Raw struct{}

func (r *Raw) ID() string { return IDRaw }

func (r *Raw) ValidateOptions(options map[string]interface{}) error {
	return transform.DecodeOptions(options, &struct{}{})
}

func (r *Raw) Apply(_ context.Context, _ []byte, _ map[string]interface{}, _ *transform.Context) (*types.TransformResult, error) {
	return nil, nil
}
