package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
)

// JSON validates JSON documents and compacts them when minimizing
type JSON struct{}

type jsonOptions struct {
	Minimize bool `option:"minimize"`
}

func (j *JSON) ID() string { return IDJSON }

func (j *JSON) ValidateOptions(options map[string]interface{}) error {
	return transform.DecodeOptions(options, &jsonOptions{})
}

func (j *JSON) Apply(_ context.Context, input []byte, options map[string]interface{}, tc *transform.Context) (*types.TransformResult, error) {
	var opts jsonOptions
	if err := transform.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if !json.Valid(input) {
		var v interface{}
		err := json.Unmarshal(input, &v)
		return nil, fmt.Errorf("invalid json: %v", err)
	}
	if !opts.Minimize && !tc.RuleOptions.Minimize {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, input); err != nil {
		return nil, err
	}
	return &types.TransformResult{Outputs: []types.Output{{Content: buf.Bytes()}}}, nil
}
