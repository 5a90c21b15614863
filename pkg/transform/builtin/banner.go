package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
)

// Banner prepends a preserved comment to the file
type Banner struct{}

type bannerOptions struct {
	Text string `option:"text"`
}

func (b *Banner) ID() string { return IDBanner }

func (b *Banner) ValidateOptions(options map[string]interface{}) error {
	var opts bannerOptions
	if err := transform.DecodeOptions(options, &opts); err != nil {
		return err
	}
	if opts.Text == "" {
		return fmt.Errorf("banner requires a text option")
	}
	if strings.Contains(opts.Text, "*/") {
		return fmt.Errorf("banner text cannot contain */")
	}
	return nil
}

func (b *Banner) Apply(_ context.Context, input []byte, options map[string]interface{}, _ *transform.Context) (*types.TransformResult, error) {
	var opts bannerOptions
	if err := transform.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(input)+len(opts.Text)+8)
	out = append(out, "/*! "+opts.Text+" */\n"...)
	out = append(out, input...)
	return &types.TransformResult{Outputs: []types.Output{{Content: out}}}, nil
}
