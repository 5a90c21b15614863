package builtin

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/klauspost/compress/gzip"
)

// Gzip adds a ".gz" sibling output holding the compressed current content
type Gzip struct{}

type gzipOptions struct {
	Level   int   `option:"level"`
	MinSize int64 `option:"min_size"`
}

// GzipSuffix is the name of the output this transform adds
const GzipSuffix = ".gz"

func (g *Gzip) ID() string { return IDGzip }

func (g *Gzip) ValidateOptions(options map[string]interface{}) error {
	_, err := g.decode(options)
	return err
}

func (g *Gzip) decode(options map[string]interface{}) (gzipOptions, error) {
	opts := gzipOptions{Level: gzip.BestCompression}
	if err := transform.DecodeOptions(options, &opts); err != nil {
		return opts, err
	}
	if opts.Level < gzip.HuffmanOnly || opts.Level > gzip.BestCompression {
		return opts, fmt.Errorf("gzip level %d out of range", opts.Level)
	}
	return opts, nil
}

func (g *Gzip) Apply(_ context.Context, input []byte, options map[string]interface{}, _ *transform.Context) (*types.TransformResult, error) {
	opts, err := g.decode(options)
	if err != nil {
		return nil, err
	}
	if int64(len(input)) < opts.MinSize {
		return nil, nil
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, opts.Level)
	if err != nil {
		return nil, err
	}
	// Zero mtime keeps the compressed bytes reproducible
	w.ModTime = time.Time{}
	if _, err := w.Write(input); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &types.TransformResult{
		Outputs: []types.Output{{Name: GzipSuffix, Content: buf.Bytes()}},
	}, nil
}
