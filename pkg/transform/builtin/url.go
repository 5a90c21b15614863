package builtin

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
)

// URL inlines small files as data URIs. Files of at least limit bytes pass
// through and are emitted as regular files. A limit of zero or less inlines
// every file.
type URL struct{}

type urlOptions struct {
	Limit int64  `option:"limit"`
	Mime  string `option:"mime"`
}

var fallbackMimeTypes = map[string]string{
	"svg":   "image/svg+xml",
	"png":   "image/png",
	"gif":   "image/gif",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"webp":  "image/webp",
	"woff":  "font/woff",
	"woff2": "font/woff2",
}

func (u *URL) ID() string { return IDURL }

func (u *URL) ValidateOptions(options map[string]interface{}) error {
	return transform.DecodeOptions(options, &urlOptions{})
}

func (u *URL) Apply(_ context.Context, input []byte, options map[string]interface{}, tc *transform.Context) (*types.TransformResult, error) {
	opts := urlOptions{Limit: tc.RuleOptions.Limit}
	if err := transform.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}

	if opts.Limit > 0 && int64(len(input)) >= opts.Limit {
		return nil, nil
	}

	mimeType := opts.Mime
	if mimeType == "" {
		mimeType = mimeTypeFor(extOf(tc.Path))
	}
	uri := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(input))

	return &types.TransformResult{
		Outputs: []types.Output{{Content: input, Inline: true, DataURI: uri}},
	}, nil
}

func mimeTypeFor(ext string) string {
	if m, ok := fallbackMimeTypes[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension("." + ext); m != "" {
		return strings.SplitN(m, ";", 2)[0]
	}
	return "application/octet-stream"
}
