package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/beevik/etree"
)

// SVGO shrinks SVG documents: it drops comments, processing instructions,
// doctype, metadata and editor namespaces, and whitespace between elements
type SVGO struct{}

type svgoOptions struct {
	KeepTitle    bool `option:"keep_title"`
	KeepComments bool `option:"keep_comments"`
}

// editorNamespaces are attribute prefixes written by drawing tools
var editorNamespaces = map[string]bool{
	"inkscape": true,
	"sodipodi": true,
	"sketch":   true,
	"serif":    true,
}

func (s *SVGO) ID() string { return IDSVGO }

func (s *SVGO) ValidateOptions(options map[string]interface{}) error {
	return transform.DecodeOptions(options, &svgoOptions{})
}

func (s *SVGO) Apply(_ context.Context, input []byte, options map[string]interface{}, _ *transform.Context) (*types.TransformResult, error) {
	var opts svgoOptions
	if err := transform.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(input); err != nil {
		return nil, fmt.Errorf("invalid svg: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, fmt.Errorf("invalid svg: root element is not <svg>")
	}

	doc.Child = s.cleanTokens(doc.Child, opts, true)
	s.cleanElement(root, opts)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return &types.TransformResult{Outputs: []types.Output{{Content: out}}}, nil
}

func (s *SVGO) cleanElement(e *etree.Element, opts svgoOptions) {
	attrs := e.Attr[:0]
	for _, a := range e.Attr {
		if editorNamespaces[a.Space] {
			continue
		}
		if a.Space == "xmlns" && editorNamespaces[a.Key] {
			continue
		}
		attrs = append(attrs, a)
	}
	e.Attr = attrs

	e.Child = s.cleanTokens(e.Child, opts, false)
	for _, child := range e.ChildElements() {
		s.cleanElement(child, opts)
	}
}

func (s *SVGO) cleanTokens(tokens []etree.Token, opts svgoOptions, top bool) []etree.Token {
	kept := make([]etree.Token, 0, len(tokens))
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *etree.Comment:
			if !opts.KeepComments {
				continue
			}
		case *etree.ProcInst, *etree.Directive:
			continue
		case *etree.CharData:
			if strings.TrimSpace(t.Data) == "" {
				continue
			}
		case *etree.Element:
			if editorNamespaces[t.Space] {
				continue
			}
			switch t.Tag {
			case "metadata":
				continue
			case "title", "desc":
				if !opts.KeepTitle && !top {
					continue
				}
			}
		}
		kept = append(kept, tok)
	}
	return kept
}
