package naming

import (
	"path"
	"strconv"
	"strings"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/types"
)

// DefaultTemplate keeps a file's relative location
const DefaultTemplate = "[path][name].[ext]"

type placeholder int

const (
	literal placeholder = iota
	phName
	phExt
	phPath
	phFolder
	phHash
	phSourceHash
)

var placeholders = map[string]placeholder{
	"name":        phName,
	"ext":         phExt,
	"path":        phPath,
	"folder":      phFolder,
	"hash":        phHash,
	"contenthash": phHash,
	"sourcehash":  phSourceHash,
}

type segment struct {
	kind   placeholder
	text   string
	length int
}

// Template is a parsed output template
type Template struct {
	source   string
	segments []segment
	hashed   bool
}

// ParseTemplate parses s. Unknown placeholders, unbalanced brackets, hash
// lengths outside 1..16 and paths escaping the output directory are
// configuration errors.
func ParseTemplate(s string) (*Template, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.Configuration(nil, "output template is empty")
	}

	t := &Template{source: s}
	rest := s
	for rest != "" {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			t.segments = append(t.segments, segment{kind: literal, text: rest})
			break
		}
		if open > 0 {
			t.segments = append(t.segments, segment{kind: literal, text: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], ']')
		if end < 0 {
			return nil, errors.Configuration(nil, "output template %q has an unclosed [", s)
		}
		seg, err := parsePlaceholder(rest[open+1 : open+end])
		if err != nil {
			return nil, errors.Configuration(err, "output template %q is invalid", s)
		}
		if seg.kind == phHash || seg.kind == phSourceHash {
			t.hashed = true
		}
		t.segments = append(t.segments, seg)
		rest = rest[open+end+1:]
	}

	for _, seg := range t.segments {
		if seg.kind == literal && strings.Contains(seg.text, "]") {
			return nil, errors.Configuration(nil, "output template %q has an unmatched ]", s)
		}
		if seg.kind == literal {
			for _, part := range strings.Split(seg.text, "/") {
				if part == ".." {
					return nil, errors.Configuration(nil, "output template %q escapes the output directory", s)
				}
			}
		}
	}
	return t, nil
}

// MustParseTemplate is ParseTemplate for templates known to be valid
func MustParseTemplate(s string) *Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func parsePlaceholder(body string) (segment, error) {
	name, lengthStr, hasLength := strings.Cut(body, ":")
	kind, ok := placeholders[name]
	if !ok {
		return segment{}, errors.Newf(errors.ErrInvalidInput, "unknown placeholder [%s]", body)
	}
	seg := segment{kind: kind, length: types.HashLength}
	if !hasLength {
		return seg, nil
	}
	if kind != phHash && kind != phSourceHash {
		return segment{}, errors.Newf(errors.ErrInvalidInput, "placeholder [%s] takes no length", name)
	}
	n, err := strconv.Atoi(lengthStr)
	if err != nil || n < 1 || n > types.HashLength {
		return segment{}, errors.Newf(errors.ErrInvalidInput,
			"hash length in [%s] must be between 1 and %d", body, types.HashLength)
	}
	seg.length = n
	return seg, nil
}

// String returns the template source
func (t *Template) String() string { return t.source }

// Hashed reports whether the template contains a hash placeholder
func (t *Template) Hashed() bool { return t.hashed }

// Expand returns the output path for file producing output
func (t *Template) Expand(file *types.SourceFile, output []byte) string {
	var b strings.Builder
	var outputHash string
	for _, seg := range t.segments {
		switch seg.kind {
		case literal:
			b.WriteString(seg.text)
		case phName:
			b.WriteString(file.Name())
		case phExt:
			b.WriteString(file.Ext())
		case phPath:
			if dir := file.Dir(); dir != "" {
				b.WriteString(dir)
				b.WriteString("/")
			}
		case phFolder:
			if dir := file.Dir(); dir != "" {
				b.WriteString(path.Base(dir))
			}
		case phHash:
			if outputHash == "" {
				outputHash = types.HashContent(output)
			}
			b.WriteString(outputHash[:seg.length])
		case phSourceHash:
			b.WriteString(file.Hash[:min(seg.length, len(file.Hash))])
		}
	}
	return cleanOutput(b.String())
}

// cleanOutput normalizes an expanded path: no leading slash, no empty or dot
// elements, and a trailing dot left by an empty [ext] is dropped
func cleanOutput(p string) string {
	p = path.Clean("/" + p)
	p = strings.TrimPrefix(p, "/")
	return strings.TrimSuffix(p, ".")
}
