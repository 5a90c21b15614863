package rules

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a compiled glob following the basename/path convention
type Pattern struct {
	source   string
	glob     glob.Glob
	basename bool
}

// CompilePattern compiles a rule glob. Patterns without a slash match the
// base name of a path, all others match the whole path.
func CompilePattern(pattern string) (*Pattern, error) {
	p := strings.TrimPrefix(pattern, "./")
	g, err := glob.Compile(p, '/')
	if err != nil {
		return nil, err
	}
	return &Pattern{
		source:   pattern,
		glob:     g,
		basename: !strings.Contains(p, "/"),
	}, nil
}

// Match reports whether the relative path p matches
func (pt *Pattern) Match(p string) bool {
	if pt.basename {
		return pt.glob.Match(path.Base(p))
	}
	return pt.glob.Match(p)
}

func (pt *Pattern) String() string { return pt.source }

// PathFilter is a set of include or exclude entries
type PathFilter struct {
	prefixes []string
	patterns []*Pattern
}

// NewPathFilter compiles entries. An entry containing glob meta characters is
// a pattern; any other entry is a directory prefix, with leading and trailing
// slashes ignored.
func NewPathFilter(entries []string) (*PathFilter, error) {
	f := &PathFilter{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.ContainsAny(entry, "*?[{") {
			p, err := CompilePattern(strings.TrimPrefix(entry, "/"))
			if err != nil {
				return nil, err
			}
			f.patterns = append(f.patterns, p)
			continue
		}
		prefix := strings.Trim(path.Clean("/"+entry), "/")
		if prefix == "" {
			// "/" covers everything
			prefix = "."
		}
		f.prefixes = append(f.prefixes, prefix)
	}
	return f, nil
}

// Empty reports whether the filter has no entries
func (f *PathFilter) Empty() bool {
	return f == nil || (len(f.prefixes) == 0 && len(f.patterns) == 0)
}

// Match reports whether p lies under one of the prefixes or matches one of
// the patterns
func (f *PathFilter) Match(p string) bool {
	if f == nil {
		return false
	}
	for _, prefix := range f.prefixes {
		if prefix == "." || p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
		// A bare name such as node_modules also matches nested directories
		if !strings.Contains(prefix, "/") && strings.Contains("/"+p+"/", "/"+prefix+"/") {
			return true
		}
	}
	for _, pt := range f.patterns {
		if pt.Match(p) {
			return true
		}
	}
	return false
}
