package naming

import (
	"sort"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/types"
)

// Namer assigns output paths. The last applied rule carrying a name template
// decides; files without one use the fallback template.
type Namer struct {
	fallback *Template
	byRule   map[int]*Template
}

// NewNamer parses the fallback template and every rule's name template
func NewNamer(fallback string, rules []types.Rule) (*Namer, error) {
	if fallback == "" {
		fallback = DefaultTemplate
	}
	fb, err := ParseTemplate(fallback)
	if err != nil {
		return nil, err
	}

	n := &Namer{fallback: fb, byRule: map[int]*Template{}}
	for _, rule := range rules {
		if rule.NameTemplate == "" {
			continue
		}
		t, err := ParseTemplate(rule.NameTemplate)
		if err != nil {
			return nil, errors.Configuration(err, "rule %s has an invalid name template", rule.DisplayName())
		}
		n.byRule[rule.Index] = t
	}
	return n, nil
}

// Template returns the template used for a file the given rules applied to
func (n *Namer) Template(applied []types.Rule) *Template {
	for i := len(applied) - 1; i >= 0; i-- {
		if t, ok := n.byRule[applied[i].Index]; ok {
			return t
		}
	}
	return n.fallback
}

// Name returns the output path for the primary output of file
func (n *Namer) Name(file *types.SourceFile, applied []types.Rule, output []byte) string {
	return n.Template(applied).Expand(file, output)
}

// Tracker records which sources claim each output path
type Tracker struct {
	owners map[string][]string
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{owners: map[string][]string{}}
}

// Claim records that source produces output. It returns an
// OutputCollisionError when a different source already claimed it.
func (t *Tracker) Claim(output, source string) error {
	owners := t.owners[output]
	for _, o := range owners {
		if o == source {
			return nil
		}
	}
	t.owners[output] = append(owners, source)
	if len(owners) > 0 {
		return t.collision(output)
	}
	return nil
}

// Owner returns the first source that claimed output
func (t *Tracker) Owner(output string) (string, bool) {
	owners := t.owners[output]
	if len(owners) == 0 {
		return "", false
	}
	return owners[0], true
}

// Collisions returns one error per contested output path, sorted by path
func (t *Tracker) Collisions() []error {
	var paths []string
	for p, owners := range t.owners {
		if len(owners) > 1 {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	errs := make([]error, 0, len(paths))
	for _, p := range paths {
		errs = append(errs, t.collision(p))
	}
	return errs
}

func (t *Tracker) collision(output string) *errors.OutputCollisionError {
	sources := append([]string(nil), t.owners[output]...)
	sort.Strings(sources)
	return &errors.OutputCollisionError{Path: output, Sources: sources}
}
