package rules

import (
	"path"
	"sort"
	"strings"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/rs/zerolog"
)

// Matcher selects the rules that apply to a path
type Matcher struct {
	set          *RuleSet
	requireMatch bool
	logger       zerolog.Logger
}

// NewMatcher creates a matcher over set. With requireMatch, a path no rule
// applies to is an error instead of an empty result.
func NewMatcher(set *RuleSet, requireMatch bool) *Matcher {
	return &Matcher{
		set:          set,
		requireMatch: requireMatch,
		logger:       logging.GetLogger("rules.matcher"),
	}
}

// Match returns every rule that applies to the relative path p, ordered by
// phase and then declaration order. When no rule applies the result is empty,
// or a NoRuleMatchedError if the matcher requires a match.
func (m *Matcher) Match(p string) ([]types.Rule, error) {
	p = normalize(p)

	var matched []types.Rule
	for i := range m.set.rules {
		cr := &m.set.rules[i]
		if cr.check(p) == "" {
			matched = append(matched, cr.rule)
		}
	}
	matched = order(matched)

	if len(matched) == 0 {
		m.logger.Trace().Str("path", p).Msg("No rule matched")
		if m.requireMatch {
			return nil, &errors.NoRuleMatchedError{Path: p}
		}
		return nil, nil
	}

	m.logger.Trace().
		Str("path", p).
		Str("chain", types.ChainIdentity(matched)).
		Msg("Rules matched")
	return matched, nil
}

// Decision explains how one rule relates to a path
type Decision struct {
	Rule    types.Rule
	Applies bool
	// Reason is empty when the rule applies
	Reason string
}

// Explain reports, for every rule in declaration order, whether it applies to
// p and why not
func (m *Matcher) Explain(p string) []Decision {
	p = normalize(p)

	decisions := make([]Decision, len(m.set.rules))
	var matched []types.Rule
	for i := range m.set.rules {
		cr := &m.set.rules[i]
		reason := cr.check(p)
		decisions[i] = Decision{Rule: cr.rule, Reason: reason}
		if reason == "" {
			matched = append(matched, cr.rule)
		}
	}

	applies := map[int]bool{}
	for _, r := range order(matched) {
		applies[r.Index] = true
	}
	for i := range decisions {
		d := &decisions[i]
		if d.Reason == "" && !applies[d.Rule.Index] {
			d.Reason = "stopped by an earlier final rule"
		}
		d.Applies = applies[d.Rule.Index]
	}
	return decisions
}

// order sorts rules by phase then declaration order and cuts the list after
// the first final rule
func order(rules []types.Rule) []types.Rule {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Phase != rules[j].Phase {
			return rules[i].Phase < rules[j].Phase
		}
		return rules[i].Index < rules[j].Index
	})
	for i, r := range rules {
		if r.Final {
			return rules[:i+1]
		}
	}
	return rules
}

func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean(strings.TrimPrefix(p, "./"))
}
