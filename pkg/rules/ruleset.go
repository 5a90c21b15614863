package rules

import (
	"time"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/transform"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/dlclark/regexp2"
)

// testTimeout bounds a single regular expression evaluation
const testTimeout = 250 * time.Millisecond

type compiledRule struct {
	rule    types.Rule
	pattern *Pattern
	test    *regexp2.Regexp
	include *PathFilter
	exclude *PathFilter
}

// RuleSet is an immutable, validated list of rules in declaration order
type RuleSet struct {
	rules []compiledRule
}

// NewRuleSet validates rules and compiles their predicates. Every transform a
// rule refers to must be registered in reg and accept the rule's options.
// Problems are reported as configuration errors before any file is touched.
func NewRuleSet(rules []types.Rule, reg transform.Registry) (*RuleSet, error) {
	set := &RuleSet{rules: make([]compiledRule, 0, len(rules))}
	names := map[string]int{}

	for i, rule := range rules {
		rule.Index = i
		label := rule.DisplayName()

		if rule.Pattern == "" && rule.Test == "" {
			return nil, errors.Configuration(nil, "rule %d has neither a pattern nor a test", i+1).
				WithDetail("rule", i+1)
		}
		if rule.Phase < types.PhasePre || rule.Phase > types.PhasePost {
			return nil, errors.Configuration(nil, "rule %s has an invalid phase %s", label, rule.Phase)
		}
		if rule.Name != "" {
			if prev, ok := names[rule.Name]; ok {
				return nil, errors.Configuration(nil, "rules %d and %d are both named %q", prev+1, i+1, rule.Name)
			}
			names[rule.Name] = i
		}

		cr := compiledRule{rule: rule}
		var err error
		if rule.Pattern != "" {
			if cr.pattern, err = CompilePattern(rule.Pattern); err != nil {
				return nil, errors.Configuration(err, "rule %s has an invalid pattern", label)
			}
		}
		if rule.Test != "" {
			if cr.test, err = regexp2.Compile(rule.Test, regexp2.ECMAScript); err != nil {
				return nil, errors.Configuration(err, "rule %s has an invalid test expression", label)
			}
			cr.test.MatchTimeout = testTimeout
		}
		if cr.include, err = NewPathFilter(rule.Include); err != nil {
			return nil, errors.Configuration(err, "rule %s has an invalid include entry", label)
		}
		if cr.exclude, err = NewPathFilter(rule.Exclude); err != nil {
			return nil, errors.Configuration(err, "rule %s has an invalid exclude entry", label)
		}

		for _, ref := range rule.Chain {
			t, err := reg.Get(ref.ID)
			if err != nil {
				return nil, errors.Configuration(err, "rule %s", label).
					WithDetail("transform", ref.ID)
			}
			if err := t.ValidateOptions(ref.Options); err != nil {
				return nil, errors.Configuration(err, "rule %s has invalid options for transform %q", label, ref.ID).
					WithDetail("transform", ref.ID)
			}
		}

		set.rules = append(set.rules, cr)
	}

	return set, nil
}

// Rules returns the rules in declaration order
func (s *RuleSet) Rules() []types.Rule {
	out := make([]types.Rule, len(s.rules))
	for i, cr := range s.rules {
		out[i] = cr.rule
	}
	return out
}

// Len returns the number of rules
func (s *RuleSet) Len() int { return len(s.rules) }

// check evaluates one rule against p and returns an empty reason on match
func (cr *compiledRule) check(p string) string {
	if cr.pattern != nil && !cr.pattern.Match(p) {
		return "pattern does not match"
	}
	if cr.test != nil {
		ok, err := cr.test.MatchString(p)
		if err != nil {
			return "test failed: " + err.Error()
		}
		if !ok {
			return "test does not match"
		}
	}
	if !cr.include.Empty() && !cr.include.Match(p) {
		return "not under an include entry"
	}
	if cr.exclude.Match(p) {
		return "excluded"
	}
	return ""
}
