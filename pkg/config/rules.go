package config

import (
	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/types"
)

// BuildRules converts the configured rules into their runtime form
func (c *Config) BuildRules() ([]types.Rule, error) {
	rules := make([]types.Rule, 0, len(c.Rules))
	for i, rc := range c.Rules {
		phase, err := types.ParsePhase(rc.Phase)
		if err != nil {
			return nil, errors.Configuration(err, "rule %d", i+1)
		}

		rule := types.Rule{
			Name:         rc.Name,
			Pattern:      rc.Pattern,
			Test:         rc.Test,
			Include:      rc.Include,
			Exclude:      rc.Exclude,
			Phase:        phase,
			NameTemplate: rc.NameTemplate,
			Final:        rc.Final,
			Index:        i,
		}
		if rc.Options != nil {
			rule.Options = types.RuleOptions{
				Limit:    rc.Options.Limit,
				Minimize: rc.Options.Minimize,
				Extract:  rc.Options.Extract,
			}
		}
		for j, tc := range rc.Chain {
			if tc.Use == "" {
				return nil, errors.Configuration(nil, "rule %s: chain entry %d has no transform", rule.DisplayName(), j+1)
			}
			rule.Chain = append(rule.Chain, types.TransformRef{ID: tc.Use, Options: tc.Options})
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
