package config

import (
	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

const starterHeader = `# bundler configuration
#
# Every file under source.dir is matched against the rules below. All
# matching rules run, pre before normal before post; set final = true on a
# rule to stop the rules after it. Files no rule matches are copied using
# output.filename unless policy.require_match is set.

`

// starter holds the sections written by GenerateStarter
type starter struct {
	Source SourceConfig `toml:"source"`
	Output OutputConfig `toml:"output"`
	Policy PolicyConfig `toml:"policy"`
	Rules  []RuleConfig `toml:"rules"`
}

// StarterRules is a rule set covering a typical web project
func StarterRules() []RuleConfig {
	return []RuleConfig{
		{
			Name:    "scripts",
			Test:    `\.(js|jsx|ts|tsx)$`,
			Exclude: []string{"node_modules"},
			Chain:   []TransformConfig{{Use: "esbuild"}},
			Options: &RuleOptionsConfig{Minimize: true},
		},
		{
			Name:    "styles",
			Pattern: "*.css",
			Chain:   []TransformConfig{{Use: "css"}},
			Options: &RuleOptionsConfig{Minimize: true, Extract: "css/style.css"},
		},
		{
			Name:         "svg",
			Pattern:      "*.svg",
			Exclude:      []string{"icons/not-sprite"},
			Chain:        []TransformConfig{{Use: "svgo"}},
			NameTemplate: "img/[name].[hash:7].[ext]",
		},
		{
			Name:         "images",
			Pattern:      "*.{png,jpg,jpeg,gif}",
			Chain:        []TransformConfig{{Use: "url"}},
			NameTemplate: "img/[name].[hash:7].[ext]",
			Options:      &RuleOptionsConfig{Limit: 10000},
		},
		{
			Name:  "compress",
			Test:  `\.(js|css|svg)$`,
			Phase: "post",
			Chain: []TransformConfig{{Use: "gzip", Options: map[string]interface{}{"min_size": 1024}}},
		},
	}
}

// GenerateStarter returns a commented starter bundler.toml
func GenerateStarter() ([]byte, error) {
	doc := starter{
		Source: SourceConfig{Dir: "src", Ignore: []string{"node_modules", ".git"}},
		Output: OutputConfig{Dir: "dist", Filename: "[path][name].[ext]", Manifest: "json"},
		Rules:  StarterRules(),
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode starter config")
	}
	return append([]byte(starterHeader), data...), nil
}
