package types

import (
	"encoding/json"
	"strings"
)

// TransformRef names a registered transform and the options it runs with
type TransformRef struct {
	ID      string
	Options map[string]interface{}
}

// Identity returns a stable string for the reference. Options are encoded as
// JSON, which sorts map keys, so equal options always yield equal identities.
func (r TransformRef) Identity() string {
	if len(r.Options) == 0 {
		return r.ID
	}
	data, err := json.Marshal(r.Options)
	if err != nil {
		return r.ID + "{?}"
	}
	return r.ID + string(data)
}

// RuleOptions are the options a rule itself understands, independent of
// the transforms in its chain
type RuleOptions struct {
	// Limit is the inline-vs-file threshold in bytes, passed to url transforms
	Limit int64
	// Minimize asks transforms in the chain to minify their output
	Minimize bool
	// Extract sends the primary output into the named combined asset
	Extract string
}

// Rule is a declarative predicate plus a transform chain
type Rule struct {
	// Name identifies the rule in logs and errors; defaults to its pattern
	Name string
	// Pattern is a glob. Patterns without a slash match the base name,
	// patterns with a slash match the whole relative path.
	Pattern string
	// Test is an optional ECMAScript regular expression matched against the path
	Test string
	// Include, when non-empty, restricts the rule to paths under one of these
	// prefixes or matching one of these globs
	Include []string
	// Exclude removes paths under one of these prefixes or matching these globs
	Exclude []string
	Chain   []TransformRef
	Phase   Phase
	// NameTemplate overrides the output name for files this rule applies to
	NameTemplate string
	Options      RuleOptions
	// Final stops later rules from applying once this rule matched
	Final bool
	// Index is the declaration position, set when the rule set is built
	Index int
}

// DisplayName returns the rule name or its pattern
func (r Rule) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Pattern != "" {
		return r.Pattern
	}
	return "/" + r.Test + "/"
}

// ChainIdentity describes an ordered rule list as a single string: each
// rule's phase followed by its transform identities. Two rule lists with the
// same identity transform any input the same way.
func ChainIdentity(rules []Rule) string {
	var b strings.Builder
	for i, rule := range rules {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(rule.Phase.String())
		b.WriteString(":")
		for j, ref := range rule.Chain {
			if j > 0 {
				b.WriteString(">")
			}
			b.WriteString(ref.Identity())
		}
	}
	return b.String()
}
