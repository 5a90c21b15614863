// Package builtin provides the transforms bundler ships with. They are
// registered under fixed identifiers; rules referring to any other
// identifier are rejected when the rule set is built.
//
//	raw      passes bytes through unchanged
//	banner   prepends a comment banner
//	esbuild  compiles and optionally minifies scripts
//	css      minifies stylesheets and reports @import and url() dependencies
//	svgo     strips editor metadata, comments and whitespace from SVG
//	url      inlines files under a size limit as data URIs
//	json     validates and compacts JSON
//	gzip     adds a gzip compressed sibling output
package builtin
