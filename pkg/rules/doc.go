// Package rules builds validated rule sets and matches source paths against them.
//
// # Pattern Conventions
//
// Rule patterns are globs with the same conventions the scanner has always used:
//
//   - `*.svg` - no slash, matched against the base name
//   - `img/*.png` - contains a slash, matched against the whole relative path
//   - `**/vendor/*.js` - `**` crosses directory boundaries
//
// A rule may instead (or also) carry a `test` regular expression using
// ECMAScript syntax, matched against the relative path.
//
// # Include and Exclude
//
// Include and exclude entries are either directory prefixes (`node_modules`,
// `/src/legacy/`) or globs (`icons/not-sprite/*`). A rule with a non-empty
// include list only applies below one of its entries; any exclude entry
// removes the path.
//
// # Ordering
//
// Every matching rule applies. Results are ordered by phase (pre, normal,
// post) and then by declaration order. A rule marked final stops the rules
// after it from applying:
//
//	[[rules]]
//	pattern = "*.svg"
//	exclude = ["icons/not-sprite"]
//	chain = [{ use = "svgo" }]
//	final = true
package rules
