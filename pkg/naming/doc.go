// Package naming turns output templates into output paths.
//
// A template mixes literal text with placeholders:
//
//	[name]           base name of the source without extension
//	[ext]            source extension without the dot
//	[path]           source directory relative to the root, with a trailing slash
//	[folder]         name of the directory holding the source
//	[hash]           hash of the output bytes
//	[hash:N]         the first N characters of that hash
//	[contenthash:N]  same as [hash:N]
//	[sourcehash:N]   hash of the source bytes instead of the output
//
// Expanding a template is a pure function of the source file and the output
// bytes. The Tracker detects distinct sources claiming the same output path.
package naming
