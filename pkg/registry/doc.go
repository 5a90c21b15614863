// Package registry binds the transform and plugin identifiers used in
// configuration to their implementations. Unknown identifiers fail with a
// NOT_FOUND error that lists what is available, so a typo in a config file
// is caught before any file is read.
package registry
