package testutil

import "github.com/arthur-debert/bundler/pkg/types"

// Checksum returns the content hash bundler records for content
func Checksum(content string) string {
	return types.HashContent([]byte(content))
}

// ShortChecksum returns the first n characters of Checksum, as used by
// [hash:N] name placeholders
func ShortChecksum(content string, n int) string {
	return Checksum(content)[:n]
}
