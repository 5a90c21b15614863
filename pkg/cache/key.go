package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a cached result
type Key struct {
	// Hash is the content hash of the source file
	Hash string
	// Chain is the identity of the transform chain applied to it
	Chain string
}

// String returns a readable form of the key
func (k Key) String() string {
	return k.Hash + "|" + k.Chain
}

// digest returns a fixed length hex form used for disk paths
func (k Key) digest() string {
	return fmt.Sprintf("%s%016x", k.Hash, xxhash.Sum64String(k.Chain))
}
