package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Tag folds the xxHash64 of data into a single byte.
//
// Tags identify user-defined types in the one-byte ElementInfo slot of a
// frame header. Zero is reserved for "no tag", so a fold that lands on zero
// is mapped to 0xFF.
func Tag(data string) uint8 {
	h := ID(data)
	h ^= h >> 32
	h ^= h >> 16
	h ^= h >> 8

	tag := uint8(h) //nolint:gosec // intentional truncation
	if tag == 0 {
		return 0xFF
	}

	return tag
}
