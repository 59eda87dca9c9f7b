package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	InputHash   Hash
	ConfigHash  Hash
	CatalogHash Hash
	CodeVersion Hash
)

// Constructors
func NewInputHash(data []byte) InputHash     { return InputHash(NewHash(data)) }
func NewConfigHash(data []byte) ConfigHash   { return ConfigHash(NewHash(data)) }
func NewCatalogHash(data []byte) CatalogHash { return CatalogHash(NewHash(data)) }
func NewCodeVersion(data []byte) CodeVersion { return CodeVersion(NewHash(data)) }

// String conversions
func (h InputHash) String() string   { return Hash(h).String() }
func (h ConfigHash) String() string  { return Hash(h).String() }
func (h CatalogHash) String() string { return Hash(h).String() }
func (h CodeVersion) String() string { return Hash(h).String() }

// ComputeConfigHash fingerprints a flat settings map. Keys are sorted so the
// hash is independent of map iteration order.
func ComputeConfigHash(settings map[string]interface{}) ConfigHash {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", settings[key]))
	}

	return NewConfigHash([]byte(data.String()))
}

// ComputeCatalogHash fingerprints the set of tool IDs visible at planning
// time. IDs are sorted so the hash is order independent.
func ComputeCatalogHash(toolIDs []string) CatalogHash {
	ids := make([]string, len(toolIDs))
	copy(ids, toolIDs)
	sort.Strings(ids)

	var data strings.Builder
	for _, id := range ids {
		data.WriteString(id)
	}

	return NewCatalogHash([]byte(data.String()))
}
