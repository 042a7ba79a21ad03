package cache

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Key joins parts into a colon separated store key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Digest shortens s to a hex token for use inside a key.
func Digest(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return strconv.FormatUint(h.Sum64(), 16)
}
