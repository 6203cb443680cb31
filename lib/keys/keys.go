// Package keys maps application keys into a tenant namespace.
//
// Every key handed to the client is turned into "<prefix>:<key>" before it
// reaches the store, so several applications can share one database without
// seeing each other's data. The mapping is pure and never fails.
//
// Keys are compared by their string form: raw keys that stringify to the same
// text (for example the int 1 and the string "1") address the same store key.
package keys

import (
	"bytes"
	"fmt"
	"strings"
)

// Separator is placed between the tenant prefix and the application key.
const Separator = ":"

// Namespacer turns application keys into namespaced store keys.
// The zero value uses the empty prefix (keys become ":<key>").
type Namespacer struct {
	prefix string
}

// New creates a Namespacer for the given tenant prefix.
func New(prefix string) Namespacer {
	return Namespacer{prefix: prefix}
}

// Prefix returns the tenant prefix.
func (n Namespacer) Prefix() string {
	return n.prefix
}

// Key returns the namespaced store key for raw.
//
// Byte slices and buffers are read as UTF-8 text, strings are used as-is,
// fmt.Stringer values use their String method and everything else is
// formatted with fmt.Sprint.
func (n Namespacer) Key(raw any) string {
	return n.prefix + Separator + String(raw)
}

// Keys applies Key to every element of raw.
func (n Namespacer) Keys(raw ...any) []string {
	out := make([]string, len(raw))
	for i, k := range raw {
		out[i] = n.Key(k)
	}
	return out
}

// globEscaper escapes the metacharacters of the store's glob syntax
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// Pattern returns the namespaced glob pattern used by KEYS and SCAN MATCH.
// Glob characters in the prefix are escaped so they match literally, the
// caller's part keeps its glob meaning. The match stays inside the tenant
// namespace for every prefix.
func (n Namespacer) Pattern(raw any) string {
	return globEscaper.Replace(n.prefix) + Separator + String(raw)
}

// Strip removes the tenant prefix from a store key. The second return value
// is false if key does not belong to this namespace.
func (n Namespacer) Strip(key string) (string, bool) {
	return strings.CutPrefix(key, n.prefix+Separator)
}

// String returns the canonical string form of a raw key.
func String(raw any) string {
	switch k := raw.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	case *bytes.Buffer:
		if k == nil {
			return ""
		}
		return k.String()
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprint(raw)
	}
}
