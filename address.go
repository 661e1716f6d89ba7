package jalur

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Address is the ordered path of segments identifying one remote operation,
// e.g. Address{"users", "get"}. Addresses are immutable: descent produces a
// new value and never mutates the receiver. The client has no static
// knowledge of which addresses the remote service recognizes; an unknown
// address fails only when actually invoked.
type Address []string

// Child returns a new address extended by one segment.
func (a Address) Child(segment string) Address {
	child := make(Address, len(a)+1)
	copy(child, a)
	child[len(a)] = segment
	return child
}

// Walk returns a new address extended by the given segments.
func (a Address) Walk(segments ...string) Address {
	child := make(Address, len(a)+len(segments))
	copy(child, a)
	copy(child[len(a):], segments)
	return child
}

// Equal reports segment-wise equality.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the address in dotted form for logs and metric labels.
func (a Address) String() string {
	if len(a) == 0 {
		return "(root)"
	}
	return strings.Join(a, ".")
}

// KeyNamespace is the fixed first element of every cache key produced by
// this client. It keeps jalur keys from colliding with other users of a
// shared store.
const KeyNamespace = "jalur"

// Key is a hierarchical cache key: the namespace tag, then the address
// segments, then the call's input as a single trailing element when the
// input is not absent. Equality and prefix matching are structural.
type Key []any

// KeyFor builds the cache key for an address and input. A nil input is
// absent: it contributes no trailing element, so the key differs from every
// key built with a defined input.
func KeyFor(addr Address, input any) Key {
	k := make(Key, 0, len(addr)+2)
	k = append(k, KeyNamespace)
	for _, seg := range addr {
		k = append(k, seg)
	}
	if input != nil {
		k = append(k, input)
	}
	return k
}

// Equal reports structural equality with another key.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if canonicalElem(k[i]) != canonicalElem(other[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether the key begins with every element of prefix.
// Stores with prefix-based invalidation match entries through this.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if canonicalElem(k[i]) != canonicalElem(prefix[i]) {
			return false
		}
	}
	return true
}

// String renders a deterministic canonical form, usable as a flat map key by
// stores that do not keep structured keys.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, e := range k {
		parts[i] = canonicalElem(e)
	}
	return strings.Join(parts, "/")
}

// canonicalElem encodes one key element deterministically. JSON encoding
// gives structurally equal inputs (maps, slices, structs) the same form;
// values that cannot be marshaled fall back to their fmt rendering.
func canonicalElem(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
