package keys

import (
	"bytes"
	"path"
	"strings"
	"testing"
)

type userID int

func (u userID) String() string {
	return "user-" + strings.Repeat("x", int(u))
}

// TestKey tests the conversion of the supported raw key representations
func TestKey(t *testing.T) {
	ns := New("app")

	testCases := []struct {
		name     string
		raw      any
		expected string
	}{
		{name: "String", raw: "user:1", expected: "app:user:1"},
		{name: "Bytes", raw: []byte("user:1"), expected: "app:user:1"},
		{name: "Buffer", raw: bytes.NewBufferString("user:1"), expected: "app:user:1"},
		{name: "Int", raw: 42, expected: "app:42"},
		{name: "Float", raw: 1.5, expected: "app:1.5"},
		{name: "Bool", raw: true, expected: "app:true"},
		{name: "Stringer", raw: userID(2), expected: "app:user-xx"},
		{name: "Empty", raw: "", expected: "app:"},
		{name: "Unicode", raw: []byte("schlüssel"), expected: "app:schlüssel"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ns.Key(tc.raw); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

// TestKeyPrefixAndUniqueness tests that keys always start with the prefix and
// that different string forms never collide
func TestKeyPrefixAndUniqueness(t *testing.T) {
	ns := New("tenant")
	raws := []any{"a", "b", "a:b", []byte("c"), 1, 2, 2.5, "", " ", "tenant:a"}

	seen := make(map[string]any)
	for _, raw := range raws {
		key := ns.Key(raw)
		if !strings.HasPrefix(key, "tenant:") {
			t.Errorf("Key %q for %v lacks prefix", key, raw)
		}
		if prev, ok := seen[key]; ok {
			t.Errorf("Keys for %v and %v collide: %q", prev, raw, key)
		}
		seen[key] = raw
	}
}

// TestCollidingStringForms documents that keys are compared by string form
func TestCollidingStringForms(t *testing.T) {
	ns := New("app")
	if ns.Key(1) != ns.Key("1") {
		t.Errorf("Expected int 1 and string \"1\" to address the same key")
	}
	if ns.Key([]byte("k")) != ns.Key("k") {
		t.Errorf("Expected bytes and string to address the same key")
	}
}

// TestPatternAndStrip tests pattern namespacing and the reverse mapping
func TestPatternAndStrip(t *testing.T) {
	ns := New("app")

	if got := ns.Pattern("user:*"); got != "app:user:*" {
		t.Errorf("Expected app:user:*, got %q", got)
	}

	raw, ok := ns.Strip("app:user:1")
	if !ok || raw != "user:1" {
		t.Errorf("Expected (user:1, true), got (%q, %v)", raw, ok)
	}

	if _, ok := ns.Strip("other:user:1"); ok {
		t.Errorf("Expected foreign key to be rejected")
	}

	keys := ns.Keys("a", []byte("b"), 3)
	expected := []string{"app:a", "app:b", "app:3"}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Errorf("Keys[%d]: expected %q, got %q", i, expected[i], keys[i])
		}
	}
	if ns.Prefix() != "app" {
		t.Errorf("Expected prefix app, got %q", ns.Prefix())
	}
}

// TestPatternEscapesPrefix tests that glob characters in the prefix match
// only themselves, so a tenant can never enumerate another tenant's keys
func TestPatternEscapesPrefix(t *testing.T) {
	testCases := []struct {
		prefix  string
		own     string
		foreign []string
	}{
		{prefix: "a*", own: "a*:secret", foreign: []string{"ab:secret", "a:secret", "abc:x"}},
		{prefix: "a?", own: "a?:secret", foreign: []string{"ab:secret"}},
		{prefix: "[ab]", own: "[ab]:secret", foreign: []string{"a:secret", "b:secret"}},
		{prefix: `a\b`, own: `a\b:secret`, foreign: []string{"ab:secret"}},
		{prefix: "plain", own: "plain:secret", foreign: []string{"plainx:secret"}},
	}

	for _, tc := range testCases {
		t.Run(tc.prefix, func(t *testing.T) {
			pattern := New(tc.prefix).Pattern("*")
			// path.Match follows the same glob and escape rules as the store
			if ok, err := path.Match(pattern, tc.own); err != nil || !ok {
				t.Errorf("Pattern %q should match own key %q (err %v)", pattern, tc.own, err)
			}
			for _, key := range tc.foreign {
				if ok, _ := path.Match(pattern, key); ok {
					t.Errorf("Pattern %q matches foreign key %q", pattern, key)
				}
			}
		})
	}

	// the caller's part keeps its glob meaning
	if got := New("a*").Pattern("user:?"); got != `a\*:user:?` {
		t.Errorf("Expected a\\*:user:?, got %q", got)
	}
}
