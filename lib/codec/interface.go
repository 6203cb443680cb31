package codec

import (
	"fmt"
	"sort"
)

// ICodec is the interface for all value codecs.
// Implementations turn arbitrary application values into the binary strings
// stored in Redis and back.
type ICodec interface {
	// Name returns the name under which the codec is registered (e.g. "gob").
	Name() string
	// Encode serializes a value into a byte array.
	// It returns an error if the value (or a value nested in it) is not
	// supported by the codec.
	Encode(value any) ([]byte, error)
	// Decode deserializes a byte array produced by Encode.
	// It returns an error if the data is malformed or was produced by an
	// incompatible codec.
	Decode(data []byte) (any, error)
}

// factories maps codec names to their constructors
var factories = map[string]func() ICodec{
	"gob":    NewGOBCodec,
	"json":   NewJSONCodec,
	"binary": NewBinaryCodec,
}

// New creates a codec by name. Known names are returned by Names.
func New(name string) (ICodec, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("invalid codec %s (must be one of %v)", name, Names())
	}
	return f(), nil
}

// Names returns the names of all available codecs in lexical order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
