package codec

import (
	"bytes"
	"encoding/gob"
	"time"
)

func init() {
	// Composite types commonly stored behind an interface. Basic types and
	// their slices are known to gob already.
	Register(map[string]any{})
	Register([]any{})
	Register(map[string]string{})
	Register(map[string]int{})
	Register(map[string]int64{})
	Register(map[string]float64{})
	Register(map[string]bool{})
	Register(time.Time{})
}

// Register records a concrete type so that values of it can be stored with
// the gob codec. It must be called for every application defined type
// before it is encoded or decoded (usually from an init function).
func Register(value any) {
	gob.Register(value)
}

// NewGOBCodec creates a new codec using Go's binary gob format.
// It preserves the concrete Go type of every registered value.
func NewGOBCodec() ICodec {
	return &gobCodecImpl{}
}

// gobCodecImpl implements the ICodec interface using gob encoding
type gobCodecImpl struct {
}

// envelope carries the value through an interface typed field so that gob
// records the concrete type name next to the data
type envelope struct {
	V any
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (g gobCodecImpl) Name() string {
	return "gob"
}

func (g gobCodecImpl) Encode(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(envelope{V: value}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobCodecImpl) Decode(data []byte) (any, error) {
	var env envelope
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	return env.V, nil
}
