package codec

import (
	"encoding/json"
)

// NewJSONCodec creates a new codec using json encoding.
// Decoded values follow encoding/json rules for interface{} targets: numbers
// come back as float64, objects as map[string]any and arrays as []any.
func NewJSONCodec() ICodec {
	return &jsonCodecImpl{}
}

// jsonCodecImpl implements the ICodec interface using json encoding
type jsonCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (j jsonCodecImpl) Name() string {
	return "json"
}

func (j jsonCodecImpl) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

func (j jsonCodecImpl) Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
