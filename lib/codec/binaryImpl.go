package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// NewBinaryCodec creates a new codec using a compact tagged binary format.
// Supported are nil, bool, int, int64, uint64, float64, string, []byte and
// arbitrarily nested []any and map[string]any of those. Map keys are written
// in sorted order so equal values always produce equal bytes.
func NewBinaryCodec() ICodec {
	return &binaryCodecImpl{}
}

// binaryCodecImpl implements ICodec using a custom binary format
type binaryCodecImpl struct {
}

// binaryVersion is written as the first byte of every encoded value
const binaryVersion byte = 1

// Type tags preceding every encoded element
const (
	tagNil byte = iota
	tagFalse
	tagTrue
	tagInt
	tagInt64
	tagUint64
	tagFloat64
	tagString
	tagBytes
	tagList
	tagMap
)

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (b binaryCodecImpl) Name() string {
	return "binary"
}

func (b binaryCodecImpl) Encode(value any) ([]byte, error) {
	size, err := b.sizeBytes(value)
	if err != nil {
		return nil, err
	}
	result := make([]byte, 1+size)
	result[0] = binaryVersion
	pos := b.write(result, 1, value)
	return result[:pos], nil
}

func (b binaryCodecImpl) Decode(data []byte) (any, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("data too short")
	}
	if data[0] != binaryVersion {
		return nil, fmt.Errorf("unsupported binary format version %d", data[0])
	}
	value, pos, err := b.read(data, 1)
	if err != nil {
		return nil, err
	}
	if pos != len(data) {
		return nil, fmt.Errorf("unexpected %d trailing bytes", len(data)-pos)
	}
	return value, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the number of bytes needed to encode value
// (without the version byte) and rejects unsupported types.
func (b binaryCodecImpl) sizeBytes(value any) (int, error) {
	switch v := value.(type) {
	case nil, bool:
		return 1, nil
	case int, int64, uint64, float64:
		return 1 + 8, nil
	case string:
		return 1 + 4 + len(v), nil
	case []byte:
		return 1 + 4 + len(v), nil
	case []any:
		size := 1 + 4
		for _, e := range v {
			n, err := b.sizeBytes(e)
			if err != nil {
				return 0, err
			}
			size += n
		}
		return size, nil
	case map[string]any:
		size := 1 + 4
		for k, e := range v {
			n, err := b.sizeBytes(e)
			if err != nil {
				return 0, err
			}
			size += 4 + len(k) + n
		}
		return size, nil
	default:
		return 0, fmt.Errorf("binary codec: unsupported type %T", value)
	}
}

// write encodes value into buf at pos and returns the new position.
// buf must be large enough (see sizeBytes).
func (b binaryCodecImpl) write(buf []byte, pos int, value any) int {
	switch v := value.(type) {
	case nil:
		buf[pos] = tagNil
		return pos + 1
	case bool:
		if v {
			buf[pos] = tagTrue
		} else {
			buf[pos] = tagFalse
		}
		return pos + 1
	case int:
		buf[pos] = tagInt
		binary.BigEndian.PutUint64(buf[pos+1:pos+9], uint64(v))
		return pos + 9
	case int64:
		buf[pos] = tagInt64
		binary.BigEndian.PutUint64(buf[pos+1:pos+9], uint64(v))
		return pos + 9
	case uint64:
		buf[pos] = tagUint64
		binary.BigEndian.PutUint64(buf[pos+1:pos+9], v)
		return pos + 9
	case float64:
		buf[pos] = tagFloat64
		binary.BigEndian.PutUint64(buf[pos+1:pos+9], math.Float64bits(v))
		return pos + 9
	case string:
		buf[pos] = tagString
		return b.writeBytes(buf, pos+1, []byte(v))
	case []byte:
		buf[pos] = tagBytes
		return b.writeBytes(buf, pos+1, v)
	case []any:
		buf[pos] = tagList
		binary.BigEndian.PutUint32(buf[pos+1:pos+5], uint32(len(v)))
		pos += 5
		for _, e := range v {
			pos = b.write(buf, pos, e)
		}
		return pos
	case map[string]any:
		buf[pos] = tagMap
		binary.BigEndian.PutUint32(buf[pos+1:pos+5], uint32(len(v)))
		pos += 5
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pos = b.writeBytes(buf, pos, []byte(k))
			pos = b.write(buf, pos, v[k])
		}
		return pos
	}
	// unreachable, sizeBytes rejects all other types
	return pos
}

// writeBytes writes a length prefixed byte slice
func (b binaryCodecImpl) writeBytes(buf []byte, pos int, data []byte) int {
	binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(len(data)))
	pos += 4
	copy(buf[pos:pos+len(data)], data)
	return pos + len(data)
}

// read decodes one element starting at pos and returns it together with
// the position of the next element
func (b binaryCodecImpl) read(data []byte, pos int) (any, int, error) {
	if pos >= len(data) {
		return nil, 0, fmt.Errorf("data too short for type tag")
	}
	tag := data[pos]
	pos++

	switch tag {
	case tagNil:
		return nil, pos, nil
	case tagFalse:
		return false, pos, nil
	case tagTrue:
		return true, pos, nil
	case tagInt, tagInt64, tagUint64, tagFloat64:
		if pos+8 > len(data) {
			return nil, 0, fmt.Errorf("data too short for number")
		}
		raw := binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
		switch tag {
		case tagInt:
			return int(int64(raw)), pos, nil
		case tagInt64:
			return int64(raw), pos, nil
		case tagUint64:
			return raw, pos, nil
		default:
			return math.Float64frombits(raw), pos, nil
		}
	case tagString:
		raw, next, err := b.readBytes(data, pos)
		if err != nil {
			return nil, 0, err
		}
		return string(raw), next, nil
	case tagBytes:
		raw, next, err := b.readBytes(data, pos)
		if err != nil {
			return nil, 0, err
		}
		cp := make([]byte, len(raw))
		copy(cp, raw)
		return cp, next, nil
	case tagList:
		n, next, err := b.readLen(data, pos)
		if err != nil {
			return nil, 0, err
		}
		pos = next
		list := make([]any, 0, n)
		for i := 0; i < n; i++ {
			var e any
			e, pos, err = b.read(data, pos)
			if err != nil {
				return nil, 0, err
			}
			list = append(list, e)
		}
		return list, pos, nil
	case tagMap:
		n, next, err := b.readLen(data, pos)
		if err != nil {
			return nil, 0, err
		}
		pos = next
		m := make(map[string]any, n)
		for i := 0; i < n; i++ {
			var k []byte
			k, pos, err = b.readBytes(data, pos)
			if err != nil {
				return nil, 0, err
			}
			var e any
			e, pos, err = b.read(data, pos)
			if err != nil {
				return nil, 0, err
			}
			m[string(k)] = e
		}
		return m, pos, nil
	default:
		return nil, 0, fmt.Errorf("unknown type tag %d", tag)
	}
}

// readLen reads a 4 byte length and checks it against the remaining data
func (b binaryCodecImpl) readLen(data []byte, pos int) (int, int, error) {
	if pos+4 > len(data) {
		return 0, 0, fmt.Errorf("data too short for length")
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	// every element takes at least one byte
	if n > len(data)-pos {
		return 0, 0, fmt.Errorf("data too short for %d elements", n)
	}
	return n, pos, nil
}

// readBytes reads a length prefixed byte slice (without copying)
func (b binaryCodecImpl) readBytes(data []byte, pos int) ([]byte, int, error) {
	n, pos, err := b.readLen(data, pos)
	if err != nil {
		return nil, 0, err
	}
	return data[pos : pos+n], pos + n, nil
}
