// Package codec provides the value serialization used by the credis client.
// Every value written to Redis passes through an ICodec on the way in and is
// restored by the same codec on the way out, so the store only ever sees
// opaque binary strings.
//
// Key Components:
//
//   - ICodec: Core interface that all codec implementations must satisfy.
//
//   - gobCodecImpl: Uses Go's gob encoding wrapped in an envelope struct so the
//     concrete type travels with the data. This is the default codec. Custom
//     types must be made known with Register before use. Maps are encoded in
//     random order, so gob encoded maps should not be used as set members.
//
//   - jsonCodecImpl: Uses JSON encoding for interoperability with clients in
//     other languages. Numbers are restored as float64, objects as
//     map[string]any and arrays as []any.
//
//   - binaryCodecImpl: Custom tagged binary format for the common scalar and
//     container types. Smallest payloads and deterministic output.
//
// Compatibility:
//
//	Data written with one codec can only be read with the same codec. A
//	mismatch is reported as a decode error, never as a silently wrong value.
//
// Thread Safety:
//
//	All codec implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	c, err := codec.New("binary")
//	data, err := c.Encode(map[string]any{"name": "alice"})
//	value, err := c.Decode(data)
package codec
