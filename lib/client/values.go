package client

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/redis/go-redis/v9"
)

// EncodeValue encodes an application value with the client codec. Use it
// for values passed to pipelines and transactions.
func (c *Client) EncodeValue(v any) ([]byte, error) {
	data, err := c.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T with %s codec: %w", v, c.codec.Name(), err)
	}
	return data, nil
}

// DecodeValue decodes a value read from the store. Malformed data is
// reported as a DecodeError.
func (c *Client) DecodeValue(data []byte) (any, error) {
	v, err := c.codec.Decode(data)
	if err != nil {
		return nil, store.WrapError(store.RetCDecode, err, "failed to decode value with %s codec", c.codec.Name())
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// encodeAll encodes every value into an argument list
func (c *Client) encodeAll(values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		data, err := c.EncodeValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

// decodeString decodes a single reply. redis.Nil is the absent value, not
// an error.
func (c *Client) decodeString(s string, err error) (any, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.DecodeValue([]byte(s))
}

// decodeStrings decodes every element of a reply. One corrupt element fails
// the whole call.
func (c *Client) decodeStrings(ss []string) ([]any, error) {
	out := make([]any, len(ss))
	for i, s := range ss {
		v, err := c.DecodeValue([]byte(s))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// decodeReply decodes a raw reply element; nil stays nil
func (c *Client) decodeReply(v interface{}) (any, error) {
	switch r := v.(type) {
	case nil:
		return nil, nil
	case string:
		return c.DecodeValue([]byte(r))
	case []byte:
		return c.DecodeValue(r)
	default:
		return nil, fmt.Errorf("unexpected reply type %T", v)
	}
}

// decodeReplies decodes every element of a raw reply (MGET, HMGET)
func (c *Client) decodeReplies(vs []interface{}) ([]any, error) {
	out := make([]any, len(vs))
	for i, v := range vs {
		d, err := c.decodeReply(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
