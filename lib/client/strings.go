package client

import (
	"context"
	"errors"
	"time"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/redis/go-redis/v9"
)

// SetMode restricts when Set writes.
type SetMode uint8

const (
	SetAlways SetMode = iota // write unconditionally
	SetNX                    // only if the key does not exist
	SetXX                    // only if the key exists
)

// SetOptions holds the optional arguments of Set and SetGet. TTL and
// ExpireAt are mutually exclusive with each other and with KeepTTL.
type SetOptions struct {
	Mode     SetMode
	TTL      time.Duration // relative expiry, 0 means none
	ExpireAt time.Time     // absolute expiry, zero means none
	KeepTTL  bool          // retain the current expiry of the key
}

func (o SetOptions) args(get bool) redis.SetArgs {
	a := redis.SetArgs{
		TTL:      o.TTL,
		ExpireAt: o.ExpireAt,
		KeepTTL:  o.KeepTTL,
		Get:      get,
	}
	switch o.Mode {
	case SetNX:
		a.Mode = "NX"
	case SetXX:
		a.Mode = "XX"
	}
	return a
}

// Set stores value under key. It reports false if the write was skipped
// because of the NX/XX mode.
func (c *Client) Set(ctx context.Context, key, value any, opts SetOptions) (bool, error) {
	conn, err := c.route(ctx, store.CmdSet)
	if err != nil {
		return false, err
	}
	data, err := c.EncodeValue(value)
	if err != nil {
		return false, err
	}
	err = conn.SetArgs(ctx, c.ns.Key(key), data, opts.args(false)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return err == nil, err
}

// SetGet stores value under key and returns the previous value (nil if
// there was none).
func (c *Client) SetGet(ctx context.Context, key, value any, opts SetOptions) (any, error) {
	conn, err := c.route(ctx, store.CmdSet)
	if err != nil {
		return nil, err
	}
	data, err := c.EncodeValue(value)
	if err != nil {
		return nil, err
	}
	return c.decodeString(conn.SetArgs(ctx, c.ns.Key(key), data, opts.args(true)).Result())
}

// Get returns the value of key or nil if it does not exist.
func (c *Client) Get(ctx context.Context, key any) (any, error) {
	conn, err := c.route(ctx, store.CmdGet)
	if err != nil {
		return nil, err
	}
	return c.decodeString(conn.Get(ctx, c.ns.Key(key)).Result())
}

// Incr increments the integer stored at key by amount. Counters are stored
// as plain store integers, not through the codec.
func (c *Client) Incr(ctx context.Context, key any, amount int64) (int64, error) {
	conn, err := c.route(ctx, store.CmdIncr)
	if err != nil {
		return 0, err
	}
	return conn.IncrBy(ctx, c.ns.Key(key), amount).Result()
}

// Decr decrements the integer stored at key by amount.
func (c *Client) Decr(ctx context.Context, key any, amount int64) (int64, error) {
	conn, err := c.route(ctx, store.CmdDecr)
	if err != nil {
		return 0, err
	}
	return conn.DecrBy(ctx, c.ns.Key(key), amount).Result()
}

// Append appends raw text to the string at key and returns the new length.
// The bytes are stored verbatim.
func (c *Client) Append(ctx context.Context, key any, value string) (int64, error) {
	conn, err := c.route(ctx, store.CmdAppend)
	if err != nil {
		return 0, err
	}
	return conn.Append(ctx, c.ns.Key(key), value).Result()
}

// GetRange returns the raw substring of the string at key.
func (c *Client) GetRange(ctx context.Context, key any, start, end int64) (string, error) {
	conn, err := c.route(ctx, store.CmdGetRange)
	if err != nil {
		return "", err
	}
	return conn.GetRange(ctx, c.ns.Key(key), start, end).Result()
}

// SetRange overwrites part of the string at key with raw text and returns
// the new length.
func (c *Client) SetRange(ctx context.Context, key any, offset int64, value string) (int64, error) {
	conn, err := c.route(ctx, store.CmdSetRange)
	if err != nil {
		return 0, err
	}
	return conn.SetRange(ctx, c.ns.Key(key), offset, value).Result()
}

// StrLen returns the length of the stored (encoded) string at key.
func (c *Client) StrLen(ctx context.Context, key any) (int64, error) {
	conn, err := c.route(ctx, store.CmdStrLen)
	if err != nil {
		return 0, err
	}
	return conn.StrLen(ctx, c.ns.Key(key)).Result()
}

// MGet returns the values of all keys in order, nil for missing keys.
func (c *Client) MGet(ctx context.Context, keys ...any) ([]any, error) {
	conn, err := c.route(ctx, store.CmdMGet)
	if err != nil {
		return nil, err
	}
	res, err := conn.MGet(ctx, c.ns.Keys(keys...)...).Result()
	if err != nil {
		return nil, err
	}
	return c.decodeReplies(res)
}

// MSet stores all key/value pairs at once.
func (c *Client) MSet(ctx context.Context, values map[string]any) error {
	conn, err := c.route(ctx, store.CmdMSet)
	if err != nil {
		return err
	}
	args := make([]any, 0, 2*len(values))
	for k, v := range values {
		data, err := c.EncodeValue(v)
		if err != nil {
			return err
		}
		args = append(args, c.ns.Key(k), data)
	}
	return conn.MSet(ctx, args...).Err()
}
