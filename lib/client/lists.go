package client

import (
	"context"

	"github.com/ValentinKolb/credis/lib/store"
)

// LPush prepends values to the list at key and returns the new length.
func (c *Client) LPush(ctx context.Context, key any, values ...any) (int64, error) {
	conn, err := c.route(ctx, store.CmdLPush)
	if err != nil {
		return 0, err
	}
	args, err := c.encodeAll(values)
	if err != nil {
		return 0, err
	}
	return conn.LPush(ctx, c.ns.Key(key), args...).Result()
}

// RPush appends values to the list at key and returns the new length.
func (c *Client) RPush(ctx context.Context, key any, values ...any) (int64, error) {
	conn, err := c.route(ctx, store.CmdRPush)
	if err != nil {
		return 0, err
	}
	args, err := c.encodeAll(values)
	if err != nil {
		return 0, err
	}
	return conn.RPush(ctx, c.ns.Key(key), args...).Result()
}

// LPop removes and returns the first element(s) of the list at key.
func (c *Client) LPop(ctx context.Context, key any, opts PopOptions) (Popped, error) {
	return c.pop(ctx, store.CmdLPop, "lpop", key, opts)
}

// RPop removes and returns the last element(s) of the list at key.
func (c *Client) RPop(ctx context.Context, key any, opts PopOptions) (Popped, error) {
	return c.pop(ctx, store.CmdRPop, "rpop", key, opts)
}

// LRange returns the elements between start and stop (inclusive, negative
// indices count from the end).
func (c *Client) LRange(ctx context.Context, key any, start, stop int64) ([]any, error) {
	conn, err := c.route(ctx, store.CmdLRange)
	if err != nil {
		return nil, err
	}
	res, err := conn.LRange(ctx, c.ns.Key(key), start, stop).Result()
	if err != nil {
		return nil, err
	}
	return c.decodeStrings(res)
}

// LLen returns the length of the list at key.
func (c *Client) LLen(ctx context.Context, key any) (int64, error) {
	conn, err := c.route(ctx, store.CmdLLen)
	if err != nil {
		return 0, err
	}
	return conn.LLen(ctx, c.ns.Key(key)).Result()
}

// LIndex returns the element at index or nil if it is out of range.
func (c *Client) LIndex(ctx context.Context, key any, index int64) (any, error) {
	conn, err := c.route(ctx, store.CmdLIndex)
	if err != nil {
		return nil, err
	}
	return c.decodeString(conn.LIndex(ctx, c.ns.Key(key), index).Result())
}

// LSet replaces the element at index.
func (c *Client) LSet(ctx context.Context, key any, index int64, value any) error {
	conn, err := c.route(ctx, store.CmdLSet)
	if err != nil {
		return err
	}
	data, err := c.EncodeValue(value)
	if err != nil {
		return err
	}
	return conn.LSet(ctx, c.ns.Key(key), index, data).Err()
}

// LRem removes count occurrences of value (see LREM for the sign of count)
// and returns how many were removed.
func (c *Client) LRem(ctx context.Context, key any, count int64, value any) (int64, error) {
	conn, err := c.route(ctx, store.CmdLRem)
	if err != nil {
		return 0, err
	}
	data, err := c.EncodeValue(value)
	if err != nil {
		return 0, err
	}
	return conn.LRem(ctx, c.ns.Key(key), count, data).Result()
}

// LTrim trims the list at key to the range between start and stop.
func (c *Client) LTrim(ctx context.Context, key any, start, stop int64) error {
	conn, err := c.route(ctx, store.CmdLTrim)
	if err != nil {
		return err
	}
	return conn.LTrim(ctx, c.ns.Key(key), start, stop).Err()
}

// pop issues a raw pop command so the reply shape decides the result variant
func (c *Client) pop(ctx context.Context, cmd store.Command, name string, key any, opts PopOptions) (Popped, error) {
	conn, err := c.route(ctx, cmd)
	if err != nil {
		return Popped{}, err
	}
	args := opts.args([]any{name, c.ns.Key(key)})
	return c.decodePopped(conn.Do(ctx, args...).Result())
}
