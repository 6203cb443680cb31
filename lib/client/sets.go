package client

import (
	"context"

	"github.com/ValentinKolb/credis/lib/store"
)

// SAdd adds members to the set at key and returns how many were new.
// Members are compared by their encoding, so use a codec with deterministic
// output for composite members.
func (c *Client) SAdd(ctx context.Context, key any, members ...any) (int64, error) {
	conn, err := c.route(ctx, store.CmdSAdd)
	if err != nil {
		return 0, err
	}
	args, err := c.encodeAll(members)
	if err != nil {
		return 0, err
	}
	return conn.SAdd(ctx, c.ns.Key(key), args...).Result()
}

// SRem removes members and returns how many existed.
func (c *Client) SRem(ctx context.Context, key any, members ...any) (int64, error) {
	conn, err := c.route(ctx, store.CmdSRem)
	if err != nil {
		return 0, err
	}
	args, err := c.encodeAll(members)
	if err != nil {
		return 0, err
	}
	return conn.SRem(ctx, c.ns.Key(key), args...).Result()
}

// SMembers returns all decoded members of the set at key.
func (c *Client) SMembers(ctx context.Context, key any) ([]any, error) {
	conn, err := c.route(ctx, store.CmdSMembers)
	if err != nil {
		return nil, err
	}
	res, err := conn.SMembers(ctx, c.ns.Key(key)).Result()
	if err != nil {
		return nil, err
	}
	return c.decodeStrings(res)
}

// SIsMember reports whether member is in the set at key.
func (c *Client) SIsMember(ctx context.Context, key, member any) (bool, error) {
	conn, err := c.route(ctx, store.CmdSIsMember)
	if err != nil {
		return false, err
	}
	data, err := c.EncodeValue(member)
	if err != nil {
		return false, err
	}
	return conn.SIsMember(ctx, c.ns.Key(key), data).Result()
}

// SMove moves member from the set at src to the set at dst.
func (c *Client) SMove(ctx context.Context, src, dst, member any) (bool, error) {
	conn, err := c.route(ctx, store.CmdSMove)
	if err != nil {
		return false, err
	}
	data, err := c.EncodeValue(member)
	if err != nil {
		return false, err
	}
	return conn.SMove(ctx, c.ns.Key(src), c.ns.Key(dst), data).Result()
}

// SCard returns the number of members of the set at key.
func (c *Client) SCard(ctx context.Context, key any) (int64, error) {
	conn, err := c.route(ctx, store.CmdSCard)
	if err != nil {
		return 0, err
	}
	return conn.SCard(ctx, c.ns.Key(key)).Result()
}

// SDiff returns the members of the first set that are in none of the others.
func (c *Client) SDiff(ctx context.Context, keys ...any) ([]any, error) {
	conn, err := c.route(ctx, store.CmdSDiff)
	if err != nil {
		return nil, err
	}
	res, err := conn.SDiff(ctx, c.ns.Keys(keys...)...).Result()
	if err != nil {
		return nil, err
	}
	return c.decodeStrings(res)
}

// SInter returns the members present in all sets.
func (c *Client) SInter(ctx context.Context, keys ...any) ([]any, error) {
	conn, err := c.route(ctx, store.CmdSInter)
	if err != nil {
		return nil, err
	}
	res, err := conn.SInter(ctx, c.ns.Keys(keys...)...).Result()
	if err != nil {
		return nil, err
	}
	return c.decodeStrings(res)
}

// SUnion returns the members present in any set.
func (c *Client) SUnion(ctx context.Context, keys ...any) ([]any, error) {
	conn, err := c.route(ctx, store.CmdSUnion)
	if err != nil {
		return nil, err
	}
	res, err := conn.SUnion(ctx, c.ns.Keys(keys...)...).Result()
	if err != nil {
		return nil, err
	}
	return c.decodeStrings(res)
}

// SPop removes and returns random member(s) of the set at key.
func (c *Client) SPop(ctx context.Context, key any, opts PopOptions) (Popped, error) {
	return c.pop(ctx, store.CmdSPop, "spop", key, opts)
}

// SRandMember returns random member(s) of the set at key without removing
// them. A negative count allows repetitions.
func (c *Client) SRandMember(ctx context.Context, key any, opts PopOptions) (Popped, error) {
	return c.pop(ctx, store.CmdSRandMember, "srandmember", key, opts)
}

// SScan returns one page of decoded members and the next cursor.
func (c *Client) SScan(ctx context.Context, key any, cursor uint64, opts ScanOptions) ([]any, uint64, error) {
	conn, err := c.route(ctx, store.CmdSScan)
	if err != nil {
		return nil, 0, err
	}
	return c.sscan(ctx, conn, key, cursor, opts)
}

// SScanIter iterates over all members of the set at key in one scan pass.
func (c *Client) SScanIter(ctx context.Context, key any, opts ScanOptions) *Iter[any] {
	return newIter(ctx, func(ctx context.Context, cursor uint64) ([]any, uint64, error) {
		conn, err := c.route(ctx, store.CmdSScanIter)
		if err != nil {
			return nil, 0, err
		}
		return c.sscan(ctx, conn, key, cursor, opts)
	})
}

func (c *Client) sscan(ctx context.Context, conn store.Conn, key any, cursor uint64, opts ScanOptions) ([]any, uint64, error) {
	res, next, err := conn.SScan(ctx, c.ns.Key(key), cursor, opts.Match, opts.Count).Result()
	if err != nil {
		return nil, 0, err
	}
	page, err := c.decodeStrings(res)
	if err != nil {
		return nil, 0, err
	}
	return page, next, nil
}
