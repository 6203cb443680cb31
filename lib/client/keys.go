package client

import (
	"context"
	"time"

	"github.com/ValentinKolb/credis/lib/store"
)

// ScanOptions holds the optional arguments of the scan family.
//
// For Scan and ScanIter Match is namespaced like a key; an empty Match
// enumerates the whole tenant namespace. For HScan, SScan and ZScan it is
// passed through verbatim. Type only applies to Scan and ScanIter.
type ScanOptions struct {
	Match string
	Count int64
	Type  string
}

// Delete removes keys and returns how many existed.
func (c *Client) Delete(ctx context.Context, keys ...any) (int64, error) {
	conn, err := c.route(ctx, store.CmdDelete)
	if err != nil {
		return 0, err
	}
	return conn.Del(ctx, c.ns.Keys(keys...)...).Result()
}

// DeleteRaw removes store keys as given, without namespacing. It is meant
// for keys returned by Keys and Scan.
func (c *Client) DeleteRaw(ctx context.Context, keys ...string) (int64, error) {
	conn, err := c.route(ctx, store.CmdDeleteRaw)
	if err != nil {
		return 0, err
	}
	return conn.Del(ctx, keys...).Result()
}

// Exists returns how many of keys exist.
func (c *Client) Exists(ctx context.Context, keys ...any) (int64, error) {
	conn, err := c.route(ctx, store.CmdExists)
	if err != nil {
		return 0, err
	}
	return conn.Exists(ctx, c.ns.Keys(keys...)...).Result()
}

// Keys returns all store keys of the namespace matching pattern. The
// returned keys carry the prefix; use Namespace().Strip to remove it.
func (c *Client) Keys(ctx context.Context, pattern any) ([]string, error) {
	conn, err := c.route(ctx, store.CmdKeys)
	if err != nil {
		return nil, err
	}
	return conn.Keys(ctx, c.ns.Pattern(pattern)).Result()
}

// Scan returns one page of namespaced store keys and the cursor of the next
// page. A returned cursor of 0 ends the pass.
func (c *Client) Scan(ctx context.Context, cursor uint64, opts ScanOptions) ([]string, uint64, error) {
	conn, err := c.route(ctx, store.CmdScan)
	if err != nil {
		return nil, 0, err
	}
	match := c.scanPattern(opts.Match)
	if opts.Type != "" {
		return conn.ScanType(ctx, cursor, match, opts.Count, opts.Type).Result()
	}
	return conn.Scan(ctx, cursor, match, opts.Count).Result()
}

// ScanIter iterates over all namespaced store keys matching opts in one
// full scan pass.
func (c *Client) ScanIter(ctx context.Context, opts ScanOptions) *Iter[string] {
	return newIter(ctx, func(ctx context.Context, cursor uint64) ([]string, uint64, error) {
		conn, err := c.route(ctx, store.CmdScanIter)
		if err != nil {
			return nil, 0, err
		}
		match := c.scanPattern(opts.Match)
		if opts.Type != "" {
			return conn.ScanType(ctx, cursor, match, opts.Count, opts.Type).Result()
		}
		return conn.Scan(ctx, cursor, match, opts.Count).Result()
	})
}

// Expire sets a relative expiry on key. It reports false if key does not
// exist.
func (c *Client) Expire(ctx context.Context, key any, ttl time.Duration) (bool, error) {
	conn, err := c.route(ctx, store.CmdExpire)
	if err != nil {
		return false, err
	}
	return conn.Expire(ctx, c.ns.Key(key), ttl).Result()
}

// ExpireAt sets an absolute expiry on key.
func (c *Client) ExpireAt(ctx context.Context, key any, at time.Time) (bool, error) {
	conn, err := c.route(ctx, store.CmdExpireAt)
	if err != nil {
		return false, err
	}
	return conn.ExpireAt(ctx, c.ns.Key(key), at).Result()
}

// TTL returns the remaining time to live of key. As in go-redis, -1 means
// the key has no expiry and -2 that it does not exist.
func (c *Client) TTL(ctx context.Context, key any) (time.Duration, error) {
	conn, err := c.route(ctx, store.CmdTTL)
	if err != nil {
		return 0, err
	}
	return conn.TTL(ctx, c.ns.Key(key)).Result()
}

// PTTL is TTL with millisecond precision.
func (c *Client) PTTL(ctx context.Context, key any) (time.Duration, error) {
	conn, err := c.route(ctx, store.CmdPTTL)
	if err != nil {
		return 0, err
	}
	return conn.PTTL(ctx, c.ns.Key(key)).Result()
}

// Persist removes the expiry of key.
func (c *Client) Persist(ctx context.Context, key any) (bool, error) {
	conn, err := c.route(ctx, store.CmdPersist)
	if err != nil {
		return false, err
	}
	return conn.Persist(ctx, c.ns.Key(key)).Result()
}

// Rename renames src to dst, both inside the namespace.
func (c *Client) Rename(ctx context.Context, src, dst any) error {
	conn, err := c.route(ctx, store.CmdRename)
	if err != nil {
		return err
	}
	return conn.Rename(ctx, c.ns.Key(src), c.ns.Key(dst)).Err()
}

// Type returns the store type of key ("string", "list", ..., "none").
func (c *Client) Type(ctx context.Context, key any) (string, error) {
	conn, err := c.route(ctx, store.CmdType)
	if err != nil {
		return "", err
	}
	return conn.Type(ctx, c.ns.Key(key)).Result()
}

// FlushDB removes all keys of the current database, of every tenant.
func (c *Client) FlushDB(ctx context.Context, async bool) error {
	conn, err := c.route(ctx, store.CmdFlushDB)
	if err != nil {
		return err
	}
	if async {
		return conn.FlushDBAsync(ctx).Err()
	}
	return conn.FlushDB(ctx).Err()
}

// FlushAll removes all keys of all databases.
func (c *Client) FlushAll(ctx context.Context, async bool) error {
	conn, err := c.route(ctx, store.CmdFlushAll)
	if err != nil {
		return err
	}
	if async {
		return conn.FlushAllAsync(ctx).Err()
	}
	return conn.FlushAll(ctx).Err()
}

// scanPattern namespaces a scan pattern; empty matches the whole namespace
func (c *Client) scanPattern(match string) string {
	if match == "" {
		match = "*"
	}
	return c.ns.Pattern(match)
}
