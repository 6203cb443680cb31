package client

import (
	"context"
	"errors"
	"strconv"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/redis/go-redis/v9"
)

// Z is a sorted set member with its score. Members are opaque codec values,
// scores are plain store floats.
type Z struct {
	Member any
	Score  float64
}

// ZAddMode restricts which members ZAdd writes.
type ZAddMode uint8

const (
	ZAddAlways ZAddMode = iota // add new and update existing members
	ZAddNX                     // only add new members
	ZAddXX                     // only update existing members
)

// ZAddOptions holds the optional flags of ZAdd. GT and LT only update a
// member if the new score is greater / less than the current one. With CH
// the result counts changed members instead of added ones.
type ZAddOptions struct {
	Mode ZAddMode
	GT   bool
	LT   bool
	CH   bool
}

// ZRangeBy selects a score or lex interval. Min and Max use the store
// syntax ("-inf", "(1.5", "[a", ...) and are passed through verbatim.
// Count 0 means no LIMIT.
type ZRangeBy struct {
	Min    string
	Max    string
	Offset int64
	Count  int64
}

func (b ZRangeBy) args() *redis.ZRangeBy {
	return &redis.ZRangeBy{Min: b.Min, Max: b.Max, Offset: b.Offset, Count: b.Count}
}

// ZRangeOptions turns ZRange into the generic ZRANGE command. Without
// ByScore or ByLex start and stop are ranks. With Rev the order is reversed;
// start stays the lower and stop the upper bound.
type ZRangeOptions struct {
	ByScore bool
	ByLex   bool
	Rev     bool
	Offset  int64
	Count   int64
}

func (o ZRangeOptions) args(key string, start, stop any) redis.ZRangeArgs {
	return redis.ZRangeArgs{
		Key:     key,
		Start:   start,
		Stop:    stop,
		ByScore: o.ByScore,
		ByLex:   o.ByLex,
		Rev:     o.Rev,
		Offset:  o.Offset,
		Count:   o.Count,
	}
}

// ZAdd adds or updates members of the sorted set at key.
func (c *Client) ZAdd(ctx context.Context, key any, opts ZAddOptions, members ...Z) (int64, error) {
	conn, err := c.route(ctx, store.CmdZAdd)
	if err != nil {
		return 0, err
	}
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		data, err := c.EncodeValue(m.Member)
		if err != nil {
			return 0, err
		}
		zs[i] = redis.Z{Score: m.Score, Member: data}
	}
	return conn.ZAddArgs(ctx, c.ns.Key(key), redis.ZAddArgs{
		NX:      opts.Mode == ZAddNX,
		XX:      opts.Mode == ZAddXX,
		GT:      opts.GT,
		LT:      opts.LT,
		Ch:      opts.CH,
		Members: zs,
	}).Result()
}

// ZRem removes members and returns how many existed.
func (c *Client) ZRem(ctx context.Context, key any, members ...any) (int64, error) {
	conn, err := c.route(ctx, store.CmdZRem)
	if err != nil {
		return 0, err
	}
	args, err := c.encodeAll(members)
	if err != nil {
		return 0, err
	}
	return conn.ZRem(ctx, c.ns.Key(key), args...).Result()
}

// ZRange returns the decoded members between start and stop.
func (c *Client) ZRange(ctx context.Context, key any, start, stop any, opts ZRangeOptions) ([]any, error) {
	conn, err := c.route(ctx, store.CmdZRange)
	if err != nil {
		return nil, err
	}
	return c.members(conn.ZRangeArgs(ctx, opts.args(c.ns.Key(key), start, stop)).Result())
}

// ZRangeWithScores is ZRange returning the scores as well.
func (c *Client) ZRangeWithScores(ctx context.Context, key any, start, stop any, opts ZRangeOptions) ([]Z, error) {
	conn, err := c.route(ctx, store.CmdZRange)
	if err != nil {
		return nil, err
	}
	return c.scored(conn.ZRangeArgsWithScores(ctx, opts.args(c.ns.Key(key), start, stop)).Result())
}

// ZRevRange returns the decoded members between the ranks start and stop,
// ordered from the highest to the lowest score.
func (c *Client) ZRevRange(ctx context.Context, key any, start, stop int64) ([]any, error) {
	conn, err := c.route(ctx, store.CmdZRevRange)
	if err != nil {
		return nil, err
	}
	return c.members(conn.ZRevRange(ctx, c.ns.Key(key), start, stop).Result())
}

// ZRevRangeWithScores is ZRevRange returning the scores as well.
func (c *Client) ZRevRangeWithScores(ctx context.Context, key any, start, stop int64) ([]Z, error) {
	conn, err := c.route(ctx, store.CmdZRevRange)
	if err != nil {
		return nil, err
	}
	return c.scored(conn.ZRevRangeWithScores(ctx, c.ns.Key(key), start, stop).Result())
}

// ZRangeByScore returns the decoded members with a score inside by.
func (c *Client) ZRangeByScore(ctx context.Context, key any, by ZRangeBy) ([]any, error) {
	conn, err := c.route(ctx, store.CmdZRangeByScore)
	if err != nil {
		return nil, err
	}
	return c.members(conn.ZRangeByScore(ctx, c.ns.Key(key), by.args()).Result())
}

// ZRangeByScoreWithScores is ZRangeByScore returning the scores as well.
func (c *Client) ZRangeByScoreWithScores(ctx context.Context, key any, by ZRangeBy) ([]Z, error) {
	conn, err := c.route(ctx, store.CmdZRangeByScore)
	if err != nil {
		return nil, err
	}
	return c.scored(conn.ZRangeByScoreWithScores(ctx, c.ns.Key(key), by.args()).Result())
}

// ZRevRangeByScore is ZRangeByScore ordered from the highest score.
func (c *Client) ZRevRangeByScore(ctx context.Context, key any, by ZRangeBy) ([]any, error) {
	conn, err := c.route(ctx, store.CmdZRevRangeByScore)
	if err != nil {
		return nil, err
	}
	return c.members(conn.ZRevRangeByScore(ctx, c.ns.Key(key), by.args()).Result())
}

// ZRevRangeByScoreWithScores is ZRevRangeByScore returning the scores as well.
func (c *Client) ZRevRangeByScoreWithScores(ctx context.Context, key any, by ZRangeBy) ([]Z, error) {
	conn, err := c.route(ctx, store.CmdZRevRangeByScore)
	if err != nil {
		return nil, err
	}
	return c.scored(conn.ZRevRangeByScoreWithScores(ctx, c.ns.Key(key), by.args()).Result())
}

// ZRangeByLex returns the decoded members inside the lex interval by. The
// interval applies to the encoded members, so it is only meaningful for
// members of equal score stored with an order preserving codec.
func (c *Client) ZRangeByLex(ctx context.Context, key any, by ZRangeBy) ([]any, error) {
	conn, err := c.route(ctx, store.CmdZRangeByLex)
	if err != nil {
		return nil, err
	}
	return c.members(conn.ZRangeByLex(ctx, c.ns.Key(key), by.args()).Result())
}

// ZCard returns the number of members of the sorted set at key.
func (c *Client) ZCard(ctx context.Context, key any) (int64, error) {
	conn, err := c.route(ctx, store.CmdZCard)
	if err != nil {
		return 0, err
	}
	return conn.ZCard(ctx, c.ns.Key(key)).Result()
}

// ZCount returns the number of members with a score between min and max.
func (c *Client) ZCount(ctx context.Context, key any, min, max string) (int64, error) {
	conn, err := c.route(ctx, store.CmdZCount)
	if err != nil {
		return 0, err
	}
	return conn.ZCount(ctx, c.ns.Key(key), min, max).Result()
}

// ZRank returns the rank of member in ascending order. ok is false if the
// member does not exist.
func (c *Client) ZRank(ctx context.Context, key, member any) (rank int64, ok bool, err error) {
	conn, err := c.route(ctx, store.CmdZRank)
	if err != nil {
		return 0, false, err
	}
	data, err := c.EncodeValue(member)
	if err != nil {
		return 0, false, err
	}
	return found(conn.ZRank(ctx, c.ns.Key(key), string(data)).Result())
}

// ZRankWithScore returns rank and score of member.
func (c *Client) ZRankWithScore(ctx context.Context, key, member any) (rank int64, score float64, ok bool, err error) {
	conn, err := c.route(ctx, store.CmdZRank)
	if err != nil {
		return 0, 0, false, err
	}
	data, err := c.EncodeValue(member)
	if err != nil {
		return 0, 0, false, err
	}
	rs, ok, err := found(conn.ZRankWithScore(ctx, c.ns.Key(key), string(data)).Result())
	return rs.Rank, rs.Score, ok, err
}

// ZRevRank returns the rank of member in descending order.
func (c *Client) ZRevRank(ctx context.Context, key, member any) (rank int64, ok bool, err error) {
	conn, err := c.route(ctx, store.CmdZRevRank)
	if err != nil {
		return 0, false, err
	}
	data, err := c.EncodeValue(member)
	if err != nil {
		return 0, false, err
	}
	return found(conn.ZRevRank(ctx, c.ns.Key(key), string(data)).Result())
}

// ZScore returns the score of member. ok is false if the member does not
// exist.
func (c *Client) ZScore(ctx context.Context, key, member any) (score float64, ok bool, err error) {
	conn, err := c.route(ctx, store.CmdZScore)
	if err != nil {
		return 0, false, err
	}
	data, err := c.EncodeValue(member)
	if err != nil {
		return 0, false, err
	}
	return found(conn.ZScore(ctx, c.ns.Key(key), string(data)).Result())
}

// ZIncrBy increments the score of member and returns the new score.
func (c *Client) ZIncrBy(ctx context.Context, key any, amount float64, member any) (float64, error) {
	conn, err := c.route(ctx, store.CmdZIncrBy)
	if err != nil {
		return 0, err
	}
	data, err := c.EncodeValue(member)
	if err != nil {
		return 0, err
	}
	return conn.ZIncrBy(ctx, c.ns.Key(key), amount, string(data)).Result()
}

// ZPopMin removes and returns the members with the lowest scores: one
// without a count, up to opts.Count with one (see PopOptions).
func (c *Client) ZPopMin(ctx context.Context, key any, opts PopOptions) ([]Z, error) {
	conn, err := c.route(ctx, store.CmdZPopMin)
	if err != nil {
		return nil, err
	}
	return c.scored(conn.ZPopMin(ctx, c.ns.Key(key), opts.counts()...).Result())
}

// ZPopMax is ZPopMin for the highest scores.
func (c *Client) ZPopMax(ctx context.Context, key any, opts PopOptions) ([]Z, error) {
	conn, err := c.route(ctx, store.CmdZPopMax)
	if err != nil {
		return nil, err
	}
	return c.scored(conn.ZPopMax(ctx, c.ns.Key(key), opts.counts()...).Result())
}

// ZRemRangeByRank removes the members between the ranks start and stop.
func (c *Client) ZRemRangeByRank(ctx context.Context, key any, start, stop int64) (int64, error) {
	conn, err := c.route(ctx, store.CmdZRemRangeByRank)
	if err != nil {
		return 0, err
	}
	return conn.ZRemRangeByRank(ctx, c.ns.Key(key), start, stop).Result()
}

// ZRemRangeByScore removes the members with a score between min and max.
func (c *Client) ZRemRangeByScore(ctx context.Context, key any, min, max string) (int64, error) {
	conn, err := c.route(ctx, store.CmdZRemRangeByScore)
	if err != nil {
		return 0, err
	}
	return conn.ZRemRangeByScore(ctx, c.ns.Key(key), min, max).Result()
}

// ZScan returns one page of decoded members with scores and the next cursor.
func (c *Client) ZScan(ctx context.Context, key any, cursor uint64, opts ScanOptions) ([]Z, uint64, error) {
	conn, err := c.route(ctx, store.CmdZScan)
	if err != nil {
		return nil, 0, err
	}
	return c.zscan(ctx, conn, key, cursor, opts)
}

// ZScanIter iterates over all members of the sorted set at key in one scan
// pass.
func (c *Client) ZScanIter(ctx context.Context, key any, opts ScanOptions) *Iter[Z] {
	return newIter(ctx, func(ctx context.Context, cursor uint64) ([]Z, uint64, error) {
		conn, err := c.route(ctx, store.CmdZScanIter)
		if err != nil {
			return nil, 0, err
		}
		return c.zscan(ctx, conn, key, cursor, opts)
	})
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (c *Client) zscan(ctx context.Context, conn store.Conn, key any, cursor uint64, opts ScanOptions) ([]Z, uint64, error) {
	res, next, err := conn.ZScan(ctx, c.ns.Key(key), cursor, opts.Match, opts.Count).Result()
	if err != nil {
		return nil, 0, err
	}
	// the reply alternates members and scores
	page := make([]Z, 0, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		m, err := c.DecodeValue([]byte(res[i]))
		if err != nil {
			return nil, 0, err
		}
		score, err := strconv.ParseFloat(res[i+1], 64)
		if err != nil {
			return nil, 0, err
		}
		page = append(page, Z{Member: m, Score: score})
	}
	return page, next, nil
}

func (c *Client) members(res []string, err error) ([]any, error) {
	if err != nil {
		return nil, err
	}
	return c.decodeStrings(res)
}

func (c *Client) scored(res []redis.Z, err error) ([]Z, error) {
	if err != nil {
		return nil, err
	}
	out := make([]Z, len(res))
	for i, z := range res {
		m, err := c.decodeReply(z.Member)
		if err != nil {
			return nil, err
		}
		out[i] = Z{Member: m, Score: z.Score}
	}
	return out, nil
}

// found maps redis.Nil to ok=false
func found[T any](v T, err error) (T, bool, error) {
	if errors.Is(err, redis.Nil) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}
