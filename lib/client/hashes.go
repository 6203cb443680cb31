package client

import (
	"context"

	"github.com/ValentinKolb/credis/lib/store"
)

// FieldValue is a hash field with its decoded value. Field names are plain
// store strings, they are neither namespaced nor encoded.
type FieldValue struct {
	Field string
	Value any
}

// HSet sets the given fields of the hash at key and returns the number of
// fields that were added.
func (c *Client) HSet(ctx context.Context, key any, values map[string]any) (int64, error) {
	conn, err := c.route(ctx, store.CmdHSet)
	if err != nil {
		return 0, err
	}
	args := make([]any, 0, 2*len(values))
	for f, v := range values {
		data, err := c.EncodeValue(v)
		if err != nil {
			return 0, err
		}
		args = append(args, f, data)
	}
	return conn.HSet(ctx, c.ns.Key(key), args...).Result()
}

// HGet returns the value of field or nil if it does not exist.
func (c *Client) HGet(ctx context.Context, key any, field string) (any, error) {
	conn, err := c.route(ctx, store.CmdHGet)
	if err != nil {
		return nil, err
	}
	return c.decodeString(conn.HGet(ctx, c.ns.Key(key), field).Result())
}

// HGetAll returns all fields and decoded values of the hash at key.
func (c *Client) HGetAll(ctx context.Context, key any) (map[string]any, error) {
	conn, err := c.route(ctx, store.CmdHGetAll)
	if err != nil {
		return nil, err
	}
	res, err := conn.HGetAll(ctx, c.ns.Key(key)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(res))
	for f, s := range res {
		v, err := c.DecodeValue([]byte(s))
		if err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, nil
}

// HDel removes fields and returns how many existed.
func (c *Client) HDel(ctx context.Context, key any, fields ...string) (int64, error) {
	conn, err := c.route(ctx, store.CmdHDel)
	if err != nil {
		return 0, err
	}
	return conn.HDel(ctx, c.ns.Key(key), fields...).Result()
}

// HKeys returns the field names of the hash at key.
func (c *Client) HKeys(ctx context.Context, key any) ([]string, error) {
	conn, err := c.route(ctx, store.CmdHKeys)
	if err != nil {
		return nil, err
	}
	return conn.HKeys(ctx, c.ns.Key(key)).Result()
}

// HVals returns the decoded values of the hash at key.
func (c *Client) HVals(ctx context.Context, key any) ([]any, error) {
	conn, err := c.route(ctx, store.CmdHVals)
	if err != nil {
		return nil, err
	}
	res, err := conn.HVals(ctx, c.ns.Key(key)).Result()
	if err != nil {
		return nil, err
	}
	return c.decodeStrings(res)
}

// HLen returns the number of fields of the hash at key.
func (c *Client) HLen(ctx context.Context, key any) (int64, error) {
	conn, err := c.route(ctx, store.CmdHLen)
	if err != nil {
		return 0, err
	}
	return conn.HLen(ctx, c.ns.Key(key)).Result()
}

// HExists reports whether field exists.
func (c *Client) HExists(ctx context.Context, key any, field string) (bool, error) {
	conn, err := c.route(ctx, store.CmdHExists)
	if err != nil {
		return false, err
	}
	return conn.HExists(ctx, c.ns.Key(key), field).Result()
}

// HIncrBy increments the integer stored in field. The counter is a plain
// store integer, not a codec value.
func (c *Client) HIncrBy(ctx context.Context, key any, field string, amount int64) (int64, error) {
	conn, err := c.route(ctx, store.CmdHIncrBy)
	if err != nil {
		return 0, err
	}
	return conn.HIncrBy(ctx, c.ns.Key(key), field, amount).Result()
}

// HIncrByFloat increments the float stored in field.
func (c *Client) HIncrByFloat(ctx context.Context, key any, field string, amount float64) (float64, error) {
	conn, err := c.route(ctx, store.CmdHIncrByFloat)
	if err != nil {
		return 0, err
	}
	return conn.HIncrByFloat(ctx, c.ns.Key(key), field, amount).Result()
}

// HMGet returns the values of fields in order, nil for missing fields.
func (c *Client) HMGet(ctx context.Context, key any, fields ...string) ([]any, error) {
	conn, err := c.route(ctx, store.CmdHMGet)
	if err != nil {
		return nil, err
	}
	res, err := conn.HMGet(ctx, c.ns.Key(key), fields...).Result()
	if err != nil {
		return nil, err
	}
	return c.decodeReplies(res)
}

// HSetNX sets field only if it does not exist yet.
func (c *Client) HSetNX(ctx context.Context, key any, field string, value any) (bool, error) {
	conn, err := c.route(ctx, store.CmdHSetNX)
	if err != nil {
		return false, err
	}
	data, err := c.EncodeValue(value)
	if err != nil {
		return false, err
	}
	return conn.HSetNX(ctx, c.ns.Key(key), field, data).Result()
}

// HStrLen returns the length of the stored (encoded) value of field.
func (c *Client) HStrLen(ctx context.Context, key any, field string) (int64, error) {
	conn, err := c.route(ctx, store.CmdHStrLen)
	if err != nil {
		return 0, err
	}
	return conn.Do(ctx, "hstrlen", c.ns.Key(key), field).Int64()
}

// HRandField returns up to count random field names (a negative count
// allows repetitions).
func (c *Client) HRandField(ctx context.Context, key any, count int) ([]string, error) {
	conn, err := c.route(ctx, store.CmdHRandField)
	if err != nil {
		return nil, err
	}
	return conn.HRandField(ctx, c.ns.Key(key), count).Result()
}

// HRandFieldWithValues is HRandField returning the decoded values as well.
func (c *Client) HRandFieldWithValues(ctx context.Context, key any, count int) ([]FieldValue, error) {
	conn, err := c.route(ctx, store.CmdHRandField)
	if err != nil {
		return nil, err
	}
	res, err := conn.HRandFieldWithValues(ctx, c.ns.Key(key), count).Result()
	if err != nil {
		return nil, err
	}
	out := make([]FieldValue, len(res))
	for i, kv := range res {
		v, err := c.DecodeValue([]byte(kv.Value))
		if err != nil {
			return nil, err
		}
		out[i] = FieldValue{Field: kv.Key, Value: v}
	}
	return out, nil
}

// HScan returns one page of fields with decoded values and the next cursor.
func (c *Client) HScan(ctx context.Context, key any, cursor uint64, opts ScanOptions) ([]FieldValue, uint64, error) {
	conn, err := c.route(ctx, store.CmdHScan)
	if err != nil {
		return nil, 0, err
	}
	return c.hscan(ctx, conn, key, cursor, opts)
}

// HScanIter iterates over all fields of the hash at key in one scan pass.
func (c *Client) HScanIter(ctx context.Context, key any, opts ScanOptions) *Iter[FieldValue] {
	return newIter(ctx, func(ctx context.Context, cursor uint64) ([]FieldValue, uint64, error) {
		conn, err := c.route(ctx, store.CmdHScanIter)
		if err != nil {
			return nil, 0, err
		}
		return c.hscan(ctx, conn, key, cursor, opts)
	})
}

func (c *Client) hscan(ctx context.Context, conn store.Conn, key any, cursor uint64, opts ScanOptions) ([]FieldValue, uint64, error) {
	res, next, err := conn.HScan(ctx, c.ns.Key(key), cursor, opts.Match, opts.Count).Result()
	if err != nil {
		return nil, 0, err
	}
	// the reply alternates field names and values
	page := make([]FieldValue, 0, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		v, err := c.DecodeValue([]byte(res[i+1]))
		if err != nil {
			return nil, 0, err
		}
		page = append(page, FieldValue{Field: res[i], Value: v})
	}
	return page, next, nil
}
