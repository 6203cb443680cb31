package client

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PopKind tells which variant a Popped holds.
type PopKind uint8

const (
	PopEmpty  PopKind = iota // nothing was popped
	PopSingle                // one element, in Value
	PopMany                  // a list of elements, in Values
)

func (k PopKind) String() string {
	switch k {
	case PopSingle:
		return "single"
	case PopMany:
		return "many"
	default:
		return "empty"
	}
}

// Popped is the result of LPop, RPop, SPop and SRandMember. The variant
// follows the shape of the store reply: a bulk string yields PopSingle, an
// array yields PopMany and a null reply yields PopEmpty.
type Popped struct {
	Kind   PopKind
	Value  any
	Values []any
}

// All returns the popped elements as a list regardless of the variant.
func (p Popped) All() []any {
	switch p.Kind {
	case PopSingle:
		return []any{p.Value}
	case PopMany:
		return p.Values
	default:
		return nil
	}
}

// PopOptions holds the optional count of every pop-like operation (LPOP,
// RPOP, SPOP, SRANDMEMBER, ZPOPMIN, ZPOPMAX). Without HasCount no count is
// sent and the store pops a single element. With HasCount the count is sent
// as given, 0 included, and the store replies with an array.
type PopOptions struct {
	Count    int64
	HasCount bool
}

// PopCount returns PopOptions that send count.
func PopCount(count int64) PopOptions {
	return PopOptions{Count: count, HasCount: true}
}

// args appends the count argument if set
func (o PopOptions) args(args []any) []any {
	if o.HasCount {
		args = append(args, o.Count)
	}
	return args
}

// counts returns the variadic count argument of the go-redis pop methods
func (o PopOptions) counts() []int64 {
	if o.HasCount {
		return []int64{o.Count}
	}
	return nil
}

// decodePopped branches on the raw reply shape
func (c *Client) decodePopped(res interface{}, err error) (Popped, error) {
	if errors.Is(err, redis.Nil) {
		return Popped{Kind: PopEmpty}, nil
	}
	if err != nil {
		return Popped{}, err
	}

	switch r := res.(type) {
	case nil:
		return Popped{Kind: PopEmpty}, nil
	case string:
		v, err := c.DecodeValue([]byte(r))
		if err != nil {
			return Popped{}, err
		}
		return Popped{Kind: PopSingle, Value: v}, nil
	case []interface{}:
		values, err := c.decodeReplies(r)
		if err != nil {
			return Popped{}, err
		}
		return Popped{Kind: PopMany, Values: values}, nil
	default:
		return Popped{}, fmt.Errorf("unexpected pop reply type %T", res)
	}
}
