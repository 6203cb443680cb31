package client

import (
	"context"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/redis/go-redis/v9"
)

// WritePipelined queues the commands issued by fn on a primary pipeline and
// executes them in one round trip. With tx the batch is wrapped in
// MULTI/EXEC. The pipeline is discarded on every exit path.
//
// Commands queued by fn bypass the facade: use MakeKey and EncodeValue for
// keys and values and DecodeValue on the replies.
func (c *Client) WritePipelined(ctx context.Context, tx bool, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	return c.pipelined(ctx, store.CmdWritePipeline, tx, fn)
}

// ReadPipelined is WritePipelined on a replica pipeline.
func (c *Client) ReadPipelined(ctx context.Context, tx bool, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	return c.pipelined(ctx, store.CmdReadPipeline, tx, fn)
}

// Transaction runs fn in an optimistic transaction on the primary. The
// watched keys are namespaced; if one of them changes before fn's
// TxPipelined call executes, the transaction fails with redis.TxFailedErr.
func (c *Client) Transaction(ctx context.Context, fn func(*redis.Tx) error, watches ...any) error {
	conn, err := c.route(ctx, store.CmdTransaction)
	if err != nil {
		return err
	}
	return conn.Watch(ctx, fn, c.ns.Keys(watches...)...)
}

func (c *Client) pipelined(ctx context.Context, cmd store.Command, tx bool, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	conn, err := c.route(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var pipe redis.Pipeliner
	if tx {
		pipe = conn.TxPipeline()
	} else {
		pipe = conn.Pipeline()
	}
	defer pipe.Discard()

	if err := fn(pipe); err != nil {
		return nil, err
	}
	return pipe.Exec(ctx)
}
