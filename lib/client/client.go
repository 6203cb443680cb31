package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/credis/lib/codec"
	"github.com/ValentinKolb/credis/lib/keys"
	"github.com/ValentinKolb/credis/lib/store"
	"github.com/ValentinKolb/credis/lib/topology"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/redis/go-redis/v9"
)

var log = logger.GetLogger("client")

// Client is the namespaced, codec-transparent access layer to a Redis
// deployment supervised by Sentinel. Every operation namespaces its keys,
// encodes its values, runs on the connection of the operation's fixed role
// and decodes the reply.
//
// A Client adds no locking of its own; it is as safe for concurrent use as
// the go-redis clients it wraps, which are.
//
// Close may run while operations are in flight. Those operations fail with
// InitError, the same error as operations started after Close.
type Client struct {
	conf    Config
	ns      keys.Namespacer
	codec   codec.ICodec
	topo    *topology.Topology
	metrics *metrics.Set
}

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

type options struct {
	codec   codec.ICodec
	dial    topology.MonitorFactory
	metrics *metrics.Set
}

// Option configures a Client.
type Option func(*options)

// WithCodec overrides the codec selected by Config.Codec.
func WithCodec(c codec.ICodec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithMonitorFactory replaces the Sentinel monitor (e.g. in tests).
func WithMonitorFactory(f topology.MonitorFactory) Option {
	return func(o *options) {
		o.dial = f
	}
}

// WithMetricsSet records command metrics into set instead of a private one.
func WithMetricsSet(set *metrics.Set) Option {
	return func(o *options) {
		o.metrics = set
	}
}

// --------------------------------------------------------------------------
// Construction
// --------------------------------------------------------------------------

// New creates a Client and connects it right away. A failed connect is
// terminal: the error is returned and no Client is created.
func New(ctx context.Context, conf Config, opts ...Option) (*Client, error) {
	c, err := newClient(conf, topology.ModeEager, opts)
	if err != nil {
		return nil, err
	}
	if err := c.topo.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewLazy creates a Client without any I/O. It connects on the first
// operation and retries the connect on every later operation until one
// succeeds.
func NewLazy(conf Config, opts ...Option) (*Client, error) {
	return newClient(conf, topology.ModeLazy, opts)
}

func newClient(conf Config, mode topology.Mode, opts []Option) (*Client, error) {
	if err := conf.Validate(); err != nil {
		return nil, store.WrapError(store.RetCSentinel, err, "invalid configuration")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.codec == nil {
		name := conf.Codec
		if name == "" {
			name = "gob"
		}
		// cannot fail, the name was validated
		o.codec, _ = codec.New(name)
	}
	if o.metrics == nil {
		o.metrics = metrics.NewSet()
	}

	c := &Client{
		conf:    conf,
		ns:      keys.New(conf.Prefix),
		codec:   o.codec,
		metrics: o.metrics,
	}
	c.topo = topology.New(conf.Topology(), mode, o.dial, func(role store.Role) redis.Hook {
		return newCommandHook(role, c.metrics)
	})
	log.Debugf("created %s client for %s (prefix %q, codec %s)", mode, conf.Topology().Addr(), conf.Prefix, c.codec.Name())
	return c, nil
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Close releases all connections. Close is idempotent. A lazy client
// reconnects on the next operation, an eager client reports InitError.
func (c *Client) Close() error {
	return c.topo.Close()
}

// Connect (re)runs discovery. Eager clients are connected by New already,
// lazy clients connect on demand; Connect is useful to fail early or to
// follow a failover.
func (c *Client) Connect(ctx context.Context) error {
	return c.topo.Connect(ctx)
}

// Connected reports whether both role connections are available.
func (c *Client) Connected() bool {
	return c.topo.Connected()
}

// Topology returns the topology owned by the client.
func (c *Client) Topology() *topology.Topology {
	return c.topo
}

// Metrics returns the set the command metrics are recorded in.
func (c *Client) Metrics() *metrics.Set {
	return c.metrics
}

// Config returns the configuration of the client.
func (c *Client) Config() Config {
	return c.conf
}

// Equal reports whether both clients point at the same monitor with the same
// credential.
func (c *Client) Equal(other *Client) bool {
	if other == nil {
		return false
	}
	return c.conf.Host == other.conf.Host &&
		c.conf.Port == other.conf.Port &&
		c.conf.Password == other.conf.Password
}

// String returns a short description of the client without the credential.
func (c *Client) String() string {
	return fmt.Sprintf("Client(host=%s, port=%d, password=%s)", c.conf.Host, c.conf.Port, maskPassword(c.conf.Password))
}

// --------------------------------------------------------------------------
// Namespacing
// --------------------------------------------------------------------------

// MakeKey returns the namespaced store key for raw. Use it for keys passed
// to pipelines and transactions.
func (c *Client) MakeKey(raw any) string {
	return c.ns.Key(raw)
}

// Namespace returns the key namespacer of the client.
func (c *Client) Namespace() keys.Namespacer {
	return c.ns
}

// --------------------------------------------------------------------------
// Routing
// --------------------------------------------------------------------------

// route makes sure the topology is connected and returns the connection of
// the role bound to cmd.
func (c *Client) route(ctx context.Context, cmd store.Command) (store.Conn, error) {
	if err := c.topo.EnsureConnected(ctx); err != nil {
		return nil, err
	}
	role, ok := store.RoleOf(cmd)
	if !ok {
		// every exposed operation is in the role table
		panic(fmt.Sprintf("command %q has no role", cmd))
	}
	return c.topo.Conn(role)
}

// Ping checks the primary connection.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.route(ctx, store.CmdPing)
	if err != nil {
		return err
	}
	return conn.Ping(ctx).Err()
}
