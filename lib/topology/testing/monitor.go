package testing

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/ValentinKolb/credis/lib/topology"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Conn is a store.Conn handed out by Monitor. It records its role and
// whether it was closed.
type Conn struct {
	*redis.Client
	Role   store.Role
	closed atomic.Bool
}

// Close closes the underlying client and marks the connection as closed.
func (c *Conn) Close() error {
	c.closed.Store(true)
	return c.Client.Close()
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// Monitor is an in-process topology.Monitor. Both roles are served by the
// same miniredis server, so writes through the primary are visible through
// the replica. The Fail* fields inject errors into the matching call.
type Monitor struct {
	Server       *miniredis.Miniredis
	ReplicaAddrs []string

	FailDiscoverPrimary  error
	FailDiscoverReplicas error
	FailPrimary          error
	FailReplica          error

	// BeforeDerive is called before a role connection is derived
	BeforeDerive func(role store.Role)

	mu     sync.Mutex
	conns  []*Conn
	closed int
	dials  int
}

// NewMonitor starts a miniredis server that is stopped when the test ends.
func NewMonitor(t testing.TB) *Monitor {
	t.Helper()
	srv := miniredis.RunT(t)
	return &Monitor{
		Server:       srv,
		ReplicaAddrs: []string{srv.Addr()},
	}
}

// Factory returns a MonitorFactory that always hands out m.
func (m *Monitor) Factory() topology.MonitorFactory {
	return func(ctx context.Context, conf topology.Config) (topology.Monitor, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.dials++
		m.mu.Unlock()
		return m, nil
	}
}

// FailingFactory returns a MonitorFactory that always fails with err.
func FailingFactory(err error) topology.MonitorFactory {
	return func(ctx context.Context, conf topology.Config) (topology.Monitor, error) {
		return nil, err
	}
}

// Config returns a valid topology config pointing at the fake monitor.
func Config() topology.Config {
	return topology.Config{
		Host:           "127.0.0.1",
		Port:           26379,
		MonitorSetName: "mymaster",
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see topology.Monitor)
// --------------------------------------------------------------------------

func (m *Monitor) DiscoverPrimary(ctx context.Context, name string) (string, error) {
	if m.FailDiscoverPrimary != nil {
		return "", m.FailDiscoverPrimary
	}
	return m.Server.Addr(), ctx.Err()
}

func (m *Monitor) DiscoverReplicas(ctx context.Context, name string) ([]string, error) {
	if m.FailDiscoverReplicas != nil {
		return nil, m.FailDiscoverReplicas
	}
	return m.ReplicaAddrs, ctx.Err()
}

func (m *Monitor) PrimaryFor(name string, opts topology.ConnOptions) (store.Conn, error) {
	return m.derive(store.RolePrimary, m.FailPrimary, opts)
}

func (m *Monitor) ReplicaFor(name string, opts topology.ConnOptions) (store.Conn, error) {
	return m.derive(store.RoleReplica, m.FailReplica, opts)
}

func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// --------------------------------------------------------------------------
// Inspection
// --------------------------------------------------------------------------

// Conns returns all connections handed out so far.
func (m *Monitor) Conns() []*Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Conn(nil), m.conns...)
}

// Dials returns how often the factory was invoked.
func (m *Monitor) Dials() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials
}

// CloseCount returns how often Close was called on the monitor.
func (m *Monitor) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Monitor) derive(role store.Role, fail error, opts topology.ConnOptions) (store.Conn, error) {
	if m.BeforeDerive != nil {
		m.BeforeDerive(role)
	}
	if fail != nil {
		return nil, fail
	}
	c := &Conn{
		Client: redis.NewClient(&redis.Options{
			Addr:     m.Server.Addr(),
			Password: opts.Password,
		}),
		Role: role,
	}
	m.mu.Lock()
	m.conns = append(m.conns, c)
	m.mu.Unlock()
	return c, nil
}
