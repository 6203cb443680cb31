package topology

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/redis/go-redis/v9"
)

var log = logger.GetLogger("topology")

// Mode selects when a Topology connects.
type Mode uint8

const (
	// ModeEager connects once, when the owning client is created. A failed
	// connect is terminal and EnsureConnected never re-checks.
	ModeEager Mode = iota
	// ModeLazy defers connecting to the first operation and re-checks the
	// state before every operation, so a failed connect is retried per call.
	ModeLazy
)

func (m Mode) String() string {
	if m == ModeLazy {
		return "lazy"
	}
	return "eager"
}

// State is the connection state of a Topology.
type State uint32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Info describes the discovered layout of the monitored set.
type Info struct {
	State        State
	PrimaryAddr  string
	ReplicaAddrs []string
}

// handles is an immutable snapshot of all connections owned by a Topology
type handles struct {
	monitor      Monitor
	primary      store.Conn
	replica      store.Conn
	primaryAddr  string
	replicaAddrs []string
}

// close releases every connection of the snapshot and returns the first error
func (h *handles) close() error {
	var errs []error
	if h.primary != nil {
		errs = append(errs, h.primary.Close())
	}
	if h.replica != nil {
		errs = append(errs, h.replica.Close())
	}
	if h.monitor != nil {
		errs = append(errs, h.monitor.Close())
	}
	return errors.Join(errs...)
}

// Topology owns the connection to the monitor and the two role-bound store
// connections derived from it.
//
// Published connections are swapped in atomically as one snapshot, so a
// reader never observes a primary without its replica. Connects are
// serialized; the go-redis clients handed out are safe for concurrent use.
type Topology struct {
	conf  Config
	mode  Mode
	dial  MonitorFactory
	hooks func(store.Role) redis.Hook

	sem     chan struct{} // serializes connects, waiting is cancellable
	state   atomic.Uint32
	current atomic.Pointer[handles]
}

// New creates a disconnected Topology. hooks may be nil; otherwise the hook
// it returns for a role is attached to every connection derived for it.
func New(conf Config, mode Mode, dial MonitorFactory, hooks func(store.Role) redis.Hook) *Topology {
	if dial == nil {
		dial = DialSentinel
	}
	return &Topology{
		conf:  conf,
		mode:  mode,
		dial:  dial,
		hooks: hooks,
		sem:   make(chan struct{}, 1),
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Connect dials the monitor, discovers primary and replicas and publishes
// fresh role-bound connections.
//
// An unreachable or misconfigured monitor yields a SentinelError, a failed
// discovery or connection derivation a ConnectionError. On failure or
// cancellation nothing is published, partially built connections are closed
// and previously published connections stay in place.
func (t *Topology) Connect(ctx context.Context) error {
	if err := t.acquire(ctx); err != nil {
		return err
	}
	defer t.release()
	return t.connectLocked(ctx)
}

// EnsureConnected makes sure the role connections are available before an
// operation. It is a no-op in ModeEager. In ModeLazy it connects if the
// topology is not connected yet.
func (t *Topology) EnsureConnected(ctx context.Context) error {
	if t.mode == ModeEager || t.State() == StateConnected {
		return nil
	}
	if err := t.acquire(ctx); err != nil {
		return err
	}
	defer t.release()

	// another caller may have connected while we were waiting
	if t.State() == StateConnected {
		return nil
	}
	return t.connectLocked(ctx)
}

// Rediscover re-runs discovery and replaces the current connections.
// Nothing reconnects automatically; callers invoke this after observing a
// failover (e.g. a write rejected with READONLY).
func (t *Topology) Rediscover(ctx context.Context) error {
	log.Infof("rediscovering set %s", t.conf.MonitorSetName)
	return t.Connect(ctx)
}

// Close releases both role connections and the monitor and resets the state
// to StateDisconnected. Close is idempotent.
func (t *Topology) Close() error {
	// wait for a running connect to finish so it cannot publish after us
	t.sem <- struct{}{}
	defer t.release()

	old := t.current.Swap(nil)
	t.state.Store(uint32(StateDisconnected))
	if old == nil {
		return nil
	}
	log.Infof("closing connections to set %s", t.conf.MonitorSetName)
	return old.close()
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Primary returns the connection to the primary or an InitError if absent.
func (t *Topology) Primary() (store.Conn, error) {
	return t.Conn(store.RolePrimary)
}

// Replica returns the connection to the replicas or an InitError if absent.
func (t *Topology) Replica() (store.Conn, error) {
	return t.Conn(store.RoleReplica)
}

// Conn returns the connection bound to role or an InitError if absent.
func (t *Topology) Conn(role store.Role) (store.Conn, error) {
	h := t.current.Load()
	var conn store.Conn
	if h != nil {
		switch role {
		case store.RolePrimary:
			conn = h.primary
		case store.RoleReplica:
			conn = h.replica
		}
	}
	if conn == nil {
		return nil, store.NewError(store.RetCInit,
			role.String()+" is not connected, please check your connection settings")
	}
	return conn, nil
}

// State returns the current connection state.
func (t *Topology) State() State {
	return State(t.state.Load())
}

// Connected reports whether both role connections are available.
func (t *Topology) Connected() bool {
	return t.State() == StateConnected
}

// Mode returns the connect mode of the topology.
func (t *Topology) Mode() Mode {
	return t.mode
}

// Config returns the configuration of the topology.
func (t *Topology) Config() Config {
	return t.conf
}

// Info returns the currently published layout.
func (t *Topology) Info() Info {
	info := Info{State: t.State()}
	if h := t.current.Load(); h != nil {
		info.PrimaryAddr = h.primaryAddr
		info.ReplicaAddrs = append([]string(nil), h.replicaAddrs...)
	}
	return info
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (t *Topology) acquire(ctx context.Context) error {
	select {
	case t.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Topology) release() {
	<-t.sem
}

// connectLocked builds and publishes a new snapshot. The caller holds sem.
func (t *Topology) connectLocked(ctx context.Context) error {
	prev := t.current.Load()
	t.state.Store(uint32(StateConnecting))

	h, err := t.build(ctx)
	if err != nil {
		if prev != nil {
			t.state.Store(uint32(StateConnected))
		} else {
			t.state.Store(uint32(StateDisconnected))
		}
		log.Errorf("connect to set %s via %s failed: %v", t.conf.MonitorSetName, t.conf.Addr(), err)
		return err
	}

	t.current.Store(h)
	t.state.Store(uint32(StateConnected))
	log.Infof("connected to set %s (primary %s, %d replicas)", t.conf.MonitorSetName, h.primaryAddr, len(h.replicaAddrs))

	if prev != nil {
		if err := prev.close(); err != nil {
			log.Warningf("closing previous connections: %v", err)
		}
	}
	return nil
}

// build dials the monitor and derives both role connections. On error every
// connection opened so far is closed again.
func (t *Topology) build(ctx context.Context) (_ *handles, err error) {
	if err := t.conf.Validate(); err != nil {
		return nil, store.WrapError(store.RetCSentinel, err, "invalid monitor configuration")
	}

	h := &handles{}
	defer func() {
		if err != nil {
			if cerr := h.close(); cerr != nil {
				log.Debugf("closing partial connections: %v", cerr)
			}
		}
	}()

	h.monitor, err = t.dial(ctx, t.conf)
	if err != nil {
		h.monitor = nil
		return nil, store.WrapError(store.RetCSentinel, err,
			"failed to connect to monitor at %s", t.conf.Addr())
	}
	if h.monitor == nil {
		return nil, store.NewError(store.RetCSentinel, "failed to connect to monitor at "+t.conf.Addr())
	}

	name := t.conf.MonitorSetName
	h.primaryAddr, err = h.monitor.DiscoverPrimary(ctx, name)
	if err != nil {
		return nil, connErr(name, err)
	}
	h.replicaAddrs, err = h.monitor.DiscoverReplicas(ctx, name)
	if err != nil {
		return nil, connErr(name, err)
	}
	log.Debugf("discovered primary %s and replicas %v for set %s", h.primaryAddr, h.replicaAddrs, name)

	opts := ConnOptions{SocketTimeout: t.conf.SocketTimeout, Password: t.conf.Password}
	if h.primary, err = t.derive(h.monitor.PrimaryFor, name, opts, store.RolePrimary); err != nil {
		return nil, err
	}
	if h.replica, err = t.derive(h.monitor.ReplicaFor, name, opts, store.RoleReplica); err != nil {
		return nil, err
	}

	// a cancelled connect must not publish
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return h, nil
}

// derive obtains one role-bound connection and attaches the role hook
func (t *Topology) derive(
	fn func(string, ConnOptions) (store.Conn, error),
	name string,
	opts ConnOptions,
	role store.Role,
) (store.Conn, error) {
	conn, err := fn(name, opts)
	if err != nil {
		return nil, connErr(name, err)
	}
	if conn == nil {
		return nil, store.NewError(store.RetCConnection, "monitor returned no "+role.String()+" connection for "+name)
	}
	if t.hooks != nil {
		if hook := t.hooks(role); hook != nil {
			conn.AddHook(hook)
		}
	}
	return conn, nil
}

func connErr(name string, err error) error {
	return store.WrapError(store.RetCConnection, err,
		"failed to connect to primary/replica for %s", name)
}
