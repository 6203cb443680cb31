package topology_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/ValentinKolb/credis/lib/topology"
	topotest "github.com/ValentinKolb/credis/lib/topology/testing"
	"github.com/redis/go-redis/v9"
)

// TestConnect tests a successful connect and the published layout
func TestConnect(t *testing.T) {
	mon := topotest.NewMonitor(t)
	topo := topology.New(topotest.Config(), topology.ModeEager, mon.Factory(), nil)
	defer topo.Close()

	if topo.State() != topology.StateDisconnected {
		t.Fatalf("Expected disconnected before connect, got %s", topo.State())
	}
	if err := topo.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !topo.Connected() {
		t.Fatalf("Expected connected, got %s", topo.State())
	}

	info := topo.Info()
	if info.PrimaryAddr != mon.Server.Addr() {
		t.Errorf("Expected primary %s, got %s", mon.Server.Addr(), info.PrimaryAddr)
	}
	if len(info.ReplicaAddrs) != 1 {
		t.Errorf("Expected one replica, got %v", info.ReplicaAddrs)
	}

	primary, err := topo.Primary()
	if err != nil || primary == nil {
		t.Fatalf("Expected primary connection, got %v", err)
	}
	replica, err := topo.Replica()
	if err != nil || replica == nil {
		t.Fatalf("Expected replica connection, got %v", err)
	}
	if primary.(*topotest.Conn).Role != store.RolePrimary || replica.(*topotest.Conn).Role != store.RoleReplica {
		t.Errorf("Connections bound to wrong roles")
	}
	if err := primary.Ping(context.Background()).Err(); err != nil {
		t.Errorf("Ping through primary failed: %v", err)
	}
}

// TestAccessorsBeforeConnect tests that absent connections report InitError
func TestAccessorsBeforeConnect(t *testing.T) {
	mon := topotest.NewMonitor(t)
	topo := topology.New(topotest.Config(), topology.ModeEager, mon.Factory(), nil)

	for _, role := range []store.Role{store.RolePrimary, store.RoleReplica} {
		conn, err := topo.Conn(role)
		if conn != nil {
			t.Errorf("Expected no %s connection", role)
		}
		if !errors.Is(err, store.ErrInit) {
			t.Errorf("Expected InitError for %s, got %v", role, err)
		}
	}
}

// TestConnectErrors tests the error kind and cleanup of every failure stage
func TestConnectErrors(t *testing.T) {
	boom := errors.New("boom")

	testCases := []struct {
		name      string
		setup     func(m *topotest.Monitor)
		factory   func(m *topotest.Monitor) topology.MonitorFactory
		expected  error
		openConns int
	}{
		{
			name:     "MonitorUnreachable",
			factory:  func(*topotest.Monitor) topology.MonitorFactory { return topotest.FailingFactory(boom) },
			expected: store.ErrSentinel,
		},
		{
			name:     "DiscoverPrimary",
			setup:    func(m *topotest.Monitor) { m.FailDiscoverPrimary = boom },
			expected: store.ErrConnection,
		},
		{
			name:     "DiscoverReplicas",
			setup:    func(m *topotest.Monitor) { m.FailDiscoverReplicas = boom },
			expected: store.ErrConnection,
		},
		{
			name:     "PrimaryFor",
			setup:    func(m *topotest.Monitor) { m.FailPrimary = boom },
			expected: store.ErrConnection,
		},
		{
			name:      "ReplicaFor",
			setup:     func(m *topotest.Monitor) { m.FailReplica = boom },
			expected:  store.ErrConnection,
			openConns: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mon := topotest.NewMonitor(t)
			if tc.setup != nil {
				tc.setup(mon)
			}
			factory := mon.Factory()
			if tc.factory != nil {
				factory = tc.factory(mon)
			}
			topo := topology.New(topotest.Config(), topology.ModeEager, factory, nil)

			err := topo.Connect(context.Background())
			if !errors.Is(err, tc.expected) {
				t.Fatalf("Expected %v, got %v", tc.expected, err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("Expected cause to be wrapped, got %v", err)
			}
			if topo.State() != topology.StateDisconnected {
				t.Errorf("Expected disconnected after failure, got %s", topo.State())
			}
			if _, err := topo.Primary(); !errors.Is(err, store.ErrInit) {
				t.Errorf("Expected InitError after failed connect, got %v", err)
			}

			// every partially built connection must be closed again
			conns := mon.Conns()
			if len(conns) != tc.openConns {
				t.Errorf("Expected %d derived connections, got %d", tc.openConns, len(conns))
			}
			for _, c := range conns {
				if !c.Closed() {
					t.Errorf("Partial %s connection was not closed", c.Role)
				}
			}
			if tc.factory == nil && mon.CloseCount() != 1 {
				t.Errorf("Expected monitor to be closed once, got %d", mon.CloseCount())
			}
		})
	}
}

// TestInvalidConfig tests that a misconfigured monitor is a SentinelError
func TestInvalidConfig(t *testing.T) {
	mon := topotest.NewMonitor(t)
	conf := topotest.Config()
	conf.MonitorSetName = ""

	topo := topology.New(conf, topology.ModeEager, mon.Factory(), nil)
	if err := topo.Connect(context.Background()); !errors.Is(err, store.ErrSentinel) {
		t.Fatalf("Expected SentinelError, got %v", err)
	}
	if mon.Dials() != 0 {
		t.Errorf("Expected no dial for invalid config")
	}
}

// TestEnsureConnectedModes tests the eager/lazy asymmetry of EnsureConnected
func TestEnsureConnectedModes(t *testing.T) {
	t.Run("Eager", func(t *testing.T) {
		mon := topotest.NewMonitor(t)
		topo := topology.New(topotest.Config(), topology.ModeEager, mon.Factory(), nil)

		if err := topo.EnsureConnected(context.Background()); err != nil {
			t.Fatalf("EnsureConnected failed: %v", err)
		}
		if topo.Connected() || mon.Dials() != 0 {
			t.Errorf("Eager EnsureConnected must not connect")
		}
	})

	t.Run("Lazy", func(t *testing.T) {
		mon := topotest.NewMonitor(t)
		topo := topology.New(topotest.Config(), topology.ModeLazy, mon.Factory(), nil)
		defer topo.Close()

		for i := 0; i < 3; i++ {
			if err := topo.EnsureConnected(context.Background()); err != nil {
				t.Fatalf("EnsureConnected failed: %v", err)
			}
		}
		if !topo.Connected() {
			t.Errorf("Expected lazy EnsureConnected to connect")
		}
		if mon.Dials() != 1 {
			t.Errorf("Expected exactly one dial, got %d", mon.Dials())
		}
	})

	t.Run("LazyRetriesAfterFailure", func(t *testing.T) {
		mon := topotest.NewMonitor(t)
		mon.FailDiscoverPrimary = errors.New("no quorum")
		topo := topology.New(topotest.Config(), topology.ModeLazy, mon.Factory(), nil)
		defer topo.Close()

		if err := topo.EnsureConnected(context.Background()); !errors.Is(err, store.ErrConnection) {
			t.Fatalf("Expected ConnectionError, got %v", err)
		}
		mon.FailDiscoverPrimary = nil
		if err := topo.EnsureConnected(context.Background()); err != nil {
			t.Fatalf("Expected retry to succeed, got %v", err)
		}
		if mon.Dials() != 2 {
			t.Errorf("Expected two dials, got %d", mon.Dials())
		}
	})
}

// TestCancelledConnect tests that a cancelled connect publishes nothing
func TestCancelledConnect(t *testing.T) {
	mon := topotest.NewMonitor(t)
	ctx, cancel := context.WithCancel(context.Background())
	mon.BeforeDerive = func(role store.Role) {
		if role == store.RoleReplica {
			cancel()
		}
	}
	topo := topology.New(topotest.Config(), topology.ModeLazy, mon.Factory(), nil)

	err := topo.EnsureConnected(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if topo.State() != topology.StateDisconnected {
		t.Errorf("Expected disconnected after cancel, got %s", topo.State())
	}
	if _, err := topo.Replica(); !errors.Is(err, store.ErrInit) {
		t.Errorf("Expected InitError after cancel, got %v", err)
	}
	for _, c := range mon.Conns() {
		if !c.Closed() {
			t.Errorf("%s connection leaked after cancel", c.Role)
		}
	}
}

// TestWaitingForConnectIsCancellable tests that waiting on a running connect honours ctx
func TestWaitingForConnectIsCancellable(t *testing.T) {
	mon := topotest.NewMonitor(t)
	entered := make(chan struct{})
	unblock := make(chan struct{})
	mon.BeforeDerive = func(role store.Role) {
		if role == store.RolePrimary {
			close(entered)
			<-unblock
		}
	}
	topo := topology.New(topotest.Config(), topology.ModeLazy, mon.Factory(), nil)
	defer topo.Close()

	done := make(chan error, 1)
	go func() { done <- topo.EnsureConnected(context.Background()) }()
	<-entered

	if topo.State() != topology.StateConnecting {
		t.Errorf("Expected connecting, got %s", topo.State())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := topo.EnsureConnected(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected waiting caller to time out, got %v", err)
	}

	close(unblock)
	if err := <-done; err != nil {
		t.Fatalf("First connect failed: %v", err)
	}
	if !topo.Connected() {
		t.Errorf("Expected connected")
	}
}

// TestRediscover tests that rediscovery swaps in new connections and closes the old ones
func TestRediscover(t *testing.T) {
	mon := topotest.NewMonitor(t)
	topo := topology.New(topotest.Config(), topology.ModeEager, mon.Factory(), nil)
	defer topo.Close()

	if err := topo.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	old, _ := topo.Primary()

	if err := topo.Rediscover(context.Background()); err != nil {
		t.Fatalf("Rediscover failed: %v", err)
	}
	current, _ := topo.Primary()
	if current == old {
		t.Errorf("Expected a new primary connection")
	}
	if !old.(*topotest.Conn).Closed() {
		t.Errorf("Expected old primary connection to be closed")
	}

	// a failed rediscovery keeps the working connections
	mon.FailDiscoverPrimary = errors.New("sentinel lost quorum")
	if err := topo.Rediscover(context.Background()); !errors.Is(err, store.ErrConnection) {
		t.Fatalf("Expected ConnectionError, got %v", err)
	}
	kept, err := topo.Primary()
	if err != nil || kept != current {
		t.Errorf("Expected previous connection to stay published, got %v", err)
	}
	if !topo.Connected() {
		t.Errorf("Expected state to stay connected, got %s", topo.State())
	}
}

// TestClose tests that Close releases everything and is idempotent
func TestClose(t *testing.T) {
	mon := topotest.NewMonitor(t)
	topo := topology.New(topotest.Config(), topology.ModeEager, mon.Factory(), nil)

	if err := topo.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := topo.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := topo.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}

	if topo.State() != topology.StateDisconnected {
		t.Errorf("Expected disconnected after close, got %s", topo.State())
	}
	for _, c := range mon.Conns() {
		if !c.Closed() {
			t.Errorf("%s connection not closed", c.Role)
		}
	}
	if mon.CloseCount() != 1 {
		t.Errorf("Expected monitor closed once, got %d", mon.CloseCount())
	}
	if _, err := topo.Primary(); !errors.Is(err, store.ErrInit) {
		t.Errorf("Expected InitError after close, got %v", err)
	}
}

// roleHook counts the commands processed per role
type roleHook struct {
	count *int
}

func (h roleHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h roleHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		// connection handshakes (HELLO, CLIENT SETINFO) pass hooks too
		if name := cmd.Name(); name == "get" || name == "set" {
			*h.count++
		}
		return next(ctx, cmd)
	}
}

func (h roleHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

// TestHooksAttachedPerRole tests that every derived connection receives its role hook
func TestHooksAttachedPerRole(t *testing.T) {
	mon := topotest.NewMonitor(t)
	counts := map[store.Role]*int{store.RolePrimary: new(int), store.RoleReplica: new(int)}
	hooks := func(role store.Role) redis.Hook { return roleHook{count: counts[role]} }

	topo := topology.New(topotest.Config(), topology.ModeEager, mon.Factory(), hooks)
	defer topo.Close()
	if err := topo.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	ctx := context.Background()
	primary, _ := topo.Primary()
	replica, _ := topo.Replica()
	primary.Set(ctx, "k", "v", 0)
	replica.Get(ctx, "k")
	replica.Get(ctx, "k")

	if *counts[store.RolePrimary] != 1 || *counts[store.RoleReplica] != 2 {
		t.Errorf("Expected 1 primary and 2 replica commands, got %d and %d",
			*counts[store.RolePrimary], *counts[store.RoleReplica])
	}
}
