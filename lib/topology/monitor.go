package topology

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ValentinKolb/credis/lib/store"
)

// Config holds the immutable connection settings of a Topology.
type Config struct {
	Host           string        // host of the monitor (sentinel) node
	Port           int           // port of the monitor node
	Password       string        // optional credential for monitor and store nodes
	SocketTimeout  time.Duration // dial, read and write timeout of every connection
	MonitorSetName string        // name of the monitored primary set
}

// Addr returns the host:port address of the monitor node.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks that the config can be used to reach a monitor.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("monitor host must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid monitor port %d", c.Port)
	}
	if c.MonitorSetName == "" {
		return fmt.Errorf("monitor set name must not be empty")
	}
	if c.SocketTimeout < 0 {
		return fmt.Errorf("socket timeout must not be negative")
	}
	return nil
}

// ConnOptions are passed to the monitor when deriving role-bound connections.
type ConnOptions struct {
	SocketTimeout time.Duration
	Password      string
}

// Monitor is the interface to the monitoring cluster that tracks which node
// currently holds which role.
type Monitor interface {
	// DiscoverPrimary returns the address of the current primary of the set.
	DiscoverPrimary(ctx context.Context, name string) (string, error)
	// DiscoverReplicas returns the addresses of the healthy replicas of the set.
	DiscoverReplicas(ctx context.Context, name string) ([]string, error)
	// PrimaryFor returns a connection that always talks to the current primary.
	PrimaryFor(name string, opts ConnOptions) (store.Conn, error)
	// ReplicaFor returns a connection that talks to the replicas of the set.
	ReplicaFor(name string, opts ConnOptions) (store.Conn, error)
	// Close releases the connection to the monitor.
	Close() error
}

// MonitorFactory establishes the connection to the monitoring cluster.
type MonitorFactory func(ctx context.Context, conf Config) (Monitor, error)
