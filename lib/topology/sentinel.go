package topology

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/redis/go-redis/v9"
)

// sentinelMonitor implements Monitor on top of Redis Sentinel
type sentinelMonitor struct {
	addr     string
	password string
	client   *redis.SentinelClient
}

// DialSentinel is the MonitorFactory for Redis Sentinel. It connects to the
// sentinel at conf.Addr() and verifies the connection with a PING.
func DialSentinel(ctx context.Context, conf Config) (Monitor, error) {
	client := redis.NewSentinelClient(&redis.Options{
		Addr:         conf.Addr(),
		Password:     conf.Password,
		DialTimeout:  conf.SocketTimeout,
		ReadTimeout:  conf.SocketTimeout,
		WriteTimeout: conf.SocketTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &sentinelMonitor{
		addr:     conf.Addr(),
		password: conf.Password,
		client:   client,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see topology.Monitor)
// --------------------------------------------------------------------------

func (s *sentinelMonitor) DiscoverPrimary(ctx context.Context, name string) (string, error) {
	addr, err := s.client.GetMasterAddrByName(ctx, name).Result()
	if err != nil {
		return "", fmt.Errorf("discover primary of %s: %w", name, err)
	}
	if len(addr) != 2 {
		return "", fmt.Errorf("discover primary of %s: unexpected reply %v", name, addr)
	}
	return net.JoinHostPort(addr[0], addr[1]), nil
}

func (s *sentinelMonitor) DiscoverReplicas(ctx context.Context, name string) ([]string, error) {
	replicas, err := s.client.Replicas(ctx, name).Result()
	if err != nil {
		return nil, fmt.Errorf("discover replicas of %s: %w", name, err)
	}

	addrs := make([]string, 0, len(replicas))
	for _, r := range replicas {
		if !replicaHealthy(r["flags"]) {
			continue
		}
		addrs = append(addrs, net.JoinHostPort(r["ip"], r["port"]))
	}
	return addrs, nil
}

func (s *sentinelMonitor) PrimaryFor(name string, opts ConnOptions) (store.Conn, error) {
	return redis.NewFailoverClient(s.failoverOptions(name, opts, false)), nil
}

func (s *sentinelMonitor) ReplicaFor(name string, opts ConnOptions) (store.Conn, error) {
	return redis.NewFailoverClient(s.failoverOptions(name, opts, true)), nil
}

func (s *sentinelMonitor) Close() error {
	return s.client.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *sentinelMonitor) failoverOptions(name string, opts ConnOptions, replicaOnly bool) *redis.FailoverOptions {
	return &redis.FailoverOptions{
		MasterName:       name,
		SentinelAddrs:    []string{s.addr},
		SentinelPassword: s.password,
		Password:         opts.Password,
		DialTimeout:      opts.SocketTimeout,
		ReadTimeout:      opts.SocketTimeout,
		WriteTimeout:     opts.SocketTimeout,
		ReplicaOnly:      replicaOnly,
	}
}

// replicaHealthy reports whether a replica with the given sentinel flags can
// serve reads
func replicaHealthy(flags string) bool {
	for _, f := range strings.Split(flags, ",") {
		switch f {
		case "s_down", "o_down", "disconnected":
			return false
		}
	}
	return true
}
