// Package topology manages the connections of a credis client to a Redis
// deployment supervised by a monitoring cluster (Redis Sentinel).
//
// A Topology owns exactly one connection to the monitor and two role-bound
// store connections derived from it: one to the current primary and one to
// the replicas. It moves through the states
//
//	Disconnected -> Connecting -> Connected
//
// and publishes both role connections together, so Connected always implies
// that both are available.
//
// Modes:
//
//   - ModeEager: the owning client connects once at construction. A failure
//     there is terminal and EnsureConnected never re-checks.
//   - ModeLazy: nothing is dialed up front. EnsureConnected runs before every
//     operation and connects when needed, so a failure is retried on the next
//     call. Concurrent callers wait for one connect, and waiting honours the
//     caller's context.
//
// Failover:
//
//	The role connections returned by DialSentinel follow the primary through
//	the go-redis failover client, but this package never re-runs discovery on
//	its own. Callers that observe a demoted primary call Rediscover.
//
// Errors:
//
//	An unreachable or misconfigured monitor is reported as store.ErrSentinel,
//	failed discovery or connection derivation as store.ErrConnection and an
//	absent role connection as store.ErrInit.
package topology
