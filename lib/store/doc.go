// Package store holds the vocabulary shared by all other packages of credis:
// the role-bound connection contract, the static command routing table and the
// error kinds raised by the access layer.
//
// Key Components:
//
//   - Conn: A connection bound to one replica role. The same method set serves
//     the primary and the replicas, which role a Conn represents is decided by
//     the topology package that hands it out. *redis.Client from go-redis
//     satisfies the interface.
//
//   - Role table: Every operation of the client facade is statically mapped to
//     either RolePrimary (all mutations) or RoleReplica (all reads). The mapping
//     is total over the exposed operations and never depends on call arguments.
//
//   - Error System: A single *Error type carrying a RetCode. Four codes exist:
//     ConnectionError (REDIS_2001), SentinelError (REDIS_2002), InitError
//     (REDIS_2003) and DecodeError (REDIS_2004). Use errors.Is with the
//     ErrConnection, ErrSentinel, ErrInit and ErrDecode values to test for a
//     kind. Errors reported by the store engine itself are passed through as-is.
package store
