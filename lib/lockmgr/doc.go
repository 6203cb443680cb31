// Package lockmgr implements a locking mechanism on top of the namespaced
// client. It provides a simple way to coordinate access to shared resources
// across multiple processes that talk to the same Redis deployment.
//
// The lockmgr only ever stores in the provided Backend and has no other
// internal state. Therefore it is safe to be created multiple times on the
// same client, even once per acquire or release. Lock keys live in the
// namespace of the client, so two tenants never share a lock.
//
// Core Functionality:
//   - Lock acquisition with a random owner ID
//   - Automatic lock expiration through an optional TTL
//   - Release operations that verify ownership
//
// Implementation Approach:
//
//	- Lock Acquisition: SET with NX creates the key only if it does not
//	  exist, so only one requester can succeed. The value is a randomly
//	  generated owner ID (encoded with the client codec) that identifies
//	  the lock holder.
//
//	- Timeouts: A ttl > 0 lets the store delete the key after that period,
//	  which releases locks of crashed holders.
//
//	- Safe Release: ReleaseLock WATCHes the key, compares the stored owner
//	  ID and deletes the key in a MULTI/EXEC block. If the key changes in
//	  between, the transaction fails and the lock is reported as not
//	  released.
//
// All lock operations are writes and therefore run on the primary.
//
// Usage Example:
//
//	locks := lockmgr.NewLockManager(c)
//
//	acquired, ownerID, err := locks.AcquireLock(ctx, "resource:123", 30*time.Second)
//	if err != nil {
//	    // Handle error
//	}
//
//	if acquired {
//	    // Use the resource
//	    // ...
//
//	    released, err := locks.ReleaseLock(ctx, "resource:123", ownerID)
//	    if err != nil {
//	        // Handle error
//	    }
//	}
//
// Security Considerations:
//
//	Owner IDs are 256 random bits, which protects against accidental lock
//	stealing. It is not designed to resist malicious attacks: anyone with
//	access to the store can manipulate lock keys directly.
package lockmgr
