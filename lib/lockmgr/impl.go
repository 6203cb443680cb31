package lockmgr

import (
	"context"
	"errors"
	"time"

	"github.com/ValentinKolb/credis/lib/client"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/redis/go-redis/v9"
)

var log = logger.GetLogger("lockmgr")

type lockMgrImpl struct {
	backend Backend
}

func NewLockManager(backend Backend) ILockManager {
	return &lockMgrImpl{
		backend: backend,
	}
}

func (lm *lockMgrImpl) AcquireLock(ctx context.Context, key any, ttl time.Duration) (bool, string, error) {
	ownerID, err := generateOwnerID()
	if err != nil {
		return false, "", err
	}

	// SET NX is atomic, exactly one requester creates the key
	ok, err := lm.backend.Set(ctx, key, ownerID, client.SetOptions{Mode: client.SetNX, TTL: ttl})
	if err != nil {
		log.Warningf("acquiring lock %q failed: %v", lm.backend.MakeKey(key), err)
		return false, "", err
	}
	if !ok {
		log.Debugf("lock %q is held by someone else", lm.backend.MakeKey(key))
		return false, "", nil
	}
	return true, ownerID, nil
}

func (lm *lockMgrImpl) ReleaseLock(ctx context.Context, key any, ownerID string) (bool, error) {
	storeKey := lm.backend.MakeKey(key)
	released := false

	err := lm.backend.Transaction(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, storeKey).Bytes()
		if errors.Is(err, redis.Nil) {
			// nothing to release
			released = true
			return nil
		}
		if err != nil {
			return err
		}

		value, err := lm.backend.DecodeValue(raw)
		if err != nil {
			return err
		}
		if owner, _ := value.(string); owner != ownerID {
			return nil
		}

		// the delete only executes if the key was not touched since WATCH
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, storeKey)
			return nil
		})
		released = err == nil
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		log.Debugf("lock %q changed during release", storeKey)
		return false, nil
	}
	return released, err
}
