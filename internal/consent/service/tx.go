package service

import (
	"context"
	"sync"
	"time"

	dErrors "veil/pkg/domain-errors"
)

// Tx provides a transactional boundary for consent store mutations.
// Implementations may wrap a database transaction or, in-memory, a
// per-subject lock.
type Tx interface {
	RunInTx(ctx context.Context, subjectID string, fn func() error) error
}

// shardedTx provides fine-grained locking using sharded mutexes. Instead of
// a single global lock, operations are distributed across N shards based on
// a hash of the subject ID, so unrelated subjects stay independent while two
// concurrent mutations for the same subject serialize.
const numShards = 128

// defaultTxTimeout is the maximum duration for a consent mutation.
const defaultTxTimeout = 5 * time.Second

type shardedTx struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func newShardedTx(timeout time.Duration) *shardedTx {
	return &shardedTx{timeout: timeout}
}

func (t *shardedTx) RunInTx(ctx context.Context, subjectID string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashSubject(subjectID) % numShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn()
}

// hashSubject uses FNV-1a for even shard distribution.
func hashSubject(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
