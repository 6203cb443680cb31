package client

import (
	"context"
)

// fetchFunc loads the page at cursor and returns the next cursor
type fetchFunc[T any] func(ctx context.Context, cursor uint64) ([]T, uint64, error)

// An Iter traverses the elements of one full scan pass.
//
// It drives the cursor protocol of the store: pages are fetched lazily as
// Next runs dry and the pass ends when the store returns cursor 0. Elements
// may repeat if the data changes during the pass, as with SCAN itself.
//
// Closing an Iter causes Next to return false and releases its context.
// A fetch in flight is aborted by cancelling the context passed to the
// constructing call. An Iter is not safe for concurrent use.
//
// A common use of an Iter is a for loop:
//
//	iter := client.ScanIter(ctx, client.ScanOptions{Match: "user:*"})
//	for key, ok := iter.Next(); ok; key, ok = iter.Next() {
//	    _ = key
//	}
//	if err := iter.Close(); err != nil {
//	    // handle errors of the scan
//	}
type Iter[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	fetch  fetchFunc[T]

	page    []T
	cursor  uint64
	started bool
	done    bool
	err     error
}

func newIter[T any](ctx context.Context, fetch fetchFunc[T]) *Iter[T] {
	ctx, cancel := context.WithCancel(ctx)
	return &Iter[T]{
		ctx:    ctx,
		cancel: cancel,
		fetch:  fetch,
	}
}

// Next returns the next element, if any, and reports whether there was
// one. Once Next returns false, Close returns the first error encountered.
func (it *Iter[T]) Next() (T, bool) {
	for len(it.page) == 0 {
		if it.done || (it.started && it.cursor == 0) {
			it.finish()
			var zero T
			return zero, false
		}

		page, cursor, err := it.fetch(it.ctx, it.cursor)
		it.started = true
		if err != nil {
			it.err = err
			it.finish()
			var zero T
			return zero, false
		}
		it.page, it.cursor = page, cursor
	}

	v := it.page[0]
	it.page = it.page[1:]
	return v, true
}

// Err returns the first error encountered, if any.
func (it *Iter[T]) Err() error {
	return it.err
}

// Close stops the Iter and returns the first error encountered, if any.
func (it *Iter[T]) Close() error {
	it.finish()
	return it.err
}

func (it *Iter[T]) finish() {
	if !it.done {
		it.done = true
		it.page = nil
		it.cancel()
	}
}
