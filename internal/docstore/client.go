// Package docstore is an embedded document database on top of BadgerDB.
//
// Documents live in named collections and are addressed by id. The client supports
// merge-upserts, partial updates, atomic increments, server-side timestamps and
// equality/ordering queries, and reports failures as *Error values tagged with a Kind.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

// writeStripes is the number of locks that serialize writers of the same document.
const writeStripes = 256

// Backoff bounds between retries of a write transaction that hit a badger conflict.
const (
	minConflictBackoff = 100 * time.Microsecond
	maxConflictBackoff = 20 * time.Millisecond
)

// Options configures how the store is opened.
type Options struct {
	Path       string
	InMemory   bool
	ReadOnly   bool // Reject every write with KindPermissionDenied
	SyncWrites bool
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Client is a handle to an open store. It is safe for concurrent use.
type Client struct {
	db       *badger.DB
	logger   *slog.Logger
	readOnly bool
	inMemory bool
	now      func() time.Time

	mu      sync.RWMutex
	indexes map[string]map[string]struct{}

	// Writers of one document take the same stripe, so an increment never races itself.
	stripes [writeStripes]sync.Mutex
}

// Open opens (or creates) the store described by opts.
func Open(opts Options) (*Client, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, &Error{Kind: KindInvalidArgument, Op: "open", Err: errors.New("path is required unless in-memory")}
	}

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(opts.Path)
		bopts.SyncWrites = opts.SyncWrites
		bopts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}
	bopts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, wrap("open", "", "", fmt.Errorf("failed to open badger db: %w", err))
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	c := &Client{
		db:       db,
		logger:   opts.Logger,
		readOnly: opts.ReadOnly,
		inMemory: opts.InMemory,
		now:      clock,
		indexes:  make(map[string]map[string]struct{}),
	}

	if c.logger != nil {
		c.logger.Info("Document store opened",
			"path", opts.Path,
			"in_memory", opts.InMemory,
			"read_only", opts.ReadOnly,
		)
	}

	return c, nil
}

// Close gracefully closes the database.
func (c *Client) Close() error {
	if c.logger != nil {
		c.logger.Info("Closing document store")
	}
	return c.db.Close()
}

// Ping verifies the database still accepts reads.
func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrap("ping", "", "", err)
	}
	return wrap("ping", "", "", c.db.View(func(*badger.Txn) error { return nil }))
}

// ReadOnly reports whether the client rejects writes.
func (c *Client) ReadOnly() bool {
	return c.readOnly
}

// Collection returns a reference to the named collection.
func (c *Client) Collection(name string) *CollectionRef {
	return &CollectionRef{client: c, name: name}
}

// EnsureIndex declares an equality index on collection.field and backfills
// entries for documents that already exist. Only string values are indexed;
// queries on other values fall back to a scan.
func (c *Client) EnsureIndex(ctx context.Context, collection, field string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	c.mu.Lock()
	fields, ok := c.indexes[collection]
	if !ok {
		fields = make(map[string]struct{})
		c.indexes[collection] = fields
	}
	fields[field] = struct{}{}
	c.mu.Unlock()

	if c.readOnly {
		return nil
	}

	snaps, err := c.Collection(collection).Documents(ctx)
	if err != nil {
		return err
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, snap := range snaps {
		if s, ok := snap.data[field].(string); ok {
			if err := wb.Set(indexKey(collection, field, s, snap.ID), nil); err != nil {
				return wrap("ensure index", collection, snap.ID, err)
			}
		}
	}
	return wrap("ensure index", collection, "", wb.Flush())
}

func (c *Client) isIndexed(collection, field string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.indexes[collection][field]
	return ok
}

func (c *Client) indexedFields(collection string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fields := make([]string, 0, len(c.indexes[collection]))
	for f := range c.indexes[collection] {
		fields = append(fields, f)
	}
	return fields
}

// update runs fn in a read-write transaction. Writers of the same document are
// serialized, and a transaction that still hits a conflict (index keys, backfills)
// is retried with capped exponential backoff until it commits or ctx is done, so
// read-modify-write sequences such as Increment never lose or drop updates.
func (c *Client) update(ctx context.Context, op, collection, id string, fn func(txn *badger.Txn, now time.Time) error) error {
	if c.readOnly {
		return &Error{Kind: KindPermissionDenied, Op: op, Collection: collection, ID: id, Err: errors.New("store is read-only")}
	}

	lock := c.stripe(collection, id)
	backoff := minConflictBackoff
	for {
		if err := ctx.Err(); err != nil {
			return wrap(op, collection, id, err)
		}

		now := c.now()
		lock.Lock()
		err := c.db.Update(func(txn *badger.Txn) error {
			return fn(txn, now)
		})
		lock.Unlock()
		if !errors.Is(err, badger.ErrConflict) {
			return wrap(op, collection, id, err)
		}

		// Jitter keeps contending writers from retrying in lockstep.
		wait := backoff/2 + rand.N(backoff/2+1)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return wrap(op, collection, id, ctx.Err())
		case <-timer.C:
		}
		backoff = min(backoff*2, maxConflictBackoff)
	}
}

// stripe returns the lock guarding writes to collection/id.
func (c *Client) stripe(collection, id string) *sync.Mutex {
	return &c.stripes[xxhash.Sum64String(collection+"/"+id)%writeStripes]
}

// view runs fn in a read-only transaction.
func (c *Client) view(ctx context.Context, op, collection, id string, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return wrap(op, collection, id, err)
	}
	return wrap(op, collection, id, c.db.View(fn))
}

// CollectGarbage runs value log garbage collection until there is nothing left to rewrite.
// It returns the number of value log files rewritten.
func (c *Client) CollectGarbage(ctx context.Context) (int, error) {
	if c.inMemory {
		return 0, nil
	}

	rewritten := 0
	for {
		if err := ctx.Err(); err != nil {
			return rewritten, wrap("gc", "", "", err)
		}
		err := c.db.RunValueLogGC(0.5)
		switch {
		case err == nil:
			rewritten++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected), errors.Is(err, badger.ErrGCInMemoryMode):
			return rewritten, nil
		default:
			return rewritten, wrap("gc", "", "", err)
		}
	}
}
