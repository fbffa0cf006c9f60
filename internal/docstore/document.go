package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/reychango/reychango-server/internal/id"
)

// CollectionRef names a collection of documents.
type CollectionRef struct {
	client *Client
	name   string
}

// Name returns the collection name.
func (c *CollectionRef) Name() string {
	return c.name
}

// Doc returns a reference to the document with the given id.
func (c *CollectionRef) Doc(docID string) *DocumentRef {
	return &DocumentRef{coll: c, ID: docID}
}

// Add creates a document with a generated id and returns its reference.
func (c *CollectionRef) Add(ctx context.Context, data Data) (*DocumentRef, error) {
	if err := validateCollection(c.name); err != nil {
		return nil, err
	}
	ref := c.Doc(id.NewDocumentID())
	err := c.client.update(ctx, "add", c.name, ref.ID, func(txn *badger.Txn, now time.Time) error {
		if _, err := txn.Get(docKey(c.name, ref.ID)); err == nil {
			return &Error{Kind: KindAlreadyExists}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		doc, err := applyFields(nil, data, now)
		if err != nil {
			return err
		}
		return c.client.writeDoc(txn, c.name, ref.ID, nil, doc)
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// Documents returns every document in the collection ordered by id.
func (c *CollectionRef) Documents(ctx context.Context) ([]*Snapshot, error) {
	return c.Query().Documents(ctx)
}

// Empty reports whether the collection holds no documents.
func (c *CollectionRef) Empty(ctx context.Context) (bool, error) {
	if err := validateCollection(c.name); err != nil {
		return false, err
	}
	empty := true
	err := c.client.view(ctx, "empty", c.name, "", func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := collectionPrefix(c.name)
		it.Seek(prefix)
		empty = !it.ValidForPrefix(prefix)
		return nil
	})
	return empty, err
}

// DocumentRef addresses a single document.
type DocumentRef struct {
	coll *CollectionRef
	ID   string
}

// Get reads the document. A missing document is a KindNotFound error.
func (d *DocumentRef) Get(ctx context.Context) (*Snapshot, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	var snap *Snapshot
	err := d.coll.client.view(ctx, "get", d.coll.name, d.ID, func(txn *badger.Txn) error {
		data, err := readDoc(txn, d.coll.name, d.ID)
		if err != nil {
			return err
		}
		snap = &Snapshot{ID: d.ID, Collection: d.coll.name, data: data}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SetOption changes how Set treats an existing document.
type SetOption int

// MergeAll keeps fields of the existing document that data does not mention.
const MergeAll SetOption = 1

// Set writes the document, replacing it unless MergeAll is given.
func (d *DocumentRef) Set(ctx context.Context, data Data, opts ...SetOption) error {
	if err := d.validate(); err != nil {
		return err
	}
	merge := false
	for _, o := range opts {
		if o == MergeAll {
			merge = true
		}
	}

	return d.coll.client.update(ctx, "set", d.coll.name, d.ID, func(txn *badger.Txn, now time.Time) error {
		old, err := readDoc(txn, d.coll.name, d.ID)
		if err != nil && !IsNotFound(err) {
			return err
		}
		base := old
		if !merge {
			base = nil
		}
		doc, err := applyFields(base, data, now)
		if err != nil {
			return err
		}
		return d.coll.client.writeDoc(txn, d.coll.name, d.ID, old, doc)
	})
}

// Update changes the named fields of an existing document.
// Updating a missing document is a KindNotFound error.
func (d *DocumentRef) Update(ctx context.Context, fields Data) error {
	if err := d.validate(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return &Error{Kind: KindInvalidArgument, Op: "update", Collection: d.coll.name, ID: d.ID, Err: errors.New("no fields to update")}
	}

	return d.coll.client.update(ctx, "update", d.coll.name, d.ID, func(txn *badger.Txn, now time.Time) error {
		old, err := readDoc(txn, d.coll.name, d.ID)
		if err != nil {
			return err
		}
		doc, err := applyFields(old, fields, now)
		if err != nil {
			return err
		}
		return d.coll.client.writeDoc(txn, d.coll.name, d.ID, old, doc)
	})
}

// Delete removes the document. Deleting a missing document succeeds.
func (d *DocumentRef) Delete(ctx context.Context) error {
	if err := d.validate(); err != nil {
		return err
	}
	return d.coll.client.update(ctx, "delete", d.coll.name, d.ID, func(txn *badger.Txn, _ time.Time) error {
		old, err := readDoc(txn, d.coll.name, d.ID)
		if IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, field := range d.coll.client.indexedFields(d.coll.name) {
			if s, ok := old[field].(string); ok {
				if err := txn.Delete(indexKey(d.coll.name, field, s, d.ID)); err != nil {
					return err
				}
			}
		}
		return txn.Delete(docKey(d.coll.name, d.ID))
	})
}

func (d *DocumentRef) validate() error {
	if err := validateCollection(d.coll.name); err != nil {
		return err
	}
	return validateID(d.coll.name, d.ID)
}

// Snapshot is a document as read at one point in time.
type Snapshot struct {
	ID         string
	Collection string
	data       Data
}

// Data returns a copy of the document fields.
func (s *Snapshot) Data() Data {
	return copyData(s.data)
}

// DataTo decodes the document fields into v using JSON field tags.
// Timestamp fields decode into time.Time or string targets.
func (s *Snapshot) DataTo(v any) error {
	b, err := json.Marshal(plain(s.data))
	if err != nil {
		return &Error{Kind: KindInternal, Op: "decode", Collection: s.Collection, ID: s.ID, Err: err}
	}
	if err := json.Unmarshal(b, v); err != nil {
		return &Error{Kind: KindInvalidArgument, Op: "decode", Collection: s.Collection, ID: s.ID, Err: err}
	}
	return nil
}

// plain replaces Timestamps with RFC 3339 strings so the result decodes into ordinary structs.
func plain(v any) any {
	switch x := v.(type) {
	case Timestamp:
		return x.t.Format(time.RFC3339Nano)
	case Data:
		return plain(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = plain(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// applyFields resolves data against base and returns the resulting document.
func applyFields(base, data Data, now time.Time) (Data, error) {
	doc := copyData(base)
	for field, value := range data {
		if field == "" {
			return nil, &Error{Kind: KindInvalidArgument, Err: errors.New("empty field name")}
		}
		old, hasOld := base[field]
		resolved, err := resolveField(field, value, old, hasOld, now)
		if err != nil {
			return nil, err
		}
		doc[field] = resolved
	}
	return doc, nil
}

func readDoc(txn *badger.Txn, collection, docID string) (Data, error) {
	item, err := txn.Get(docKey(collection, docID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, &Error{Kind: KindNotFound, Err: fmt.Errorf("document %s/%s does not exist", collection, docID)}
		}
		return nil, err
	}
	var data Data
	err = item.Value(func(val []byte) error {
		var decErr error
		data, decErr = decodeDocument(val)
		return decErr
	})
	if err != nil {
		return nil, &Error{Kind: KindInternal, Err: err}
	}
	return data, nil
}

// writeDoc stores doc and keeps index entries in step with the change from old.
func (c *Client) writeDoc(txn *badger.Txn, collection, docID string, old, doc Data) error {
	b, err := encodeDocument(doc)
	if err != nil {
		return &Error{Kind: KindInvalidArgument, Err: err}
	}

	for _, field := range c.indexedFields(collection) {
		oldVal, oldOK := old[field].(string)
		newVal, newOK := doc[field].(string)
		if oldOK && (!newOK || oldVal != newVal) {
			if err := txn.Delete(indexKey(collection, field, oldVal, docID)); err != nil {
				return err
			}
		}
		if newOK && (!oldOK || oldVal != newVal) {
			if err := txn.Set(indexKey(collection, field, newVal, docID), nil); err != nil {
				return err
			}
		}
	}

	return txn.Set(docKey(collection, docID), b)
}
