package docstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

// Direction is the sort order of a query.
type Direction int

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

type filter struct {
	field string
	value any
}

// Query selects documents from a collection. Queries are immutable;
// each builder method returns a new Query.
type Query struct {
	coll     *CollectionRef
	filters  []filter
	orderBy  string
	dir      Direction
	limit    int
	buildErr error
}

// Query starts a query over every document in the collection.
func (c *CollectionRef) Query() *Query {
	return &Query{coll: c}
}

// Where starts a filtered query. See Query.Where.
func (c *CollectionRef) Where(field, op string, value any) *Query {
	return c.Query().Where(field, op, value)
}

// OrderBy starts an ordered query. See Query.OrderBy.
func (c *CollectionRef) OrderBy(field string, dir Direction) *Query {
	return c.Query().OrderBy(field, dir)
}

// Where keeps only documents whose field equals value. "==" is the only supported operator.
func (q *Query) Where(field, op string, value any) *Query {
	out := q.clone()
	if op != "==" {
		out.buildErr = &Error{Kind: KindInvalidArgument, Op: "query", Collection: q.coll.name, Err: fmt.Errorf("unsupported operator %q", op)}
		return out
	}
	v, err := normalize(value)
	if err != nil {
		out.buildErr = err
		return out
	}
	out.filters = append(out.filters, filter{field: field, value: v})
	return out
}

// OrderBy sorts results by field. Documents without the field are left out.
func (q *Query) OrderBy(field string, dir Direction) *Query {
	out := q.clone()
	out.orderBy = field
	out.dir = dir
	return out
}

// Limit caps the number of results. Zero or less means no limit.
func (q *Query) Limit(n int) *Query {
	out := q.clone()
	out.limit = n
	return out
}

func (q *Query) clone() *Query {
	out := *q
	out.filters = append([]filter(nil), q.filters...)
	return &out
}

// Documents runs the query. Results are ordered by id unless OrderBy was given;
// ties keep id order.
func (q *Query) Documents(ctx context.Context) ([]*Snapshot, error) {
	if q.buildErr != nil {
		return nil, q.buildErr
	}
	if err := validateCollection(q.coll.name); err != nil {
		return nil, err
	}

	var results []*Snapshot
	err := q.coll.client.view(ctx, "query", q.coll.name, "", func(txn *badger.Txn) error {
		var err error
		if f, ok := q.indexedFilter(); ok {
			results, err = q.scanIndex(ctx, txn, f)
		} else {
			results, err = q.scanCollection(ctx, txn)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if q.orderBy != "" {
		sort.SliceStable(results, func(i, j int) bool {
			c := compareValues(results[i].data[q.orderBy], results[j].data[q.orderBy])
			if q.dir == Desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.limit > 0 && len(results) > q.limit {
		results = results[:q.limit]
	}
	return results, nil
}

// indexedFilter returns a filter that can be served from an index.
func (q *Query) indexedFilter() (filter, bool) {
	for _, f := range q.filters {
		if _, ok := f.value.(string); ok && q.coll.client.isIndexed(q.coll.name, f.field) {
			return f, true
		}
	}
	return filter{}, false
}

func (q *Query) scanCollection(ctx context.Context, txn *badger.Txn) ([]*Snapshot, error) {
	prefix := collectionPrefix(q.coll.name)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var out []*Snapshot
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := it.Item()
		docID := string(bytes.TrimPrefix(item.Key(), prefix))
		var data Data
		err := item.Value(func(val []byte) error {
			var decErr error
			data, decErr = decodeDocument(val)
			return decErr
		})
		if err != nil {
			return nil, &Error{Kind: KindInternal, Err: err}
		}
		if q.matches(data) {
			out = append(out, &Snapshot{ID: docID, Collection: q.coll.name, data: data})
		}
	}
	return out, nil
}

func (q *Query) scanIndex(ctx context.Context, txn *badger.Txn, f filter) ([]*Snapshot, error) {
	prefix := indexValuePrefix(q.coll.name, f.field, f.value.(string))
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []*Snapshot
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docID := idFromIndexKey(it.Item().Key())
		data, err := readDoc(txn, q.coll.name, docID)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		// Entries are re-checked against the document so a stale index never leaks a result.
		if q.matches(data) {
			out = append(out, &Snapshot{ID: docID, Collection: q.coll.name, data: data})
		}
	}
	return out, nil
}

func (q *Query) matches(data Data) bool {
	for _, f := range q.filters {
		v, ok := data[f.field]
		if !ok || !valuesEqual(v, f.value) {
			return false
		}
	}
	if q.orderBy != "" {
		if _, ok := data[q.orderBy]; !ok {
			return false
		}
	}
	return true
}
