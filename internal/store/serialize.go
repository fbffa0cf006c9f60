package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/reychango/reychango-server/internal/docstore"
)

// isoLayout matches JavaScript's Date.toISOString, which the site's clients expect.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatISO renders t the way timestamps leave the repository.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// toPlain replaces store timestamps with ISO-8601 strings at any depth.
func toPlain(v any) any {
	switch x := v.(type) {
	case docstore.Timestamp:
		return FormatISO(x.Time())
	case docstore.Data:
		return toPlain(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = toPlain(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = toPlain(item)
		}
		return out
	default:
		return v
	}
}

// decode converts a snapshot into a domain value with every timestamp as an ISO string.
func decode[T any](snap *docstore.Snapshot) (*T, error) {
	b, err := json.Marshal(toPlain(snap.Data()))
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", snap.Collection, snap.ID, err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", snap.Collection, snap.ID, err)
	}
	return &out, nil
}

// decodeAll decodes snapshots in order, skipping documents that do not fit T.
func decodeAll[T any](s *Store, snaps []*docstore.Snapshot, setID func(*T, string)) []*T {
	out := make([]*T, 0, len(snaps))
	for _, snap := range snaps {
		v, err := decode[T](snap)
		if err != nil {
			s.logger.Warn("skipping malformed document", "collection", snap.Collection, "id", snap.ID, "error", err)
			continue
		}
		setID(v, snap.ID)
		out = append(out, v)
	}
	return out
}
