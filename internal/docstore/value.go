package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// Data holds the top-level fields of a document.
type Data map[string]any

// timestampKey marks an encoded Timestamp inside stored JSON.
const timestampKey = "__ts"

// Timestamp is the store-native time value. Fields written with ServerTimestamp
// or as time.Time come back as Timestamp.
type Timestamp struct {
	t time.Time
}

// NewTimestamp wraps t as a store timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC()}
}

// Time returns the wrapped time in UTC.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// IsZero reports whether the timestamp holds the zero time.
func (ts Timestamp) IsZero() bool {
	return ts.t.IsZero()
}

// MarshalJSON encodes the timestamp as a tagged object so it survives a round trip.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{timestampKey: ts.t.Format(time.RFC3339Nano)})
}

// UnmarshalJSON decodes the tagged object written by MarshalJSON.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s, ok := raw[timestampKey]
	if !ok {
		return fmt.Errorf("timestamp: missing %q", timestampKey)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	ts.t = t.UTC()
	return nil
}

// serverTimestamp is replaced by the commit time when a write is applied.
type serverTimestamp struct{}

// ServerTimestamp asks the store to stamp a field with its own clock at commit time.
var ServerTimestamp = serverTimestamp{}

// increment adds delta to the stored number inside the write transaction.
type increment struct {
	delta int64
}

// Increment asks the store to add n to a numeric field atomically.
// A missing field counts as zero.
func Increment(n int64) any {
	return increment{delta: n}
}

// resolveField applies a sentinel against the previous value of the field.
func resolveField(field string, value, old any, hasOld bool, now time.Time) (any, error) {
	switch v := value.(type) {
	case serverTimestamp:
		return NewTimestamp(now), nil
	case increment:
		if !hasOld || old == nil {
			return v.delta, nil
		}
		switch o := old.(type) {
		case int64:
			return o + v.delta, nil
		case float64:
			return o + float64(v.delta), nil
		default:
			return nil, &Error{Kind: KindInvalidArgument, Err: fmt.Errorf("field %q is not numeric", field)}
		}
	default:
		return normalize(value)
	}
}

// normalize converts a Go value into the small set of types the store persists:
// nil, bool, int64, float64, string, Timestamp, []any and map[string]any.
//
//nolint:gocyclo // Type switch over supported value shapes.
func normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil, bool, string, int64, float64, Timestamp:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return uintToInt(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt(v)
	case float32:
		return float64(v), nil
	case time.Time:
		return NewTimestamp(v), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return NewTimestamp(*v), nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case Data:
		return normalizeMap(v)
	case map[string]any:
		return normalizeMap(v)
	case serverTimestamp, increment:
		return nil, &Error{Kind: KindInvalidArgument, Err: fmt.Errorf("sentinel values are only allowed on top-level fields")}
	default:
		// Structs, typed slices and maps go through JSON once and are normalized from there.
		b, err := json.Marshal(v)
		if err != nil {
			return nil, &Error{Kind: KindInvalidArgument, Err: err}
		}
		decoded, err := decodeValue(b)
		if err != nil {
			return nil, &Error{Kind: KindInvalidArgument, Err: err}
		}
		return decoded, nil
	}
}

func normalizeMap(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, item := range m {
		n, err := normalize(item)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}

func uintToInt(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return float64(v), nil
	}
	return int64(v), nil
}

// encodeDocument serializes the document fields for storage.
func encodeDocument(d Data) ([]byte, error) {
	return json.Marshal(map[string]any(d))
}

// decodeDocument parses stored bytes back into document fields.
func decodeDocument(b []byte) (Data, error) {
	v, err := decodeValue(b)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("stored document is not an object")
	}
	return Data(m), nil
}

func decodeValue(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return revive(v), nil
}

// revive turns json.Number into int64 or float64 and tagged objects into Timestamp.
func revive(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		if len(x) == 1 {
			if s, ok := x[timestampKey].(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					return NewTimestamp(t)
				}
			}
		}
		for k, item := range x {
			x[k] = revive(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = revive(item)
		}
		return x
	default:
		return v
	}
}

// copyData returns a shallow copy of d.
func copyData(d Data) Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// typeRank orders values of different types the way document databases do:
// null, booleans, numbers, timestamps, strings, arrays, maps.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, float64:
		return 2
	case Timestamp:
		return 3
	case string:
		return 4
	case []any:
		return 5
	default:
		return 6
	}
}

// compareValues returns -1, 0 or 1. Values must already be normalized.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}

	switch x := a.(type) {
	case nil:
		return 0
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int64, float64:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case Timestamp:
		return x.t.Compare(b.(Timestamp).t)
	case string:
		return strings.Compare(x, b.(string))
	case []any:
		y := b.([]any)
		for i := 0; i < len(x) && i < len(y); i++ {
			if c := compareValues(x[i], y[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(x), len(y))
	default:
		return 0
	}
}

// valuesEqual reports whether two normalized values are equal for query purposes.
func valuesEqual(a, b any) bool {
	if typeRank(a) != typeRank(b) {
		return false
	}
	switch a.(type) {
	case int64, float64:
		return toFloat(a) == toFloat(b)
	case Timestamp:
		return a.(Timestamp).t.Equal(b.(Timestamp).t)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
