package docstore

import (
	"fmt"
	"strings"
)

// Key layout:
//
//	doc:{collection}:{id}                        -> JSON document
//	idx:{collection}:{field}\x00{value}\x00{id}  -> empty (equality index entry)
const (
	docPrefix = "doc:"
	idxPrefix = "idx:"
	sep       = "\x00"
)

func collectionPrefix(collection string) []byte {
	return []byte(docPrefix + collection + ":")
}

func docKey(collection, id string) []byte {
	return []byte(docPrefix + collection + ":" + id)
}

func indexFieldPrefix(collection, field string) string {
	return idxPrefix + collection + ":" + field + sep
}

func indexValuePrefix(collection, field, value string) []byte {
	return []byte(indexFieldPrefix(collection, field) + value + sep)
}

func indexKey(collection, field, value, id string) []byte {
	return []byte(indexFieldPrefix(collection, field) + value + sep + id)
}

// idFromIndexKey extracts the document id from an index entry.
func idFromIndexKey(key []byte) string {
	k := string(key)
	i := strings.LastIndex(k, sep)
	if i < 0 {
		return ""
	}
	return k[i+1:]
}

func validateCollection(name string) error {
	if name == "" || strings.ContainsAny(name, ":/"+sep) {
		return &Error{Kind: KindInvalidArgument, Collection: name, Err: fmt.Errorf("invalid collection name %q", name)}
	}
	return nil
}

func validateID(collection, id string) error {
	if id == "" || strings.ContainsAny(id, "/"+sep) {
		return &Error{Kind: KindInvalidArgument, Collection: collection, ID: id, Err: fmt.Errorf("invalid document id %q", id)}
	}
	return nil
}
