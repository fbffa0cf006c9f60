// Package id generates document identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// documentAlphabet keeps document ids alphanumeric so they are safe in URLs and store keys.
const documentAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DocumentIDLength is the length of ids produced by NewDocumentID.
const DocumentIDLength = 20

// NewDocumentID returns a random 20 character alphanumeric id for a new document.
// It panics only when the system runs out of entropy.
func NewDocumentID() string {
	id, err := gonanoid.Generate(documentAlphabet, DocumentIDLength)
	if err != nil {
		panic(fmt.Sprintf("failed to generate document ID: %v", err))
	}
	return id
}
