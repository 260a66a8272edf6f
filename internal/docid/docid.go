// Package docid generates and parses document identifiers.
//
// Identifiers have the form
//
//	<kind>/<timestamp>/<nonce>
//
// where timestamp is a millisecond Unix epoch zero-padded to a fixed width, so the
// lexical order of identifiers of one kind equals their chronological order. The
// same (kind, timestamp, nonce) always yields the same identifier, which is what
// makes repeated imports of the same history item collide instead of duplicating.
package docid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind is the document family an identifier belongs to.
type Kind string

const (
	KindPage   Kind = "page"
	KindVisit  Kind = "visit"
	KindImport Kind = "import"
)

const timestampWidth = 16

// ErrMalformed is returned by Parse for identifiers that don't follow the scheme.
var ErrMalformed = errors.New("malformed document id")

// ID is a parsed document identifier.
type ID struct {
	Kind      Kind
	Timestamp int64
	Nonce     string
}

// String renders the identifier back to its canonical form.
func (id ID) String() string {
	return Make(id.Kind, id.Timestamp, id.Nonce)
}

// Make builds an identifier. Negative timestamps are clamped to zero.
func Make(kind Kind, timestamp int64, nonce string) string {
	if timestamp < 0 {
		timestamp = 0
	}
	return fmt.Sprintf("%s/%0*d/%s", kind, timestampWidth, timestamp, nonce)
}

// Parse splits an identifier into its parts.
func Parse(raw string) (ID, error) {
	parts := strings.SplitN(raw, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || ts < 0 {
		return ID{}, fmt.Errorf("%w: bad timestamp in %q", ErrMalformed, raw)
	}

	return ID{Kind: Kind(parts[0]), Timestamp: ts, Nonce: parts[2]}, nil
}

// Prefix returns the common prefix of all identifiers of a kind, for range scans.
func Prefix(kind Kind) string {
	return string(kind) + "/"
}

// NewNonce returns a random nonce for documents that have no natural identity.
func NewNonce() string {
	return uuid.NewString()
}
