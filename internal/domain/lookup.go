package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LookupKind tags which identifier a LookupKey carries.
type LookupKind int

const (
	LookupByRecordID LookupKind = iota
	LookupByTransactionID
)

// LookupKey identifies a notification either by its record id or by the
// caller-supplied transaction id. The kind is resolved once at the request
// boundary; lower layers never guess from the string shape.
type LookupKey struct {
	Kind  LookupKind
	Value string
}

func ByRecordID(id string) LookupKey {
	return LookupKey{Kind: LookupByRecordID, Value: id}
}

func ByTransactionID(txnID string) LookupKey {
	return LookupKey{Kind: LookupByTransactionID, Value: txnID}
}

// ParseLookupKey classifies a raw path identifier. Values shaped like a
// record id (uuid) resolve by record id first; everything else is treated
// as a transaction id.
func ParseLookupKey(raw string) (LookupKey, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return LookupKey{}, fmt.Errorf("%w: identifier is required", ErrValidation)
	}

	if _, err := uuid.Parse(trimmed); err == nil {
		return ByRecordID(trimmed), nil
	}
	return ByTransactionID(trimmed), nil
}
