package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ReferenceDelimiter separates the transaction id from the auth code in a stored reference
const ReferenceDelimiter = ","

var ErrInvalidReference = errors.New("invalid transaction reference")

// TransactionReference correlates later capture, refund and void calls with the gateway transaction
type TransactionReference struct {
	TransactionID string
	AuthCode      string
}

// NewTransactionReference builds a reference, rejecting components that contain the delimiter
func NewTransactionReference(transactionID, authCode string) (TransactionReference, error) {
	if strings.Contains(transactionID, ReferenceDelimiter) || strings.Contains(authCode, ReferenceDelimiter) {
		return TransactionReference{}, fmt.Errorf("%w: component contains %q", ErrInvalidReference, ReferenceDelimiter)
	}
	return TransactionReference{TransactionID: transactionID, AuthCode: authCode}, nil
}

// String returns the form stored on the order
func (r TransactionReference) String() string {
	return r.TransactionID + ReferenceDelimiter + r.AuthCode
}

// ParseTransactionReference splits a stored reference. Empty components are skipped,
// so the first non-empty component is the transaction id.
func ParseTransactionReference(value string) (TransactionReference, error) {
	parts := make([]string, 0, 2)
	for _, part := range strings.Split(value, ReferenceDelimiter) {
		if part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		return TransactionReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, value)
	}

	ref := TransactionReference{TransactionID: parts[0]}
	if len(parts) > 1 {
		ref.AuthCode = parts[1]
	}
	return ref, nil
}
