package inputs

import (
	"context"
	"encoding/hex"
	"errors"

	uuid "github.com/satori/go.uuid"

	"github.com/tax-intl/epaye-go/libs/validators"
)

var (
	// ErrCorrelationIDDecodeInvalid - an error that tells caller the correlation id is not 32 uppercase hex digits
	ErrCorrelationIDDecodeInvalid = errors.New("failed to decode correlation id: correlation id must be 32 uppercase hex digits")
	// ErrCorrelationIDDecodeEmpty - an error that tells caller the correlation id is empty and should not be
	ErrCorrelationIDDecodeEmpty = errors.New("failed to decode correlation id: correlation id cannot be empty")
)

// CorrelationID - the dashless uppercase uuid that ties a filing together across services
type CorrelationID struct {
	uuid *uuid.UUID
	raw  string
}

// UUID - return the UUID representation of the correlation id
func (c *CorrelationID) UUID() *uuid.UUID {
	return c.uuid
}

// String - return the String representation of the correlation id
func (c *CorrelationID) String() string {
	return c.raw
}

// Validate - take raw []byte input and populate id with the CorrelationID
func (c *CorrelationID) Validate(ctx context.Context) error {
	// this should be overloaded to validate ids are real...
	return nil
}

// Decode - take raw []byte input and populate id with the CorrelationID
func (c *CorrelationID) Decode(ctx context.Context, input []byte) error {
	if len(input) == 0 {
		return ErrCorrelationIDDecodeEmpty
	}
	c.raw = string(input)

	if !validators.IsCorrelationID(c.raw) {
		return ErrCorrelationIDDecodeInvalid
	}

	b, err := hex.DecodeString(c.raw)
	if err != nil {
		return ErrCorrelationIDDecodeInvalid
	}
	parsed, err := uuid.FromBytes(b)
	if err != nil {
		return ErrCorrelationIDDecodeInvalid
	}
	c.uuid = &parsed
	return nil
}
