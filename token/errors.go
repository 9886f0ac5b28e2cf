package token

import (
	"errors"
	"fmt"

	"github.com/georgepadayatti/adesvalidator/identifier"
)

// Common errors
var (
	// ErrGraphIntegrity marks violations of the evidence graph contract, as
	// opposed to policy-driven validation outcomes.
	ErrGraphIntegrity = errors.New("evidence graph integrity violation")
	ErrNotFound       = errors.New("token not found")
)

// IntegrityError reports a malformed evidence graph.
type IntegrityError struct {
	Token  identifier.Identifier
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Token.IsZero() {
		return fmt.Sprintf("%s: %s", ErrGraphIntegrity, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrGraphIntegrity, e.Token, e.Reason)
}

func (e *IntegrityError) Unwrap() error {
	return ErrGraphIntegrity
}

// NewIntegrityError creates a new IntegrityError.
func NewIntegrityError(id identifier.Identifier, format string, args ...any) *IntegrityError {
	return &IntegrityError{Token: id, Reason: fmt.Sprintf(format, args...)}
}
