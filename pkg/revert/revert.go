// Package revert defines named failure kinds for protocol operations.
//
// Every rejected operation returns one of these values (possibly wrapped).
// Callers branch on the kind with errors.Is, and remote clients receive the
// Solidity custom-error selector so they can do the same over the wire.
package revert

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Error is a named protocol failure. Values are compared by identity.
type Error struct {
	name     string
	selector [4]byte
}

// New creates a failure kind for a parameterless custom error.
func New(name string) *Error {
	e := &Error{name: name}
	copy(e.selector[:], crypto.Keccak256([]byte(name+"()"))[:4])
	return e
}

// Name returns the bare error name, e.g. "AlreadyPaused".
func (e *Error) Name() string {
	return e.name
}

// Signature returns the ABI signature, e.g. "AlreadyPaused()".
func (e *Error) Signature() string {
	return e.name + "()"
}

// Selector returns the first four bytes of keccak256(Signature()).
func (e *Error) Selector() [4]byte {
	return e.selector
}

// SelectorHex returns the selector as 0x-prefixed hex.
func (e *Error) SelectorHex() string {
	return hexutil.Encode(e.selector[:])
}

func (e *Error) Error() string {
	return e.Signature()
}

// Wrap attaches context to a failure kind while keeping errors.Is working.
func Wrap(kind *Error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// As extracts the failure kind from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Shared kinds used by more than one component.
var (
	ErrUnauthorized       = New("Unauthorized")
	ErrArithmeticOverflow = New("ArithmeticOverflow")
	ErrZeroAddress        = New("ZeroAddress")
)
