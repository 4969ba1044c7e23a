// Package zkerrors defines the stable error codes a transaction can fail
// with and the error type the tree and transaction processor communicate
// them through.
package zkerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, small error code surfaced to callers in a
// ProcessTxnResult. Values are distinct from OK (0) only by being
// non-zero; the exact magnitude carries no meaning.
type Code int32

const (
	OK Code = 0
	// NoNode means the target node, or one of its ancestors, does not exist.
	NoNode Code = -101
	// NodeExists means a create collided with an existing child name.
	NodeExists Code = -110
	// NotEmpty means a delete target still has children.
	NotEmpty Code = -111
	// BadVersion means a caller-supplied expected version did not match.
	BadVersion Code = -100
	// RuntimeInconsistency marks multi sub-results that come after the
	// first error marker in a failed multi; CodeOf also reports it for any
	// error that is not a *ZKError.
	RuntimeInconsistency Code = -2
	// EphemeralOnLocalSession is returned by the session-upgrade hook when
	// a local session tries to create an ephemeral node and upgrading is
	// disabled.
	EphemeralOnLocalSession Code = -120
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case NoNode:
		return "NO_NODE"
	case NodeExists:
		return "NODE_EXISTS"
	case NotEmpty:
		return "NOT_EMPTY"
	case BadVersion:
		return "BAD_VERSION"
	case RuntimeInconsistency:
		return "RUNTIME_INCONSISTENCY"
	case EphemeralOnLocalSession:
		return "EPHEMERAL_ON_LOCAL_SESSION"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(c))
	}
}

// ZKError is the concrete error type returned by tree mutation primitives.
type ZKError struct {
	Code Code
	Path string
}

func New(code Code, path string) *ZKError {
	return &ZKError{Code: code, Path: path}
}

func (e *ZKError) Error() string {
	if e.Path == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Path)
}

// CodeOf unwraps err down to a *ZKError and returns its code, or
// RuntimeInconsistency if err is not one of ours.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var zerr *ZKError
	if errors.As(err, &zerr) {
		return zerr.Code
	}
	return RuntimeInconsistency
}
