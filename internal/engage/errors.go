// Package engage implements the mutation coordinator: optimistic local
// state changes with a pending/committed/failed lifecycle, reconciled
// against an authoritative remote collaborator.
//
// This file centralizes the coordinator's sentinel errors so callers can
// classify failures with errors.Is. Translation into user-facing messages
// happens at the session/notification layer, never here.
package engage

import "errors"

var (
	// ErrUnknownTarget is returned by Issue when the intent's target key
	// does not resolve to a registered aggregate. Nothing is applied.
	ErrUnknownTarget = errors.New("unknown target aggregate")

	// ErrInvalidIntent is returned by Issue when the spec is missing its
	// Apply or Remote function.
	ErrInvalidIntent = errors.New("intent spec requires Apply and Remote")

	// ErrRemoteOperation wraps the cause when the backing remote call
	// rejects. The speculative delta has been reverted by the time the
	// intent carries this error.
	ErrRemoteOperation = errors.New("remote operation failed")

	// ErrTimeout marks an intent whose caller-supplied timeout elapsed
	// before the remote operation resolved. Treated exactly like a remote
	// failure: delta reverted, error surfaced.
	ErrTimeout = errors.New("remote operation timed out")

	// ErrClosed is returned by Issue after the coordinator has been closed.
	ErrClosed = errors.New("coordinator closed")
)
