// Package engage – intent model.
//
// An Intent is the unit of optimistic mutation: a reversible speculative
// delta applied to a cached aggregate plus the remote operation that will
// either confirm or reject it. Intents are created exclusively by
// Coordinator.Issue and settle exactly once.
package engage

import (
	"context"
	"time"
)

// Kind tags the mutation type of an intent. Toggle kinds are expected to be
// self-inverse (issuing twice cancels out at the domain level); append kinds
// always create independent intents.
type Kind string

// Mutation kinds issued by the session layer.
const (
	KindToggleLike         Kind = "toggle-like"
	KindToggleFollow       Kind = "toggle-follow"
	KindSendMessage        Kind = "send-message"
	KindAddComment         Kind = "add-comment"
	KindAddTeamComment     Kind = "add-team-comment"
	KindUpdateProfile      Kind = "update-profile"
	KindCreatePost         Kind = "create-post"
	KindDeletePost         Kind = "delete-post"
	KindSubmitVerification Kind = "submit-verification"
)

// State is the lifecycle position of an intent.
type State string

// Intent lifecycle states. Pending is the only initial state; committed and
// failed are terminal.
const (
	StatePending   State = "pending"
	StateCommitted State = "committed"
	StateFailed    State = "failed"
)

// Aggregate is a cached unit of domain state a mutation operates against
// (one property's engagement counters, one conversation's message list).
// Values stored in the coordinator must be treated as immutable: Apply
// functions return fresh values and never mutate their argument.
type Aggregate any

// TargetKey identifies the aggregate an intent mutates, e.g. "property:5".
type TargetKey string

// IntentSpec describes a mutation to issue.
type IntentSpec struct {
	// Kind tags the mutation type for logging, metrics, and coalescing
	// policy at the session layer.
	Kind Kind

	// Target must resolve to a registered aggregate.
	Target TargetKey

	// Apply computes the speculative value from the current one. It must be
	// pure and must not mutate its argument: the coordinator re-applies it
	// on top of fresh committed state when sibling intents settle.
	Apply func(current Aggregate) Aggregate

	// Remote performs the authoritative operation. Invoked exactly once,
	// in a goroutine, after the speculative delta is visible. With a nil
	// Reconcile its result must be the full aggregate value as the server
	// knows it; with a Reconcile it returns whatever fragment Reconcile
	// folds in (a new row, an ID, or nil).
	Remote func(ctx context.Context) (Aggregate, error)

	// Reconcile folds the remote result into the committed base as it
	// stands at settlement time, which may be later than resolution when
	// an earlier sibling is still in flight. Nil means the result
	// replaces the base wholesale; append-style intents must supply it so
	// a sibling's committed effect is never overwritten by a stale
	// snapshot.
	Reconcile func(base, result Aggregate) Aggregate

	// Timeout optionally bounds the remote operation. Zero means no bound;
	// an elapsed timeout settles the intent as failed with ErrTimeout.
	Timeout time.Duration

	// FailureMessage is the user-facing text pushed to the notification
	// sink when the intent fails. A generic message is used when empty.
	FailureMessage string
}

// Intent is a single issued mutation. All accessors are safe for concurrent
// use; state transitions happen only inside the owning coordinator.
type Intent struct {
	// ID is a unique identifier assigned at issue time.
	ID string
	// Kind is the mutation type tag from the spec.
	Kind Kind
	// Target is the mutated aggregate's key.
	Target TargetKey
	// IssuedAt orders intents for diagnostics; settlement ordering uses seq.
	IssuedAt time.Time

	seq       uint64
	coord     *Coordinator
	apply     func(Aggregate) Aggregate
	reconcile func(Aggregate, Aggregate) Aggregate
	failMsg   string

	// outcome is set once when the remote resolves; settlement may happen
	// later to preserve issuance order.
	outcome *outcome

	state State
	err   error
	done  chan struct{}
}

// outcome carries a resolved remote result awaiting ordered settlement.
type outcome struct {
	value Aggregate
	err   error
}

// State returns the intent's current lifecycle state.
func (it *Intent) State() State {
	it.coord.mu.Lock()
	defer it.coord.mu.Unlock()
	return it.state
}

// Err returns the classified error for a failed intent, nil otherwise.
func (it *Intent) Err() error {
	it.coord.mu.Lock()
	defer it.coord.mu.Unlock()
	return it.err
}

// Done returns a channel closed when the intent reaches a terminal state.
func (it *Intent) Done() <-chan struct{} { return it.done }

// Wait blocks until the intent settles or ctx is done. It returns the
// intent's terminal error (nil for committed intents).
func (it *Intent) Wait(ctx context.Context) error {
	select {
	case <-it.done:
		return it.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
