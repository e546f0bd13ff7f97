// Package engage – Coordinator
//
// The Coordinator owns a per-session cache of aggregates and applies
// mutations optimistically: the speculative delta is visible synchronously,
// the remote operation runs asynchronously, and the cache is reconciled
// with the authoritative result (or rolled back) when it resolves.
//
// Invariants:
//   - The cache always reflects last-committed state plus the deltas of
//     still-pending intents, re-applied in issuance order. Never a partial
//     mix.
//   - Settlement for intents on the same target applies strictly in
//     issuance order, even when remote responses arrive out of order: a
//     resolved intent behind an unresolved sibling waits.
//   - A committing result is folded into the base as it stands at
//     settlement time, so an intent that resolved before an earlier
//     sibling committed cannot erase that sibling's effect.
//   - A failed intent reverts only its own contribution; sibling deltas
//     stay applied.
//   - Each intent's remote operation is invoked exactly once. Retry is a
//     caller concern expressed as a fresh intent.
//
// Concurrent double-toggles queue as compensating intents rather than
// coalescing; the ordered-settlement rule makes the final committed state
// match issuance order regardless of response arrival.
//
// Observability: Issue is OpenTelemetry-instrumented and settlement
// outcomes are counted in Prometheus and logged with structured fields.
package engage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/edqorta/edqorta-backend/internal/notify"
)

// Options configures a Coordinator.
type Options struct {
	// Sink receives user-facing failure events. Defaults to notify.Discard.
	Sink notify.Sink
	// Logger is used for structured settlement logging. Defaults to a
	// no-op logger.
	Logger zerolog.Logger
}

// Coordinator applies optimistic mutations against a private aggregate
// cache. One instance per client session; safe for concurrent use.
type Coordinator struct {
	mu sync.Mutex

	// base holds last-known-committed values; current holds base plus the
	// deltas of pending intents folded in issuance order.
	base    map[TargetKey]Aggregate
	current map[TargetKey]Aggregate

	// queues holds unsettled intents per target in issuance order.
	queues map[TargetKey][]*Intent

	seq    uint64
	closed bool
	wg     sync.WaitGroup

	sink notify.Sink
	log  zerolog.Logger
}

// New constructs a Coordinator with an empty cache.
func New(opts Options) *Coordinator {
	sink := opts.Sink
	if sink == nil {
		sink = notify.Discard
	}
	return &Coordinator{
		base:    make(map[TargetKey]Aggregate),
		current: make(map[TargetKey]Aggregate),
		queues:  make(map[TargetKey][]*Intent),
		sink:    sink,
		log:     opts.Logger,
	}
}

// Register seeds (or replaces) the committed value for a target. Existing
// pending deltas for the key are re-applied on top of the new base.
func (c *Coordinator) Register(key TargetKey, value Aggregate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base[key] = value
	c.recomputeLocked(key)
}

// Deregister drops a target from the cache. Pending intents for the key
// still settle, but their results are discarded.
func (c *Coordinator) Deregister(key TargetKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.base, key)
	delete(c.current, key)
}

// Get returns the current (committed plus pending) value for a target.
func (c *Coordinator) Get(key TargetKey) (Aggregate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.current[key]
	return v, ok
}

// Committed returns the last-known-committed value for a target, without
// any pending deltas.
func (c *Coordinator) Committed(key TargetKey) (Aggregate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.base[key]
	return v, ok
}

// Pending returns the number of unsettled intents for a target.
func (c *Coordinator) Pending(key TargetKey) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queues[key])
}

// Issue applies the spec's speculative delta synchronously and launches the
// remote operation. The returned intent is pending; callers observe the
// speculatively updated cache immediately and may Wait on the intent for
// settlement.
//
// Issue fails with ErrUnknownTarget when the target is not registered and
// with ErrClosed after Close. Neither failure touches the cache.
func (c *Coordinator) Issue(ctx context.Context, spec IntentSpec) (*Intent, error) {
	tr := otel.Tracer("engage/Coordinator")
	_, span := tr.Start(ctx, "Issue",
		trace.WithAttributes(
			attribute.String("intent.kind", string(spec.Kind)),
			attribute.String("intent.target", string(spec.Target)),
		),
	)
	defer span.End()

	if spec.Apply == nil || spec.Remote == nil {
		return nil, ErrInvalidIntent
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	cur, ok := c.current[spec.Target]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, spec.Target)
	}

	c.seq++
	it := &Intent{
		ID:        uuid.NewString(),
		Kind:      spec.Kind,
		Target:    spec.Target,
		IssuedAt:  time.Now().UTC(),
		seq:       c.seq,
		coord:     c,
		apply:     spec.Apply,
		reconcile: spec.Reconcile,
		failMsg:   spec.FailureMessage,
		state:     StatePending,
		done:      make(chan struct{}),
	}

	// Speculative apply: atomic with intent recording, no intermediate
	// observable state.
	c.current[spec.Target] = spec.Apply(cur)
	c.queues[spec.Target] = append(c.queues[spec.Target], it)
	intentsIssued.WithLabelValues(string(spec.Kind)).Inc()

	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(ctx, it, spec.Remote, spec.Timeout)
	return it, nil
}

// run invokes the remote operation once and records its outcome, bounding
// it by the optional timeout. The remote call runs in its own goroutine so
// a collaborator that ignores ctx still cannot block settlement forever.
func (c *Coordinator) run(ctx context.Context, it *Intent, remote func(context.Context) (Aggregate, error), timeout time.Duration) {
	defer c.wg.Done()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resCh := make(chan outcome, 1)
	go func() {
		v, err := remote(ctx)
		resCh <- outcome{value: v, err: err}
	}()

	select {
	case o := <-resCh:
		c.settle(it, o)
	case <-ctx.Done():
		c.settle(it, outcome{err: ctx.Err()})
	}
}

// settle records the intent's outcome and drains its target queue in
// issuance order. Notifications fire after the lock is released so a sink
// may reenter Issue without deadlocking.
func (c *Coordinator) settle(it *Intent, o outcome) {
	c.mu.Lock()
	it.outcome = &o
	settled, events := c.drainLocked(it.Target)
	c.mu.Unlock()

	for _, s := range settled {
		close(s.done)
	}
	for _, e := range events {
		c.sink.Notify(e)
	}
}

// drainLocked settles resolved intents from the head of the target queue,
// stopping at the first still-unresolved one, then recomputes the current
// value. Caller holds c.mu.
func (c *Coordinator) drainLocked(key TargetKey) (settled []*Intent, events []notify.Event) {
	q := c.queues[key]
	for len(q) > 0 && q[0].outcome != nil {
		head := q[0]
		q = q[1:]

		if head.outcome.err == nil {
			// Server truth wins: the authoritative result replaces the
			// speculative guess, not the other way around. Reconciling
			// intents fold their result into the base as it stands NOW,
			// not as it stood when the remote resolved, so a sibling's
			// commit in between is never erased.
			if prev, registered := c.base[key]; registered {
				if head.reconcile != nil {
					c.base[key] = head.reconcile(prev, head.outcome.value)
				} else {
					c.base[key] = head.outcome.value
				}
			}
			head.state = StateCommitted
			intentsCommitted.WithLabelValues(string(head.Kind)).Inc()
			c.log.Debug().
				Str("intent_id", head.ID).
				Str("kind", string(head.Kind)).
				Str("target", string(key)).
				Msg("intent committed")
		} else {
			head.state = StateFailed
			head.err = classify(head.outcome.err)
			intentsFailed.WithLabelValues(string(head.Kind)).Inc()
			c.log.Warn().
				Err(head.outcome.err).
				Str("intent_id", head.ID).
				Str("kind", string(head.Kind)).
				Str("target", string(key)).
				Msg("intent failed, delta reverted")

			msg := head.failMsg
			if msg == "" {
				msg = fmt.Sprintf("Couldn't complete %s. Please try again.", head.Kind)
			}
			events = append(events, notify.Event{Severity: notify.SeverityError, Message: msg})
		}
		settled = append(settled, head)
	}

	if len(q) == 0 {
		delete(c.queues, key)
	} else {
		c.queues[key] = q
	}
	c.recomputeLocked(key)
	return settled, events
}

// recomputeLocked folds the remaining pending deltas over the committed
// base, in issuance order. This is what makes rollback exact: a failed
// intent simply no longer participates in the fold. Caller holds c.mu.
func (c *Coordinator) recomputeLocked(key TargetKey) {
	base, ok := c.base[key]
	if !ok {
		delete(c.current, key)
		return
	}
	cur := base
	for _, it := range c.queues[key] {
		cur = it.apply(cur)
	}
	c.current[key] = cur
}

// classify maps a raw remote error onto the coordinator's taxonomy.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrRemoteOperation, err)
}

// Close stops accepting new intents and waits for in-flight remote
// operations to settle. Safe to call once per session.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}
