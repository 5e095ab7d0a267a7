// Package livequery multiplexes live subscriptions against the document
// store.
//
// Each subscription pairs a change-signal source with a query that
// returns the full current result set for its predicate. Every signal
// triggers a re-read, and the handler replaces its local slice
// wholesale - snapshots are full-replace, never deltas, so handlers are
// O(snapshot size) and derived counts are just len(snapshot).
//
// All subscriptions opened on one Multiplexer are torn down together by
// Close. Each cancellation is isolated: a faulty cancel is logged and
// swallowed so it cannot block teardown of the rest. A notification
// that fires after Close is discarded before it can touch handler
// state. No ordering holds across distinct subscriptions; consumers
// must not assume joint consistency between two snapshots at any single
// instant.
package livequery

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned when subscribing on a multiplexer that has
// already been torn down.
var ErrClosed = errors.New("livequery: multiplexer closed")

// Source runs one query and returns the complete current result set for
// its predicate.
type Source[T any] func(ctx context.Context) ([]T, error)

// Notifier emits change signals for the data a Source reads. The cancel
// function stops delivery and is called exactly once per subscription
// on teardown.
type Notifier interface {
	Changes(ctx context.Context) (<-chan struct{}, func() error, error)
}

// Multiplexer owns a set of live subscriptions with joint teardown.
type Multiplexer struct {
	log *zap.Logger

	mu      sync.Mutex
	closed  bool
	cancels []namedCancel
}

type namedCancel struct {
	name   string
	cancel func() error
}

func NewMultiplexer(logger *zap.Logger) *Multiplexer {
	return &Multiplexer{log: logger}
}

// Watch opens one live subscription: every change signal re-runs src
// and hands the full result set to apply. Query failures are logged,
// reported to onErr when non-nil, and the previous snapshot is left in
// place (no partial apply). apply runs on the subscription's goroutine
// under the multiplexer's lock, so applies are serialized against Close
// and against every other subscription's apply; keep apply cheap.
func Watch[T any](ctx context.Context, m *Multiplexer, name string, n Notifier, src Source[T], apply func([]T), onErr func(error)) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.mu.Unlock()

	signals, cancel, err := n.Changes(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		// lost the race with Close; tear this one down alone
		m.mu.Unlock()
		if cerr := cancel(); cerr != nil {
			m.log.Warn("subscription cancel failed", zap.String("subscription", name), zap.Error(cerr))
		}
		return ErrClosed
	}
	m.cancels = append(m.cancels, namedCancel{name: name, cancel: cancel})
	m.mu.Unlock()

	go func() {
		for range signals {
			docs, err := src(ctx)
			if err != nil {
				m.log.Error("live query read failed",
					zap.String("subscription", name),
					zap.Error(err))
				if onErr != nil {
					m.deliver(name, func() { onErr(err) })
				}
				continue
			}
			m.deliver(name, func() { apply(docs) })
		}
	}()

	return nil
}

// deliver applies a snapshot unless the multiplexer has been closed in
// the meantime; a late notification must not mutate consumer state.
func (m *Multiplexer) deliver(name string, apply func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.log.Debug("dropping snapshot after close", zap.String("subscription", name))
		return
	}
	apply()
}

// Close tears down every subscription. Each cancel is invoked exactly
// once; failures are logged and swallowed so one faulty cancellation
// cannot strand the others. Close is idempotent and safe to call while
// snapshots are in flight; subscription goroutines drain on their own
// once their signal channel closes, and anything they deliver after
// Close is discarded.
func (m *Multiplexer) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	cancels := m.cancels
	m.cancels = nil
	m.mu.Unlock()

	for _, nc := range cancels {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.Warn("subscription cancel panicked",
						zap.String("subscription", nc.name),
						zap.Any("panic", r))
				}
			}()
			if err := nc.cancel(); err != nil {
				m.log.Warn("subscription cancel failed",
					zap.String("subscription", nc.name),
					zap.Error(err))
			}
		}()
	}
}

// Closed reports whether teardown has begun.
func (m *Multiplexer) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
