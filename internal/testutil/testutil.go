// Package testutil holds in-memory doubles for the engine's collaborators.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xoulomon/stellarsave/internal/events"
	"github.com/xoulomon/stellarsave/internal/storage"
)

// ErrInsufficientFunds is returned by Ledger when the payer is short.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrCommit is returned by FailingStore when a commit is forced to fail.
var ErrCommit = errors.New("commit failed")

// Transfer is one movement recorded by Ledger.
type Transfer struct {
	From, To string
	Amount   int64
}

// Ledger is an in-memory balance sheet with scriptable failures.
type Ledger struct {
	mu        sync.Mutex
	balances  map[string]int64
	failTo    map[string]error
	failFrom  map[string]error
	transfers []Transfer
}

// NewLedger returns a ledger seeded with balances.
func NewLedger(balances map[string]int64) *Ledger {
	l := &Ledger{
		balances: make(map[string]int64),
		failTo:   make(map[string]error),
		failFrom: make(map[string]error),
	}
	for addr, amount := range balances {
		l.balances[addr] = amount
	}
	return l
}

// Transfer moves amount unless a failure is scripted or the payer is short.
func (l *Ledger) Transfer(_ context.Context, from, to string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.failFrom[from]; err != nil {
		return err
	}
	if err := l.failTo[to]; err != nil {
		return err
	}
	if l.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, l.balances[from], amount)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	l.transfers = append(l.transfers, Transfer{From: from, To: to, Amount: amount})
	return nil
}

// Fund credits address.
func (l *Ledger) Fund(address string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[address] += amount
}

// Balance returns the balance of address.
func (l *Ledger) Balance(address string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[address]
}

// FailTo makes every transfer credited to address fail with err.
func (l *Ledger) FailTo(address string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failTo[address] = err
}

// FailFrom makes every transfer debited from address fail with err.
func (l *Ledger) FailFrom(address string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failFrom[address] = err
}

// Heal clears every scripted failure.
func (l *Ledger) Heal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.failTo)
	clear(l.failFrom)
}

// Transfers returns the successful transfers in order.
func (l *Ledger) Transfers() []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transfer(nil), l.transfers...)
}

// AllowAll authorizes every principal.
type AllowAll struct{}

// RequireAuth always succeeds.
func (AllowAll) RequireAuth(context.Context, string) error { return nil }

// DenyAll rejects every principal.
type DenyAll struct{}

// RequireAuth always fails.
func (DenyAll) RequireAuth(_ context.Context, principal string) error {
	return fmt.Errorf("no signature from %s", principal)
}

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at Unix second sec.
func NewClock(sec int64) *Clock {
	return &Clock{now: time.Unix(sec, 0)}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Recorder keeps every emitted event.
type Recorder struct {
	// OnEmit, if set, runs after each event is recorded.
	OnEmit func(events.Event)

	mu     sync.Mutex
	events []events.Event
}

// Emit records evt and then runs OnEmit.
func (r *Recorder) Emit(_ context.Context, evt events.Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()

	if r.OnEmit != nil {
		r.OnEmit(evt)
	}
}

// Events returns a copy of what was recorded.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Names returns the names of recorded events in order.
func (r *Recorder) Names() []events.Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]events.Name, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}

// FailingStore wraps a Store and can fail commits after the transaction
// body succeeded.
type FailingStore struct {
	storage.Store

	mu   sync.Mutex
	fail bool
}

// FailCommits toggles commit failure.
func (s *FailingStore) FailCommits(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// Update runs fn and then returns ErrCommit if commits are failing, which
// discards fn's writes.
func (s *FailingStore) Update(ctx context.Context, fn func(storage.ReadWriter) error) error {
	return s.Store.Update(ctx, func(rw storage.ReadWriter) error {
		if err := fn(rw); err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.fail {
			return ErrCommit
		}
		return nil
	})
}
