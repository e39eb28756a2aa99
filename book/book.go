// Package book is the position lifecycle manager. Every operation is one
// synchronous load → mutate → save pass over the store; validation and
// lookup failures return before anything is written, so a command either
// persists its full mutation or nothing.
package book

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/hodl/position"
	"github.com/rustyeddy/hodl/store"
)

// ErrNoActive is returned when an operation needs an active position for a
// token and none exists. Closed records never satisfy a lookup.
var ErrNoActive = errors.New("no active position")

// Book applies lifecycle operations to the store. The clock is injectable so
// tests get stable timestamps.
type Book struct {
	store store.Store
	now   func() time.Time
}

// Option configures a Book.
type Option func(*Book)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

func New(s store.Store, opts ...Option) *Book {
	b := &Book{store: s, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Record handles the generic `record <token> <value> [fees]` command. With
// no active position for the token it opens one at the given initial value;
// with an active position it appends the fees and refreshes the timestamp.
// The reported bool is true when a position was created.
func (b *Book) Record(token string, valueUSD, feesUSD float64) (position.Position, bool, error) {
	positions, err := b.store.Load()
	if err != nil {
		return position.Position{}, false, err
	}

	now := b.now()
	token = position.NormalizeToken(token)

	if id, ok := findActive(positions, token); ok {
		p := positions[id]
		if err := p.RecordFees(feesUSD, now); err != nil {
			return position.Position{}, false, err
		}
		positions[id] = p
		if err := b.store.Save(positions); err != nil {
			return position.Position{}, false, err
		}
		return p, false, nil
	}

	p, err := position.New(b.store.NewID(), token, valueUSD, now)
	if err != nil {
		return position.Position{}, false, err
	}
	if feesUSD > 0 {
		if err := p.RecordFees(feesUSD, now); err != nil {
			return position.Position{}, false, err
		}
	}
	positions[p.ID] = p
	if err := b.store.Save(positions); err != nil {
		return position.Position{}, false, err
	}
	return p, true, nil
}

// AddCapital contributes more capital to the active position.
func (b *Book) AddCapital(token string, amountUSD float64) (position.Position, error) {
	return b.mutate(token, func(p *position.Position, now time.Time) error {
		return p.AddCapital(amountUSD, now)
	})
}

// Withdraw takes capital out of the active position.
func (b *Book) Withdraw(token string, amountUSD float64) (position.Position, error) {
	return b.mutate(token, func(p *position.Position, now time.Time) error {
		return p.Withdraw(amountUSD, now)
	})
}

// ClaimFees records fee income on the active position.
func (b *Book) ClaimFees(token string, amountUSD float64) (position.Position, error) {
	return b.mutate(token, func(p *position.Position, now time.Time) error {
		return p.ClaimFees(amountUSD, now)
	})
}

// Close freezes the active position at the given exit value. The closed
// record stays in the store permanently as one finished trading round.
func (b *Book) Close(token string, exitValueUSD, finalFeesUSD float64) (position.Position, error) {
	return b.mutate(token, func(p *position.Position, now time.Time) error {
		return p.CloseOut(exitValueUSD, finalFeesUSD, now)
	})
}

// Reset deletes the active position outright and opens a fresh one at the
// new value. The old record is not archived; its history is gone.
func (b *Book) Reset(token string, newValueUSD float64) (position.Position, error) {
	positions, err := b.store.Load()
	if err != nil {
		return position.Position{}, err
	}

	token = position.NormalizeToken(token)
	id, ok := findActive(positions, token)
	if !ok {
		return position.Position{}, fmt.Errorf("%s: %w", position.DisplayToken(token), ErrNoActive)
	}

	fresh, err := position.New(b.store.NewID(), token, newValueUSD, b.now())
	if err != nil {
		return position.Position{}, err
	}

	delete(positions, id)
	positions[fresh.ID] = fresh
	if err := b.store.Save(positions); err != nil {
		return position.Position{}, err
	}
	return fresh, nil
}

// Remove deletes the active position. Closed records for the same token are
// untouched and remain queryable.
func (b *Book) Remove(token string) (position.Position, error) {
	positions, err := b.store.Load()
	if err != nil {
		return position.Position{}, err
	}

	token = position.NormalizeToken(token)
	id, ok := findActive(positions, token)
	if !ok {
		return position.Position{}, fmt.Errorf("%s: %w", position.DisplayToken(token), ErrNoActive)
	}

	removed := positions[id]
	delete(positions, id)
	if err := b.store.Save(positions); err != nil {
		return position.Position{}, err
	}
	return removed, nil
}

// Active returns the open positions sorted by token.
func (b *Book) Active() ([]position.Position, error) {
	positions, err := b.store.Load()
	if err != nil {
		return nil, err
	}

	var out []position.Position
	for _, p := range positions {
		if !p.IsClosed {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

// Closed returns the closed positions, newest close first.
func (b *Book) Closed() ([]position.Position, error) {
	positions, err := b.store.Load()
	if err != nil {
		return nil, err
	}

	var out []position.Position
	for _, p := range positions {
		if p.IsClosed {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].LastUpdated, out[j].LastUpdated
		if out[i].ClosedAt != nil {
			ti = *out[i].ClosedAt
		}
		if out[j].ClosedAt != nil {
			tj = *out[j].ClosedAt
		}
		return ti.After(tj)
	})
	return out, nil
}

// Clean drops every position whose initial value exceeds the sanity ceiling
// and returns the dropped records.
func (b *Book) Clean(ceilingUSD float64) ([]position.Position, error) {
	positions, err := b.store.Load()
	if err != nil {
		return nil, err
	}

	var dropped []position.Position
	for id, p := range positions {
		if p.InitialValueUSD > ceilingUSD {
			dropped = append(dropped, p)
			delete(positions, id)
		}
	}
	if len(dropped) == 0 {
		return nil, nil
	}

	if err := b.store.Save(positions); err != nil {
		return nil, err
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Token < dropped[j].Token })
	return dropped, nil
}

// Fix forces a load/save round trip. Legacy records are upgraded at the load
// boundary, so this persists the migrated form. Idempotent.
func (b *Book) Fix() (int, error) {
	positions, err := b.store.Load()
	if err != nil {
		return 0, err
	}
	if err := b.store.Save(positions); err != nil {
		return 0, err
	}
	return len(positions), nil
}

// mutate is the shared read-modify-write path for single-position updates.
func (b *Book) mutate(token string, fn func(*position.Position, time.Time) error) (position.Position, error) {
	positions, err := b.store.Load()
	if err != nil {
		return position.Position{}, err
	}

	token = position.NormalizeToken(token)
	id, ok := findActive(positions, token)
	if !ok {
		return position.Position{}, fmt.Errorf("%s: %w", position.DisplayToken(token), ErrNoActive)
	}

	p := positions[id]
	if err := fn(&p, b.now()); err != nil {
		return position.Position{}, err
	}

	positions[id] = p
	if err := b.store.Save(positions); err != nil {
		return position.Position{}, err
	}
	return p, nil
}

// findActive scans for the one open position of a token. Token must already
// be normalized.
func findActive(positions map[string]position.Position, token string) (string, bool) {
	for id, p := range positions {
		if !p.IsClosed && p.Token == token {
			return id, true
		}
	}
	return "", false
}
