// Package position holds the domain model: the Position record, the PnL
// snapshot computation and the advisory suggestion rules.
package position

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrClosed is returned when a mutation targets a closed record.
	ErrClosed = errors.New("position is closed")
	// ErrNonPositiveAmount is returned when a flow amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Position is one tracked capital commitment to a token. All monetary fields
// are USD and non-negative. TotalInvestedUSD is a cached derivation of
// InitialValueUSD + CapitalAdditionsUSD and is recomputed on every mutation
// that touches either operand; withdrawals never change it — a withdrawal is
// capital coming back, not capital un-invested.
type Position struct {
	ID                  string  `json:"id"`
	Token               string  `json:"token"`
	InitialValueUSD     float64 `json:"initial_value_usd"`
	CapitalAdditionsUSD float64 `json:"capital_additions_usd"`
	WithdrawnUSD        float64 `json:"withdrawn_usd"`
	FeesClaimedUSD      float64 `json:"fees_claimed_usd"`
	TotalInvestedUSD    float64 `json:"total_invested_usd"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`

	IsClosed           bool       `json:"is_closed"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
	ExitValueUSD       float64    `json:"exit_value_usd,omitempty"`
	FinalPnlUSD        float64    `json:"final_pnl_usd,omitempty"`
	FinalPnlPercentage float64    `json:"final_pnl_percentage,omitempty"`
}

// NormalizeToken lowercases a token symbol for storage and lookups.
func NormalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// DisplayToken uppercases a token symbol for output.
func DisplayToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// New opens a fresh active position.
func New(id, token string, initialValueUSD float64, now time.Time) (Position, error) {
	if initialValueUSD < 0 {
		return Position{}, fmt.Errorf("initial value %.2f: %w", initialValueUSD, ErrNonPositiveAmount)
	}
	return Position{
		ID:               id,
		Token:            NormalizeToken(token),
		InitialValueUSD:  initialValueUSD,
		TotalInvestedUSD: initialValueUSD,
		CreatedAt:        now,
		LastUpdated:      now,
	}, nil
}

// AddCapital contributes additional capital and recomputes the invested total.
func (p *Position) AddCapital(amountUSD float64, now time.Time) error {
	if err := p.mutable(amountUSD); err != nil {
		return err
	}
	p.CapitalAdditionsUSD += amountUSD
	p.TotalInvestedUSD = p.InitialValueUSD + p.CapitalAdditionsUSD
	p.LastUpdated = now
	return nil
}

// Withdraw records capital taken out. Invested total is untouched.
func (p *Position) Withdraw(amountUSD float64, now time.Time) error {
	if err := p.mutable(amountUSD); err != nil {
		return err
	}
	p.WithdrawnUSD += amountUSD
	p.LastUpdated = now
	return nil
}

// ClaimFees records realized yield/fee income.
func (p *Position) ClaimFees(amountUSD float64, now time.Time) error {
	if err := p.mutable(amountUSD); err != nil {
		return err
	}
	p.FeesClaimedUSD += amountUSD
	p.LastUpdated = now
	return nil
}

// RecordFees appends fees from a revisit of the generic record command.
// Unlike ClaimFees a zero amount is fine; only the timestamp moves then.
func (p *Position) RecordFees(feesUSD float64, now time.Time) error {
	if p.IsClosed {
		return ErrClosed
	}
	if feesUSD < 0 {
		return fmt.Errorf("fees %.2f: %w", feesUSD, ErrNonPositiveAmount)
	}
	p.FeesClaimedUSD += feesUSD
	p.LastUpdated = now
	return nil
}

// CloseOut adds the final fees, computes the final PnL at the given exit
// value and freezes the record. A closed position never mutates again.
func (p *Position) CloseOut(exitValueUSD, finalFeesUSD float64, now time.Time) error {
	if p.IsClosed {
		return ErrClosed
	}
	if exitValueUSD <= 0 {
		return fmt.Errorf("exit value %.2f: %w", exitValueUSD, ErrNonPositiveAmount)
	}
	if finalFeesUSD < 0 {
		return fmt.Errorf("final fees %.2f: %w", finalFeesUSD, ErrNonPositiveAmount)
	}

	p.FeesClaimedUSD += finalFeesUSD

	snap := Compute(*p, exitValueUSD, 0)

	closedAt := now
	p.IsClosed = true
	p.ClosedAt = &closedAt
	p.ExitValueUSD = exitValueUSD
	p.FinalPnlUSD = snap.TotalPnlUSD
	p.FinalPnlPercentage = snap.PnlPercentage
	p.LastUpdated = now
	return nil
}

// AgeDays is the floored number of whole days between creation and now.
func (p Position) AgeDays(now time.Time) int {
	if now.Before(p.CreatedAt) {
		return 0
	}
	return int(now.Sub(p.CreatedAt).Hours() / 24)
}

func (p *Position) mutable(amountUSD float64) error {
	if p.IsClosed {
		return ErrClosed
	}
	if amountUSD <= 0 {
		return fmt.Errorf("%.2f: %w", amountUSD, ErrNonPositiveAmount)
	}
	return nil
}
