package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewNormalizesToken(t *testing.T) {
	t.Parallel()

	p, err := New("pos-1", "  SOL ", 200, testNow)
	require.NoError(t, err)

	assert.Equal(t, "sol", p.Token)
	assert.Equal(t, "SOL", DisplayToken(p.Token))
	assert.InDelta(t, 200, p.InitialValueUSD, 1e-9)
	assert.InDelta(t, 200, p.TotalInvestedUSD, 1e-9)
	assert.Equal(t, testNow, p.CreatedAt)
	assert.False(t, p.IsClosed)
}

func TestNewRejectsNegativeInitial(t *testing.T) {
	t.Parallel()

	_, err := New("pos-1", "sol", -1, testNow)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestInvestedTotalStaysConsistent(t *testing.T) {
	t.Parallel()

	p, err := New("pos-1", "tok", 200, testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	require.NoError(t, p.AddCapital(100, later))
	require.NoError(t, p.Withdraw(50, later.Add(time.Hour)))

	// The invariant: invested == initial + additions, always; withdrawals
	// only move the withdrawn counter.
	assert.InDelta(t, 300, p.TotalInvestedUSD, 1e-9)
	assert.InDelta(t, p.InitialValueUSD+p.CapitalAdditionsUSD, p.TotalInvestedUSD, 1e-9)
	assert.InDelta(t, 50, p.WithdrawnUSD, 1e-9)

	require.NoError(t, p.ClaimFees(5, later.Add(2*time.Hour)))
	assert.InDelta(t, 300, p.TotalInvestedUSD, 1e-9)
	assert.InDelta(t, 5, p.FeesClaimedUSD, 1e-9)
}

func TestFlowsRejectNonPositiveAmounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func(p *Position) error
	}{
		{"add zero", func(p *Position) error { return p.AddCapital(0, testNow) }},
		{"add negative", func(p *Position) error { return p.AddCapital(-10, testNow) }},
		{"withdraw zero", func(p *Position) error { return p.Withdraw(0, testNow) }},
		{"claim negative", func(p *Position) error { return p.ClaimFees(-1, testNow) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := New("pos-1", "tok", 100, testNow)
			require.NoError(t, err)
			before := p

			assert.ErrorIs(t, tt.call(&p), ErrNonPositiveAmount)
			assert.Equal(t, before, p, "failed mutation must not change the record")
		})
	}
}

func TestCloseOutFreezesFinalFigures(t *testing.T) {
	t.Parallel()

	p, err := New("pos-1", "tok", 200, testNow)
	require.NoError(t, err)
	require.NoError(t, p.AddCapital(100, testNow))
	require.NoError(t, p.Withdraw(50, testNow))
	require.NoError(t, p.ClaimFees(5, testNow))

	closedAt := testNow.Add(48 * time.Hour)
	require.NoError(t, p.CloseOut(500, 10, closedAt))

	assert.True(t, p.IsClosed)
	require.NotNil(t, p.ClosedAt)
	assert.Equal(t, closedAt, *p.ClosedAt)
	assert.InDelta(t, 15, p.FeesClaimedUSD, 1e-9)
	assert.InDelta(t, 500, p.ExitValueUSD, 1e-9)
	assert.InDelta(t, 265, p.FinalPnlUSD, 1e-9)         // (500+50+15) - 300
	assert.InDelta(t, 88.33, p.FinalPnlPercentage, 0.01) // 265/300*100
}

func TestClosedPositionIsImmutable(t *testing.T) {
	t.Parallel()

	p, err := New("pos-1", "tok", 100, testNow)
	require.NoError(t, err)
	require.NoError(t, p.CloseOut(150, 0, testNow))

	assert.ErrorIs(t, p.AddCapital(10, testNow), ErrClosed)
	assert.ErrorIs(t, p.Withdraw(10, testNow), ErrClosed)
	assert.ErrorIs(t, p.ClaimFees(10, testNow), ErrClosed)
	assert.ErrorIs(t, p.RecordFees(10, testNow), ErrClosed)
	assert.ErrorIs(t, p.CloseOut(200, 0, testNow), ErrClosed)
}

func TestCloseOutValidation(t *testing.T) {
	t.Parallel()

	p, err := New("pos-1", "tok", 100, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, p.CloseOut(0, 0, testNow), ErrNonPositiveAmount)
	assert.ErrorIs(t, p.CloseOut(150, -1, testNow), ErrNonPositiveAmount)
	assert.False(t, p.IsClosed)

	// Zero final fees are fine.
	assert.NoError(t, p.CloseOut(150, 0, testNow))
}

func TestAgeDays(t *testing.T) {
	t.Parallel()

	p, err := New("pos-1", "tok", 100, testNow)
	require.NoError(t, err)

	assert.Equal(t, 0, p.AgeDays(testNow))
	assert.Equal(t, 0, p.AgeDays(testNow.Add(23*time.Hour)))
	assert.Equal(t, 1, p.AgeDays(testNow.Add(25*time.Hour)))
	assert.Equal(t, 31, p.AgeDays(testNow.Add(31*24*time.Hour)))
	assert.Equal(t, 0, p.AgeDays(testNow.Add(-time.Hour)), "clock behind creation")
}
