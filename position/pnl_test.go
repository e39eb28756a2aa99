package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFreshPosition(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p, err := New("pos-1", "tok", 200, now)
	require.NoError(t, err)

	snap := Compute(p, 200, 100)

	assert.InDelta(t, 0, snap.UnrealizedPnlUSD, 1e-9)
	assert.InDelta(t, 0, snap.RealizedPnlUSD, 1e-9)
	assert.InDelta(t, 0, snap.TotalPnlUSD, 1e-9)
	assert.InDelta(t, 0, snap.PnlPercentage, 1e-9)
	assert.InDelta(t, 2.0, snap.CurrentValueRef, 1e-9)
}

func TestComputeAccounting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		pos            Position
		currentValue   float64
		wantUnrealized float64
		wantRealized   float64
		wantTotal      float64
		wantPct        float64
	}{
		{
			name: "withdrawals count as realized not un-invested",
			pos: Position{
				InitialValueUSD:     200,
				CapitalAdditionsUSD: 100,
				WithdrawnUSD:        50,
			},
			currentValue:   250,
			wantUnrealized: 0,   // 250 - (300-50)
			wantRealized:   50,  // withdrawn
			wantTotal:      0,   // (250+50) - 300
			wantPct:        0,
		},
		{
			name: "fees add to realized and total",
			pos: Position{
				InitialValueUSD: 100,
				FeesClaimedUSD:  30,
			},
			currentValue:   90,
			wantUnrealized: -10,
			wantRealized:   30,
			wantTotal:      20, // (90+30) - 100
			wantPct:        20,
		},
		{
			name: "close scenario figures",
			pos: Position{
				InitialValueUSD:     200,
				CapitalAdditionsUSD: 100,
				WithdrawnUSD:        50,
				FeesClaimedUSD:      15,
			},
			currentValue:   500,
			wantUnrealized: 250, // 500 - 250
			wantRealized:   65,
			wantTotal:      265, // 565 - 300
			wantPct:        265.0 / 300 * 100,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := Compute(tt.pos, tt.currentValue, 100)

			assert.InDelta(t, tt.wantUnrealized, snap.UnrealizedPnlUSD, 1e-9)
			assert.InDelta(t, tt.wantRealized, snap.RealizedPnlUSD, 1e-9)
			assert.InDelta(t, tt.wantTotal, snap.TotalPnlUSD, 1e-9)
			assert.InDelta(t, tt.wantPct, snap.PnlPercentage, 1e-9)
		})
	}
}

func TestComputeZeroInvestedGivesZeroPercent(t *testing.T) {
	t.Parallel()

	p := Position{Token: "tok"}

	for _, value := range []float64{0, 1, 12345.67} {
		snap := Compute(p, value, 100)
		assert.Zero(t, snap.PnlPercentage, "value %.2f", value)
	}
}

func TestComputeZeroPriceZeroesReferenceFields(t *testing.T) {
	t.Parallel()

	p := Position{InitialValueUSD: 100}
	snap := Compute(p, 150, 0)

	assert.Zero(t, snap.CurrentValueRef)
	assert.Zero(t, snap.TotalInvestedRef)
	assert.Zero(t, snap.UnrealizedPnlRef)
	assert.Zero(t, snap.RealizedPnlRef)
	assert.Zero(t, snap.TotalPnlRef)

	// USD figures are unaffected by a missing price.
	assert.InDelta(t, 50, snap.TotalPnlUSD, 1e-9)
}

func TestComputeDoesNotMutate(t *testing.T) {
	t.Parallel()

	p := Position{InitialValueUSD: 100, WithdrawnUSD: 20, FeesClaimedUSD: 5}
	before := p

	Compute(p, 500, 100)
	Compute(p, 1, 0)

	assert.Equal(t, before, p)
}
