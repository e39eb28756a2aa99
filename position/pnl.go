package position

// Snapshot is the result of one PnL computation: a position, the value it
// would fetch right now, and the reference-asset price at call time. It is
// derived on demand and never persisted.
type Snapshot struct {
	CurrentValueUSD      float64
	TotalInvestedUSD     float64
	CurrentlyInvestedUSD float64
	UnrealizedPnlUSD     float64
	RealizedPnlUSD       float64
	TotalValueUSD        float64
	TotalPnlUSD          float64
	PnlPercentage        float64

	// Reference-asset equivalents. All zero when the price is unknown.
	ReferencePriceUSD float64
	CurrentValueRef   float64
	TotalInvestedRef  float64
	UnrealizedPnlRef  float64
	RealizedPnlRef    float64
	TotalPnlRef       float64
}

// Compute derives a Snapshot from a position and a current market value.
//
// Realized PnL is everything already extracted (withdrawals plus claimed
// fees); unrealized is the paper gain on what is still at risk. Percentage
// is total PnL over total invested, exactly 0 when nothing was invested —
// never NaN or Inf. Pure: safe to call repeatedly with different values.
func Compute(p Position, currentValueUSD, referencePriceUSD float64) Snapshot {
	s := Snapshot{
		CurrentValueUSD:   currentValueUSD,
		ReferencePriceUSD: referencePriceUSD,
	}

	s.TotalInvestedUSD = p.InitialValueUSD + p.CapitalAdditionsUSD
	s.CurrentlyInvestedUSD = s.TotalInvestedUSD - p.WithdrawnUSD
	s.UnrealizedPnlUSD = currentValueUSD - s.CurrentlyInvestedUSD
	s.RealizedPnlUSD = p.WithdrawnUSD + p.FeesClaimedUSD
	s.TotalValueUSD = currentValueUSD + p.WithdrawnUSD + p.FeesClaimedUSD
	s.TotalPnlUSD = s.TotalValueUSD - s.TotalInvestedUSD

	if s.TotalInvestedUSD > 0 {
		s.PnlPercentage = s.TotalPnlUSD / s.TotalInvestedUSD * 100
	}

	if referencePriceUSD > 0 {
		s.CurrentValueRef = currentValueUSD / referencePriceUSD
		s.TotalInvestedRef = s.TotalInvestedUSD / referencePriceUSD
		s.UnrealizedPnlRef = s.UnrealizedPnlUSD / referencePriceUSD
		s.RealizedPnlRef = s.RealizedPnlUSD / referencePriceUSD
		s.TotalPnlRef = s.TotalPnlUSD / referencePriceUSD
	}

	return s
}
