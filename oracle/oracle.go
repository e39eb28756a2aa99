// Package oracle supplies the reference-asset price in USD. The contract is
// deliberately forgiving: PriceUSD never fails its caller. A live fetch that
// errors out falls back to the cached price while it is fresh enough, and to
// a configured constant after that.
package oracle

import "context"

// Oracle returns the current reference-asset price in USD. Implementations
// must always return a usable number, never an error.
type Oracle interface {
	PriceUSD(ctx context.Context) float64
}

// Static is a fixed-price oracle for tests and offline use.
type Static float64

func (s Static) PriceUSD(context.Context) float64 { return float64(s) }
