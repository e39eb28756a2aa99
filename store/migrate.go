package store

import (
	"encoding/json"
	"fmt"

	"github.com/rustyeddy/hodl/pkg/id"
	"github.com/rustyeddy/hodl/position"
)

// Two legacy layouts show up in old store files:
//
//   - token-keyed maps from before positions had identifiers: the map key is
//     the token symbol and the record carries no "id" field;
//   - records with separate "reduced_usd" and "profit_taken_usd" counters
//     from before both collapsed into "withdrawn_usd".
//
// upgradeRecord folds both into the current schema. It is a pure transform
// of one record and idempotent: a current-format record passes through
// untouched, so running it on every load (or via the fix command) is safe.

// legacyRecord is the current schema plus every field an older file may
// still carry.
type legacyRecord struct {
	position.Position
	ReducedUSD     float64 `json:"reduced_usd"`
	ProfitTakenUSD float64 `json:"profit_taken_usd"`
}

func upgradeRecord(key string, msg json.RawMessage, gen id.Generator) (position.Position, error) {
	var rec legacyRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		return position.Position{}, fmt.Errorf("parse record: %w", err)
	}

	p := rec.Position

	// Token-keyed layout: no id in the record, the key is the symbol.
	if p.ID == "" {
		p.ID = gen()
		if p.Token == "" {
			p.Token = key
		}
	}
	p.Token = position.NormalizeToken(p.Token)

	// Collapse the split withdrawal counters.
	p.WithdrawnUSD += rec.ReducedUSD + rec.ProfitTakenUSD

	// The cached derivation may be stale or missing in old files.
	p.TotalInvestedUSD = p.InitialValueUSD + p.CapitalAdditionsUSD

	return p, nil
}
