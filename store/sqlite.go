package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/hodl/pkg/id"
	"github.com/rustyeddy/hodl/position"
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
	id TEXT PRIMARY KEY,
	token TEXT NOT NULL,
	initial_value_usd REAL NOT NULL,
	capital_additions_usd REAL NOT NULL,
	withdrawn_usd REAL NOT NULL,
	fees_claimed_usd REAL NOT NULL,
	total_invested_usd REAL NOT NULL,
	created_at DATETIME NOT NULL,
	last_updated DATETIME NOT NULL,
	is_closed INTEGER NOT NULL,
	closed_at DATETIME,
	exit_value_usd REAL NOT NULL DEFAULT 0,
	final_pnl_usd REAL NOT NULL DEFAULT 0,
	final_pnl_percentage REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_positions_token ON positions(token);
`

// SQLiteStore keeps the record set in a single positions table. Save replaces
// the table contents in one transaction, matching the whole-map semantics of
// the JSON backend.
type SQLiteStore struct {
	db  *sql.DB
	gen id.Generator
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, gen: id.New}, nil
}

func (s *SQLiteStore) Load() (map[string]position.Position, error) {
	rows, err := s.db.Query(`
		SELECT id, token, initial_value_usd, capital_additions_usd, withdrawn_usd,
		       fees_claimed_usd, total_invested_usd, created_at, last_updated,
		       is_closed, closed_at, exit_value_usd, final_pnl_usd, final_pnl_percentage
		FROM positions`)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	out := map[string]position.Position{}
	for rows.Next() {
		var p position.Position
		var closedAt sql.NullTime
		if err := rows.Scan(
			&p.ID,
			&p.Token,
			&p.InitialValueUSD,
			&p.CapitalAdditionsUSD,
			&p.WithdrawnUSD,
			&p.FeesClaimedUSD,
			&p.TotalInvestedUSD,
			&p.CreatedAt,
			&p.LastUpdated,
			&p.IsClosed,
			&closedAt,
			&p.ExitValueUSD,
			&p.FinalPnlUSD,
			&p.FinalPnlPercentage,
		); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		if closedAt.Valid {
			t := closedAt.Time
			p.ClosedAt = &t
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Save(positions map[string]position.Position) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM positions`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear positions: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO positions
		(id, token, initial_value_usd, capital_additions_usd, withdrawn_usd,
		 fees_claimed_usd, total_invested_usd, created_at, last_updated,
		 is_closed, closed_at, exit_value_usd, final_pnl_usd, final_pnl_percentage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		var closedAt interface{}
		if p.ClosedAt != nil {
			closedAt = *p.ClosedAt
		}
		if _, err := stmt.Exec(
			p.ID, p.Token, p.InitialValueUSD, p.CapitalAdditionsUSD,
			p.WithdrawnUSD, p.FeesClaimedUSD, p.TotalInvestedUSD,
			p.CreatedAt, p.LastUpdated, p.IsClosed, closedAt,
			p.ExitValueUSD, p.FinalPnlUSD, p.FinalPnlPercentage,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert position %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) NewID() string { return s.gen() }

func (s *SQLiteStore) Close() error { return s.db.Close() }
