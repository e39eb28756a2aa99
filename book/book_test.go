package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/hodl/position"
	"github.com/rustyeddy/hodl/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testBook() (*Book, *store.MemStore) {
	mem := store.NewMem()
	return New(mem, WithClock(func() time.Time { return testNow })), mem
}

func TestRecordOpensThenUpdates(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()

	p, created, err := bk.Record("SOL", 200, 0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "sol", p.Token)
	assert.InDelta(t, 200, p.InitialValueUSD, 1e-9)

	// Revisit: same token, different case; appends fees, never re-creates.
	p2, created, err := bk.Record("sol", 240, 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, p2.ID)
	assert.InDelta(t, 200, p2.InitialValueUSD, 1e-9, "revisit must not touch the initial value")
	assert.InDelta(t, 5, p2.FeesClaimedUSD, 1e-9)

	active, err := bk.Active()
	require.NoError(t, err)
	assert.Len(t, active, 1, "one active position per token")
}

func TestCapitalFlowInvariants(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()
	_, _, err := bk.Record("tok", 200, 0)
	require.NoError(t, err)

	p, err := bk.AddCapital("tok", 100)
	require.NoError(t, err)
	assert.InDelta(t, 300, p.TotalInvestedUSD, 1e-9)

	p, err = bk.Withdraw("tok", 50)
	require.NoError(t, err)
	assert.InDelta(t, 300, p.TotalInvestedUSD, 1e-9, "withdrawal leaves invested untouched")
	assert.InDelta(t, 50, p.WithdrawnUSD, 1e-9)

	p, err = bk.ClaimFees("tok", 5)
	require.NoError(t, err)
	assert.InDelta(t, 5, p.FeesClaimedUSD, 1e-9)
}

func TestFlowsRequireActivePosition(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()

	_, err := bk.AddCapital("ghost", 10)
	assert.ErrorIs(t, err, ErrNoActive)
	_, err = bk.Withdraw("ghost", 10)
	assert.ErrorIs(t, err, ErrNoActive)
	_, err = bk.ClaimFees("ghost", 10)
	assert.ErrorIs(t, err, ErrNoActive)
	_, err = bk.Close("ghost", 100, 0)
	assert.ErrorIs(t, err, ErrNoActive)
	_, err = bk.Reset("ghost", 100)
	assert.ErrorIs(t, err, ErrNoActive)
	_, err = bk.Remove("ghost")
	assert.ErrorIs(t, err, ErrNoActive)
}

func TestValidationFailureWritesNothing(t *testing.T) {
	t.Parallel()

	bk, mem := testBook()
	_, _, err := bk.Record("tok", 200, 0)
	require.NoError(t, err)

	before, err := mem.Load()
	require.NoError(t, err)

	_, err = bk.AddCapital("tok", -10)
	assert.ErrorIs(t, err, position.ErrNonPositiveAmount)

	after, err := mem.Load()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCloseScenario(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()
	_, _, err := bk.Record("tok", 200, 0)
	require.NoError(t, err)
	_, err = bk.AddCapital("tok", 100)
	require.NoError(t, err)
	_, err = bk.Withdraw("tok", 50)
	require.NoError(t, err)
	_, err = bk.ClaimFees("tok", 5)
	require.NoError(t, err)

	p, err := bk.Close("tok", 500, 10)
	require.NoError(t, err)

	assert.True(t, p.IsClosed)
	assert.InDelta(t, 15, p.FeesClaimedUSD, 1e-9)
	assert.InDelta(t, 265, p.FinalPnlUSD, 1e-9)
	assert.InDelta(t, 88.33, p.FinalPnlPercentage, 0.01)
}

func TestClosedPositionIsInvisibleToMutations(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()
	_, _, err := bk.Record("tok", 200, 0)
	require.NoError(t, err)
	_, err = bk.Close("tok", 300, 0)
	require.NoError(t, err)

	// Lookups filter on the active flag, so every mutation reports not-found.
	_, err = bk.AddCapital("tok", 10)
	assert.ErrorIs(t, err, ErrNoActive)
	_, err = bk.Close("tok", 400, 0)
	assert.ErrorIs(t, err, ErrNoActive)

	// A new round can open for the same token; the closed record survives.
	_, created, err := bk.Record("tok", 100, 0)
	require.NoError(t, err)
	assert.True(t, created)

	closed, err := bk.Closed()
	require.NoError(t, err)
	assert.Len(t, closed, 1)
	active, err := bk.Active()
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestResetDiscardsHistory(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()
	old, _, err := bk.Record("tok", 200, 0)
	require.NoError(t, err)
	_, err = bk.AddCapital("tok", 100)
	require.NoError(t, err)

	fresh, err := bk.Reset("tok", 50)
	require.NoError(t, err)

	assert.NotEqual(t, old.ID, fresh.ID)
	assert.InDelta(t, 50, fresh.InitialValueUSD, 1e-9)
	assert.Zero(t, fresh.CapitalAdditionsUSD)

	// The old position is gone, not archived.
	closed, err := bk.Closed()
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestRemoveLeavesClosedRecords(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()
	_, _, err := bk.Record("tok", 200, 0)
	require.NoError(t, err)
	_, err = bk.Close("tok", 300, 0)
	require.NoError(t, err)
	_, _, err = bk.Record("tok", 100, 0)
	require.NoError(t, err)

	_, err = bk.Remove("tok")
	require.NoError(t, err)

	active, err := bk.Active()
	require.NoError(t, err)
	assert.Empty(t, active)

	closed, err := bk.Closed()
	require.NoError(t, err)
	assert.Len(t, closed, 1, "remove must not touch closed rounds")
}

func TestCleanDropsOversizedPositions(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()
	_, _, err := bk.Record("ok", 500, 0)
	require.NoError(t, err)
	_, _, err = bk.Record("fat", 2_000_000, 0)
	require.NoError(t, err)

	dropped, err := bk.Clean(1_000_000)
	require.NoError(t, err)
	require.Len(t, dropped, 1)
	assert.Equal(t, "fat", dropped[0].Token)

	active, err := bk.Active()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "ok", active[0].Token)
}

func TestCleanNoopLeavesStoreAlone(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()
	_, _, err := bk.Record("ok", 500, 0)
	require.NoError(t, err)

	dropped, err := bk.Clean(1_000_000)
	require.NoError(t, err)
	assert.Empty(t, dropped)
}

func TestFixRoundTrips(t *testing.T) {
	t.Parallel()

	bk, _ := testBook()
	_, _, err := bk.Record("a", 100, 0)
	require.NoError(t, err)
	_, _, err = bk.Record("b", 100, 0)
	require.NoError(t, err)

	n, err := bk.Fix()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestClosedSortsNewestFirst(t *testing.T) {
	t.Parallel()

	mem := store.NewMem()
	current := testNow
	bk := New(mem, WithClock(func() time.Time { return current }))

	_, _, err := bk.Record("a", 100, 0)
	require.NoError(t, err)
	_, err = bk.Close("a", 150, 0)
	require.NoError(t, err)

	current = testNow.Add(24 * time.Hour)
	_, _, err = bk.Record("b", 100, 0)
	require.NoError(t, err)
	_, err = bk.Close("b", 90, 0)
	require.NoError(t, err)

	closed, err := bk.Closed()
	require.NoError(t, err)
	require.Len(t, closed, 2)
	assert.Equal(t, "b", closed[0].Token)
	assert.Equal(t, "a", closed[1].Token)
}
