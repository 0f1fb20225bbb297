package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/takforge/takbot/board"
)

func flat(c board.Color) board.Piece     { return board.Piece{Kind: board.Flat, Color: c} }
func standing(c board.Color) board.Piece { return board.Piece{Kind: board.Standing, Color: c} }
func capstone(c board.Color) board.Piece { return board.Piece{Kind: board.Capstone, Color: c} }

func placeAll(b *board.Board, pc board.Piece, cells ...board.Position) *board.Board {
	for _, p := range cells {
		b = b.PlacePiece(p, pc)
	}
	return b
}

func row(r int, cols ...int) []board.Position {
	out := make([]board.Position, len(cols))
	for i, c := range cols {
		out[i] = board.Position{Row: r, Col: c}
	}
	return out
}

func TestHasRoadAcrossRow(t *testing.T) {
	b := placeAll(board.New(5), flat(board.White), row(2, 0, 1, 2, 3, 4)...)
	assert.True(t, HasRoad(b, board.White))
	assert.False(t, HasRoad(b, board.Black))
}

func TestHasRoadAcrossColumn(t *testing.T) {
	b := board.New(5)
	for r := 0; r < 5; r++ {
		b = b.PlacePiece(board.Position{Row: r, Col: 3}, flat(board.Black))
	}
	assert.True(t, HasRoad(b, board.Black))
}

func TestHasRoadBentPath(t *testing.T) {
	cells := []board.Position{
		{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2},
		{Row: 2, Col: 2}, {Row: 3, Col: 2}, {Row: 3, Col: 3}, {Row: 3, Col: 4},
	}
	b := placeAll(board.New(5), flat(board.White), cells...)
	assert.True(t, HasRoad(b, board.White), "a winding west-east chain is a road")
}

func TestStandingStoneBreaksRoad(t *testing.T) {
	b := placeAll(board.New(5), flat(board.White), row(2, 0, 1, 3, 4)...)
	b = b.PlacePiece(board.Position{Row: 2, Col: 2}, standing(board.White))
	assert.False(t, HasRoad(b, board.White))

	// A capstone in the gap does count.
	b2 := placeAll(board.New(5), flat(board.White), row(2, 0, 1, 3, 4)...)
	b2 = b2.PlacePiece(board.Position{Row: 2, Col: 2}, capstone(board.White))
	assert.True(t, HasRoad(b2, board.White))
}

func TestOpponentCellBreaksRoad(t *testing.T) {
	b := placeAll(board.New(5), flat(board.White), row(2, 0, 1, 3, 4)...)
	b = b.PlacePiece(board.Position{Row: 2, Col: 2}, flat(board.Black))
	assert.False(t, HasRoad(b, board.White))
}

func TestReachableEdges(t *testing.T) {
	b := placeAll(board.New(5), flat(board.White), row(2, 0, 1, 2)...)
	edges := ReachableEdges(b, board.Position{Row: 2, Col: 1}, board.White)
	assert.True(t, edges.Has(EdgeWest))
	assert.False(t, edges.Has(EdgeEast))
	assert.False(t, edges.HasOppositePair())

	assert.Equal(t, EdgeSet(0), ReachableEdges(b, board.Position{Row: 4, Col: 4}, board.White))
	assert.Equal(t, EdgeSet(0), ReachableEdges(b, board.Position{Row: 2, Col: 1}, board.Black))
}

func TestCountThreatsSingle(t *testing.T) {
	// Four in a row leaves exactly one completing square.
	b := placeAll(board.New(5), flat(board.White), row(2, 0, 1, 2, 3)...)
	assert.Equal(t, 1, CountThreats(b, board.White, 3, nil))
	assert.Equal(t, 0, CountThreats(b, board.Black, 3, nil))

	squares := ThreatSquares(b, board.White, 3)
	assert.Equal(t, []board.Position{{Row: 2, Col: 4}}, squares)
}

func TestCountThreatsFork(t *testing.T) {
	// A chain reaching the west edge with two gaps on the east side: both
	// (1,4) and (3,4) complete through (2,3)'s arms, plus (2,4) directly.
	cells := append(row(2, 0, 1, 2, 3),
		board.Position{Row: 1, Col: 3}, board.Position{Row: 3, Col: 3})
	b := placeAll(board.New(5), flat(board.White), cells...)
	n := CountThreats(b, board.White, 5, nil)
	assert.GreaterOrEqual(t, n, 2)
}

func TestCountThreatsHonorsMax(t *testing.T) {
	cells := append(row(2, 0, 1, 2, 3),
		board.Position{Row: 1, Col: 3}, board.Position{Row: 3, Col: 3})
	b := placeAll(board.New(5), flat(board.White), cells...)
	assert.Equal(t, 2, CountThreats(b, board.White, 2, nil))
	assert.Equal(t, 0, CountThreats(b, board.White, 0, nil))
}

func TestCountThreatsCacheConsistency(t *testing.T) {
	b := placeAll(board.New(5), flat(board.White), row(2, 0, 1, 2, 3)...)
	cache := NewCache()
	cold := CountThreats(b, board.White, 3, cache)
	warm := CountThreats(b, board.White, 3, cache)
	assert.Equal(t, cold, warm)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, cold, CountThreats(b, board.White, 3, nil))
}

func TestControlsRoad(t *testing.T) {
	b := board.New(5)
	p := board.Position{Row: 1, Col: 1}
	assert.False(t, ControlsRoad(b, p, board.White))
	assert.True(t, ControlsRoad(b.PlacePiece(p, flat(board.White)), p, board.White))
	assert.False(t, ControlsRoad(b.PlacePiece(p, standing(board.White)), p, board.White))
	assert.True(t, ControlsRoad(b.PlacePiece(p, capstone(board.White)), p, board.White))
	assert.False(t, ControlsRoad(b.PlacePiece(p, flat(board.Black)), p, board.White))
}

func TestChainExtension(t *testing.T) {
	// Two arms reaching west and east; the cell between them bridges.
	b := placeAll(board.New(5), flat(board.White), row(2, 0, 1)...)
	b = placeAll(b, flat(board.White), row(2, 3, 4)...)
	gap := board.Position{Row: 2, Col: 2}
	assert.Equal(t, ChainBridge, ChainExtension(b, gap, board.White))

	// Next to a single west-reaching arm: partial credit.
	arm := placeAll(board.New(5), flat(board.White), row(2, 0, 1)...)
	assert.Equal(t, ChainEdge, ChainExtension(arm, gap, board.White))

	// Isolated border cell.
	empty := board.New(5)
	assert.Equal(t, ChainBorder, ChainExtension(empty, board.Position{Row: 0, Col: 2}, board.White))
	assert.Equal(t, 0, ChainExtension(empty, gap, board.White))
	assert.Equal(t, 0, ChainExtension(empty, board.Position{Row: 9, Col: 9}, board.White))
}

func TestLargestChain(t *testing.T) {
	b := placeAll(board.New(5), flat(board.White), row(2, 0, 1, 2)...)
	b = placeAll(b, flat(board.White), row(4, 3, 4)...)
	n, edges := LargestChain(b, board.White)
	assert.Equal(t, 3, n)
	assert.True(t, edges.Has(EdgeWest))

	n, edges = LargestChain(board.New(5), board.White)
	assert.Equal(t, 0, n)
	assert.Equal(t, EdgeSet(0), edges)
}

func TestFingerprint(t *testing.T) {
	a := placeAll(board.New(5), flat(board.White), row(2, 0, 1)...)
	b := placeAll(board.New(5), flat(board.White), row(2, 1, 0)...)
	assert.Equal(t, Fingerprint(a), Fingerprint(b), "order of placement must not matter")

	c := placeAll(board.New(5), flat(board.Black), row(2, 0, 1)...)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))

	d := placeAll(board.New(5), standing(board.White), row(2, 0, 1)...)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(d))
}
