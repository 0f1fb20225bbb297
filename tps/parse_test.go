package tps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takforge/takbot/board"
	"github.com/takforge/takbot/game"
	"github.com/takforge/takbot/move"
)

func TestParseEmptyBoard(t *testing.T) {
	g, err := Parse("x5/x5/x5/x5/x5 1 1")
	require.NoError(t, err)
	assert.Equal(t, 5, g.Size())
	assert.Equal(t, board.White, g.PlayerOnTurn())
	assert.Equal(t, 0, g.Ply())
	assert.True(t, g.InOpening())
	assert.True(t, g.Board().Empty())
}

func TestParseStacksAndModifiers(t *testing.T) {
	g, err := Parse("x5/x5/x2,12C,x2/x,2S,x3/1,x4 2 3")
	require.NoError(t, err)
	assert.Equal(t, board.Black, g.PlayerOnTurn())
	assert.Equal(t, 5, g.Ply())

	// 12C sits on c3: white flat under a black capstone.
	s := g.Board().StackAt(board.Position{Row: 2, Col: 2})
	require.Equal(t, 2, s.Height())
	assert.Equal(t, board.Piece{Kind: board.Flat, Color: board.White}, s[0])
	assert.Equal(t, board.Piece{Kind: board.Capstone, Color: board.Black}, s[1])

	top, ok := g.Board().Top(board.Position{Row: 1, Col: 1})
	require.True(t, ok)
	assert.Equal(t, board.Piece{Kind: board.Standing, Color: board.Black}, top)

	top, ok = g.Board().Top(board.Position{Row: 0, Col: 0})
	require.True(t, ok)
	assert.Equal(t, board.Piece{Kind: board.Flat, Color: board.White}, top)
}

func TestParseTopRankFirst(t *testing.T) {
	g, err := Parse("1,x4/x5/x5/x5/x4,2 1 2")
	require.NoError(t, err)
	top, ok := g.Board().Top(board.Position{Row: 4, Col: 0})
	require.True(t, ok)
	assert.Equal(t, board.White, top.Color)
	top, ok = g.Board().Top(board.Position{Row: 0, Col: 4})
	require.True(t, ok)
	assert.Equal(t, board.Black, top.Color)
}

func TestRoundTrip(t *testing.T) {
	for _, tps := range []string{
		"x5/x5/x5/x5/x5 1 1",
		"x5/x5/x2,12C,x2/x,2S,x3/1,x4 2 3",
		"2,x2/x,121S,x/x2,1 1 4",
		"x6/x6/x6/x3,1122C,x2/x6/2,x5 2 9",
	} {
		g, err := Parse(tps)
		require.NoError(t, err, tps)
		assert.Equal(t, tps, Format(g))
	}
}

func TestFormatAfterPlay(t *testing.T) {
	g, err := game.New(5)
	require.NoError(t, err)
	for _, n := range []string{"a1", "e5", "c3"} {
		m, err := move.Parse(n, 5)
		require.NoError(t, err)
		g, err = g.Apply(m)
		require.NoError(t, err)
	}
	tps := Format(g)
	assert.Equal(t, "x4,1/x5/x2,1,x2/x5/2,x4 2 2", tps)

	back, err := Parse(tps)
	require.NoError(t, err)
	assert.Equal(t, g.PlayerOnTurn(), back.PlayerOnTurn())
	assert.Equal(t, g.Ply(), back.Ply())
	assert.Equal(t, Format(g), Format(back))
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, tps := range []string{
		"",
		"x5/x5/x5/x5/x5 1",           // missing move number
		"x5/x5/x5/x5 1 1 extra",      // too many fields
		"x5/x5 1 1",                  // too few ranks
		"x4/x5/x5/x5/x5 1 1",         // short rank
		"x6/x5/x5/x5/x5 1 1",         // long rank
		"x5/x5/x5/x5/x5 3 1",         // bad side
		"x5/x5/x5/x5/x5 1 0",         // bad move number
		"x5/x5/x2,S,x2/x5/x5 1 1",    // modifier with no stack
		"x5/x5/x2,1S2,x2/x5/x5 1 1",  // modifier mid-stack
		"x5/x5/x2,13,x2/x5/x5 1 1",   // bad color digit
		"x5/x5/x5/x5/22222 1 6",      // one tall stack is not five cells
		"x5/x5/x2,x0,x2/x5/x5 1 1",   // zero-length empty run
	} {
		_, err := Parse(tps)
		assert.ErrorIs(t, err, ErrBadTPS, "expected rejection of %q", tps)
	}
}

func TestParseDecidedPosition(t *testing.T) {
	// A completed road parses fine; the outcome settles on construction.
	g, err := Parse("x5/x5/x5/x5/2,2,2,2,2 1 6")
	require.NoError(t, err)
	assert.False(t, g.Playing())
	outcome, winner := g.Outcome()
	assert.Equal(t, game.RoadWin, outcome)
	assert.Equal(t, board.Black, winner)
}

func TestParseOverAllotment(t *testing.T) {
	// A 3x3 allots ten flats per color; eleven white pieces cannot parse.
	_, err := Parse("111111,11111,x/x3/x3 1 12")
	assert.Error(t, err)
}
