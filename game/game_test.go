package game

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/takforge/takbot/board"
	"github.com/takforge/takbot/move"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func placeRow(b *board.Board, row int, cols []int, pc board.Piece) *board.Board {
	for _, c := range cols {
		b = b.PlacePiece(board.Position{Row: row, Col: c}, pc)
	}
	return b
}

func whiteFlat() board.Piece { return board.Piece{Kind: board.Flat, Color: board.White} }
func blackFlat() board.Piece { return board.Piece{Kind: board.Flat, Color: board.Black} }

func TestOpeningPlacesOpponentFlat(t *testing.T) {
	is := is.New(t)
	g, err := New(5)
	is.NoErr(err)
	is.True(g.InOpening())
	is.Equal(g.PlayerOnTurn(), board.White)

	g2, err := g.Apply(move.NewPlacement(board.Position{Row: 2, Col: 2}, board.Flat))
	is.NoErr(err)
	top, ok := g2.Board().Top(board.Position{Row: 2, Col: 2})
	is.True(ok)
	is.Equal(top.Color, board.Black) // the opening placement swaps colors
	is.Equal(top.Kind, board.Flat)
	is.Equal(g2.PlayerOnTurn(), board.Black)
	is.Equal(g2.ReserveFor(board.Black).Flats, 20)
	is.Equal(g2.ReserveFor(board.White).Flats, 21)
}

func TestOpeningRejectsNonFlat(t *testing.T) {
	is := is.New(t)
	g, err := New(5)
	is.NoErr(err)
	_, err = g.Apply(move.NewPlacement(board.Position{Row: 0, Col: 0}, board.Standing))
	is.True(err != nil)
	_, err = g.Apply(move.NewPlacement(board.Position{Row: 0, Col: 0}, board.Capstone))
	is.True(err != nil)
	_, err = g.Apply(move.NewStackMove(board.Position{Row: 0, Col: 0}, board.East, []int{1}))
	is.True(err != nil)
}

func TestRoadWinOnCompletion(t *testing.T) {
	is := is.New(t)
	b := placeRow(board.New(5), 2, []int{0, 1, 2, 3}, whiteFlat())
	b = placeRow(b, 0, []int{0, 1, 2}, blackFlat())
	g, err := FromBoard(b, board.White, 14)
	is.NoErr(err)
	is.True(g.Playing())

	g2, err := g.Apply(move.NewPlacement(board.Position{Row: 2, Col: 4}, board.Flat))
	is.NoErr(err)
	outcome, winner := g2.Outcome()
	is.Equal(outcome, RoadWin)
	is.Equal(winner, board.White)
	_, err = g2.Apply(move.NewPlacement(board.Position{Row: 0, Col: 4}, board.Flat))
	is.Equal(err, ErrGameOver)
}

func TestStandingStoneDoesNotFormRoad(t *testing.T) {
	is := is.New(t)
	b := placeRow(board.New(5), 2, []int{0, 1, 3, 4}, whiteFlat())
	b = b.PlacePiece(board.Position{Row: 2, Col: 2}, board.Piece{Kind: board.Standing, Color: board.White})
	g, err := FromBoard(b, board.Black, 10)
	is.NoErr(err)
	is.True(g.Playing())
}

func TestDragonClause(t *testing.T) {
	is := is.New(t)
	// Both colors hold full roads; the player who just moved wins.
	b := placeRow(board.New(5), 0, []int{0, 1, 2, 3, 4}, whiteFlat())
	b = placeRow(b, 4, []int{0, 1, 2, 3, 4}, blackFlat())

	g, err := FromBoard(b, board.Black, 20) // white moved last
	is.NoErr(err)
	outcome, winner := g.Outcome()
	is.Equal(outcome, RoadWin)
	is.Equal(winner, board.White)

	g, err = FromBoard(b, board.White, 21) // black moved last
	is.NoErr(err)
	outcome, winner = g.Outcome()
	is.Equal(outcome, RoadWin)
	is.Equal(winner, board.Black)
}

func TestFlattening(t *testing.T) {
	is := is.New(t)
	src := board.Position{Row: 2, Col: 2}
	dst := board.Position{Row: 2, Col: 3}
	b := board.New(5)
	b = b.SetStack(src, board.Stack{whiteFlat(), {Kind: board.Capstone, Color: board.White}})
	b = b.PlacePiece(dst, board.Piece{Kind: board.Standing, Color: board.Black})
	b = b.PlacePiece(board.Position{Row: 0, Col: 0}, blackFlat())
	g, err := FromBoard(b, board.White, 8)
	is.NoErr(err)

	// A lone capstone flattens the wall as its final step.
	g2, err := g.Apply(move.NewStackMove(src, board.East, []int{1}))
	is.NoErr(err)
	stack := g2.Board().StackAt(dst)
	is.Equal(stack.Height(), 2)
	is.Equal(stack[0], blackFlat()) // the wall is now a flat
	is.Equal(stack[1], board.Piece{Kind: board.Capstone, Color: board.White})

	// Carrying anything along with the capstone cannot flatten.
	_, err = g.Apply(move.NewStackMove(src, board.East, []int{2}))
	is.True(err != nil)
}

func TestNonCapstoneCannotFlatten(t *testing.T) {
	is := is.New(t)
	src := board.Position{Row: 2, Col: 2}
	b := board.New(5)
	b = b.PlacePiece(src, whiteFlat())
	b = b.PlacePiece(board.Position{Row: 2, Col: 3}, board.Piece{Kind: board.Standing, Color: board.Black})
	g, err := FromBoard(b, board.White, 6)
	is.NoErr(err)
	_, err = g.Apply(move.NewStackMove(src, board.East, []int{1}))
	is.True(err != nil)
}

func TestCapstoneBlocksEverything(t *testing.T) {
	is := is.New(t)
	src := board.Position{Row: 2, Col: 2}
	b := board.New(5)
	b = b.SetStack(src, board.Stack{whiteFlat(), {Kind: board.Capstone, Color: board.White}})
	b = b.PlacePiece(board.Position{Row: 2, Col: 3}, board.Piece{Kind: board.Capstone, Color: board.Black})
	g, err := FromBoard(b, board.White, 8)
	is.NoErr(err)
	_, err = g.Apply(move.NewStackMove(src, board.East, []int{1}))
	is.True(err != nil)
}

func TestCarryLimit(t *testing.T) {
	is := is.New(t)
	src := board.Position{Row: 2, Col: 0}
	tall := board.Stack{}
	for i := 0; i < 6; i++ {
		tall = tall.With(whiteFlat())
	}
	b := board.New(5).SetStack(src, tall)
	b = b.PlacePiece(board.Position{Row: 0, Col: 0}, blackFlat())
	g, err := FromBoard(b, board.White, 12)
	is.NoErr(err)

	// Six pieces exceed the carry limit of five on a 5x5.
	_, err = g.Apply(move.NewStackMove(src, board.East, []int{2, 1, 1, 2}))
	is.True(err != nil)
	// Five is fine.
	_, err = g.Apply(move.NewStackMove(src, board.East, []int{2, 1, 1, 1}))
	is.NoErr(err)
}

func TestStackMoveLeavesInputUntouched(t *testing.T) {
	is := is.New(t)
	src := board.Position{Row: 1, Col: 1}
	b := board.New(5).SetStack(src, board.Stack{blackFlat(), whiteFlat()})
	b = b.PlacePiece(board.Position{Row: 4, Col: 4}, blackFlat())
	g, err := FromBoard(b, board.White, 9)
	is.NoErr(err)
	_, err = g.Apply(move.NewStackMove(src, board.North, []int{1}))
	is.NoErr(err)
	is.Equal(g.Board().StackAt(src).Height(), 2)
	is.Equal(g.PlayerOnTurn(), board.White)
}

func TestFlatWinAndDraw(t *testing.T) {
	is := is.New(t)
	// Fill a 3x3: five white tops, four black tops.
	b := board.New(3)
	n := 0
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			pc := whiteFlat()
			if n%2 == 1 {
				pc = blackFlat()
			}
			b = b.PlacePiece(board.Position{Row: r, Col: c}, pc)
			n++
		}
	}
	// A full board with no road ends on flat count... but a 3x3 checker
	// pattern has no road for either color only if diagonals don't count,
	// which they don't. White has 5 tops to black's 4.
	g, err := FromBoard(b, board.Black, 9)
	is.NoErr(err)
	outcome, winner := g.Outcome()
	if outcome == RoadWin {
		t.Fatal("checkered 3x3 must not contain a road")
	}
	is.Equal(outcome, FlatWin)
	is.Equal(winner, board.White)

	// Standing tops count for neither side; demoting one white top to
	// standing makes it 4-4, a draw.
	b2 := b.SetStack(board.Position{Row: 0, Col: 0},
		board.Stack{{Kind: board.Standing, Color: board.White}})
	g2, err := FromBoard(b2, board.Black, 9)
	is.NoErr(err)
	outcome, _ = g2.Outcome()
	is.Equal(outcome, Draw)
}

func TestReserveSumInvariant(t *testing.T) {
	is := is.New(t)
	g, err := New(5)
	is.NoErr(err)
	allot, _ := ReserveForSize(5)

	notations := []string{"a1", "e5", "c3", "c4", "Sd3", "b3", "c3+", "Cc3"}
	for _, notation := range notations {
		m, err := move.Parse(notation, 5)
		is.NoErr(err)
		g, err = g.Apply(m)
		is.NoErr(err)

		for _, col := range []board.Color{board.White, board.Black} {
			placedFlats, placedCaps := 0, 0
			for r := 0; r < 5; r++ {
				for c := 0; c < 5; c++ {
					for _, pc := range g.Board().StackAt(board.Position{Row: r, Col: c}) {
						if pc.Color != col {
							continue
						}
						if pc.Kind == board.Capstone {
							placedCaps++
						} else {
							placedFlats++
						}
					}
				}
			}
			res := g.ReserveFor(col)
			is.Equal(placedFlats+res.Flats, allot.Flats)
			is.Equal(placedCaps+res.Capstones, allot.Capstones)
		}
	}
}

func TestCheckeredThreeByThree(t *testing.T) {
	// Regression guard for the flat-win test above: verify the pattern
	// really is road-free by checking a single off-by-one variant wins.
	is := is.New(t)
	b := placeRow(board.New(3), 1, []int{0, 1, 2}, whiteFlat())
	g, err := FromBoard(b, board.Black, 6)
	is.NoErr(err)
	outcome, winner := g.Outcome()
	is.Equal(outcome, RoadWin)
	is.Equal(winner, board.White)
}
