// Package game encapsulates a Tak game position: the board, piece
// reserves, side to move, opening phase, and terminal detection. Positions
// are immutable; applying a move returns a fresh position and never
// touches the input, which is what lets the search tree share state
// freely across simulated lines.
package game

import (
	"errors"
	"fmt"

	"github.com/takforge/takbot/analysis"
	"github.com/takforge/takbot/board"
	"github.com/takforge/takbot/move"
)

// Outcome classifies a position's terminal state.
type Outcome uint8

const (
	Playing Outcome = iota
	RoadWin
	FlatWin
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Playing:
		return "playing"
	case RoadWin:
		return "road win"
	case FlatWin:
		return "flat win"
	case Draw:
		return "draw"
	}
	return "unknown"
}

var (
	ErrBadSize     = errors.New("board size must be between 3 and 8")
	ErrGameOver    = errors.New("game is over")
	ErrIllegalMove = errors.New("illegal move")
)

// Reserve is the pieces a player has not yet placed.
type Reserve struct {
	Flats     int
	Capstones int
}

func (r Reserve) empty() bool {
	return r.Flats == 0 && r.Capstones == 0
}

// ReserveForSize returns the starting allotment for a board size.
func ReserveForSize(size int) (Reserve, error) {
	switch size {
	case 3:
		return Reserve{Flats: 10}, nil
	case 4:
		return Reserve{Flats: 15}, nil
	case 5:
		return Reserve{Flats: 21, Capstones: 1}, nil
	case 6:
		return Reserve{Flats: 30, Capstones: 1}, nil
	case 7:
		return Reserve{Flats: 40, Capstones: 2}, nil
	case 8:
		return Reserve{Flats: 50, Capstones: 2}, nil
	}
	return Reserve{}, fmt.Errorf("%w: %d", ErrBadSize, size)
}

// Game is one Tak position. The zero value is not usable; construct with
// New or FromBoard.
type Game struct {
	board    *board.Board
	reserves [2]Reserve
	onTurn   board.Color
	ply      int
	outcome  Outcome
	winner   board.Color
}

// New creates the starting position for a game of the given size, white
// to move.
func New(size int) (*Game, error) {
	res, err := ReserveForSize(size)
	if err != nil {
		return nil, err
	}
	return &Game{
		board:    board.New(size),
		reserves: [2]Reserve{res, res},
		onTurn:   board.White,
	}, nil
}

// FromBoard reconstructs a position from an arbitrary board, deriving
// reserves from what is already placed. It is the entry point for
// position-notation parsing and for test setups.
func FromBoard(b *board.Board, onTurn board.Color, ply int) (*Game, error) {
	allot, err := ReserveForSize(b.Size())
	if err != nil {
		return nil, err
	}
	var placed [2]Reserve
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			for _, pc := range b.StackAt(board.Position{Row: r, Col: c}) {
				if pc.Kind == board.Capstone {
					placed[pc.Color].Capstones++
				} else {
					placed[pc.Color].Flats++
				}
			}
		}
	}
	g := &Game{board: b, onTurn: onTurn, ply: ply}
	for _, c := range []board.Color{board.White, board.Black} {
		g.reserves[c] = Reserve{
			Flats:     allot.Flats - placed[c].Flats,
			Capstones: allot.Capstones - placed[c].Capstones,
		}
		if g.reserves[c].Flats < 0 || g.reserves[c].Capstones < 0 {
			return nil, fmt.Errorf("board holds more %s pieces than the size-%d allotment", c, b.Size())
		}
	}
	g.settleOutcome(onTurn.Other())
	return g, nil
}

// Board returns the position's board. The board is immutable; callers may
// hold it across moves.
func (g *Game) Board() *board.Board {
	return g.board
}

// Size returns the board dimension, which is also the carry limit.
func (g *Game) Size() int {
	return g.board.Size()
}

// PlayerOnTurn returns the color to move.
func (g *Game) PlayerOnTurn() board.Color {
	return g.onTurn
}

// Ply returns the number of half-moves played.
func (g *Game) Ply() int {
	return g.ply
}

// InOpening reports whether the position is in the opening phase, the
// first half-move of each side, during which a placement puts down a flat
// of the opponent's color.
func (g *Game) InOpening() bool {
	return g.ply < 2
}

// Playing reports whether the game is still in progress.
func (g *Game) Playing() bool {
	return g.outcome == Playing
}

// Outcome returns the terminal classification and, for wins, the winner.
func (g *Game) Outcome() (Outcome, board.Color) {
	return g.outcome, g.winner
}

// ReserveFor returns color's unplaced pieces.
func (g *Game) ReserveFor(c board.Color) Reserve {
	return g.reserves[c]
}

// TopFlats counts cells whose controlling piece is a flat of color. This
// is the count that decides a flat win.
func (g *Game) TopFlats(c board.Color) int {
	n := 0
	for r := 0; r < g.board.Size(); r++ {
		for col := 0; col < g.board.Size(); col++ {
			if top, ok := g.board.Top(board.Position{Row: r, Col: col}); ok {
				if top.Kind == board.Flat && top.Color == c {
					n++
				}
			}
		}
	}
	return n
}

// placementColor returns whose piece a placement by the mover puts down.
// During the opening each side places a flat of the opponent's color,
// charged to the opponent's reserve.
func (g *Game) placementColor() board.Color {
	if g.InOpening() {
		return g.onTurn.Other()
	}
	return g.onTurn
}

func (g *Game) applyPlacement(m move.Move) (*board.Board, [2]Reserve, error) {
	if !g.board.CanPlaceOn(m.Pos) {
		return nil, g.reserves, fmt.Errorf("%w: cannot place on %s", ErrIllegalMove, m.Pos)
	}
	if g.InOpening() && m.Kind != board.Flat {
		return nil, g.reserves, fmt.Errorf("%w: only flats may be placed during the opening", ErrIllegalMove)
	}
	pieceColor := g.placementColor()
	reserves := g.reserves
	switch m.Kind {
	case board.Flat, board.Standing:
		if reserves[pieceColor].Flats == 0 {
			return nil, g.reserves, fmt.Errorf("%w: %s has no flats in reserve", ErrIllegalMove, pieceColor)
		}
		reserves[pieceColor].Flats--
	case board.Capstone:
		if reserves[pieceColor].Capstones == 0 {
			return nil, g.reserves, fmt.Errorf("%w: %s has no capstone in reserve", ErrIllegalMove, pieceColor)
		}
		reserves[pieceColor].Capstones--
	default:
		return nil, g.reserves, fmt.Errorf("%w: unknown piece kind", ErrIllegalMove)
	}
	nb := g.board.PlacePiece(m.Pos, board.Piece{Kind: m.Kind, Color: pieceColor})
	return nb, reserves, nil
}

func (g *Game) applyStackMove(m move.Move) (*board.Board, error) {
	if g.InOpening() {
		return nil, fmt.Errorf("%w: stack moves are not allowed during the opening", ErrIllegalMove)
	}
	src := g.board.StackAt(m.Pos)
	top, ok := src.Top()
	if !ok || top.Color != g.onTurn {
		return nil, fmt.Errorf("%w: %s does not control %s", ErrIllegalMove, g.onTurn, m.Pos)
	}
	carry := m.Carry()
	limit := g.Size()
	if carry < 1 || carry > len(src) || carry > limit {
		return nil, fmt.Errorf("%w: cannot carry %d from a stack of %d (limit %d)", ErrIllegalMove, carry, len(src), limit)
	}
	if len(m.Drops) == 0 {
		return nil, fmt.Errorf("%w: empty drop sequence", ErrIllegalMove)
	}
	for _, d := range m.Drops {
		if d < 1 {
			return nil, fmt.Errorf("%w: each step must drop at least one piece", ErrIllegalMove)
		}
	}

	carried := src[len(src)-carry:].With()
	nb := g.board.SetStack(m.Pos, src[:len(src)-carry].With())
	cur := m.Pos
	for i, drop := range m.Drops {
		cur = cur.Shift(m.Dir)
		if !nb.IsValidPosition(cur) {
			return nil, fmt.Errorf("%w: drop sequence runs off the board at %s", ErrIllegalMove, cur)
		}
		dst := nb.StackAt(cur)
		if dstTop, occupied := dst.Top(); occupied {
			switch dstTop.Kind {
			case board.Capstone:
				return nil, fmt.Errorf("%w: a capstone tops %s", ErrIllegalMove, cur)
			case board.Standing:
				// Only a lone capstone may land on a wall, as the final
				// step, flattening it.
				last := i == len(m.Drops)-1
				if !last || len(carried) != 1 || carried[0].Kind != board.Capstone {
					return nil, fmt.Errorf("%w: a standing stone tops %s", ErrIllegalMove, cur)
				}
				dst = dst[:len(dst)-1].With(board.Piece{Kind: board.Flat, Color: dstTop.Color})
			}
		}
		nb = nb.SetStack(cur, dst.With(carried[:drop]...))
		carried = carried[drop:]
	}
	return nb, nil
}

// Apply plays a move, returning the successor position. The receiver is
// never modified; an illegal move returns an error wrapping
// ErrIllegalMove and the caller's position stays valid.
func (g *Game) Apply(m move.Move) (*Game, error) {
	if g.outcome != Playing {
		return nil, ErrGameOver
	}
	var (
		nb       *board.Board
		reserves = g.reserves
		err      error
	)
	switch m.Type {
	case move.TypePlacement:
		nb, reserves, err = g.applyPlacement(m)
	case move.TypeStackMove:
		nb, err = g.applyStackMove(m)
	default:
		err = fmt.Errorf("%w: unknown move type", ErrIllegalMove)
	}
	if err != nil {
		return nil, err
	}
	ng := &Game{
		board:    nb,
		reserves: reserves,
		onTurn:   g.onTurn.Other(),
		ply:      g.ply + 1,
	}
	ng.settleOutcome(g.onTurn)
	return ng, nil
}

// CanApply reports whether the move would apply successfully.
func (g *Game) CanApply(m move.Move) bool {
	_, err := g.Apply(m)
	return err == nil
}

// settleOutcome runs terminal detection after a move by mover. The mover's
// road is checked first: a move creating roads for both colors wins for
// the player who made it.
func (g *Game) settleOutcome(mover board.Color) {
	if analysis.HasRoad(g.board, mover) {
		g.outcome, g.winner = RoadWin, mover
		return
	}
	if analysis.HasRoad(g.board, mover.Other()) {
		g.outcome, g.winner = RoadWin, mover.Other()
		return
	}
	if !g.board.Full() && !g.reserves[board.White].empty() && !g.reserves[board.Black].empty() {
		return
	}
	w, b := g.TopFlats(board.White), g.TopFlats(board.Black)
	switch {
	case w > b:
		g.outcome, g.winner = FlatWin, board.White
	case b > w:
		g.outcome, g.winner = FlatWin, board.Black
	default:
		g.outcome = Draw
	}
}

// ToDisplayText renders the position for debugging and the shell.
func (g *Game) ToDisplayText() string {
	s := g.board.ToDisplayText()
	s += fmt.Sprintf("%s to move, ply %d; reserves W %d/%d B %d/%d\n",
		g.onTurn, g.ply,
		g.reserves[board.White].Flats, g.reserves[board.White].Capstones,
		g.reserves[board.Black].Flats, g.reserves[board.Black].Capstones)
	if g.outcome != Playing {
		if g.outcome == Draw {
			s += "game drawn\n"
		} else {
			s += fmt.Sprintf("%s by %s\n", g.outcome, g.winner)
		}
	}
	return s
}
