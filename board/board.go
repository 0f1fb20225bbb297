// Package board contains the low-level Tak board representation: pieces,
// stacks, and an immutable grid of stacks with structural sharing. Nothing
// in this package knows about reserves, turn order, or win conditions;
// that lives in the game package.
package board

import (
	"fmt"
	"strings"
)

// Color is a player color.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color {
	return 1 - c
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Kind is the kind of a piece. A standing stone (wall) blocks stacking and
// roads; a capstone counts for roads, blocks stacking, and can flatten a
// standing stone as the final step of a stack move.
type Kind uint8

const (
	Flat Kind = iota + 1
	Standing
	Capstone
)

func (k Kind) String() string {
	switch k {
	case Flat:
		return "flat"
	case Standing:
		return "standing"
	case Capstone:
		return "capstone"
	}
	return "none"
}

// Piece is a single stone on the board.
type Piece struct {
	Kind  Kind
	Color Color
}

// Roadworthy reports whether the piece counts toward a road when it is on
// top of its stack. Standing stones do not.
func (p Piece) Roadworthy() bool {
	return p.Kind != Standing
}

// Position is a 0-indexed (row, column) cell address. Row 0 is the south
// edge (rank 1 in move notation); column 0 is the west edge (file a).
type Position struct {
	Row, Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%c%d", 'a'+rune(p.Col), p.Row+1)
}

// Direction is one of the four orthogonal movement directions.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists all four directions in a fixed enumeration order. Move
// generation depends on this order being stable.
var Directions = [4]Direction{North, East, South, West}

// Delta returns the (row, col) step for the direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case North:
		return 1, 0
	case East:
		return 0, 1
	case South:
		return -1, 0
	case West:
		return 0, -1
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "none"
}

// Shift returns the neighboring position one step in the given direction.
// The result may be off-board; callers check with IsValidPosition.
func (p Position) Shift(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Stack is an ordered pile of pieces on one cell, bottom to top. The top
// piece controls the cell. A nil Stack is an empty cell.
type Stack []Piece

// Height returns the number of pieces in the stack.
func (s Stack) Height() int {
	return len(s)
}

// Top returns the controlling (topmost) piece, if any.
func (s Stack) Top() (Piece, bool) {
	if len(s) == 0 {
		return Piece{}, false
	}
	return s[len(s)-1], true
}

// With returns a new stack with the given pieces appended on top. The
// receiver is never modified and never shares backing storage with the
// result, so stacks can be held by multiple boards safely.
func (s Stack) With(pieces ...Piece) Stack {
	out := make(Stack, 0, len(s)+len(pieces))
	out = append(out, s...)
	return append(out, pieces...)
}

func (s Stack) equal(o Stack) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Board is an immutable size×size grid of stacks. Mutating operations
// return a new Board that shares every untouched row with its predecessor;
// a single-cell change copies one row and the row table, never the whole
// grid.
type Board struct {
	size int
	rows [][]Stack
}

// New creates an empty board. Supported sizes are 3 through 8; anything
// else is clamped into that range by the game package before it gets here,
// so New itself accepts any positive size.
func New(size int) *Board {
	rows := make([][]Stack, size)
	for r := range rows {
		rows[r] = make([]Stack, size)
	}
	return &Board{size: size, rows: rows}
}

// Size returns the board dimension.
func (b *Board) Size() int {
	return b.size
}

// IsValidPosition reports whether p is on the board. Search and move
// generation probe off-board neighbors routinely, so this never panics.
func (b *Board) IsValidPosition(p Position) bool {
	return p.Row >= 0 && p.Row < b.size && p.Col >= 0 && p.Col < b.size
}

// StackAt returns the stack at p, or nil for an off-board position.
func (b *Board) StackAt(p Position) Stack {
	if !b.IsValidPosition(p) {
		return nil
	}
	return b.rows[p.Row][p.Col]
}

// Top returns the controlling piece at p, if the cell is on-board and
// occupied.
func (b *Board) Top(p Position) (Piece, bool) {
	return b.StackAt(p).Top()
}

// CanPlaceOn reports whether a fresh piece may be placed at p. Placement
// is only ever legal on an empty cell.
func (b *Board) CanPlaceOn(p Position) bool {
	return b.IsValidPosition(p) && len(b.StackAt(p)) == 0
}

// PlacePiece returns a board with a new piece placed at p. If the cell
// cannot accept a placement the receiver is returned unchanged; callers
// that care pre-check with CanPlaceOn.
func (b *Board) PlacePiece(p Position, pc Piece) *Board {
	if !b.CanPlaceOn(p) {
		return b
	}
	return b.SetStack(p, Stack{pc})
}

// SetStack returns a board with the stack at p replaced. If p is off-board
// or the stack is unchanged, the receiver itself is returned; upstream
// callers use that identity for fast-path equality checks.
func (b *Board) SetStack(p Position, s Stack) *Board {
	if !b.IsValidPosition(p) {
		return b
	}
	if b.rows[p.Row][p.Col].equal(s) {
		return b
	}
	rows := make([][]Stack, b.size)
	copy(rows, b.rows)
	row := make([]Stack, b.size)
	copy(row, b.rows[p.Row])
	row[p.Col] = s
	rows[p.Row] = row
	return &Board{size: b.size, rows: rows}
}

// Empty reports whether no cell holds a piece.
func (b *Board) Empty() bool {
	for _, row := range b.rows {
		for _, s := range row {
			if len(s) > 0 {
				return false
			}
		}
	}
	return true
}

// Full reports whether every cell holds at least one piece.
func (b *Board) Full() bool {
	for _, row := range b.rows {
		for _, s := range row {
			if len(s) == 0 {
				return false
			}
		}
	}
	return true
}

func pieceRune(p Piece) rune {
	switch {
	case p.Kind == Capstone && p.Color == White:
		return 'C'
	case p.Kind == Capstone && p.Color == Black:
		return 'c'
	case p.Kind == Standing && p.Color == White:
		return 'S'
	case p.Kind == Standing && p.Color == Black:
		return 's'
	case p.Color == White:
		return 'W'
	default:
		return 'b'
	}
}

// ToDisplayText returns a rough text rendering of the board for debugging
// and the interactive shell. Top pieces only; stack heights in parens.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	for r := b.size - 1; r >= 0; r-- {
		fmt.Fprintf(&sb, "%2d ", r+1)
		for c := 0; c < b.size; c++ {
			s := b.rows[r][c]
			if top, ok := s.Top(); ok {
				if len(s) > 1 {
					fmt.Fprintf(&sb, " %c(%d)", pieceRune(top), len(s))
				} else {
					fmt.Fprintf(&sb, " %c   ", pieceRune(top))
				}
			} else {
				sb.WriteString(" .   ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   ")
	for c := 0; c < b.size; c++ {
		fmt.Fprintf(&sb, " %c   ", 'a'+rune(c))
	}
	sb.WriteByte('\n')
	return sb.String()
}
