// Package move defines the Tak move representation and its compact text
// notation. A move is either a placement of a new piece or a stack move
// that picks up part of a stack and drops it along one direction.
package move

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/takforge/takbot/board"
)

// Type is the kind of move.
type Type uint8

const (
	TypePlacement Type = iota
	TypeStackMove
)

var (
	ErrBadNotation = errors.New("malformed move notation")
	ErrOffBoard    = errors.New("square is off the board")
)

// Move is a tagged union of a placement and a stack move.
//
// For a placement, Pos is the target square and Kind the piece kind.
// For a stack move, Pos is the source square, Dir the direction, and Drops
// the per-step drop counts; their sum is the number of pieces picked up.
type Move struct {
	Type  Type
	Pos   board.Position
	Kind  board.Kind
	Dir   board.Direction
	Drops []int
}

// NewPlacement builds a placement move.
func NewPlacement(pos board.Position, kind board.Kind) Move {
	return Move{Type: TypePlacement, Pos: pos, Kind: kind}
}

// NewStackMove builds a stack move.
func NewStackMove(pos board.Position, dir board.Direction, drops []int) Move {
	return Move{Type: TypeStackMove, Pos: pos, Dir: dir, Drops: drops}
}

// Carry returns the number of pieces the move picks up. Zero for
// placements.
func (m Move) Carry() int {
	n := 0
	for _, d := range m.Drops {
		n += d
	}
	return n
}

// Equals reports whether two moves are the same move.
func (m Move) Equals(o Move) bool {
	if m.Type != o.Type || m.Pos != o.Pos {
		return false
	}
	if m.Type == TypePlacement {
		return m.Kind == o.Kind
	}
	if m.Dir != o.Dir || len(m.Drops) != len(o.Drops) {
		return false
	}
	for i := range m.Drops {
		if m.Drops[i] != o.Drops[i] {
			return false
		}
	}
	return true
}

func dirSymbol(d board.Direction) byte {
	switch d {
	case board.North:
		return '+'
	case board.South:
		return '-'
	case board.East:
		return '>'
	default:
		return '<'
	}
}

// String renders the move in compact notation: an optional kind prefix
// (S standing, C capstone) plus square for placements; carry count,
// square, direction symbol and drop digits for stack moves. Counts equal
// to 1 and single-drop sequences are omitted, matching common usage.
func (m Move) String() string {
	var sb strings.Builder
	if m.Type == TypePlacement {
		switch m.Kind {
		case board.Standing:
			sb.WriteByte('S')
		case board.Capstone:
			sb.WriteByte('C')
		}
		sb.WriteString(m.Pos.String())
		return sb.String()
	}
	carry := m.Carry()
	if carry > 1 {
		fmt.Fprintf(&sb, "%d", carry)
	}
	sb.WriteString(m.Pos.String())
	sb.WriteByte(dirSymbol(m.Dir))
	if len(m.Drops) > 1 {
		for _, d := range m.Drops {
			fmt.Fprintf(&sb, "%d", d)
		}
	}
	return sb.String()
}

// ShortDescription is an alias of String, for logging call sites.
func (m Move) ShortDescription() string {
	return m.String()
}

var (
	rePlacement = regexp.MustCompile(`^([SC]?)([a-h])([1-8])$`)
	reStackMove = regexp.MustCompile(`^([1-8]?)([a-h])([1-8])([<>+-])([1-8]*)$`)
)

func parseSquare(file, rank byte, size int) (board.Position, error) {
	p := board.Position{Row: int(rank - '1'), Col: int(file - 'a')}
	if p.Row >= size || p.Col >= size {
		return p, fmt.Errorf("%w: %c%c on a size-%d board", ErrOffBoard, file, rank, size)
	}
	return p, nil
}

func parseDir(sym byte) board.Direction {
	switch sym {
	case '+':
		return board.North
	case '-':
		return board.South
	case '>':
		return board.East
	default:
		return board.West
	}
}

// Parse converts compact notation back into a Move, validating structure
// against the board size. It rejects malformed strings; it does not check
// legality against a position, which is the game package's job.
func Parse(notation string, size int) (Move, error) {
	if groups := rePlacement.FindStringSubmatch(notation); groups != nil {
		pos, err := parseSquare(groups[2][0], groups[3][0], size)
		if err != nil {
			return Move{}, err
		}
		kind := board.Flat
		switch groups[1] {
		case "S":
			kind = board.Standing
		case "C":
			kind = board.Capstone
		}
		return NewPlacement(pos, kind), nil
	}
	groups := reStackMove.FindStringSubmatch(notation)
	if groups == nil {
		return Move{}, fmt.Errorf("%w: %q", ErrBadNotation, notation)
	}
	pos, err := parseSquare(groups[2][0], groups[3][0], size)
	if err != nil {
		return Move{}, err
	}
	carry := 1
	if groups[1] != "" {
		carry = int(groups[1][0] - '0')
	}
	if carry > size {
		return Move{}, fmt.Errorf("%w: carry %d exceeds the carry limit %d", ErrBadNotation, carry, size)
	}
	drops := []int{carry}
	if groups[5] != "" {
		drops = drops[:0]
		total := 0
		for _, ch := range groups[5] {
			d := int(ch - '0')
			drops = append(drops, d)
			total += d
		}
		if total != carry {
			return Move{}, fmt.Errorf("%w: drops %q do not sum to carry %d", ErrBadNotation, groups[5], carry)
		}
	}
	return NewStackMove(pos, parseDir(groups[4][0]), drops), nil
}
