// Package tps reads and writes Tak Positional System strings, the
// serializable position format crossing the engine's process boundary.
//
// A TPS string is three space-separated fields: the board (rows from the
// top rank down, cells comma-separated, xN for N empty cells, stacks as
// color digits bottom-to-top with an optional trailing S or C), the side
// to move (1 or 2), and the full-move number.
//
//	x5/x5/x2,12C,x2/x5/x5 2 3
package tps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/takforge/takbot/board"
	"github.com/takforge/takbot/game"
)

var ErrBadTPS = errors.New("malformed TPS")

// Parse returns a game position for a TPS string.
func Parse(tps string) (*game.Game, error) {
	fields := strings.Fields(strings.TrimSpace(tps))
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: want 3 space-separated fields, got %d", ErrBadTPS, len(fields))
	}
	rows := strings.Split(fields[0], "/")
	size := len(rows)
	if size < 3 || size > 8 {
		return nil, fmt.Errorf("%w: %d rows", ErrBadTPS, size)
	}
	b := board.New(size)
	for i, rowStr := range rows {
		row := size - 1 - i // TPS lists the top rank first
		col := 0
		for _, cell := range strings.Split(rowStr, ",") {
			if col >= size {
				return nil, fmt.Errorf("%w: too many cells in rank %d", ErrBadTPS, row+1)
			}
			if strings.HasPrefix(cell, "x") {
				n := 1
				if len(cell) > 1 {
					var err error
					n, err = strconv.Atoi(cell[1:])
					if err != nil || n < 1 {
						return nil, fmt.Errorf("%w: bad empty run %q", ErrBadTPS, cell)
					}
				}
				col += n
				continue
			}
			stack, err := parseStack(cell)
			if err != nil {
				return nil, err
			}
			b = b.SetStack(board.Position{Row: row, Col: col}, stack)
			col++
		}
		if col != size {
			return nil, fmt.Errorf("%w: rank %d covers %d of %d cells", ErrBadTPS, row+1, col, size)
		}
	}

	onTurn := board.White
	switch fields[1] {
	case "1":
	case "2":
		onTurn = board.Black
	default:
		return nil, fmt.Errorf("%w: side to move must be 1 or 2", ErrBadTPS)
	}
	moveNum, err := strconv.Atoi(fields[2])
	if err != nil || moveNum < 1 {
		return nil, fmt.Errorf("%w: bad move number %q", ErrBadTPS, fields[2])
	}
	ply := (moveNum - 1) * 2
	if onTurn == board.Black {
		ply++
	}
	return game.FromBoard(b, onTurn, ply)
}

func parseStack(cell string) (board.Stack, error) {
	var stack board.Stack
	for i := 0; i < len(cell); i++ {
		switch ch := cell[i]; ch {
		case '1', '2':
			color := board.White
			if ch == '2' {
				color = board.Black
			}
			stack = append(stack, board.Piece{Kind: board.Flat, Color: color})
		case 'S', 'C':
			if i != len(cell)-1 || len(stack) == 0 {
				return nil, fmt.Errorf("%w: modifier %q must end a stack", ErrBadTPS, string(ch))
			}
			top := &stack[len(stack)-1]
			if ch == 'S' {
				top.Kind = board.Standing
			} else {
				top.Kind = board.Capstone
			}
		default:
			return nil, fmt.Errorf("%w: unexpected character %q in stack %q", ErrBadTPS, string(ch), cell)
		}
	}
	if len(stack) == 0 {
		return nil, fmt.Errorf("%w: empty stack cell", ErrBadTPS)
	}
	return stack, nil
}

// Format renders a position as a TPS string that Parse round-trips.
func Format(g *game.Game) string {
	size := g.Size()
	b := g.Board()
	var rows []string
	for row := size - 1; row >= 0; row-- {
		var cells []string
		emptyRun := 0
		flush := func() {
			if emptyRun == 0 {
				return
			}
			if emptyRun == 1 {
				cells = append(cells, "x")
			} else {
				cells = append(cells, fmt.Sprintf("x%d", emptyRun))
			}
			emptyRun = 0
		}
		for col := 0; col < size; col++ {
			stack := b.StackAt(board.Position{Row: row, Col: col})
			if len(stack) == 0 {
				emptyRun++
				continue
			}
			flush()
			cells = append(cells, formatStack(stack))
		}
		flush()
		rows = append(rows, strings.Join(cells, ","))
	}

	side := "1"
	if g.PlayerOnTurn() == board.Black {
		side = "2"
	}
	moveNum := g.Ply()/2 + 1
	return fmt.Sprintf("%s %s %d", strings.Join(rows, "/"), side, moveNum)
}

func formatStack(stack board.Stack) string {
	var sb strings.Builder
	for _, pc := range stack {
		if pc.Color == board.White {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('2')
		}
	}
	if top, _ := stack.Top(); top.Kind == board.Standing {
		sb.WriteByte('S')
	} else if top.Kind == board.Capstone {
		sb.WriteByte('C')
	}
	return sb.String()
}
