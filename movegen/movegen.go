// Package movegen enumerates legal Tak moves for the side to play. The
// enumeration is deterministic and pure: the same position always yields
// the same moves in the same order, which the search engine's move
// ordering and the transposition table both rely on.
package movegen

import (
	"github.com/takforge/takbot/board"
	"github.com/takforge/takbot/game"
	"github.com/takforge/takbot/move"
)

// GenerateMoves lists every legal move for the player on turn. A terminal
// position, or one with no legal continuation, yields an empty slice and
// never an error.
//
// Stack-move candidates are verified by simulation: a drop sequence that
// statically looks fine can still be illegal (for example dropping onto a
// capstone mid-run), so each candidate is applied to the position and only
// emitted if the application succeeds.
func GenerateMoves(g *game.Game) []move.Move {
	if !g.Playing() {
		return nil
	}
	moves := generatePlacements(g)
	if !g.InOpening() {
		moves = append(moves, generateStackMoves(g)...)
	}
	return moves
}

func placementKinds(g *game.Game) []board.Kind {
	if g.InOpening() {
		// The opening placement is a flat of the opponent's color, drawn
		// from the opponent's reserve.
		opp := g.ReserveFor(g.PlayerOnTurn().Other())
		if opp.Flats == 0 {
			return nil
		}
		return []board.Kind{board.Flat}
	}
	res := g.ReserveFor(g.PlayerOnTurn())
	var kinds []board.Kind
	if res.Flats > 0 {
		kinds = append(kinds, board.Flat, board.Standing)
	}
	if res.Capstones > 0 {
		kinds = append(kinds, board.Capstone)
	}
	return kinds
}

func generatePlacements(g *game.Game) []move.Move {
	kinds := placementKinds(g)
	if len(kinds) == 0 {
		return nil
	}
	b := g.Board()
	var moves []move.Move
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			p := board.Position{Row: r, Col: c}
			if !b.CanPlaceOn(p) {
				continue
			}
			for _, k := range kinds {
				moves = append(moves, move.NewPlacement(p, k))
			}
		}
	}
	return moves
}

// reachableDistance counts how many squares a stack run can extend in a
// direction. A capstone-topped square is impassable. A standing stone is
// included as a final square because a lone capstone may flatten it;
// simulation rejects the combinations where that does not hold.
func reachableDistance(b *board.Board, src board.Position, d board.Direction) int {
	dist := 0
	cur := src
	for {
		cur = cur.Shift(d)
		if !b.IsValidPosition(cur) {
			return dist
		}
		top, occupied := b.Top(cur)
		if occupied && top.Kind == board.Capstone {
			return dist
		}
		dist++
		if occupied && top.Kind == board.Standing {
			return dist
		}
	}
}

// compositions enumerates every way to split carry into an ordered
// sequence of at most maxSteps drops of at least one piece each, in a
// stable lexicographic order.
func compositions(carry, maxSteps int) [][]int {
	if maxSteps <= 0 {
		return nil
	}
	var out [][]int
	var rec func(remaining, steps int, prefix []int)
	rec = func(remaining, steps int, prefix []int) {
		if remaining == 0 {
			out = append(out, append([]int(nil), prefix...))
			return
		}
		if steps == 0 {
			return
		}
		for first := 1; first <= remaining; first++ {
			rec(remaining-first, steps-1, append(prefix, first))
		}
	}
	rec(carry, maxSteps, nil)
	return out
}

func generateStackMoves(g *game.Game) []move.Move {
	b := g.Board()
	mover := g.PlayerOnTurn()
	carryLimit := g.Size()
	var moves []move.Move
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			src := board.Position{Row: r, Col: c}
			stack := b.StackAt(src)
			top, ok := stack.Top()
			if !ok || top.Color != mover {
				continue
			}
			maxCarry := min(stack.Height(), carryLimit)
			for _, d := range board.Directions {
				dist := reachableDistance(b, src, d)
				if dist == 0 {
					continue
				}
				for carry := 1; carry <= maxCarry; carry++ {
					for _, drops := range compositions(carry, dist) {
						m := move.NewStackMove(src, d, drops)
						if g.CanApply(m) {
							moves = append(moves, m)
						}
					}
				}
			}
		}
	}
	return moves
}
