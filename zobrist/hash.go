// Package zobrist hashes Tak positions for the transposition table.
// https://en.wikipedia.org/wiki/Zobrist_hashing
package zobrist

import (
	"math/bits"

	"lukechampine.com/frand"

	"github.com/takforge/takbot/board"
	"github.com/takforge/takbot/game"
)

const bignum = 1<<63 - 2

// numPieceKinds is flat/standing/capstone for each of two colors.
const numPieceKinds = 6

// Zobrist hashes a full position: every piece at every stack level, the
// side to move, and the reserves. Stack levels are folded in by rotating
// the per-square piece key, so tall stacks need no per-level tables.
type Zobrist struct {
	posTable  [][]uint64
	blackTurn uint64
	boardDim  int
}

// Initialize builds the random tables for a board dimension. Must be
// called before Hash.
func (z *Zobrist) Initialize(boardDim int) {
	z.boardDim = boardDim
	z.posTable = make([][]uint64, boardDim*boardDim)
	for i := range z.posTable {
		z.posTable[i] = make([]uint64, numPieceKinds)
		for j := range z.posTable[i] {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	z.blackTurn = frand.Uint64n(bignum) + 1
}

// BoardDim returns the dimension the tables were built for.
func (z *Zobrist) BoardDim() int {
	return z.boardDim
}

func pieceIndex(p board.Piece) int {
	return int(p.Kind-1)*2 + int(p.Color)
}

// https://stackoverflow.com/a/12996028/1737333
func hashUint64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * uint64(0xbf58476d1ce4e5b9)
	x = (x ^ (x >> 27)) * uint64(0x94d049bb133111eb)
	x = x ^ (x >> 31)
	return x
}

// Hash computes the full position key. Two positions with identical
// boards, reserves, and side to move hash identically regardless of the
// move order that produced them.
func (z *Zobrist) Hash(g *game.Game) uint64 {
	key := uint64(0)
	dim := z.boardDim
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			idx := r*dim + c
			for level, pc := range g.Board().StackAt(board.Position{Row: r, Col: c}) {
				key ^= bits.RotateLeft64(z.posTable[idx][pieceIndex(pc)], level)
			}
		}
	}
	if g.PlayerOnTurn() == board.Black {
		key ^= z.blackTurn
	}
	wr := g.ReserveFor(board.White)
	br := g.ReserveFor(board.Black)
	key ^= hashUint64(uint64(wr.Flats)<<24 | uint64(wr.Capstones)<<16 |
		uint64(br.Flats)<<8 | uint64(br.Capstones))
	return key
}
