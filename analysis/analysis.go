// Package analysis answers connectivity questions about a Tak board: which
// cells control roads, whether a road exists, which edges a cell can reach,
// and how many one-move road completions (threats) a color has. Everything
// here is a pure function of (board, color); the cache is an optimization
// keyed by a board fingerprint and never changes results.
package analysis

import (
	"encoding/binary"

	"github.com/cespare/xxhash"

	"github.com/takforge/takbot/board"
)

// EdgeSet is a bitmask of board edges.
type EdgeSet uint8

const (
	EdgeWest EdgeSet = 1 << iota
	EdgeEast
	EdgeSouth
	EdgeNorth
)

// Has reports whether every edge in o is present in e.
func (e EdgeSet) Has(o EdgeSet) bool {
	return e&o == o
}

// HasOppositePair reports whether the set contains two opposite edges,
// which is what a road needs.
func (e EdgeSet) HasOppositePair() bool {
	return e.Has(EdgeWest|EdgeEast) || e.Has(EdgeSouth|EdgeNorth)
}

func edgesOf(p board.Position, size int) EdgeSet {
	var e EdgeSet
	if p.Col == 0 {
		e |= EdgeWest
	}
	if p.Col == size-1 {
		e |= EdgeEast
	}
	if p.Row == 0 {
		e |= EdgeSouth
	}
	if p.Row == size-1 {
		e |= EdgeNorth
	}
	return e
}

// ControlsRoad reports whether the cell at p counts toward a road for
// color: its top piece belongs to color and is not a standing stone.
func ControlsRoad(b *board.Board, p board.Position, c board.Color) bool {
	top, ok := b.Top(p)
	return ok && top.Color == c && top.Roadworthy()
}

// ReachableEdges runs a single breadth-first search from start through
// cells controlled by color and returns every edge the flood touches.
// Callers that need "does this cell bridge two edges" call this once and
// test the returned set, instead of re-running a search per edge.
func ReachableEdges(b *board.Board, start board.Position, c board.Color) EdgeSet {
	if !ControlsRoad(b, start, c) {
		return 0
	}
	size := b.Size()
	visited := make([]bool, size*size)
	queue := []board.Position{start}
	visited[start.Row*size+start.Col] = true
	var edges EdgeSet
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		edges |= edgesOf(cur, size)
		for _, d := range board.Directions {
			n := cur.Shift(d)
			if !b.IsValidPosition(n) || visited[n.Row*size+n.Col] {
				continue
			}
			if !ControlsRoad(b, n, c) {
				continue
			}
			visited[n.Row*size+n.Col] = true
			queue = append(queue, n)
		}
	}
	return edges
}

// HasRoad reports whether color has a connected chain of controlled cells
// linking a pair of opposite edges. It seeds one BFS per connected
// component that touches the west or south edge and short-circuits the
// moment an opposite edge is reached.
func HasRoad(b *board.Board, c board.Color) bool {
	size := b.Size()
	visited := make([]bool, size*size)
	var queue []board.Position

	seed := func(p board.Position) {
		if visited[p.Row*size+p.Col] || !ControlsRoad(b, p, c) {
			return
		}
		visited[p.Row*size+p.Col] = true
		queue = append(queue, p)
	}
	for r := 0; r < size; r++ {
		seed(board.Position{Row: r, Col: 0})
	}
	for col := 0; col < size; col++ {
		seed(board.Position{Row: 0, Col: col})
	}

	// Track, per visited cell, which starting edges its component touches.
	// A cell whose component touches west and itself lies on east (or
	// south and north) completes a road.
	from := make([]EdgeSet, size*size)
	for _, p := range queue {
		from[p.Row*size+p.Col] = edgesOf(p, size) & (EdgeWest | EdgeSouth)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		idx := cur.Row*size + cur.Col
		here := edgesOf(cur, size)
		if from[idx].Has(EdgeWest) && here.Has(EdgeEast) {
			return true
		}
		if from[idx].Has(EdgeSouth) && here.Has(EdgeNorth) {
			return true
		}
		for _, d := range board.Directions {
			n := cur.Shift(d)
			if !b.IsValidPosition(n) {
				continue
			}
			nidx := n.Row*size + n.Col
			if !ControlsRoad(b, n, c) {
				continue
			}
			combined := from[idx] | from[nidx]
			if visited[nidx] && from[nidx] == combined {
				continue
			}
			visited[nidx] = true
			from[nidx] = combined
			queue = append(queue, n)
		}
	}
	return false
}

// CountThreats counts empty cells where a flat placement by color would
// complete a road, stopping at max. Fork detection only needs to
// distinguish zero, one, and two-or-more, so max keeps the worst case
// bounded. A non-nil cache short-circuits recomputation for boards seen
// earlier in the same search.
func CountThreats(b *board.Board, c board.Color, max int, cache *Cache) int {
	if max <= 0 {
		return 0
	}
	if cache != nil {
		if n, ok := cache.threats(b, c, max); ok {
			return n
		}
	}
	size := b.Size()
	count := 0
	for r := 0; r < size && count < max; r++ {
		for col := 0; col < size && count < max; col++ {
			p := board.Position{Row: r, Col: col}
			if !b.CanPlaceOn(p) {
				continue
			}
			probe := b.PlacePiece(p, board.Piece{Kind: board.Flat, Color: c})
			if HasRoad(probe, c) {
				count++
			}
		}
	}
	if cache != nil {
		cache.storeThreats(b, c, max, count)
	}
	return count
}

// ThreatSquares returns the empty cells whose flat placement completes a
// road for color, up to max of them. It is the move-producing sibling of
// CountThreats, used by the decisive-move stages.
func ThreatSquares(b *board.Board, c board.Color, max int) []board.Position {
	size := b.Size()
	var out []board.Position
	for r := 0; r < size && len(out) < max; r++ {
		for col := 0; col < size && len(out) < max; col++ {
			p := board.Position{Row: r, Col: col}
			if !b.CanPlaceOn(p) {
				continue
			}
			probe := b.PlacePiece(p, board.Piece{Kind: board.Flat, Color: c})
			if HasRoad(probe, c) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Chain-extension scores. Only the relative order matters; the evaluator
// scales them.
const (
	ChainBridge = 10
	ChainEdge   = 4
	ChainBorder = 1
)

// ChainExtension scores an empty candidate cell by how much placing there
// would extend color's connectivity: neighbors already reaching opposite
// edges score highest (the placement bridges a road), a single reached
// edge scores partial credit, and a bare border cell scores a token bonus.
func ChainExtension(b *board.Board, p board.Position, c board.Color) int {
	if !b.IsValidPosition(p) {
		return 0
	}
	var edges EdgeSet
	for _, d := range board.Directions {
		n := p.Shift(d)
		if !b.IsValidPosition(n) || !ControlsRoad(b, n, c) {
			continue
		}
		edges |= ReachableEdges(b, n, c)
	}
	own := edgesOf(p, b.Size())
	if edges != 0 {
		// The candidate cell's own edges only count once a neighbor chain
		// exists; an isolated border cell scores ChainBorder, not ChainEdge.
		edges |= own
	}
	switch {
	case edges.HasOppositePair():
		return ChainBridge
	case edges != 0:
		return ChainEdge
	case own != 0:
		return ChainBorder
	}
	return 0
}

// LargestChain returns the cell count of color's largest connected group
// of road-controlling cells and the edges that group reaches.
func LargestChain(b *board.Board, c board.Color) (int, EdgeSet) {
	size := b.Size()
	visited := make([]bool, size*size)
	best := 0
	var bestEdges EdgeSet
	for r := 0; r < size; r++ {
		for col := 0; col < size; col++ {
			start := board.Position{Row: r, Col: col}
			if visited[r*size+col] || !ControlsRoad(b, start, c) {
				continue
			}
			n, edges := floodComponent(b, start, c, visited)
			if n > best {
				best, bestEdges = n, edges
			}
		}
	}
	return best, bestEdges
}

func floodComponent(b *board.Board, start board.Position, c board.Color, visited []bool) (int, EdgeSet) {
	size := b.Size()
	queue := []board.Position{start}
	visited[start.Row*size+start.Col] = true
	count := 0
	var edges EdgeSet
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		count++
		edges |= edgesOf(cur, size)
		for _, d := range board.Directions {
			n := cur.Shift(d)
			if !b.IsValidPosition(n) || visited[n.Row*size+n.Col] {
				continue
			}
			if !ControlsRoad(b, n, c) {
				continue
			}
			visited[n.Row*size+n.Col] = true
			queue = append(queue, n)
		}
	}
	return count, edges
}

// Fingerprint hashes the full board contents. Two boards with identical
// stacks fingerprint identically regardless of how they were reached.
func Fingerprint(b *board.Board) uint64 {
	h := xxhash.New()
	var buf [2]byte
	size := b.Size()
	buf[0] = byte(size)
	h.Write(buf[:1])
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			s := b.StackAt(board.Position{Row: r, Col: c})
			var lb [2]byte
			binary.LittleEndian.PutUint16(lb[:], uint16(len(s)))
			h.Write(lb[:])
			for _, pc := range s {
				buf[0] = byte(pc.Kind)
				buf[1] = byte(pc.Color)
				h.Write(buf[:2])
			}
		}
	}
	return h.Sum64()
}

type threatKey struct {
	fingerprint uint64
	color       board.Color
	max         int
}

// Cache memoizes threat counts within one search. It is not safe for
// concurrent use; each decision owns its own.
type Cache struct {
	counts map[threatKey]int
}

// NewCache creates an empty analysis cache.
func NewCache() *Cache {
	return &Cache{counts: make(map[threatKey]int)}
}

func (c *Cache) threats(b *board.Board, col board.Color, max int) (int, bool) {
	n, ok := c.counts[threatKey{Fingerprint(b), col, max}]
	return n, ok
}

func (c *Cache) storeThreats(b *board.Board, col board.Color, max, n int) {
	c.counts[threatKey{Fingerprint(b), col, max}] = n
}

// Len returns the number of cached entries, for instrumentation.
func (c *Cache) Len() int {
	return len(c.counts)
}
