// Package equity scores Tak positions. The calculator combines road
// threats, chain connectivity, flat-count projection, positional control,
// and reserve balance into one number from a chosen color's perspective.
// The score is antisymmetric under color swap, which negamax requires.
package equity

import (
	"lukechampine.com/frand"

	"github.com/takforge/takbot/analysis"
	"github.com/takforge/takbot/board"
	"github.com/takforge/takbot/game"
)

// WinEquity dominates every heuristic term; a detected win or loss always
// outranks any heuristic position.
const WinEquity = 100000.0

// Heuristic weights. The magnitudes are tuning parameters; the contract is
// their relative order: win >> flat count > threats > chain > control.
const (
	flatWeight    = 30.0
	threatWeight  = 20.0
	chainWeight   = 4.0
	edgeWeight    = 8.0
	bridgeWeight  = 18.0
	centerWeight  = 1.0
	reserveWeight = 0.5

	// threatCap bounds per-color threat counting; the search only needs
	// to distinguish none, one, and a fork.
	threatCap = 3
)

// Calculator evaluates positions. The zero value works; SetJitter enables
// tie-breaking noise, and SetCache shares an analysis cache across one
// search.
type Calculator struct {
	cache     *analysis.Cache
	rng       *frand.RNG
	jitterAmp float64
}

// NewCalculator returns a Calculator with no jitter and no cache.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// SetCache attaches a threat-count cache. The cache only memoizes pure
// results, so sharing it across evaluations of one decision is safe.
func (c *Calculator) SetCache(cache *analysis.Cache) {
	c.cache = cache
}

// SetJitter enables a bounded pseudo-random tie-breaker. The amplitude
// must stay far below the smallest heuristic weight so jitter can never
// reorder moves that differ in any real term; callers wanting determinism
// pass a seeded rng.
func (c *Calculator) SetJitter(amp float64, rng *frand.RNG) {
	c.jitterAmp = amp
	c.rng = rng
}

// Equity scores the position from perspective's point of view. Finite for
// every input; ±WinEquity for decided positions.
func (c *Calculator) Equity(g *game.Game, perspective board.Color) float64 {
	if outcome, winner := g.Outcome(); outcome != game.Playing {
		if outcome == game.Draw {
			return 0
		}
		if winner == perspective {
			return WinEquity
		}
		return -WinEquity
	}
	score := c.sideScore(g, perspective) - c.sideScore(g, perspective.Other())
	if c.jitterAmp > 0 && c.rng != nil {
		score += (c.rng.Float64() - 0.5) * c.jitterAmp
	}
	return score
}

func (c *Calculator) sideScore(g *game.Game, col board.Color) float64 {
	b := g.Board()
	score := float64(g.TopFlats(col)) * flatWeight

	threats := analysis.CountThreats(b, col, threatCap, c.cache)
	score += float64(threats) * threatWeight

	chainLen, edges := analysis.LargestChain(b, col)
	score += float64(chainLen) * chainWeight
	if edges.HasOppositePair() {
		score += bridgeWeight
	} else if edges != 0 {
		score += edgeWeight
	}

	score += c.controlScore(b, col)

	// Pieces still in reserve are pieces not working; a small penalty
	// projects tempo spent hoarding.
	res := g.ReserveFor(col)
	score -= float64(res.Flats) * reserveWeight
	return score
}

// controlScore rewards controlled cells near the center, where a stack
// can reach every road line.
func (c *Calculator) controlScore(b *board.Board, col board.Color) float64 {
	size := b.Size()
	total := 0.0
	for r := 0; r < size; r++ {
		for cc := 0; cc < size; cc++ {
			p := board.Position{Row: r, Col: cc}
			top, ok := b.Top(p)
			if !ok || top.Color != col {
				continue
			}
			total += centrality(p, size) * centerWeight
		}
	}
	return total
}

func centrality(p board.Position, size int) float64 {
	distRow := min(p.Row, size-1-p.Row)
	distCol := min(p.Col, size-1-p.Col)
	return float64(distRow + distCol)
}
