// Package negamax implements the Tak engine's adversarial tree search:
// negamax with alpha-beta pruning, one-ply move ordering under a
// branching-factor cap, a per-decision transposition table, and iterative
// deepening bounded by the caller's context deadline.
package negamax

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/takforge/takbot/analysis"
	"github.com/takforge/takbot/equity"
	"github.com/takforge/takbot/game"
	"github.com/takforge/takbot/move"
	"github.com/takforge/takbot/movegen"
	"github.com/takforge/takbot/zobrist"
)

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    childNodes := orderMoves(childNodes)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
*/

// HugeEquity bounds every reachable score; it exceeds WinEquity so a
// proven win still fits inside the initial alpha-beta window.
const HugeEquity = equity.WinEquity * 16

// DefaultCandidateCap limits the moves examined per ply. Capping the
// branching factor trades completeness for speed; this is a deliberate
// approximation, widened or narrowed per strength tier.
const DefaultCandidateCap = 16

var ErrNoMoves = errors.New("no legal moves in this position")

// PVLine is the principal variation: the best line of play found so far.
type PVLine struct {
	Moves []move.Move
	score float64
}

// Clear empties the line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = nil
}

// Update replaces the line with a new best move followed by the best
// continuation found beneath it.
func (pvLine *PVLine) Update(m move.Move, newPVLine PVLine, score float64) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, m)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

// NLBString renders the line on one line for logging.
func (pvLine PVLine) NLBString() string {
	s := ""
	for i, m := range pvLine.Moves {
		if i > 0 {
			s += " "
		}
		s += m.ShortDescription()
	}
	return s
}

type scoredChild struct {
	m   move.Move
	g   *game.Game
	est float64
}

// Solver runs one decision at a time over a fixed root position. It is
// not safe for concurrent use; concurrent decisions each get their own
// Solver.
type Solver struct {
	zobrist *zobrist.Zobrist
	calc    *equity.Calculator
	game    *game.Game
	ttable  *TranspositionTable
	cache   *analysis.Cache

	rootMoves []scoredChild

	candidateCap            int
	minDepth                int
	iterativeDeepeningOptim bool
	transpositionTableOptim bool
	requestedPlies          int

	principalVariation PVLine
	bestPVValue        float64
	nodes              atomic.Uint64
}

// Init prepares the solver for decisions on g evaluated by calc.
func (s *Solver) Init(g *game.Game, calc *equity.Calculator) error {
	if g == nil || calc == nil {
		return errors.New("solver needs a game and a calculator")
	}
	s.game = g
	s.calc = calc
	s.zobrist = &zobrist.Zobrist{}
	s.zobrist.Initialize(g.Size())
	s.ttable = &TranspositionTable{}
	s.cache = analysis.NewCache()
	s.calc.SetCache(s.cache)
	s.candidateCap = DefaultCandidateCap
	s.minDepth = 1
	s.iterativeDeepeningOptim = true
	s.transpositionTableOptim = true
	return nil
}

// SetMinDepth sets the depth iterative deepening starts from. Shallower
// passes are skipped entirely; the pre-search ordering pass still provides
// the fallback move if the deadline hits before the first pass completes.
func (s *Solver) SetMinDepth(n int) {
	if n > 0 {
		s.minDepth = n
	}
}

// SetCandidateCap bounds the number of ordered moves searched per ply.
func (s *Solver) SetCandidateCap(n int) {
	if n > 0 {
		s.candidateCap = n
	}
}

// SetIterativeDeepening toggles deepening from ply 1; off means a single
// fixed-depth search.
func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

// SetTranspositionTableOptim toggles the transposition table.
func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

// Nodes returns the number of positions expanded by the last Solve.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// PrincipalVariation returns the best line from the last Solve.
func (s *Solver) PrincipalVariation() PVLine {
	return s.principalVariation
}

// orderedChildren generates, simulates, and scores every legal move of g,
// returning them best-first and capped. Moves whose simulation fails are
// skipped; a cheap one-ply equity orders the rest, with decided children
// already carrying ±WinEquity so wins sort first and losses last.
func (s *Solver) orderedChildren(g *game.Game) []scoredChild {
	moves := movegen.GenerateMoves(g)
	onTurn := g.PlayerOnTurn()
	children := make([]scoredChild, 0, len(moves))
	for _, m := range moves {
		child, err := g.Apply(m)
		if err != nil {
			// Inapplicable candidate: skip it, never abort the search.
			continue
		}
		children = append(children, scoredChild{
			m:   m,
			g:   child,
			est: s.calc.Equity(child, onTurn),
		})
	}
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].est > children[j].est
	})
	if len(children) > s.candidateCap {
		children = children[:s.candidateCap]
	}
	return children
}

func (s *Solver) negamax(ctx context.Context, g *game.Game, nodeKey uint64, depth int, α, β float64, pv *PVLine) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	alphaOrig := α

	if s.transpositionTableOptim {
		ttEntry := s.ttable.lookup(nodeKey)
		if ttEntry.valid() && ttEntry.depth() >= uint8(depth) {
			score := ttEntry.score
			switch ttEntry.flag() {
			case TTExact:
				return score, nil
			case TTLower:
				α = max(α, score)
			case TTUpper:
				β = min(β, score)
			}
			if α >= β {
				return score, nil
			}
		}
	}

	if depth == 0 || !g.Playing() {
		return s.calc.Equity(g, g.PlayerOnTurn()), nil
	}

	children := s.orderedChildren(g)
	if len(children) == 0 {
		return s.calc.Equity(g, g.PlayerOnTurn()), nil
	}

	childPV := PVLine{}
	bestValue := -HugeEquity
	for _, child := range children {
		s.nodes.Add(1)
		childKey := s.zobrist.Hash(child.g)
		value, err := s.negamax(ctx, child.g, childKey, depth-1, -β, -α, &childPV)
		if err != nil {
			return value, err
		}
		if -value > bestValue {
			bestValue = -value
			pv.Update(child.m, childPV, bestValue)
		}
		α = max(α, bestValue)
		if bestValue >= β {
			break // beta cut-off
		}
		childPV.Clear()
	}

	if s.transpositionTableOptim {
		var flag uint8
		switch {
		case bestValue <= alphaOrig:
			flag = TTUpper
		case bestValue >= β:
			flag = TTLower
		default:
			flag = TTExact
		}
		s.ttable.store(nodeKey, TableEntry{
			score:        bestValue,
			flagAndDepth: flag<<6 + uint8(depth&depthMask),
		})
	}
	return bestValue, nil
}

// searchRoot runs one fixed-depth pass over the root moves, re-scoring
// them so the next deepening iteration searches the most promising first.
func (s *Solver) searchRoot(ctx context.Context, plies int) (float64, move.Move, error) {
	α := -HugeEquity
	β := HugeEquity
	bestValue := -HugeEquity
	var bestMove move.Move
	childPV := PVLine{}
	pv := PVLine{}
	for i := range s.rootMoves {
		child := &s.rootMoves[i]
		s.nodes.Add(1)
		value, err := s.negamax(ctx, child.g, s.zobrist.Hash(child.g), plies-1, -β, -α, &childPV)
		if err != nil {
			return 0, move.Move{}, err
		}
		child.est = -value
		if -value > bestValue {
			bestValue = -value
			bestMove = child.m
			pv.Update(child.m, childPV, bestValue)
		}
		α = max(α, bestValue)
		childPV.Clear()
	}
	sort.SliceStable(s.rootMoves, func(i, j int) bool {
		return s.rootMoves[i].est > s.rootMoves[j].est
	})
	s.principalVariation = pv
	s.bestPVValue = bestValue
	return bestValue, bestMove, nil
}

// Solve picks the best move searching up to plies deep. Iterative
// deepening keeps the result of the deepest completed pass; if the
// context expires before even the first pass finishes, the shallow
// heuristic top move is returned, so a legal move always comes back when
// one exists.
func (s *Solver) Solve(ctx context.Context, plies int) (float64, move.Move, error) {
	tstart := time.Now()
	s.requestedPlies = plies
	s.nodes.Store(0)
	if s.transpositionTableOptim {
		s.ttable.Reset(0.01)
	}

	s.rootMoves = s.orderedChildren(s.game)
	if len(s.rootMoves) == 0 {
		return 0, move.Move{}, ErrNoMoves
	}
	// Shallow fallback: the ordering pass already ranked the root moves.
	bestValue := s.rootMoves[0].est
	bestMove := s.rootMoves[0].m

	start := s.minDepth
	if start > plies || !s.iterativeDeepeningOptim {
		start = plies
	}
	if start < 1 {
		start = 1
	}
	for p := start; p <= plies; p++ {
		log.Debug().Int("plies", p).Msg("deepening-iteratively")
		val, m, err := s.searchRoot(ctx, p)
		if err != nil {
			// Deadline hit mid-pass; the deepest completed pass stands.
			log.Debug().Int("plies", p).Err(err).Msg("search-interrupted")
			break
		}
		bestValue, bestMove = val, m
		log.Debug().Float64("value", val).Int("ply", p).
			Str("pv", s.principalVariation.NLBString()).Msg("best-val")
		if val >= equity.WinEquity {
			break // forced win found, no need to search deeper
		}
	}

	log.Debug().
		Uint64("ttable-created", s.ttable.created.Load()).
		Uint64("ttable-lookups", s.ttable.lookups.Load()).
		Uint64("ttable-hits", s.ttable.hits.Load()).
		Uint64("ttable-t2collisions", s.ttable.t2collisions.Load()).
		Uint64("nodes", s.nodes.Load()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	return bestValue, bestMove, nil
}
