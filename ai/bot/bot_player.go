// Package bot turns the Tak engine into a player at a named strength
// tier. One pipeline serves every tier: decisive-move checks, then either
// a shallow heuristic pick or the full negamax search, as the profile
// dictates.
package bot

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/takforge/takbot/analysis"
	"github.com/takforge/takbot/equity"
	"github.com/takforge/takbot/game"
	"github.com/takforge/takbot/move"
	"github.com/takforge/takbot/movegen"
	"github.com/takforge/takbot/negamax"
)

// jitterAmp stays far below the smallest evaluator weight so noise can
// break ties but never reorder heuristically distinct moves.
const jitterAmp = 1e-3

// antiForkCandidates bounds the opponent-reply scan in the anti-fork
// stage, which is quadratic in the move count without it.
const antiForkCandidates = 24

// Bot selects moves for one player. Not safe for concurrent use; create
// one per concurrent decision.
type Bot struct {
	profile Profile
	calc    *equity.Calculator
	rng     *frand.RNG
	cache   *analysis.Cache
}

// NewBot creates a bot for the given profile with a non-deterministic
// random source.
func NewBot(profile Profile) *Bot {
	return NewBotWithRNG(profile, frand.New())
}

// NewBotWithRNG creates a bot with an injected random source, so tests
// and replays can fix the seed.
func NewBotWithRNG(profile Profile, rng *frand.RNG) *Bot {
	b := &Bot{
		profile: profile,
		calc:    equity.NewCalculator(),
		rng:     rng,
		cache:   analysis.NewCache(),
	}
	b.calc.SetCache(b.cache)
	if profile.Jitter {
		b.calc.SetJitter(jitterAmp, rng)
	}
	return b
}

// Profile returns the bot's strength tier.
func (b *Bot) Profile() Profile {
	return b.profile
}

// SelectMove returns the bot's move for the position, or false when no
// legal move exists. The context bounds the whole decision; on expiry the
// best complete result found so far is returned.
func (b *Bot) SelectMove(ctx context.Context, g *game.Game) (move.Move, bool) {
	moves := movegen.GenerateMoves(g)
	if len(moves) == 0 {
		return move.Move{}, false
	}

	if b.profile.DecisiveStages {
		if m, ok := b.decisiveMove(g, moves); ok {
			log.Debug().Str("move", m.ShortDescription()).Msg("decisive-stage-move")
			return m, true
		}
	}

	if !b.profile.TreeSearch {
		return b.shallowPick(g, moves), true
	}

	searchCtx := ctx
	if b.profile.Budget > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, b.profile.Budget)
		defer cancel()
	}
	solver := &negamax.Solver{}
	if err := solver.Init(g, b.calc); err != nil {
		log.Err(err).Msg("solver-init-failed")
		return b.shallowPick(g, moves), true
	}
	solver.SetCandidateCap(b.profile.CandidateCap)
	solver.SetMinDepth(b.profile.MinDepth)
	_, m, err := solver.Solve(searchCtx, b.profile.MaxDepth)
	if err != nil {
		// Only ErrNoMoves reaches here, and the movegen check above
		// rules it out; fall back all the same.
		return b.shallowPick(g, moves), true
	}
	return m, true
}

type ratedMove struct {
	m   move.Move
	g   *game.Game
	est float64
}

func (b *Bot) rateMoves(g *game.Game, moves []move.Move) []ratedMove {
	onTurn := g.PlayerOnTurn()
	rated := make([]ratedMove, 0, len(moves))
	for _, m := range moves {
		child, err := g.Apply(m)
		if err != nil {
			continue
		}
		rated = append(rated, ratedMove{m: m, g: child, est: b.calc.Equity(child, onTurn)})
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].est > rated[j].est
	})
	return rated
}

// shallowPick chooses uniformly among the top one-ply moves, with a bias
// toward placements early in the game to mimic how people open.
func (b *Bot) shallowPick(g *game.Game, moves []move.Move) move.Move {
	rated := b.rateMoves(g, moves)
	// Even the weakest tier takes a win that is sitting on the board.
	if rated[0].est >= equity.WinEquity {
		return rated[0].m
	}
	k := b.profile.TopK
	if k <= 0 {
		k = 1
	}
	if k > len(rated) {
		k = len(rated)
	}
	pool := rated[:k]
	if g.Ply() < g.Size() {
		placements := lo.Filter(pool, func(r ratedMove, _ int) bool {
			return r.m.Type == move.TypePlacement
		})
		if len(placements) > 0 {
			pool = placements
		}
	}
	return pool[b.rng.Intn(len(pool))].m
}

// decisiveMove runs the pre-search stages: immediate win, immediate
// block, fork, anti-fork. Each stage short-circuits the rest.
func (b *Bot) decisiveMove(g *game.Game, moves []move.Move) (move.Move, bool) {
	mover := g.PlayerOnTurn()
	rated := b.rateMoves(g, moves)

	// Immediate win: any move that ends the game in the mover's favor.
	// Draws report a zero-value winner, so the outcome must be an actual
	// win before the winner field means anything.
	for _, r := range rated {
		out, winner := r.g.Outcome()
		if (out == game.RoadWin || out == game.FlatWin) && winner == mover {
			return r.m, true
		}
	}

	// Immediate block: if the opponent threatens a road completion, play
	// the best move after which no completing placement remains.
	oppThreats := analysis.CountThreats(g.Board(), mover.Other(), 2, b.cache)
	if oppThreats > 0 {
		for _, r := range rated {
			if analysis.CountThreats(r.g.Board(), mover.Other(), 1, b.cache) == 0 {
				return r.m, true
			}
		}
		// Unblockable fork; fall through and let the search pick the
		// least-bad line.
		return move.Move{}, false
	}

	// Fork: a move giving the mover two or more road completions while
	// leaving the opponent without one of their own.
	for _, r := range rated {
		if !r.g.Playing() {
			continue
		}
		if analysis.CountThreats(r.g.Board(), mover, 2, b.cache) >= 2 &&
			analysis.CountThreats(r.g.Board(), mover.Other(), 1, b.cache) == 0 {
			return r.m, true
		}
	}

	// Anti-fork: if our best line hands the opponent a forking reply,
	// prefer a move that denies every fork.
	if len(rated) > 0 && rated[0].g.Playing() && b.opponentHasFork(rated[0].g) {
		for i, r := range rated {
			if i >= antiForkCandidates {
				break
			}
			if !r.g.Playing() {
				continue
			}
			if !b.opponentHasFork(r.g) {
				return r.m, true
			}
		}
	}
	return move.Move{}, false
}

// opponentHasFork reports whether the side to move in g can create two or
// more simultaneous road threats with one move. The scan is capped to the
// top-rated replies to keep the stage cheap.
func (b *Bot) opponentHasFork(g *game.Game) bool {
	opp := g.PlayerOnTurn()
	replies := b.rateMoves(g, movegen.GenerateMoves(g))
	if len(replies) > antiForkCandidates {
		replies = replies[:antiForkCandidates]
	}
	for _, r := range replies {
		if !r.g.Playing() {
			// A winning reply dominates any fork; the block stage covers
			// those threats separately.
			continue
		}
		if analysis.CountThreats(r.g.Board(), opp, 2, b.cache) >= 2 {
			return true
		}
	}
	return false
}

// SelectMove is the package-level convenience entry point: one decision
// for the position at the given tier.
func SelectMove(ctx context.Context, g *game.Game, profile Profile) (move.Move, bool) {
	return NewBot(profile).SelectMove(ctx, g)
}
