// Package selfplay pits two agent profiles against each other. Its main
// use is validating relative strength: a higher tier should beat a lower
// tier in a majority of games.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	aibot "github.com/takforge/takbot/ai/bot"
	"github.com/takforge/takbot/board"
	"github.com/takforge/takbot/game"
	"github.com/takforge/takbot/stats"
)

// maxPlies aborts runaway games; a Tak game on any supported size is
// decided far earlier than this.
const maxPlies = 400

// Results tallies a profile-versus-profile match.
type Results struct {
	ProfileA, ProfileB string
	WinsA, WinsB       int
	Draws              int
	GameLength         stats.Statistic
}

func (r *Results) String() string {
	return fmt.Sprintf("%s %d - %d %s (%d draws), mean length %.1f plies (stdev %.1f)",
		r.ProfileA, r.WinsA, r.WinsB, r.ProfileB, r.Draws,
		r.GameLength.Mean(), r.GameLength.Stdev())
}

// Compare plays games between two profiles, alternating which profile
// takes white, spreading games over parallel workers.
func Compare(ctx context.Context, profileA, profileB aibot.Profile, games, size, concurrency int) (*Results, error) {
	if games < 1 {
		return nil, errors.New("need at least one game")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	results := &Results{ProfileA: profileA.Name, ProfileB: profileB.Name}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := 0; i < games; i++ {
		i := i
		g.Go(func() error {
			aIsWhite := i%2 == 0
			white, black := profileA, profileB
			if !aIsWhite {
				white, black = profileB, profileA
			}
			winner, outcome, plies, err := playGame(ctx, white, black, size)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			results.GameLength.Push(float64(plies))
			switch {
			case outcome == game.Draw:
				results.Draws++
			case (winner == board.White) == aIsWhite:
				results.WinsA++
			default:
				results.WinsB++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func playGame(ctx context.Context, whiteProfile, blackProfile aibot.Profile, size int) (board.Color, game.Outcome, int, error) {
	pos, err := game.New(size)
	if err != nil {
		return 0, 0, 0, err
	}
	players := [2]*aibot.Bot{
		aibot.NewBotWithRNG(whiteProfile, frand.New()),
		aibot.NewBotWithRNG(blackProfile, frand.New()),
	}
	for pos.Playing() {
		if err := ctx.Err(); err != nil {
			return 0, 0, pos.Ply(), err
		}
		if pos.Ply() >= maxPlies {
			log.Warn().Int("plies", pos.Ply()).Msg("selfplay-game-aborted")
			return 0, game.Draw, pos.Ply(), nil
		}
		m, ok := players[pos.PlayerOnTurn()].SelectMove(ctx, pos)
		if !ok {
			return 0, 0, pos.Ply(), fmt.Errorf("no move in a live position at ply %d", pos.Ply())
		}
		next, err := pos.Apply(m)
		if err != nil {
			return 0, 0, pos.Ply(), fmt.Errorf("engine produced illegal move %s: %w", m, err)
		}
		pos = next
	}
	outcome, winner := pos.Outcome()
	return winner, outcome, pos.Ply(), nil
}
