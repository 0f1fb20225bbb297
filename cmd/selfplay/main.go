// selfplay runs profile-versus-profile matches to sanity-check relative
// engine strength.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	aibot "github.com/takforge/takbot/ai/bot"
	"github.com/takforge/takbot/selfplay"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	profileA := pflag.String("a", "hard", "first profile")
	profileB := pflag.String("b", "easy", "second profile")
	games := pflag.Int("games", 20, "number of games")
	size := pflag.Int("size", 5, "board size")
	concurrency := pflag.Int("concurrency", runtime.NumCPU(), "parallel games")
	pflag.Parse()

	pa, ok := aibot.ProfileByName(*profileA)
	if !ok {
		log.Fatal().Str("profile", *profileA).Msg("unknown profile")
	}
	pb, ok := aibot.ProfileByName(*profileB)
	if !ok {
		log.Fatal().Str("profile", *profileB).Msg("unknown profile")
	}

	results, err := selfplay.Compare(context.Background(), pa, pb, *games, *size, *concurrency)
	if err != nil {
		log.Fatal().Err(err).Msg("selfplay failed")
	}
	fmt.Println(results)
}
