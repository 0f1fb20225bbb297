// shell is an interactive console for poking at the engine: set up
// positions, list legal moves, play notation, and ask each tier for its
// choice.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	aibot "github.com/takforge/takbot/ai/bot"
	"github.com/takforge/takbot/game"
	"github.com/takforge/takbot/move"
	"github.com/takforge/takbot/movegen"
	"github.com/takforge/takbot/tps"
)

type shell struct {
	g *game.Game
}

func (s *shell) execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch cmd, args := fields[0], fields[1:]; cmd {
	case "new":
		size := 5
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad size %q", args[0])
			}
			size = n
		}
		g, err := game.New(size)
		if err != nil {
			return err
		}
		s.g = g
		fmt.Print(s.g.ToDisplayText())
	case "show":
		fmt.Print(s.g.ToDisplayText())
	case "moves":
		moves := movegen.GenerateMoves(s.g)
		for _, m := range moves {
			fmt.Printf("%s ", m)
		}
		fmt.Printf("\n(%d moves)\n", len(moves))
	case "play":
		if len(args) != 1 {
			return fmt.Errorf("usage: play <move>")
		}
		m, err := move.Parse(args[0], s.g.Size())
		if err != nil {
			return err
		}
		ng, err := s.g.Apply(m)
		if err != nil {
			return err
		}
		s.g = ng
		fmt.Print(s.g.ToDisplayText())
	case "best":
		profileName := "hard"
		if len(args) > 0 {
			profileName = args[0]
		}
		profile, ok := aibot.ProfileByName(profileName)
		if !ok {
			return fmt.Errorf("unknown profile %q (%s)", profileName,
				strings.Join(aibot.ProfileNames(), ", "))
		}
		m, ok := aibot.SelectMove(context.Background(), s.g, profile)
		if !ok {
			fmt.Println("no legal moves")
			return nil
		}
		fmt.Println(m)
	case "tps":
		fmt.Println(tps.Format(s.g))
	case "load":
		if len(args) == 0 {
			return fmt.Errorf("usage: load <tps>")
		}
		g, err := tps.Parse(strings.Join(args, " "))
		if err != nil {
			return err
		}
		s.g = g
		fmt.Print(s.g.ToDisplayText())
	case "help":
		fmt.Println("commands: new [size], show, moves, play <move>, best [profile], tps, load <tps>, quit")
	case "quit", "exit":
		return readline.ErrInterrupt
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	rl, err := readline.New("takbot> ")
	if err != nil {
		log.Fatal().Err(err).Msg("readline init")
	}
	defer rl.Close()

	g, err := game.New(5)
	if err != nil {
		log.Fatal().Err(err).Msg("new game")
	}
	sh := &shell{g: g}

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		if err := sh.execute(line); err != nil {
			if err == readline.ErrInterrupt {
				break
			}
			fmt.Println("error:", err)
		}
	}
}
