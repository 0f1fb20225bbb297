// takbot serves engine move decisions over NATS.
package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/takforge/takbot/bot"
	"github.com/takforge/takbot/config"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := bot.Main(cfg.BotChannel, bot.NewBot(cfg)); err != nil {
		log.Fatal().Err(err).Msg("bot exited")
	}
}
