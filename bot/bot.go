// Package bot serves engine decisions over NATS request/reply. The only
// data crossing the boundary is a serializable position (TPS) in and a
// single move (compact notation) out, so the UI process never shares
// board state with the engine process.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	aibot "github.com/takforge/takbot/ai/bot"
	"github.com/takforge/takbot/config"
	"github.com/takforge/takbot/tps"
)

// Request is one decision request.
type Request struct {
	// TPS is the position to move in.
	TPS string `json:"tps"`
	// Profile names the strength tier; empty uses the configured default.
	Profile string `json:"profile,omitempty"`
	// BudgetMs overrides the profile's time budget when positive.
	BudgetMs int `json:"budget_ms,omitempty"`
}

// Response carries the chosen move, or an error message. NoMove is true
// when the position has no legal continuation.
type Response struct {
	Move   string `json:"move,omitempty"`
	NoMove bool   `json:"no_move,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Bot handles decision requests.
type Bot struct {
	cfg *config.Config
}

// NewBot creates a request handler with the given configuration.
func NewBot(cfg *config.Config) *Bot {
	return &Bot{cfg: cfg}
}

func errorResponse(message string, err error) *Response {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &Response{Error: msg}
}

func (bot *Bot) handle(data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("could not parse request", err)
	}
	g, err := tps.Parse(req.TPS)
	if err != nil {
		return errorResponse("could not parse position", err)
	}
	profileName := req.Profile
	if profileName == "" {
		profileName = bot.cfg.DefaultProfile
	}
	profile, ok := aibot.ProfileByName(profileName)
	if !ok {
		return errorResponse(fmt.Sprintf("unknown profile %q", profileName), nil)
	}
	if req.BudgetMs > 0 {
		profile.Budget = time.Duration(req.BudgetMs) * time.Millisecond
	}

	m, ok := aibot.SelectMove(context.Background(), g, profile)
	if !ok {
		return &Response{NoMove: true}
	}
	log.Info().Str("move", m.ShortDescription()).Str("profile", profile.Name).Msg("generated-move")
	return &Response{Move: m.String()}
}

// Main subscribes on the configured channel and serves until the process
// exits.
func Main(channel string, bot *Bot) error {
	nc, err := nats.Connect(bot.cfg.NatsURL)
	if err != nil {
		return err
	}
	_, err = nc.Subscribe(channel, func(m *nats.Msg) {
		log.Debug().Int("bytes", len(m.Data)).Msg("request-received")
		resp := bot.handle(m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			m.Respond([]byte(err.Error()))
			return
		}
		m.Respond(data)
	})
	if err != nil {
		return err
	}
	nc.Flush()
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("channel", channel).Msg("listening")
	runtime.Goexit()
	return nil
}
