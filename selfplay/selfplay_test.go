package selfplay

import (
	"context"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	aibot "github.com/takforge/takbot/ai/bot"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func TestCompareRunsToCompletion(t *testing.T) {
	if testing.Short() {
		t.Skip("plays full games")
	}
	is := is.New(t)
	r, err := Compare(context.Background(), aibot.Beginner, aibot.Beginner, 2, 4, 2)
	is.NoErr(err)
	is.Equal(r.WinsA+r.WinsB+r.Draws, 2)
	is.Equal(r.GameLength.Total(), 2)
	is.True(r.GameLength.Mean() > 0)
	is.True(r.String() != "")
}

func TestCompareValidatesArgs(t *testing.T) {
	is := is.New(t)
	_, err := Compare(context.Background(), aibot.Beginner, aibot.Beginner, 0, 4, 1)
	is.True(err != nil)
}

func TestCompareHonorsCancellation(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compare(ctx, aibot.Beginner, aibot.Beginner, 4, 4, 2)
	is.True(err != nil)
}
