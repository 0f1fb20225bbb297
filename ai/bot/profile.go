package bot

import (
	"strings"
	"time"
)

// Profile parameterizes the one engine into a strength tier. Profiles are
// data: every tier runs through the same pipeline, with stages and depths
// switched by these fields rather than by per-tier code.
type Profile struct {
	Name string

	// TreeSearch enables the negamax search; tiers without it choose
	// among top one-ply moves only.
	TreeSearch bool
	MinDepth   int
	MaxDepth   int
	Budget     time.Duration

	// CandidateCap bounds the branching factor per ply.
	CandidateCap int

	// DecisiveStages runs the immediate-win / block / fork / anti-fork
	// checks before any search.
	DecisiveStages bool

	// Jitter adds bounded evaluation noise so equal moves vary.
	Jitter bool

	// TopK is the pool size for the no-search tiers' uniform pick.
	TopK int
}

// The named strength tiers.
var (
	Beginner = Profile{
		Name:   "beginner",
		TopK:   8,
		Jitter: true,
	}
	Easy = Profile{
		Name:           "easy",
		TopK:           3,
		DecisiveStages: true,
		Jitter:         true,
	}
	Medium = Profile{
		Name:           "medium",
		TreeSearch:     true,
		MinDepth:       2,
		MaxDepth:       3,
		Budget:         2 * time.Second,
		CandidateCap:   12,
		DecisiveStages: true,
	}
	Hard = Profile{
		Name:           "hard",
		TreeSearch:     true,
		MinDepth:       3,
		MaxDepth:       5,
		Budget:         5 * time.Second,
		CandidateCap:   16,
		DecisiveStages: true,
	}
	Expert = Profile{
		Name:           "expert",
		TreeSearch:     true,
		MinDepth:       3,
		MaxDepth:       7,
		Budget:         10 * time.Second,
		CandidateCap:   24,
		DecisiveStages: true,
	}
)

var profiles = []Profile{Beginner, Easy, Medium, Hard, Expert}

// ProfileByName looks a tier up case-insensitively.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Profile{}, false
}

// ProfileNames lists the known tiers, weakest first.
func ProfileNames() []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}
