package tournament

import (
	"errors"
	"fmt"

	"halite/meta"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

var ErrInvalidPlan = errors.New("invalid tournament plan")

const (
	DBot      = "./bots/DBotv4_linux_x64"
	StarkBot  = "./bots/starkbot_linux_x64"
	duelValue = 0.06
)

type ConquestGame struct {
	Height         int
	Width          int
	Seed           int
	SoftLimit      int
	HardLimit      int // Also the engine's turn limit
	ExpectConquest bool
}

type ConquestRound struct {
	MaxScore float64 // Split evenly between the games
	Games    []ConquestGame
}

type DuelGame struct {
	Height int
	Width  int
	Seed   int
	Points float64
}

type DuelRound struct {
	Opponent string
	MaxTurns int
	Games    []DuelGame
}

type Board struct {
	Height int
	Width  int
}

type MatchSet struct {
	Weight    float64 // Percent of the round's total
	Boards    []Board
	Opponents []string
}

type FreeForAllRound struct {
	MatchesPerSet  int
	BestConsidered int
	MaxTotalScore  float64
	Sets           []MatchSet
}

// Plan is the full evaluation protocol, one table per round.
type Plan struct {
	Conquest   ConquestRound
	Duel       DuelRound
	FreeForAll FreeForAllRound
}

func DefaultPlan() Plan {
	return Plan{
		Conquest: ConquestRound{
			MaxScore: 0.3,
			Games: []ConquestGame{
				{Height: 15, Width: 20, Seed: 42, SoftLimit: 175, HardLimit: 200}, // Try to beat 120
				{Height: 20, Width: 15, Seed: 42, SoftLimit: 175, HardLimit: 200}, // Try to beat 120
				{Height: 30, Width: 30, Seed: 42, SoftLimit: 250, HardLimit: 300}, // Try to beat 150
				{Height: 40, Width: 40, Seed: 42, SoftLimit: 275, HardLimit: 400}, // Try to beat 200
				{Height: 50, Width: 50, Seed: 42, SoftLimit: 300, HardLimit: 500}, // Try to beat 200
			},
		},
		Duel: DuelRound{
			Opponent: DBot,
			Games: []DuelGame{
				{Height: 28, Width: 24, Seed: 314, Points: duelValue},
				{Height: 30, Width: 30, Seed: 42, Points: duelValue},
				{Height: 40, Width: 40, Seed: 154, Points: duelValue},
				{Height: 30, Width: 50, Seed: 3, Points: duelValue},
				{Height: 50, Width: 50, Seed: 42, Points: duelValue},
			},
		},
		FreeForAll: FreeForAllRound{
			MatchesPerSet:  meta.MATCHES_PER_SET,
			BestConsidered: meta.BEST_CONSIDERED,
			MaxTotalScore:  0.8,
			Sets: []MatchSet{
				{Weight: 25, Boards: squares(30, 35, 40), Opponents: []string{DBot, DBot, DBot}},
				{Weight: 25, Boards: squares(25, 30, 40), Opponents: []string{StarkBot}},
				{Weight: 15, Boards: squares(25, 30, 40, 45), Opponents: []string{DBot, StarkBot, DBot}},
				{Weight: 15, Boards: squares(30, 35, 40), Opponents: []string{StarkBot, DBot, StarkBot}},
				{Weight: 20, Boards: squares(35, 40), Opponents: []string{StarkBot, StarkBot, StarkBot}},
			},
		},
	}
}

func squares(sides ...int) []Board {
	boards := make([]Board, len(sides))
	for i, side := range sides {
		boards[i] = Board{Height: side, Width: side}
	}
	return boards
}

func validBoard(height, width int) bool {
	return height > 0 && width > 0
}

func (r ConquestRound) Validate() error {
	if len(r.Games) == 0 {
		return fmt.Errorf("%w: conquest round has no games", ErrInvalidPlan)
	}
	if r.MaxScore <= 0 {
		return fmt.Errorf("%w: conquest max score %v is not positive", ErrInvalidPlan, r.MaxScore)
	}
	for i, g := range r.Games {
		if !validBoard(g.Height, g.Width) {
			return fmt.Errorf("%w: conquest game %d board %dx%d is not positive", ErrInvalidPlan, i+1, g.Width, g.Height)
		}
		if g.SoftLimit >= g.HardLimit {
			return fmt.Errorf("%w: conquest game %d soft limit %d is not below hard limit %d",
				ErrInvalidPlan, i+1, g.SoftLimit, g.HardLimit)
		}
	}
	return nil
}

func (r DuelRound) Validate() error {
	if r.Opponent == "" {
		return fmt.Errorf("%w: duel round has no opponent", ErrInvalidPlan)
	}
	if len(r.Games) == 0 {
		return fmt.Errorf("%w: duel round has no games", ErrInvalidPlan)
	}
	for i, g := range r.Games {
		if !validBoard(g.Height, g.Width) {
			return fmt.Errorf("%w: duel game %d board %dx%d is not positive", ErrInvalidPlan, i+1, g.Width, g.Height)
		}
		if g.Points < 0 {
			return fmt.Errorf("%w: duel game %d points %v are negative", ErrInvalidPlan, i+1, g.Points)
		}
	}
	return nil
}

func (r FreeForAllRound) Validate() error {
	if r.MatchesPerSet <= 0 || r.BestConsidered <= 0 {
		return fmt.Errorf("%w: free for all needs positive matches per set and best considered", ErrInvalidPlan)
	}
	if r.MaxTotalScore <= 0 {
		return fmt.Errorf("%w: free for all max total score %v is not positive", ErrInvalidPlan, r.MaxTotalScore)
	}
	if len(r.Sets) == 0 {
		return fmt.Errorf("%w: free for all round has no sets", ErrInvalidPlan)
	}
	for i, set := range r.Sets {
		if len(set.Boards) == 0 || len(set.Opponents) == 0 {
			return fmt.Errorf("%w: set %d needs boards and opponents", ErrInvalidPlan, i+1)
		}
		if set.Weight < 0 {
			return fmt.Errorf("%w: set %d weight %v is negative", ErrInvalidPlan, i+1, set.Weight)
		}
		for _, b := range set.Boards {
			if !validBoard(b.Height, b.Width) {
				return fmt.Errorf("%w: set %d board %dx%d is not positive", ErrInvalidPlan, i+1, b.Width, b.Height)
			}
		}
	}
	return nil
}

// hclPlan is the plan file layout. Every round block is optional and replaces
// the corresponding default table as a whole.
type hclPlan struct {
	Conquest   *hclConquest   `hcl:"conquest,block"`
	Duel       *hclDuel       `hcl:"duel,block"`
	FreeForAll *hclFreeForAll `hcl:"free_for_all,block"`
}

type hclConquest struct {
	MaxScore float64           `hcl:"max_score"`
	Games    []hclConquestGame `hcl:"game,block"`
}

type hclConquestGame struct {
	Height         int   `hcl:"height"`
	Width          int   `hcl:"width"`
	Seed           int   `hcl:"seed"`
	SoftLimit      int   `hcl:"soft_limit"`
	HardLimit      int   `hcl:"hard_limit"`
	ExpectConquest *bool `hcl:"expect_conquest,optional"`
}

type hclDuel struct {
	Opponent string        `hcl:"opponent"`
	MaxTurns *int          `hcl:"max_turns,optional"`
	Games    []hclDuelGame `hcl:"game,block"`
}

type hclDuelGame struct {
	Height int     `hcl:"height"`
	Width  int     `hcl:"width"`
	Seed   int     `hcl:"seed"`
	Points float64 `hcl:"points"`
}

type hclFreeForAll struct {
	MatchesPerSet  int           `hcl:"matches_per_set"`
	BestConsidered int           `hcl:"best_considered"`
	MaxTotalScore  float64       `hcl:"max_total_score"`
	Sets           []hclMatchSet `hcl:"set,block"`
}

type hclMatchSet struct {
	Weight    float64  `hcl:"weight"`
	Boards    [][]int  `hcl:"boards"` // [height, width] pairs
	Opponents []string `hcl:"opponents"`
}

// LoadPlan reads a plan file on top of the default plan.
func LoadPlan(path string) (Plan, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Plan{}, fmt.Errorf("failed to parse plan file %s: %w", path, diags)
	}

	var parsed hclPlan
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return Plan{}, fmt.Errorf("failed to decode plan file %s: %w", path, diags)
	}

	plan := DefaultPlan()
	if c := parsed.Conquest; c != nil {
		plan.Conquest = ConquestRound{MaxScore: c.MaxScore}
		for _, g := range c.Games {
			plan.Conquest.Games = append(plan.Conquest.Games, ConquestGame{
				Height:         g.Height,
				Width:          g.Width,
				Seed:           g.Seed,
				SoftLimit:      g.SoftLimit,
				HardLimit:      g.HardLimit,
				ExpectConquest: g.ExpectConquest != nil && *g.ExpectConquest,
			})
		}
		if err := plan.Conquest.Validate(); err != nil {
			return Plan{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if d := parsed.Duel; d != nil {
		plan.Duel = DuelRound{Opponent: d.Opponent}
		if d.MaxTurns != nil {
			plan.Duel.MaxTurns = *d.MaxTurns
		}
		for _, g := range d.Games {
			plan.Duel.Games = append(plan.Duel.Games, DuelGame(g))
		}
		if err := plan.Duel.Validate(); err != nil {
			return Plan{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if f := parsed.FreeForAll; f != nil {
		plan.FreeForAll = FreeForAllRound{
			MatchesPerSet:  f.MatchesPerSet,
			BestConsidered: f.BestConsidered,
			MaxTotalScore:  f.MaxTotalScore,
		}
		for i, s := range f.Sets {
			set := MatchSet{Weight: s.Weight, Opponents: s.Opponents}
			for _, b := range s.Boards {
				if len(b) != 2 {
					return Plan{}, fmt.Errorf("%w: %s: set %d board %v is not a [height, width] pair",
						ErrInvalidPlan, path, i+1, b)
				}
				set.Boards = append(set.Boards, Board{Height: b[0], Width: b[1]})
			}
			plan.FreeForAll.Sets = append(plan.FreeForAll.Sets, set)
		}
		if err := plan.FreeForAll.Validate(); err != nil {
			return Plan{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	return plan, nil
}
