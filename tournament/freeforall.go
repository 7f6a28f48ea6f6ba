package tournament

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"halite/engine"
	"halite/meta"
	"halite/scoring"
	"halite/utils"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// RunFreeForAll plays each set's matches on random boards and seeds, then
// averages the best results of every set.
func (o *Orchestrator) RunFreeForAll(ctx context.Context, round FreeForAllRound) (*scoring.RoundScore, error) {
	if err := round.Validate(); err != nil {
		return nil, err
	}

	fmt.Fprintf(o.out, "Round 3 - free for all!\n")
	log.Info().Msgf("starting free for all round with %d sets of %d matches...", len(round.Sets), round.MatchesPerSet)

	score := scoring.NewRoundScore(3, round.MaxTotalScore)

	for si, set := range round.Sets {
		setNo := si + 1
		fmt.Fprintf(o.out, "Set #%d: %s\n\n", setNo, describeOpponents(set.Opponents))

		agents := append([]string{o.subject}, set.Opponents...)
		outcomes := make([]scoring.Outcome, 0, round.MatchesPerSet)

		for i := 1; i <= round.MatchesPerSet; i++ {
			if err := ctx.Err(); err != nil {
				return score, err
			}

			board := set.Boards[o.rng.Intn(len(set.Boards))]
			seed := o.rng.Intn(meta.SEED_RANGE)
			config, err := engine.NewMatchConfig(board.Width, board.Height, seed, 0, agents...)
			if err != nil {
				return score, err
			}

			fmt.Fprintf(o.out, "Round #%d: ", i)

			m, err := o.play(ctx, matchRef{round: 3, set: setNo, index: i}, config)
			if err != nil {
				fmt.Fprintf(o.out, "ERROR\n\n")
				outcomes = append(outcomes, scoring.NoScore())
				o.skip(score, m, err)
				if ctx.Err() != nil {
					return score, ctx.Err()
				}
				continue
			}

			stat := m.result.Subject()
			matchScore := scoring.Survival(stat.Rank, stat.SurvivedFrames)
			outcomes = append(outcomes, scoring.Scored(matchScore))
			score.Complete()

			if stat.Rank == 1 {
				fmt.Fprintf(o.out, "Victory in %d steps!\n", stat.SurvivedFrames)
			} else {
				fmt.Fprintf(o.out, "Bot finished %s and survived for %d turns!\n",
					humanize.Ordinal(stat.Rank), stat.SurvivedFrames)
			}
			fmt.Fprintf(o.out, "Match score: %v%%\n\n", humanize.FtoaWithDigits(matchScore*100, 1))

			o.score(m, matchScore)
		}

		average := scoring.TopKAverage(outcomes, round.BestConsidered)
		setMax, setPoints := scoring.SetPoints(set.Weight, round.MaxTotalScore, average)
		fmt.Fprintf(o.out, "Score for set #%d: %v/%v!\n\n", setNo, setPoints, setMax)
		score.Add(setPoints)

		log.Info().Msgf("completed set %d of %d with %v of %v points", setNo, len(round.Sets), setPoints, setMax)
	}

	score.Points = scoring.Round(score.Points)
	fmt.Fprintf(o.out, "Round 3 - done!\n")
	fmt.Fprintf(o.out, "Final score: %s\n", score)
	return score, nil
}

// describeOpponents summarizes a roster, e.g. "1x starkbot, 2x DBotv4!"
func describeOpponents(opponents []string) string {
	parts := []string{}
	for _, opponent := range utils.Distinct(opponents) {
		parts = append(parts, fmt.Sprintf("%dx %s", utils.Count(opponents, opponent), botName(opponent)))
	}
	return strings.Join(parts, ", ") + "!"
}

// botName shortens a bot command to its executable name without the platform suffix
func botName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command
	}
	name := filepath.Base(fields[0])
	if i := strings.Index(name, "_"); i > 0 {
		name = name[:i]
	}
	return name
}
