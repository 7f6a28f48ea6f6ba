package tournament

import (
	"context"
	"fmt"

	"halite/engine"
	"halite/scoring"

	"github.com/rs/zerolog/log"
)

// RunDuel plays one against one games; only victories count.
func (o *Orchestrator) RunDuel(ctx context.Context, round DuelRound) (*scoring.RoundScore, error) {
	if err := round.Validate(); err != nil {
		return nil, err
	}

	fmt.Fprintf(o.out, "Round 2 - 1vs1 battles!\n")
	log.Info().Msgf("starting duel round with %d games against %s...", len(round.Games), round.Opponent)

	total := 0.0
	for _, game := range round.Games {
		total += game.Points
	}
	score := scoring.NewRoundScore(2, scoring.Round(total))

	for i, game := range round.Games {
		if err := ctx.Err(); err != nil {
			return score, err
		}

		config, err := engine.NewMatchConfig(game.Width, game.Height, game.Seed, round.MaxTurns, o.subject, round.Opponent)
		if err != nil {
			return score, err
		}
		fmt.Fprintf(o.out, "Map: Height %d, Width %d, Seed %d\n", game.Height, game.Width, game.Seed)

		m, err := o.play(ctx, matchRef{round: 2, index: i + 1}, config)
		if err != nil {
			o.skip(score, m, err)
			if ctx.Err() != nil {
				return score, ctx.Err()
			}
			continue
		}

		res := m.result
		points := scoring.Duel(game.Points, res.Winner, res.SubjectName())
		if res.Won() {
			fmt.Fprintf(o.out, "Victory")
		} else {
			fmt.Fprintf(o.out, "Defeat")
		}
		fmt.Fprintf(o.out, " in %d steps!\n\n", res.NumFrames-1)
		score.Award(points)

		o.score(m, points)
		log.Info().Msgf("completed duel game %d of %d with winner: %s", i+1, len(round.Games), res.Winner)
	}

	fmt.Fprintf(o.out, "Round 2 - done!\n")
	fmt.Fprintf(o.out, "Final score: %s\n", score)
	return score, nil
}
