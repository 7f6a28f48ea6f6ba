package tournament

import (
	"context"
	"fmt"

	"halite/engine"
	"halite/scoring"

	"github.com/rs/zerolog/log"
)

// RunConquest plays the single player maps; the faster a map is conquered, the more it is worth.
func (o *Orchestrator) RunConquest(ctx context.Context, round ConquestRound) (*scoring.RoundScore, error) {
	if err := round.Validate(); err != nil {
		return nil, err
	}

	fmt.Fprintf(o.out, "Round 1 - single player map conquest!\n")
	log.Info().Msgf("starting conquest round with %d games...", len(round.Games))

	score := scoring.NewRoundScore(1, round.MaxScore)
	weight := round.MaxScore / float64(len(round.Games)) // Equal weight per game

	for i, game := range round.Games {
		if err := ctx.Err(); err != nil {
			return score, err
		}

		config, err := engine.NewMatchConfig(game.Width, game.Height, game.Seed, game.HardLimit, o.subject)
		if err != nil {
			return score, err
		}
		fmt.Fprintf(o.out, "Map: Height %d, Width %d, Seed %d\n", game.Height, game.Width, game.Seed)

		m, err := o.play(ctx, matchRef{round: 1, index: i + 1}, config)
		if err != nil {
			o.skip(score, m, err)
			if ctx.Err() != nil {
				return score, ctx.Err()
			}
			continue
		}

		res := m.result
		if res.MapConquered {
			fmt.Fprintf(o.out, "Map conquered in %d!\n", res.NumFrames)
		} else {
			if game.ExpectConquest {
				err := fmt.Errorf("%w: game %d was expected to be conquered but %s did not conquer the map",
					scoring.ErrConsistency, i+1, res.SubjectName())
				o.inconsistent(m, err)
				return score, err
			}
			fmt.Fprintf(o.out, "\n%s failed to conquer every productive tile on the map!\n", res.SubjectName())
		}

		points := scoring.Conquest(scoring.ConquestGame{
			SoftLimit: game.SoftLimit,
			HardLimit: game.HardLimit,
			Weight:    weight,
		}, res.MapConquered, res.NumFrames)
		score.Award(points)
		fmt.Fprintf(o.out, "Map score: %v\n", points)

		o.score(m, points)
		log.Info().Msgf("completed conquest game %d of %d with %v points", i+1, len(round.Games), points)
	}

	fmt.Fprintf(o.out, "Round 1 - done!\n")
	fmt.Fprintf(o.out, "Final score: %s\n", score)
	return score, nil
}
