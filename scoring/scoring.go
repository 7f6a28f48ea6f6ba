// Package scoring turns match results into points. Every function is pure.
package scoring

import (
	"errors"
	"math"
	"sort"

	"halite/meta"

	"github.com/shopspring/decimal"
)

// ErrConsistency means a result contradicts what the round declared about it.
var ErrConsistency = errors.New("inconsistent match result")

// ConquestGame is one single-player map of the conquest round.
type ConquestGame struct {
	SoftLimit int
	HardLimit int
	Weight    float64
}

// Conquest scores a single-player game by how fast the map was conquered:
// full weight up to the soft limit, linear decay to zero at the hard limit.
func Conquest(game ConquestGame, conquered bool, numFrames int) float64 {
	switch {
	case !conquered:
		return 0
	case numFrames <= game.SoftLimit:
		return game.Weight
	case numFrames < game.HardLimit:
		soft, hard := float64(game.SoftLimit), float64(game.HardLimit)
		return game.Weight * (1 - (float64(numFrames)-soft)/(hard-soft))
	default:
		return 0
	}
}

// Duel awards points only when the winner is the bot under evaluation.
func Duel(points float64, winner, subject string) float64 {
	if winner == subject {
		return points
	}
	return 0
}

// Survival scores a free-for-all match: a win is worth 1, a loss is worth the
// squared fraction of frames survived between the floor and the ceiling.
func Survival(rank, survivedFrames int) float64 {
	if rank == 1 {
		return 1
	}
	floor, ceiling := float64(meta.SURVIVAL_FLOOR), float64(meta.SURVIVAL_CEILING)
	frames := math.Max(floor, math.Min(ceiling, float64(survivedFrames)))
	fraction := (frames - floor) / (ceiling - floor)
	return fraction * fraction
}

// Outcome is a scored match or a failed one that has no score at all.
type Outcome struct {
	Score  float64
	Scored bool
}

func Scored(score float64) Outcome { return Outcome{Score: score, Scored: true} }

func NoScore() Outcome { return Outcome{} }

// TopKAverage averages the k best scored outcomes. Failed matches are left out;
// with fewer than k scored outcomes all of them are averaged.
func TopKAverage(outcomes []Outcome, k int) float64 {
	scores := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Scored {
			scores = append(scores, o.Score)
		}
	}
	if len(scores) == 0 || k <= 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	if len(scores) > k {
		scores = scores[:k]
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// SetPoints returns the maximum and the awarded points of a free-for-all set
// weighted in percent of the round's total.
func SetPoints(weight, totalMax, average float64) (maxPoints, points float64) {
	maxPoints = Round(weight / 100 * totalMax)
	points = Round(maxPoints * average)
	return maxPoints, points
}

// Round rounds half away from zero to three decimals.
func Round(x float64) float64 {
	return decimal.NewFromFloat(x).Round(3).InexactFloat64()
}
