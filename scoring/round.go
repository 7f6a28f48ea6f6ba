package scoring

import "fmt"

// RoundScore accumulates the points of one round.
type RoundScore struct {
	Round   int
	Points  float64
	Max     float64
	Played  int
	Skipped int
}

func NewRoundScore(round int, max float64) *RoundScore {
	return &RoundScore{Round: round, Max: max}
}

// Award counts a scored match and its points.
func (s *RoundScore) Award(points float64) {
	s.Add(points)
	s.Complete()
}

// Add adds points not tied to a single match, such as a free-for-all set.
func (s *RoundScore) Add(points float64) {
	s.Points += points
}

func (s *RoundScore) Complete() {
	s.Played++
}

func (s *RoundScore) Skip() {
	s.Skipped++
}

func (s *RoundScore) String() string {
	return fmt.Sprintf("%v/%v", Round(s.Points), s.Max)
}
