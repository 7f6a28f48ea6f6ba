package result

import "fmt"

// MatchResult is everything known about one finished match. A match without
// a replay never gets one; it is reported as an error instead.
type MatchResult struct {
	ReplayPath string
	Replay
	Stats []PlayerStat // Positional, index 0 is the bot under evaluation
}

// Subject returns the stats of the bot under evaluation.
func (r *MatchResult) Subject() PlayerStat {
	return r.Stats[0]
}

// SubjectName returns the name the engine gave the bot under evaluation.
func (r *MatchResult) SubjectName() string {
	if len(r.PlayerNames) == 0 {
		return ""
	}
	return r.PlayerNames[0]
}

// Won reports whether the replay names the bot under evaluation as winner.
func (r *MatchResult) Won() bool {
	return len(r.PlayerNames) > 0 && r.Winner == r.PlayerNames[0]
}

type Parser struct {
	stats StatsParser
}

func NewParser(stats StatsParser) *Parser {
	if stats == nil {
		stats = SummaryParser{}
	}
	return &Parser{stats: stats}
}

// Parse combines the engine summary and the replay of one match.
func (p *Parser) Parse(stdout, replayPath string) (*MatchResult, error) {
	if replayPath == "" {
		return nil, fmt.Errorf("%w: no replay path", ErrParse)
	}

	stats, err := p.stats.ParseStats(stdout)
	if err != nil {
		return nil, err
	}

	replay, err := ReadReplay(replayPath)
	if err != nil {
		return nil, err
	}
	if len(replay.PlayerNames) != len(stats) {
		return nil, fmt.Errorf("%w: engine reported %d players but replay names %d",
			ErrParse, len(stats), len(replay.PlayerNames))
	}

	return &MatchResult{
		ReplayPath: replayPath,
		Replay:     replay,
		Stats:      stats,
	}, nil
}
