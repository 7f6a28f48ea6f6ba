package result

import (
	"bufio"
	"fmt"
	"strings"
)

const (
	statsMarker = "Player"
	rankToken   = "rank #"
	frameToken  = "frame #"
)

// PlayerStat is one player's line of the engine summary.
type PlayerStat struct {
	Rank           int
	SurvivedFrames int
}

// StatsParser turns the engine's standard output into per-player stats,
// ordered as the engine reports them (index 0 is the bot under evaluation).
type StatsParser interface {
	ParseStats(stdout string) ([]PlayerStat, error)
}

// SummaryParser reads the block the engine prints when a game ends:
//
//	Player #1, MyBot, came in rank #1 and was last alive on frame #154!
//	Player #2, DBot, came in rank #2 and was last alive on frame #120!
type SummaryParser struct{}

func (SummaryParser) ParseStats(stdout string) ([]PlayerStat, error) {
	start := strings.Index(stdout, statsMarker)
	if start < 0 {
		return nil, fmt.Errorf("%w: no %q block in engine output", ErrParse, statsMarker)
	}

	var stats []PlayerStat
	scanner := bufio.NewScanner(strings.NewReader(stdout[start:]))
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !strings.Contains(text, rankToken) && !strings.Contains(text, frameToken) {
			break // End of the summary block
		}

		rank, rest, err := intAfter(text, rankToken)
		if err != nil {
			return nil, fmt.Errorf("%w: summary line %d: %w", ErrParse, line, err)
		}
		frames, _, err := intAfter(rest, frameToken)
		if err != nil {
			return nil, fmt.Errorf("%w: summary line %d: %w", ErrParse, line, err)
		}
		stats = append(stats, PlayerStat{Rank: rank, SurvivedFrames: frames})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read engine output: %w", ErrParse, err)
	}

	if len(stats) == 0 {
		return nil, fmt.Errorf("%w: empty %q block in engine output", ErrParse, statsMarker)
	}
	return stats, nil
}

// intAfter reads the run of digits right after the first occurrence of token
// and returns it with the remainder of s.
func intAfter(s, token string) (int, string, error) {
	i := strings.Index(s, token)
	if i < 0 {
		return 0, "", fmt.Errorf("missing %q", token)
	}
	s = s[i+len(token):]

	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return 0, "", fmt.Errorf("no digits after %q", token)
	}
	return n, s[digits:], nil
}
