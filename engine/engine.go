package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidConfig   = errors.New("invalid match config")
	ErrLaunch          = errors.New("engine run failed")
	ErrTimeout         = errors.New("engine run timed out")
	ErrMissingArtifact = errors.New("no replay file was produced")
)

type Runner interface {
	// Run plays a single match to completion and returns the captured output and the replay it produced
	Run(ctx context.Context, config MatchConfig) (*Output, error)
}

// Output is what a successful engine run leaves behind.
type Output struct {
	Stdout     string
	Stderr     string
	ReplayPath string
	Started    time.Time
	Duration   time.Duration
}

// MatchConfig describes one engine invocation. Values are built with
// NewMatchConfig and never change afterwards.
type MatchConfig struct {
	width    int
	height   int
	seed     int
	maxTurns int
	agents   []string // agents[0] is the bot under evaluation
}

func NewMatchConfig(width, height, seed, maxTurns int, agents ...string) (MatchConfig, error) {
	if width <= 0 || height <= 0 {
		return MatchConfig{}, fmt.Errorf("%w: board must be positive, got %dx%d", ErrInvalidConfig, width, height)
	}
	if len(agents) == 0 {
		return MatchConfig{}, fmt.Errorf("%w: need at least one agent", ErrInvalidConfig)
	}
	for i, agent := range agents {
		if strings.TrimSpace(agent) == "" {
			return MatchConfig{}, fmt.Errorf("%w: agent %d has an empty command", ErrInvalidConfig, i)
		}
	}

	return MatchConfig{
		width:    width,
		height:   height,
		seed:     seed,
		maxTurns: maxTurns,
		agents:   slices.Clone(agents),
	}, nil
}

func (c MatchConfig) Width() int    { return c.width }
func (c MatchConfig) Height() int   { return c.height }
func (c MatchConfig) Seed() int     { return c.seed }
func (c MatchConfig) MaxTurns() int { return c.maxTurns }

func (c MatchConfig) Agents() []string {
	return slices.Clone(c.agents)
}

func (c MatchConfig) Subject() string {
	if len(c.agents) == 0 {
		return ""
	}
	return c.agents[0]
}

// Args returns the engine arguments: board, seed, optional turn limit, then
// one argument per agent command with the subject first.
func (c MatchConfig) Args() []string {
	args := []string{
		"-d", fmt.Sprintf("%d %d", c.width, c.height),
		"-s", strconv.Itoa(c.seed),
	}
	if c.maxTurns > 0 {
		args = append(args, "--max_turns", strconv.Itoa(c.maxTurns))
	}
	return append(args, c.agents...)
}

// String renders the arguments the way they would be typed in a shell.
func (c MatchConfig) String() string {
	args := c.Args()
	quoted := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, " \t\"'") {
			quoted[i] = strconv.Quote(arg)
		} else {
			quoted[i] = arg
		}
	}
	return strings.Join(quoted, " ")
}
