package tournament

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"halite/archive"
	"halite/engine"
	"halite/report"
	"halite/result"
	"halite/scoring"
	"halite/telemetry"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/rand"
)

var ErrInvalidRound = errors.New("invalid round parameter (should be an integer in [1, 3])")

const NumRounds = 3

type Option func(o *Orchestrator)

func WithParser(parser *result.Parser) Option {
	return func(o *Orchestrator) {
		if parser != nil {
			o.parser = parser
		}
	}
}

// WithOutput sets where the human readable progress and scores are printed.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) {
		if w != nil {
			o.out = w
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(o *Orchestrator) {
		if rng != nil {
			o.rng = rng
		}
	}
}

func WithCollector(records report.Collector) Option {
	return func(o *Orchestrator) {
		if records != nil {
			o.records = records
		}
	}
}

func WithSession(session string) Option {
	return func(o *Orchestrator) {
		o.session = session
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// Orchestrator plays the matches of a round one after the other and keeps the score.
type Orchestrator struct {
	subject string // Command of the bot under evaluation
	runner  engine.Runner
	store   archive.Store
	parser  *result.Parser
	out     io.Writer
	rng     *rand.Rand
	records report.Collector
	session string
	tracer  trace.Tracer
}

func New(subject string, runner engine.Runner, store archive.Store, options ...Option) *Orchestrator {
	o := &Orchestrator{ // Default values
		subject: subject,
		runner:  runner,
		store:   store,
		parser:  result.NewParser(nil),
		out:     io.Discard,
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		records: report.NewDummyCollector(),
		tracer:  telemetry.Tracer(),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

func ValidateRound(round int) error {
	if round < 1 || round > NumRounds {
		return fmt.Errorf("%w: got %d", ErrInvalidRound, round)
	}
	return nil
}

// Run plays one round of plan and returns its final score. A consistency
// error or a cancelled context ends the round early.
func (o *Orchestrator) Run(ctx context.Context, round int, plan Plan) (*scoring.RoundScore, error) {
	if err := ValidateRound(round); err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "round", trace.WithAttributes(attribute.Int("round", round)))
	defer span.End()

	var score *scoring.RoundScore
	var err error
	switch round {
	case 1:
		score, err = o.RunConquest(ctx, plan.Conquest)
	case 2:
		score, err = o.RunDuel(ctx, plan.Duel)
	case 3:
		score, err = o.RunFreeForAll(ctx, plan.FreeForAll)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if score != nil {
		span.SetAttributes(
			attribute.Float64("points", score.Points),
			attribute.Float64("max", score.Max),
			attribute.Int("played", score.Played),
			attribute.Int("skipped", score.Skipped),
		)
	}
	return score, err
}

// matchRef locates a match inside a round
type matchRef struct {
	round int
	set   int
	index int
}

// played is what the pipeline knows about a match after running and parsing it
type played struct {
	ref     matchRef
	config  engine.MatchConfig
	started time.Time
	output  *engine.Output
	result  *result.MatchResult
	span    trace.Span
}

// play runs a match and parses its outcome. The returned match must be
// finished with either skip or score.
func (o *Orchestrator) play(ctx context.Context, ref matchRef, config engine.MatchConfig) (*played, error) {
	ctx, span := o.tracer.Start(ctx, "match", trace.WithAttributes(
		attribute.Int("round", ref.round),
		attribute.Int("set", ref.set),
		attribute.Int("match", ref.index),
		attribute.Int("seed", config.Seed()),
		attribute.String("board", fmt.Sprintf("%dx%d", config.Width(), config.Height())),
	))
	m := &played{ref: ref, config: config, started: time.Now(), span: span}

	output, err := o.runner.Run(ctx, config)
	if err != nil {
		return m, err
	}
	m.output = output
	if !output.Started.IsZero() {
		m.started = output.Started
	}

	res, err := o.parser.Parse(output.Stdout, output.ReplayPath)
	if err != nil {
		return m, err
	}
	m.result = res
	return m, nil
}

// skip records a failed match. Whatever replay it left is archived.
func (o *Orchestrator) skip(score *scoring.RoundScore, m *played, err error) {
	defer m.span.End()
	m.span.RecordError(err)
	m.span.SetStatus(codes.Error, err.Error())

	score.Skip()
	log.Warn().Err(err).
		Int("round", m.ref.round).
		Int("set", m.ref.set).
		Int("match", m.ref.index).
		Str("args", m.config.String()).
		Msg("match skipped")

	o.records.Add(o.record(m, report.StatusSkipped, 0, o.archive(m), err))
}

// score records a scored match and archives its replay.
func (o *Orchestrator) score(m *played, points float64) {
	defer m.span.End()
	m.span.SetAttributes(attribute.Float64("points", points))
	o.records.Add(o.record(m, report.StatusScored, points, o.archive(m), nil))
}

// inconsistent records a match that contradicts the round's declarations.
func (o *Orchestrator) inconsistent(m *played, err error) {
	defer m.span.End()
	m.span.RecordError(err)
	m.span.SetStatus(codes.Error, err.Error())
	o.records.Add(o.record(m, report.StatusInconsistent, 0, o.archive(m), err))
}

func (o *Orchestrator) archive(m *played) string {
	if m.output == nil || m.output.ReplayPath == "" {
		return ""
	}
	path, err := o.store.Archive(m.output.ReplayPath)
	if err != nil {
		log.Warn().Err(err).Str("replay", m.output.ReplayPath).Msg("failed to archive replay")
		return m.output.ReplayPath
	}
	return path
}

func (o *Orchestrator) record(m *played, status report.Status, points float64, replay string, err error) report.MatchRecord {
	record := report.MatchRecord{
		Session:   o.session,
		Round:     m.ref.round,
		Set:       m.ref.set,
		Match:     m.ref.index,
		Width:     m.config.Width(),
		Height:    m.config.Height(),
		Seed:      m.config.Seed(),
		Agents:    len(m.config.Agents()),
		Status:    status,
		Points:    points,
		Replay:    replay,
		StartTime: m.started,
	}
	if m.output != nil {
		record.Duration = m.output.Duration
	}
	if err != nil {
		record.Err = err.Error()
	}
	return record
}
