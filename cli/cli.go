// Package cli wires configuration, the toolchain and the tournament behind the
// halite-eval command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"halite/archive"
	"halite/config"
	"halite/engine"
	"halite/meta"
	"halite/report"
	"halite/scoring"
	"halite/telemetry"
	"halite/toolchain"
	"halite/tournament"
	"halite/visualize"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

const (
	ExitFatal = 1
	ExitUsage = 2
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usage(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

func fatal(err error) error {
	return &ExitError{Code: ExitFatal, Err: err}
}

type rootOptions struct {
	subject string
	round   int
	clean   bool
	plan    string
	timeout time.Duration
	seed    uint64
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// Anything cobra rejects before running a command is a usage error
	return ExitUsage
}

func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "halite-eval",
		Short: "Evaluate a Halite bot against the tournament rounds",
		Long: "Runs one round of the evaluation protocol against the bot started by --cmd:\n" +
			"  1: single player map conquest\n" +
			"  2: duels against DBotv4\n" +
			"  3: free for all sets against DBotv4 and starkbot",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRound(cmd, opts, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.Flags()
	flags.StringVar(&opts.subject, "cmd", "", "command starting the bot under evaluation, e.g. \"./MyBot\"")
	flags.IntVar(&opts.round, "round", 1, "round to play (1, 2 or 3)")
	flags.BoolVar(&opts.clean, "clean", false, "remove replays, logs and build outputs after the round")
	flags.StringVar(&opts.plan, "plan", "", "HCL file overriding the built-in round tables")
	flags.DurationVar(&opts.timeout, "timeout", meta.MATCH_TIMEOUT, "wall clock limit per match, 0 disables it")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed for the free for all boards and seeds")

	root.AddCommand(newVisualizeCommand(stdout))
	return root
}

func runRound(cmd *cobra.Command, opts *rootOptions, stdout, stderr io.Writer) error {
	ctx := cmd.Context()

	if err := tournament.ValidateRound(opts.round); err != nil {
		return usage(err)
	}
	if opts.subject == "" {
		return usage(errors.New("required flag \"cmd\" not set"))
	}

	cfg, err := config.Load()
	if err != nil {
		return usage(err)
	}
	if cmd.Flags().Changed("timeout") {
		cfg.MatchTimeout = opts.timeout
	}

	session := uuid.NewString()
	if err := config.SetupLogger(cfg, stderr, session); err != nil {
		return usage(err)
	}

	plan := tournament.DefaultPlan()
	if opts.plan != "" {
		if plan, err = tournament.LoadPlan(opts.plan); err != nil {
			return usage(err)
		}
	}

	shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, session)
	if err != nil {
		return fatal(fmt.Errorf("failed to set up tracing: %w", err))
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	tools := toolchain.New(cfg.WorkDir)
	if err := tools.EnsureEngine(ctx, cfg.Engine, cfg.EngineSource); err != nil {
		return fatal(err)
	}
	if err := tools.BuildBot(ctx); err != nil {
		return fatal(err)
	}

	store := archive.NewDirStore(cfg.WorkDir, cfg.ArchiveDir, meta.REPLAY_EXT)
	if err := store.Reset(); err != nil {
		return fatal(err)
	}

	runner := engine.NewLocalEngine(cfg.Engine,
		engine.WithWorkDir(cfg.WorkDir),
		engine.WithTimeout(cfg.MatchTimeout),
		engine.WithReplayExt(meta.REPLAY_EXT),
	)

	records := report.NewDummyCollector()
	if cfg.Report {
		records = report.NewCollector()
	}
	options := []tournament.Option{
		tournament.WithOutput(stdout),
		tournament.WithCollector(records),
		tournament.WithSession(session),
	}
	if cmd.Flags().Changed("seed") {
		options = append(options, tournament.WithRand(rand.New(rand.NewSource(opts.seed))))
	}

	log.Info().Str("bot", opts.subject).Int("round", opts.round).Msg("starting evaluation...")
	score, runErr := tournament.New(opts.subject, runner, store, options...).Run(ctx, opts.round, plan)

	if cfg.Report && score != nil {
		writeReport(store.Dir(), session, records, score)
	}
	if opts.clean {
		cleanUp(context.WithoutCancel(ctx), store, tools)
	}

	if runErr != nil {
		if errors.Is(runErr, tournament.ErrInvalidPlan) || errors.Is(runErr, engine.ErrInvalidConfig) {
			return usage(runErr)
		}
		return fatal(runErr)
	}
	log.Info().Str("score", score.String()).Int("played", score.Played).Int("skipped", score.Skipped).
		Msg("evaluation finished")
	return nil
}

func writeReport(dir, session string, records report.Collector, score *scoring.RoundScore) {
	writer, err := report.NewWriter(dir)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create report writer")
		return
	}
	if err := writer.WriteMatchRecords(records.Records()); err != nil {
		log.Warn().Err(err).Msg("failed to write match records")
	}
	if err := writer.WriteRoundScore(session, score); err != nil {
		log.Warn().Err(err).Msg("failed to write round score")
	}
}

func cleanUp(ctx context.Context, store *archive.DirStore, tools *toolchain.Toolchain) {
	log.Info().Msg("cleaning up...")
	if err := store.Purge(); err != nil {
		log.Warn().Err(err).Msg("failed to purge replays")
	}
	if err := tools.Clean(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to clean build outputs")
	}
}

func newVisualizeCommand(stdout io.Writer) *cobra.Command {
	var browser string

	cmd := &cobra.Command{
		Use:   "visualize REPLAY",
		Short: "Render a replay into an HTML page and optionally open it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return usage(err)
			}

			dir := cfg.VisualizerDir
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(cfg.WorkDir, dir)
			}
			page, err := visualize.Render(args[0], dir)
			if err != nil {
				return fatal(err)
			}
			fmt.Fprintln(stdout, page)

			if browser == "" {
				return nil
			}
			if err := visualize.Open(browser, page); err != nil {
				return fatal(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&browser, "browser", "", "browser command to open the page with, e.g. firefox")
	return cmd
}
