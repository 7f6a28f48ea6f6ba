package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"halite/meta"

	"github.com/rs/zerolog/log"
)

// Bounds how long Run waits for inherited pipes after the engine was killed.
const waitDelay = 2 * time.Second

type Option func(e *LocalEngine)

func WithWorkDir(dir string) Option {
	return func(e *LocalEngine) {
		if dir != "" {
			e.workDir = dir
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(e *LocalEngine) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

func WithReplayExt(ext string) Option {
	return func(e *LocalEngine) {
		if ext != "" {
			e.replayExt = ext
		}
	}
}

// LocalEngine runs the engine executable as a child process, one match at a time.
type LocalEngine struct {
	path      string
	workDir   string
	replayExt string
	timeout   time.Duration // zero means no limit
}

func NewLocalEngine(path string, options ...Option) *LocalEngine {
	e := &LocalEngine{ // Default values
		path:      path,
		workDir:   ".",
		replayExt: meta.REPLAY_EXT,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *LocalEngine) Run(ctx context.Context, config MatchConfig) (*Output, error) {
	before, err := e.snapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan %s: %w", ErrLaunch, e.workDir, err)
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if e.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.path, config.Args()...)
	cmd.Dir = e.workDir
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("engine", e.path).Str("args", config.String()).Msg("launching engine")

	started := time.Now()
	err = cmd.Run()
	elapsed := time.Since(started)

	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %w", ErrLaunch, ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %w after %s", ErrLaunch, ErrTimeout, e.timeout)
		}
		return nil, fmt.Errorf("%w: %w%s", ErrLaunch, err, stderrTail(stderr.String()))
	}

	replay, err := e.findReplay(before, started)
	if err != nil {
		return nil, err
	}

	return &Output{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ReplayPath: replay,
		Started:    started,
		Duration:   elapsed,
	}, nil
}

// snapshot records the modification time of every replay already in the working directory
func (e *LocalEngine) snapshot() (map[string]time.Time, error) {
	entries, err := os.ReadDir(e.workDir)
	if err != nil {
		return nil, err
	}

	replays := make(map[string]time.Time)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), e.replayExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // Removed in the meantime
		}
		replays[entry.Name()] = info.ModTime()
	}
	return replays, nil
}

// findReplay returns the replay written by the last run: a file that did not exist
// before the launch or whose modification time changed since.
func (e *LocalEngine) findReplay(before map[string]time.Time, started time.Time) (string, error) {
	after, err := e.snapshot()
	if err != nil {
		return "", fmt.Errorf("%w: failed to scan %s: %w", ErrMissingArtifact, e.workDir, err)
	}

	var created []string
	var newest string
	var newestTime time.Time
	for name, modTime := range after {
		if prev, ok := before[name]; ok && prev.Equal(modTime) {
			continue
		}
		created = append(created, name)
		if newest == "" || modTime.After(newestTime) {
			newest, newestTime = name, modTime
		}
	}

	if len(created) == 0 {
		return "", fmt.Errorf("%w in %s", ErrMissingArtifact, e.workDir)
	}
	if len(created) > 1 {
		log.Warn().Strs("replays", created).Str("picked", newest).Time("started", started).
			Msg("engine run produced more than one replay")
	}
	return filepath.Join(e.workDir, newest), nil
}

func stderrTail(stderr string) string {
	const maxLen = 512
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	if len(stderr) > maxLen {
		stderr = "..." + stderr[len(stderr)-maxLen:]
	}
	return ": " + stderr
}
