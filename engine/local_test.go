package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeEngine installs a shell script standing in for the engine
func writeEngine(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine needs /bin/sh")
	}
	path := filepath.Join(dir, "fake-halite")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func mustConfig(t *testing.T, maxTurns int, agents ...string) MatchConfig {
	t.Helper()
	config, err := NewMatchConfig(30, 20, 42, maxTurns, agents...)
	require.NoError(t, err)
	return config
}

func TestMatchConfig(t *testing.T) {
	t.Run("building arguments without a turn limit", func(t *testing.T) {
		config := mustConfig(t, 0, "./MyBot", "./bots/DBot")

		require.Equal(t, []string{"-d", "30 20", "-s", "42", "./MyBot", "./bots/DBot"}, config.Args(),
			"Board and seed should come first, then agents with the subject first")
		require.Equal(t, "./MyBot", config.Subject())
	})

	t.Run("building arguments with a turn limit", func(t *testing.T) {
		config := mustConfig(t, 200, "make run")

		require.Equal(t, []string{"-d", "30 20", "-s", "42", "--max_turns", "200", "make run"}, config.Args(),
			"Turn limit should precede the agents")
		require.Equal(t, `-d "30 20" -s 42 --max_turns 200 "make run"`, config.String())
	})

	t.Run("copying the agent list", func(t *testing.T) {
		agents := []string{"./MyBot", "./Other"}
		config := mustConfig(t, 0, agents...)
		agents[0] = "./Changed"

		require.Equal(t, "./MyBot", config.Subject(), "Config should not alias the caller's slice")

		got := config.Agents()
		got[1] = "./Changed"
		require.Equal(t, "./Other", config.Agents()[1], "Agents should return a copy")
	})

	t.Run("rejecting invalid configs", func(t *testing.T) {
		_, err := NewMatchConfig(0, 10, 1, 0, "./MyBot")
		require.ErrorIs(t, err, ErrInvalidConfig)

		_, err = NewMatchConfig(10, 10, 1, 0)
		require.ErrorIs(t, err, ErrInvalidConfig, "A match needs at least one agent")

		_, err = NewMatchConfig(10, 10, 1, 0, "./MyBot", " ")
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestLocalEngineRun(t *testing.T) {
	t.Run("capturing output and the new replay", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.hlt"), []byte("{}"), 0o644))
		path := writeEngine(t, dir, `echo '{"num_frames": 3}' > "replay-$4.hlt"
echo "Player #1, $5, came in rank #1 and was last alive on frame #3!"
`)
		e := NewLocalEngine(path, WithWorkDir(dir))

		out, err := e.Run(context.Background(), mustConfig(t, 0, "./MyBot"))

		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "replay-42.hlt"), out.ReplayPath, "Stale replays should be ignored")
		require.Contains(t, out.Stdout, "rank #1")
		require.Contains(t, out.Stdout, "./MyBot", "Agent command should reach the engine as one argument")
		require.False(t, out.Started.IsZero())
	})

	t.Run("failing on a non-zero exit", func(t *testing.T) {
		dir := t.TempDir()
		path := writeEngine(t, dir, `echo "bot crashed" >&2
echo '{}' > broken.hlt
exit 3
`)
		e := NewLocalEngine(path, WithWorkDir(dir))

		out, err := e.Run(context.Background(), mustConfig(t, 0, "./MyBot"))

		require.Nil(t, out)
		require.ErrorIs(t, err, ErrLaunch)
		require.ErrorContains(t, err, "bot crashed", "Stderr should be part of the error")
	})

	t.Run("failing when the engine cannot start", func(t *testing.T) {
		e := NewLocalEngine(filepath.Join(t.TempDir(), "missing"), WithWorkDir(t.TempDir()))

		_, err := e.Run(context.Background(), mustConfig(t, 0, "./MyBot"))

		require.ErrorIs(t, err, ErrLaunch)
	})

	t.Run("failing when no replay is written", func(t *testing.T) {
		dir := t.TempDir()
		path := writeEngine(t, dir, "echo done\n")
		e := NewLocalEngine(path, WithWorkDir(dir))

		_, err := e.Run(context.Background(), mustConfig(t, 0, "./MyBot"))

		require.ErrorIs(t, err, ErrMissingArtifact)
		require.NotErrorIs(t, err, ErrLaunch)
	})

	t.Run("killing a hung engine", func(t *testing.T) {
		dir := t.TempDir()
		path := writeEngine(t, dir, "exec sleep 10\n")
		e := NewLocalEngine(path, WithWorkDir(dir), WithTimeout(100*time.Millisecond))

		start := time.Now()
		_, err := e.Run(context.Background(), mustConfig(t, 0, "./MyBot"))

		require.ErrorIs(t, err, ErrTimeout)
		require.ErrorIs(t, err, ErrLaunch, "A timeout is a launch failure")
		require.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("using a custom replay extension", func(t *testing.T) {
		dir := t.TempDir()
		path := writeEngine(t, dir, "echo '{}' > game.replay\n")
		e := NewLocalEngine(path, WithWorkDir(dir), WithReplayExt(".replay"))

		out, err := e.Run(context.Background(), mustConfig(t, 0, "./MyBot"))

		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "game.replay"), out.ReplayPath)
	})
}
