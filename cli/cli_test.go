package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

const conqueringEngine = `#!/bin/sh
echo '{"map_conquered":true,"num_frames":100,"winner":"MyBot","player_names":["MyBot"],"frames":[]}' > "replay-$4.hlt"
echo 'Player #1, MyBot, came in rank #1 and was last alive on frame #100!'
`

// workspace prepares a working directory with a fake engine and points the config at it
func workspace(t *testing.T, engine string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine needs /bin/sh")
	}
	dir := t.TempDir()
	if engine != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "halite"), []byte(engine), 0o755))
	}
	t.Setenv("HALITE_WORK_DIR", dir)
	t.Setenv("HALITE_LOG_FORMAT", "json")
	t.Setenv("HALITE_OTLP_ENDPOINT", "")
	return dir
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsageErrors(t *testing.T) {
	workspace(t, conqueringEngine)

	for name, args := range map[string][]string{
		"round out of range": {"--cmd", "./MyBot", "--round", "4"},
		"round zero":         {"--cmd", "./MyBot", "--round", "0"},
		"missing bot":        {"--round", "1"},
		"unknown flag":       {"--cmd", "./MyBot", "--rounds", "1"},
		"stray argument":     {"--cmd", "./MyBot", "extra"},
		"visualize nothing":  {"visualize"},
	} {
		code, stdout, stderr := execute(args...)

		require.Equal(t, ExitUsage, code, name)
		require.Empty(t, stdout, "No match should run for %s", name)
		require.Contains(t, stderr, "Error:", name)
	}
}

func TestRunRound(t *testing.T) {
	t.Run("playing the conquest round", func(t *testing.T) {
		dir := workspace(t, conqueringEngine)

		code, stdout, stderr := execute("--cmd", "./MyBot", "--round", "1")

		require.Equal(t, 0, code, stderr)
		require.Contains(t, stdout, "Round 1 - single player map conquest!")
		require.Contains(t, stdout, "Map conquered in 100!")
		require.Contains(t, stdout, "Final score: 0.3/0.3")

		replays, err := filepath.Glob(filepath.Join(dir, "replays", "*.hlt"))
		require.NoError(t, err)
		require.Len(t, replays, 5, "Every replay should be archived")
		require.FileExists(t, filepath.Join(dir, "replays", "match_records.csv"))
		require.FileExists(t, filepath.Join(dir, "replays", "round_score.csv"))
	})

	t.Run("cleaning up after the round", func(t *testing.T) {
		dir := workspace(t, conqueringEngine)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.log"), []byte("log"), 0o644))

		code, _, stderr := execute("--cmd", "./MyBot", "--clean")

		require.Equal(t, 0, code, stderr)
		require.NoDirExists(t, filepath.Join(dir, "replays"))
		require.NoFileExists(t, filepath.Join(dir, "bot.log"))
		require.FileExists(t, filepath.Join(dir, "halite"), "Engine should survive the clean up")
	})

	t.Run("skipping the report", func(t *testing.T) {
		dir := workspace(t, conqueringEngine)
		t.Setenv("HALITE_REPORT", "false")

		code, _, stderr := execute("--cmd", "./MyBot")

		require.Equal(t, 0, code, stderr)
		require.NoFileExists(t, filepath.Join(dir, "replays", "match_records.csv"))
	})

	t.Run("failing matches do not fail the round", func(t *testing.T) {
		workspace(t, "#!/bin/sh\necho boom >&2\nexit 3\n")

		code, stdout, stderr := execute("--cmd", "./MyBot")

		require.Equal(t, 0, code, stderr)
		require.Contains(t, stdout, "Final score: 0/0.3")
	})

	t.Run("missing engine is fatal", func(t *testing.T) {
		dir := workspace(t, "")
		t.Setenv("HALITE_ENGINE_SOURCE", filepath.Join(dir, "nowhere"))

		code, stdout, _ := execute("--cmd", "./MyBot")

		require.Equal(t, ExitFatal, code)
		require.Empty(t, stdout)
	})

	t.Run("invalid plan file", func(t *testing.T) {
		dir := workspace(t, conqueringEngine)
		plan := filepath.Join(dir, "plan.hcl")
		require.NoError(t, os.WriteFile(plan, []byte("duel {\n  opponent = \"./x\"\n}\n"), 0o644))

		code, _, _ := execute("--cmd", "./MyBot", "--plan", plan)

		require.Equal(t, ExitUsage, code)
	})
}

func TestVisualize(t *testing.T) {
	dir := workspace(t, "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "visualizer"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visualizer", "Visualizer.htm"),
		[]byte("<title>FILENAME</title><script>var data = REPLAY_DATA;</script>"), 0o644))
	replay := filepath.Join(dir, "replay-1.hlt")
	require.NoError(t, os.WriteFile(replay, []byte(`{"num_frames":3}`), 0o644))

	code, stdout, stderr := execute("visualize", replay)

	require.Equal(t, 0, code, stderr)
	page := filepath.Join(dir, "visualizer", "replay-1.htm")
	require.Equal(t, page+"\n", stdout)
	html, err := os.ReadFile(page)
	require.NoError(t, err)
	require.Equal(t, `<title>replay-1.hlt</title><script>var data = {"num_frames":3};</script>`, string(html))

	code, _, _ = execute("visualize", filepath.Join(dir, "missing.hlt"))
	require.Equal(t, ExitFatal, code, "Rendering a missing replay should fail")
}
