package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"halite/scoring"

	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCollector(t *testing.T) {
	t.Run("keeping records in order", func(t *testing.T) {
		c := NewCollector()
		c.Add(MatchRecord{Match: 1})
		c.Add(MatchRecord{Match: 2})

		require.Len(t, c.Records(), 2)
		require.Equal(t, 2, c.Records()[1].Match)
	})

	t.Run("dropping records when disabled", func(t *testing.T) {
		c := NewDummyCollector()
		c.Add(MatchRecord{Match: 1})

		require.Empty(t, c.Records())
	})
}

func TestWriter(t *testing.T) {
	t.Run("writing match records", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "replays")
		w, err := NewWriter(dir)
		require.NoError(t, err)
		start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		err = w.WriteMatchRecords([]MatchRecord{
			{Session: "s1", Round: 3, Set: 2, Match: 1, Width: 30, Height: 30, Seed: 7, Agents: 4,
				Status: StatusScored, Points: 0.25, Replay: "replays/1-7.hlt", StartTime: start, Duration: 3 * time.Second},
			{Session: "s1", Round: 3, Set: 2, Match: 2, Width: 40, Height: 40, Seed: 8, Agents: 4,
				Status: StatusSkipped, StartTime: start, Err: "engine run failed"},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(dir, "match_records.csv"))
		require.Len(t, rows, 3, "Header and one row per match")
		require.Equal(t, "status", rows[0][8])
		require.Equal(t, []string{"s1", "3", "2", "1", "30", "30", "7", "4", "scored", "0.25",
			"replays/1-7.hlt", "2024-05-01T12:00:00Z", "3s", ""}, rows[1])
		require.Equal(t, "skipped", rows[2][8])
		require.Equal(t, "engine run failed", rows[2][13])
	})

	t.Run("writing the round score", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(dir)
		require.NoError(t, err)
		score := scoring.NewRoundScore(1, 0.3)
		score.Award(0.06)
		score.Award(0.0288)
		score.Skip()

		require.NoError(t, w.WriteRoundScore("s1", score))

		rows := readCSV(t, filepath.Join(dir, "round_score.csv"))
		require.Equal(t, []string{"s1", "1", "0.089", "0.3", "2", "1"}, rows[1])
	})
}
