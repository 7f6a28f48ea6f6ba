package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"halite/scoring"
)

type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) (*Writer, error) {
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) WriteMatchRecords(records []MatchRecord) error {
	// Create a file
	path := filepath.Join(w.baseDir, "match_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create match records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	header := []string{"session", "round", "set", "match", "width", "height", "seed", "agents",
		"status", "points", "replay", "start_time", "duration", "error"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write match records header: %w", err)
	}

	// Write each row
	for _, record := range records {
		row := []string{
			record.Session,
			strconv.Itoa(record.Round),
			strconv.Itoa(record.Set),
			strconv.Itoa(record.Match),
			strconv.Itoa(record.Width),
			strconv.Itoa(record.Height),
			strconv.Itoa(record.Seed),
			strconv.Itoa(record.Agents),
			string(record.Status),
			strconv.FormatFloat(record.Points, 'f', -1, 64),
			record.Replay,
			record.StartTime.Format(time.RFC3339),
			record.Duration.String(),
			record.Err,
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write match record row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush match records: %w", err)
	}
	return nil
}

func (w *Writer) WriteRoundScore(session string, score *scoring.RoundScore) error {
	path := filepath.Join(w.baseDir, "round_score.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create round score file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	rows := [][]string{
		{"session", "round", "points", "max", "played", "skipped"},
		{
			session,
			strconv.Itoa(score.Round),
			strconv.FormatFloat(scoring.Round(score.Points), 'f', -1, 64),
			strconv.FormatFloat(score.Max, 'f', -1, 64),
			strconv.Itoa(score.Played),
			strconv.Itoa(score.Skipped),
		},
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write round score: %w", err)
	}
	return nil
}
