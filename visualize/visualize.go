// Package visualize renders replays into standalone HTML pages.
package visualize

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	TemplateName     = "Visualizer.htm"
	filenameToken    = "FILENAME"
	replayDataToken  = "REPLAY_DATA"
	renderedFileMode = 0644
)

// Render writes the page for replayPath next to the template in dir and
// returns its path. An existing page is reused.
func Render(replayPath, dir string) (string, error) {
	name := filepath.Base(replayPath)
	page := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+".htm")
	if _, err := os.Stat(page); err == nil {
		return page, nil
	}

	replay, err := os.ReadFile(replayPath)
	if err != nil {
		return "", fmt.Errorf("failed to read replay: %w", err)
	}
	template, err := os.ReadFile(filepath.Join(dir, TemplateName))
	if err != nil {
		return "", fmt.Errorf("failed to read visualizer template: %w", err)
	}

	// Filename first, replay data may contain the token
	html := strings.Replace(string(template), filenameToken, name, -1)
	html = strings.Replace(html, replayDataToken, string(replay), -1)

	if err := os.WriteFile(page, []byte(html), renderedFileMode); err != nil {
		return "", fmt.Errorf("failed to write visualizer page: %w", err)
	}
	return page, nil
}

// Open starts browser on page without waiting for it.
func Open(browser, page string) error {
	fields := strings.Fields(browser)
	if len(fields) == 0 {
		return fmt.Errorf("no browser command")
	}
	cmd := exec.Command(fields[0], append(fields[1:], page)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", fields[0], err)
	}
	log.Debug().Int("pid", cmd.Process.Pid).Str("page", page).Msg("browser started")
	go cmd.Wait()
	return nil
}
