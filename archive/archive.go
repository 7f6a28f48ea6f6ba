package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store owns the replay files produced during an evaluation.
type Store interface {
	// Reset removes leftovers of previous evaluations and creates an empty archive
	Reset() error
	// Archive moves a replay into the archive and returns its new path
	Archive(replayPath string) (string, error)
	// Dir is where archived replays and session reports end up
	Dir() string
}

type DirStore struct {
	workDir   string
	dir       string
	replayExt string
}

// NewDirStore archives replays from workDir into dir. A relative dir is
// resolved against workDir.
func NewDirStore(workDir, dir, replayExt string) *DirStore {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(workDir, dir)
	}
	return &DirStore{
		workDir:   workDir,
		dir:       dir,
		replayExt: replayExt,
	}
}

func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) Reset() error {
	removed, err := s.removeStrayReplays()
	if err != nil {
		return err
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove archive %s: %w", s.dir, err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive %s: %w", s.dir, err)
	}

	log.Debug().Int("stray_replays", removed).Str("archive", s.dir).Msg("archive reset")
	return nil
}

func (s *DirStore) Archive(replayPath string) (string, error) {
	target := filepath.Join(s.dir, filepath.Base(replayPath))
	if _, err := os.Stat(target); err == nil {
		// Same engine timestamp and seed twice, keep both
		target = filepath.Join(s.dir, uuid.NewString()+"-"+filepath.Base(replayPath))
	}

	if err := os.Rename(replayPath, target); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return "", fmt.Errorf("failed to archive replay %s: %w", replayPath, err)
		}
		// Archive on another device
		if err := copyThenRemove(replayPath, target); err != nil {
			return "", fmt.Errorf("failed to archive replay %s: %w", replayPath, err)
		}
	}
	return target, nil
}

// Purge removes the archive, stray replays and engine logs from the working directory.
func (s *DirStore) Purge() error {
	if _, err := s.removeStrayReplays(); err != nil {
		return err
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove archive %s: %w", s.dir, err)
	}
	logs, err := filepath.Glob(filepath.Join(s.workDir, "*.log"))
	if err != nil {
		return fmt.Errorf("failed to list logs: %w", err)
	}
	for _, l := range logs {
		if err := os.Remove(l); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove log %s: %w", l, err)
		}
	}
	return nil
}

func (s *DirStore) removeStrayReplays() (int, error) {
	entries, err := os.ReadDir(s.workDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", s.workDir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.replayExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.workDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove stray replay %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
