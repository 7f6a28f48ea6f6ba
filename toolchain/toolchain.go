// Package toolchain builds the engine and the bot under evaluation with make.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

var ErrNoEngine = errors.New("failed to produce the engine executable")

type Option func(t *Toolchain)

// WithMake replaces the make executable.
func WithMake(path string) Option {
	return func(t *Toolchain) {
		if path != "" {
			t.make = path
		}
	}
}

type Toolchain struct {
	workDir string
	make    string
}

func New(workDir string, options ...Option) *Toolchain {
	t := &Toolchain{workDir: workDir, make: "make"}
	for _, option := range options {
		option(t)
	}
	return t
}

// EnsureEngine compiles the engine in sourceDir and copies it to enginePath,
// unless enginePath already exists.
func (t *Toolchain) EnsureEngine(ctx context.Context, enginePath, sourceDir string) error {
	enginePath = t.resolve(enginePath)
	if fileExists(enginePath) {
		return nil
	}

	log.Info().Str("source", sourceDir).Msg("compiling game engine...")
	sourceDir = t.resolve(sourceDir)
	if err := t.run(ctx, sourceDir); err != nil {
		log.Error().Err(err).Msg("engine build failed")
	}

	built := filepath.Join(sourceDir, filepath.Base(enginePath))
	if !fileExists(built) {
		return fmt.Errorf("%w: %s not found, corrupt archive?", ErrNoEngine, built)
	}
	if err := copyFile(built, enginePath, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrNoEngine, err)
	}
	return nil
}

// BuildBot runs make in the working directory when it has a makefile.
func (t *Toolchain) BuildBot(ctx context.Context) error {
	if !t.hasMakefile() {
		return nil
	}
	log.Info().Msg("compiling player sources...")
	if err := t.run(ctx, t.workDir); err != nil {
		return fmt.Errorf("failed to build bot: %w", err)
	}
	return nil
}

// Clean runs make clean in the working directory when it has a makefile.
func (t *Toolchain) Clean(ctx context.Context) error {
	if !t.hasMakefile() {
		return nil
	}
	if err := t.run(ctx, t.workDir, "clean"); err != nil {
		return fmt.Errorf("failed to clean bot: %w", err)
	}
	return nil
}

func (t *Toolchain) run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, t.make, args...)
	cmd.Dir = dir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v in %s: %w\n%s", t.make, args, dir, err, output.String())
	}
	log.Debug().Str("dir", dir).Strs("args", args).Msg(output.String())
	return nil
}

func (t *Toolchain) hasMakefile() bool {
	return fileExists(filepath.Join(t.workDir, "makefile")) || fileExists(filepath.Join(t.workDir, "Makefile"))
}

func (t *Toolchain) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(t.workDir, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
