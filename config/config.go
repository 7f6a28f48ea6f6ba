package config

import (
	"fmt"
	"time"

	"halite/meta"

	"github.com/caarlos0/env/v11"
)

// Config holds the evaluator settings read from HALITE_* environment variables.
type Config struct {
	Engine        string        `env:"ENGINE"`
	EngineSource  string        `env:"ENGINE_SOURCE" envDefault:"environment"`
	WorkDir       string        `env:"WORK_DIR" envDefault:"."`
	ArchiveDir    string        `env:"ARCHIVE_DIR"`
	VisualizerDir string        `env:"VISUALIZER_DIR" envDefault:"visualizer"`
	MatchTimeout  time.Duration `env:"MATCH_TIMEOUT"`
	Report        bool          `env:"REPORT" envDefault:"true"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"console"`
	OTLPEndpoint  string        `env:"OTLP_ENDPOINT"`
}

func Default() Config {
	return Config{
		Engine:        meta.ENGINE,
		EngineSource:  "environment",
		WorkDir:       ".",
		ArchiveDir:    meta.ARCHIVE_DIR,
		VisualizerDir: "visualizer",
		MatchTimeout:  meta.MATCH_TIMEOUT,
		Report:        true,
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// Load starts from the defaults and applies the environment on top.
func Load() (Config, error) {
	cfg := Default()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "HALITE_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
