package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxpack/internal/logging"
)

const (
	// ProjectFile is the optional per-project override file, read from
	// the working-directory root.
	ProjectFile = ".ctxpack.yml"

	// envPrefix namespaces environment overrides (CTXPACK_HEADROOM, ...).
	envPrefix = "CTXPACK_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load resolves configuration for a project root.
//
// Defaults are applied first, then the project file (if present), then
// CTXPACK_* environment variables. Unknown keys in the project file are
// ignored. An unreadable or malformed project file never fails the run:
// it is reported on the diagnostic channel and the layer is skipped.
// CLI flag overrides are applied by the caller afterwards, so flags
// always win.
func Load(root string, log *logging.Logger) (*Config, error) {
	if log == nil {
		log = logging.Nop()
	}
	k := koanf.New(".")

	path := filepath.Join(root, ProjectFile)
	if content, err := readCapped(path); err == nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			log.Warn("IGNORED (unusable config file)",
				zap.String("path", ProjectFile), zap.Error(err))
			k = koanf.New(".")
		}
	} else if !os.IsNotExist(err) {
		log.Warn("IGNORED (unusable config file)",
			zap.String("path", ProjectFile), zap.Error(err))
	}

	// Environment overrides: CTXPACK_FILE_CAP_BYTES -> file_cap_bytes.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Excludes) == 0 {
		cfg.Excludes = Default().Excludes
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readCapped reads a config file, rejecting anything over the size limit.
func readCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxConfigFileSize)
	}
	return io.ReadAll(f)
}
