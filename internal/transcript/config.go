package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all threshold and output options.
type Config struct {
	// From config files (serialized)
	MinQV       float64 `json:"min_qv"`
	MinX        float64 `json:"min_x"`
	MaxX        float64 `json:"max_x"`
	MinY        float64 `json:"min_y"`
	MaxY        float64 `json:"max_y"`
	NucleusOnly bool    `json:"nucleus_only"`
	OutDir      string  `json:"out_dir"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string
	Project string
}

// DefaultConfig returns the default configuration. The 24000 micron
// bound covers the full Xenium slide.
func DefaultConfig() Config {
	return Config{
		MinQV:  20.0,
		MinX:   0.0,
		MaxX:   24000.0,
		MinY:   0.0,
		MaxY:   24000.0,
		OutDir: ".",
	}
}

// Bounds returns the filter thresholds from the config.
func (c Config) Bounds() Bounds {
	return Bounds{
		MinX:  c.MinX,
		MaxX:  c.MaxX,
		MinY:  c.MinY,
		MaxY:  c.MaxY,
		MinQV: c.MinQV,
	}
}

// Validate checks the config for internally inconsistent values.
func (c Config) Validate() error {
	if c.MinX > c.MaxX {
		return fmt.Errorf("%w: min-x %s > max-x %s", ErrBoundsInverted, formatCoord(c.MinX), formatCoord(c.MaxX))
	}

	if c.MinY > c.MaxY {
		return fmt.Errorf("%w: min-y %s > max-y %s", ErrBoundsInverted, formatCoord(c.MinY), formatCoord(c.MaxY))
	}

	if c.OutDir == "" {
		return ErrOutDirEmpty
	}

	return nil
}

// OutDirAbs resolves the output directory against the effective cwd.
func (c Config) OutDirAbs() string {
	if filepath.IsAbs(c.OutDir) {
		return c.OutDir
	}

	return filepath.Join(c.EffectiveCwd, c.OutDir)
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".xft.json"

// fileConfig mirrors Config with pointer fields so a config file can
// set any subset of options, including ones whose value is zero.
type fileConfig struct {
	MinQV       *float64 `json:"min_qv"`
	MinX        *float64 `json:"min_x"`
	MaxX        *float64 `json:"max_x"`
	MinY        *float64 `json:"min_y"`
	MaxY        *float64 `json:"max_y"`
	NucleusOnly *bool    `json:"nucleus_only"`
	OutDir      *string  `json:"out_dir"`
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest
// wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/xft/config.json or ~/.config/xft/config.json)
// 3. Project config (.xft.json in the working directory, or the -c path)
//
// Command-line flag overrides are applied by the caller on top of the
// returned Config, then validated with Validate.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()
	cfg.EffectiveCwd = workDir

	globalPath := globalConfigPath(input.Env)
	if globalPath != "" {
		fileCfg, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	projectPath, mustExist := projectConfigPath(workDir, input.ConfigPath)

	fileCfg, loaded, err := loadConfigFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
		cfg = mergeConfig(cfg, fileCfg)
	}

	return cfg, nil
}

// globalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/xft/config.json if set, otherwise
// ~/.config/xft/config.json. Empty if neither can be determined.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "xft", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "xft", "config.json")
	}

	return ""
}

func projectConfigPath(workDir, configPath string) (path string, mustExist bool) {
	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(workDir, configPath)
		}

		return configPath, true
	}

	return filepath.Join(workDir, ConfigFileName), false
}

// loadConfigFile loads a config file. If mustExist is false, missing
// files return a zero config without error.
func loadConfigFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}

			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

// parseConfig parses a HuJSON (JSON with comments and trailing commas)
// config document.
func parseConfig(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func mergeConfig(base Config, overlay fileConfig) Config {
	if overlay.MinQV != nil {
		base.MinQV = *overlay.MinQV
	}

	if overlay.MinX != nil {
		base.MinX = *overlay.MinX
	}

	if overlay.MaxX != nil {
		base.MaxX = *overlay.MaxX
	}

	if overlay.MinY != nil {
		base.MinY = *overlay.MinY
	}

	if overlay.MaxY != nil {
		base.MaxY = *overlay.MaxY
	}

	if overlay.NucleusOnly != nil {
		base.NucleusOnly = *overlay.NucleusOnly
	}

	if overlay.OutDir != nil {
		base.OutDir = *overlay.OutDir
	}

	return base
}
