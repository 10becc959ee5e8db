/*
PURPOSE:
  Adapter settings: where the registry documents and templates live, the
  generated file names, and logging/side-output switches.

REQUIREMENTS:
  User-specified:
  - Defaults work for the standard RORB model folder layout.
  - Settings can come from a file, the environment, or flags.

  Implementation-discovered:
  - FEWS General Adapter passes only the run info path, so everything else
    must be resolvable without flags.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: koanf (defaults, YAML file, env, posflag)

ERROR HANDLING:
  - Returns an error for an unreadable file, an undecodable value, or an
    invalid setting.

USAGE:
  cfg, err := config.Load("", cmd.Flags())

RELATED FILES:
  - internal/cli/root.go (flag definitions)
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment overrides: RORBFEWS_LOG_LEVEL -> log_level,
// RORBFEWS_FILES__PAR -> files.par.
const EnvPrefix = "RORBFEWS_"

// DefaultFiles are searched in the working directory when no file is given.
var DefaultFiles = []string{"rorb-fews.yaml", "rorb-fews.yml"}

// Config is the complete adapter configuration.
type Config struct {
	// Registry documents. Relative paths resolve against the config file's
	// folder, or the working directory when defaults are used.
	Catalog     string `koanf:"catalog"`
	Conventions string `koanf:"conventions"`
	Mapping     string `koanf:"mapping"`
	// TemplateDir holds Template_* files; empty means "templates" inside
	// the model folder.
	TemplateDir string `koanf:"template_dir"`

	Files FileNames `koanf:"files"`

	// StateIndex selects the inputTimeSeriesFile holding the initial state;
	// the others are series sources.
	StateIndex int `koanf:"state_index"`

	// Exe is the RORB executable when the run info has no rorb_exe property.
	Exe        string        `koanf:"exe"`
	ExeTimeout time.Duration `koanf:"exe_timeout"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	// LogFile is appended to, relative to the model folder.
	LogFile string `koanf:"log_file"`

	CSV      bool `koanf:"csv"`
	Manifest bool `koanf:"manifest"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// FileNames are the generated and consumed files inside the model folder.
type FileNames struct {
	Par          string `koanf:"par"`
	Storm        string `koanf:"storm"`
	Catchment    string `koanf:"catchment"`
	Snow         string `koanf:"snow"`
	MultiGateOps string `koanf:"multi_gateops"`
	Matching     string `koanf:"matching"`
	Report       string `koanf:"report"`
	LaunchScript string `koanf:"launch_script"`
	ManifestFile string `koanf:"manifest"`
	CSVFile      string `koanf:"csv"`
}

// Defaults returns the built-in settings as koanf keys.
func Defaults() map[string]any {
	return map[string]any{
		"catalog":             "rorb_config.yaml",
		"conventions":         "fews_config.yaml",
		"mapping":             "file_mapping.yaml",
		"template_dir":        "",
		"files.par":           "RORB_CMD.par",
		"files.storm":         "Rainfall.stm",
		"files.catchment":     "catchment.catg",
		"files.snow":          "Snowmelt.dat",
		"files.multi_gateops": "multiGateOps.dat",
		"files.matching":      "",
		"files.report":        "Rainfall.out",
		"files.launch_script": "RUN_RORB.bat",
		"files.manifest":      "rorb-fews-manifest.jsonl",
		"files.csv":           "rorb-fews-records.csv",
		"state_index":         0,
		"exe":                 "rorb_cmd.exe",
		"exe_timeout":         "30m",
		"log_level":           "info",
		"log_format":          "text",
		"log_file":            "",
		"csv":                 false,
		"manifest":            false,
	}
}

// DefaultConfig returns the configuration with no file, env or flags.
func DefaultConfig() *Config {
	cfg, err := Load("", nil)
	if err != nil {
		panic(fmt.Sprintf("built-in defaults do not load: %v", err))
	}
	return cfg
}

// Load layers defaults, the config file, RORBFEWS_* environment variables
// and explicitly set flags, in increasing precedence. An empty path
// searches DefaultFiles; finding none is not an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path = findConfigFile(path)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path

	base := ""
	if path != "" {
		base = filepath.Dir(path)
	}
	cfg.Catalog = resolve(cfg.Catalog, base)
	cfg.Conventions = resolve(cfg.Conventions, base)
	cfg.Mapping = resolve(cfg.Mapping, base)
	cfg.TemplateDir = resolve(cfg.TemplateDir, base)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys maps CLI flag names to config keys. Flags not listed are
// command options, not settings.
var flagKeys = map[string]string{
	"catalog":      "catalog",
	"conventions":  "conventions",
	"mapping":      "mapping",
	"template-dir": "template_dir",
	"state-index":  "state_index",
	"exe":          "exe",
	"exe-timeout":  "exe_timeout",
	"log-level":    "log_level",
	"log-format":   "log_format",
	"log-file":     "log_file",
	"csv":          "csv",
	"manifest":     "manifest",
	"report":       "files.report",
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func resolve(path, base string) string {
	if path == "" || base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Catalog == "" || c.Conventions == "" || c.Mapping == "" {
		return fmt.Errorf("catalog, conventions and mapping paths are required")
	}
	if c.StateIndex < 0 {
		return fmt.Errorf("state_index must not be negative, got %d", c.StateIndex)
	}
	if c.ExeTimeout <= 0 {
		return fmt.Errorf("exe_timeout must be positive, got %s", c.ExeTimeout)
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("log_level %q is not one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("log_format %q is not one of %s", c.LogFormat, strings.Join(logFormats, ", "))
	}
	required := map[string]string{
		"files.par":           c.Files.Par,
		"files.storm":         c.Files.Storm,
		"files.catchment":     c.Files.Catchment,
		"files.multi_gateops": c.Files.MultiGateOps,
		"files.report":        c.Files.Report,
		"files.launch_script": c.Files.LaunchScript,
	}
	for key, v := range required {
		if v == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	return nil
}

// TemplatesIn returns the template folder for a model folder.
func (c *Config) TemplatesIn(modelDir string) string {
	if c.TemplateDir != "" {
		return c.TemplateDir
	}
	return filepath.Join(modelDir, "templates")
}
