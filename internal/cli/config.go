package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"nexus-pusher/internal/relay"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "NEXUS_PUSHER_"

// Settings are the relay defaults that can come from the config file, the
// environment or flags. Zero values mean "not set" so sources can be layered.
type Settings struct {
	Tool     string       `env:"TOOL" yaml:"tool,omitempty"`
	Registry string       `env:"REGISTRY" yaml:"registry,omitempty"`
	Username string       `env:"USERNAME" yaml:"username,omitempty"`
	Password relay.Secret `env:"PASSWORD" yaml:"password,omitempty"`

	StatusTimeout  time.Duration `env:"STATUS_TIMEOUT" yaml:"status_timeout,omitempty"`
	PullTimeout    time.Duration `env:"PULL_TIMEOUT" yaml:"pull_timeout,omitempty"`
	PushTimeout    time.Duration `env:"PUSH_TIMEOUT" yaml:"push_timeout,omitempty"`
	LoginTimeout   time.Duration `env:"LOGIN_TIMEOUT" yaml:"login_timeout,omitempty"`
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT" yaml:"command_timeout,omitempty"`
}

// CLIConfig holds configuration read from the environment at startup.
type CLIConfig struct {
	// ConfigPath overrides the config file location.
	ConfigPath string `env:"CONFIG"`
	// LogFile, when set, enables the rotating JSON log file.
	LogFile string `env:"LOG_FILE"`

	Settings Settings
}

type envRoot struct {
	CLI CLIConfig `env:",prefix=NEXUS_PUSHER_"`
}

// DefaultCLIConfig is populated by LoadCLIConfig before any command runs.
var DefaultCLIConfig = &CLIConfig{}

// LoadCLIConfig reads NEXUS_PUSHER_* variables through lookuper, or the
// process environment when lookuper is nil.
func LoadCLIConfig(ctx context.Context, lookuper envconfig.Lookuper) (*CLIConfig, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	var root envRoot
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &root, Lookuper: lookuper}); err != nil {
		return nil, wrapWithSentinel(ErrLoadEnvConfigFailed, err, fmt.Sprintf("failed to load configuration from environment: %v", err))
	}
	return &root.CLI, nil
}

// userHomeDir is a test seam for os.UserHomeDir.
var userHomeDir = os.UserHomeDir

func configPath() (string, error) {
	if DefaultCLIConfig.ConfigPath != "" {
		return DefaultCLIConfig.ConfigPath, nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", wrapWithSentinel(ErrGetHomeDirectoryFailed, err, fmt.Sprintf("failed to get home directory: %v", err))
	}
	return filepath.Join(home, ".nexus-pusher", "config.yaml"), nil
}

// loadFileSettings returns the settings stored in the config file. A missing
// file yields zero settings.
func loadFileSettings() (Settings, error) {
	path, err := configPath()
	if err != nil {
		return Settings{}, err
	}
	// #nosec G304 -- path is the user's own config file.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, wrapWithSentinelAndContext(ErrReadConfigFailed, err,
			fmt.Sprintf("failed to read config file: %v", err), map[string]any{"path": path})
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, wrapWithSentinelAndContext(ErrUnmarshalConfigFailed, err,
			fmt.Sprintf("failed to unmarshal config file %s: %v", path, err), map[string]any{"path": path})
	}
	return s, nil
}

// resolveConfig returns the effective settings using precedence:
// CLI flags > environment variables (NEXUS_PUSHER_*) > config file > defaults.
func resolveConfig(flags Settings) (Settings, error) {
	file, err := loadFileSettings()
	if err != nil {
		return Settings{}, err
	}
	s := file.overlay(DefaultCLIConfig.Settings).overlay(flags)
	return s.withDefaults(), nil
}

// overlay returns s with every field set in o replacing its counterpart.
func (s Settings) overlay(o Settings) Settings {
	str := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	str(&s.Tool, o.Tool)
	str(&s.Registry, o.Registry)
	str(&s.Username, o.Username)
	if o.Password != "" {
		s.Password = o.Password
	}
	dur(&s.StatusTimeout, o.StatusTimeout)
	dur(&s.PullTimeout, o.PullTimeout)
	dur(&s.PushTimeout, o.PushTimeout)
	dur(&s.LoginTimeout, o.LoginTimeout)
	dur(&s.CommandTimeout, o.CommandTimeout)
	return s
}

func (s Settings) withDefaults() Settings {
	def := Settings{Tool: relay.DefaultTool}
	t := relay.DefaultTimeouts()
	def.StatusTimeout, def.PullTimeout, def.PushTimeout = t.Status, t.Pull, t.Push
	def.LoginTimeout, def.CommandTimeout = t.Login, t.Command
	return def.overlay(s)
}

// PipelineOptions converts the settings into relay options.
func (s Settings) PipelineOptions() relay.Options {
	return relay.Options{
		Tool: s.Tool,
		Timeouts: relay.Timeouts{
			Status:  s.StatusTimeout,
			Pull:    s.PullTimeout,
			Push:    s.PushTimeout,
			Login:   s.LoginTimeout,
			Command: s.CommandTimeout,
		},
	}
}
