package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/charcat/internal/catalog"
	"pkt.systems/charcat/internal/command"
	"pkt.systems/charcat/internal/imagecache"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	DataFile      string        `mapstructure:"data_file" yaml:"data_file"`
	ImageDir      string        `mapstructure:"image_dir" yaml:"image_dir"`
	API           APIConfig     `mapstructure:"api" yaml:"api"`
	Images        ImagesConfig  `mapstructure:"images" yaml:"images"`
	Console       ConsoleConfig `mapstructure:"console" yaml:"console"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// Color modes for console output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// APIConfig points at the remote character catalog.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ImagesConfig controls image downloads.
type ImagesConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Extension      string `mapstructure:"extension" yaml:"extension"`
}

// ConsoleConfig controls the interactive session.
type ConsoleConfig struct {
	HistoryFile string   `mapstructure:"history_file" yaml:"history_file"`
	Color       string   `mapstructure:"color" yaml:"color"`
	ExitTokens  []string `mapstructure:"exit_tokens" yaml:"exit_tokens"`
}

// DefaultConfig returns the default configuration. Data and images live in
// the working directory; history lives next to the config file.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		DataFile:      "characters.json",
		ImageDir:      "images",
		API: APIConfig{
			BaseURL:        catalog.DefaultBaseURL,
			TimeoutSeconds: int(catalog.DefaultTimeout.Seconds()),
		},
		Images: ImagesConfig{
			TimeoutSeconds: int(imagecache.DefaultTimeout.Seconds()),
			Extension:      imagecache.DefaultExtension,
		},
		Console: ConsoleConfig{
			HistoryFile: filepath.Join(home, ".charcat", "history"),
			Color:       ColorAuto,
			ExitTokens:  append([]string(nil), command.DefaultExitTokens...),
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".charcat", "config.yaml"), nil
}
