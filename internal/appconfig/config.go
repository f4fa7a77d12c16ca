package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/ahalaj/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string        `mapstructure:"state_dir" yaml:"state_dir"`
	Storage       StorageConfig `mapstructure:"storage" yaml:"storage"`
	Lists         ListsConfig   `mapstructure:"lists" yaml:"lists"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`
	SSH           SSHConfig     `mapstructure:"ssh" yaml:"ssh"`
	TUI           TUIConfig     `mapstructure:"tui" yaml:"tui"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// StorageConfig selects where the lists are kept.
type StorageConfig struct {
	// Backend is one of file, sqlite or memory.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path defaults to state_dir for the file backend and
	// state_dir/ahalaj.db for sqlite.
	Path string `mapstructure:"path" yaml:"path"`
	Key  string `mapstructure:"key" yaml:"key"`
}

// ListsConfig controls list defaults.
type ListsConfig struct {
	Title            string `mapstructure:"title" yaml:"title"`
	NamePrefix       string `mapstructure:"name_prefix" yaml:"name_prefix"`
	DefaultPickCount int    `mapstructure:"default_pick_count" yaml:"default_pick_count"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
}

// SSHConfig configures the SSH shell.
type SSHConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr        string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath string `mapstructure:"host_key_path" yaml:"host_key_path"`
}

// TUIConfig configures the terminal UI.
type TUIConfig struct {
	// LogFile receives logs while the TUI owns the terminal. Empty discards them.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".ahalaj", "state"),
		Storage: StorageConfig{
			Backend: "file",
			Path:    "",
			Key:     schema.DefaultStoreKey,
		},
		Lists: ListsConfig{
			Title:            schema.DefaultTitle,
			NamePrefix:       schema.DefaultNamePrefix,
			DefaultPickCount: schema.DefaultPickCount,
		},
		HTTP: HTTPConfig{
			Addr:     "127.0.0.1:27490",
			BaseURL:  "",
			BasePath: "",
		},
		SSH: SSHConfig{
			Enabled:     false,
			Addr:        "127.0.0.1:27422",
			HostKeyPath: filepath.Join(home, ".ahalaj", "ssh_host_key"),
		},
		TUI: TUIConfig{
			LogFile: "",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ahalaj", "config.yaml"), nil
}

// ServiceConfig maps the list settings to the core service config.
func (c Config) ServiceConfig() schema.ServiceConfig {
	return schema.ServiceConfig{
		StoreKey:         c.Storage.Key,
		Title:            c.Lists.Title,
		NamePrefix:       c.Lists.NamePrefix,
		DefaultPickCount: c.Lists.DefaultPickCount,
	}
}

// StoragePath returns the configured store location, falling back to the
// state directory.
func (c Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return c.StateDir
}
