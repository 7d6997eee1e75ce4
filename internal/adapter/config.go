package adapter

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName     = "airwave"
	envFileName = "airwave.env"
)

// Config holds all application configuration
type Config struct {
	Directory DirectoryConfig `mapstructure:"directory"`
	Player    PlayerConfig    `mapstructure:"player"`
	Storage   StorageConfig   `mapstructure:"storage"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DirectoryConfig holds station directory configuration
type DirectoryConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PageSize     int           `mapstructure:"page_size"`
	ListCacheTTL time.Duration `mapstructure:"list_cache_ttl"` // countries/languages
}

// PlayerConfig holds audio player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // empty: auto-detect mpv
	Args    []string `mapstructure:"args"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	WideThreshold int `mapstructure:"wide_threshold"` // columns
	VolumeStep    int `mapstructure:"volume_step"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Directory: DirectoryConfig{
			URL:          "https://de1.api.radio-browser.info",
			Timeout:      15 * time.Second,
			PageSize:     10,
			ListCacheTTL: 24 * time.Hour,
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		Storage: StorageConfig{
			Dir: defaultDataPath(),
		},
		UI: UIConfig{
			WideThreshold: 110,
			VolumeStep:    5,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), appName+".log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// ConfigFile returns the path SaveConfig writes to
func ConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// setDefaults registers every key so environment overrides apply
// even when no config file exists
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("directory.url", cfg.Directory.URL)
	v.SetDefault("directory.timeout", cfg.Directory.Timeout)
	v.SetDefault("directory.page_size", cfg.Directory.PageSize)
	v.SetDefault("directory.list_cache_ttl", cfg.Directory.ListCacheTTL)

	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)

	v.SetDefault("storage.dir", cfg.Storage.Dir)

	v.SetDefault("ui.wide_threshold", cfg.UI.WideThreshold)
	v.SetDefault("ui.volume_step", cfg.UI.VolumeStep)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(defaultConfigPath(), ".")
}

// LoadConfigFrom loads config.yaml from the first of paths that has one,
// then applies AIRWAVE_* environment overrides (e.g. AIRWAVE_UI_WIDE_THRESHOLD).
// An airwave.env file next to the config contributes variables that are not
// already set in the environment.
func LoadConfigFrom(paths ...string) (*Config, error) {
	if err := loadEnvFile(paths...); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("AIRWAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Storage.Dir = ExpandHome(cfg.Storage.Dir)
	cfg.Logging.File = ExpandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(paths ...string) error {
	for _, p := range paths {
		file := filepath.Join(p, envFileName)
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("error reading %s: %w", file, err)
		}
		return nil
	}
	return nil
}

// Validate rejects settings the app cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Directory.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("directory.url must be an http(s) URL, got %q", c.Directory.URL)
	}
	if c.Directory.PageSize < 1 {
		return fmt.Errorf("directory.page_size must be positive, got %d", c.Directory.PageSize)
	}
	if c.UI.WideThreshold < 1 {
		return fmt.Errorf("ui.wide_threshold must be positive, got %d", c.UI.WideThreshold)
	}
	if c.UI.VolumeStep < 1 || c.UI.VolumeStep > 100 {
		return fmt.Errorf("ui.volume_step must be between 1 and 100, got %d", c.UI.VolumeStep)
	}
	return nil
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(defaultConfigPath(), cfg)
}

// SaveConfigTo writes cfg as config.yaml under dir
func SaveConfigTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v := viper.New()
	v.Set("directory.url", cfg.Directory.URL)
	v.Set("directory.timeout", cfg.Directory.Timeout.String())
	v.Set("directory.page_size", cfg.Directory.PageSize)
	v.Set("directory.list_cache_ttl", cfg.Directory.ListCacheTTL.String())

	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)

	v.Set("storage.dir", cfg.Storage.Dir)

	v.Set("ui.wide_threshold", cfg.UI.WideThreshold)
	v.Set("ui.volume_step", cfg.UI.VolumeStep)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
