package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Sheets  SheetsConfig  `toml:"sheets"`
	Content ContentConfig `toml:"content"`
	Clips   ClipsConfig   `toml:"clips"`
	Logging LoggingConfig `toml:"logging"`
	Ngrok   NgrokConfig   `toml:"ngrok"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port        string `toml:"port"`
	Host        string `toml:"host"`
	StaticDir   string `toml:"static_dir"`
	EnableCORS  bool   `toml:"enable_cors"`
	ReadTimeout int    `toml:"read_timeout_seconds"`
}

// SheetsConfig describes where the tabular content comes from. BaseURL must
// contain a %s placeholder that each tab name is substituted into. When
// DataDir is set, tabs are read from <data_dir>/<tab>.csv instead of the
// network, which is the offline/development mode.
type SheetsConfig struct {
	BaseURL      string   `toml:"base_url"`
	MasterTab    string   `toml:"master_tab"`
	DateTabs     []string `toml:"date_tabs"`
	DefaultDate  string   `toml:"default_date"`
	FetchTimeout int      `toml:"fetch_timeout_seconds"`
	DataDir      string   `toml:"data_dir"`
	WatchDataDir bool     `toml:"watch_data_dir"`
}

// ContentConfig controls how tabs are reshaped into displayable content
type ContentConfig struct {
	TabPrefix              string  `toml:"tab_prefix"`
	TitleLabel             string  `toml:"title_label"`
	DescriptionPlaceholder string  `toml:"description_placeholder"`
	AudioPlaceholder       string  `toml:"audio_placeholder"`
	StationZoom            int     `toml:"station_zoom"`
	DefaultVolume          float64 `toml:"default_volume"`
}

// ClipsConfig contains locally hosted audio clip configuration
type ClipsConfig struct {
	Dir              string   `toml:"dir"`
	SupportedFormats []string `toml:"supported_formats"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	RequestLogging bool   `toml:"request_logging"`
}

// NgrokConfig contains ngrok tunnel configuration
type NgrokConfig struct {
	Enabled   bool   `toml:"enabled"`
	AuthToken string `toml:"auth_token"`
	Domain    string `toml:"domain"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Host:        "0.0.0.0",
			StaticDir:   "./static",
			EnableCORS:  true,
			ReadTimeout: 30,
		},
		Sheets: SheetsConfig{
			BaseURL:      "",
			MasterTab:    "Master",
			DateTabs:     []string{"Feb22", "Feb23", "Feb24", "Feb25", "Feb26"},
			DefaultDate:  "Feb22",
			FetchTimeout: 15,
			DataDir:      "",
			WatchDataDir: false,
		},
		Content: ContentConfig{
			TabPrefix:              "Feb",
			TitleLabel:             "February",
			DescriptionPlaceholder: "No description available.",
			AudioPlaceholder:       "#",
			StationZoom:            14,
			DefaultVolume:          0.5,
		},
		Clips: ClipsConfig{
			Dir:              "./clips",
			SupportedFormats: []string{".mp3", ".flac", ".wav"},
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			RequestLogging: true,
		},
		Ngrok: NgrokConfig{
			Enabled:   false,
			AuthToken: "",
			Domain:    "",
		},
	}
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create it with defaults
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
		return cfg, nil
	}

	// Load from file
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create or open file
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	header := `# Aircheck Configuration
# This file contains all configuration options for the aircheck radio map server.
# Edit the values below to customize your server settings.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	// Encode configuration to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	// Validate sheets config
	if c.Sheets.BaseURL == "" && c.Sheets.DataDir == "" {
		return fmt.Errorf("either sheets base_url or data_dir must be set")
	}
	if c.Sheets.BaseURL != "" && !strings.Contains(c.Sheets.BaseURL, "%s") {
		return fmt.Errorf("sheets base_url must contain a %%s placeholder for the tab name")
	}
	if c.Sheets.MasterTab == "" {
		return fmt.Errorf("sheets master tab cannot be empty")
	}
	if len(c.Sheets.DateTabs) == 0 {
		return fmt.Errorf("at least one date tab must be specified")
	}
	if !c.HasDateTab(c.Sheets.DefaultDate) {
		return fmt.Errorf("default date %q is not one of the configured date tabs", c.Sheets.DefaultDate)
	}
	if c.Sheets.FetchTimeout < 0 {
		return fmt.Errorf("sheets fetch timeout must be positive")
	}

	// Validate content config
	if c.Content.DefaultVolume < 0 || c.Content.DefaultVolume > 1 {
		return fmt.Errorf("default volume must be between 0 and 1")
	}
	if c.Content.StationZoom < 1 {
		return fmt.Errorf("station zoom must be at least 1")
	}

	// Validate clips config
	if len(c.Clips.SupportedFormats) == 0 {
		return fmt.Errorf("at least one supported clip format must be specified")
	}

	// Validate logging config
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// FetchTimeoutDuration returns the sheet fetch timeout as a duration
func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.Sheets.FetchTimeout) * time.Second
}

// HasDateTab checks if a tab identifier is one of the configured date tabs
func (c *Config) HasDateTab(tab string) bool {
	for _, t := range c.Sheets.DateTabs {
		if t == tab {
			return true
		}
	}
	return false
}

// AllTabs returns the master tab followed by every date tab, the order the
// loader fetches them in.
func (c *Config) AllTabs() []string {
	tabs := make([]string, 0, len(c.Sheets.DateTabs)+1)
	tabs = append(tabs, c.Sheets.MasterTab)
	tabs = append(tabs, c.Sheets.DateTabs...)
	return tabs
}

// IsClipFormatSupported checks if a clip file extension is supported
func (c *Config) IsClipFormatSupported(format string) bool {
	for _, supported := range c.Clips.SupportedFormats {
		if supported == format {
			return true
		}
	}
	return false
}
