package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel           int    `yaml:"log_level"`
	FileExtension      string `yaml:"file_extension"`
	MaxConcurrentTasks int    `yaml:"max_concurrent_tasks"`

	Backend  BackendConfig  `yaml:"backend"`
	Profile  ProfileConfig  `yaml:"profile"`
	Search   SearchConfig   `yaml:"search"`
	Metadata MetadataConfig `yaml:"metadata"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
}

// BackendConfig points at the dj-set-downloader instance that does the actual
// downloading and splitting.
type BackendConfig struct {
	BaseURL             string `yaml:"base_url"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	WaitTimeoutSeconds  int    `yaml:"wait_timeout_seconds"`
}

func (c BackendConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c BackendConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}

// ProfileConfig describes the persistent browser profile used to keep the
// scraping session authenticated.
type ProfileConfig struct {
	// Dir is the persistent profile directory; the refresh flow uses
	// Dir + "_tmp" as its scratch sibling.
	Dir string `yaml:"dir"`

	// BrowserCandidates is the ordered list of executables to probe for the
	// interactive refresh. Empty selects per-OS defaults.
	BrowserCandidates []string `yaml:"browser_candidates"`

	// TargetURL is where the operator authenticates; ConfirmURL is a neutral
	// page visited afterwards to confirm the session took.
	TargetURL  string `yaml:"target_url"`
	ConfirmURL string `yaml:"confirm_url"`
}

// SearchConfig holds the Google Custom Search credentials and result cache
// settings. The API key may come from the environment instead of the file.
type SearchConfig struct {
	GoogleAPIKey  string            `yaml:"google_api_key"`
	SearchEngines map[string]string `yaml:"search_engines"`
	CacheDir      string            `yaml:"cache_dir"`
	CacheTTLHours int               `yaml:"cache_ttl_hours"`
}

func (c SearchConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// MetadataConfig selects the model used to parse artist/year out of titles.
type MetadataConfig struct {
	Model string `yaml:"model"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	OutputDir string `yaml:"output_dir"`

	// GCS options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Load reads the YAML config at path. A missing file is not an error: the
// defaults are returned. A file that exists but does not parse is an error.
func Load(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	config.setDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

// setDefaults fills every field left unset by the file.
func (c *Config) setDefaults() {
	if c.FileExtension == "" {
		c.FileExtension = "mp3"
	}
	if c.MaxConcurrentTasks <= 0 {
		c.MaxConcurrentTasks = 4
	}

	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:8000"
	}
	if c.Backend.PollIntervalSeconds <= 0 {
		c.Backend.PollIntervalSeconds = 2
	}
	if c.Backend.WaitTimeoutSeconds <= 0 {
		c.Backend.WaitTimeoutSeconds = 3600
	}

	if c.Profile.Dir == "" {
		c.Profile.Dir = "browser_cache"
	}
	if c.Profile.TargetURL == "" {
		c.Profile.TargetURL = "https://www.1001tracklists.com"
	}
	if c.Profile.ConfirmURL == "" {
		c.Profile.ConfirmURL = "https://www.google.com"
	}

	if c.Search.CacheTTLHours <= 0 {
		c.Search.CacheTTLHours = 24
	}

	if c.Metadata.Model == "" {
		c.Metadata.Model = "gpt-4.1-mini"
	}

	if c.Server.Port == "" {
		c.Server.Port = "8081"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "output"
	}
}

// applyEnvOverrides lets the environment win over the file for secrets, so
// API keys never have to live in a checked-in YAML.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Search.GoogleAPIKey = key
	}

	engineEnv := map[string]string{
		"1001tracklists": "GOOGLE_SEARCH_ID_1001TRACKLISTS",
		"soundcloud":     "GOOGLE_SEARCH_ID_SOUNDCLOUD",
	}
	for site, env := range engineEnv {
		if cx := os.Getenv(env); cx != "" {
			if c.Search.SearchEngines == nil {
				c.Search.SearchEngines = make(map[string]string)
			}
			c.Search.SearchEngines[site] = cx
		}
	}
}
