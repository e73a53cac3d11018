package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Paths     PathsConfig     `yaml:"paths"`
	Downloads DownloadsConfig `yaml:"downloads"`
	Updates   UpdatesConfig   `yaml:"updates"`
	path      string
}

type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type LoggingConfig struct {
	LogPath           string `yaml:"log_path"`
	EnableFileLogging bool   `yaml:"enable_file_logging"`
}

type PathsConfig struct {
	DownloadPath      string `yaml:"download_path"`
	DownloaderPath    string `yaml:"downloader_path"`
	FfmpegPath        string `yaml:"ffmpeg_path"`
	FfprobePath       string `yaml:"ffprobe_path"`
	LocalDatabasePath string `yaml:"local_database_path"`
}

type DownloadsConfig struct {
	// simultaneous fetch subprocesses per job
	Concurrency int `yaml:"concurrency"`
	// --concurrent-fragments passed to each fetch
	FragmentConcurrency int  `yaml:"fragment_concurrency"`
	AutoArchive         bool `yaml:"auto_archive"`
}

type UpdatesConfig struct {
	ReleaseFeedURL string        `yaml:"release_feed_url"`
	CheckInterval  time.Duration `yaml:"check_interval"`
}

var (
	instance     *Config
	instanceOnce sync.Once
)

func Instance() *Config {
	if instance == nil {
		instanceOnce.Do(func() {
			instance = &Config{}
			instance.Downloads.Concurrency = 3
			instance.Downloads.FragmentConcurrency = 5
			instance.Updates.CheckInterval = time.Hour * 24 * 7
		})
	}
	return instance
}

// SetPath records where the config file lives (or should live).
func (c *Config) SetPath(p string) { c.path = p }

// Path of the directory containing the config file
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// Absolute path of the config file
func (c *Config) Path() string { return c.path }

// Write persists the current configuration as YAML, used to bootstrap
// a config file on first run.
func (c *Config) Write() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}
