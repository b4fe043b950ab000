package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dargueta/myfs/disks"
	"github.com/dargueta/myfs/file_systems/myfsv3"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "MYFS"
	appName      = "myfs"
)

// Config holds the settings every command needs. Values come from, in
// increasing order of precedence: [DefaultConfig], the YAML config file,
// MYFS_* environment variables, and command-line flags.
//
// A preset replaces all three geometry settings at the point it's given, so a
// preset from the environment overrides a block count from the config file, but
// a --blocks flag overrides the preset.
type Config struct {
	Image         string `envconfig:"IMAGE"           yaml:"image"`
	Preset        string `envconfig:"PRESET"          yaml:"preset"`
	InodeCount    uint   `envconfig:"INODE_COUNT"     yaml:"inodeCount"`
	BlockCount    uint   `envconfig:"BLOCK_COUNT"     yaml:"blockCount"`
	BytesPerBlock uint   `envconfig:"BYTES_PER_BLOCK" yaml:"bytesPerBlock"`
	LogLevel      string `envconfig:"LOG_LEVEL"       yaml:"logLevel"`
	LogFormat     string `envconfig:"LOG_FORMAT"      yaml:"logFormat"`
}

func DefaultConfig() Config {
	return Config{
		Image:         appName + ".img",
		InodeCount:    myfsv3.DefaultGeometry.InodeCount,
		BlockCount:    myfsv3.DefaultGeometry.BlockCount,
		BytesPerBlock: myfsv3.DefaultGeometry.BytesPerBlock,
		LogLevel:      "warning",
		LogFormat:     "text",
	}
}

// defaultConfigFile returns the config file to use when none was given on the
// command line. A missing default file is not an error.
func defaultConfigFile() string {
	configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE")
	if configFile != "" {
		return configFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName+".yaml")
}

// LoadConfig builds the configuration from the defaults, the config file, and
// the environment. If `configFile` is empty the default location is tried, and
// it's fine if nothing's there.
func LoadConfig(configFile string) (Config, error) {
	c := DefaultConfig()

	mustExist := configFile != ""
	if !mustExist {
		configFile = defaultConfigFile()
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if mustExist || !os.IsNotExist(err) {
				return c, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return c, fmt.Errorf("unmarshaling config file %q: %w", configFile, err)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return c, fmt.Errorf("parsing environment variables: %w", err)
	}
	if err := c.ApplyPreset(c.Preset); err != nil {
		return c, err
	}
	return c, nil
}

// ApplyPreset overwrites the geometry with the predefined disk geometry named
// `slug`. An empty slug does nothing.
func (c *Config) ApplyPreset(slug string) error {
	if slug == "" {
		return nil
	}

	disk, err := disks.GetPredefinedDiskGeometry(slug)
	if err != nil {
		return err
	}
	c.Preset = slug
	c.InodeCount = disk.InodeCount
	c.BlockCount = disk.BlockCount
	c.BytesPerBlock = disk.BytesPerBlock
	return nil
}

// Geometry returns the volume geometry the config describes.
func (c *Config) Geometry() myfsv3.Geometry {
	return myfsv3.Geometry{
		InodeCount:    c.InodeCount,
		BlockCount:    c.BlockCount,
		BytesPerBlock: c.BytesPerBlock,
	}
}

func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf(
			"missing required config `image` (env: `%s_IMAGE`, flag: --image)",
			envVarPrefix,
		)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: expected `text` or `json`", c.LogFormat)
	}

	geometry := c.Geometry()
	if err := geometry.Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}
	return nil
}

// NewLogger creates a logger writing to `output` at the configured level and
// format. The config must have been validated first.
func (c *Config) NewLogger(output io.Writer) *log.Logger {
	logger := log.New()
	logger.SetOutput(output)

	level, err := log.ParseLevel(c.LogLevel)
	if err == nil {
		logger.SetLevel(level)
	}

	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	}
	return logger
}
