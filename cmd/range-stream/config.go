package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	rangestream "github.com/always-cache/range-stream"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration, read from a YAML or TOML file.
// Flags given on the command line take precedence.
type Config struct {
	Port         int    `yaml:"port" toml:"port"`
	File         string `yaml:"file" toml:"file"`
	Index        string `yaml:"index" toml:"index"`
	ContentType  string `yaml:"contentType" toml:"contentType"`
	MaxChunk     int64  `yaml:"maxChunk" toml:"maxChunk"`
	BufferSize   int    `yaml:"bufferSize" toml:"bufferSize"`
	WriteTimeout string `yaml:"writeTimeout" toml:"writeTimeout"`
	WatchPath    string `yaml:"watchPath" toml:"watchPath"`
	IndexPath    string `yaml:"indexPath" toml:"indexPath"`
	DB           string `yaml:"db" toml:"db"`
}

func defaultConfig() Config {
	return Config{
		Port:         8181,
		File:         "video.mp4",
		ContentType:  rangestream.DefaultContentType,
		MaxChunk:     rangestream.DefaultMaxChunkSize,
		BufferSize:   rangestream.DefaultBufferSize,
		WriteTimeout: "30s",
		WatchPath:    "/watch",
		IndexPath:    "/index",
		DB:           "memory",
	}
}

// getConfig reads filename into config. Keys missing from the file keep their value.
func getConfig(filename string, config *Config) error {
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(configBytes))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil {
			return errors.Wrap(err, "failed to decode YAML config")
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(configBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(config); err != nil {
			return errors.Wrap(err, "failed to decode TOML config")
		}
	default:
		return errors.Errorf("unsupported config file type %q", ext)
	}
	return nil
}

// resolveConfig merges the defaults, the config file and the flags set on cmd.
func resolveConfig(cmd *cobra.Command, opts *options) (Config, error) {
	config := defaultConfig()
	if opts.configFile != "" {
		if err := getConfig(opts.configFile, &config); err != nil {
			return config, errors.Wrapf(err, "config %s", opts.configFile)
		}
	}

	flags := cmd.Flags()
	override := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	override("port", func() { config.Port = opts.Port })
	override("file", func() { config.File = opts.File })
	override("index", func() { config.Index = opts.Index })
	override("content-type", func() { config.ContentType = opts.ContentType })
	override("max-chunk", func() { config.MaxChunk = opts.MaxChunk })
	override("buffer-size", func() { config.BufferSize = opts.BufferSize })
	override("write-timeout", func() { config.WriteTimeout = opts.WriteTimeout })
	override("watch-path", func() { config.WatchPath = opts.WatchPath })
	override("index-path", func() { config.IndexPath = opts.IndexPath })
	override("db", func() { config.DB = opts.DB })

	if err := config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Port)
	}
	if c.File == "" {
		return errors.New("no media file given")
	}
	if c.MaxChunk <= 0 {
		return errors.Errorf("max chunk must be positive, got %d", c.MaxChunk)
	}
	if c.BufferSize <= 0 {
		return errors.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if _, err := c.writeTimeout(); err != nil {
		return err
	}
	for _, p := range []string{c.WatchPath, c.IndexPath} {
		if !strings.HasPrefix(p, "/") {
			return errors.Errorf("path %q must start with /", p)
		}
	}
	if c.WatchPath == c.IndexPath {
		return errors.New("watch and index paths must differ")
	}
	return nil
}

func (c Config) writeTimeout() (time.Duration, error) {
	if c.WriteTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.WriteTimeout)
	if err != nil {
		return 0, errors.Wrap(err, "invalid write timeout")
	}
	return d, nil
}
