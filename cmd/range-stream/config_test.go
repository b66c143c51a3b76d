package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	opts := &options{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return resolveConfig(cmd, opts)
}

func TestDefaults(t *testing.T) {
	config, err := parse(t)
	if err != nil {
		t.Fatal(err)
	}
	if config != defaultConfig() {
		t.Fatalf("Config is %+v", config)
	}
	if config.Port != 8181 || config.MaxChunk != 512_000 || config.DB != "memory" {
		t.Fatalf("Unexpected defaults %+v", config)
	}
}

func TestYAMLConfig(t *testing.T) {
	path := writeConfig(t, "range-stream.yaml", `
port: 9000
file: movie.mp4
maxChunk: 1024
writeTimeout: 5s
`)
	config, err := parse(t, "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != 9000 || config.File != "movie.mp4" || config.MaxChunk != 1024 {
		t.Fatalf("Config is %+v", config)
	}
	// keys missing from the file keep their defaults
	if config.WatchPath != "/watch" || config.BufferSize != defaultConfig().BufferSize {
		t.Fatalf("Config is %+v", config)
	}
	if d, _ := config.writeTimeout(); d != 5*time.Second {
		t.Fatalf("Write timeout is %v", d)
	}
}

func TestTOMLConfig(t *testing.T) {
	path := writeConfig(t, "range-stream.toml", `
port = 9001
contentType = "video/webm"
db = ""
`)
	config, err := parse(t, "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != 9001 || config.ContentType != "video/webm" || config.DB != "" {
		t.Fatalf("Config is %+v", config)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, "range-stream.yml", "port: 9000\nfile: movie.mp4\n")
	config, err := parse(t, "--config", path, "--port", "9100", "--db", "journal.db")
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != 9100 || config.File != "movie.mp4" || config.DB != "journal.db" {
		t.Fatalf("Config is %+v", config)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{"unknown extension", func(t *testing.T) []string {
			return []string{"--config", writeConfig(t, "config.json", "{}")}
		}},
		{"unknown key", func(t *testing.T) []string {
			return []string{"--config", writeConfig(t, "config.yaml", "origin: x\n")}
		}},
		{"missing file", func(t *testing.T) []string {
			return []string{"--config", filepath.Join(t.TempDir(), "missing.toml")}
		}},
		{"bad port", func(t *testing.T) []string { return []string{"--port", "0"} }},
		{"bad chunk", func(t *testing.T) []string { return []string{"--max-chunk", "-1"} }},
		{"bad timeout", func(t *testing.T) []string { return []string{"--write-timeout", "soon"} }},
		{"relative path", func(t *testing.T) []string { return []string{"--watch-path", "watch"} }},
		{"same paths", func(t *testing.T) []string { return []string{"--index-path", "/watch"} }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if config, err := parse(t, test.args(t)...); err == nil {
				t.Fatalf("No error for config %+v", config)
			}
		})
	}
}
