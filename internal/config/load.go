package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loaded is the outcome of Load.
type Loaded struct {
	Config Config
	Path   string
	// Created is true when the file was missing or corrupt and the default
	// was written in its place.
	Created bool
	// PersistErr is set when the synthesized default could not be written.
	PersistErr error
}

// Load reads the config at path. Keys missing from the file take the values
// of KeyDefaults. A missing, empty or syntactically broken file is replaced by
// Default(), which is persisted to path. Any other read or decode problem, such
// as a value of the wrong type, is returned and the file is left untouched, as
// is a file that decodes but fails validation.
func Load(path string) (Loaded, error) {
	out := Loaded{Path: path}

	cfg, err := Read(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) || IsCorrupt(err):
		cfg = Default()
		out.Created = true
		out.PersistErr = Save(path, cfg)
	default:
		return out, fmt.Errorf("config %s: %w", path, err)
	}

	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return out, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Monitor.LogFilePath = resolveLogPath(path, cfg.Monitor.LogFilePath)

	out.Config = cfg
	return out, nil
}

// KeyDefaults holds the value of every key a config file may leave out.
// It differs from Default, which is the file written when none exists.
func KeyDefaults() Config {
	return Config{
		Settings: MonitorSettings{
			Interval:         60,
			Timeout:          5,
			ValidStatusCodes: []int{200},
		},
		Monitor: Monitor{LogFilePath: "monitor.log"},
	}
}

var errEmpty = errors.New("file is empty")

// Read decodes the file at path onto KeyDefaults without normalizing,
// validating or creating it.
func Read(path string) (Config, error) {
	cfg := KeyDefaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return cfg, errEmpty
	}
	if isYAML(path) {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("decode yaml: %w", err)
		}
		return cfg, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode json: %w", err)
	}
	return cfg, nil
}

// IsCorrupt reports whether err from Read means the file is not a config
// document at all: empty, truncated or not valid JSON/YAML syntax. Values of
// the wrong type inside a well-formed document are not corruption.
func IsCorrupt(err error) bool {
	if err == nil {
		return false
	}
	var (
		syntax   *json.SyntaxError
		jsonType *json.UnmarshalTypeError
		yamlType *yaml.TypeError
		pathErr  *fs.PathError
	)
	switch {
	case errors.Is(err, errEmpty), errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.As(err, &jsonType), errors.As(err, &yamlType), errors.As(err, &pathErr):
		return false
	}
	// What is left is a yaml parser error, which the package does not export.
	return strings.HasPrefix(err.Error(), "decode yaml: ")
}

// Save writes cfg to path, indented, in the format implied by the extension.
func Save(path string, cfg Config) error {
	var (
		b   []byte
		err error
	)
	if isYAML(path) {
		b, err = yaml.Marshal(cfg)
	} else {
		b, err = json.MarshalIndent(cfg, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Relative log paths are relative to the config file, not the working dir.
func resolveLogPath(configPath, logPath string) string {
	if logPath == "" || filepath.IsAbs(logPath) {
		return logPath
	}
	return filepath.Join(filepath.Dir(configPath), logPath)
}
