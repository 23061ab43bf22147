package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

func ReadJSONFile(fs afero.Fs, path string, data any) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open JSON file for reading: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(data); err != nil {
		return fmt.Errorf("failed to decode JSON data: %w", err)
	}
	return nil
}

// WriteJSONFile writes data as indented JSON, creating parent directories as needed.
func WriteJSONFile(fs afero.Fs, path string, data any) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for JSON file: %w", err)
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open JSON file for writing: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON data: %w", err)
	}
	return nil
}

func ReadTOMLFile(fs afero.Fs, path string, data any) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open TOML file for reading: %w", err)
	}
	defer f.Close()
	if _, err := toml.NewDecoder(f).Decode(data); err != nil {
		return fmt.Errorf("failed to decode TOML data: %w", err)
	}
	return nil
}

func ReadYAMLFile(fs afero.Fs, path string, data any) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open YAML file for reading: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(data); err != nil {
		return fmt.Errorf("failed to decode YAML data: %w", err)
	}
	return nil
}
