package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoConfig = errors.New("no config selected")

const DefaultLabel = "Default"

// Store keeps labeled YAML profiles under Root/configs and the active label
// in Root/current_config.
type Store struct {
	Root string
}

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "parkdl")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "parkdl")
	}

	// Linux/macOS default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "parkdl")
}

func DefaultStore() Store {
	return Store{Root: ConfigRoot()}
}

func (s Store) ConfigsDir() string {
	return filepath.Join(s.Root, "configs")
}

func (s Store) CurrentLabelFile() string {
	return filepath.Join(s.Root, "current_config")
}

func (s Store) PathByLabel(label string) (string, error) {
	if strings.TrimSpace(label) == "" {
		return "", errors.New("label cannot be empty")
	}

	p := filepath.Join(s.ConfigsDir(), label+".yaml")
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("config %q does not exist", label)
	}

	return p, nil
}

func (s Store) ensureDirs() error {
	return os.MkdirAll(s.ConfigsDir(), 0755)
}

func (s Store) CurrentLabel() (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(s.CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func (s Store) ActiveConfigPath() (string, error) {
	label, err := s.CurrentLabel()
	if err != nil {
		return "", err
	}
	if label == "" {
		return "", ErrNoConfig
	}

	return filepath.Join(s.ConfigsDir(), label+".yaml"), nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func (s Store) List() ([]ConfigInfo, error) {
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.ConfigsDir())
	if err != nil {
		return nil, err
	}

	activeLabel, _ := s.CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		label := strings.TrimSuffix(name, ".yaml")
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(s.ConfigsDir(), name),
			Active: label == activeLabel,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s Store) Switch(label string) error {
	if _, err := s.PathByLabel(label); err != nil {
		return err
	}

	return os.WriteFile(s.CurrentLabelFile(), []byte(label), 0644)
}

// Create writes a profile with default values and returns its path.
func (s Store) Create(label string) (string, error) {
	if strings.TrimSpace(label) == "" {
		return "", errors.New("label cannot be empty")
	}
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path := filepath.Join(s.ConfigsDir(), label+".yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config %q already exists", label)
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

func (s Store) Rename(oldLabel, newLabel string) error {
	if strings.TrimSpace(newLabel) == "" {
		return errors.New("new label cannot be empty")
	}

	oldPath, err := s.PathByLabel(oldLabel)
	if err != nil {
		return err
	}

	newPath := filepath.Join(s.ConfigsDir(), newLabel+".yaml")
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := s.CurrentLabel(); active == oldLabel {
		return os.WriteFile(s.CurrentLabelFile(), []byte(newLabel), 0644)
	}

	return nil
}

// Remove deletes a profile. Removing the active one falls back to Default.
func (s Store) Remove(label string) error {
	if label == DefaultLabel {
		return errors.New("cannot remove the Default config")
	}

	path, err := s.PathByLabel(label)
	if err != nil {
		return err
	}

	if active, _ := s.CurrentLabel(); active == label {
		if err := s.Switch(DefaultLabel); err != nil {
			return fmt.Errorf("failed switching to Default: %w", err)
		}
	}

	return os.Remove(path)
}

// InitDefault creates the Default profile if needed and makes it active.
// It returns os.ErrExist when the profile was already there.
func (s Store) InitDefault() (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	defPath := filepath.Join(s.ConfigsDir(), DefaultLabel+".yaml")

	if _, err := os.Stat(defPath); err == nil {
		return defPath, errors.Join(os.ErrExist, s.Switch(DefaultLabel))
	}

	if err := SaveYAML(DefaultConfig(), defPath); err != nil {
		return "", err
	}

	return defPath, s.Switch(DefaultLabel)
}
