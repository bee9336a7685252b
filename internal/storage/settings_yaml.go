package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"boxbreath/internal/core/model"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	Program           string `yaml:"program"`
	InhaleSeconds     int    `yaml:"inhale_seconds"`
	InhaleHoldSeconds int    `yaml:"inhale_hold_seconds"`
	ExhaleSeconds     int    `yaml:"exhale_seconds"`
	ExhaleHoldSeconds int    `yaml:"exhale_hold_seconds"`
	Repeat            int    `yaml:"repeat"`
	CountdownSeconds  *int   `yaml:"countdown_seconds,omitempty"`
	SoundEnabled      *bool  `yaml:"sound_enabled,omitempty"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (model.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return model.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads user preferences from an explicit path.
func LoadSettingsFile(configPath string) (model.Settings, error) {
	settings := model.DefaultSettings()
	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings model.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes user preferences to an explicit path.
func SaveSettingsFile(configPath string, settings model.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	countdown := settings.CountdownSeconds
	sound := settings.SoundEnabled
	fileData := yamlSettings{
		Program:           settings.Program,
		InhaleSeconds:     int(settings.Inhale / time.Second),
		InhaleHoldSeconds: int(settings.InhaleHold / time.Second),
		ExhaleSeconds:     int(settings.Exhale / time.Second),
		ExhaleHoldSeconds: int(settings.ExhaleHold / time.Second),
		Repeat:            settings.Repeat,
		CountdownSeconds:  &countdown,
		SoundEnabled:      &sound,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the settings file location for appName.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if _, ok := model.LookupProgram(fileData.Program); ok || fileData.Program == model.CustomProgram {
		settings.Program = fileData.Program
	}
	if fileData.InhaleSeconds > 0 {
		settings.Inhale = time.Duration(fileData.InhaleSeconds) * time.Second
	}
	if fileData.InhaleHoldSeconds > 0 {
		settings.InhaleHold = time.Duration(fileData.InhaleHoldSeconds) * time.Second
	}
	if fileData.ExhaleSeconds > 0 {
		settings.Exhale = time.Duration(fileData.ExhaleSeconds) * time.Second
	}
	if fileData.ExhaleHoldSeconds > 0 {
		settings.ExhaleHold = time.Duration(fileData.ExhaleHoldSeconds) * time.Second
	}
	if fileData.Repeat > 0 && fileData.Repeat <= model.MaxRepeat {
		settings.Repeat = fileData.Repeat
	}
	if fileData.CountdownSeconds != nil && *fileData.CountdownSeconds >= 0 {
		settings.CountdownSeconds = *fileData.CountdownSeconds
	}
	if fileData.SoundEnabled != nil {
		settings.SoundEnabled = *fileData.SoundEnabled
	}
}
