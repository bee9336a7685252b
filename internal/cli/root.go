package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"boxbreath/internal/core/model"
	"boxbreath/internal/logging"
	"boxbreath/internal/storage"

	"github.com/spf13/cobra"
)

// AppName names the settings directory and the single-instance lock.
const AppName = "BoxBreath"

// ErrNoDesktop is returned by the root command when no GUI is linked in.
var ErrNoDesktop = errors.New("desktop UI unavailable")

// GUIFunc launches the desktop UI with the loaded settings. save persists
// settings edited in the UI.
type GUIFunc func(settings model.Settings, save func(model.Settings) error, logger *slog.Logger) error

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel     string
	LogFormat    string
	SettingsPath string
}

// NewRootCommand creates the root command. Without a subcommand it opens
// the desktop UI through gui.
func NewRootCommand(gui GUIFunc) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "boxbreath",
		Short:         "Box breathing trainer",
		Long:          "Guided box breathing: inhale, hold, exhale, hold, repeated for a set number of cycles.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogFormat != logging.FormatText && opts.LogFormat != logging.FormatJSON {
				return fmt.Errorf("invalid log format %q: must be %s or %s", opts.LogFormat, logging.FormatText, logging.FormatJSON)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if gui == nil {
				return ErrNoDesktop
			}
			settings, err := opts.loadSettings()
			logger := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				logger.Warn("using default settings", "error", err)
			}
			return gui(settings, opts.saveSettings, logger)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", logging.LevelWarn, "log level (DEBUG|INFO|WARN|ERROR)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", logging.FormatText, "log format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.SettingsPath, "settings", "", "settings file (default: user config dir)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewProgramsCommand())
	cmd.AddCommand(NewInstructionsCommand())

	return cmd
}

func (opts *RootOptions) logger(w io.Writer) *slog.Logger {
	return logging.New(w, opts.LogLevel, opts.LogFormat)
}

// loadSettings reads --settings when given, else the file in the user
// config dir.
func (opts *RootOptions) loadSettings() (model.Settings, error) {
	if opts.SettingsPath != "" {
		return storage.LoadSettingsFile(opts.SettingsPath)
	}
	return storage.LoadSettings(AppName)
}

func (opts *RootOptions) saveSettings(settings model.Settings) error {
	if opts.SettingsPath != "" {
		return storage.SaveSettingsFile(opts.SettingsPath, settings)
	}
	return storage.SaveSettings(AppName, settings)
}
