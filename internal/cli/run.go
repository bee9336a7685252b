package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"boxbreath/internal/core/breath"
	"boxbreath/internal/core/model"
	"boxbreath/internal/feedback"
	"boxbreath/internal/ui/term"

	"github.com/spf13/cobra"
	xterm "golang.org/x/term"
)

const (
	clearScreen = "\033[H\033[2J"
	keyCtrlC    = 3
)

type runOptions struct {
	program    string
	cycles     int
	countdown  int
	inhale     int
	inhaleHold int
	exhale     int
	exhaleHold int
	sound      bool
	save       bool
}

// NewRunCommand runs a breathing session in the terminal.
func NewRunCommand(root *RootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a breathing session in the terminal",
		Long: "Run a breathing session in the terminal. Flags override the saved settings.\n" +
			"Keys: space/p pause or resume, r restart, q quit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd.ErrOrStderr())
			settings, err := root.loadSettings()
			if err != nil {
				logger.Warn("using default settings", "error", err)
			}
			if err := opts.apply(cmd, &settings); err != nil {
				return err
			}
			config := settings.SessionConfig()
			if err := config.Validate(); err != nil {
				return err
			}
			if opts.save {
				if err := root.saveSettings(settings); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			interactive := isTerminal(out)
			player := feedback.NewPlayer(feedback.NewBell(out))
			player.SetEnabled(settings.SoundEnabled && interactive)

			engine, err := breath.New(config, breath.Options{Notifier: player, Logger: logger})
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			keys, restore, err := readKeys(ctx, interactive)
			if err != nil {
				return err
			}
			defer restore()

			printer := &sessionPrinter{out: out, renderer: term.NewRenderer(), interactive: interactive}
			return runSession(ctx, engine, player, printer.print, keys)
		},
	}

	cmd.Flags().StringVar(&opts.program, "program", "", "program name ("+strings.Join(model.ProgramNames(), ", ")+") or custom")
	cmd.Flags().IntVarP(&opts.cycles, "cycles", "n", 0, fmt.Sprintf("number of cycles (1-%d)", model.MaxRepeat))
	cmd.Flags().IntVar(&opts.countdown, "countdown", model.DefaultCountdown, "countdown before the first inhale, in seconds")
	cmd.Flags().IntVar(&opts.inhale, "inhale", 0, "inhale seconds (implies --program custom)")
	cmd.Flags().IntVar(&opts.inhaleHold, "inhale-hold", 0, "hold after inhale, in seconds (implies --program custom)")
	cmd.Flags().IntVar(&opts.exhale, "exhale", 0, "exhale seconds (implies --program custom)")
	cmd.Flags().IntVar(&opts.exhaleHold, "exhale-hold", 0, "hold after exhale, in seconds (implies --program custom)")
	cmd.Flags().BoolVar(&opts.sound, "sound", true, "ring the terminal bell on transitions")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the resulting settings as defaults")

	return cmd
}

func (opts *runOptions) apply(cmd *cobra.Command, settings *model.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("program") {
		if strings.EqualFold(opts.program, model.CustomProgram) {
			settings.Program = model.CustomProgram
		} else {
			program, ok := model.LookupProgram(opts.program)
			if !ok {
				return fmt.Errorf("%w: unknown program %q", model.ErrInvalidConfig, opts.program)
			}
			settings.ApplyProgram(program)
		}
	}
	if flags.Changed("cycles") {
		if opts.cycles > model.MaxRepeat {
			return fmt.Errorf("%w: at most %d cycles", model.ErrInvalidConfig, model.MaxRepeat)
		}
		settings.Repeat = opts.cycles
	}
	if flags.Changed("countdown") {
		settings.CountdownSeconds = opts.countdown
	}
	if flags.Changed("sound") {
		settings.SoundEnabled = opts.sound
	}

	custom := []struct {
		flag   string
		value  int
		target *time.Duration
	}{
		{"inhale", opts.inhale, &settings.Inhale},
		{"inhale-hold", opts.inhaleHold, &settings.InhaleHold},
		{"exhale", opts.exhale, &settings.Exhale},
		{"exhale-hold", opts.exhaleHold, &settings.ExhaleHold},
	}
	for _, field := range custom {
		if !flags.Changed(field.flag) {
			continue
		}
		if settings.Program != model.CustomProgram {
			if program, ok := model.LookupProgram(settings.Program); ok {
				settings.ApplyProgram(program)
			}
			settings.Program = model.CustomProgram
		}
		*field.target = time.Duration(field.value) * time.Second
	}
	return nil
}

// runSession starts engine and feeds its events to view until the session
// completes, the user quits or ctx is cancelled. Key actions play the same
// cues as the desktop buttons: a tick to start, a boop otherwise.
func runSession(ctx context.Context, engine *breath.Engine, player *feedback.Player, view func(breath.Event), keys <-chan rune) error {
	events := engine.Subscribe(64)
	player.With(feedback.CueTick, engine.Start)()

	for {
		select {
		case <-ctx.Done():
			engine.Reset()
			return nil
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			switch key {
			case ' ', 'p':
				ToggleSession(engine, player)
			case 'r':
				player.With(feedback.CueTick, func() {
					engine.Reset()
					engine.Start()
				})()
			case 'q', keyCtrlC:
				player.With(feedback.CueBoop, engine.Reset)()
				return nil
			}
		case event, ok := <-events:
			if !ok {
				return nil
			}
			view(event)
			if engine.Snapshot().Completed {
				return nil
			}
		}
	}
}

// ToggleSession pauses a running session, resumes a paused one and starts
// an idle one, playing the matching cue. It does nothing during the
// countdown or after completion.
func ToggleSession(engine *breath.Engine, player *feedback.Player) {
	snapshot := engine.Snapshot()
	switch {
	case snapshot.Countdown.Active || snapshot.Completed:
	case snapshot.HasStarted && snapshot.IsActive:
		player.With(feedback.CueBoop, engine.Pause)()
	case snapshot.Paused():
		player.With(feedback.CueBoop, engine.Resume)()
	default:
		player.With(feedback.CueTick, engine.Start)()
	}
}

type sessionPrinter struct {
	out         io.Writer
	renderer    *term.Renderer
	interactive bool
	last        string
}

func (printer *sessionPrinter) print(event breath.Event) {
	if printer.interactive {
		frame := strings.ReplaceAll(printer.renderer.Render(event.Snapshot), "\n", "\r\n")
		fmt.Fprint(printer.out, clearScreen+frame+"\r\n")
		return
	}
	line := term.Summary(event.Snapshot)
	if event.Type == breath.EventCompleted {
		line = printer.renderer.Render(event.Snapshot)
	}
	if event.Type == breath.EventProgress || line == printer.last {
		return
	}
	printer.last = line
	fmt.Fprintln(printer.out, line)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && xterm.IsTerminal(int(file.Fd()))
}

// readKeys puts stdin in raw mode and streams key presses. It returns a nil
// channel when stdin is not a terminal.
func readKeys(ctx context.Context, interactive bool) (<-chan rune, func(), error) {
	fd := int(os.Stdin.Fd())
	if !interactive || !xterm.IsTerminal(fd) {
		return nil, func() {}, nil
	}
	state, err := xterm.MakeRaw(fd)
	if err != nil {
		return nil, func() {}, fmt.Errorf("enable raw terminal: %w", err)
	}

	keys := make(chan rune)
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return
			}
			select {
			case keys <- rune(buf[0]):
			case <-ctx.Done():
				return
			}
		}
	}()
	return keys, func() { _ = xterm.Restore(fd, state) }, nil
}
