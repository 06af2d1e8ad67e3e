package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alkime/mixgraph/internal/audio"
	"github.com/alkime/mixgraph/internal/backend"
	"github.com/alkime/mixgraph/internal/bridge"
	"github.com/alkime/mixgraph/internal/config"
	"github.com/alkime/mixgraph/internal/keyring"
	"github.com/alkime/mixgraph/internal/logger"
	"github.com/alkime/mixgraph/internal/mixer"
	"github.com/alkime/mixgraph/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

// CLI defines the mixgraph command structure. Global flags override the
// MIXGRAPH_* environment.
type CLI struct {
	Backend   string `flag:"" optional:"" help:"Backend: local, sim or bridge"`
	Scenario  string `flag:"" optional:"" type:"existingfile" help:"Scenario YAML for the sim backend"`
	BridgeURL string `flag:"" optional:"" name:"bridge-url" help:"Bridge base URL for the bridge backend"`

	// Default command
	UI UICmd `cmd:"" default:"withargs" help:"Launch the interactive mixer graph"`

	// Subcommands
	Watch    WatchCmd    `cmd:"" help:"Run the sync engine headless and print its events"`
	Devices  DevicesCmd  `cmd:"" help:"List audio devices"`
	Sessions SessionsCmd `cmd:"" help:"List application audio sessions"`
	Bridge   BridgeCmd   `cmd:"" help:"Serve this host's backend over HTTP"`
	Config   ConfigCmd   `cmd:"" help:"Manage configuration"`
}

// apply copies explicitly set global flags onto cfg.
func (c *CLI) apply(cfg *config.Config) error {
	if c.Backend != "" {
		cfg.Backend = c.Backend
	}

	if c.Scenario != "" {
		cfg.Scenario = c.Scenario
	}

	if c.BridgeURL != "" {
		cfg.BridgeURL = c.BridgeURL
	}

	return cfg.Validate()
}

// UICmd runs the TUI.
type UICmd struct {
	NudgeStep float64 `flag:"" optional:"" help:"Volume change per key press"`
}

// Run executes the UI command.
func (c *UICmd) Run(cfg *config.Config) error {
	if !logger.IsTerminal(os.Stdout) {
		return errors.New("the UI needs a terminal; use `mixgraph watch` for headless output")
	}

	w, closeLog, err := logger.Output(cfg)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // nothing left to log to

	logger.Setup(cfg, w, logger.JSON)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}

	if c.NudgeStep > 0 {
		cfg.NudgeStep = c.NudgeStep
	}

	engine := newEngine(ctx, cfg, b)
	model := tui.New(engine, tui.Config{NudgeStep: cfg.NudgeStep, Source: describeBackend(cfg)}, cancel)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run UI: %w", err)
	}

	return nil
}

// WatchCmd runs the engine without a renderer.
type WatchCmd struct {
	For time.Duration `flag:"" optional:"" help:"Stop after this long (default: until interrupted)"`
}

// Run executes the watch command.
func (c *WatchCmd) Run(cfg *config.Config) error {
	logger.Setup(cfg, os.Stderr, logger.FormatFor(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.For > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.For)
		defer cancel()
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}

	sink := make(chan mixer.Event, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range sink {
			printEvent(os.Stdout, ev)
		}
	}()

	engine := newEngine(ctx, cfg, b, mixer.WithSink(sink))
	program := tea.NewProgram(engine,
		tea.WithoutRenderer(),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
	)

	_, err = program.Run()

	close(sink)
	<-done

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run engine: %w", err)
	}

	return nil
}

// DevicesCmd lists audio devices once.
type DevicesCmd struct{}

// Run executes the devices command.
func (d *DevicesCmd) Run(cfg *config.Config) error {
	logger.Setup(cfg, os.Stderr, logger.Text)

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}

	return listDevices(context.Background(), os.Stdout, b)
}

// SessionsCmd lists application sessions once.
type SessionsCmd struct{}

// Run executes the sessions command.
func (s *SessionsCmd) Run(cfg *config.Config) error {
	logger.Setup(cfg, os.Stderr, logger.Text)

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}

	return listSessions(context.Background(), os.Stdout, b)
}

// BridgeCmd serves the configured backend over HTTP.
type BridgeCmd struct {
	Addr string `flag:"" optional:"" help:"Listen address (default: MIXGRAPH_BRIDGE_ADDR)"`
}

// Run executes the bridge command.
func (c *BridgeCmd) Run(cfg *config.Config) error {
	log := logger.Setup(cfg, os.Stderr, logger.FormatFor(os.Stderr))

	if cfg.Backend == config.BackendBridge {
		return errors.New("the bridge serves a local or sim backend, not another bridge")
	}

	if c.Addr != "" {
		cfg.BridgeAddr = c.Addr
	}

	token, err := keyring.Resolve(keyring.BridgeToken, cfg.BridgeToken)
	if err != nil {
		slog.Debug("keychain lookup failed", "key", "bridge-token", "error", err)
	}

	if token == "" {
		slog.Warn("no bridge token configured, /v1 routes are unauthenticated")
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bridge.New(cfg, b, token, log).Run(ctx)
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetToken   SetTokenCmd   `cmd:"" name:"set-token" help:"Store the bridge token in the system keychain"`
	ClearToken ClearTokenCmd `cmd:"" name:"clear-token" help:"Remove the bridge token from the system keychain"`
	Show       ShowCmd       `cmd:"" help:"Show the effective configuration"`
}

// SetTokenCmd stores the bridge token.
type SetTokenCmd struct {
	Token string `arg:"" help:"Bridge token value"`
}

// Run executes the set-token command.
func (c *SetTokenCmd) Run() error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("bridge token cannot be empty")
	}

	if err := keyring.Set(keyring.BridgeToken, c.Token); err != nil {
		return fmt.Errorf("failed to store bridge token: %w", err)
	}

	fmt.Println("bridge token stored in keychain")

	return nil
}

// ClearTokenCmd removes the bridge token.
type ClearTokenCmd struct{}

// Run executes the clear-token command.
func (c *ClearTokenCmd) Run() error {
	if err := keyring.Delete(keyring.BridgeToken); err != nil {
		return err
	}

	fmt.Println("bridge token removed from keychain")

	return nil
}

// ShowCmd prints the effective configuration.
type ShowCmd struct{}

// Run executes the show command.
//
//nolint:unparam // error return required by Kong interface
func (s *ShowCmd) Run(cfg *config.Config) error {
	showConfig(os.Stdout, cfg, keyring.IsSet(keyring.BridgeToken))

	return nil
}

func main() {
	// Text logger until a command sets up its own
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("mixgraph"),
		kong.Description("Audio devices and application sessions as a live node graph."),
		kong.Bind(cfg),
	)

	ctx.FatalIfErrorf(cli.apply(cfg))
	ctx.FatalIfErrorf(ctx.Run())
	os.Exit(0)
}

// openBackend builds the backend selected by cfg.
func openBackend(cfg *config.Config) (backend.Backend, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return backend.NewLocal(audio.NewHost(), cfg.DefaultDeviceVolume), nil

	case config.BackendSimulated:
		sc := backend.DemoScenario()
		if cfg.Scenario != "" {
			var err error
			if sc, err = backend.LoadScenario(cfg.Scenario); err != nil {
				return nil, err
			}
		}

		return backend.NewSimulated(sc), nil

	case config.BackendBridge:
		token, err := keyring.Resolve(keyring.BridgeToken, cfg.BridgeToken)
		if err != nil {
			slog.Debug("keychain lookup failed", "key", "bridge-token", "error", err)
		}

		return backend.NewBridgeClient(cfg.BridgeURL, token, cfg.BridgeTimeout), nil

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Backend)
	}
}

func newEngine(ctx context.Context, cfg *config.Config, b backend.Backend, opts ...mixer.Option) *mixer.Engine {
	base := []mixer.Option{
		mixer.WithContext(ctx),
		mixer.WithIntervals(cfg.EnumerateInterval, cfg.PollInterval),
		mixer.WithDefaultVolume(cfg.DefaultDeviceVolume),
		mixer.WithLogger(slog.Default()),
	}

	return mixer.NewEngine(b, append(base, opts...)...)
}

func describeBackend(cfg *config.Config) string {
	switch cfg.Backend {
	case config.BackendSimulated:
		if cfg.Scenario != "" {
			return "the simulated backend (" + cfg.Scenario + ")"
		}

		return "the simulated backend"
	case config.BackendBridge:
		return "the bridge at " + cfg.BridgeURL
	default:
		return "this machine's audio host"
	}
}
