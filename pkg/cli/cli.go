package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/BIwashi/cangps/pkg/config"
)

const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
)

// Input is what every command receives.
type Input struct {
	Logger *slog.Logger
	Config *config.Config
	Args   []string
	Stdout io.Writer
}

type CLI struct {
	root *cobra.Command
}

func NewCLI(name, short string) *CLI {
	root := &cobra.Command{
		Use:           name,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(flagConfig, "", "YAML config file")
	root.PersistentFlags().String(flagLogLevel, "", "Log level (debug, info, warn, error); overrides the config file")

	return &CLI{root: root}
}

func (c *CLI) AddCommands(cmds ...*cobra.Command) {
	c.root.AddCommand(cmds...)
}

// Run executes the command line and returns the first error.
func (c *CLI) Run() error {
	return c.RunArgs(os.Args[1:])
}

// RunArgs executes the CLI with explicit arguments.
func (c *CLI) RunArgs(args []string) error {
	c.root.SetArgs(args)
	return c.root.ExecuteContext(context.Background())
}

// SetOutput redirects command output and error streams.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.root.SetOut(stdout)
	c.root.SetErr(stderr)
}

// WithContext adapts a command runner to cobra. The context is cancelled on
// SIGINT/SIGTERM.
func WithContext(runner func(context.Context, Input) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}

		return runner(ctx, Input{
			Logger: logger,
			Config: cfg,
			Args:   args,
			Stdout: cmd.OutOrStdout(),
		})
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString(flagConfig)
	if err != nil {
		return nil, errors.Wrap(err, "read --config")
	}

	var cfg *config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if level, _ := flags.GetString(flagLogLevel); level != "" {
		cfg.Log.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid --log-level")
		}
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
