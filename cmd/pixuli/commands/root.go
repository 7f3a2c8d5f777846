package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/pixuli/pixuli-wasm/internal/config"
	"github.com/pixuli/pixuli-wasm/internal/host"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"
)

// errChecksFailed is returned by verify when a check does not pass.
var errChecksFailed = errors.New("verification failed")

type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "pixuli",
		Short:         "Load pixuli Wasm modules and call their exports",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		probeCmd(a),
		verifyCmd(a),
		listCmd(a),
		schemaCmd(),
		nativeCmd(),
	)
	return root
}

// newLogger builds a development logger for debug and a production one otherwise.
func newLogger(level string) (*zap.Logger, error) {
	atom, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zc zap.Config
	if atom.Level() == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = atom

	return zc.Build()
}

// setup loads configuration and builds the logger. Only commands that open a
// host call it, so native and schema work without a valid config.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// withHost opens a host, loads plugins, runs fn and closes the host.
func (a *app) withHost(cmd *cobra.Command, fn func(*host.Host) error) (err error) {
	if err := a.setup(cmd); err != nil {
		return err
	}

	ctx := cmd.Context()
	h, err := host.New(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := h.Load(ctx); err != nil {
		return err
	}
	return fn(h)
}

// parseUint32 parses a decimal u32, rejecting negatives and values above 4294967295.
func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid u32 %q: %w", s, err)
	}
	return uint32(v), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
