// Package cli implements the linkage command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/linkage/internal/paths"
	"github.com/mesh-intelligence/linkage/pkg/sqlite"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and the state resolved before a subcommand
// runs.
type app struct {
	flagConfigDir string
	flagDataDir   string
	flagLogLevel  string
	jsonMode      bool

	started   bool
	configDir string
	dataDir   string
	cfg       *viper.Viper
	log       *slog.Logger
}

// NewRootCmd creates the top-level "linkage" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:   "linkage",
		Short: "Planar linkage solver and trajectory store",
		Long: "linkage solves planar mechanisms step by step from declarative spec files,\n" +
			"records joint trajectories, and exports or plots them.",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.linkage-db)")
	root.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newRunCmd(a),
		newBatchCmd(a),
		newRunsCmd(a),
		newShowCmd(a),
		newExportCmd(a),
		newPlotCmd(a),
		newTraceCmd(a),
		newDeleteCmd(a),
	)
	return root, a
}

// Execute runs the CLI with the process arguments and exits with the
// matching code. Interrupts cancel the running command between steps.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Run executes the CLI with args and returns the exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, a := newRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "linkage:", err)
	if !a.started {
		// Flag and argument errors are reported before setup runs.
		return exitUserError
	}
	return exitCode(err)
}

// setup resolves directories, loads config.yaml and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.started = true
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flagConfigDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	level := a.flagLogLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	log, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return userError(err)
	}

	dataDir, err := paths.ResolveDataDir(a.flagDataDir, cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	a.configDir, a.dataDir, a.cfg, a.log = configDir, dataDir, cfg, log
	log.Debug("resolved directories", "config_dir", configDir, "data_dir", dataDir)
	return nil
}

// openStore attaches the configured backend. The caller must Detach.
func (a *app) openStore() (types.Store, error) {
	store := sqlite.NewBackend()
	cfg := types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: a.dataDir,
	}
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	a.log.Debug("store attached", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return store, nil
}

// withStore attaches the store, runs fn and detaches, keeping fn's error
// when both fail.
func (a *app) withStore(fn func(types.Store) error) (err error) {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if derr := store.Detach(); derr != nil && err == nil {
			err = sysError(fmt.Errorf("detach store: %w", derr))
		}
	}()
	return fn(store)
}
