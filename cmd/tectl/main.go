package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sdn-te/internal/compiler"
	"sdn-te/internal/controller"
	"sdn-te/internal/engine"
	"sdn-te/internal/objectives"
	"sdn-te/internal/parser"
	"sdn-te/internal/pathsel"
)

// Configuration keys. Each is a flag, a config file key and a TECTL_ variable.
const (
	cfgConfigFile    = "config"
	cfgTopology      = "topology"
	cfgDirected      = "directed"
	cfgObjectives    = "objectives"
	cfgProvider      = "provider"
	cfgDB            = "db"
	cfgController    = "controller"
	cfgControllerURL = "controller-url"
	cfgPriority      = "priority"
	cfgMaxHops       = "max-hops"
	cfgLogLevel      = "log-level"
	cfgLogFile       = "log-file"
	cfgMode          = "mode"
	cfgListen        = "listen"
	cfgWatch         = "watch"
	cfgTo            = "to"
	cfgToProvider    = "to-provider"
)

const (
	controllerDryRun = "dryrun"
	controllerRyu    = "ryu"
)

// cli carries the state shared by all commands of one invocation.
type cli struct {
	config *viper.Viper
	logger *slog.Logger
	out    io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{config: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "tectl",
		Short: "Traffic-engineering decision layer for OpenFlow networks",
		Long: `tectl turns traffic-engineering objectives (pass-by paths, minimum
latency, maximum bandwidth) into per-switch flow rules and keeps them
installed on the controller as the topology changes.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(cfgConfigFile, "", "Configuration file (YAML, TOML or JSON)")
	flags.String(cfgTopology, "", "Topology file (.yaml, .json, .csv or .graphml)")
	flags.Bool(cfgDirected, false, "Treat CSV topology links as one-way")
	flags.String(cfgProvider, parser.ProviderFile, "Objective provider type: 'file' or 'mariadb'")
	flags.String(cfgObjectives, "", "Objective file (for 'file' provider)")
	flags.String(cfgDB, "", "Database connection string (for 'mariadb' provider)")
	flags.String(cfgController, controllerDryRun, "Controller backend: 'dryrun' or 'ryu'")
	flags.String(cfgControllerURL, "http://127.0.0.1:8080", "Base URL of the Ryu ofctl_rest API")
	flags.Int(cfgPriority, controller.DefaultPriority, "Priority of installed flow entries")
	flags.Int(cfgMaxHops, 0, "Maximum number of links in a computed path (0 = unbounded)")
	flags.String(cfgLogLevel, "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	flags.String(cfgLogFile, "", "Log file path (default: stderr)")
	if err := c.config.BindPFlags(flags); err != nil {
		panic(err)
	}

	c.config.SetEnvPrefix("TECTL")
	c.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.config.AutomaticEnv()

	rootCmd.AddCommand(
		c.newProvisionCmd(),
		c.newPathsCmd(),
		c.newServeCmd(),
		c.newObjectivesCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup reads the optional config file, binds the flags of the command being
// run and installs the logger.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	// Local flags share names across commands ("mode"), so they are bound
	// only for the command that actually runs.
	if err := c.config.BindPFlags(cmd.LocalNonPersistentFlags()); err != nil {
		return err
	}
	if path := c.config.GetString(cfgConfigFile); path != "" {
		c.config.SetConfigFile(path)
		if err := c.config.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	c.out = cmd.OutOrStdout()
	c.logger = setupLogger(c.config.GetString(cfgLogLevel), c.config.GetString(cfgLogFile))
	slog.SetDefault(c.logger)
	return nil
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// The logger isn't set up yet, so a failed open silently falls back
		// to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}

// loadObjectives reads the configured provider into a fresh store. Invalid
// objectives are kept and reported; the engine skips them per cycle.
func (c *cli) loadObjectives(ctx context.Context) (*objectives.Store, error) {
	kind := c.config.GetString(cfgProvider)
	location := c.config.GetString(cfgObjectives)
	if strings.EqualFold(kind, parser.ProviderMariaDB) {
		location = c.config.GetString(cfgDB)
	}

	c.logger.Info("Loading objectives...", "provider", kind)
	provider, closeFn, err := parser.OpenObjectiveProvider(kind, location)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	set, err := provider.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		c.logger.Warn("Objective set contains invalid entries", "error", err)
	}

	store := objectives.NewStore()
	store.AddSet(set)
	c.logger.Info("Successfully loaded objectives", "count", set.Len())
	return store, nil
}

func (c *cli) newController() (engine.Controller, error) {
	switch strings.ToLower(c.config.GetString(cfgController)) {
	case controllerDryRun, "":
		return controller.NewDryRun(c.logger), nil
	case controllerRyu:
		url := c.config.GetString(cfgControllerURL)
		if url == "" {
			return nil, errors.New("ryu controller requires --controller-url")
		}
		return controller.NewRyuREST(url, c.config.GetInt(cfgPriority), c.logger), nil
	default:
		return nil, fmt.Errorf("unknown controller backend: %s", c.config.GetString(cfgController))
	}
}

func (c *cli) topologySource() (*parser.TopologyFile, error) {
	path := c.config.GetString(cfgTopology)
	if path == "" {
		return nil, errors.New("--topology is required")
	}
	return &parser.TopologyFile{Path: path, Directed: c.config.GetBool(cfgDirected)}, nil
}

// newEngine wires an engine from the configuration.
func (c *cli) newEngine(ctx context.Context) (*engine.Engine, error) {
	source, err := c.topologySource()
	if err != nil {
		return nil, err
	}
	maxHops := c.config.GetInt(cfgMaxHops)
	if maxHops < 0 {
		return nil, fmt.Errorf("%w: %d", pathsel.ErrBadMaxHops, maxHops)
	}
	store, err := c.loadObjectives(ctx)
	if err != nil {
		return nil, err
	}
	ctrl, err := c.newController()
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Config{
		Objectives: store,
		Topology:   source,
		Compiler:   compiler.New(),
		Controller: ctrl,
		Selector:   pathsel.New(pathsel.WithMaxHops(maxHops)),
		Logger:     c.logger,
	})
}

func addModeFlag(flags *pflag.FlagSet, def, usage string) {
	flags.String(cfgMode, def, usage+": 'pass_by', 'min_latency' or 'max_bandwidth'")
}
