package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/briefguard/internal/cache"
	"github.com/ppiankov/briefguard/internal/logger"
	"github.com/ppiankov/briefguard/internal/metrics"
	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/pipeline"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

// Exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1 // Usage or IO error
	ExitContract = 2 // Output violates the contract
)

var (
	cfgFile     string
	verbose     bool
	noCache     bool
	metricsFile string
)

// ExitError carries the process exit code of a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "briefguard",
	Short: "briefguard - Output contract enforcement & evidence grounding for generated briefs",
	Long: `briefguard checks procurement intelligence briefs produced by a generative
text model.

It enforces the output contract (schema, counts, citation ranges), repairs what
can be repaired without inventing content, and grounds every claim against the
source corpus the brief was written from.

briefguard never fabricates support: a claim is either backed by an excerpt,
explicitly marked as analysis, or flagged as needing verification.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of briefguard.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "briefguard %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.briefguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("metrics.file", rootCmd.PersistentFlags().Lookup("metrics-file"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".briefguard"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match BRIEFGUARD_*
	viper.SetEnvPrefix("BRIEFGUARD")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, config file, env and global flags
func loadConfig() (*model.Config, error) {
	cfg, err := model.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if metricsFile != "" {
		cfg.Metrics.File = metricsFile
	}
	return cfg, nil
}

// runtimeEnv bundles what every command builds from the config
type runtimeEnv struct {
	cfg      *model.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
}

func newRuntime() (*runtimeEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Output.Verbose)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: fmt.Errorf("create logger: %w", err)}
	}

	m := metrics.New()
	opts := []pipeline.Option{pipeline.WithLogger(log), pipeline.WithMetrics(m)}
	if c := cache.FromConfig(&cfg.Cache); c != nil {
		opts = append(opts, pipeline.WithCache(c))
	}

	return &runtimeEnv{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		pipeline: pipeline.NewPipeline(cfg, opts...),
		renderer: pipeline.NewRenderer(cfg.Output.Pretty),
	}, nil
}

// close flushes metrics and logs. Errors here never change the exit code.
func (r *runtimeEnv) close() {
	if err := r.metrics.WriteTextfile(r.cfg.Metrics.File); err != nil {
		r.log.Warn("metrics export failed", "error", err)
	}
	r.log.Sync()
}
