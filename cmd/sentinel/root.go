package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sentinelsec/sentinel/internal/config"
	"github.com/sentinelsec/sentinel/internal/logging"
)

const (
	defaultDatabasePort = 5432
	defaultAPIPort      = 8080
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Network security scanner",
	Long: `Sentinel discovers devices on your networks, profiles their
services and operating systems, probes them against a vulnerability
signature catalog, and stores everything in PostgreSQL.

Run it as a daemon with 'sentinel serve' for the REST API and
scheduled rescans, or use 'sentinel scan' for one-shot scans.`,
	Version: buildVersion(),
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sentinel.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind verbose flag: %v\n", err)
	}
}

// initConfig wires viper to the config file and SENTINEL_* environment
// variables, then brings up structured logging.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("sentinel")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SENTINEL")

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	initLogging()
}

// setConfigDefaults mirrors config.Default for the settings reachable
// through viper.
func setConfigDefaults() {
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", defaultDatabasePort)
	viper.SetDefault("database.database", "sentinel")
	viper.SetDefault("database.username", "sentinel")
	viper.SetDefault("database.ssl_mode", "require")

	viper.SetDefault("api.listen_addr", "127.0.0.1")
	viper.SetDefault("api.port", defaultAPIPort)

	viper.SetDefault("scanning.worker_pool_size", 8)
	viper.SetDefault("scanning.profile_ports", "1-1000")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stdout")
}

// getConfigFilePath returns the config file in effect, either from the
// --config flag or viper's search path.
func getConfigFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return viper.ConfigFileUsed()
}

// loadConfig loads the effective configuration for commands that need
// the full config struct.
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigFilePath())
}

// buildVersion returns the version string shown by --version.
func buildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// initLogging initializes structured logging from the loaded config.
func initLogging() {
	cfg, err := loadConfig()
	if err != nil {
		logging.SetDefault(logging.NewDefault())
		return
	}

	logger, err := logging.New(logging.Config{
		Level:     logging.LogLevel(cfg.Logging.Level),
		Format:    logging.LogFormat(cfg.Logging.Format),
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.Level == "debug",
	})
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	logging.SetDefault(logger)
}
