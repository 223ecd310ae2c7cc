package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sentinelsec/sentinel/internal/daemon"
)

var (
	servePIDFile   string
	servePort      int
	serveDaemonize bool
)

// serveCmd runs sentinel as a long-lived service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sentinel daemon",
	Long: `Run sentinel as a long-lived service: connects to the database,
runs migrations, serves the REST API, and executes scheduled segment
rescans. The process runs in the foreground unless --daemonize is
given, and shuts down cleanly on SIGINT or SIGTERM.`,
	Example: `  sentinel serve
  sentinel serve --config /etc/sentinel/sentinel.yaml
  sentinel serve --daemonize --pid-file /var/run/sentinel.pid
  sentinel serve --port 9090`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePIDFile, "pid-file", "", "Path to PID file (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "API server port (overrides config)")
	serveCmd.Flags().BoolVarP(&serveDaemonize, "daemonize", "d", false, "Detach from the terminal and run in the background")
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags set on the command line win over the config file.
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "pid-file":
			cfg.Daemon.PIDFile = servePIDFile
		case "port":
			cfg.API.Port = servePort
		case "daemonize":
			cfg.Daemon.Daemonize = serveDaemonize
		}
	})

	d := daemon.New(cfg)

	// Start blocks until a shutdown signal arrives; Stop releases the
	// components and the PID file afterwards.
	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting daemon: %v\n", err)
		os.Exit(1)
	}
	if err := d.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		os.Exit(1)
	}
}
