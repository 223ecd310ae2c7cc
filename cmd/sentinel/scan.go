package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sentinelsec/sentinel/internal/ai"
	"github.com/sentinelsec/sentinel/internal/config"
	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/discovery"
	"github.com/sentinelsec/sentinel/internal/orchestrator"
	"github.com/sentinelsec/sentinel/internal/profiling"
	"github.com/sentinelsec/sentinel/internal/vulnscan"
)

const (
	scanPollInterval   = 2 * time.Second
	defaultScanTimeout = 6 * time.Minute
)

var (
	scanKind        string
	scanTarget      string
	scanOSDetection bool
	scanNoWait      bool
	scanWait        time.Duration
)

// scanCmd submits a one-shot scan job.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a one-shot scan",
	Long: `Submit a scan job and wait for its result.

When a running daemon is reachable and SENTINEL_API_KEY is set, the
job is submitted through its REST API so results land in the shared
database and show up in listings immediately. Otherwise the scan runs
directly against the database configured in the config file.`,
	Example: `  sentinel scan --target 192.168.1.0/24
  sentinel scan --target 10.0.0.5 --type vulnerability_scan
  sentinel scan --target 192.168.1.0/24 --type port_scan --no-wait
  sentinel scan --target 172.16.0.0/22 --os-detection`,
	Run: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanKind, "type", db.ScanKindDiscovery, "Scan type: network_discovery, vulnerability_scan, port_scan")
	scanCmd.Flags().StringVar(&scanTarget, "target", "", "Target network or host (CIDR, IP, range, or hostname)")
	scanCmd.Flags().BoolVar(&scanOSDetection, "os-detection", false, "Enable OS fingerprinting for this scan")
	scanCmd.Flags().BoolVar(&scanNoWait, "no-wait", false, "Submit the job and return without waiting")
	scanCmd.Flags().DurationVar(&scanWait, "wait-timeout", defaultScanTimeout, "How long to wait for the job to finish")

	_ = scanCmd.MarkFlagRequired("target")
}

func runScan(cmd *cobra.Command, _ []string) {
	if !db.SupportedScanKinds[scanKind] {
		supported := make([]string, 0, len(db.SupportedScanKinds))
		for kind := range db.SupportedScanKinds {
			supported = append(supported, kind)
		}
		sort.Strings(supported)
		fmt.Fprintf(os.Stderr, "Error: unsupported scan type %q\n", scanKind)
		fmt.Fprintf(os.Stderr, "Supported types: %s\n", strings.Join(supported, ", "))
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var osDetection *bool
	if cmd.Flags().Changed("os-detection") {
		osDetection = &scanOSDetection
	}

	if client := newAPIClient(cfg); client != nil && client.ping() == nil {
		if verbose {
			fmt.Println("Submitting scan through the running daemon")
		}
		if err := runScanViaAPI(client, osDetection); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runScanDirect(cfg, osDetection); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runScanViaAPI submits through the daemon and polls the job endpoint.
func runScanViaAPI(client *apiClient, osDetection *bool) error {
	job, err := client.submitScan(scanKind, scanTarget, osDetection)
	if err != nil {
		return err
	}

	fmt.Printf("Scan submitted: %s (%s on %s)\n", job.ID, job.Kind, job.Target)
	if scanNoWait {
		fmt.Printf("Check progress with: sentinel scan status via GET /api/v1/scans/%s\n", job.ID)
		return nil
	}

	deadline := time.Now().Add(scanWait)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("job %s still %s after %s", job.ID, job.Status, scanWait)
		}
		time.Sleep(scanPollInterval)

		current, err := client.getScan(job.ID.String())
		if err != nil {
			return err
		}
		if current.Status != job.Status {
			fmt.Printf("Job %s: %s\n", current.ID, current.Status)
		}
		job = current
		if job.IsTerminal() {
			break
		}
	}

	displayScanResult(job)
	return nil
}

// runScanDirect runs the scan pipeline against the configured database
// without a daemon.
func runScanDirect(cfg *config.Config, osDetection *bool) error {
	ctx := context.Background()

	dbConfig := cfg.GetDatabaseConfig()
	database, err := db.ConnectAndMigrate(ctx, &dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	store := db.NewStore(database)
	orch := buildOrchestrator(cfg, store)

	job, err := orch.Submit(ctx, orchestrator.SubmitRequest{
		Kind:      scanKind,
		Target:    scanTarget,
		Options:   orchestrator.Options{OSDetection: osDetection},
		CreatedBy: "cli",
	})
	if err != nil {
		return err
	}

	fmt.Printf("Scan started: %s (%s on %s)\n", job.ID, job.Kind, job.Target)
	if scanNoWait {
		fmt.Println("Warning: --no-wait in direct mode abandons the running job")
	}

	job, err = awaitJob(ctx, store.Jobs, job.ID, scanWait)
	if err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := orch.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: orchestrator shutdown incomplete: %v\n", err)
	}

	displayScanResult(job)
	return nil
}

// buildOrchestrator assembles the scan pipeline the way the daemon
// does.
func buildOrchestrator(cfg *config.Config, store *db.Store) *orchestrator.Orchestrator {
	discoverer := discovery.NewEngine(discovery.Config{
		PingTimeout:  cfg.Discovery.PingTimeout,
		EnableARP:    cfg.Discovery.EnableARP,
		ARPCachePath: cfg.Discovery.ARPCachePath,
	})

	profiler := profiling.New(profiling.Config{
		PortRange:     cfg.Scanning.ProfilePorts,
		SNMPCommunity: cfg.Scanning.SNMPCommunity,
		SNMPTimeout:   cfg.Scanning.SNMPTimeout,
		TLSCapture:    cfg.Scanning.EnableTLSCapture,
	})

	analyst := ai.New(ai.Config{
		Enabled:        cfg.AI.Enabled,
		Endpoint:       cfg.AI.Endpoint,
		APIKey:         cfg.AI.APIKey,
		Model:          cfg.AI.Model,
		RequestTimeout: cfg.AI.RequestTimeout,
	})

	return orchestrator.New(
		orchestrator.Config{
			WorkerPoolSize:    cfg.Scanning.WorkerPoolSize,
			JobTimeout:        cfg.Scanning.JobTimeout,
			ProfilePorts:      cfg.Scanning.ProfilePorts,
			EnableOSDetection: cfg.Scanning.EnableOSDetection,
			DeviceStaleness:   cfg.Scanning.DeviceStaleness,
		},
		orchestrator.Stores{
			Devices:         store.Devices,
			Vulnerabilities: store.Vulnerabilities,
			Jobs:            store.Jobs,
			Alerts:          store.Alerts,
		},
		orchestrator.Pipeline{
			Discoverer: discoverer,
			Profiler:   profiler,
			Prober:     vulnscan.New(),
			Analyst:    analyst,
		},
	)
}

// awaitJob polls the job row until it reaches a terminal state.
func awaitJob(ctx context.Context, jobs *db.ScanJobRepository, id uuid.UUID, wait time.Duration) (*db.ScanJob, error) {
	deadline := time.Now().Add(wait)
	lastStatus := ""

	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("job %s not finished after %s", id, wait)
		}
		time.Sleep(scanPollInterval)

		job, err := jobs.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read job status: %w", err)
		}
		if job.Status != lastStatus {
			if lastStatus != "" {
				fmt.Printf("Job %s: %s\n", job.ID, job.Status)
			}
			lastStatus = job.Status
		}
		if job.IsTerminal() {
			return job, nil
		}
	}
}

// displayScanResult prints the terminal job as a table plus the AI
// summary when one was produced.
func displayScanResult(job *db.ScanJob) {
	duration := "-"
	if job.DurationSeconds != nil {
		duration = fmt.Sprintf("%.1fs", *job.DurationSeconds)
	}

	fmt.Println()
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job", "Status", "Devices", "Ports Scanned", "Vulnerabilities", "Duration")
	_ = table.Append([]string{
		job.ID.String()[:8],
		job.Status,
		fmt.Sprintf("%d", job.DevicesDiscovered),
		fmt.Sprintf("%d", job.PortsScanned),
		fmt.Sprintf("%d", job.VulnerabilitiesFound),
		duration,
	})
	_ = table.Render()

	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		fmt.Printf("\nError: %s\n", *job.ErrorMessage)
	}
	if job.AISummary != nil && *job.AISummary != "" {
		fmt.Printf("\n%s\n", *job.AISummary)
	}
	if job.Status == db.ScanJobStatusCompleted {
		fmt.Println("\nUse 'sentinel devices' to view the inventory")
	}
}
