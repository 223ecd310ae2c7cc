package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sentinelsec/sentinel/internal/db"
)

const (
	defaultDeviceLimit = 100
	maxPortsShown      = 6
)

var (
	devicesType    string
	devicesAll     bool
	devicesLimit   int
	devicesNetwork string
)

// devicesCmd lists the device inventory.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List discovered devices",
	Long: `List devices from the inventory with their addresses, detected
types, operating systems, and open ports. Only active devices are
shown unless --all is given.`,
	Example: `  sentinel devices
  sentinel devices --type server
  sentinel devices --all --limit 500
  sentinel devices --network 192.168.1.0/24`,
	Run: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().StringVar(&devicesType, "type", "", "Filter by device type (router, switch, server, workstation, printer, iot)")
	devicesCmd.Flags().BoolVar(&devicesAll, "all", false, "Include devices no longer responding")
	devicesCmd.Flags().IntVar(&devicesLimit, "limit", defaultDeviceLimit, "Maximum number of devices to list")
	devicesCmd.Flags().StringVar(&devicesNetwork, "network", "", "Only devices inside this CIDR")
}

func runDevices(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dbConfig := cfg.GetDatabaseConfig()
	database, err := db.Connect(ctx, &dbConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	filters := db.DeviceFilters{DeviceType: devicesType}
	if !devicesAll {
		active := true
		filters.IsActive = &active
	}

	devices, total, err := db.NewStore(database).Devices.List(ctx, filters, 0, devicesLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing devices: %v\n", err)
		os.Exit(1)
	}

	if devicesNetwork != "" {
		devices, err = filterByNetwork(devices, devicesNetwork)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		return
	}

	displayDevicesTable(devices)
	if devicesNetwork == "" && int64(len(devices)) < total {
		fmt.Printf("\nShowing %d of %d devices. Use --limit to see more.\n", len(devices), total)
	}
}

// filterByNetwork keeps devices whose address falls inside the CIDR.
func filterByNetwork(devices []*db.Device, cidr string) ([]*db.Device, error) {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid network %q: %w", cidr, err)
	}

	var kept []*db.Device
	for _, device := range devices {
		if device.IPAddress.IP != nil && network.Contains(device.IPAddress.IP) {
			kept = append(kept, device)
		}
	}
	return kept, nil
}

// displayDevicesTable renders the inventory listing.
func displayDevicesTable(devices []*db.Device) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("IP Address", "Hostname", "Type", "OS", "Open Ports", "Last Seen", "Active")

	for _, device := range devices {
		hostname := "-"
		if device.Hostname != nil && *device.Hostname != "" {
			hostname = *device.Hostname
		}

		osName := "-"
		if device.OSName != nil && *device.OSName != "" {
			osName = *device.OSName
		}

		active := "yes"
		if !device.IsActive {
			active = "no"
		}

		_ = table.Append([]string{
			device.IPAddress.String(),
			hostname,
			device.DeviceType,
			osName,
			formatPorts(device.OpenPorts),
			device.LastSeen.Format("2006-01-02 15:04"),
			active,
		})
	}

	_ = table.Render()
}

// formatPorts joins open ports, truncating long lists.
func formatPorts(ports []int64) string {
	if len(ports) == 0 {
		return "-"
	}

	shown := ports
	if len(shown) > maxPortsShown {
		shown = shown[:maxPortsShown]
	}

	parts := make([]string, len(shown))
	for i, port := range shown {
		parts[i] = fmt.Sprintf("%d", port)
	}

	result := strings.Join(parts, ",")
	if len(ports) > maxPortsShown {
		result += fmt.Sprintf(" (+%d more)", len(ports)-maxPortsShown)
	}
	return result
}
