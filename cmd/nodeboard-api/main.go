// Nodeboard-api is the inventory service behind the nodeboard dashboard.
//
// It keeps the device inventory in memory, probes every interface on a fixed
// interval, serves the inventory over HTTP and announces itself over mDNS so
// dashboards on the same network find it without configuration.
//
// Usage:
//
//	nodeboard-api serve [flags]
//
// See 'nodeboard-api serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/nodeboard/internal/apiserver"
	"github.com/muurk/nodeboard/internal/config"
	"github.com/muurk/nodeboard/internal/logging"
	"github.com/muurk/nodeboard/internal/urls"
	"github.com/muurk/nodeboard/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nodeboard-api",
	Short: "Nodeboard inventory API",
	Long: `The inventory service the nodeboard dashboards read from and save to.

Devices are held in memory for the life of the process and can be seeded
from a YAML file at startup. Interface status is observed by probing each
interface with its check method (Http, Ping or SipPing), never entered by
an operator.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host          string
	port          int
	seedFile      string
	probeInterval time.Duration
	probeTimeout  time.Duration
	noProbe       bool
	noAdvertise   bool
	instance      string
	logLevel      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inventory API",
	Long: `Start the inventory API server.

Defaults come from the backend section of the nodeboard config file; flags
override them.

Seed file format: ` + urls.SeedFileFormat + `
Check methods:    ` + urls.CheckMethods,
	Example: `  # Start with defaults (0.0.0.0:8081, probing every 30s, mDNS on)
  nodeboard-api serve

  # Seed the inventory and log at debug level
  nodeboard-api serve --seed inventory.yaml --log-level debug

  # Serve stored statuses without probing and without mDNS
  nodeboard-api serve --no-probe --no-advertise`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen host (default from config, 0.0.0.0)")
	serveCmd.Flags().IntVar(&port, "port", 0, "Listen port (default from config, 8081)")
	serveCmd.Flags().StringVar(&seedFile, "seed", "", "YAML file of devices to load at startup")
	serveCmd.Flags().DurationVar(&probeInterval, "probe-interval", 0, "Time between probe rounds (default from config, 30s)")
	serveCmd.Flags().DurationVar(&probeTimeout, "probe-timeout", 0, "Per-interface probe timeout (default from config, 2s)")
	serveCmd.Flags().BoolVar(&noProbe, "no-probe", false, "Do not probe interfaces")
	serveCmd.Flags().BoolVar(&noAdvertise, "no-advertise", false, "Do not announce the API over mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default derived from hostname)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	backend := cfg.Backend

	if host != "" {
		backend.Host = host
	}
	if port != 0 {
		backend.Port = port
	}
	if seedFile != "" {
		backend.SeedFile = seedFile
	}
	if probeInterval > 0 {
		backend.ProbeInterval = probeInterval
	}
	if probeTimeout > 0 {
		backend.ProbeTimeout = probeTimeout
	}
	if noAdvertise {
		backend.Advertise = false
	}

	if seedFile != "" {
		if _, err := os.Stat(backend.SeedFile); os.IsNotExist(err) {
			return fmt.Errorf("seed file not found: %s", backend.SeedFile)
		}
	}

	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	srv, err := apiserver.New(&apiserver.Config{
		Host:          backend.Host,
		Port:          backend.Port,
		SeedFile:      backend.SeedFile,
		ProbeInterval: backend.ProbeInterval,
		ProbeTimeout:  backend.ProbeTimeout,
		DisableProbes: noProbe || backend.ProbeInterval == 0,
		Advertise:     backend.Advertise,
		Instance:      instance,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Banner("nodeboard-api"))
	},
}
