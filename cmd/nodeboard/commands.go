package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/muurk/nodeboard/internal/config"
	"github.com/muurk/nodeboard/internal/deviceapi"
	"github.com/muurk/nodeboard/internal/discovery"
	"github.com/muurk/nodeboard/internal/export"
	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
	"github.com/muurk/nodeboard/internal/tui"
	"github.com/muurk/nodeboard/internal/ui"
	"github.com/muurk/nodeboard/internal/web"
)

// Common flags (persistent on root)
var (
	configPath string
	apiURL     string
	timeout    time.Duration
	logLevel   string
	noDiscover bool
)

// Subcommand flags
var (
	webHost      string
	webPort      int
	listFormat   string
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/nodeboard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Inventory API base URL (skips discovery)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Backend request timeout (default from config, 10s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noDiscover, "no-discover", false, "Do not look for the inventory API over mDNS")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the config file, .env and environment, then applies flags
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err == nil {
			err = config.LoadDotEnv()
		}
		if err == nil {
			err = cfg.ApplyEnv(os.LookupEnv)
		}
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if timeout > 0 {
		cfg.API.Timeout = timeout
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if noDiscover {
		cfg.Discovery.Enabled = false
	}
	return cfg, nil
}

// newClient builds the inventory API client. Without a configured base URL
// the API is looked up over mDNS, then assumed to be on this host.
func newClient(ctx context.Context, cfg *config.Config) *deviceapi.Client {
	baseURL := cfg.API.BaseURL

	if baseURL == "" && cfg.Discovery.Enabled {
		svc, err := discovery.FindAPI(ctx, cfg.Discovery.Timeout)
		if err == nil {
			baseURL = svc.BaseURL()
			logging.Info("Discovered inventory API", zap.String("service", svc.String()), zap.String("url", baseURL))
		} else {
			logging.Warn("Inventory API discovery failed", zap.Error(err))
		}
	}

	if baseURL == "" {
		baseURL = "http://127.0.0.1:" + strconv.Itoa(cfg.Backend.Port)
		logging.Info("Using local inventory API", zap.String("url", baseURL))
	}

	client := deviceapi.NewClientWithURL(baseURL)
	client.SetTimeout(cfg.API.Timeout)
	client.MaxRetries = cfg.API.MaxRetries
	return client
}

// tuiCmd launches the terminal dashboard
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal dashboard",
	Long: `Launch the interactive terminal dashboard.

Logs are written to a file next to the config file so they never draw over
the dashboard. Set --log-level to enable them.`,
	Example: `  # Launch with auto-discovery
  nodeboard tui
  # Or simply (tui is default):
  nodeboard

  # Launch against a specific inventory API
  nodeboard --api-url http://10.0.0.5:8081`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdout) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("the terminal dashboard needs an interactive terminal; try 'nodeboard web' or 'nodeboard devices list'")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile := cfg.Logging.File
	if logFile == "" && cfg.Logging.Level != "" {
		if dir, err := config.GetConfigDir(); err == nil {
			logFile = filepath.Join(dir, "nodeboard.log")
		}
	}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if err := logging.InitializeToFile(cfg.Logging.Level, logFile); err != nil {
		return err
	}
	defer logging.Sync()

	client := newClient(cmd.Context(), cfg)
	if err := tui.Run(client, cfg.API.Timeout); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

// webCmd serves the browser dashboard
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the browser dashboard",
	Long: `Serve the dashboard over HTTP for use in a browser.

Open pages update live over a WebSocket when the device list or a save
completes.`,
	Example: `  # Serve on the configured address (default 127.0.0.1:8080)
  nodeboard web

  # Listen on every interface
  nodeboard web --host 0.0.0.0 --port 9000`,
	RunE: runWeb,
}

func init() {
	webCmd.Flags().StringVar(&webHost, "host", "", "Listen host (default from config)")
	webCmd.Flags().IntVar(&webPort, "port", 0, "Listen port (default from config)")
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if webHost != "" {
		cfg.Web.Host = webHost
	}
	if webPort != 0 {
		cfg.Web.Port = webPort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(cfg.Logging.Level); err != nil {
		return err
	}

	client := newClient(cmd.Context(), cfg)
	srv, err := web.New(&web.Config{
		Host:    cfg.Web.Host,
		Port:    cfg.Web.Port,
		Timeout: cfg.API.Timeout,
	}, client)
	if err != nil {
		return fmt.Errorf("failed to create web dashboard: %w", err)
	}

	fmt.Printf("Dashboard: http://%s\n", cfg.WebAddr())
	return srv.Start()
}

// devicesCmd groups non-interactive device commands
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Query the device inventory",
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List devices and their interface state",
	Example: `  # Table output
  nodeboard devices list

  # JSON output for scripting
  nodeboard devices list --format json`,
	RunE: runDevicesList,
}

func init() {
	devicesListCmd.Flags().StringVar(&listFormat, "format", "table", "Output format (table, json)")
	devicesCmd.AddCommand(devicesListCmd)
}

func fetchDevices(cmd *cobra.Command) ([]inventory.Device, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	if err := logging.Initialize(cfg.Logging.Level); err != nil {
		return nil, "", err
	}

	client := newClient(cmd.Context(), cfg)
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
	defer cancel()

	devices, err := client.ListDevices(ctx)
	if err != nil {
		summary, tips := ui.TipsFromHint(deviceapi.TroubleshootingHint(err))
		ui.NewFailureResult(summary, err, tips).Fprint(os.Stderr)
		return nil, client.BaseURL, fmt.Errorf("%s", deviceapi.ShortMessage(err))
	}
	return devices, client.BaseURL, nil
}

func runDevicesList(cmd *cobra.Command, args []string) error {
	devices, baseURL, err := fetchDevices(cmd)
	if err != nil {
		return err
	}

	switch listFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	case "table":
		if len(devices) == 0 {
			ui.NewWarningResult("No devices registered", ui.Detail{Key: "API", Value: baseURL}).Fprint(os.Stdout)
			return nil
		}
		fmt.Println(renderDeviceTable(devices))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table or json)", listFormat)
	}
}

func renderDeviceTable(devices []inventory.Device) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "LOCATION", "STATE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, d := range devices {
		t.Row(d.ID.String()[:8], d.Name, d.Location, d.SummaryString())
	}
	return t.String()
}

// exportCmd writes the device list to a spreadsheet
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the device inventory to xlsx or csv",
	Example: `  # Workbook with Devices and Interfaces sheets
  nodeboard export --output devices.xlsx

  # CSV to stdout
  nodeboard export --format csv --output -`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format (xlsx, csv; default from --output extension, else xlsx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, or - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	raw := exportFormat
	if raw == "" {
		raw = filepath.Ext(exportOutput)
	}
	format := export.FormatXLSX
	if raw != "" {
		var err error
		if format, err = export.ParseFormat(raw); err != nil {
			return err
		}
	}

	devices, _, err := fetchDevices(cmd)
	if err != nil {
		return err
	}

	output := exportOutput
	if output == "" {
		output = export.Filename(format)
	}

	var w io.Writer = os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, format, devices); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if output != "-" {
		ui.NewSuccessResult("Export complete",
			ui.Detail{Key: "File", Value: output},
			ui.Detail{Key: "Format", Value: string(format)},
			ui.Detail{Key: "Devices", Value: strconv.Itoa(len(devices))},
		).Fprint(os.Stdout)
	}
	return nil
}

// configCmd manages the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config file already exists: %s", configPath)
			}
			if err := config.Default().SaveTo(configPath); err != nil {
				return err
			}
			ui.NewSuccessResult("Config file created", ui.Detail{Key: "Path", Value: configPath}).Fprint(os.Stdout)
			return nil
		}

		path, err := config.CreateDefaultConfig()
		if err != nil {
			return err
		}
		ui.NewSuccessResult("Config file created", ui.Detail{Key: "Path", Value: path}).Fprint(os.Stdout)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the config file, .env, environment
variables and flags have been applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
