package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zfrkrc/pentaas-oneclick/backend"
	"github.com/zfrkrc/pentaas-oneclick/config"
)

var (
	cfgFile        string
	appLogPathFlag string
	logLevelFlag   string
	backendURLFlag string
)

var rootCmd = &cobra.Command{
	Use:   "pentaas",
	Short: "One-click pentest client for the PentaaS scan backend",
	Long: `pentaas drives a remote scan backend from the command line: it submits a
target, supervises the scan while it runs, aggregates per-tool progress and
findings, and exports a portable report when the scan completes.

The backend runs the actual tools (nmap, nuclei, testssl, ...); this client
only orchestrates.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Init(cfgFile, appLogPathFlag, logLevelFlag)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newBackendClient builds the HTTP client from config, with the --backend
// flag taking precedence.
func newBackendClient() *backend.Client {
	baseURL := config.AppConfig.Backend.BaseURL
	if backendURLFlag != "" {
		baseURL = backendURLFlag
	}
	timeout := time.Duration(config.AppConfig.Backend.TimeoutSeconds) * time.Second
	return backend.NewClient(baseURL, timeout)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pentaas/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&appLogPathFlag, "app-log", "", "path for the application log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&backendURLFlag, "backend", "", "base URL of the scan backend (overrides config/default)")
}
