package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zfrkrc/pentaas-oneclick/config"
	"github.com/zfrkrc/pentaas-oneclick/core"
	"github.com/zfrkrc/pentaas-oneclick/logger"
	"github.com/zfrkrc/pentaas-oneclick/models"
	"github.com/zfrkrc/pentaas-oneclick/report"
)

var historyReportOutFlag string

// --- Base Command ---
var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Browse scans recorded by the backend",
	Long:    `The backend owns the scan history; this client only reads it.`,
	Aliases: []string{"scans"},
}

// --- List Subcommand ---
var historyListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List past scans",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		logger.Info("Executing 'history list' command")

		scans, err := newBackendClient().ListScans(context.Background())
		if err != nil {
			logger.Error("Failed to list scans: %v", err)
			fmt.Fprintf(os.Stderr, "Failed to list scans: %v\n", err)
			os.Exit(1)
		}
		if len(scans) == 0 {
			fmt.Println("No scans recorded.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "SCAN ID\tTARGET\tMODE\tSTATUS\tTIMESTAMP")
		for _, entry := range scans {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				entry.ScanID, entry.Target, entry.ScanType, entry.Status, entry.Timestamp)
		}
		w.Flush()
		fmt.Printf("\nTotal: %d scans\n", len(scans))
	},
}

// --- Report Subcommand ---
var historyReportCmd = &cobra.Command{
	Use:   "report <scanId>",
	Short: "Re-export the report of a past scan",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scanID := args[0]
		logger.Info("Executing 'history report' command for scan %s", scanID)
		client := newBackendClient()
		ctx := context.Background()

		// The results endpoint carries findings only; target and mode come
		// from the history listing.
		scans, err := client.ListScans(ctx)
		if err != nil {
			logger.Error("Failed to list scans: %v", err)
			fmt.Fprintf(os.Stderr, "Failed to list scans: %v\n", err)
			os.Exit(1)
		}
		var entry *models.HistoryEntry
		for i := range scans {
			if scans[i].ScanID == scanID {
				entry = &scans[i]
				break
			}
		}
		if entry == nil {
			fmt.Fprintf(os.Stderr, "Scan %s not found in history.\n", scanID)
			os.Exit(1)
		}

		resultsResp, err := client.FetchResults(ctx, scanID)
		if err != nil {
			logger.Error("Failed to fetch results for scan %s: %v", scanID, err)
			fmt.Fprintf(os.Stderr, "Failed to fetch results: %v\n", err)
			os.Exit(1)
		}

		completedAt, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			completedAt = time.Now()
		}
		result := &models.ScanResult{
			Target:         entry.Target,
			Mode:           models.ScanMode(entry.ScanType),
			SeverityCounts: core.SummarizeFindings(resultsResp.Findings),
			Findings:       resultsResp.Findings,
			CompletedAt:    completedAt,
		}

		outDir := historyReportOutFlag
		if outDir == "" {
			outDir = config.AppConfig.Report.Dir
		}
		path, err := report.Write(result, outDir)
		if err != nil {
			logger.Error("Report export failed for scan %s: %v", scanID, err)
			fmt.Fprintf(os.Stderr, "Report export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s\n", path)
	},
}

func init() {
	historyReportCmd.Flags().StringVarP(&historyReportOutFlag, "out", "o", "", "directory for the exported report (overrides config)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyReportCmd)
	rootCmd.AddCommand(historyCmd)
}
