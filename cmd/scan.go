package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zfrkrc/pentaas-oneclick/analysis"
	"github.com/zfrkrc/pentaas-oneclick/config"
	"github.com/zfrkrc/pentaas-oneclick/core"
	"github.com/zfrkrc/pentaas-oneclick/logger"
	"github.com/zfrkrc/pentaas-oneclick/models"
	"github.com/zfrkrc/pentaas-oneclick/report"
	"github.com/zfrkrc/pentaas-oneclick/storage"
)

// --- Flags ---
var (
	scanModeFlag      string
	scanTokenFlag     string
	scanRequesterFlag string
	scanOutDirFlag    string
	scanNoExportFlag  bool
	scanArchiveFlag   bool
	scanAnalyzeFlag   bool
	scanIntervalFlag  int
	scanTimeoutFlag   int
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Run one supervised scan against a target",
	Long: `Submits the target to the scan backend and supervises the job until it
completes or fails: progress is polled on a fixed cadence, partial findings
are aggregated as they appear, and the finished scan is exported as a CSV
report.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := args[0]
		logger.Info("Executing 'scan' command for target '%s' (mode %s)", target, scanModeFlag)

		token := scanTokenFlag
		if token == "" {
			token = os.Getenv("PENTAAS_VERIFICATION_TOKEN")
		}
		requesterID := scanRequesterFlag
		if requesterID == "" {
			requesterID = config.AppConfig.Requester.ID
		}

		sessionCfg := core.SessionConfig{
			PollInterval:   time.Duration(config.AppConfig.Poll.IntervalSeconds) * time.Second,
			SessionTimeout: time.Duration(config.AppConfig.Poll.SessionTimeoutSeconds) * time.Second,
			StepPercent:    config.AppConfig.Poll.StepPercent,
		}
		if scanIntervalFlag > 0 {
			sessionCfg.PollInterval = time.Duration(scanIntervalFlag) * time.Second
		}
		if scanTimeoutFlag > 0 {
			sessionCfg.SessionTimeout = time.Duration(scanTimeoutFlag) * time.Second
		}

		// Ctrl-C cancels the session; in-flight responses for the old job are
		// discarded, not applied.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session := core.NewSession(newBackendClient(), core.NewPlainSink(os.Stdout), nil, sessionCfg)
		result, err := session.Run(ctx, target, scanModeFlag, token, requesterID)
		if err != nil {
			fmt.Fprintln(os.Stderr, core.UserMessage(err))
			logger.Error("Scan command failed: %v", err)
			os.Exit(1)
		}

		printResultSummary(result, session.Quota())

		if scanNoExportFlag {
			return
		}

		outDir := scanOutDirFlag
		if outDir == "" {
			outDir = config.AppConfig.Report.Dir
		}
		path, err := report.Write(result, outDir)
		if err != nil {
			// Export failure does not invalidate the completed scan.
			fmt.Fprintf(os.Stderr, "Report export failed: %v\n", err)
			logger.Error("Report export failed: %v", err)
			os.Exit(1)
		}
		fmt.Printf("\nReport written to %s\n", path)

		if scanArchiveFlag || config.AppConfig.Archive.Enabled {
			archiveReport(ctx, path)
		}
		if scanAnalyzeFlag || config.AppConfig.Analysis.Enabled {
			analyzeResult(ctx, result)
		}
	},
}

func printResultSummary(result *models.ScanResult, quota models.QuotaState) {
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tCOUNT")
	for _, sc := range result.SeverityCounts {
		fmt.Fprintf(w, "%s\t%d\n", sc.Severity, sc.Count)
	}
	w.Flush()
	fmt.Println()
	fmt.Println(core.RiskSummary(result))
	if quota.Limit > 0 {
		fmt.Printf("Scans remaining today: %d of %d\n", quota.Remaining, quota.Limit)
	}
}

func archiveReport(ctx context.Context, path string) {
	archCfg := config.AppConfig.Archive
	if archCfg.Endpoint == "" || archCfg.Bucket == "" {
		fmt.Fprintln(os.Stderr, "Archive requested but archive.endpoint/bucket are not configured; skipping.")
		return
	}
	archive, err := storage.New(ctx, archCfg.Endpoint, archCfg.Region, archCfg.Bucket, archCfg.AccessKey, archCfg.SecretKey, archCfg.UseSSL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report archive unavailable: %v\n", err)
		logger.Error("Report archive connect failed: %v", err)
		return
	}
	url, err := archive.Upload(ctx, path, fmt.Sprintf("reports/%s", fileBase(path)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report archive upload failed: %v\n", err)
		logger.Error("Report archive upload failed: %v", err)
		return
	}
	fmt.Printf("Report archived at %s\n", url)
}

func analyzeResult(ctx context.Context, result *models.ScanResult) {
	analyzer := analysis.NewAnalyzer(config.AppConfig.Analysis.APIKey, config.AppConfig.Analysis.Model)
	if analyzer == nil {
		fmt.Printf("\nAssessment (offline): %s\n", analysis.Heuristic(result))
		return
	}
	assessment, err := analyzer.Analyze(ctx, report.Build(result))
	if err != nil {
		fmt.Fprintf(os.Stderr, "AI assessment failed: %v\n", err)
		logger.Error("AI assessment failed: %v", err)
		fmt.Printf("\nAssessment (offline): %s\n", analysis.Heuristic(result))
		return
	}
	fmt.Printf("\nAssessment:\n%s\n", assessment)
}

func fileBase(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func init() {
	scanCmd.Flags().StringVarP(&scanModeFlag, "mode", "m", "white", "scan mode: white (passive), gray (active), black (exploit)")
	scanCmd.Flags().StringVar(&scanTokenFlag, "token", "", "verification token (defaults to PENTAAS_VERIFICATION_TOKEN)")
	scanCmd.Flags().StringVar(&scanRequesterFlag, "requester", "", "requester id (overrides config)")
	scanCmd.Flags().StringVarP(&scanOutDirFlag, "out", "o", "", "directory for the exported report (overrides config)")
	scanCmd.Flags().BoolVar(&scanNoExportFlag, "no-export", false, "skip report export")
	scanCmd.Flags().BoolVar(&scanArchiveFlag, "archive", false, "upload the exported report to the configured object store")
	scanCmd.Flags().BoolVar(&scanAnalyzeFlag, "analyze", false, "produce an assessment of the finished scan")
	scanCmd.Flags().IntVar(&scanIntervalFlag, "interval", 0, "poll interval in seconds (overrides config)")
	scanCmd.Flags().IntVar(&scanTimeoutFlag, "timeout", 0, "session timeout in seconds (overrides config)")
	rootCmd.AddCommand(scanCmd)
}
