package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zfrkrc/pentaas-oneclick/logger"
)

var logsCmd = &cobra.Command{
	Use:   "logs <scanId>",
	Short: "Print the backend's progress log for a scan",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scanID := args[0]
		logger.Info("Executing 'logs' command for scan %s", scanID)

		lines, err := newBackendClient().FetchLogs(context.Background(), scanID)
		if err != nil {
			logger.Error("Failed to fetch logs for scan %s: %v", scanID, err)
			fmt.Fprintf(os.Stderr, "Failed to fetch logs: %v\n", err)
			os.Exit(1)
		}
		if len(lines) == 0 {
			fmt.Println("No log lines recorded for this scan.")
			return
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
