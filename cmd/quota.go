package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zfrkrc/pentaas-oneclick/config"
	"github.com/zfrkrc/pentaas-oneclick/logger"
)

var quotaRequesterFlag string

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show the requester's remaining scan budget",
	Run: func(cmd *cobra.Command, args []string) {
		requesterID := quotaRequesterFlag
		if requesterID == "" {
			requesterID = config.AppConfig.Requester.ID
		}
		if requesterID == "" {
			fmt.Fprintln(os.Stderr, "No requester id configured; set requester.id or pass --requester.")
			os.Exit(1)
		}

		quota, err := newBackendClient().FetchQuota(context.Background(), requesterID)
		if err != nil {
			logger.Error("Failed to fetch quota: %v", err)
			fmt.Fprintf(os.Stderr, "Failed to fetch quota: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "USED\tLIMIT\tREMAINING")
		fmt.Fprintf(w, "%d\t%d\t%d\n", quota.Used, quota.Limit, quota.Remaining)
		w.Flush()
	},
}

func init() {
	quotaCmd.Flags().StringVar(&quotaRequesterFlag, "requester", "", "requester id (overrides config)")
	rootCmd.AddCommand(quotaCmd)
}
