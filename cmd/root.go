package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Receipts microservice",
	Long:  "A payments and receipts service for gateway checkouts, manual UPI payments, receipt delivery and the admin console.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
