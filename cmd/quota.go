package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spigell/recruitai/internal/ai"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Print the model calls left today per tier",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()

		logger, err := newLogger("stderr")
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		ledger, release, err := newLedger(ctx, config.Quota, logger)
		if err != nil {
			logger.Fatal("creating quota ledger", zap.Error(err))
		}
		defer release()

		for _, tier := range ai.Tiers() {
			limit, err := ledger.Limit(tier)
			if err != nil {
				logger.Fatal("reading quota limit", zap.Error(err))
			}
			left, err := ledger.Remaining(ctx, tier)
			if err != nil {
				logger.Fatal("reading quota state", zap.Error(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d left\n", tier, left, limit)
		}
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}
