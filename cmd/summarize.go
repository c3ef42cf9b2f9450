package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spigell/recruitai/internal/summary"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print a short candidate card pitch for the configured job",
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

		jobCfg, err := buildJob(config)
		if err != nil {
			logger.Fatal("validating job configuration", zap.Error(err))
		}

		ledger, release, err := newLedger(ctx, config.Quota, logger)
		if err != nil {
			logger.Fatal("creating quota ledger", zap.Error(err))
		}
		defer release()

		client, err := newGeminiClient(ctx, config.AI, logger)
		if err != nil {
			logger.Fatal("creating gemini client", zap.Error(err))
		}

		text, err := summary.NewWriter(client, ledger, logger).
			Generate(ctx, jobCfg.JobDescription, summary.Additional(jobCfg), jobCfg.Language)
		if err != nil {
			logger.Fatal("generating job summary", zap.Error(err))
		}

		if text == "" {
			logger.Warn("job description is empty, nothing to summarize")
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), text)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
