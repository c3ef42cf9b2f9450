package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/recruitai/internal/location"
	"github.com/spigell/recruitai/internal/report"
	"github.com/spigell/recruitai/internal/server"
	"github.com/spigell/recruitai/internal/summary"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "address to listen on (default :8080)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger()
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

	gate, err := newGate(config.Admin, logger)
	if err != nil {
		logger.Fatal("loading admin secret", zap.Error(err))
	}

	reports, err := report.NewGenerator(client, ledger, logger)
	if err != nil {
		logger.Fatal("creating report generator", zap.Error(err))
	}

	srv, err := server.New(*config.Server, server.Deps{
		Job:      jobCfg,
		Chat:     client,
		Quota:    ledger,
		Location: location.NewFetcher(client, ledger, logger),
		Reports:  reports,
		Summary:  summary.NewWriter(client, ledger, logger),
		Gate:     gate,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("creating http server", zap.Error(err))
	}

	info := buildInfo()
	logger.Info("starting the recruitai api", zap.String("version", info.Version), zap.String("commit", info.Revision))

	if err := srv.Run(ctx); err != nil {
		logger.Error("http server stopped", zap.Error(err))
		return
	}

	logger.Info("http server stopped")
}
