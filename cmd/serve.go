package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sota-ai/sotanews/internal/aggregator"
	"github.com/sota-ai/sotanews/internal/cache"
	"github.com/sota-ai/sotanews/internal/capability"
	"github.com/sota-ai/sotanews/internal/config"
	"github.com/sota-ai/sotanews/internal/logging"
	"github.com/sota-ai/sotanews/internal/server"
	"github.com/sota-ai/sotanews/internal/store"
	"github.com/sota-ai/sotanews/internal/telegram"
)

var flagDBPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the aggregation daemon and HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagDBPath, "db", "", "path to the sqlite database")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbPath := flagDBPath
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	articles, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer articles.Close()

	seen := cache.New(cfg.CacheRetentionDuration())
	defer seen.Close()

	generator, coll, engine := buildGenerator(cfg, seen, articles, logger)

	capabilities := capability.NewServer(logger, cfg.CapabilityDelayDuration())

	var bot *telegram.Bot
	if cfg.TelegramEnabled() {
		bot, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			return err
		}
		logger.Info("telegram broadcasting enabled", zap.Int64("chat", cfg.TelegramChatID))
	}

	httpServer := server.New(cfg.ServerPort, generator, capabilities, articles, seen, logger)

	app := aggregator.New(cfg, coll, engine, generator, capabilities, httpServer, articles, bot, logger)

	logger.Info("starting sotanews", zap.String("version", version))
	if err := app.Run(ctx); err != nil {
		return err
	}
	logger.Info("sotanews stopped gracefully")
	return nil
}
