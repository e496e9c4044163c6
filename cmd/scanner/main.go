// Command scanner polls the pump.fun new-token feed, detects momentum on
// tokens it has seen before and alerts a Telegram chat.
//
// Usage:
//
//	scanner --config scanner.yaml
//	scanner --setup   (interactive config wizard)
//
// Required environment variables (a .env file is honored):
//
//	MORALIS_API_KEY, TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/armpit-symphony/pump-me-fun/config"
	"github.com/armpit-symphony/pump-me-fun/internal"
	"github.com/armpit-symphony/pump-me-fun/internal/clients"
	"github.com/armpit-symphony/pump-me-fun/internal/services/activity"
	"github.com/armpit-symphony/pump-me-fun/internal/setup"
	"github.com/armpit-symphony/pump-me-fun/internal/storage/alertlog"
	"github.com/armpit-symphony/pump-me-fun/internal/storage/state"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	runSetup := flag.Bool("setup", false, "run the interactive config wizard and exit")
	flag.Parse()

	if *runSetup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	// .env is optional, real env vars win
	_ = godotenv.Load()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	creds, err := config.CredentialsFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := state.NewStore(conf.StateDir, logger)
	if err != nil {
		logger.Fatal("failed to open state store", zap.Error(err))
	}

	alertLog, err := alertlog.NewStore(filepath.Join(conf.StateDir, "alertlog"))
	if err != nil {
		logger.Fatal("failed to open alert log", zap.Error(err))
	}
	defer alertLog.Close()

	feed := clients.NewMoralisClient(creds.MoralisAPIKey, logger)
	fetcher := activity.NewFetcher(clients.NewDexScreenerClient(),
		conf.ActivityCacheTTL, conf.EnrichmentConcurrency, logger)
	notifier := clients.NewTelegramNotifier(creds.TelegramBotToken, creds.TelegramChatID)

	scanner := internal.NewScanner(conf, logger, feed, fetcher, notifier, store, alertLog)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := scanner.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("scanner stopped unexpectedly", zap.Error(err))
	}

	logger.Info("shut down gracefully")
}
