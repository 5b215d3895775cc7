package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sportsledger/config"
	"sportsledger/database"
	"sportsledger/jobs"
	"sportsledger/logger"
	"sportsledger/providers"
	"sportsledger/providers/saba"
	"sportsledger/providers/sbo"
	"sportsledger/routes"
	"sportsledger/services"
	"sportsledger/store"
	"sportsledger/wallet"

	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.FatalGlobal().Err(err).Msg("invalid config")
	}

	closer, err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("init logger")
	}
	defer closer.Close()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("connect database")
	}

	players := store.NewPlayerStore(db)
	wagers := store.NewWagerStore(db)
	walletClient := wallet.NewClient(cfg.Wallet.BaseURL, cfg.Wallet.APIKey, cfg.Wallet.Timeout)

	sabaClient := saba.NewClient(cfg.Saba)
	sboClient := sbo.NewClient(cfg.Sbo)

	launchers := providers.NewRegistry()
	launchers.Register(saba.Name, sabaClient)
	launchers.Register(sbo.Name, sboClient)

	newLedger := func(p config.ProviderConfig, detail providers.BetDetailer) *services.Ledger {
		return services.NewLedger(services.LedgerOptions{
			Provider: p,
			Wagers:   wagers,
			Players:  players,
			Wallet:   walletClient,
			Detail:   detail,
			Location: cfg.Ledger.Location,
		})
	}
	report := services.NewReport(wagers, map[string]services.DetailSource{
		saba.Name: {Config: cfg.Saba, Detailer: sabaClient},
		sbo.Name:  {Config: cfg.Sbo, Detailer: sboClient},
	}, cfg.Ledger.Fanout)

	app := fiber.New(fiber.Config{
		AppName:      "sportsledger",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	routes.Setup(app, routes.Deps{
		Config:    cfg,
		Players:   players,
		Saba:      newLedger(cfg.Saba, sabaClient),
		Sbo:       newLedger(cfg.Sbo, sboClient),
		Report:    report,
		Launchers: launchers,
	})

	scheduler, err := jobs.Start(jobs.NewResendJob(wagers, sboClient, cfg.Sbo, cfg.SboJob), cfg.SboJob.ResendSpec)
	if err != nil {
		logger.FatalGlobal().Err(err).Str("spec", cfg.SboJob.ResendSpec).Msg("schedule sbo resend")
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.InfoGlobal().Str("addr", addr).Str("env", cfg.Server.Env).Msg("server running")
		if err := app.Listen(addr); err != nil {
			logger.FatalGlobal().Err(err).Msg("failed to start server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.InfoGlobal().Msg("gracefully shutting down")
	<-scheduler.Stop().Done()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.ErrorGlobal().Err(err).Msg("server forced to shutdown")
	}
	logger.InfoGlobal().Msg("server exited cleanly")
}
