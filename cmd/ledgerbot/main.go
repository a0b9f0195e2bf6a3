package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"ledgerbot/internal/backend"
	"ledgerbot/internal/bot"
	"ledgerbot/internal/cli"
	"ledgerbot/internal/config"
	apphttp "ledgerbot/internal/http"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/log"
	"ledgerbot/internal/telegram"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateBot)
	logger := cli.SetupLogger(cfg)

	logger.Info("Starting ledgerbot", "backend", cfg.DataBackend, "port", cfg.Port, "timezone", cfg.Timezone)

	prices := cli.LoadCatalog(logger, cfg.CatalogFile)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := backend.Connect(connectCtx, backendCfg, logger.Logger.With(log.FieldComponent, log.ComponentBackend))
	cancelConnect()
	if err != nil {
		logger.Error("Failed to initialize row store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	closeStore := func() {
		if res.Cleanup == nil {
			return
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Row store cleanup failed", log.FieldError, err)
		}
	}

	book := ledger.New(res.Store,
		ledger.WithTimeout(cfg.StoreTimeout),
		ledger.WithReadCache(cfg.ReadCacheTTL),
		ledger.WithLogger(logger.WithComponent(log.ComponentLedger)))

	controller := bot.NewController(book, prices,
		bot.WithLocation(cfg.Location()),
		bot.WithLogger(logger.WithComponent(log.ComponentBot)))

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Error("Failed to connect to Telegram", log.FieldError, err)
		closeStore()
		os.Exit(1)
	}
	logger.Info("Authorized on Telegram", "account", api.Self.UserName)
	tg := telegram.New(api, controller,
		telegram.WithRateLimit(cfg.RateLimit, cfg.RateWindow),
		telegram.WithLogger(logger))

	srv := apphttp.NewServer(cfg.HTTPAddr(), apphttp.Deps{
		Ledger:     book,
		Catalog:    prices,
		Ready:      res.Ready,
		Logger:     logger,
		Location:   cfg.Location(),
		RateLimit:  cfg.RateLimit,
		RateWindow: cfg.RateWindow,
		APIToken:   cfg.APIToken,
	})

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tg.Run(ctx)
	})
	g.Go(func() error {
		logger.Info("HTTP API listening", "addr", srv.Addr, "token_required", cfg.APIToken != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	closeStore()
	if err != nil {
		logger.Error("ledgerbot stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("ledgerbot shutdown complete")
}
