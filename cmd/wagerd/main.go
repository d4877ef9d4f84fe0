package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/kapu/chess-wager-go/internal/bank"
	appcfg "github.com/kapu/chess-wager-go/internal/config"
	"github.com/kapu/chess-wager-go/internal/escrow"
	"github.com/kapu/chess-wager-go/internal/obslog"
	"github.com/kapu/chess-wager-go/internal/rules"
	"github.com/kapu/chess-wager-go/internal/server"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	var store escrow.GameStore
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err = escrow.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatalf("redis store init error: %v", err)
		}
	} else {
		obslog.L().Warn("no REDIS_URL configured, using in-memory store")
		store = escrow.NewMemoryStore()
	}

	var executor escrow.TransferExecutor = bank.Noop{}
	var ledger *bank.Ledger
	if cfg.DatabaseURL != "" {
		ledger, err = bank.NewLedger(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("ledger init error: %v", err)
		}
		executor = ledger
	} else {
		obslog.L().Warn("no DATABASE_URL configured, settlement transfers are log-only")
	}

	engine := escrow.NewEngine(store, rules.New(), executor, escrow.CryptoColorSource{}, cfg.WagerDenom)
	srv := server.New(engine)

	httpServer := &fasthttp.Server{
		Handler: srv.Handler,
		Name:    "wagerd",
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe(cfg.ListenAddr)
	}()
	obslog.L().Info("wagerd_listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("denom", cfg.WagerDenom),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		obslog.L().Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			obslog.L().Error("http_server_error", zap.Error(err))
		}
	}

	if err := httpServer.Shutdown(); err != nil {
		obslog.L().Error("http_shutdown_error", zap.Error(err))
	}
	if ledger != nil {
		_ = ledger.Close()
	}
}
