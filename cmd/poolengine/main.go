package main

import (
	"context"
	"encoding/hex"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satsurance/pool/config"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
	nativecommon "github.com/satsurance/pool/native/common"
	"github.com/satsurance/pool/native/pool"
	"github.com/satsurance/pool/observability/logging"
	telemetry "github.com/satsurance/pool/observability/otel"
)

func main() {
	configFile := flag.String("config", "./poolengine.toml", "Path to the Pool Engine configuration file")
	tickInterval := flag.Duration("tick", 10*time.Second, "Interval between process_episodes ticks")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("POOLENGINE_ENV"))
	logger := logging.Setup("poolengine", env)

	cfg, err := config.LoadPoolConfig(*configFile)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := config.ValidatePoolConfig(cfg); err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "poolengine",
		Environment: env,
	})
	if err != nil {
		logger.Error("failed to init telemetry", "err", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	mainOwner, err := crypto.DecodeAddress(cfg.MainAccountOwner)
	if err != nil {
		logger.Error("invalid MainAccountOwner", "err", err)
		os.Exit(1)
	}
	executorPrincipal, err := crypto.DecodeAddress(cfg.ExecutorPrincipal)
	if err != nil {
		logger.Error("invalid ExecutorPrincipal", "err", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		logger.Error("failed to create data dir", "err", err)
		os.Exit(1)
	}
	snapshotPath := filepath.Join(cfg.DataDir, "snapshot.json")

	store := pool.NewMemStore()
	if err := store.LoadSnapshot(snapshotPath); err != nil {
		logger.Error("failed to load snapshot", "err", err)
		os.Exit(1)
	}

	engine := pool.NewEngine(ledger.Account{Owner: mainOwner})
	engine.SetState(store)
	engine.SetLedger(ledger.NewInMemory(pool.TransferFee))
	engine.SetClock(nativecommon.SystemClock{})
	engine.SetExecutorPrincipal(executorPrincipal)

	jwtSecret, err := hex.DecodeString(cfg.JWTSecretHex)
	if err != nil {
		logger.Error("invalid JWTSecretHex", "err", err)
		os.Exit(1)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddress, Handler: metricsMux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "err", err)
		}
	}()

	rpcMux := http.NewServeMux()
	rpcMux.HandleFunc("/slash", pool.SlashHandler(engine, jwtSecret, cfg.ExecutorPrincipal, nativecommon.SystemClock{}))
	rpcServer := &http.Server{Addr: cfg.ListenAddress, Handler: rpcMux}
	go func() {
		if err := rpcServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("rpc server failed", "err", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	logger.Info("poolengine started", "listen", cfg.ListenAddress, "metrics", cfg.MetricsAddress)

	for {
		select {
		case <-ctx.Done():
			logger.Info("poolengine shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = rpcServer.Shutdown(shutdownCtx)
			_ = metricsServer.Shutdown(shutdownCtx)
			shutdownCancel()
			if err := store.SaveSnapshot(snapshotPath); err != nil {
				logger.Error("failed to save snapshot", "err", err)
			}
			return
		case <-ticker.C:
			if err := engine.Tick(); err != nil {
				logger.Warn("episode tick failed", "err", err)
			}
		}
	}
}
