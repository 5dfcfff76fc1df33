package main

import (
	"context"
	"encoding/hex"
	"flag"
	"math/big"
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
	"github.com/satsurance/pool/native/claim"
	nativecommon "github.com/satsurance/pool/native/common"
	"github.com/satsurance/pool/observability/logging"
	telemetry "github.com/satsurance/pool/observability/otel"
)

func main() {
	configFile := flag.String("config", "./claimengine.toml", "Path to the Claim Engine configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("CLAIMENGINE_ENV"))
	logger := logging.Setup("claimengine", env)

	cfg, err := config.LoadClaimConfig(*configFile)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := config.ValidateClaimConfig(cfg); err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "claimengine",
		Environment: env,
	})
	if err != nil {
		logger.Error("failed to init telemetry", "err", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	ownOwner, err := crypto.DecodeAddress(cfg.OwnAccountOwner)
	if err != nil {
		logger.Error("invalid OwnAccountOwner", "err", err)
		os.Exit(1)
	}
	owner, err := crypto.DecodeAddress(cfg.OwnerPrincipal)
	if err != nil {
		logger.Error("invalid OwnerPrincipal", "err", err)
		os.Exit(1)
	}
	executorPrincipal, err := crypto.DecodeAddress(cfg.ExecutorPrincipal)
	if err != nil {
		logger.Error("invalid ExecutorPrincipal", "err", err)
		os.Exit(1)
	}
	jwtSecret, err := hex.DecodeString(cfg.JWTSecretHex)
	if err != nil {
		logger.Error("invalid JWTSecretHex", "err", err)
		os.Exit(1)
	}
	claimDeposit, ok := new(big.Int).SetString(cfg.ClaimDepositAtomic, 10)
	if !ok {
		logger.Error("invalid ClaimDepositAtomic")
		os.Exit(1)
	}

	gov := claim.NewGovernance(owner, executorPrincipal, cfg.LedgerCanisterID)
	gov.ApprovalPeriod = cfg.ApprovalPeriodSeconds
	gov.ExecutionTimeout = cfg.ExecutionTimeoutSeconds
	gov.ClaimDeposit = claimDeposit

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		logger.Error("failed to create data dir", "err", err)
		os.Exit(1)
	}
	snapshotPath := filepath.Join(cfg.DataDir, "snapshot.json")

	store := claim.NewMemStore(gov)
	if err := store.LoadSnapshot(snapshotPath); err != nil {
		logger.Error("failed to load snapshot", "err", err)
		os.Exit(1)
	}

	engine := claim.NewEngine(ledger.Account{Owner: ownOwner})
	engine.SetState(store)
	engine.SetLedger(ledger.NewInMemory(big.NewInt(10)))
	engine.SetClock(nativecommon.SystemClock{})
	engine.SetSlashCaller(&claim.HTTPSlashCaller{
		BaseURL:           cfg.PoolEngineAddress,
		ExecutorPrincipal: cfg.ExecutorPrincipal,
		JWTSecret:         jwtSecret,
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddress, Handler: metricsMux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "err", err)
		}
	}()

	rpcServer := &http.Server{Addr: cfg.ListenAddress, Handler: engine.Handlers()}
	go func() {
		if err := rpcServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("rpc server failed", "err", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("claimengine started", "listen", cfg.ListenAddress, "metrics", cfg.MetricsAddress)

	<-ctx.Done()
	logger.Info("claimengine shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = rpcServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)
	shutdownCancel()
	if err := store.SaveSnapshot(snapshotPath); err != nil {
		logger.Error("failed to save snapshot", "err", err)
	}
}
