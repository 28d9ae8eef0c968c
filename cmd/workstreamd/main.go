package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"workstream/pkg/api"
	"workstream/pkg/banner"
	"workstream/pkg/config"
	"workstream/pkg/engine"
	"workstream/pkg/logger"
	"workstream/pkg/maintenance"
	"workstream/pkg/scheduler"
	"workstream/pkg/security"
	"workstream/pkg/state"
	"workstream/pkg/store"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	addrFlag, dbFlag, cfgPath, set := config.ParseCommandFlags()
	cfg, _, err := config.LoadEffective(cfgPath)
	if err != nil {
		logger.Init("info", "text")
		logger.Log.Fatal("config_load_failed", zap.String("path", cfgPath), zap.Error(err))
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	addr := cfg.Addr()
	if set["addr"] && addrFlag != "" {
		addr = addrFlag
	}
	dbPath := cfg.Storage.DBPath
	if set["db"] || dbPath == "" {
		dbPath = dbFlag
	}

	var sealer *security.Sealer
	if cfg.Storage.SealKeyHex != "" {
		sealer, err = security.NewSealer(cfg.Storage.SealKeyHex)
		if err != nil {
			logger.Log.Fatal("seal_key_invalid", zap.Error(err))
		}
	}

	st, err := store.Open(dbPath, sealer)
	if err != nil {
		logger.Log.Fatal("store_open_failed", zap.String("path", dbPath), zap.Error(err))
	}

	stateStore, err := state.Open(st)
	if err != nil {
		logger.Log.Fatal("snapshot_load_failed", zap.Error(err))
	}

	tokenSecret := cfg.Security.TokenSecret
	if tokenSecret == "" {
		tokenSecret = "workstream-dev-secret"
		logger.Log.Warn("token_secret_missing", zap.String("hint", "set WORKSTREAM_TOKEN_SECRET"))
	}

	sched := scheduler.New()
	eng := engine.New(stateStore, sched, tokenSecret, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cancelMaint, err := maintenance.Start(ctx, st, maintenance.Options{
		Enabled:         cfg.Maintenance.Enabled,
		Cron:            cfg.Maintenance.Cron,
		KeepCheckpoints: cfg.Maintenance.KeepCheckpoints,
	})
	if err != nil {
		logger.Log.Fatal("maintenance_start_failed", zap.Error(err))
	}

	secCfg := security.SecConfig{
		AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		RPS:            cfg.Security.RateLimit.RPS,
		Burst:          cfg.Security.RateLimit.Burst,
		BackendKeys:    keySet(cfg.Security.APIKeys.Backend),
		AdminKeys:      keySet(cfg.Security.APIKeys.Admin),
	}
	handler := security.Middleware(secCfg)(api.NewRouter(eng, st))

	var opsSrv interface{ Shutdown() error }
	if cfg.Server.OpsAddress != "" {
		opsSrv = api.StartOps(cfg.Server.OpsAddress, api.OpsHandler(st, sched, stateStore))
	}

	banner.Print(cfg, addr, dbPath, version)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server_started", zap.String("addr", addr), zap.String("version", version))
		if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
			errCh <- srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
		logger.Log.Info("shutdown_signal")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Log.Error("server_failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("server_shutdown_error", zap.Error(err))
	}
	if opsSrv != nil {
		if err := opsSrv.Shutdown(); err != nil {
			logger.Log.Warn("ops_shutdown_error", zap.Error(err))
		}
	}
	cancelMaint()
	sched.Stop()
	if err := st.Close(); err != nil {
		logger.Log.Warn("store_close_error", zap.Error(err))
	}
	logger.Log.Info("server_stopped")
}

func keySet(keys []string) map[string]struct{} {
	if len(keys) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}
