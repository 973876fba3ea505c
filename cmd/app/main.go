package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    "github.com/local/imagegen/internal/catalog"
    cfgpkg "github.com/local/imagegen/internal/config"
    "github.com/local/imagegen/internal/design"
    logpkg "github.com/local/imagegen/internal/logger"
    "github.com/local/imagegen/internal/metrics"
    "github.com/local/imagegen/internal/provider"
    "github.com/local/imagegen/internal/storage"
    "github.com/local/imagegen/internal/store"
    web "github.com/local/imagegen/internal/web"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    // Init logging
    _ = logpkg.Init(logpkg.Options{
        Level: cfg.Logging.Level,
        Pretty: cfg.Logging.Pretty,
        File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB,
        MaxBackups: cfg.Logging.MaxBackups,
        MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress,
        SendToAxiom: cfg.Axiom.Send && cfg.Axiom.APIKey != "",
        AxiomAPIKey: cfg.Axiom.APIKey,
        AxiomOrgID: cfg.Axiom.OrgID,
        AxiomDataset: cfg.Axiom.Dataset,
        AxiomFlush: cfg.Axiom.FlushInterval,
    })
    defer logpkg.Close()

    metrics.Init()

    // Providers share one retry policy; each backend classifies its own errors.
    policy := provider.Policy{
        Attempts:  cfg.Generation.RetryAttempts,
        BaseDelay: cfg.Generation.RetryDelay,
    }
    disp := provider.NewDispatcher([]provider.Registration{
        {Class: provider.ClassGateway, Provider: provider.WithRetry(provider.NewGateway(provider.GatewayConfig{
            BaseURL:  cfg.Gateway.URL,
            Provider: cfg.Gateway.Provider,
            Model:    cfg.Gateway.Model,
            Enabled:  cfg.Gateway.Enabled,
            Timeout:  cfg.Generation.Timeout,
        }), policy)},
        {Class: provider.ClassFirstParty, Provider: provider.WithRetry(provider.NewOpenAI(provider.OpenAIConfig{
            URL:     cfg.OpenAI.URL,
            APIKey:  cfg.OpenAI.APIKey,
            Model:   cfg.OpenAI.Model,
            Timeout: cfg.Generation.Timeout,
        }), policy)},
        {Class: provider.ClassSecondParty, Provider: provider.WithRetry(provider.NewStability(provider.StabilityConfig{
            APIKey:  cfg.Stability.APIKey,
            Model:   cfg.Stability.Model,
            Timeout: cfg.Generation.Timeout,
        }), policy)},
        {Class: provider.ClassMock, Provider: provider.WithRetry(provider.NewMock(), policy)},
    })
    if !disp.HasLiveRealProvider() {
        log.Warn().Msg("no real AI provider available, all generations will use the mock")
    }

    // Status store: Redis when configured, otherwise in-memory.
    var statuses store.StatusStore
    if cfg.RedisURL != "" {
        rs, err := store.NewRedisStatus(cfg.RedisURL)
        if err != nil {
            log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory status store")
            statuses = store.NewMemoryStatus()
        } else {
            statuses = rs
        }
    } else {
        statuses = store.NewMemoryStatus()
    }
    defer statuses.Close()

    // Image storage
    var images storage.ImageStore
    if cfg.Storage.Backend == "s3" {
        s3s, err := storage.NewS3Store(context.Background(), cfg.Storage.S3Bucket, cfg.Storage.EncryptionPassword)
        if err != nil {
            log.Fatal().Err(err).Msg("failed to init S3 storage")
        }
        images = s3s
    } else {
        ls, err := storage.NewLocalStore(cfg.Storage.LocalDir)
        if err != nil {
            log.Fatal().Err(err).Msg("failed to init local storage")
        }
        images = ls
    }
    log.Info().Str("backend", images.Backend()).Msg("image storage ready")

    svc := design.New(disp, images, statuses)

    mux := http.NewServeMux()
    web.New(svc, disp, catalog.Seed()).RegisterRoutes(mux)
    mux.Handle("/metrics", metrics.Handler())

    srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}

    go func(){
        log.Info().Msgf("HTTP server listening on :%s", cfg.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    _ = srv.Shutdown(ctx)
    fmt.Println("shutdown complete")
}
