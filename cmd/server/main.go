package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hindsight/internal/app"
	"hindsight/internal/bot"
	"hindsight/internal/cache"
	"hindsight/internal/config"
	"hindsight/internal/db"
	"hindsight/internal/handler"
	"hindsight/internal/job"
	"hindsight/pkg/logging"
	"hindsight/pkg/tracing"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "hindsight/docs"
)

const serviceName = "hindsight"

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	setupLoggingFunc       = logging.Setup
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newServicesFunc        = app.NewServices
	newCacheWarmerFunc     = job.NewCacheWarmer
	startWarmerFunc        = func(w *job.CacheWarmer, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           hindsight API
// @version         1.0
// @description     What would a past crypto investment be worth today. Prices come from Binance with a simulated fallback.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	if err := setupLoggingFunc(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Warn("invalid logging config, using defaults", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres and Redis are optional
	if err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
		log.Warn("postgres unavailable, calculation log disabled", "err", err)
	}
	defer db.Close()
	if err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
		log.Warn("redis unavailable, price cache disabled", "err", err)
	}

	tp, tracer, err := initTracerFunc(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	svc, err := newServicesFunc(tracer, cfg, cache.Client, db.Pool)
	if err != nil {
		log.Fatalf("failed to build services: %v", err)
	}
	if svc.Calculations != nil {
		if err := svc.Calculations.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	if cache.Client != nil && !cfg.ForceSimulated {
		warmer := newCacheWarmerFunc(tracer, svc.Prices, svc.Market, svc.WarmSymbols(), cfg.CacheWarmSecs)
		startWarmerFunc(warmer, ctx)
	}

	if err := startTelegramBotFunc(cfg.TelegramBotToken, bot.New(svc.Prices, svc.Investment, svc.Charts)); err != nil {
		log.Warn("telegram bot disabled", "err", err)
	}

	h := newHandlerFunc(tracer, svc.History, svc.Prices, svc.Market, svc.Investment, svc.Charts)
	if svc.Calculations != nil {
		h.SetCalculationLister(svc.Calculations)
	}

	r := newRouterFunc()
	r.Use(gin.Recovery(), handler.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(otelgin.Middleware(serviceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr, "simulated", cfg.ForceSimulated)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Print("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", "err", err)
	}

	log.Print("Server exiting")
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	c.ExposeHeaders = []string{handler.RequestIDHeader, "X-Simulated"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
