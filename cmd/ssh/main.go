package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"hindsight/internal/app"
	"hindsight/internal/cache"
	"hindsight/internal/config"
	"hindsight/internal/db"
	"hindsight/internal/tui"
	applog "hindsight/pkg/logging"
	"hindsight/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

const serviceName = "hindsight-ssh"

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	setupLoggingFunc  = applog.Setup
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	newServicesFunc   = app.NewServices
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	if err := setupLoggingFunc(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Warn("invalid logging config, using defaults", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	allowed := newFingerprintAllowlist(cfg.SSHAllowedFingerprints)
	if allowed.open() {
		log.Warn("SSH_ALLOWED_FINGERPRINTS not set, accepting any public key")
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)
	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			if !allowed.permits(fingerprint) {
				log.Warn("SSH auth denied", "user", ctx.User(), "fingerprint", fingerprint)
				return false
			}
			log.Info("SSH auth accepted", "user", ctx.User(), "fingerprint", fingerprint)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewAppModel(svc.Investment, s.User())
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Info("SSH server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Print("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Print("SSH server exited")
}

// fingerprintAllowlist holds SHA256 key fingerprints. An empty list lets
// every key in.
type fingerprintAllowlist map[string]struct{}

func newFingerprintAllowlist(fingerprints []string) fingerprintAllowlist {
	out := make(fingerprintAllowlist, len(fingerprints))
	for _, fp := range fingerprints {
		fp = strings.TrimSpace(fp)
		if fp == "" {
			continue
		}
		if !strings.HasPrefix(fp, "SHA256:") {
			fp = "SHA256:" + fp
		}
		out[fp] = struct{}{}
	}
	return out
}

func (a fingerprintAllowlist) open() bool { return len(a) == 0 }

func (a fingerprintAllowlist) permits(fingerprint string) bool {
	if a.open() {
		return true
	}
	_, ok := a[fingerprint]
	return ok
}
