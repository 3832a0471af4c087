package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"testing"
	"time"

	"hindsight/internal/config"

	"github.com/charmbracelet/ssh"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

func TestMainBootstrap(t *testing.T) {
	restore := stubSSHDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestFingerprintAllowlist(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	fp := gossh.FingerprintSHA256(key)

	if !newFingerprintAllowlist(nil).permits(fp) {
		t.Fatal("empty allowlist should accept every key")
	}

	bare := fp[len("SHA256:"):]
	allow := newFingerprintAllowlist([]string{" " + bare + " ", ""})
	if allow.open() || !allow.permits(fp) {
		t.Fatal("fingerprint without prefix should be normalized and accepted")
	}
	if newFingerprintAllowlist([]string{"SHA256:someone-else"}).permits(fp) {
		t.Fatal("unknown fingerprint must be rejected")
	}
}

func stubSSHDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origSetupLogging := setupLoggingFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			BinanceBaseURL: "http://127.0.0.1:1",
			ForceSimulated: true,
			SSHPort:        2222,
			SSHHostKeyPath: ".ssh/test_key",
		}
	}
	setupLoggingFunc = func(string, string) error { return nil }
	initPostgresFunc = func(context.Context, string) error { return nil }
	initRedisFunc = func(context.Context, string) error { return nil }
	initTracerFunc = func(ctx context.Context, name string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		return nil, nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		setupLoggingFunc = origSetupLogging
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}
