package logging

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(log.TextFormatter)
	})

	if err := Setup("debug", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %v", log.GetLevel())
	}

	if err := Setup("", "logfmt"); err != nil {
		t.Fatalf("empty level should keep current level: %v", err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Fatal("level changed on empty input")
	}
}

func TestSetupRejectsBadInput(t *testing.T) {
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(log.TextFormatter)
	})

	if err := Setup("loud", "text"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := Setup("info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
