package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "keypulse.log")
	logger, err := New(Options{Level: "debug", Path: path})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	logger.Info("hello")
	if err := logger.Sync(); err != nil {
		t.Fatalf("failed to sync logger: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log output in file")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
