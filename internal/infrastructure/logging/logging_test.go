package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"token-auth/internal/infrastructure/config"

	"github.com/sirupsen/logrus"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithOutput(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", logger.GetLevel())
	}

	logger.WithField("component", "test").Info("hello")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q", buf.String())
	}
	if entry["msg"] != "hello" || entry["component"] != "test" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithOutput(config.LogConfig{}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level, got %v", logger.GetLevel())
	}
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered, got %q", buf.String())
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := New(config.LogConfig{Format: "xml"}); err == nil {
		t.Error("expected error for bad format")
	}
}
