package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Setup(Config{Level: "info", Format: "json", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	log.Debug().Msg("hidden")
	log.Info().Str("symbol", "AAPL").Msg("hello")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["message"] != "hello" || entry["symbol"] != "AAPL" || entry["service"] != "stocklens" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestSetup_Console(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Setup(Config{Level: "debug", Format: "console", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	log.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestSetup_Invalid(t *testing.T) {
	if _, err := Setup(Config{Level: "loud"}); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := Setup(Config{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected error for bad format")
	}
}
