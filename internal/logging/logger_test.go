package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/timespent/internal/config"
)

func quietConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	return cfg
}

func TestNewLogger_NoFile(t *testing.T) {
	cfg := quietConfig()
	cfg.LogFile = ""
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
	if l.RunID() == "" {
		t.Error("RunID should be set")
	}
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := quietConfig()
	cfg.LogFile = filepath.Join(dir, "logs", "timespent.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	l.Debug("debug always reaches the file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	for _, want := range []string{`"level":"info"`, "to file", `"level":"debug"`, `"run_id":"` + l.RunID() + `"`} {
		if !bytes.Contains(b, []byte(want)) {
			t.Errorf("log file missing %q: %s", want, string(b))
		}
	}
}

func TestLogger_ConsoleLevels(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := quietConfig()
	l, err := newLogger(&stdout, &stderr, &cfg)
	if err != nil {
		t.Fatal(err)
	}

	l.Info("hello %d", 1)
	l.Success("finished")
	l.Warn("careful")
	l.Error("broken")
	l.Debug("hidden without verbose")

	out := stdout.String()
	for _, want := range []string{"[INFO]", "hello 1", "[SUCCESS]", "finished", "[WARN]", "careful"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "broken") {
		t.Errorf("errors should go to stderr only:\n%s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug should be suppressed without verbose:\n%s", out)
	}
	if !strings.Contains(stderr.String(), "[ERROR]") || !strings.Contains(stderr.String(), "broken") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestLogger_VerboseAndWith(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := quietConfig()
	cfg.Verbose = true
	l, err := newLogger(&stdout, &stderr, &cfg)
	if err != nil {
		t.Fatal(err)
	}

	l.With("game", 42).Debug("dropped unit")
	out := stdout.String()
	if !strings.Contains(out, "[DEBUG]") || !strings.Contains(out, "game=42") {
		t.Errorf("stdout = %q", out)
	}
}
