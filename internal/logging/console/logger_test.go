package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/internal/logging/console"
)

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger := provider.GetLogger("menus.service").
		WithContext(ctx)
	logger = logging.WithFields(logger, map[string]any{"module": "menus.service"})

	menuID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("menus.item.created", "menu_id", menuID, "title", "About us")

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26Z INFO menus.item.created logger=menus.service menu_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 module=menus.service request_id=req-1 title="About us"`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelWarn
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("menus.test")
	logger.Info("skipped")
	logger.Warn("kept", "error", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "WARN kept") || !strings.Contains(lines[0], "error=boom") {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestConsoleLoggerPositionalArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("menus.test").Debug("odd", "key", 1, "dangling")

	if !strings.Contains(buf.String(), "arg_2=dangling") || !strings.Contains(buf.String(), "key=1") {
		t.Fatalf("expected positional field, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if level, ok := console.ParseLevel("warning"); !ok || level != console.LevelWarn {
		t.Fatalf("expected warning to map to WARN, got %v %v", level, ok)
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to report false")
	}
}
