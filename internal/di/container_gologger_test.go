package di

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-menus/internal/logging/gologger"
	"github.com/goliatone/go-menus/internal/menus"
	"github.com/goliatone/go-menus/internal/runtimeconfig"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

func TestGoLoggerBackedContainerServesMenus(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	cfg.Logging.Focus = []string{"menus.service", "menus.commands"}

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	provider, ok := container.LoggerProvider().(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if _, ok := provider.GetLogger("menus.service").(interfaces.FieldsLogger); !ok {
		t.Fatalf("menus.service logger should accept structured fields")
	}

	ctx := context.Background()
	svc := container.MenuService()
	menu, err := svc.CreateMenu(ctx, menus.CreateMenuInput{Name: "Footer", Location: menus.LocationFooter})
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	if _, err := svc.AddItem(ctx, menus.AddItemInput{MenuID: menu.ID, Title: "Contact", URL: "/contact"}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	html, err := svc.RenderMenu(ctx, "footer", menus.LookupByLocation, menus.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `href="/contact"`) {
		t.Fatalf("expected contact link in %s", html)
	}
}

func TestGoLoggerContainerRejectsUnknownFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
