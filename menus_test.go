package menus_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	menus "github.com/goliatone/go-menus"
)

var admin = menus.Actor{ID: "admin", Role: menus.RoleSuperAdmin}

func newModule(t *testing.T, cfg menus.Config) *menus.Module {
	t.Helper()
	module, err := menus.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() {
		if err := module.Close(); err != nil {
			t.Errorf("close module: %v", err)
		}
	})
	return module
}

func TestModuleSeedsAndRendersDemo(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, menus.DefaultConfig())

	result, err := module.SeedDemo(ctx, admin)
	if err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	if result.MenusCreated != 2 {
		t.Fatalf("expected two menus, got %+v", result)
	}

	html, err := module.Service().RenderMenu(ctx, "main", menus.LookupByLocation, menus.RenderOptions{CurrentURL: "/about"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`href="/news"`, `href="/about"`, "active"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in markup:\n%s", want, html)
		}
	}

	missing, err := module.Service().RenderMenu(ctx, "nowhere", menus.LookupBySlug, menus.RenderOptions{})
	if err != nil || missing != "" {
		t.Fatalf("missing menu should render empty, got %q %v", missing, err)
	}
}

func TestModuleSeedFromDocument(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, menus.DefaultConfig())

	doc := []byte("menus:\n  - name: Sidebar\n    location: sidebar\n    items:\n      - title: Docs\n        url: /docs\n")
	if _, err := module.Seed(ctx, doc, admin); err != nil {
		t.Fatalf("seed: %v", err)
	}
	menu, err := module.Service().GetMenu(ctx, "sidebar", menus.LookupBySlug)
	if err != nil {
		t.Fatalf("get menu: %v", err)
	}
	if len(menu.Items) != 1 || menu.Items[0].URL != "/docs" {
		t.Fatalf("unexpected items %+v", menu.Items)
	}

	if _, err := module.Seed(ctx, []byte("menus: nope"), admin); err == nil {
		t.Fatal("expected invalid document error")
	}
}

func TestModuleWithSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	cfg := menus.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Driver = "sqlite3"
	cfg.Storage.DSN = fmt.Sprintf("file:module_%d?mode=memory&cache=shared&_fk=1", time.Now().UnixNano())
	module := newModule(t, cfg)

	applied, err := module.Migrate(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) == 0 {
		t.Fatalf("expected migrations to apply")
	}
	if _, err := module.SeedDemo(ctx, admin); err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	listing, err := module.Service().ListMenus(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listing) != 2 {
		t.Fatalf("expected two menus, got %d", len(listing))
	}
}

func TestModuleRejectsInvalidConfig(t *testing.T) {
	cfg := menus.DefaultConfig()
	cfg.Menus.Locations = nil
	if _, err := menus.New(cfg); !errors.Is(err, menus.ErrLocationsRequired) {
		t.Fatalf("expected ErrLocationsRequired, got %v", err)
	}
}

func TestModuleExposesErrorKinds(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, menus.DefaultConfig())

	_, err := module.Service().GetMenu(ctx, "absent", menus.LookupBySlug)
	if !errors.Is(err, menus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if kind := menus.KindOf(err); kind != "not_found" {
		t.Fatalf("unexpected kind %q", kind)
	}
}

func TestNilModuleIsSafe(t *testing.T) {
	var module *menus.Module
	if module.Service() != nil || module.Commands() != nil {
		t.Fatal("nil module should expose nothing")
	}
	if _, err := module.Migrate(context.Background()); err == nil {
		t.Fatal("expected error from nil module")
	}
	if err := module.Close(); err != nil {
		t.Fatalf("close nil module: %v", err)
	}
}
