package menus_test

import (
	"context"
	"errors"
	"testing"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-menus/internal/menus"
)

func newTestURLKitResolver(t *testing.T) *menus.URLKitResolver {
	t.Helper()
	resolver, err := menus.NewURLKitResolverFromConfig(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"about": "/about-us",
				},
				Groups: []urlkit.GroupConfig{
					{
						Name: "es",
						Path: "/es",
						Paths: map[string]string{
							"about": "/sobre-nosotros",
						},
					},
				},
			},
			{
				Name:    "news",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"archive": "/news/archive",
				},
			},
		},
	}, "frontend")
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	return resolver
}

func TestURLKitResolverDefaultGroup(t *testing.T) {
	resolver := newTestURLKitResolver(t)
	item := &menus.MenuItem{Title: "About", Route: "about", URL: "/about"}

	got := menus.ResolveHref(context.Background(), resolver, "main", item)
	if got != "https://example.com/about-us" {
		t.Fatalf("expected resolved route to win over url, got %q", got)
	}
}

func TestURLKitResolverQualifiedToken(t *testing.T) {
	resolver := newTestURLKitResolver(t)

	archive := &menus.MenuItem{Title: "Archive", Route: "news.archive"}
	if got := menus.ResolveHref(context.Background(), resolver, "main", archive); got != "https://example.com/news/archive" {
		t.Fatalf("expected group qualified route, got %q", got)
	}

	localized := &menus.MenuItem{Title: "Sobre", Route: "frontend.es.about"}
	if got := menus.ResolveHref(context.Background(), resolver, "main", localized); got != "https://example.com/es/sobre-nosotros" {
		t.Fatalf("expected nested group route, got %q", got)
	}
}

func TestURLKitResolverUnknownRouteFallsBack(t *testing.T) {
	resolver := newTestURLKitResolver(t)
	item := &menus.MenuItem{Title: "Story", Route: "news.show", URL: "/news/latest"}

	if got := menus.ResolveHref(context.Background(), resolver, "main", item); got != "/news/latest" {
		t.Fatalf("expected literal url fallback, got %q", got)
	}
	if got := menus.DisplayURL(context.Background(), resolver, "main", item); got != "Route: news.show" {
		t.Fatalf("expected route display, got %q", got)
	}

	bare := &menus.MenuItem{Title: "Nowhere", Route: "missing"}
	if got := menus.ResolveHref(context.Background(), resolver, "main", bare); got != "#" {
		t.Fatalf("expected # fallback, got %q", got)
	}
}

func TestURLKitResolverRequiresConfig(t *testing.T) {
	if _, err := menus.NewURLKitResolverFromConfig(nil, "frontend"); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestResolveHrefFallbacks(t *testing.T) {
	ctx := context.Background()
	failing := menus.URLResolverFunc(func(context.Context, menus.ResolveRequest) (string, error) {
		return "", errors.New("router offline")
	})

	cases := []struct {
		name     string
		item     *menus.MenuItem
		resolver menus.URLResolver
		href     string
		display  string
	}{
		{"url only", &menus.MenuItem{URL: "/contact"}, nil, "/contact", "/contact"},
		{"nothing", &menus.MenuItem{}, nil, "#", "#"},
		{"nil item", nil, nil, "#", "#"},
		{"resolver fault", &menus.MenuItem{Route: "home", URL: "/"}, failing, "/", "Route: home"},
		{"route without resolver", &menus.MenuItem{Route: "home"}, nil, "#", "Route: home"},
	}
	for _, tc := range cases {
		if got := menus.ResolveHref(ctx, tc.resolver, "main", tc.item); got != tc.href {
			t.Fatalf("%s: href expected %q, got %q", tc.name, tc.href, got)
		}
		if got := menus.DisplayURL(ctx, tc.resolver, "main", tc.item); got != tc.display {
			t.Fatalf("%s: display expected %q, got %q", tc.name, tc.display, got)
		}
	}
}

func TestResolverReceivesMenuSlug(t *testing.T) {
	var seen menus.ResolveRequest
	resolver := menus.URLResolverFunc(func(_ context.Context, req menus.ResolveRequest) (string, error) {
		seen = req
		return "/resolved", nil
	})
	item := &menus.MenuItem{Route: "home"}
	if got := menus.ResolveHref(context.Background(), resolver, "footer", item); got != "/resolved" {
		t.Fatalf("unexpected href %q", got)
	}
	if seen.MenuSlug != "footer" || seen.Item != item {
		t.Fatalf("resolver received %+v", seen)
	}
}
