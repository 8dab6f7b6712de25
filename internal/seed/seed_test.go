package seed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-menus/internal/identity"
	"github.com/goliatone/go-menus/internal/menus"
	"github.com/goliatone/go-menus/internal/seed"
)

var admin = menus.Actor{ID: "seeder", Role: menus.RoleSuperAdmin}

func titles(items []*menus.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestDemoSeedsMainAndFooter(t *testing.T) {
	ctx := context.Background()
	service := menus.NewService(menus.NewMemoryStore())

	doc, err := seed.Demo()
	if err != nil {
		t.Fatalf("demo document: %v", err)
	}
	result, err := seed.Apply(ctx, service, doc, seed.Options{Actor: admin})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.MenusCreated != 2 || result.ItemsCreated != 8 {
		t.Fatalf("unexpected result %+v", result)
	}

	main, err := service.GetMenu(ctx, "main", menus.LookupByLocation)
	if err != nil {
		t.Fatalf("main menu: %v", err)
	}
	if main.ID != identity.MenuUUID("main-menu") {
		t.Fatalf("expected deterministic menu id")
	}
	if diff := cmp.Diff([]string{"Home", "News", "About", "Services", "Contact"}, titles(main.Items)); diff != "" {
		t.Fatalf("main menu items mismatch (-want +got):\n%s", diff)
	}

	footer, err := service.GetMenu(ctx, "footer-menu", menus.LookupBySlug)
	if err != nil {
		t.Fatalf("footer menu: %v", err)
	}
	if diff := cmp.Diff([]string{"About", "Services", "Contact"}, titles(footer.Items)); diff != "" {
		t.Fatalf("footer items mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service := menus.NewService(menus.NewMemoryStore())
	doc, err := seed.Demo()
	if err != nil {
		t.Fatalf("demo document: %v", err)
	}

	if _, err := seed.Apply(ctx, service, doc, seed.Options{Actor: admin}); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	again, err := seed.Apply(ctx, service, doc, seed.Options{Actor: admin})
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if again != (seed.Result{}) {
		t.Fatalf("second run should change nothing, got %+v", again)
	}

	listing, err := service.ListMenus(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listing) != 2 {
		t.Fatalf("expected 2 menus, got %d", len(listing))
	}
}

func TestApplyConvergesAndRestores(t *testing.T) {
	ctx := context.Background()
	service := menus.NewService(menus.NewMemoryStore())

	doc, err := seed.Parse([]byte(`
menus:
  - name: Docs
    location: sidebar
    items:
      - title: Guides
        children:
          - title: Install
            url: /guides/install
          - title: Configure
            url: /guides/configure
      - title: API
        route: api.index
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := seed.Apply(ctx, service, doc, seed.Options{Actor: admin}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	installID := identity.MenuItemUUID("docs", "guides/install")
	if err := service.DeleteItem(ctx, installID, admin); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	apiID := identity.MenuItemUUID("docs", "api")
	renamed := "Reference"
	if _, err := service.UpdateItem(ctx, menus.UpdateItemInput{ID: apiID, Title: &renamed}); err != nil {
		t.Fatalf("rename item: %v", err)
	}

	result, err := seed.Apply(ctx, service, doc, seed.Options{Actor: admin})
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if result.ItemsCreated != 0 || result.ItemsUpdated != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	tree, err := service.GetMenuTree(ctx, identity.MenuUUID("docs"))
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if diff := cmp.Diff([]string{"Guides", "API"}, titles(tree.Items)); diff != "" {
		t.Fatalf("root mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Install", "Configure"}, titles(tree.Items[0].Children)); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyRestoresDeletedMenu(t *testing.T) {
	ctx := context.Background()
	service := menus.NewService(menus.NewMemoryStore())
	doc, err := seed.Demo()
	if err != nil {
		t.Fatalf("demo document: %v", err)
	}
	if _, err := seed.Apply(ctx, service, doc, seed.Options{Actor: admin}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := service.DeleteMenu(ctx, identity.MenuUUID("footer-menu"), admin); err != nil {
		t.Fatalf("delete menu: %v", err)
	}

	result, err := seed.Apply(ctx, service, doc, seed.Options{Actor: admin})
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if result.MenusCreated != 0 || result.ItemsCreated != 0 {
		t.Fatalf("deleted menu should be restored rather than recreated, got %+v", result)
	}
	footer, err := service.GetMenu(ctx, "footer-menu", menus.LookupBySlug)
	if err != nil {
		t.Fatalf("footer after restore: %v", err)
	}
	if len(footer.Items) != 3 {
		t.Fatalf("expected restored items, got %d", len(footer.Items))
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"missing menus":  `other: []`,
		"missing title":  "menus:\n  - name: Main\n    location: main\n    items:\n      - url: /\n",
		"bad target":     "menus:\n  - name: Main\n    location: main\n    items:\n      - title: Home\n        target: _top\n",
		"negative order": "menus:\n  - name: Main\n    location: main\n    items:\n      - title: Home\n        order: -1\n",
		"bad slug":       "menus:\n  - name: Main\n    slug: Not Valid\n    location: main\n",
		"unknown field":  "menus:\n  - name: Main\n    location: main\n    colour: red\n",
		"malformed yaml": "menus: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := seed.Parse([]byte(body)); !errors.Is(err, seed.ErrDocumentInvalid) {
				t.Fatalf("expected ErrDocumentInvalid, got %v", err)
			}
		})
	}
}

func TestApplyRejectsDuplicateKeys(t *testing.T) {
	doc, err := seed.Parse([]byte("menus:\n  - name: Main\n    location: main\n    items:\n      - title: Home\n      - title: home\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = seed.Apply(context.Background(), menus.NewService(menus.NewMemoryStore()), doc, seed.Options{})
	if !errors.Is(err, seed.ErrDuplicateItemKey) {
		t.Fatalf("expected ErrDuplicateItemKey, got %v", err)
	}
}

func TestApplyRequiresService(t *testing.T) {
	if _, err := seed.Apply(context.Background(), nil, &seed.Document{}, seed.Options{}); !errors.Is(err, seed.ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}
}
