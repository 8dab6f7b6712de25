package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sqliteDSN(t *testing.T) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), fmt.Sprintf("menus_%d.db", time.Now().UnixNano())) + "?_fk=1"
}

func TestRenderDemoByLocation(t *testing.T) {
	out, err := execute(t, "render", "main", "--location", "--demo", "--current-url", "/news")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"<ul", `href="/news"`, `href="/contact"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTreePrintsNestedItems(t *testing.T) {
	out, err := execute(t, "tree", "footer-menu", "--demo")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.HasPrefix(out, "Footer Menu (footer)\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "  - About /about") {
		t.Fatalf("expected item line:\n%s", out)
	}
}

func TestSeedRequiresSource(t *testing.T) {
	if _, err := execute(t, "seed"); !errors.Is(err, errSeedSourceRequired) {
		t.Fatalf("expected errSeedSourceRequired, got %v", err)
	}
}

func TestMigrateSeedAndListAgainstSQLite(t *testing.T) {
	dsn := sqliteDSN(t)

	out, err := execute(t, "migrate", "--dsn", dsn, "--driver", "sqlite3")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "applied") {
		t.Fatalf("expected applied migrations:\n%s", out)
	}
	out, err = execute(t, "migrate", "--dsn", dsn, "--driver", "sqlite3")
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if !strings.Contains(out, "no pending migrations") {
		t.Fatalf("expected nothing to apply:\n%s", out)
	}

	seedFile := filepath.Join(t.TempDir(), "menus.yaml")
	doc := "menus:\n  - name: Docs\n    location: sidebar\n    items:\n      - title: Install\n        url: /install\n"
	if err := os.WriteFile(seedFile, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	out, err = execute(t, "seed", seedFile, "--dsn", dsn, "--driver", "sqlite3")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "menus: 1 created") {
		t.Fatalf("unexpected seed output:\n%s", out)
	}

	out, err = execute(t, "list", "--dsn", dsn, "--driver", "sqlite3")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "docs") || !strings.Contains(out, "sidebar") {
		t.Fatalf("expected seeded menu in listing:\n%s", out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, err := execute(t, "list", "--log-level", "loud"); err == nil {
		t.Fatal("expected log level error")
	}
}
