package identity_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/goliatone/go-menus/internal/identity"
)

func TestDeriveSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Main", "main"},
		{"Footer Links", "footer-links"},
		{"  --Side__bar  menu-- ", "side-bar-menu"},
		{"News, Events!", "news-events"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := identity.DeriveSlug(tc.in); got != tc.want {
			t.Fatalf("DeriveSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDeriveSlugCharacterSet(t *testing.T) {
	allowed := regexp.MustCompile(`^[a-z0-9-]*$`)
	inputs := []string{
		"Crème Brûlée",
		"日本語 menu",
		"tab\there\nnewline",
		"<script>alert(1)</script>",
		"___",
		"-lead and trail-",
		"Über Uns 2024",
		"a--b__c  d",
	}
	for _, in := range inputs {
		got := identity.DeriveSlug(in)
		if !allowed.MatchString(got) {
			t.Fatalf("DeriveSlug(%q) = %q contains disallowed characters", in, got)
		}
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
			t.Fatalf("DeriveSlug(%q) = %q has a leading or trailing hyphen", in, got)
		}
		if strings.Contains(got, "--") {
			t.Fatalf("DeriveSlug(%q) = %q has repeated hyphens", in, got)
		}
		if got != "" && !identity.IsValidSlug(got) {
			t.Fatalf("DeriveSlug(%q) = %q is not a valid slug", in, got)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	if !identity.IsValidSlug("main-menu") {
		t.Fatalf("expected main-menu to be valid")
	}
	for _, bad := range []string{"", "Main", "-main", "main-", "main menu", "a--b"} {
		if identity.IsValidSlug(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestMenuUUIDDeterministic(t *testing.T) {
	first := identity.MenuUUID("main-menu")
	second := identity.MenuUUID(" Main-Menu ")
	if first != second {
		t.Fatalf("expected stable id, got %s and %s", first, second)
	}
	if identity.MenuItemUUID("main-menu", "about") == identity.MenuItemUUID("main-menu", "about/team") {
		t.Fatalf("expected distinct item ids for distinct paths")
	}
}
