package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-menus/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name:   "unknown storage provider",
			mutate: func(c *runtimeconfig.Config) { c.Storage.Provider = "mongo" },
			want:   runtimeconfig.ErrStorageProviderUnknown,
		},
		{
			name:   "bun without dsn",
			mutate: func(c *runtimeconfig.Config) { c.Storage.Provider = "bun" },
			want:   runtimeconfig.ErrStorageDSNRequired,
		},
		{
			name: "bun with unknown driver",
			mutate: func(c *runtimeconfig.Config) {
				c.Storage.Provider = "bun"
				c.Storage.DSN = "file::memory:"
				c.Storage.Driver = "oracle"
			},
			want: runtimeconfig.ErrStorageDriverUnknown,
		},
		{
			name:   "redis without url",
			mutate: func(c *runtimeconfig.Config) { c.Cache.Backend = "redis" },
			want:   runtimeconfig.ErrCacheRedisURLRequired,
		},
		{
			name:   "unknown cache backend",
			mutate: func(c *runtimeconfig.Config) { c.Cache.Backend = "memcached" },
			want:   runtimeconfig.ErrCacheBackendUnknown,
		},
		{
			name:   "zero identity ttl",
			mutate: func(c *runtimeconfig.Config) { c.Cache.IdentityTTL = 0 },
			want:   runtimeconfig.ErrCacheTTLInvalid,
		},
		{
			name:   "repository cache on memory store",
			mutate: func(c *runtimeconfig.Config) { c.Cache.RepositoryCache = true },
			want:   runtimeconfig.ErrRepositoryCacheRequiresBun,
		},
		{
			name:   "no locations",
			mutate: func(c *runtimeconfig.Config) { c.Menus.Locations = nil },
			want:   runtimeconfig.ErrLocationsRequired,
		},
		{
			name:   "blank location",
			mutate: func(c *runtimeconfig.Config) { c.Menus.Locations = []string{"main", " "} },
			want:   runtimeconfig.ErrLocationInvalid,
		},
		{
			name:   "negative depth",
			mutate: func(c *runtimeconfig.Config) { c.Menus.MaxDepth = -1 },
			want:   runtimeconfig.ErrMaxDepthInvalid,
		},
		{
			name: "route config without group",
			mutate: func(c *runtimeconfig.Config) {
				c.Navigation.RouteConfig = &urlkit.Config{}
			},
			want: runtimeconfig.ErrNavigationGroupRequired,
		},
		{
			name: "cron without commands",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Commands = false
				c.Commands.AutoRegisterCron = true
			},
			want: runtimeconfig.ErrCommandsCronRequiresCommands,
		},
		{
			name: "logger without provider",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Logger = true
				c.Logging.Provider = ""
			},
			want: runtimeconfig.ErrLoggingProviderRequired,
		},
		{
			name: "unknown logger provider",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Logger = true
				c.Logging.Provider = "syslog"
			},
			want: runtimeconfig.ErrLoggingProviderUnknown,
		},
		{
			name: "invalid level",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Logger = true
				c.Logging.Level = "loud"
			},
			want: runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name: "invalid gologger format",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Logger = true
				c.Logging.Provider = "gologger"
				c.Logging.Format = "xml"
			},
			want: runtimeconfig.ErrLoggingFormatInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_AllowsDisabledCacheWithoutTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Cache.IdentityTTL = 0
	cfg.Cache.Backend = "redis"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled cache should skip backend checks: %v", err)
	}
}

func TestFromEnvironmentOverlaysDefaults(t *testing.T) {
	cfg, err := runtimeconfig.FromEnvironment(map[string]string{
		"MENUS_STORAGE_PROVIDER":         "bun",
		"MENUS_STORAGE_DSN":              "postgres://localhost/menus",
		"MENUS_STORAGE_DRIVER":           "postgres",
		"MENUS_CACHE_BACKEND":            "redis",
		"MENUS_CACHE_REDIS_URL":          "redis://localhost:6379/0",
		"MENUS_CACHE_IDENTITY_TTL":       "10m",
		"MENUS_TREE_LOCATIONS":           "header,footer",
		"MENUS_TREE_MAX_DEPTH":           "12",
		"MENUS_AUTH_DELETE_ROLES":        "super_admin,editor",
		"MENUS_FEATURE_MENUS":            "false",
		"MENUS_LOG_PROVIDER":             "gologger",
		"MENUS_RENDER_ACTIVE_CLASS":      "is-active",
		"MENUS_NAVIGATION_DEFAULT_GROUP": "frontend",
	})
	if err != nil {
		t.Fatalf("from environment: %v", err)
	}

	if cfg.Storage.Provider != "bun" || cfg.Storage.Driver != "postgres" || cfg.Storage.DSN != "postgres://localhost/menus" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.IdentityTTL != 10*time.Minute {
		t.Fatalf("unexpected cache %+v", cfg.Cache)
	}
	if cfg.Cache.ListingTTL != 5*time.Minute {
		t.Fatalf("unset listing ttl should keep its default, got %v", cfg.Cache.ListingTTL)
	}
	if diff := cmp.Diff([]string{"header", "footer"}, cfg.Menus.Locations); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"super_admin", "editor"}, cfg.Authorization.DeleteRoles); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
	if cfg.Menus.MaxDepth != 12 || cfg.Features.Menus || cfg.Logging.Provider != "gologger" {
		t.Fatalf("unexpected overlay %+v", cfg)
	}
	if cfg.Render.ActiveClass != "is-active" || cfg.Render.ListClass != "menu" {
		t.Fatalf("unexpected render config %+v", cfg.Render)
	}
	if cfg.Navigation.DefaultGroup != "frontend" {
		t.Fatalf("unexpected navigation %+v", cfg.Navigation)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overlaid config should validate: %v", err)
	}
}

func TestFromEnvironmentRejectsMalformedValues(t *testing.T) {
	_, err := runtimeconfig.FromEnvironment(map[string]string{
		"MENUS_TREE_MAX_DEPTH": "deep",
	})
	if err == nil {
		t.Fatal("expected parse error")
	}
}
