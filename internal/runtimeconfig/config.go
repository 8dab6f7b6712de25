package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	urlkit "github.com/goliatone/go-urlkit"
)

// EnvPrefix is prepended to every environment variable read by FromEnv.
const EnvPrefix = "MENUS_"

var ErrStorageProviderUnknown = errors.New("menus config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("menus config: storage dsn is required for the bun provider")
var ErrStorageDriverUnknown = errors.New("menus config: storage driver is invalid")
var ErrCacheBackendUnknown = errors.New("menus config: cache backend is invalid")
var ErrCacheRedisURLRequired = errors.New("menus config: redis url is required for the redis cache backend")
var ErrCacheTTLInvalid = errors.New("menus config: cache ttl must be positive")

// ErrRepositoryCacheRequiresBun ensures the record cache is only requested
// where a bun repository exists.
var ErrRepositoryCacheRequiresBun = errors.New("menus config: repository cache requires the bun storage provider")
var ErrLocationsRequired = errors.New("menus config: at least one menu location is required")
var ErrLocationInvalid = errors.New("menus config: menu location is invalid")
var ErrMaxDepthInvalid = errors.New("menus config: max depth must be zero or positive")
var ErrNavigationGroupRequired = errors.New("menus config: default route group is required when route config is set")
var ErrLoggingProviderRequired = errors.New("menus config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("menus config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("menus config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("menus config: logging format is invalid")

// ErrCommandsCronRequiresCommands ensures cron wiring only runs when the
// command layer is enabled.
var ErrCommandsCronRequiresCommands = errors.New("menus config: command cron registration requires commands to be enabled")

// Config aggregates feature flags and adapter bindings for the menus module.
type Config struct {
	Storage       StorageConfig       `envPrefix:"STORAGE_"`
	Cache         CacheConfig         `envPrefix:"CACHE_"`
	Menus         MenusConfig         `envPrefix:"TREE_"`
	Navigation    NavigationConfig    `envPrefix:"NAVIGATION_"`
	Render        RenderConfig        `envPrefix:"RENDER_"`
	Authorization AuthorizationConfig `envPrefix:"AUTH_"`
	Features      Features            `envPrefix:"FEATURE_"`
	Commands      CommandsConfig      `envPrefix:"COMMANDS_"`
	Logging       LoggingConfig       `envPrefix:"LOG_"`
}

// StorageConfig selects the tree store. Provider "memory" keeps everything in
// process; "bun" persists through Driver and DSN.
type StorageConfig struct {
	Provider string `env:"PROVIDER"`
	Driver   string `env:"DRIVER"`
	DSN      string `env:"DSN"`
	// AutoMigrate applies pending migrations when the module starts.
	AutoMigrate bool `env:"AUTO_MIGRATE"`
}

// CacheConfig captures menu cache behaviour.
type CacheConfig struct {
	Enabled     bool          `env:"ENABLED"`
	Backend     string        `env:"BACKEND"`
	RedisURL    string        `env:"REDIS_URL"`
	Prefix      string        `env:"PREFIX"`
	IdentityTTL time.Duration `env:"IDENTITY_TTL"`
	ListingTTL  time.Duration `env:"LISTING_TTL"`
	// RepositoryCache routes bun record reads through go-repository-cache.
	RepositoryCache    bool          `env:"REPOSITORY"`
	RepositoryCacheTTL time.Duration `env:"REPOSITORY_TTL"`
}

// MenusConfig captures tree rules.
type MenusConfig struct {
	Locations []string `env:"LOCATIONS" envSeparator:","`
	MaxDepth  int      `env:"MAX_DEPTH"`
}

// NavigationConfig captures routing configuration for menu URL resolution.
type NavigationConfig struct {
	RouteConfig  *urlkit.Config `env:"-"`
	DefaultGroup string         `env:"DEFAULT_GROUP"`
}

// RenderConfig holds the default class names used by the renderer.
type RenderConfig struct {
	ListClass        string `env:"LIST_CLASS"`
	ItemClass        string `env:"ITEM_CLASS"`
	LinkClass        string `env:"LINK_CLASS"`
	ActiveClass      string `env:"ACTIVE_CLASS"`
	HasChildrenClass string `env:"HAS_CHILDREN_CLASS"`
	SubmenuClass     string `env:"SUBMENU_CLASS"`
}

// AuthorizationConfig lists the roles allowed to delete menus.
type AuthorizationConfig struct {
	DeleteRoles []string `env:"DELETE_ROLES" envSeparator:","`
}

// Features toggles module functionality.
type Features struct {
	Menus    bool `env:"MENUS"`
	Commands bool `env:"COMMANDS"`
	Logger   bool `env:"LOGGER"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	AutoRegisterCron bool   `env:"AUTO_REGISTER_CRON"`
	CacheRefreshCron string `env:"CACHE_REFRESH_CRON"`
	MaxRetries       int    `env:"MAX_RETRIES"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `env:"PROVIDER"`
	Level     string   `env:"LEVEL"`
	Format    string   `env:"FORMAT"`
	AddSource bool     `env:"ADD_SOURCE"`
	Focus     []string `env:"FOCUS" envSeparator:","`
}

// DefaultConfig returns defaults for an in-process deployment.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite3",
		},
		Cache: CacheConfig{
			Enabled:            true,
			Backend:            "memory",
			Prefix:             "menus:",
			IdentityTTL:        time.Hour,
			ListingTTL:         5 * time.Minute,
			RepositoryCacheTTL: time.Minute,
		},
		Menus: MenusConfig{
			Locations: []string{"main", "footer", "sidebar"},
		},
		Render: RenderConfig{
			ListClass:        "menu",
			ItemClass:        "menu-item",
			LinkClass:        "menu-link",
			ActiveClass:      "active",
			HasChildrenClass: "has-children",
			SubmenuClass:     "submenu",
		},
		Authorization: AuthorizationConfig{
			DeleteRoles: []string{"super_admin"},
		},
		Features: Features{
			Menus:    true,
			Commands: true,
		},
		Commands: CommandsConfig{
			CacheRefreshCron: "@hourly",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// FromEnv overlays MENUS_* variables on DefaultConfig.
func FromEnv() (Config, error) {
	return FromEnvironment(nil)
}

// FromEnvironment overlays the given variables on DefaultConfig. A nil map
// reads the process environment.
func FromEnvironment(environment map[string]string) (Config, error) {
	cfg := DefaultConfig()
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("menus config: parse environment: %w", err)
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := normalize(cfg.Storage.Provider)
	switch provider {
	case "memory":
	case "bun":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
		if !isSupportedDriver(cfg.Storage.Driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.Enabled {
		switch normalize(cfg.Cache.Backend) {
		case "", "memory":
		case "redis":
			if strings.TrimSpace(cfg.Cache.RedisURL) == "" {
				return ErrCacheRedisURLRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheBackendUnknown, cfg.Cache.Backend)
		}
		if cfg.Cache.IdentityTTL <= 0 {
			return fmt.Errorf("%w: identity", ErrCacheTTLInvalid)
		}
		if cfg.Cache.ListingTTL <= 0 {
			return fmt.Errorf("%w: listing", ErrCacheTTLInvalid)
		}
	}
	if cfg.Cache.RepositoryCache {
		if provider != "bun" {
			return ErrRepositoryCacheRequiresBun
		}
		if cfg.Cache.RepositoryCacheTTL <= 0 {
			return fmt.Errorf("%w: repository", ErrCacheTTLInvalid)
		}
	}

	if len(cfg.Menus.Locations) == 0 {
		return ErrLocationsRequired
	}
	for _, location := range cfg.Menus.Locations {
		if strings.TrimSpace(location) == "" || strings.ContainsAny(location, " \t") {
			return fmt.Errorf("%w: %q", ErrLocationInvalid, location)
		}
	}
	if cfg.Menus.MaxDepth < 0 {
		return ErrMaxDepthInvalid
	}

	if cfg.Navigation.RouteConfig != nil && strings.TrimSpace(cfg.Navigation.DefaultGroup) == "" {
		return ErrNavigationGroupRequired
	}

	if cfg.Commands.AutoRegisterCron && !cfg.Features.Commands {
		return ErrCommandsCronRequiresCommands
	}

	if cfg.Features.Logger {
		logProvider := normalize(cfg.Logging.Provider)
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(logProvider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if logProvider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	switch normalize(driver) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql", "pg":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
