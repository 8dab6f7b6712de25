package menus

import "github.com/goliatone/go-menus/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown       = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired           = runtimeconfig.ErrStorageDSNRequired
	ErrStorageDriverUnknown         = runtimeconfig.ErrStorageDriverUnknown
	ErrCacheBackendUnknown          = runtimeconfig.ErrCacheBackendUnknown
	ErrCacheRedisURLRequired        = runtimeconfig.ErrCacheRedisURLRequired
	ErrCacheTTLInvalid              = runtimeconfig.ErrCacheTTLInvalid
	ErrRepositoryCacheRequiresBun   = runtimeconfig.ErrRepositoryCacheRequiresBun
	ErrLocationsRequired            = runtimeconfig.ErrLocationsRequired
	ErrLocationInvalid              = runtimeconfig.ErrLocationInvalid
	ErrMaxDepthInvalid              = runtimeconfig.ErrMaxDepthInvalid
	ErrNavigationGroupRequired      = runtimeconfig.ErrNavigationGroupRequired
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
	ErrCommandsCronRequiresCommands = runtimeconfig.ErrCommandsCronRequiresCommands
)

type (
	Config              = runtimeconfig.Config
	StorageConfig       = runtimeconfig.StorageConfig
	CacheConfig         = runtimeconfig.CacheConfig
	MenusConfig         = runtimeconfig.MenusConfig
	NavigationConfig    = runtimeconfig.NavigationConfig
	RenderConfig        = runtimeconfig.RenderConfig
	AuthorizationConfig = runtimeconfig.AuthorizationConfig
	Features            = runtimeconfig.Features
	CommandsConfig      = runtimeconfig.CommandsConfig
	LoggingConfig       = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromEnv overlays MENUS_* environment variables onto DefaultConfig.
func ConfigFromEnv() (Config, error) {
	return runtimeconfig.FromEnv()
}
