package di

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-command/runner"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-menus/internal/adapters/cache"
	"github.com/goliatone/go-menus/internal/adapters/noop"
	"github.com/goliatone/go-menus/internal/commands"
	menuscmd "github.com/goliatone/go-menus/internal/commands/menus"
	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/internal/logging/console"
	"github.com/goliatone/go-menus/internal/logging/gologger"
	"github.com/goliatone/go-menus/internal/menus"
	"github.com/goliatone/go-menus/internal/runtimeconfig"
	"github.com/goliatone/go-menus/internal/storage"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

// Container wires module dependencies from runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB   *bun.DB
	ownsDB  bool
	closers []func() error

	cacheBackend  interfaces.CacheBackend
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	resolver   menus.URLResolver
	authorizer menus.Authorizer

	store     menus.Store
	menuCache *menus.MenuCache
	menuSvc   menus.Service

	commandRegistry   commands.CommandRegistry
	commandDispatcher commands.CommandDispatcher
	cronRegistrar     commands.CronRegistrar
	subscribeGlobal   bool

	commandSet   *menuscmd.HandlerSet
	registration *commands.RegistrationResult
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB supplies an open database. The container never closes it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCacheBackend overrides the backend built from Config.Cache.
func WithCacheBackend(backend interfaces.CacheBackend) Option {
	return func(c *Container) {
		c.cacheBackend = backend
	}
}

// WithRepositoryCache overrides the go-repository-cache service used for bun
// record reads.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithURLResolver overrides the resolver built from Config.Navigation.
func WithURLResolver(resolver menus.URLResolver) Option {
	return func(c *Container) {
		c.resolver = resolver
	}
}

// WithAuthorizer overrides the role authorizer built from Config.Authorization.
func WithAuthorizer(authorizer menus.Authorizer) Option {
	return func(c *Container) {
		c.authorizer = authorizer
	}
}

// WithStore overrides the tree store selected by Config.Storage.
func WithStore(store menus.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithMenuService overrides the menu service binding.
func WithMenuService(svc menus.Service) Option {
	return func(c *Container) {
		c.menuSvc = svc
	}
}

// WithCommandRegistry registers command handlers with registry.
func WithCommandRegistry(registry commands.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = registry
	}
}

// WithCommandDispatcher subscribes command handlers through dispatcher.
func WithCommandDispatcher(dispatcher commands.CommandDispatcher) Option {
	return func(c *Container) {
		c.commandDispatcher = dispatcher
	}
}

// WithCronRegistrar receives the cache refresh handler when
// Config.Commands.AutoRegisterCron is set.
func WithCronRegistrar(registrar commands.CronRegistrar) Option {
	return func(c *Container) {
		c.cronRegistrar = registrar
	}
}

// WithGlobalDispatcher subscribes the command handlers to the go-command
// process dispatcher.
func WithGlobalDispatcher() Option {
	return func(c *Container) {
		c.subscribeGlobal = true
	}
}

// NewContainer validates cfg and builds every component it selects.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	ctx := context.Background()
	steps := []func(context.Context) error{
		c.configureLoggerProvider,
		c.configureStorage,
		c.configureCacheBackend,
		c.configureRepositoryCache,
		c.configureNavigation,
		c.configureService,
		c.configureCommands,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	logging.ModuleLogger(c.loggerProvider, "menus.di").Debug("menus.container.ready",
		"storage", c.storageProvider(),
		"cache", c.cacheBackendName(),
		"commands", c.commandSet != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider(context.Context) error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure go-logger: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	if c.bunDB == nil && c.storageProvider() == "bun" {
		db, err := storage.Open(ctx, storage.Config{
			Driver: c.Config.Storage.Driver,
			DSN:    c.Config.Storage.DSN,
		})
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.bunDB != nil && c.Config.Storage.AutoMigrate {
		applied, err := storage.Migrate(ctx, c.bunDB)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			logging.StoreLogger(c.loggerProvider).Info("menus.storage.migrated", "migrations", applied)
		}
	}
	return nil
}

func (c *Container) configureCacheBackend(ctx context.Context) error {
	if c.cacheBackend != nil {
		return nil
	}
	if !c.Config.Cache.Enabled {
		c.cacheBackend = noop.Cache()
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Cache.Backend)) {
	case "redis":
		opts := cache.DefaultRedisOptions()
		opts.URL = c.Config.Cache.RedisURL
		if prefix := strings.TrimSpace(c.Config.Cache.Prefix); prefix != "" {
			opts.Prefix = prefix
		}
		backend, err := cache.NewRedis(ctx, opts)
		if err != nil {
			return fmt.Errorf("di: configure redis cache: %w", err)
		}
		c.cacheBackend = backend
		c.closers = append(c.closers, backend.Close)
	default:
		c.cacheBackend = cache.NewMemory()
	}
	return nil
}

func (c *Container) configureRepositoryCache(context.Context) error {
	if !c.Config.Cache.RepositoryCache || c.bunDB == nil {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if ttl := c.Config.Cache.RepositoryCacheTTL; ttl > 0 {
			cfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: configure repository cache: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureNavigation(context.Context) error {
	if c.resolver != nil {
		return nil
	}

	nav := c.Config.Navigation
	if nav.RouteConfig == nil {
		return nil
	}
	resolver, err := menus.NewURLKitResolverFromConfig(nav.RouteConfig, nav.DefaultGroup)
	if err != nil {
		return fmt.Errorf("di: configure navigation: %w", err)
	}
	c.resolver = resolver
	return nil
}

func (c *Container) configureService(context.Context) error {
	if c.menuSvc != nil {
		return nil
	}

	guard := menus.CycleGuard{MaxDepth: c.Config.Menus.MaxDepth}
	if guard.MaxDepth == 0 {
		guard.MaxDepth = menus.DefaultMaxDepth
	}

	if c.store == nil {
		storeOpts := []menus.StoreOption{menus.WithCycleGuard(guard)}
		if c.bunDB != nil {
			bunOpts := []menus.BunStoreOption{menus.WithBunStoreOptions(storeOpts...)}
			if c.cacheService != nil {
				bunOpts = append(bunOpts, menus.WithRepositoryCache(c.cacheService, c.keySerializer))
			}
			c.store = menus.NewBunStore(c.bunDB, bunOpts...)
		} else {
			c.store = menus.NewMemoryStore(storeOpts...)
		}
	}

	c.menuCache = menus.NewMenuCache(c.cacheBackend,
		menus.WithIdentityTTL(c.Config.Cache.IdentityTTL),
		menus.WithListingTTL(c.Config.Cache.ListingTTL),
		menus.WithCacheLogger(logging.CacheLogger(c.loggerProvider)),
	)

	authorizer := c.authorizer
	if authorizer == nil {
		authorizer = menus.NewRoleAuthorizer(c.Config.Authorization.DeleteRoles...)
	}

	locations := make([]menus.Location, 0, len(c.Config.Menus.Locations))
	for _, location := range c.Config.Menus.Locations {
		locations = append(locations, menus.Location(strings.TrimSpace(location)))
	}

	render := c.Config.Render
	svcOpts := []menus.ServiceOption{
		menus.WithCache(c.menuCache),
		menus.WithAuthorizer(authorizer),
		menus.WithLogger(logging.ServiceLogger(c.loggerProvider)),
		menus.WithLocations(locations...),
		menus.WithRenderDefaults(menus.RenderOptions{
			ListClass:        render.ListClass,
			ItemClass:        render.ItemClass,
			LinkClass:        render.LinkClass,
			ActiveClass:      render.ActiveClass,
			HasChildrenClass: render.HasChildrenClass,
			SubmenuClass:     render.SubmenuClass,
		}),
	}
	if c.resolver != nil {
		svcOpts = append(svcOpts, menus.WithURLResolver(c.resolver))
	}

	c.menuSvc = menus.NewService(c.store, svcOpts...)
	return nil
}

func (c *Container) configureCommands(context.Context) error {
	if !c.Config.Features.Commands {
		return nil
	}

	enabled := c.Config.Features.Menus
	gates := menuscmd.FeatureGates{MenusEnabled: func() bool { return enabled }}

	regOpts := commands.RegistrationOptions{
		Registry:   c.commandRegistry,
		Dispatcher: c.commandDispatcher,
	}
	if c.Config.Commands.AutoRegisterCron {
		regOpts.CronRegistrar = c.cronRegistrar
	}

	cacheOpts := []menuscmd.CacheHandlerOption{}
	if expr := strings.TrimSpace(c.Config.Commands.CacheRefreshCron); expr != "" {
		cacheOpts = append(cacheOpts, menuscmd.CacheWithCronExpression(expr))
	}

	set, result, err := menuscmd.RegisterMenuCommands(c.menuSvc, c.loggerProvider, gates, regOpts, cacheOpts...)
	c.commandSet = set
	c.registration = result
	if err != nil {
		return fmt.Errorf("di: register menu commands: %w", err)
	}

	if c.subscribeGlobal {
		subs := set.Subscribe(runner.WithMaxRetries(c.Config.Commands.MaxRetries))
		c.registration.Subscriptions = append(c.registration.Subscriptions, subs...)
	}
	return nil
}

// MenuService returns the configured menu service.
func (c *Container) MenuService() menus.Service {
	return c.menuSvc
}

// Store returns the tree store backing the service.
func (c *Container) Store() menus.Store {
	return c.store
}

// MenuCache returns the cache wrapper shared by the service.
func (c *Container) MenuCache() *menus.MenuCache {
	return c.menuCache
}

// CacheBackend returns the raw cache backend.
func (c *Container) CacheBackend() interfaces.CacheBackend {
	return c.cacheBackend
}

// BunDB returns the database handle, nil for the memory store.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// LoggerProvider returns the configured provider, possibly nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Commands returns the menu command handlers, nil when commands are disabled.
func (c *Container) Commands() *menuscmd.HandlerSet {
	return c.commandSet
}

// Registration returns the result of command registration.
func (c *Container) Registration() *commands.RegistrationResult {
	return c.registration
}

// Migrate applies pending migrations. It is a no-op for the memory store.
func (c *Container) Migrate(ctx context.Context) ([]string, error) {
	if c.bunDB == nil {
		return nil, nil
	}
	return storage.Migrate(ctx, c.bunDB)
}

// Close releases subscriptions, backends and any database the container opened.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	c.registration.Unsubscribe()

	var errs error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, c.closers[i]())
	}
	c.closers = nil
	if c.ownsDB && c.bunDB != nil {
		errs = errors.Join(errs, c.bunDB.Close())
		c.bunDB = nil
		c.ownsDB = false
	}
	return errs
}

func (c *Container) storageProvider() string {
	if c.bunDB != nil {
		return "bun"
	}
	return strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
}

func (c *Container) cacheBackendName() string {
	switch c.cacheBackend.(type) {
	case *cache.Memory:
		return "memory"
	case *cache.Redis:
		return "redis"
	default:
		return "custom"
	}
}
