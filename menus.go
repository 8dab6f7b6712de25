package menus

import (
	"context"
	"errors"

	"github.com/goliatone/go-menus/internal/commands"
	menuscmd "github.com/goliatone/go-menus/internal/commands/menus"
	"github.com/goliatone/go-menus/internal/di"
	"github.com/goliatone/go-menus/internal/logging"
	menuscore "github.com/goliatone/go-menus/internal/menus"
	"github.com/goliatone/go-menus/internal/seed"
)

// Service exports the menu service contract.
type Service = menuscore.Service

type (
	Menu            = menuscore.Menu
	MenuItem        = menuscore.MenuItem
	MenuSummary     = menuscore.MenuSummary
	Location        = menuscore.Location
	Target          = menuscore.Target
	LookupKind      = menuscore.LookupKind
	Actor           = menuscore.Actor
	Authorizer      = menuscore.Authorizer
	AuthorizerFunc  = menuscore.AuthorizerFunc
	URLResolver     = menuscore.URLResolver
	URLResolverFunc = menuscore.URLResolverFunc
	ResolveRequest  = menuscore.ResolveRequest
	RenderOptions   = menuscore.RenderOptions
	CreateMenuInput = menuscore.CreateMenuInput
	UpdateMenuInput = menuscore.UpdateMenuInput
	AddItemInput    = menuscore.AddItemInput
	UpdateItemInput = menuscore.UpdateItemInput
)

const (
	LocationMain     = menuscore.LocationMain
	LocationFooter   = menuscore.LocationFooter
	LocationSidebar  = menuscore.LocationSidebar
	TargetSelf       = menuscore.TargetSelf
	TargetBlank      = menuscore.TargetBlank
	LookupBySlug     = menuscore.LookupBySlug
	LookupByLocation = menuscore.LookupByLocation
	RoleSuperAdmin   = menuscore.RoleSuperAdmin
)

// SeedResult counts what a seed run changed.
type SeedResult = seed.Result

// SeedDocument is the declarative seed format.
type SeedDocument = seed.Document

var errNilModule = errors.New("menus: module is nil")

// WalkForest visits every node of forest depth first, roots at depth zero.
func WalkForest(forest []*MenuItem, visit func(item *MenuItem, depth int)) {
	menuscore.WalkForest(forest, visit)
}

// Module is the top level runtime facade over the DI container.
type Module struct {
	container *di.Container
}

// New constructs a menus module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}

// Service returns the configured menu service.
func (m *Module) Service() Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.MenuService()
}

// Commands returns the command handlers, or nil when commands are disabled.
func (m *Module) Commands() *menuscmd.HandlerSet {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands()
}

// Registration reports the handlers registered with the command registry.
func (m *Module) Registration() *commands.RegistrationResult {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Registration()
}

// Migrate applies pending schema migrations. It returns the applied
// migration names and is a no-op for the memory store.
func (m *Module) Migrate(ctx context.Context) ([]string, error) {
	if m == nil || m.container == nil {
		return nil, errNilModule
	}
	return m.container.Migrate(ctx)
}

// Seed parses a yaml seed document and converges the menu service onto it.
func (m *Module) Seed(ctx context.Context, data []byte, actor Actor) (SeedResult, error) {
	doc, err := seed.Parse(data)
	if err != nil {
		return SeedResult{}, err
	}
	return m.apply(ctx, doc, actor)
}

// SeedDemo applies the bundled main and footer demo menus.
func (m *Module) SeedDemo(ctx context.Context, actor Actor) (SeedResult, error) {
	doc, err := seed.Demo()
	if err != nil {
		return SeedResult{}, err
	}
	return m.apply(ctx, doc, actor)
}

func (m *Module) apply(ctx context.Context, doc *seed.Document, actor Actor) (SeedResult, error) {
	if m == nil || m.container == nil {
		return SeedResult{}, errNilModule
	}
	return seed.Apply(ctx, m.container.MenuService(), doc, seed.Options{
		Actor:  actor,
		Logger: logging.SeedLogger(m.container.LoggerProvider()),
	})
}

// Close releases resources the module opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
