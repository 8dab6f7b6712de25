package menuscmd

import (
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-menus/internal/commands"
	"github.com/goliatone/go-menus/internal/menus"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

// HandlerSet holds one handler per menu command.
type HandlerSet struct {
	CreateMenu      *commands.Handler[CreateMenuCommand]
	UpdateMenu      *commands.Handler[UpdateMenuCommand]
	DeleteMenu      *commands.Handler[DeleteMenuCommand]
	RestoreMenu     *commands.Handler[RestoreMenuCommand]
	AddItem         *commands.Handler[AddItemCommand]
	UpdateItem      *commands.Handler[UpdateItemCommand]
	DeleteItem      *commands.Handler[DeleteItemCommand]
	RestoreItem     *commands.Handler[RestoreItemCommand]
	InvalidateCache *InvalidateMenuCacheHandler
}

// NewHandlerSet builds every menu command handler around service.
func NewHandlerSet(service menus.Service, logger interfaces.Logger, gates FeatureGates, cacheOpts ...CacheHandlerOption) *HandlerSet {
	return &HandlerSet{
		CreateMenu:      NewCreateMenuHandler(service, logger, gates),
		UpdateMenu:      NewUpdateMenuHandler(service, logger, gates),
		DeleteMenu:      NewDeleteMenuHandler(service, logger, gates),
		RestoreMenu:     NewRestoreMenuHandler(service, logger, gates),
		AddItem:         NewAddItemHandler(service, logger, gates),
		UpdateItem:      NewUpdateItemHandler(service, logger, gates),
		DeleteItem:      NewDeleteItemHandler(service, logger, gates),
		RestoreItem:     NewRestoreItemHandler(service, logger, gates),
		InvalidateCache: NewInvalidateMenuCacheHandler(service, logger, gates, cacheOpts...),
	}
}

// All returns the handlers in registration order.
func (s *HandlerSet) All() []any {
	if s == nil {
		return nil
	}
	return []any{
		s.CreateMenu,
		s.UpdateMenu,
		s.DeleteMenu,
		s.RestoreMenu,
		s.AddItem,
		s.UpdateItem,
		s.DeleteItem,
		s.RestoreItem,
		s.InvalidateCache,
	}
}

// RegisterMenuCommands builds the handler set and registers it with the
// integrations in opts.
func RegisterMenuCommands(service menus.Service, provider interfaces.LoggerProvider, gates FeatureGates, opts commands.RegistrationOptions, cacheOpts ...CacheHandlerOption) (*HandlerSet, *commands.RegistrationResult, error) {
	set := NewHandlerSet(service, commands.HandlerLogger(provider), gates, cacheOpts...)
	result, err := commands.Register(set.All(), opts)
	return set, result, err
}

// Subscribe attaches every handler to the go-command dispatcher so messages
// sent through dispatcher.Dispatch reach the menu service.
func (s *HandlerSet) Subscribe(opts ...runner.Option) []commands.CommandSubscription {
	if s == nil {
		return nil
	}
	return []commands.CommandSubscription{
		dispatcher.SubscribeCommand(s.CreateMenu, opts...),
		dispatcher.SubscribeCommand(s.UpdateMenu, opts...),
		dispatcher.SubscribeCommand(s.DeleteMenu, opts...),
		dispatcher.SubscribeCommand(s.RestoreMenu, opts...),
		dispatcher.SubscribeCommand(s.AddItem, opts...),
		dispatcher.SubscribeCommand(s.UpdateItem, opts...),
		dispatcher.SubscribeCommand(s.DeleteItem, opts...),
		dispatcher.SubscribeCommand(s.RestoreItem, opts...),
		dispatcher.SubscribeCommand(s.InvalidateCache, opts...),
	}
}
