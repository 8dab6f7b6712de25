package menuscmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-menus/internal/commands"
	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/internal/menus"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

var ErrMenusModuleDisabled = errors.New("menus command: module disabled")

// FeatureGates exposes the runtime toggle required by menu command handlers.
type FeatureGates struct {
	MenusEnabled func() bool
}

func (g FeatureGates) menusEnabled() bool {
	if g.MenusEnabled == nil {
		return true
	}
	return g.MenusEnabled()
}

func newHandler[T command.Message](logger interfaces.Logger, gates FeatureGates, operation string, exec command.CommandFunc[T], opts []commands.HandlerOption[T]) *commands.Handler[T] {
	logger = commands.EnsureLogger(logger)
	gated := func(ctx context.Context, msg T) error {
		if !gates.menusEnabled() {
			return ErrMenusModuleDisabled
		}
		return exec(ctx, msg)
	}
	handlerOpts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
	}
	handlerOpts = append(handlerOpts, opts...)
	return commands.NewHandler(gated, handlerOpts...)
}

// NewCreateMenuHandler returns the handler for CreateMenuCommand.
func NewCreateMenuHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CreateMenuCommand]) *commands.Handler[CreateMenuCommand] {
	return newHandler(logger, gates, "menus.menu.create", func(ctx context.Context, msg CreateMenuCommand) error {
		menu, err := service.CreateMenu(ctx, msg.input())
		if err != nil {
			return err
		}
		logging.WithMenuContext(commands.EnsureLogger(logger), menu.ID.String(), "", msg.Actor.String()).
			Debug("menus.command.menu.created", "slug", menu.Slug)
		return nil
	}, opts)
}

// NewUpdateMenuHandler returns the handler for UpdateMenuCommand.
func NewUpdateMenuHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[UpdateMenuCommand]) *commands.Handler[UpdateMenuCommand] {
	return newHandler(logger, gates, "menus.menu.update", func(ctx context.Context, msg UpdateMenuCommand) error {
		_, err := service.UpdateMenu(ctx, msg.input())
		return err
	}, opts)
}

// NewDeleteMenuHandler returns the handler for DeleteMenuCommand.
func NewDeleteMenuHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[DeleteMenuCommand]) *commands.Handler[DeleteMenuCommand] {
	return newHandler(logger, gates, "menus.menu.delete", func(ctx context.Context, msg DeleteMenuCommand) error {
		return service.DeleteMenu(ctx, msg.MenuID, msg.Actor)
	}, opts)
}

// NewRestoreMenuHandler returns the handler for RestoreMenuCommand.
func NewRestoreMenuHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RestoreMenuCommand]) *commands.Handler[RestoreMenuCommand] {
	return newHandler(logger, gates, "menus.menu.restore", func(ctx context.Context, msg RestoreMenuCommand) error {
		_, err := service.RestoreMenu(ctx, msg.MenuID, msg.Actor)
		return err
	}, opts)
}

// NewAddItemHandler returns the handler for AddItemCommand.
func NewAddItemHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[AddItemCommand]) *commands.Handler[AddItemCommand] {
	return newHandler(logger, gates, "menus.item.add", func(ctx context.Context, msg AddItemCommand) error {
		_, err := service.AddItem(ctx, msg.input())
		return err
	}, opts)
}

// NewUpdateItemHandler returns the handler for UpdateItemCommand.
func NewUpdateItemHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[UpdateItemCommand]) *commands.Handler[UpdateItemCommand] {
	return newHandler(logger, gates, "menus.item.update", func(ctx context.Context, msg UpdateItemCommand) error {
		_, err := service.UpdateItem(ctx, msg.input())
		return err
	}, opts)
}

// NewDeleteItemHandler returns the handler for DeleteItemCommand.
func NewDeleteItemHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[DeleteItemCommand]) *commands.Handler[DeleteItemCommand] {
	return newHandler(logger, gates, "menus.item.delete", func(ctx context.Context, msg DeleteItemCommand) error {
		return service.DeleteItem(ctx, msg.ItemID, msg.Actor)
	}, opts)
}

// NewRestoreItemHandler returns the handler for RestoreItemCommand.
func NewRestoreItemHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RestoreItemCommand]) *commands.Handler[RestoreItemCommand] {
	return newHandler(logger, gates, "menus.item.restore", func(ctx context.Context, msg RestoreItemCommand) error {
		_, err := service.RestoreItem(ctx, msg.ItemID, msg.Actor)
		return err
	}, opts)
}
