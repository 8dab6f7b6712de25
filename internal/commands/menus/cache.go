package menuscmd

import (
	"context"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-menus/internal/commands"
	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/internal/menus"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

// DefaultCacheRefreshExpression schedules the periodic full cache flush.
const DefaultCacheRefreshExpression = "@hourly"

// CacheHandlerOption customises the cache invalidation handler.
type CacheHandlerOption func(*InvalidateMenuCacheHandler)

// CacheWithCronExpression overrides the cron expression used for periodic flushes.
func CacheWithCronExpression(expression string) CacheHandlerOption {
	return func(h *InvalidateMenuCacheHandler) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			h.cronConfig.Expression = trimmed
		}
	}
}

// CacheWithHandlerOptions forwards options to the wrapped command handler.
func CacheWithHandlerOptions(opts ...commands.HandlerOption[InvalidateMenuCacheCommand]) CacheHandlerOption {
	return func(h *InvalidateMenuCacheHandler) {
		h.handlerOpts = append(h.handlerOpts, opts...)
	}
}

// InvalidateMenuCacheHandler orchestrates menu cache invalidation.
type InvalidateMenuCacheHandler struct {
	inner       *commands.Handler[InvalidateMenuCacheCommand]
	cronConfig  command.HandlerConfig
	handlerOpts []commands.HandlerOption[InvalidateMenuCacheCommand]
}

// NewInvalidateMenuCacheHandler constructs a handler wired to the provided menu service.
func NewInvalidateMenuCacheHandler(service menus.Service, logger interfaces.Logger, gates FeatureGates, opts ...CacheHandlerOption) *InvalidateMenuCacheHandler {
	baseLogger := commands.EnsureLogger(logger)
	h := &InvalidateMenuCacheHandler{
		cronConfig: command.HandlerConfig{Expression: DefaultCacheRefreshExpression},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	exec := func(ctx context.Context, msg InvalidateMenuCacheCommand) error {
		if err := service.InvalidateCache(ctx, msg.MenuID); err != nil {
			return err
		}
		scope := "all"
		if msg.MenuID != uuid.Nil {
			scope = msg.MenuID.String()
		}
		logging.WithFields(baseLogger, map[string]any{
			"operation": "invalidate",
			"scope":     scope,
		}).Info("menus.command.cache.invalidated")
		return nil
	}
	h.inner = newHandler(baseLogger, gates, "menus.cache.invalidate", exec, h.handlerOpts)
	return h
}

// Execute satisfies command.Commander[InvalidateMenuCacheCommand].
func (h *InvalidateMenuCacheHandler) Execute(ctx context.Context, msg InvalidateMenuCacheCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand with a full cache flush.
func (h *InvalidateMenuCacheHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), InvalidateMenuCacheCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *InvalidateMenuCacheHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the handler to CLI integrations.
func (h *InvalidateMenuCacheHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for cache invalidation.
func (h *InvalidateMenuCacheHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"menus", "cache", "invalidate"},
		Group:       "menus",
		Description: "Drop cached menu trees and listings",
	}
}
