package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-menus/pkg/interfaces"
)

type contextKey string

const contextFieldsKey contextKey = "menus.logging.fields"

// WithFields attaches structured fields when the logger supports the
// FieldsLogger extension and returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithMenuContext adds the menu, item and actor identifiers shared by every
// mutation log entry. Blank values are skipped.
func WithMenuContext(logger interfaces.Logger, menuID, itemID, actor string) interfaces.Logger {
	fields := map[string]any{}
	if v := strings.TrimSpace(menuID); v != "" {
		fields["menu_id"] = v
	}
	if v := strings.TrimSpace(itemID); v != "" {
		fields["item_id"] = v
	}
	if v := strings.TrimSpace(actor); v != "" {
		fields["actor"] = v
	}
	return WithFields(logger, fields)
}

// ContextWithFields returns a context carrying fields that context aware
// loggers merge into later entries. Fields already on ctx are kept unless
// overridden.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns a copy of the fields stored on ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}
