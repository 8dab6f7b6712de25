package commands

import (
	"strings"

	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

// HandlerLoggerName is the logger every menu command handler writes to.
const HandlerLoggerName = "menus.commands"

// HandlerLogger returns the logger shared by menu command handlers.
func HandlerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return logging.WithFields(logging.ModuleLogger(provider, HandlerLoggerName), map[string]any{
		"component": "command",
	})
}

// OperationFields splits an operation name such as "menus.item.add" into the
// aggregate it mutates and the action taken, so menu and item traffic can be
// filtered apart. Names outside the menus namespace only carry the operation.
func OperationFields(operation string) map[string]any {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		return nil
	}
	fields := map[string]any{"operation": operation}
	parts := strings.Split(operation, ".")
	if len(parts) == 3 && parts[0] == "menus" && parts[1] != "" && parts[2] != "" {
		fields["aggregate"] = parts[1]
		fields["action"] = parts[2]
	}
	return fields
}
