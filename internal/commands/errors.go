package commands

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-menus/internal/menus"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

// WrapValidationError tags a message validation failure.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

// WrapContextError tags cancellation and deadline failures.
func WrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// WrapExecuteError tags a failure returned by the menu service. Errors from
// the menus taxonomy carry a MENU_* text code; validation kinds land in the
// validation category, the rest in the command category.
func WrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	kind := menus.KindOf(err)
	switch kind {
	case menus.KindUnknown, menus.KindNone:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(commandExecuteFailed)
	case menus.KindValidationFailed, menus.KindDuplicateSlug, menus.KindParentNotFound,
		menus.KindParentCrossMenu, menus.KindCycle:
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithTextCode(TextCode(kind))
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, err.Error()).
			WithTextCode(TextCode(kind))
	}
}

// TextCode returns the MENU_* code for kind, e.g. MENU_CYCLE.
func TextCode(kind menus.Kind) string {
	if kind == menus.KindNone {
		return ""
	}
	return "MENU_" + strings.ToUpper(string(kind))
}
