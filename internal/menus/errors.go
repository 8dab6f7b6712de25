package menus

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrValidationFailed   = errors.New("menus: validation failed")
	ErrDuplicateSlug      = errors.New("menus: slug already exists")
	ErrParentNotFound     = errors.New("menus: parent item not found")
	ErrParentCrossMenu    = errors.New("menus: parent belongs to a different menu")
	ErrCycle              = errors.New("menus: parent assignment creates a cycle")
	ErrUnauthorized       = errors.New("menus: actor not authorized")
	ErrNotFound           = errors.New("menus: not found")
	ErrStorageUnavailable = errors.New("menus: storage unavailable")

	ErrMenuNotFound     = fmt.Errorf("menu %w", ErrNotFound)
	ErrMenuItemNotFound = fmt.Errorf("menu item %w", ErrNotFound)
)

// ValidationError reports which input fields were rejected and why.
type ValidationError struct {
	Errors validation.Errors
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Errors: validation.Errors{
		field: validation.NewError("validation_"+field, reason),
	}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, field := range e.FieldNames() {
		parts = append(parts, field+": "+e.Errors[field].Error())
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// FieldNames returns the rejected fields in sorted order.
func (e *ValidationError) FieldNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Errors))
	for field, err := range e.Errors {
		if err != nil {
			names = append(names, field)
		}
	}
	slices.Sort(names)
	return names
}

// Field returns the first rejected field, which is enough for callers that
// only surface one message.
func (e *ValidationError) Field() string {
	if names := e.FieldNames(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// Reasons maps each rejected field to its message.
func (e *ValidationError) Reasons() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, field := range e.FieldNames() {
		out[field] = e.Errors[field].Error()
	}
	return out
}

// asValidationError converts ozzo output into a ValidationError, passing
// through nil and internal (non field) errors.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		if fieldErrs.Filter() == nil {
			return nil
		}
		return &ValidationError{Errors: fieldErrs}
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return &ValidationError{Errors: validation.Errors{"input": err}}
}

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	if e.Resource == "menu_item" {
		return ErrMenuItemNotFound
	}
	return ErrMenuNotFound
}

// DuplicateSlugError names the slug that collided.
type DuplicateSlugError struct {
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("menus: slug %q already exists", e.Slug)
}

func (e *DuplicateSlugError) Unwrap() error { return ErrDuplicateSlug }

// StorageError wraps a storage engine fault raised during an operation. The
// transaction it happened in has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("menus: storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorageUnavailable, e.Err} }

// Kind is the discriminant returned to presentation layers.
type Kind string

const (
	KindNone               Kind = ""
	KindValidationFailed   Kind = "validation_failed"
	KindDuplicateSlug      Kind = "duplicate_slug"
	KindParentNotFound     Kind = "parent_not_found"
	KindParentCrossMenu    Kind = "parent_cross_menu"
	KindCycle              Kind = "cycle"
	KindUnauthorized       Kind = "unauthorized"
	KindNotFound           Kind = "not_found"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindUnknown            Kind = "unknown"
)

var kindOrder = []struct {
	target error
	kind   Kind
}{
	{ErrValidationFailed, KindValidationFailed},
	{ErrDuplicateSlug, KindDuplicateSlug},
	{ErrParentNotFound, KindParentNotFound},
	{ErrParentCrossMenu, KindParentCrossMenu},
	{ErrCycle, KindCycle},
	{ErrUnauthorized, KindUnauthorized},
	{ErrNotFound, KindNotFound},
	{ErrStorageUnavailable, KindStorageUnavailable},
}

// KindOf classifies err against the menus error taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, entry := range kindOrder {
		if errors.Is(err, entry.target) {
			return entry.kind
		}
	}
	return KindUnknown
}
