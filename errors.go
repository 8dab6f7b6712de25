package menus

import menuscore "github.com/goliatone/go-menus/internal/menus"

var (
	ErrValidationFailed   = menuscore.ErrValidationFailed
	ErrDuplicateSlug      = menuscore.ErrDuplicateSlug
	ErrParentNotFound     = menuscore.ErrParentNotFound
	ErrParentCrossMenu    = menuscore.ErrParentCrossMenu
	ErrCycle              = menuscore.ErrCycle
	ErrUnauthorized       = menuscore.ErrUnauthorized
	ErrNotFound           = menuscore.ErrNotFound
	ErrMenuNotFound       = menuscore.ErrMenuNotFound
	ErrMenuItemNotFound   = menuscore.ErrMenuItemNotFound
	ErrStorageUnavailable = menuscore.ErrStorageUnavailable
)

type (
	ValidationError    = menuscore.ValidationError
	NotFoundError      = menuscore.NotFoundError
	DuplicateSlugError = menuscore.DuplicateSlugError
	StorageError       = menuscore.StorageError
	ErrorKind          = menuscore.Kind
)

// KindOf classifies err into one of the menu error kinds.
func KindOf(err error) ErrorKind {
	return menuscore.KindOf(err)
}
