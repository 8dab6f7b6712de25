package menuscmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-menus/internal/menus"
)

const (
	createMenuMessageType  = "menus.menu.create"
	updateMenuMessageType  = "menus.menu.update"
	deleteMenuMessageType  = "menus.menu.delete"
	restoreMenuMessageType = "menus.menu.restore"

	addItemMessageType     = "menus.item.add"
	updateItemMessageType  = "menus.item.update"
	deleteItemMessageType  = "menus.item.delete"
	restoreItemMessageType = "menus.item.restore"

	invalidateMenuCacheMessageType = "menus.cache.invalidate"
)

var notNil = validation.By(func(value any) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
})

// CreateMenuCommand creates a menu. Field rules beyond presence are enforced
// by the menu service.
type CreateMenuCommand struct {
	ID       uuid.UUID      `json:"id,omitempty"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug,omitempty"`
	Location menus.Location `json:"location"`
	Active   *bool          `json:"active,omitempty"`
	Actor    menus.Actor    `json:"actor"`
}

// Type implements command.Message.
func (CreateMenuCommand) Type() string { return createMenuMessageType }

// Validate satisfies command.Message.
func (c CreateMenuCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Location, validation.Required),
	)
}

func (c CreateMenuCommand) input() menus.CreateMenuInput {
	return menus.CreateMenuInput{
		ID:       c.ID,
		Name:     c.Name,
		Slug:     c.Slug,
		Location: c.Location,
		Active:   c.Active,
		Actor:    c.Actor,
	}
}

// UpdateMenuCommand patches a menu. Nil fields are left untouched.
type UpdateMenuCommand struct {
	MenuID   uuid.UUID       `json:"menu_id"`
	Name     *string         `json:"name,omitempty"`
	Slug     *string         `json:"slug,omitempty"`
	Location *menus.Location `json:"location,omitempty"`
	Active   *bool           `json:"active,omitempty"`
	Actor    menus.Actor     `json:"actor"`
}

// Type implements command.Message.
func (UpdateMenuCommand) Type() string { return updateMenuMessageType }

// Validate satisfies command.Message.
func (c UpdateMenuCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MenuID, notNil),
	)
}

func (c UpdateMenuCommand) input() menus.UpdateMenuInput {
	return menus.UpdateMenuInput{
		ID:       c.MenuID,
		Name:     c.Name,
		Slug:     c.Slug,
		Location: c.Location,
		Active:   c.Active,
		Actor:    c.Actor,
	}
}

// DeleteMenuCommand tombstones a menu and its items. The actor must pass the
// configured authorizer.
type DeleteMenuCommand struct {
	MenuID uuid.UUID   `json:"menu_id"`
	Actor  menus.Actor `json:"actor"`
}

// Type implements command.Message.
func (DeleteMenuCommand) Type() string { return deleteMenuMessageType }

// Validate satisfies command.Message.
func (c DeleteMenuCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MenuID, notNil),
	)
}

// RestoreMenuCommand revives a tombstoned menu with the items deleted alongside it.
type RestoreMenuCommand struct {
	MenuID uuid.UUID   `json:"menu_id"`
	Actor  menus.Actor `json:"actor"`
}

// Type implements command.Message.
func (RestoreMenuCommand) Type() string { return restoreMenuMessageType }

// Validate satisfies command.Message.
func (c RestoreMenuCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MenuID, notNil),
	)
}

// AddItemCommand appends an item to a menu, optionally under a parent.
type AddItemCommand struct {
	ID       uuid.UUID    `json:"id,omitempty"`
	MenuID   uuid.UUID    `json:"menu_id"`
	ParentID *uuid.UUID   `json:"parent_id,omitempty"`
	Title    string       `json:"title"`
	URL      string       `json:"url,omitempty"`
	Route    string       `json:"route,omitempty"`
	Target   menus.Target `json:"target,omitempty"`
	CSSClass string       `json:"css_class,omitempty"`
	Order    *int         `json:"order,omitempty"`
	Active   *bool        `json:"active,omitempty"`
	Actor    menus.Actor  `json:"actor"`
}

// Type implements command.Message.
func (AddItemCommand) Type() string { return addItemMessageType }

// Validate satisfies command.Message.
func (c AddItemCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MenuID, notNil),
		validation.Field(&c.Title, validation.Required),
	)
}

func (c AddItemCommand) input() menus.AddItemInput {
	return menus.AddItemInput{
		ID:       c.ID,
		MenuID:   c.MenuID,
		ParentID: c.ParentID,
		Title:    c.Title,
		URL:      c.URL,
		Route:    c.Route,
		Target:   c.Target,
		CSSClass: c.CSSClass,
		Order:    c.Order,
		Active:   c.Active,
		Actor:    c.Actor,
	}
}

// UpdateItemCommand patches an item. A ParentID of uuid.Nil moves the item to
// the root level.
type UpdateItemCommand struct {
	ItemID   uuid.UUID     `json:"item_id"`
	ParentID *uuid.UUID    `json:"parent_id,omitempty"`
	Title    *string       `json:"title,omitempty"`
	URL      *string       `json:"url,omitempty"`
	Route    *string       `json:"route,omitempty"`
	Target   *menus.Target `json:"target,omitempty"`
	CSSClass *string       `json:"css_class,omitempty"`
	Order    *int          `json:"order,omitempty"`
	Active   *bool         `json:"active,omitempty"`
	Actor    menus.Actor   `json:"actor"`
}

// Type implements command.Message.
func (UpdateItemCommand) Type() string { return updateItemMessageType }

// Validate satisfies command.Message.
func (c UpdateItemCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ItemID, notNil),
	)
}

func (c UpdateItemCommand) input() menus.UpdateItemInput {
	return menus.UpdateItemInput{
		ID:       c.ItemID,
		ParentID: c.ParentID,
		Title:    c.Title,
		URL:      c.URL,
		Route:    c.Route,
		Target:   c.Target,
		CSSClass: c.CSSClass,
		Order:    c.Order,
		Active:   c.Active,
		Actor:    c.Actor,
	}
}

// DeleteItemCommand tombstones an item. Its descendants drop out of the tree
// until it is restored.
type DeleteItemCommand struct {
	ItemID uuid.UUID   `json:"item_id"`
	Actor  menus.Actor `json:"actor"`
}

// Type implements command.Message.
func (DeleteItemCommand) Type() string { return deleteItemMessageType }

// Validate satisfies command.Message.
func (c DeleteItemCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ItemID, notNil),
	)
}

// RestoreItemCommand revives a tombstoned item.
type RestoreItemCommand struct {
	ItemID uuid.UUID   `json:"item_id"`
	Actor  menus.Actor `json:"actor"`
}

// Type implements command.Message.
func (RestoreItemCommand) Type() string { return restoreItemMessageType }

// Validate satisfies command.Message.
func (c RestoreItemCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ItemID, notNil),
	)
}

// InvalidateMenuCacheCommand drops cached entries for one menu, or the whole
// cache when MenuID is empty.
type InvalidateMenuCacheCommand struct {
	MenuID uuid.UUID `json:"menu_id,omitempty"`
}

// Type implements command.Message.
func (InvalidateMenuCacheCommand) Type() string { return invalidateMenuCacheMessageType }

// Validate satisfies command.Message.
func (c InvalidateMenuCacheCommand) Validate() error {
	return validation.ValidateStruct(&c)
}
