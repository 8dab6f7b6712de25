package menus

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Location names the placement slot a menu is bound to.
type Location string

const (
	LocationMain    Location = "main"
	LocationFooter  Location = "footer"
	LocationSidebar Location = "sidebar"
)

// DefaultLocations lists the locations accepted when none are configured.
var DefaultLocations = []Location{LocationMain, LocationFooter, LocationSidebar}

// Target selects where a link opens.
type Target string

const (
	TargetSelf  Target = "_self"
	TargetBlank Target = "_blank"
)

// LookupKind selects which menu attribute a lookup key is matched against.
type LookupKind string

const (
	LookupBySlug     LookupKind = "slug"
	LookupByLocation LookupKind = "location"
)

// Menu is a named, located collection of navigation items.
type Menu struct {
	bun.BaseModel `bun:"table:menus,alias:m"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Name      string     `bun:"name,notnull" json:"name"`
	Slug      string     `bun:"slug,notnull,unique" json:"slug"`
	Location  Location   `bun:"location,notnull" json:"location"`
	Active    bool       `bun:"active,notnull" json:"active"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,notnull" json:"updated_at"`

	// Items holds the root level forest when the menu is loaded as a tree.
	Items []*MenuItem `bun:"-" json:"items,omitempty"`
}

// IsDeleted reports whether the menu is tombstoned.
func (m *Menu) IsDeleted() bool { return m != nil && m.DeletedAt != nil }

// MenuItem is a single navigation node, optionally nested under a parent of
// the same menu.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	MenuID    uuid.UUID  `bun:"menu_id,notnull,type:uuid" json:"menu_id"`
	ParentID  *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Title     string     `bun:"title,notnull" json:"title"`
	URL       string     `bun:"url" json:"url,omitempty"`
	Route     string     `bun:"route" json:"route,omitempty"`
	Target    Target     `bun:"target,notnull" json:"target"`
	CSSClass  string     `bun:"css_class" json:"css_class,omitempty"`
	Order     int        `bun:"sort_order,notnull" json:"order"`
	Active    bool       `bun:"active,notnull" json:"active"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,notnull" json:"updated_at"`

	Children []*MenuItem `bun:"-" json:"children,omitempty"`
}

// IsDeleted reports whether the item is tombstoned.
func (i *MenuItem) IsDeleted() bool { return i != nil && i.DeletedAt != nil }

// MenuSummary is a listing row: a menu without its tree plus the number of
// live items it owns.
type MenuSummary struct {
	Menu      *Menu `json:"menu"`
	ItemCount int   `json:"item_count"`
}

// TreeOptions tunes FetchTree.
type TreeOptions struct {
	// IncludeInactive keeps inactive items (and their subtrees) in the
	// forest. Editing views set it; public reads do not.
	IncludeInactive bool
}

// MenuPatch describes a partial menu update. Nil fields are left untouched.
// Setting Slug to an empty string re-derives it from the name when the name
// also changes.
type MenuPatch struct {
	Name     *string
	Slug     *string
	Location *Location
	Active   *bool
}

// ItemPatch describes a partial item update. Nil fields are left untouched.
// A ParentID pointing at uuid.Nil moves the item to the root level.
type ItemPatch struct {
	ParentID *uuid.UUID
	Title    *string
	URL      *string
	Route    *string
	Target   *Target
	CSSClass *string
	Order    *int
	Active   *bool
}

// ParentLink is the slice of an item CycleGuard needs to walk ancestry.
type ParentLink struct {
	ID       uuid.UUID
	MenuID   uuid.UUID
	ParentID *uuid.UUID
	Deleted  bool
}
