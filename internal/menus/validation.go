package menus

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	maxNameLength  = 255
	maxSlugLength  = 255
	maxTitleLength = 255
	maxURLLength   = 2048
	maxRouteLength = 255
	maxClassLength = 255
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateMenuInput describes a new menu. A blank Slug is derived from Name.
type CreateMenuInput struct {
	// ID is optional; seeding supplies deterministic ids.
	ID       uuid.UUID `json:"id,omitempty"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug,omitempty"`
	Location Location  `json:"location"`
	// Active defaults to true.
	Active *bool `json:"active,omitempty"`
	Actor  Actor `json:"-"`
}

// UpdateMenuInput patches a menu. Nil fields are left untouched.
type UpdateMenuInput struct {
	ID       uuid.UUID `json:"id"`
	Name     *string   `json:"name,omitempty"`
	Slug     *string   `json:"slug,omitempty"`
	Location *Location `json:"location,omitempty"`
	Active   *bool     `json:"active,omitempty"`
	Actor    Actor     `json:"-"`
}

// AddItemInput describes a new menu item. A nil Order appends the item after
// its last live sibling.
type AddItemInput struct {
	ID       uuid.UUID  `json:"id,omitempty"`
	MenuID   uuid.UUID  `json:"menu_id"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Title    string     `json:"title"`
	URL      string     `json:"url,omitempty"`
	Route    string     `json:"route,omitempty"`
	Target   Target     `json:"target,omitempty"`
	CSSClass string     `json:"css_class,omitempty"`
	Order    *int       `json:"order,omitempty"`
	// Active defaults to true.
	Active *bool `json:"active,omitempty"`
	Actor  Actor `json:"-"`
}

// UpdateItemInput patches an item. A ParentID of uuid.Nil moves the item to
// the root level.
type UpdateItemInput struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Title    *string    `json:"title,omitempty"`
	URL      *string    `json:"url,omitempty"`
	Route    *string    `json:"route,omitempty"`
	Target   *Target    `json:"target,omitempty"`
	CSSClass *string    `json:"css_class,omitempty"`
	Order    *int       `json:"order,omitempty"`
	Active   *bool      `json:"active,omitempty"`
	Actor    Actor      `json:"-"`
}

// validator holds the configured vocabulary rules depend on.
type validator struct {
	locations []any
}

func newValidator(locations []Location) validator {
	if len(locations) == 0 {
		locations = DefaultLocations
	}
	allowed := make([]any, 0, len(locations))
	for _, loc := range locations {
		allowed = append(allowed, loc)
	}
	return validator{locations: allowed}
}

var requiredID = validation.By(func(value any) error {
	switch v := value.(type) {
	case uuid.UUID:
		if v == uuid.Nil {
			return validation.NewError("validation_required", "cannot be blank")
		}
	case *uuid.UUID:
		if v == nil || *v == uuid.Nil {
			return validation.NewError("validation_required", "cannot be blank")
		}
	}
	return nil
})

var slugRule = validation.Match(slugPattern).Error("must contain only lowercase letters, digits and hyphens")

var targetRule = validation.In(TargetSelf, TargetBlank).Error("must be _self or _blank")

func (v validator) createMenu(in CreateMenuInput) error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, maxNameLength)),
		validation.Field(&in.Slug, validation.RuneLength(0, maxSlugLength), slugRule),
		validation.Field(&in.Location, validation.Required, validation.In(v.locations...).Error("is not a configured location")),
	))
}

func (v validator) updateMenu(in UpdateMenuInput) error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.ID, requiredID),
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.RuneLength(1, maxNameLength)),
		validation.Field(&in.Slug, validation.RuneLength(0, maxSlugLength), slugRule),
		validation.Field(&in.Location, validation.NilOrNotEmpty, validation.In(v.locations...).Error("is not a configured location")),
	))
}

func (v validator) addItem(in AddItemInput) error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.MenuID, requiredID),
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, maxTitleLength)),
		validation.Field(&in.URL, validation.RuneLength(0, maxURLLength)),
		validation.Field(&in.Route, validation.RuneLength(0, maxRouteLength)),
		validation.Field(&in.Target, targetRule),
		validation.Field(&in.CSSClass, validation.RuneLength(0, maxClassLength)),
		validation.Field(&in.Order, validation.Min(0)),
	))
}

func (v validator) updateItem(in UpdateItemInput) error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.ID, requiredID),
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.RuneLength(1, maxTitleLength)),
		validation.Field(&in.URL, validation.RuneLength(0, maxURLLength)),
		validation.Field(&in.Route, validation.RuneLength(0, maxRouteLength)),
		validation.Field(&in.Target, validation.NilOrNotEmpty, targetRule),
		validation.Field(&in.CSSClass, validation.RuneLength(0, maxClassLength)),
		validation.Field(&in.Order, validation.Min(0)),
	))
}

func validateLookup(key string, kind LookupKind) error {
	switch kind {
	case LookupBySlug, LookupByLocation:
	default:
		return NewValidationError("kind", fmt.Sprintf("unsupported lookup kind %q", kind))
	}
	if key == "" {
		return NewValidationError("key", "is required")
	}
	return nil
}
