package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-menus/internal/identity"
	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/internal/menus"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

var (
	ErrServiceRequired  = errors.New("seed: menu service is required")
	ErrDocumentInvalid  = errors.New("seed: document invalid")
	ErrDuplicateItemKey = errors.New("seed: duplicate item key")
)

//go:embed schema.json
var schemaJSON []byte

//go:embed demo.yaml
var demoYAML []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Document is the declarative seed format.
type Document struct {
	Menus []Menu `yaml:"menus" json:"menus"`
}

// Menu declares one menu and its item forest. A blank Slug is derived from
// Name.
type Menu struct {
	Name     string         `yaml:"name" json:"name"`
	Slug     string         `yaml:"slug,omitempty" json:"slug,omitempty"`
	Location menus.Location `yaml:"location" json:"location"`
	Active   *bool          `yaml:"active,omitempty" json:"active,omitempty"`
	Items    []Item         `yaml:"items,omitempty" json:"items,omitempty"`
}

// Item declares a menu item. Key addresses the item among its siblings and
// defaults to the slug of Title; it feeds the deterministic item id.
type Item struct {
	Key      string       `yaml:"key,omitempty" json:"key,omitempty"`
	Title    string       `yaml:"title" json:"title"`
	URL      string       `yaml:"url,omitempty" json:"url,omitempty"`
	Route    string       `yaml:"route,omitempty" json:"route,omitempty"`
	Target   menus.Target `yaml:"target,omitempty" json:"target,omitempty"`
	CSSClass string       `yaml:"css_class,omitempty" json:"css_class,omitempty"`
	Order    *int         `yaml:"order,omitempty" json:"order,omitempty"`
	Active   *bool        `yaml:"active,omitempty" json:"active,omitempty"`
	Children []Item       `yaml:"children,omitempty" json:"children,omitempty"`
}

// Result counts what Apply changed.
type Result struct {
	MenusCreated int
	MenusUpdated int
	ItemsCreated int
	ItemsUpdated int
}

// Options configures Apply.
type Options struct {
	Actor  menus.Actor
	Logger interfaces.Logger
}

// Demo returns the bundled demo document: a main menu and a footer menu.
func Demo() (*Document, error) {
	return Parse(demoYAML)
}

// Parse decodes a yaml (or json) document and validates it against the seed
// schema.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}
	return &doc, nil
}

func validate(raw any) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("seed.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("seed.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("seed: compile schema: %w", schemaErr)
	}

	// Round trip through json so numbers and maps take the shapes the
	// validator expects.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s", ErrDocumentInvalid, describe(err))
	}
	return nil
}

func describe(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}
	parts := []string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := node.InstanceLocation
			if location == "" {
				location = "#"
			}
			parts = append(parts, location+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return strings.Join(parts, "; ")
}

// Apply converges the service onto doc. Menus and items carry ids derived
// from their slug and key path, so running the same document twice creates
// nothing new. Tombstoned records named by the document are restored.
func Apply(ctx context.Context, service menus.Service, doc *Document, opts Options) (Result, error) {
	var result Result
	if service == nil {
		return result, ErrServiceRequired
	}
	if doc == nil {
		return result, nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.SeedLogger(nil)
	}

	s := &seeder{service: service, actor: opts.Actor, logger: logger, result: &result}
	for _, menu := range doc.Menus {
		if err := s.menu(ctx, menu); err != nil {
			return result, err
		}
	}
	logger.Info("menus.seed.applied",
		"menus_created", result.MenusCreated,
		"menus_updated", result.MenusUpdated,
		"items_created", result.ItemsCreated,
		"items_updated", result.ItemsUpdated,
	)
	return result, nil
}

type seeder struct {
	service menus.Service
	actor   menus.Actor
	logger  interfaces.Logger
	result  *Result
}

func (s *seeder) menu(ctx context.Context, decl Menu) error {
	slug := strings.TrimSpace(decl.Slug)
	if slug == "" {
		slug = identity.DeriveSlug(decl.Name)
	}
	if slug == "" {
		return fmt.Errorf("%w: menu %q has no usable slug", ErrDocumentInvalid, decl.Name)
	}
	id := identity.MenuUUID(slug)

	existing, err := s.existingMenu(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		if _, err := s.service.CreateMenu(ctx, menus.CreateMenuInput{
			ID:       id,
			Name:     decl.Name,
			Slug:     slug,
			Location: decl.Location,
			Active:   decl.Active,
			Actor:    s.actor,
		}); err != nil {
			return fmt.Errorf("seed: create menu %q: %w", slug, err)
		}
		s.result.MenusCreated++
	} else if menuDrifted(existing, decl) {
		name, location := decl.Name, decl.Location
		if _, err := s.service.UpdateMenu(ctx, menus.UpdateMenuInput{
			ID:       id,
			Name:     &name,
			Location: &location,
			Active:   boolOr(decl.Active, true),
			Actor:    s.actor,
		}); err != nil {
			return fmt.Errorf("seed: update menu %q: %w", slug, err)
		}
		s.result.MenusUpdated++
	}

	tree, err := s.service.GetMenuTree(ctx, id)
	if err != nil {
		return fmt.Errorf("seed: load menu %q: %w", slug, err)
	}
	live := map[uuid.UUID]*menus.MenuItem{}
	menus.WalkForest(tree.Items, func(item *menus.MenuItem, _ int) {
		live[item.ID] = item
	})

	return s.items(ctx, slug, id, nil, "", decl.Items, live)
}

// existingMenu returns the live menu with id, restoring it first when it is
// tombstoned. A nil menu means it has never been created.
func (s *seeder) existingMenu(ctx context.Context, id uuid.UUID) (*menus.Menu, error) {
	menu, err := s.service.GetMenuTree(ctx, id)
	if err == nil {
		return menu, nil
	}
	if !errors.Is(err, menus.ErrNotFound) {
		return nil, err
	}
	restored, err := s.service.RestoreMenu(ctx, id, s.actor)
	if errors.Is(err, menus.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("menus.seed.menu_restored", "menu_id", id.String())
	return restored, nil
}

func (s *seeder) items(ctx context.Context, menuSlug string, menuID uuid.UUID, parentID *uuid.UUID, parentPath string, decls []Item, live map[uuid.UUID]*menus.MenuItem) error {
	seen := map[string]struct{}{}
	for position, decl := range decls {
		key := strings.TrimSpace(decl.Key)
		if key == "" {
			key = identity.DeriveSlug(decl.Title)
		}
		if key == "" {
			return fmt.Errorf("%w: item %q has no usable key", ErrDocumentInvalid, decl.Title)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q under %q in menu %q", ErrDuplicateItemKey, key, parentPath, menuSlug)
		}
		seen[key] = struct{}{}

		path := key
		if parentPath != "" {
			path = parentPath + "/" + key
		}
		id := identity.MenuItemUUID(menuSlug, path)

		order := position
		if decl.Order != nil {
			order = *decl.Order
		}

		if err := s.item(ctx, menuID, parentID, id, order, decl, live); err != nil {
			return fmt.Errorf("seed: item %q in menu %q: %w", path, menuSlug, err)
		}

		if len(decl.Children) > 0 {
			itemID := id
			if err := s.items(ctx, menuSlug, menuID, &itemID, path, decl.Children, live); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) item(ctx context.Context, menuID uuid.UUID, parentID *uuid.UUID, id uuid.UUID, order int, decl Item, live map[uuid.UUID]*menus.MenuItem) error {
	current, ok := live[id]
	if !ok {
		restored, err := s.service.RestoreItem(ctx, id, s.actor)
		switch {
		case err == nil:
			current = restored
		case errors.Is(err, menus.ErrNotFound):
			if _, err := s.service.AddItem(ctx, menus.AddItemInput{
				ID:       id,
				MenuID:   menuID,
				ParentID: parentID,
				Title:    decl.Title,
				URL:      decl.URL,
				Route:    decl.Route,
				Target:   decl.Target,
				CSSClass: decl.CSSClass,
				Order:    &order,
				Active:   decl.Active,
				Actor:    s.actor,
			}); err != nil {
				return err
			}
			s.result.ItemsCreated++
			return nil
		default:
			return err
		}
	}

	if !itemDrifted(current, parentID, order, decl) {
		return nil
	}
	parent := uuid.Nil
	if parentID != nil {
		parent = *parentID
	}
	target := decl.Target
	if target == "" {
		target = menus.TargetSelf
	}
	title, url, route, class := decl.Title, decl.URL, decl.Route, decl.CSSClass
	if _, err := s.service.UpdateItem(ctx, menus.UpdateItemInput{
		ID:       id,
		ParentID: &parent,
		Title:    &title,
		URL:      &url,
		Route:    &route,
		Target:   &target,
		CSSClass: &class,
		Order:    &order,
		Active:   boolOr(decl.Active, true),
		Actor:    s.actor,
	}); err != nil {
		return err
	}
	s.result.ItemsUpdated++
	return nil
}

func menuDrifted(current *menus.Menu, decl Menu) bool {
	return current.Name != strings.TrimSpace(decl.Name) ||
		current.Location != decl.Location ||
		current.Active != *boolOr(decl.Active, true)
}

func itemDrifted(current *menus.MenuItem, parentID *uuid.UUID, order int, decl Item) bool {
	target := decl.Target
	if target == "" {
		target = menus.TargetSelf
	}
	return !sameParent(current.ParentID, parentID) ||
		current.Title != strings.TrimSpace(decl.Title) ||
		current.URL != strings.TrimSpace(decl.URL) ||
		current.Route != strings.TrimSpace(decl.Route) ||
		current.Target != target ||
		current.CSSClass != strings.TrimSpace(decl.CSSClass) ||
		current.Order != order ||
		current.Active != *boolOr(decl.Active, true)
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolOr(v *bool, fallback bool) *bool {
	if v != nil {
		return v
	}
	return &fallback
}
