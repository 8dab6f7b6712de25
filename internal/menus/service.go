package menus

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-menus/internal/adapters/noop"
	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

// Service is the facade outer layers call for every menu operation.
type Service interface {
	CreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error)
	UpdateMenu(ctx context.Context, input UpdateMenuInput) (*Menu, error)
	// DeleteMenu tombstones a menu and its items once the authorizer allows
	// actor to do so.
	DeleteMenu(ctx context.Context, id uuid.UUID, actor Actor) error
	RestoreMenu(ctx context.Context, id uuid.UUID, actor Actor) (*Menu, error)

	// GetMenu returns the public tree: live, active items only.
	GetMenu(ctx context.Context, key string, kind LookupKind) (*Menu, error)
	// GetMenuTree returns the editing tree, inactive items included.
	GetMenuTree(ctx context.Context, menuID uuid.UUID) (*Menu, error)
	ListMenus(ctx context.Context) ([]MenuSummary, error)

	AddItem(ctx context.Context, input AddItemInput) (*MenuItem, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*MenuItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID, actor Actor) error
	RestoreItem(ctx context.Context, id uuid.UUID, actor Actor) (*MenuItem, error)

	// RenderMenu returns markup for the menu matching key. A missing menu
	// renders to "" without error.
	RenderMenu(ctx context.Context, key string, kind LookupKind, opts RenderOptions) (string, error)
	// DisplayURL is the admin view of an item's link.
	DisplayURL(ctx context.Context, menuSlug string, item *MenuItem) string

	// InvalidateCache drops the entries of one menu, or everything when
	// menuID is uuid.Nil.
	InvalidateCache(ctx context.Context, menuID uuid.UUID) error
}

// ServiceOption configures menu service behaviour.
type ServiceOption func(*service)

// WithCache sets the cache used for reads. Without it every read hits the
// store.
func WithCache(cache *MenuCache) ServiceOption {
	return func(s *service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithURLResolver overrides the resolver used for route tokens.
func WithURLResolver(resolver URLResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithAuthorizer overrides the menu deletion policy.
func WithAuthorizer(authorizer Authorizer) ServiceOption {
	return func(s *service) {
		if authorizer != nil {
			s.authorizer = authorizer
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocations restricts menus to the given locations.
func WithLocations(locations ...Location) ServiceOption {
	return func(s *service) {
		if len(locations) > 0 {
			s.locations = append([]Location(nil), locations...)
		}
	}
}

// WithRenderDefaults sets the options blank render fields fall back to.
func WithRenderDefaults(opts RenderOptions) ServiceOption {
	return func(s *service) {
		s.renderDefaults = opts.WithDefaults(DefaultRenderOptions())
	}
}

type service struct {
	store          Store
	cache          *MenuCache
	resolver       URLResolver
	authorizer     Authorizer
	logger         interfaces.Logger
	locations      []Location
	renderDefaults RenderOptions

	validate validator
	renderer *TreeRenderer
}

// NewService constructs the menu facade over store.
func NewService(store Store, opts ...ServiceOption) Service {
	s := &service{
		store:          store,
		cache:          NewMenuCache(noop.Cache()),
		resolver:       nopResolver{},
		authorizer:     NewRoleAuthorizer(),
		logger:         logging.ServiceLogger(nil),
		locations:      DefaultLocations,
		renderDefaults: DefaultRenderOptions(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.validate = newValidator(s.locations)
	s.renderer = NewTreeRenderer(s.resolver,
		WithRendererDefaults(s.renderDefaults),
		WithRendererLogger(s.logger),
	)
	return s
}

func (s *service) CreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.TrimSpace(input.Slug)
	input.Location = Location(strings.TrimSpace(string(input.Location)))
	if err := s.validate.createMenu(input); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	created, err := s.store.CreateMenu(ctx, &Menu{
		ID:       input.ID,
		Name:     input.Name,
		Slug:     input.Slug,
		Location: input.Location,
		Active:   active,
	})
	if err != nil {
		return nil, s.failed(ctx, "menus.menu.create_failed", err, uuid.Nil, uuid.Nil, input.Actor)
	}

	s.invalidate(ctx, created.ID, menuKeys(created)...)
	s.log(created.ID, uuid.Nil, input.Actor).Info("menus.menu.created",
		"slug", created.Slug,
		"location", string(created.Location),
	)
	return created, nil
}

func (s *service) UpdateMenu(ctx context.Context, input UpdateMenuInput) (*Menu, error) {
	input.Name = trimmed(input.Name)
	input.Slug = trimmed(input.Slug)
	if input.Location != nil {
		loc := Location(strings.TrimSpace(string(*input.Location)))
		input.Location = &loc
	}
	if err := s.validate.updateMenu(input); err != nil {
		return nil, err
	}

	before, after, err := s.store.UpdateMenu(ctx, input.ID, MenuPatch{
		Name:     input.Name,
		Slug:     input.Slug,
		Location: input.Location,
		Active:   input.Active,
	})
	if err != nil {
		return nil, s.failed(ctx, "menus.menu.update_failed", err, input.ID, uuid.Nil, input.Actor)
	}

	s.invalidate(ctx, after.ID, append(menuKeys(before), menuKeys(after)...)...)
	s.log(after.ID, uuid.Nil, input.Actor).Info("menus.menu.updated",
		"slug", after.Slug,
		"previous_slug", before.Slug,
		"location", string(after.Location),
	)
	return after, nil
}

func (s *service) DeleteMenu(ctx context.Context, id uuid.UUID, actor Actor) error {
	menu, err := s.store.GetMenu(ctx, id)
	if err != nil {
		return s.failed(ctx, "menus.menu.delete_failed", err, id, uuid.Nil, actor)
	}
	if !s.authorizer.CanDeleteMenu(ctx, actor, menu) {
		s.log(id, uuid.Nil, actor).Warn("menus.menu.delete_denied", "role", actor.Role)
		return ErrUnauthorized
	}

	deleted, err := s.store.DeleteMenu(ctx, id)
	if err != nil {
		return s.failed(ctx, "menus.menu.delete_failed", err, id, uuid.Nil, actor)
	}

	s.invalidate(ctx, id, menuKeys(deleted)...)
	s.log(id, uuid.Nil, actor).Info("menus.menu.deleted", "slug", deleted.Slug)
	return nil
}

func (s *service) RestoreMenu(ctx context.Context, id uuid.UUID, actor Actor) (*Menu, error) {
	restored, err := s.store.RestoreMenu(ctx, id)
	if err != nil {
		return nil, s.failed(ctx, "menus.menu.restore_failed", err, id, uuid.Nil, actor)
	}

	s.invalidate(ctx, id, menuKeys(restored)...)
	s.log(id, uuid.Nil, actor).Info("menus.menu.restored", "slug", restored.Slug)
	return restored, nil
}

func (s *service) GetMenu(ctx context.Context, key string, kind LookupKind) (*Menu, error) {
	key = strings.TrimSpace(key)
	if err := validateLookup(key, kind); err != nil {
		return nil, err
	}
	cacheKey := LookupKey(kind, key)
	epoch := s.cache.Epoch()
	if cached, ok := s.cache.GetMenu(ctx, cacheKey); ok {
		return cached, nil
	}

	menu, err := s.store.FetchByLocationOrSlug(ctx, key, kind)
	if err != nil {
		return nil, err
	}
	forest, err := s.store.FetchTree(ctx, menu.ID, TreeOptions{})
	if err != nil {
		return nil, err
	}
	menu.Items = forest

	s.cache.PutMenu(ctx, cacheKey, menu, epoch)
	return menu, nil
}

func (s *service) GetMenuTree(ctx context.Context, menuID uuid.UUID) (*Menu, error) {
	cacheKey := TreeKey(menuID)
	epoch := s.cache.Epoch()
	if cached, ok := s.cache.GetMenu(ctx, cacheKey); ok {
		return cached, nil
	}

	menu, err := s.store.GetMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	forest, err := s.store.FetchTree(ctx, menuID, TreeOptions{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	menu.Items = forest

	s.cache.PutMenu(ctx, cacheKey, menu, epoch)
	return menu, nil
}

func (s *service) ListMenus(ctx context.Context) ([]MenuSummary, error) {
	epoch := s.cache.Epoch()
	if cached, ok := s.cache.GetListing(ctx); ok {
		return cached, nil
	}

	list, err := s.store.ListMenus(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.PutListing(ctx, list, epoch)
	return list, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*MenuItem, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.URL = strings.TrimSpace(input.URL)
	input.Route = strings.TrimSpace(input.Route)
	input.CSSClass = strings.TrimSpace(input.CSSClass)
	if err := s.validate.addItem(input); err != nil {
		return nil, err
	}

	order := OrderAppend
	if input.Order != nil {
		order = *input.Order
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	created, err := s.store.CreateItem(ctx, &MenuItem{
		ID:       input.ID,
		MenuID:   input.MenuID,
		ParentID: input.ParentID,
		Title:    input.Title,
		URL:      input.URL,
		Route:    input.Route,
		Target:   input.Target,
		CSSClass: input.CSSClass,
		Order:    order,
		Active:   active,
	})
	if err != nil {
		return nil, s.failed(ctx, "menus.item.create_failed", err, input.MenuID, uuid.Nil, input.Actor)
	}

	s.invalidate(ctx, created.MenuID)
	s.log(created.MenuID, created.ID, input.Actor).Info("menus.item.created",
		"title", created.Title,
		"order", created.Order,
	)
	return created, nil
}

func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*MenuItem, error) {
	input.Title = trimmed(input.Title)
	input.URL = trimmed(input.URL)
	input.Route = trimmed(input.Route)
	input.CSSClass = trimmed(input.CSSClass)
	if err := s.validate.updateItem(input); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateItem(ctx, input.ID, ItemPatch{
		ParentID: input.ParentID,
		Title:    input.Title,
		URL:      input.URL,
		Route:    input.Route,
		Target:   input.Target,
		CSSClass: input.CSSClass,
		Order:    input.Order,
		Active:   input.Active,
	})
	if err != nil {
		return nil, s.failed(ctx, "menus.item.update_failed", err, uuid.Nil, input.ID, input.Actor)
	}

	s.invalidate(ctx, updated.MenuID)
	s.log(updated.MenuID, updated.ID, input.Actor).Info("menus.item.updated",
		"title", updated.Title,
		"order", updated.Order,
	)
	return updated, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID, actor Actor) error {
	deleted, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		return s.failed(ctx, "menus.item.delete_failed", err, uuid.Nil, id, actor)
	}

	s.invalidate(ctx, deleted.MenuID)
	s.log(deleted.MenuID, deleted.ID, actor).Info("menus.item.deleted")
	return nil
}

func (s *service) RestoreItem(ctx context.Context, id uuid.UUID, actor Actor) (*MenuItem, error) {
	restored, err := s.store.RestoreItem(ctx, id)
	if err != nil {
		return nil, s.failed(ctx, "menus.item.restore_failed", err, uuid.Nil, id, actor)
	}

	s.invalidate(ctx, restored.MenuID)
	s.log(restored.MenuID, restored.ID, actor).Info("menus.item.restored")
	return restored, nil
}

func (s *service) RenderMenu(ctx context.Context, key string, kind LookupKind, opts RenderOptions) (string, error) {
	menu, err := s.GetMenu(ctx, key, kind)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return s.renderer.Render(ctx, menu.Slug, menu.Items, opts), nil
}

func (s *service) DisplayURL(ctx context.Context, menuSlug string, item *MenuItem) string {
	return DisplayURL(ctx, s.resolver, menuSlug, item)
}

func (s *service) InvalidateCache(ctx context.Context, menuID uuid.UUID) error {
	if menuID == uuid.Nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.logger.Error("menus.cache.clear_failed", "error", err)
			return err
		}
		s.logger.Info("menus.cache.cleared")
		return nil
	}

	var extra []string
	if menu, err := s.store.GetMenu(ctx, menuID); err == nil {
		extra = menuKeys(menu)
	}
	keys, err := s.cache.Invalidate(ctx, menuID, extra...)
	if err != nil {
		s.log(menuID, uuid.Nil, Actor{}).Error("menus.cache.invalidate_failed", "error", err)
		return err
	}
	s.log(menuID, uuid.Nil, Actor{}).Debug("menus.cache.invalidated", "keys", len(keys))
	return nil
}

// invalidate runs after a committed mutation. Cache faults are logged; the
// mutation itself already succeeded and stale entries age out by TTL.
func (s *service) invalidate(ctx context.Context, menuID uuid.UUID, extraKeys ...string) {
	keys, err := s.cache.Invalidate(ctx, menuID, extraKeys...)
	if err != nil {
		s.log(menuID, uuid.Nil, Actor{}).Error("menus.cache.invalidate_failed", "error", err)
		return
	}
	s.log(menuID, uuid.Nil, Actor{}).Debug("menus.cache.invalidated", "keys", len(keys))
}

func (s *service) failed(ctx context.Context, event string, err error, menuID, itemID uuid.UUID, actor Actor) error {
	logger := s.log(menuID, itemID, actor).WithContext(ctx)
	if errors.Is(err, ErrStorageUnavailable) {
		logger.Error(event, "error", err, "kind", string(KindOf(err)))
	} else {
		logger.Debug(event, "error", err, "kind", string(KindOf(err)))
	}
	return err
}

func (s *service) log(menuID, itemID uuid.UUID, actor Actor) interfaces.Logger {
	return logging.WithMenuContext(s.logger, idString(menuID), idString(itemID), actor.String())
}

func menuKeys(menu *Menu) []string {
	if menu == nil {
		return nil
	}
	return []string{SlugKey(menu.Slug), LocationKey(menu.Location), TreeKey(menu.ID)}
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	return &out
}
