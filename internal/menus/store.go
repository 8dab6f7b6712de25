package menus

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-menus/internal/identity"
)

// OrderAppend asks the store to place an item after its last live sibling.
const OrderAppend = -1

// Store persists menus and their item trees. Every mutation, including the
// ancestry validation it depends on, runs inside a single transaction.
type Store interface {
	CreateMenu(ctx context.Context, menu *Menu) (*Menu, error)
	// UpdateMenu returns the record before and after the patch.
	UpdateMenu(ctx context.Context, id uuid.UUID, patch MenuPatch) (before *Menu, after *Menu, err error)
	DeleteMenu(ctx context.Context, id uuid.UUID) (*Menu, error)
	RestoreMenu(ctx context.Context, id uuid.UUID) (*Menu, error)

	CreateItem(ctx context.Context, item *MenuItem) (*MenuItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, patch ItemPatch) (*MenuItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	RestoreItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)

	// GetMenu returns a live menu without its tree.
	GetMenu(ctx context.Context, id uuid.UUID) (*Menu, error)
	// GetItem returns an item by id, tombstoned or not.
	GetItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	FetchTree(ctx context.Context, menuID uuid.UUID, opts TreeOptions) ([]*MenuItem, error)
	// FetchByLocationOrSlug returns the earliest created live, active menu
	// matching key.
	FetchByLocationOrSlug(ctx context.Context, key string, kind LookupKind) (*Menu, error)
	ListMenus(ctx context.Context) ([]MenuSummary, error)
}

// txn is the set of primitives a store exposes inside one transaction.
type txn interface {
	ParentLookup

	// menu loads any menu row, tombstoned included. lock serializes
	// concurrent writers on the same menu where the engine supports it.
	menu(ctx context.Context, id uuid.UUID, lock bool) (*Menu, error)
	slugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error)
	insertMenu(ctx context.Context, menu *Menu) error
	saveMenu(ctx context.Context, menu *Menu) error

	item(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	// maxSiblingOrder reports the highest order among live siblings.
	maxSiblingOrder(ctx context.Context, menuID uuid.UUID, parentID *uuid.UUID) (int, bool, error)
	insertItem(ctx context.Context, item *MenuItem) error
	saveItem(ctx context.Context, item *MenuItem) error
	tombstoneItems(ctx context.Context, menuID uuid.UUID, at time.Time) error
	reviveItems(ctx context.Context, menuID uuid.UUID, at time.Time) error
}

// reader is the non transactional read side of a store.
type reader interface {
	menuByID(ctx context.Context, id uuid.UUID) (*Menu, error)
	itemByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	liveItems(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error)
	firstMenu(ctx context.Context, kind LookupKind, key string) (*Menu, error)
	liveMenus(ctx context.Context) ([]*Menu, error)
	liveItemCounts(ctx context.Context) (map[uuid.UUID]int, error)
}

type txRunner interface {
	inTx(ctx context.Context, fn func(ctx context.Context, tx txn) error) error
}

// StoreOption customizes the shared store behaviour.
type StoreOption func(*treeStore)

// WithStoreClock overrides the time source used for timestamps.
func WithStoreClock(clock func() time.Time) StoreOption {
	return func(s *treeStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithStoreIDGenerator overrides id generation for new records.
func WithStoreIDGenerator(gen func() uuid.UUID) StoreOption {
	return func(s *treeStore) {
		if gen != nil {
			s.id = gen
		}
	}
}

// WithCycleGuard replaces the default ancestry guard.
func WithCycleGuard(guard CycleGuard) StoreOption {
	return func(s *treeStore) {
		s.guard = guard
	}
}

// afterCommitHook runs after a committed mutation, used by stores that hold
// their own read caches.
type afterCommitHook func(ctx context.Context)

// treeStore holds the mutation rules shared by every backend.
type treeStore struct {
	runner      txRunner
	read        reader
	guard       CycleGuard
	now         func() time.Time
	id          func() uuid.UUID
	afterCommit afterCommitHook
}

func newTreeStore(runner txRunner, read reader, opts ...StoreOption) *treeStore {
	s := &treeStore{
		runner: runner,
		read:   read,
		guard:  CycleGuard{MaxDepth: DefaultMaxDepth},
		now:    time.Now,
		id:     identity.NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// timestamp is truncated so round trips through postgres (microseconds) keep
// equality, which cascade restores rely on.
func (s *treeStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *treeStore) mutate(ctx context.Context, fn func(ctx context.Context, tx txn) error) error {
	if err := s.runner.inTx(ctx, fn); err != nil {
		return err
	}
	if s.afterCommit != nil {
		s.afterCommit(ctx)
	}
	return nil
}

func (s *treeStore) CreateMenu(ctx context.Context, menu *Menu) (*Menu, error) {
	if menu == nil {
		return nil, NewValidationError("menu", "is required")
	}
	record := *menu
	record.Items = nil
	record.Name = strings.TrimSpace(record.Name)
	record.Slug = strings.TrimSpace(record.Slug)

	if record.Slug == "" {
		record.Slug = identity.DeriveSlug(record.Name)
		if record.Slug == "" {
			return nil, NewValidationError("slug", "cannot be derived from name")
		}
	} else if !identity.IsValidSlug(record.Slug) {
		return nil, NewValidationError("slug", "must contain only lowercase letters, digits and hyphens")
	}

	if record.ID == uuid.Nil {
		record.ID = s.id()
	}
	now := s.timestamp()
	record.CreatedAt, record.UpdatedAt = now, now
	record.DeletedAt = nil

	err := s.mutate(ctx, func(ctx context.Context, tx txn) error {
		taken, err := tx.slugTaken(ctx, record.Slug, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return &DuplicateSlugError{Slug: record.Slug}
		}
		return tx.insertMenu(ctx, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *treeStore) UpdateMenu(ctx context.Context, id uuid.UUID, patch MenuPatch) (*Menu, *Menu, error) {
	var before, after *Menu
	err := s.mutate(ctx, func(ctx context.Context, tx txn) error {
		current, err := tx.menu(ctx, id, true)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return &NotFoundError{Resource: "menu", Key: id.String()}
		}
		snapshot := *current
		before = &snapshot

		next := *current
		nameChanged := false
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			nameChanged = name != current.Name
			next.Name = name
		}
		if patch.Slug != nil {
			slug := strings.TrimSpace(*patch.Slug)
			switch {
			case slug == "" && nameChanged:
				next.Slug = identity.DeriveSlug(next.Name)
				if next.Slug == "" {
					return NewValidationError("slug", "cannot be derived from name")
				}
			case slug == "":
				// keep the current slug
			case !identity.IsValidSlug(slug):
				return NewValidationError("slug", "must contain only lowercase letters, digits and hyphens")
			default:
				next.Slug = slug
			}
		}
		if patch.Location != nil {
			next.Location = *patch.Location
		}
		if patch.Active != nil {
			next.Active = *patch.Active
		}

		if next.Slug != current.Slug {
			taken, err := tx.slugTaken(ctx, next.Slug, id)
			if err != nil {
				return err
			}
			if taken {
				return &DuplicateSlugError{Slug: next.Slug}
			}
		}

		next.UpdatedAt = s.timestamp()
		if err := tx.saveMenu(ctx, &next); err != nil {
			return err
		}
		after = &next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (s *treeStore) DeleteMenu(ctx context.Context, id uuid.UUID) (*Menu, error) {
	var deleted *Menu
	err := s.mutate(ctx, func(ctx context.Context, tx txn) error {
		menu, err := tx.menu(ctx, id, true)
		if err != nil {
			return err
		}
		if menu.IsDeleted() {
			return &NotFoundError{Resource: "menu", Key: id.String()}
		}
		at := s.timestamp()
		menu.DeletedAt = &at
		menu.UpdatedAt = at
		if err := tx.saveMenu(ctx, menu); err != nil {
			return err
		}
		if err := tx.tombstoneItems(ctx, id, at); err != nil {
			return err
		}
		deleted = menu
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *treeStore) RestoreMenu(ctx context.Context, id uuid.UUID) (*Menu, error) {
	var restored *Menu
	err := s.mutate(ctx, func(ctx context.Context, tx txn) error {
		menu, err := tx.menu(ctx, id, true)
		if err != nil {
			return err
		}
		if !menu.IsDeleted() {
			restored = menu
			return nil
		}
		at := *menu.DeletedAt
		menu.DeletedAt = nil
		menu.UpdatedAt = s.timestamp()
		if err := tx.saveMenu(ctx, menu); err != nil {
			return err
		}
		if err := tx.reviveItems(ctx, id, at); err != nil {
			return err
		}
		restored = menu
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

func (s *treeStore) CreateItem(ctx context.Context, item *MenuItem) (*MenuItem, error) {
	if item == nil {
		return nil, NewValidationError("item", "is required")
	}
	record := *item
	record.Children = nil
	record.DeletedAt = nil
	record.ParentID = normalizeParent(record.ParentID)
	if record.Target == "" {
		record.Target = TargetSelf
	}
	if record.ID == uuid.Nil {
		record.ID = s.id()
	}
	now := s.timestamp()
	record.CreatedAt, record.UpdatedAt = now, now

	err := s.mutate(ctx, func(ctx context.Context, tx txn) error {
		menu, err := tx.menu(ctx, record.MenuID, true)
		if err != nil {
			return err
		}
		if menu.IsDeleted() {
			return &NotFoundError{Resource: "menu", Key: record.MenuID.String()}
		}
		if record.ParentID != nil {
			if err := s.guard.Check(ctx, tx, record.MenuID, *record.ParentID, uuid.Nil); err != nil {
				return err
			}
		}
		if record.Order < 0 {
			order, err := nextOrder(ctx, tx, record.MenuID, record.ParentID)
			if err != nil {
				return err
			}
			record.Order = order
		}
		return tx.insertItem(ctx, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *treeStore) UpdateItem(ctx context.Context, id uuid.UUID, patch ItemPatch) (*MenuItem, error) {
	var updated *MenuItem
	err := s.mutate(ctx, func(ctx context.Context, tx txn) error {
		current, err := tx.item(ctx, id)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return &NotFoundError{Resource: "menu_item", Key: id.String()}
		}
		menu, err := tx.menu(ctx, current.MenuID, true)
		if err != nil {
			return err
		}
		if menu.IsDeleted() {
			return &NotFoundError{Resource: "menu", Key: current.MenuID.String()}
		}

		next := *current
		moved := false
		if patch.ParentID != nil {
			parent := normalizeParent(patch.ParentID)
			if !sameParent(parent, current.ParentID) {
				if parent != nil {
					if err := s.guard.Check(ctx, tx, current.MenuID, *parent, current.ID); err != nil {
						return err
					}
				}
				next.ParentID = parent
				moved = true
			}
		}
		if patch.Title != nil {
			next.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.URL != nil {
			next.URL = strings.TrimSpace(*patch.URL)
		}
		if patch.Route != nil {
			next.Route = strings.TrimSpace(*patch.Route)
		}
		if patch.Target != nil {
			next.Target = *patch.Target
		}
		if patch.CSSClass != nil {
			next.CSSClass = strings.TrimSpace(*patch.CSSClass)
		}
		if patch.Active != nil {
			next.Active = *patch.Active
		}

		switch {
		case patch.Order != nil && *patch.Order >= 0:
			next.Order = *patch.Order
		case patch.Order != nil || moved:
			order, err := nextOrder(ctx, tx, next.MenuID, next.ParentID)
			if err != nil {
				return err
			}
			next.Order = order
		}

		next.UpdatedAt = s.timestamp()
		if err := tx.saveItem(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *treeStore) DeleteItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	var deleted *MenuItem
	err := s.mutate(ctx, func(ctx context.Context, tx txn) error {
		item, err := tx.item(ctx, id)
		if err != nil {
			return err
		}
		if item.IsDeleted() {
			return &NotFoundError{Resource: "menu_item", Key: id.String()}
		}
		if _, err := tx.menu(ctx, item.MenuID, true); err != nil {
			return err
		}
		at := s.timestamp()
		item.DeletedAt = &at
		item.UpdatedAt = at
		if err := tx.saveItem(ctx, item); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *treeStore) RestoreItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	var restored *MenuItem
	err := s.mutate(ctx, func(ctx context.Context, tx txn) error {
		item, err := tx.item(ctx, id)
		if err != nil {
			return err
		}
		menu, err := tx.menu(ctx, item.MenuID, true)
		if err != nil {
			return err
		}
		if menu.IsDeleted() {
			return &NotFoundError{Resource: "menu", Key: item.MenuID.String()}
		}
		if !item.IsDeleted() {
			restored = item
			return nil
		}
		item.DeletedAt = nil
		item.UpdatedAt = s.timestamp()
		if err := tx.saveItem(ctx, item); err != nil {
			return err
		}
		restored = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

func (s *treeStore) GetMenu(ctx context.Context, id uuid.UUID) (*Menu, error) {
	menu, err := s.read.menuByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if menu.IsDeleted() {
		return nil, &NotFoundError{Resource: "menu", Key: id.String()}
	}
	return menu, nil
}

func (s *treeStore) GetItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	return s.read.itemByID(ctx, id)
}

func (s *treeStore) FetchTree(ctx context.Context, menuID uuid.UUID, opts TreeOptions) ([]*MenuItem, error) {
	if _, err := s.GetMenu(ctx, menuID); err != nil {
		return nil, err
	}
	items, err := s.read.liveItems(ctx, menuID)
	if err != nil {
		return nil, err
	}
	return BuildForest(items, opts), nil
}

func (s *treeStore) FetchByLocationOrSlug(ctx context.Context, key string, kind LookupKind) (*Menu, error) {
	key = strings.TrimSpace(key)
	if err := validateLookup(key, kind); err != nil {
		return nil, err
	}
	return s.read.firstMenu(ctx, kind, key)
}

func (s *treeStore) ListMenus(ctx context.Context) ([]MenuSummary, error) {
	menus, err := s.read.liveMenus(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.read.liveItemCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MenuSummary, 0, len(menus))
	for _, menu := range menus {
		out = append(out, MenuSummary{Menu: menu, ItemCount: counts[menu.ID]})
	}
	return out, nil
}

func nextOrder(ctx context.Context, tx txn, menuID uuid.UUID, parentID *uuid.UUID) (int, error) {
	highest, ok, err := tx.maxSiblingOrder(ctx, menuID, parentID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return highest + 1, nil
}

func normalizeParent(parent *uuid.UUID) *uuid.UUID {
	if parent == nil || *parent == uuid.Nil {
		return nil
	}
	id := *parent
	return &id
}

func sameParent(a, b *uuid.UUID) bool {
	a, b = normalizeParent(a), normalizeParent(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
