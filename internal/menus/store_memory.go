package menus

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewMemoryStore returns an in-process Store. Mutations run against a copy of
// the data set that replaces the live one only when the whole operation
// succeeds, which gives the same all-or-nothing behaviour as a database
// transaction.
func NewMemoryStore(opts ...StoreOption) Store {
	mem := &memoryStore{state: &memoryState{
		menus: map[uuid.UUID]*Menu{},
		items: map[uuid.UUID]*MenuItem{},
	}}
	return newTreeStore(mem, mem, opts...)
}

var errDuplicateKey = errors.New("duplicate primary key")

type memoryStore struct {
	mu    sync.RWMutex
	state *memoryState
}

type memoryState struct {
	menus map[uuid.UUID]*Menu
	items map[uuid.UUID]*MenuItem
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		menus: make(map[uuid.UUID]*Menu, len(s.menus)),
		items: make(map[uuid.UUID]*MenuItem, len(s.items)),
	}
	for id, menu := range s.menus {
		out.menus[id] = cloneMenu(menu)
	}
	for id, item := range s.items {
		out.items[id] = cloneItem(item)
	}
	return out
}

func (m *memoryStore) inTx(ctx context.Context, fn func(ctx context.Context, tx txn) error) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "begin", Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	working := m.state.clone()
	if err := fn(ctx, &memoryTx{state: working}); err != nil {
		return err
	}
	m.state = working
	return nil
}

func (m *memoryStore) menuByID(_ context.Context, id uuid.UUID) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	menu, ok := m.state.menus[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: id.String()}
	}
	return cloneMenu(menu), nil
}

func (m *memoryStore) itemByID(_ context.Context, id uuid.UUID) (*MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.state.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu_item", Key: id.String()}
	}
	return cloneItem(item), nil
}

func (m *memoryStore) liveItems(_ context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*MenuItem
	for _, item := range m.state.items {
		if item.MenuID == menuID && !item.IsDeleted() {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

func (m *memoryStore) firstMenu(_ context.Context, kind LookupKind, key string) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *Menu
	for _, menu := range m.state.menus {
		if menu.IsDeleted() || !menu.Active {
			continue
		}
		switch kind {
		case LookupBySlug:
			if menu.Slug != key {
				continue
			}
		case LookupByLocation:
			if string(menu.Location) != key {
				continue
			}
		}
		if best == nil || compareCreation(menu, best) < 0 {
			best = menu
		}
	}
	if best == nil {
		return nil, &NotFoundError{Resource: "menu", Key: string(kind) + ":" + key}
	}
	return cloneMenu(best), nil
}

func (m *memoryStore) liveMenus(context.Context) ([]*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Menu, 0, len(m.state.menus))
	for _, menu := range m.state.menus {
		if !menu.IsDeleted() {
			out = append(out, cloneMenu(menu))
		}
	}
	slices.SortFunc(out, func(a, b *Menu) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return compareCreation(a, b)
	})
	return out, nil
}

func (m *memoryStore) liveItemCounts(context.Context) (map[uuid.UUID]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := map[uuid.UUID]int{}
	for _, item := range m.state.items {
		if !item.IsDeleted() {
			counts[item.MenuID]++
		}
	}
	return counts, nil
}

type memoryTx struct {
	state *memoryState
}

func (tx *memoryTx) LookupParent(_ context.Context, id uuid.UUID) (*ParentLink, error) {
	item, ok := tx.state.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu_item", Key: id.String()}
	}
	return &ParentLink{ID: item.ID, MenuID: item.MenuID, ParentID: item.ParentID, Deleted: item.IsDeleted()}, nil
}

func (tx *memoryTx) menu(_ context.Context, id uuid.UUID, _ bool) (*Menu, error) {
	menu, ok := tx.state.menus[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: id.String()}
	}
	return cloneMenu(menu), nil
}

func (tx *memoryTx) slugTaken(_ context.Context, slug string, except uuid.UUID) (bool, error) {
	for id, menu := range tx.state.menus {
		if id != except && menu.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryTx) insertMenu(_ context.Context, menu *Menu) error {
	if _, exists := tx.state.menus[menu.ID]; exists {
		return &StorageError{Op: "insert menu", Err: errDuplicateKey}
	}
	tx.state.menus[menu.ID] = cloneMenu(menu)
	return nil
}

func (tx *memoryTx) saveMenu(_ context.Context, menu *Menu) error {
	if _, exists := tx.state.menus[menu.ID]; !exists {
		return &NotFoundError{Resource: "menu", Key: menu.ID.String()}
	}
	tx.state.menus[menu.ID] = cloneMenu(menu)
	return nil
}

func (tx *memoryTx) item(_ context.Context, id uuid.UUID) (*MenuItem, error) {
	item, ok := tx.state.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu_item", Key: id.String()}
	}
	return cloneItem(item), nil
}

func (tx *memoryTx) maxSiblingOrder(_ context.Context, menuID uuid.UUID, parentID *uuid.UUID) (int, bool, error) {
	highest, found := 0, false
	for _, item := range tx.state.items {
		if item.MenuID != menuID || item.IsDeleted() || !sameParent(item.ParentID, parentID) {
			continue
		}
		if !found || item.Order > highest {
			highest, found = item.Order, true
		}
	}
	return highest, found, nil
}

func (tx *memoryTx) insertItem(_ context.Context, item *MenuItem) error {
	if _, exists := tx.state.items[item.ID]; exists {
		return &StorageError{Op: "insert menu item", Err: errDuplicateKey}
	}
	tx.state.items[item.ID] = cloneItem(item)
	return nil
}

func (tx *memoryTx) saveItem(_ context.Context, item *MenuItem) error {
	if _, exists := tx.state.items[item.ID]; !exists {
		return &NotFoundError{Resource: "menu_item", Key: item.ID.String()}
	}
	tx.state.items[item.ID] = cloneItem(item)
	return nil
}

func (tx *memoryTx) tombstoneItems(_ context.Context, menuID uuid.UUID, at time.Time) error {
	for _, item := range tx.state.items {
		if item.MenuID == menuID && !item.IsDeleted() {
			stamp := at
			item.DeletedAt = &stamp
			item.UpdatedAt = at
		}
	}
	return nil
}

func (tx *memoryTx) reviveItems(_ context.Context, menuID uuid.UUID, at time.Time) error {
	for _, item := range tx.state.items {
		if item.MenuID == menuID && item.DeletedAt != nil && item.DeletedAt.Equal(at) {
			item.DeletedAt = nil
		}
	}
	return nil
}

func compareCreation(a, b *Menu) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func cloneMenu(menu *Menu) *Menu {
	if menu == nil {
		return nil
	}
	out := *menu
	out.Items = nil
	if menu.DeletedAt != nil {
		at := *menu.DeletedAt
		out.DeletedAt = &at
	}
	return &out
}

func cloneItem(item *MenuItem) *MenuItem {
	if item == nil {
		return nil
	}
	out := *item
	out.Children = nil
	if item.ParentID != nil {
		parent := *item.ParentID
		out.ParentID = &parent
	}
	if item.DeletedAt != nil {
		at := *item.DeletedAt
		out.DeletedAt = &at
	}
	return &out
}
