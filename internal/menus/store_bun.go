package menus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const menuNamespace = "menu"

// BunStoreOption configures NewBunStore.
type BunStoreOption func(*bunStore)

// WithRepositoryCache routes menu record reads by id through go-repository-cache.
// Every committed mutation drops the cached menu namespace.
func WithRepositoryCache(service cache.CacheService, serializer cache.KeySerializer) BunStoreOption {
	return func(s *bunStore) {
		if service == nil || serializer == nil {
			return
		}
		s.cachedMenus = repositorycache.New(s.menus, service, serializer)
		s.cacheService = service
	}
}

// WithBunStoreOptions forwards shared store options.
func WithBunStoreOptions(opts ...StoreOption) BunStoreOption {
	return func(s *bunStore) {
		s.storeOpts = append(s.storeOpts, opts...)
	}
}

// NewBunStore returns a Store backed by bun. Tables are expected to exist;
// see the storage package for migrations.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) Store {
	s := &bunStore{
		db:    db,
		menus: NewMenuRepository(db),
		items: NewMenuItemRepository(db),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	store := newTreeStore(s, s, s.storeOpts...)
	if s.cacheService != nil {
		store.afterCommit = s.invalidateRepositoryCache
	}
	return store
}

type bunStore struct {
	db           *bun.DB
	menus        repository.Repository[*Menu]
	items        repository.Repository[*MenuItem]
	cachedMenus  repository.Repository[*Menu]
	cacheService cache.CacheService
	storeOpts    []StoreOption
}

func (s *bunStore) invalidateRepositoryCache(ctx context.Context) {
	// Best effort; the entries also expire on their own TTL.
	_ = s.cacheService.DeleteByPrefix(ctx, menuNamespace+cache.KeySeparator)
}

func (s *bunStore) inTx(ctx context.Context, fn func(ctx context.Context, tx txn) error) error {
	if s.db == nil {
		return &StorageError{Op: "begin", Err: errors.New("database not configured")}
	}
	lock := s.db.Dialect().Name() == dialect.PG
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &bunTx{tx: tx, lock: lock})
	})
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return &StorageError{Op: "transaction", Err: err}
}

func (s *bunStore) menuByID(ctx context.Context, id uuid.UUID) (*Menu, error) {
	repo := s.menus
	if s.cachedMenus != nil {
		repo = s.cachedMenus
	}
	record, err := repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "menu", id.String())
	}
	return record, nil
}

func (s *bunStore) itemByID(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	record, err := s.items.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "menu_item", id.String())
	}
	return record, nil
}

func (s *bunStore) liveItems(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	records, _, err := s.items.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.menu_id = ?", menuID).
				Where("?TableAlias.deleted_at IS NULL").
				OrderExpr("?TableAlias.sort_order ASC, ?TableAlias.created_at ASC, ?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, &StorageError{Op: "list menu items", Err: err}
	}
	return records, nil
}

func (s *bunStore) firstMenu(ctx context.Context, kind LookupKind, key string) (*Menu, error) {
	records, _, err := s.menus.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if kind == LookupByLocation {
				q = q.Where("?TableAlias.location = ?", key)
			} else {
				q = q.Where("?TableAlias.slug = ?", key)
			}
			return q.Where("?TableAlias.active = ?", true).
				Where("?TableAlias.deleted_at IS NULL").
				OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, &StorageError{Op: "find menu", Err: err}
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "menu", Key: string(kind) + ":" + key}
	}
	return records[0], nil
}

func (s *bunStore) liveMenus(ctx context.Context) ([]*Menu, error) {
	records, _, err := s.menus.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.deleted_at IS NULL").
				OrderExpr("?TableAlias.name ASC, ?TableAlias.created_at ASC")
		}),
	)
	if err != nil {
		return nil, &StorageError{Op: "list menus", Err: err}
	}
	return records, nil
}

func (s *bunStore) liveItemCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		MenuID    uuid.UUID `bun:"menu_id"`
		ItemCount int       `bun:"item_count"`
	}
	err := s.db.NewSelect().
		Model((*MenuItem)(nil)).
		Column("menu_id").
		ColumnExpr("COUNT(*) AS item_count").
		Where("?TableAlias.deleted_at IS NULL").
		Group("menu_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, &StorageError{Op: "count menu items", Err: err}
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.MenuID] = row.ItemCount
	}
	return counts, nil
}

type bunTx struct {
	tx   bun.Tx
	lock bool
}

func (t *bunTx) LookupParent(ctx context.Context, id uuid.UUID) (*ParentLink, error) {
	item, err := t.item(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ParentLink{ID: item.ID, MenuID: item.MenuID, ParentID: item.ParentID, Deleted: item.IsDeleted()}, nil
}

func (t *bunTx) menu(ctx context.Context, id uuid.UUID, lock bool) (*Menu, error) {
	menu := new(Menu)
	q := t.tx.NewSelect().Model(menu).Where("?TableAlias.id = ?", id)
	if lock && t.lock {
		q = q.For("UPDATE")
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "menu", Key: id.String()}
		}
		return nil, &StorageError{Op: "load menu", Err: err}
	}
	return menu, nil
}

func (t *bunTx) slugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	q := t.tx.NewSelect().Model((*Menu)(nil)).Where("?TableAlias.slug = ?", slug)
	if except != uuid.Nil {
		q = q.Where("?TableAlias.id != ?", except)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return false, &StorageError{Op: "check slug", Err: err}
	}
	return exists, nil
}

func (t *bunTx) insertMenu(ctx context.Context, menu *Menu) error {
	if _, err := t.tx.NewInsert().Model(menu).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return &DuplicateSlugError{Slug: menu.Slug}
		}
		return &StorageError{Op: "insert menu", Err: err}
	}
	return nil
}

func (t *bunTx) saveMenu(ctx context.Context, menu *Menu) error {
	if _, err := t.tx.NewUpdate().Model(menu).WherePK().Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return &DuplicateSlugError{Slug: menu.Slug}
		}
		return &StorageError{Op: "update menu", Err: err}
	}
	return nil
}

func (t *bunTx) item(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	item := new(MenuItem)
	if err := t.tx.NewSelect().Model(item).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "menu_item", Key: id.String()}
		}
		return nil, &StorageError{Op: "load menu item", Err: err}
	}
	return item, nil
}

func (t *bunTx) maxSiblingOrder(ctx context.Context, menuID uuid.UUID, parentID *uuid.UUID) (int, bool, error) {
	var highest sql.NullInt64
	q := t.tx.NewSelect().
		Model((*MenuItem)(nil)).
		ColumnExpr("MAX(?TableAlias.sort_order)").
		Where("?TableAlias.menu_id = ?", menuID).
		Where("?TableAlias.deleted_at IS NULL")
	if parentID == nil {
		q = q.Where("?TableAlias.parent_id IS NULL")
	} else {
		q = q.Where("?TableAlias.parent_id = ?", *parentID)
	}
	if err := q.Scan(ctx, &highest); err != nil {
		return 0, false, &StorageError{Op: "sibling order", Err: err}
	}
	if !highest.Valid {
		return 0, false, nil
	}
	return int(highest.Int64), true, nil
}

func (t *bunTx) insertItem(ctx context.Context, item *MenuItem) error {
	if _, err := t.tx.NewInsert().Model(item).Exec(ctx); err != nil {
		return &StorageError{Op: "insert menu item", Err: err}
	}
	return nil
}

func (t *bunTx) saveItem(ctx context.Context, item *MenuItem) error {
	if _, err := t.tx.NewUpdate().Model(item).WherePK().Exec(ctx); err != nil {
		return &StorageError{Op: "update menu item", Err: err}
	}
	return nil
}

func (t *bunTx) tombstoneItems(ctx context.Context, menuID uuid.UUID, at time.Time) error {
	_, err := t.tx.NewUpdate().
		Model((*MenuItem)(nil)).
		Set("deleted_at = ?", at).
		Set("updated_at = ?", at).
		Where("?TableAlias.menu_id = ?", menuID).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return &StorageError{Op: "cascade delete menu items", Err: err}
	}
	return nil
}

func (t *bunTx) reviveItems(ctx context.Context, menuID uuid.UUID, at time.Time) error {
	_, err := t.tx.NewUpdate().
		Model((*MenuItem)(nil)).
		Set("deleted_at = NULL").
		Where("?TableAlias.menu_id = ?", menuID).
		Where("?TableAlias.deleted_at = ?", at).
		Exec(ctx)
	if err != nil {
		return &StorageError{Op: "cascade restore menu items", Err: err}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return &StorageError{Op: fmt.Sprintf("read %s", resource), Err: err}
}

func isDomainError(err error) bool {
	switch KindOf(err) {
	case KindUnknown, KindNone:
		return false
	default:
		return true
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
