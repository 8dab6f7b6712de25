package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-menus/internal/storage"
	"github.com/goliatone/go-menus/pkg/testsupport"
)

func TestMigrateCreatesMenuTables(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunSQLiteDB(t)

	applied, err := storage.Migrate(ctx, db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected 2 migrations applied, got %v", applied)
	}

	for _, table := range []string{"menus", "menu_items"} {
		var count int
		err := db.NewSelect().
			TableExpr("sqlite_master").
			ColumnExpr("COUNT(*)").
			Where("type = 'table'").
			Where("name = ?", table).
			Scan(ctx, &count)
		if err != nil {
			t.Fatalf("inspect %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	again, err := storage.Migrate(ctx, db)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no pending migrations, got %v", again)
	}
}

func TestRollbackDropsTables(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunSQLiteDB(t)

	if _, err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	reverted, err := storage.Rollback(ctx, db)
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if len(reverted) != 2 {
		t.Fatalf("expected 2 migrations reverted, got %v", reverted)
	}

	var count int
	err = db.NewSelect().
		TableExpr("sqlite_master").
		ColumnExpr("COUNT(*)").
		Where("type = 'table'").
		Where("name IN (?, ?)", "menus", "menu_items").
		Scan(ctx, &count)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected menu tables dropped, found %d", count)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Driver: "oracle", DSN: "x"})
	if !errors.Is(err, storage.ErrDriverUnsupported) {
		t.Fatalf("expected ErrDriverUnsupported, got %v", err)
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Driver: storage.DriverSQLite})
	if !errors.Is(err, storage.ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Config{Driver: "sqlite", DSN: "file:open_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}
