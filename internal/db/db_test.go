package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	dbfs "github.com/predial/vistoria/db"
	"github.com/predial/vistoria/internal/db"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	d, err := db.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	// a single pooled connection keeps the in-memory database alive
	d.GetConn().SetMaxOpenConns(1)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	if _, err := d.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	boom := errors.New("boom")
	err := d.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('b')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM items`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave no rows, got %d", count)
	}

	// the committed path persists everything
	err = d.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('c')`)
		return err
	})
	if err != nil {
		t.Fatalf("commit tx: %v", err)
	}
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM items`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 committed row, got %d", count)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}

	applied, err := db.AppliedMigrations(ctx, d)
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if len(applied) == 0 {
		t.Fatal("expected at least one applied migration")
	}
	for _, v := range applied {
		if strings.HasSuffix(v, ".sql") {
			t.Fatalf("version should not keep the extension: %q", v)
		}
	}

	// the schema is usable after migration
	if _, err := d.Exec(ctx, `INSERT INTO users (name, email, password_hash, role, created, updated) VALUES ('a', 'a@b.c', 'h', 'client', 0, 0)`); err != nil {
		t.Fatalf("insert into migrated schema: %v", err)
	}
}
