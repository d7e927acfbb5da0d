package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"gardencore/pkg/domain"
)

// stubConn records statements so store behavior can be asserted without a
// live server.
type stubConn struct {
	execs   []string
	upserts map[string][]byte
}

type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }
func (c *stubConn) Ping(context.Context) error          { return nil }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if strings.HasPrefix(query, "INSERT INTO state") && len(args) == 2 {
		if c.upserts == nil {
			c.upserts = make(map[string][]byte)
		}
		bucket, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		c.upserts[bucket] = payload
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return emptyRows{}, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type emptyRows struct{}

func (emptyRows) Columns() []string              { return []string{"bucket", "payload"} }
func (emptyRows) Close() error                   { return nil }
func (emptyRows) Next(dest []driver.Value) error { return io.EOF }

var stubSeq int64

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{}
	name := fmt.Sprintf("stubpg%d", atomic.AddInt64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

func TestNewStoreEnsuresStateTable(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	if _, err := NewStore("", domain.NewRulesEngine()); err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS state") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("state table DDL not applied, execs: %v", conn.execs)
	}
}

func TestRunInTransactionSnapshotsAllBuckets(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateBed(domain.Bed{Name: "bed", Rows: 1, Cols: 1})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	for _, bucket := range postgresBuckets {
		if _, ok := conn.upserts[bucket]; !ok {
			t.Fatalf("bucket %q not snapshotted, got %v", bucket, conn.upserts)
		}
	}
	if payload := conn.upserts["beds"]; !strings.Contains(string(payload), `"name":"bed"`) {
		t.Fatalf("beds payload missing record: %s", payload)
	}
}
