package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"bidtracker/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

// sqlmockArgumentFunc adapts a predicate to sqlmock's Argument interface.
type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool { return f(v) }

func newKV(t *testing.T) (*repository.KVSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	return repository.NewKVSQLite(db), mock, func() { _ = db.Close() }
}

func TestKVSQLite_Get_ReturnsValue(t *testing.T) {
	kv, mock, done := newKV(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
		WithArgs("googleSheetUrl").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("https://script.google.com/x"))

	value, ok, err := kv.Get(context.Background(), "googleSheetUrl")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || value != "https://script.google.com/x" {
		t.Fatalf("Get() = (%q, %v), want stored value", value, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestKVSQLite_Get_AbsentKeyIsNotAnError(t *testing.T) {
	kv, mock, done := newKV(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
		WithArgs("userSession").
		WillReturnError(sql.ErrNoRows)

	value, ok, err := kv.Get(context.Background(), "userSession")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || value != "" {
		t.Fatalf("Get() = (%q, %v), want absent", value, ok)
	}
}

func TestKVSQLite_Set_UpsertsWithUTCTimestamp(t *testing.T) {
	kv, mock, done := newKV(t)
	defer done()

	isUTCRecent := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		if !ok || tm.Location() != time.UTC {
			return false
		}
		now := time.Now().UTC()
		return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WithArgs("appUsers", `[]`, isUTCRecent).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := kv.Set(context.Background(), "appUsers", `[]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestKVSQLite_Remove_Deletes(t *testing.T) {
	kv, mock, done := newKV(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_store")).
		WithArgs("userSession").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := kv.Remove(context.Background(), "userSession"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
}

func TestKVSQLite_Set_WrapsDriverError(t *testing.T) {
	kv, mock, done := newKV(t)
	defer done()

	dbErr := errors.New("disk I/O error")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WillReturnError(dbErr)

	err := kv.Set(context.Background(), "k", "v")
	if err == nil || !errors.Is(err, dbErr) {
		t.Fatalf("Set() error = %v, want wrapped driver error", err)
	}
}
