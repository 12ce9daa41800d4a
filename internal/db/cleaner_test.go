package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// purgeSQL pins the rows eligible for purging: soft-deleted ones whose last
// update is older than the cutoff.
var purgeSQL = regexp.QuoteMeta(`
		DELETE FROM profile_sections
		 WHERE deleted = true
		   AND updated_at < $1
	`)

// cutoffWithin matches a unix-seconds cutoff inside [from, to].
type cutoffWithin struct {
	from, to time.Time
}

func (c cutoffWithin) Match(v driver.Value) bool {
	n, ok := v.(int64)
	return ok && n >= c.from.Unix() && n <= c.to.Unix()
}

func TestPurgeClearedSections_CutoffIsUnixSeconds(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	cutoff := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(purgeSQL).
		WithArgs(cutoff.Unix()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	removed, err := PurgeClearedSections(context.Background(), dbMock, cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d; want 2", removed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPurgeClearedSections_Errors(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	execErr := errors.New("relation does not exist")
	mock.ExpectExec(purgeSQL).WillReturnError(execErr)
	mock.ExpectExec(purgeSQL).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unavailable")))

	if _, err := PurgeClearedSections(context.Background(), dbMock, time.Now()); !errors.Is(err, execErr) {
		t.Errorf("exec error = %v; want %v", err, execErr)
	}
	if _, err := PurgeClearedSections(context.Background(), dbMock, time.Now()); err == nil {
		t.Error("expected RowsAffected error")
	}
}

func TestStartSoftDeleteCleaner_RetentionSetsCutoff(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	retention := 30 * 24 * time.Hour
	start := time.Now()
	mock.ExpectExec(purgeSQL).
		WithArgs(cutoffWithin{
			from: start.Add(-retention).Add(-time.Second),
			to:   start.Add(-retention).Add(5 * time.Second),
		}).
		WillReturnResult(sqlmock.NewResult(0, 5))

	core, logs := observer.New(zapcore.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartSoftDeleteCleaner(ctx, dbMock, 20*time.Millisecond, retention, zap.New(core))

	deadline := time.Now().Add(2 * time.Second)
	for logs.FilterMessage("cleaned soft-deleted profile sections").Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	entries := logs.FilterMessage("cleaned soft-deleted profile sections").All()
	if len(entries) == 0 {
		t.Fatal("expected a purge log entry")
	}
	if got := entries[0].ContextMap()["removed"]; got != int64(5) {
		t.Errorf("removed field = %v; want 5", got)
	}
}

func TestStartSoftDeleteCleaner_ErrorIsLoggedAndLoopContinues(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	mock.ExpectExec(purgeSQL).WillReturnError(errors.New("db fail"))
	mock.ExpectExec(purgeSQL).WillReturnResult(sqlmock.NewResult(0, 0))

	core, logs := observer.New(zapcore.DebugLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartSoftDeleteCleaner(ctx, dbMock, 10*time.Millisecond, time.Hour, zap.New(core))

	deadline := time.Now().Add(2 * time.Second)
	for mock.ExpectationsWereMet() != nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("cleaner stopped after a failed purge: %v", err)
	}
	if logs.FilterMessage("failed to clean soft-deleted profile sections").Len() == 0 {
		t.Error("expected error log for failed purge")
	}
}

func TestStartSoftDeleteCleaner_StopsWithContext(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer dbMock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	StartSoftDeleteCleaner(ctx, dbMock, 50*time.Millisecond, time.Hour, zap.NewNop())
	cancel()

	time.Sleep(120 * time.Millisecond)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected sql calls after cancel: %v", err)
	}
}
