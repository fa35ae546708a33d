package db

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
	"pgregory.net/rapid"
)

func TestDBQueueRetry_Property(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	queue := NewDBQueueForTest(db)
	defer queue.Close()

	rapid.Check(t, func(t *rapid.T) {
		failUntil := rapid.IntRange(0, 4).Draw(t, "failUntil")
		busy := rapid.Bool().Draw(t, "busy")
		expectedData := rapid.Int().Draw(t, "expectedData")

		failure := errors.New("constraint failed")
		if busy {
			failure = errors.New("database is locked (5) (SQLITE_BUSY)")
		}

		var attempts int32

		task := func(_ *sqlx.DB) (interface{}, error) {
			attempt := int(atomic.AddInt32(&attempts, 1))
			if attempt <= failUntil {
				return nil, failure
			}
			return expectedData, nil
		}

		result, err := queue.Execute(task)

		actualAttempts := int(atomic.LoadInt32(&attempts))

		switch {
		case failUntil == 0:
			if err != nil {
				t.Fatalf("expected success, got error: %v", err)
			}
			if result != expectedData {
				t.Fatalf("expected data %v, got %v", expectedData, result)
			}
			if actualAttempts != 1 {
				t.Fatalf("expected 1 attempt, got %d", actualAttempts)
			}
		case !busy:
			if err == nil {
				t.Fatalf("expected non-busy error to be returned without retry")
			}
			if actualAttempts != 1 {
				t.Fatalf("non-busy errors must not be retried, got %d attempts", actualAttempts)
			}
		case failUntil >= 3:
			if err == nil {
				t.Fatalf("expected error after 3 retries, got nil")
			}
			if actualAttempts != 3 {
				t.Fatalf("expected exactly 3 attempts, got %d", actualAttempts)
			}
		default:
			if err != nil {
				t.Fatalf("expected success, got error: %v", err)
			}
			if result != expectedData {
				t.Fatalf("expected data %v, got %v", expectedData, result)
			}
			if actualAttempts != failUntil+1 {
				t.Fatalf("expected %d attempts, got %d", failUntil+1, actualAttempts)
			}
		}
	})
}
