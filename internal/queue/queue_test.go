package queue

import (
	"sync"
	"testing"
)

// pendingRecord stands in for the catalog rows staged by the batch writers.
type pendingRecord struct {
	Index int
	Name  string
}

func TestQueue_New(t *testing.T) {
	q := New[pendingRecord]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_Push(t *testing.T) {
	q := New[pendingRecord]()

	q.Push(pendingRecord{Index: 1, Name: "seq_000001"})
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}

	q.Push(pendingRecord{Index: 2}, pendingRecord{Index: 3})
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
	if q.Empty() {
		t.Error("expected non-empty queue")
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[pendingRecord]()

	if rows := q.Drain(); len(rows) != 0 {
		t.Errorf("expected nothing from an empty queue, got %+v", rows)
	}

	q.Push(pendingRecord{Index: 1}, pendingRecord{Index: 2}, pendingRecord{Index: 3})
	rows := q.Drain()

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Index != 1 || rows[1].Index != 2 || rows[2].Index != 3 {
		t.Errorf("rows out of order: %+v", rows)
	}
	if !q.Empty() {
		t.Error("expected empty queue after drain")
	}
}

func TestQueue_RequeueKeepsInsertOrder(t *testing.T) {
	q := New[pendingRecord]()
	q.Push(pendingRecord{Index: 1}, pendingRecord{Index: 2})

	// A flush fails while a newer row lands.
	batch := q.Drain()
	q.Push(pendingRecord{Index: 3})
	q.Requeue(batch)

	rows := q.Drain()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []int{1, 2, 3} {
		if rows[i].Index != want {
			t.Errorf("row %d: expected index %d, got %d", i, want, rows[i].Index)
		}
	}
}

func TestQueue_RequeueEmptyBatch(t *testing.T) {
	q := New[pendingRecord]()
	q.Push(pendingRecord{Index: 1})

	q.Requeue(nil)

	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[pendingRecord]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			q.Push(pendingRecord{Index: idx})
		}(i)
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("expected 100 rows, got %d", q.Len())
	}
}

func TestQueue_ConcurrentDrain(t *testing.T) {
	q := New[pendingRecord]()
	for i := 0; i < 100; i++ {
		q.Push(pendingRecord{Index: i})
	}

	var wg sync.WaitGroup
	results := make(chan []pendingRecord, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- q.Drain()
		}()
	}
	wg.Wait()
	close(results)

	// Every row is handed to exactly one drainer.
	total := 0
	for r := range results {
		total += len(r)
	}
	if total != 100 {
		t.Errorf("expected 100 rows across all drains, got %d", total)
	}
}
