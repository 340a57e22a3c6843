package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"roadcall/internal/modules/pricing"
	"roadcall/internal/types"
)

type fakeInserter struct {
	mu      sync.Mutex
	records []*Record
	failFor int
	calls   int
	done    chan struct{}
}

func newFakeInserter(failFor int) *fakeInserter {
	return &fakeInserter{failFor: failFor, done: make(chan struct{}, 8)}
}

func (f *fakeInserter) Insert(_ context.Context, rec *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFor {
		f.done <- struct{}{}
		return errors.New("insert failed")
	}
	f.records = append(f.records, rec)
	f.done <- struct{}{}
	return nil
}

func waitFor(t *testing.T, f *fakeInserter, attempts int) {
	t.Helper()
	for i := 0; i < attempts; i++ {
		select {
		case <-f.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("insert attempt %d never happened", i+1)
		}
	}
}

func testEmitInput() (pricing.QuoteContext, pricing.Breakdown) {
	q := pricing.QuoteContext{
		JobType:       pricing.JobEmergency,
		ServiceTypeID: types.ID("towing"),
		CustomerID:    types.ID("cust-1"),
		Location:      types.Point{Lat: 33.4484, Lng: -112.0740},
	}
	b := pricing.Breakdown{BasePrice: 100, Subtotal: 100, TaxAmount: 8, TotalAmount: 108}
	return q, b
}

func TestEmitPersistsRecord(t *testing.T) {
	store := newFakeInserter(0)
	svc := NewService(store, zap.NewNop())

	q, b := testEmitInput()
	svc.Emit(q, b)
	waitFor(t, store, 1)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.ServiceTypeID != q.ServiceTypeID || rec.CustomerID != q.CustomerID {
		t.Errorf("record identity fields not copied: %+v", rec)
	}
	if rec.Breakdown.TotalAmount != b.TotalAmount {
		t.Errorf("record total = %v, want %v", rec.Breakdown.TotalAmount, b.TotalAmount)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("record has no timestamp")
	}
}

func TestEmitRetriesTransientFailure(t *testing.T) {
	store := newFakeInserter(2)
	svc := NewService(store, zap.NewNop())

	q, b := testEmitInput()
	svc.Emit(q, b)
	waitFor(t, store, 3)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1 after retries", len(store.records))
	}
}

func TestEmitDropsAfterExhaustedRetries(t *testing.T) {
	store := newFakeInserter(10)
	svc := NewService(store, zap.NewNop())

	// Emit must return immediately and never panic even when every
	// insert attempt fails.
	q, b := testEmitInput()
	svc.Emit(q, b)
	waitFor(t, store, 4)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.records) != 0 {
		t.Fatalf("records = %d, want 0", len(store.records))
	}
}
