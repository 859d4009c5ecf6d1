package httpclient

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestCall_CancelBeforeDeliver(t *testing.T) {
	call := newCall(context.Background(), http.MethodGet)

	if !call.Cancel() {
		t.Fatal("expected Cancel to report a pending call")
	}
	if call.ctx.Err() == nil {
		t.Error("expected call context to be canceled")
	}
	if call.deliver(func() { t.Error("callback must not run after cancel") }) {
		t.Error("expected deliver to refuse a canceled call")
	}
	if !call.Canceled() {
		t.Error("expected Canceled to be true")
	}
	if call.Cancel() {
		t.Error("second Cancel should be a no-op")
	}
}

func TestCall_CancelAfterDeliver(t *testing.T) {
	call := newCall(context.Background(), http.MethodPost)

	runs := 0
	if !call.deliver(func() { runs++ }) {
		t.Fatal("expected first deliver to run")
	}
	if call.deliver(func() { runs++ }) {
		t.Error("expected second deliver to be refused")
	}
	if runs != 1 {
		t.Errorf("callback ran %d times, want 1", runs)
	}
	if call.Cancel() {
		t.Error("Cancel after completion should be a no-op")
	}
	if call.Canceled() {
		t.Error("completed call must not report canceled")
	}
}

func TestCall_FinishUnblocksWait(t *testing.T) {
	call := newCall(context.Background(), http.MethodGet)
	if call.ID() == "" || call.Method() != http.MethodGet {
		t.Fatalf("unexpected call %+v", call)
	}

	go call.finish()

	select {
	case <-call.Done():
	case <-time.After(time.Second):
		t.Fatal("Done was not closed")
	}
	call.Wait()
}

func TestCall_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := newCall(context.Background(), http.MethodGet).ID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
