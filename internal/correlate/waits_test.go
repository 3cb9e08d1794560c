package correlate

import (
	"errors"
	"testing"
)

func TestPendingWaitResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	w := newPendingWait()
	if !w.resolve("first") {
		t.Fatalf("resolve() = false, want true")
	}
	if w.resolve("second") {
		t.Fatalf("second resolve() = true, want false")
	}
	state, text := w.value()
	if state != waitResolved {
		t.Fatalf("state = %d, want waitResolved", state)
	}
	if text != "first" {
		t.Fatalf("text = %q, want %q", text, "first")
	}

	select {
	case <-w.done:
	default:
		t.Fatalf("done channel not closed after resolve")
	}
}

func TestPendingWaitExpireBlocksLateResolve(t *testing.T) {
	t.Parallel()

	w := newPendingWait()
	if !w.expire() {
		t.Fatalf("expire() = false, want true")
	}
	if w.resolve("late") {
		t.Fatalf("resolve() after expire = true, want false")
	}
	state, text := w.value()
	if state != waitTimedOut {
		t.Fatalf("state = %d, want waitTimedOut", state)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty", text)
	}
}

func TestPendingWaitResolveBeatsExpire(t *testing.T) {
	t.Parallel()

	w := newPendingWait()
	if !w.resolve("answer") {
		t.Fatalf("resolve() = false, want true")
	}
	if w.expire() {
		t.Fatalf("expire() after resolve = true, want false")
	}
	state, text := w.value()
	if state != waitResolved || text != "answer" {
		t.Fatalf("value() = (%d, %q), want (waitResolved, %q)", state, text, "answer")
	}
}

func TestWaitTableRejectsDuplicateRegister(t *testing.T) {
	t.Parallel()

	table := newWaitTable()
	if _, err := table.Register("1700000000.000100"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, err := table.Register("1700000000.000100")
	var dup *DuplicateWaitError
	if !errors.As(err, &dup) {
		t.Fatalf("second Register() error = %v, want *DuplicateWaitError", err)
	}
	if dup.ThreadTS != "1700000000.000100" {
		t.Fatalf("ThreadTS = %q, want %q", dup.ThreadTS, "1700000000.000100")
	}
}

func TestWaitTableRemoveFreesThread(t *testing.T) {
	t.Parallel()

	table := newWaitTable()
	if _, err := table.Register("T1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, ok := table.Lookup("T1"); !ok {
		t.Fatalf("Lookup() ok = false, want true")
	}
	table.Remove("T1")
	if _, ok := table.Lookup("T1"); ok {
		t.Fatalf("Lookup() after Remove ok = true, want false")
	}
	if _, err := table.Register("T1"); err != nil {
		t.Fatalf("Register() after Remove error = %v", err)
	}
}
