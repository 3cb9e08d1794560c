package correlate

import "sync"

type waitState int

const (
	waitPending waitState = iota
	waitResolved
	waitTimedOut
)

// pendingWait is a single-shot slot for one expected human reply. The
// first settle attempt wins; the loser of a timeout-vs-reply race is a
// no-op.
type pendingWait struct {
	done chan struct{}

	mu    sync.Mutex
	state waitState
	text  string
}

func newPendingWait() *pendingWait {
	return &pendingWait{done: make(chan struct{})}
}

func (w *pendingWait) settle(state waitState, text string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waitPending {
		return false
	}
	w.state = state
	w.text = text
	close(w.done)
	return true
}

// resolve records the reply text. Returns false if the wait was already
// settled.
func (w *pendingWait) resolve(text string) bool {
	return w.settle(waitResolved, text)
}

// expire marks the wait timed out, so a late reply stays a no-op.
// Returns false if a reply won the race first.
func (w *pendingWait) expire() bool {
	return w.settle(waitTimedOut, "")
}

func (w *pendingWait) value() (waitState, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state, w.text
}

// waitTable maps a thread id to its one outstanding wait. A thread may
// hold at most one unresolved wait at a time.
type waitTable struct {
	mu    sync.Mutex
	waits map[string]*pendingWait
}

func newWaitTable() *waitTable {
	return &waitTable{waits: make(map[string]*pendingWait)}
}

func (t *waitTable) Register(threadTS string) (*pendingWait, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.waits[threadTS]; ok {
		return nil, &DuplicateWaitError{ThreadTS: threadTS}
	}
	w := newPendingWait()
	t.waits[threadTS] = w
	return w, nil
}

func (t *waitTable) Lookup(threadTS string) (*pendingWait, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.waits[threadTS]
	return w, ok
}

func (t *waitTable) Remove(threadTS string) {
	t.mu.Lock()
	delete(t.waits, threadTS)
	t.mu.Unlock()
}

func (t *waitTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waits)
}
