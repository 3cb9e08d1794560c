package correlate

import "sync"

// threadSet tracks which thread ids are active, i.e. eligible to receive
// correlated replies. Entries live for the process lifetime; an old thread
// costs one map entry, so there is no eviction.
type threadSet struct {
	mu  sync.Mutex
	ids map[string]bool
}

func newThreadSet() *threadSet {
	return &threadSet{ids: make(map[string]bool)}
}

func (s *threadSet) Add(threadTS string) {
	if threadTS == "" {
		return
	}
	s.mu.Lock()
	s.ids[threadTS] = true
	s.mu.Unlock()
}

func (s *threadSet) Has(threadTS string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[threadTS]
}

func (s *threadSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
