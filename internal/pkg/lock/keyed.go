package lock

import "sync"

// Keyed hands out one mutex per key so that all writers touching the
// same resource serialize, while writers on different resources run in
// parallel. Mutexes are created lazily and never released; the key
// space (resource ids) is small enough that this does not matter.
type Keyed struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *Keyed) Lock(key int64) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
