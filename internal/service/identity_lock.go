package service

import "sync"

// identityLocks serializa operaciones por identidad dentro del proceso.
// La cuota de pulso se lee y se escribe en dos pasos; sin el lock dos requests
// concurrentes de la misma identidad podrian pasar el chequeo a la vez.
type identityLocks struct {
	mu    sync.Mutex
	locks map[string]*identityLock
}

type identityLock struct {
	mu   sync.Mutex
	refs int
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{locks: make(map[string]*identityLock)}
}

// lock bloquea la identidad y devuelve la funcion que la libera.
func (l *identityLocks) lock(identity string) func() {
	l.mu.Lock()
	entry, ok := l.locks[identity]
	if !ok {
		entry = &identityLock{}
		l.locks[identity] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, identity)
		}
		l.mu.Unlock()
	}
}
