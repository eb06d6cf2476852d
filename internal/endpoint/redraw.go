package endpoint

import "sync"

// RedrawFlag is the Go-channel-free equivalent of the original's
// atualizacao_pendente bool guarded by mutex_jogo: any goroutine that
// changes visible game state calls Mark, and the foreground render loop
// polls TakeIfPending on its own schedule instead of redrawing on every
// single mutation.
type RedrawFlag struct {
	mu      sync.Mutex
	pending bool
}

// Mark requests a redraw on the next poll.
func (r *RedrawFlag) Mark() {
	r.mu.Lock()
	r.pending = true
	r.mu.Unlock()
}

// TakeIfPending reports whether a redraw was requested since the last
// call, clearing the flag either way.
func (r *RedrawFlag) TakeIfPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending {
		r.pending = false
		return true
	}
	return false
}
