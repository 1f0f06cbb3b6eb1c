package engine

import (
	"fmt"
	"sync"

	"github.com/harrisonrobin/tasknotify/pkg/model"
)

// guard rejects a second mutation on a key while the first is outstanding.
type guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newGuard() *guard {
	return &guard{inFlight: make(map[string]struct{})}
}

// acquire claims key and returns the function that releases it.
func (g *guard) acquire(op, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return nil, model.Fail(model.KindBusy, op, fmt.Errorf("%q is already being modified", key))
	}
	g.inFlight[key] = struct{}{}

	return func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}, nil
}

func draftKey(d model.Draft) string {
	return fmt.Sprintf("draft:%s@%d", d.Name, d.Date)
}
