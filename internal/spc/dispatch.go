package spc

import (
	"sync"

	"github.com/jschlyter/spc2mqtt/internal/log"
)

const (
	defaultCallbackWorkers = 2
	defaultCallbackQueue   = 64
)

// dispatcher fans updated entities out to the subscriber without blocking
// the event loop. A slow subscriber costs dropped notifications, never a
// stalled stream.
type dispatcher struct {
	queue  chan Entity
	invoke func(Entity)
	log    *log.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func newDispatcher(workers, depth int, invoke func(Entity), logger *log.Logger) *dispatcher {
	if workers <= 0 {
		workers = defaultCallbackWorkers
	}
	if depth <= 0 {
		depth = defaultCallbackQueue
	}
	d := &dispatcher{
		queue:  make(chan Entity, depth),
		invoke: invoke,
		log:    logger,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *dispatcher) worker() {
	defer d.wg.Done()
	for entity := range d.queue {
		d.run(entity)
	}
}

func (d *dispatcher) run(entity Entity) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Update callback panicked for %s: %v", entity.ID(), r)
		}
	}()
	d.invoke(entity)
}

// enqueue hands an entity to the workers. It never blocks: when the queue is
// full the notification is dropped and logged.
func (d *dispatcher) enqueue(entity Entity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- entity:
	default:
		d.log.Warning("Callback queue full, dropping update for %s", entity.ID())
	}
}

func (d *dispatcher) stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
