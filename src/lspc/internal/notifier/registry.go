package notifier

import (
	"sync"

	"go.uber.org/zap"
)

// Registry fans out published values to any number of subscribers.
// Delivery order between subscribers is unspecified, and a subscriber that panics
// does not prevent delivery to the others.
type Registry[T any] struct {
	name   string
	logger *zap.SugaredLogger

	mu          sync.RWMutex
	nextID      uint64
	subscribers map[uint64]func(T)
}

// NewRegistry creates an empty Registry. The name is only used for logging.
func NewRegistry[T any](name string, logger *zap.SugaredLogger) *Registry[T] {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Registry[T]{
		name:        name,
		logger:      logger,
		subscribers: make(map[uint64]func(T)),
	}
}

// Subscribe registers fn and returns a handle that removes it again. The handle may be called more than once.
func (r *Registry[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subscribers, id)
		})
	}
}

// Publish delivers v to every current subscriber.
func (r *Registry[T]) Publish(v T) {
	r.mu.RLock()
	fns := make([]func(T), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		r.deliver(fn, v)
	}
}

// Len returns the number of active subscribers.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}

func (r *Registry[T]) deliver(fn func(T), v T) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorw("subscriber panicked", "registry", r.name, "panic", rec)
		}
	}()
	fn(v)
}
