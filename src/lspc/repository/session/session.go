package session

import (
	"context"
	"sort"
	"sync"

	"github.com/uber-go/tally"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"github.com/uber/lspc/src/lspc/mapper"
	"github.com/uber/lspc/src/lspc/model"
	"go.lsp.dev/uri"
)

// Repository is an entity-scoped repository.
type Repository interface {
	Get(ctx context.Context, id string) (*entity.Session, error)
	// FindByLanguageRoot returns the Ready session serving language under rootPath.
	FindByLanguageRoot(ctx context.Context, language string, rootPath string) (*entity.Session, bool)
	List(ctx context.Context) []*entity.Session
	Set(ctx context.Context, s *entity.Session) error
	SetState(ctx context.Context, id string, state entity.SessionState) error
	// CompareAndSetState moves the session to state only while it is in from.
	CompareAndSetState(ctx context.Context, id string, from entity.SessionState, state entity.SessionState) (bool, error)
	Delete(ctx context.Context, id string) error

	// OpenDocument records docURI at version 1, replacing any previous version.
	OpenDocument(ctx context.Context, id string, docURI uri.URI) (int32, error)
	// NextDocumentVersion increments the version of docURI. A document that was never opened starts from 0.
	NextDocumentVersion(ctx context.Context, id string, docURI uri.URI) (version int32, wasOpen bool, err error)
	// CloseDocument forgets docURI and reports whether it was open.
	CloseDocument(ctx context.Context, id string, docURI uri.URI) (bool, error)
}

type repository struct {
	mu       sync.Mutex
	memstore map[string]*model.Session
	active   tally.Gauge
}

// New returns a repository to a key-value Session data store.
func New(stats tally.Scope) Repository {
	return &repository{
		memstore: make(map[string]*model.Session),
		active:   stats.SubScope("sessions").Gauge("active"),
	}
}

// Get returns the Session associated with the given id.
func (r *repository) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.memstore[id]
	if !ok {
		return nil, &errors.SessionNotFoundError{SessionID: id}
	}
	return mapper.ModelToSession(s), nil
}

// FindByLanguageRoot skips sessions that are still initializing or already shutting down,
// so at most one Ready session exists per language and root.
func (r *repository) FindByLanguageRoot(ctx context.Context, language string, rootPath string) (*entity.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.memstore {
		if s.Language == language && s.RootPath == rootPath && entity.SessionState(s.State) == entity.SessionStateReady {
			return mapper.ModelToSession(s), true
		}
	}
	return nil, false
}

// List returns every stored session ordered by id.
func (r *repository) List(ctx context.Context) []*entity.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := make([]*entity.Session, 0, len(r.memstore))
	for _, s := range r.memstore {
		found = append(found, mapper.ModelToSession(s))
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found
}

// Set stores the Session under its id.
func (r *repository) Set(ctx context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s == nil {
		return errors.New("can't save nil session")
	}
	if s.ID == "" {
		return errors.New("can't save session without an id")
	}
	r.memstore[s.ID] = mapper.SessionToModel(s)
	r.active.Update(float64(len(r.memstore)))
	return nil
}

// SetState moves the session to state.
func (r *repository) SetState(ctx context.Context, id string, state entity.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.memstore[id]
	if !ok {
		return &errors.SessionNotFoundError{SessionID: id}
	}
	s.State = int(state)
	return nil
}

func (r *repository) CompareAndSetState(ctx context.Context, id string, from entity.SessionState, state entity.SessionState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.memstore[id]
	if !ok {
		return false, &errors.SessionNotFoundError{SessionID: id}
	}
	if entity.SessionState(s.State) != from {
		return false, nil
	}
	s.State = int(state)
	return true, nil
}

// Delete removes the Session and its document versions.
func (r *repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.memstore, id)
	r.active.Update(float64(len(r.memstore)))
	return nil
}

func (r *repository) OpenDocument(ctx context.Context, id string, docURI uri.URI) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.memstore[id]
	if !ok {
		return 0, &errors.SessionNotFoundError{SessionID: id}
	}
	s.Documents[docURI] = 1
	return 1, nil
}

func (r *repository) NextDocumentVersion(ctx context.Context, id string, docURI uri.URI) (int32, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.memstore[id]
	if !ok {
		return 0, false, &errors.SessionNotFoundError{SessionID: id}
	}
	current, wasOpen := s.Documents[docURI]
	s.Documents[docURI] = current + 1
	return current + 1, wasOpen, nil
}

func (r *repository) CloseDocument(ctx context.Context, id string, docURI uri.URI) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.memstore[id]
	if !ok {
		return false, &errors.SessionNotFoundError{SessionID: id}
	}
	_, wasOpen := s.Documents[docURI]
	delete(s.Documents, docURI)
	return wasOpen, nil
}
