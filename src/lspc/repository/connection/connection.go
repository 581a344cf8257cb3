// Package connection indexes which session serves a file, including files that were never opened.
package connection

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/mapper"
	"github.com/uber/lspc/src/lspc/model"
)

// Repository maps file paths to sessions, with a secondary (root, language) index.
type Repository interface {
	// Register upserts filePath and the (root, language) index. The last registration wins on the index.
	Register(ctx context.Context, filePath string, conn entity.Connection)
	GetConnection(ctx context.Context, filePath string) (entity.Connection, bool)
	GetConnectionByRoot(ctx context.Context, rootPath string, language string) (entity.Connection, bool)
	// Unregister removes the direct entry for filePath only.
	Unregister(ctx context.Context, filePath string)
	// UnregisterBySession removes every direct and index entry pointing at sessionID and returns how many direct entries were removed.
	UnregisterBySession(ctx context.Context, sessionID string) int
}

type repository struct {
	mu     sync.RWMutex
	files  map[string]model.Connection
	byRoot map[model.ConnectionKey]model.Connection
}

// New returns an empty connection Repository.
func New() Repository {
	return &repository{
		files:  make(map[string]model.Connection),
		byRoot: make(map[model.ConnectionKey]model.Connection),
	}
}

func (r *repository) Register(ctx context.Context, filePath string, conn entity.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn.RootPath = normalize(conn.RootPath)
	m := mapper.ConnectionToModel(conn)
	r.files[normalize(filePath)] = m
	r.byRoot[model.ConnectionKey{RootPath: m.RootPath, Language: m.Language}] = m
}

func (r *repository) GetConnection(ctx context.Context, filePath string) (entity.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.files[normalize(filePath)]
	if !ok {
		return entity.Connection{}, false
	}
	return mapper.ModelToConnection(m), true
}

func (r *repository) GetConnectionByRoot(ctx context.Context, rootPath string, language string) (entity.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byRoot[model.ConnectionKey{RootPath: normalize(rootPath), Language: language}]
	if !ok {
		return entity.Connection{}, false
	}
	return mapper.ModelToConnection(m), true
}

func (r *repository) Unregister(ctx context.Context, filePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.files, normalize(filePath))
}

func (r *repository) UnregisterBySession(ctx context.Context, sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for path, m := range r.files {
		if m.SessionID == sessionID {
			delete(r.files, path)
			removed++
		}
	}
	for key, m := range r.byRoot {
		if m.SessionID == sessionID {
			delete(r.byRoot, key)
		}
	}
	return removed
}

func normalize(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(path)
}
