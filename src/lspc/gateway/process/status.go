package process

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/uber/lspc/src/lspc/entity"
	"go.uber.org/zap"
)

// statusCache remembers server status per language until the install directory changes.
type statusCache struct {
	logger *zap.SugaredLogger

	mu       sync.Mutex
	statuses map[string]entity.ServerStatus

	watcher     *fsnotify.Watcher
	watchCloser chan bool
	watchDone   chan error
}

func newStatusCache(logger *zap.SugaredLogger) *statusCache {
	return &statusCache{
		logger:   logger,
		statuses: make(map[string]entity.ServerStatus),
	}
}

func (c *statusCache) get(language string) (entity.ServerStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.statuses[language]
	return s, ok
}

func (c *statusCache) set(language string, status entity.ServerStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[language] = status
}

func (c *statusCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = make(map[string]entity.ServerStatus)
}

// watch invalidates the cache whenever anything in dir is created, removed or renamed.
func (c *statusCache) watch(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	c.watcher = watcher
	c.watchCloser = make(chan bool)
	c.watchDone = make(chan error, 1)
	go c.handleChanges(c.watchCloser)
	return nil
}

func (c *statusCache) handleChanges(closer chan bool) {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				c.watchDone <- nil
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Chmod) {
				c.logger.Debugw("install directory changed", "path", event.Name, "op", event.Op.String())
				c.invalidate()
			}
		case err, ok := <-c.watcher.Errors:
			if ok {
				c.logger.Warnf("Failure in install directory watcher: %v", err)
			}
		case <-closer:
			c.watchDone <- c.watcher.Close()
			return
		}
	}
}

func (c *statusCache) close() error {
	if c.watcher == nil {
		return nil
	}
	close(c.watchCloser)
	err := <-c.watchDone
	c.watcher = nil
	return err
}
