package mapper

import (
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/model"
	"go.lsp.dev/uri"
)

// SessionToModel maps a Session entity to its model equivalent.
func SessionToModel(s *entity.Session) *model.Session {
	return &model.Session{
		ID:        s.ID,
		Language:  s.Language,
		RootPath:  s.RootPath,
		State:     int(s.State),
		Documents: copyDocuments(s.Documents),
	}
}

// ModelToSession maps a model Session to its entity equivalent.
func ModelToSession(s *model.Session) *entity.Session {
	return &entity.Session{
		ID:        s.ID,
		Language:  s.Language,
		RootPath:  s.RootPath,
		State:     entity.SessionState(s.State),
		Documents: copyDocuments(s.Documents),
	}
}

// ConnectionToModel maps a Connection entity to its model equivalent.
func ConnectionToModel(c entity.Connection) model.Connection {
	return model.Connection{
		SessionID: c.SessionID,
		Language:  c.Language,
		RootPath:  c.RootPath,
	}
}

// ModelToConnection maps a model Connection to its entity equivalent.
func ModelToConnection(c model.Connection) entity.Connection {
	return entity.Connection{
		SessionID: c.SessionID,
		Language:  c.Language,
		RootPath:  c.RootPath,
	}
}

func copyDocuments(src map[uri.URI]int32) map[uri.URI]int32 {
	dst := make(map[uri.URI]int32, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
