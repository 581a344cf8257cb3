package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"go.lsp.dev/uri"
	"pgregory.net/rapid"
)

const _doc = uri.URI("file:///repo/main.go")

func documentVersion(t *testing.T, repository Repository, id string, docURI uri.URI) (int32, bool) {
	s, err := repository.Get(context.Background(), id)
	if err != nil {
		return 0, false
	}
	v, ok := s.Documents[docURI]
	return v, ok
}

func newSession(id string) *entity.Session {
	return &entity.Session{
		ID:        id,
		Language:  "go",
		RootPath:  "/repo",
		State:     entity.SessionStateReady,
		Documents: map[uri.URI]int32{},
	}
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))

	t.Run("should Set and Get successfully", func(t *testing.T) {
		repository := New(testScope)

		require.NoError(t, repository.Set(ctx, newSession("a")))
		val, err := repository.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "go", val.Language)
		assert.Equal(t, entity.SessionStateReady, val.State)
	})

	t.Run("should fail to get something that was not Set", func(t *testing.T) {
		repository := New(testScope)

		_, err := repository.Get(ctx, "missing")
		var nf *errors.SessionNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.SessionID)
	})

	t.Run("should reject nil and anonymous sessions", func(t *testing.T) {
		repository := New(testScope)

		assert.Error(t, repository.Set(ctx, nil))
		assert.Error(t, repository.Set(ctx, &entity.Session{}))
	})

	t.Run("returned sessions are snapshots", func(t *testing.T) {
		repository := New(testScope)
		require.NoError(t, repository.Set(ctx, newSession("a")))

		val, err := repository.Get(ctx, "a")
		require.NoError(t, err)
		val.Documents[_doc] = 9

		_, ok := documentVersion(t, repository, "a", _doc)
		assert.False(t, ok)
	})
}

func TestFindByLanguageRoot(t *testing.T) {
	ctx := context.Background()
	repository := New(tally.NoopScope)

	require.NoError(t, repository.Set(ctx, newSession("a")))
	other := newSession("b")
	other.Language = "typescript"
	require.NoError(t, repository.Set(ctx, other))

	s, ok := repository.FindByLanguageRoot(ctx, "go", "/repo")
	require.True(t, ok)
	assert.Equal(t, "a", s.ID)

	_, ok = repository.FindByLanguageRoot(ctx, "go", "/elsewhere")
	assert.False(t, ok)

	for _, state := range []entity.SessionState{
		entity.SessionStateStarting,
		entity.SessionStateInitializing,
		entity.SessionStateShuttingDown,
		entity.SessionStateStopped,
	} {
		require.NoError(t, repository.SetState(ctx, "a", state))
		_, ok = repository.FindByLanguageRoot(ctx, "go", "/repo")
		assert.False(t, ok, state.String())
	}

	// A replacement started while the old session shuts down is the one found.
	require.NoError(t, repository.SetState(ctx, "a", entity.SessionStateShuttingDown))
	replacement := newSession("c")
	require.NoError(t, repository.Set(ctx, replacement))
	for i := 0; i < 10; i++ {
		s, ok := repository.FindByLanguageRoot(ctx, "go", "/repo")
		require.True(t, ok)
		assert.Equal(t, "c", s.ID)
	}
}

func TestCompareAndSetState(t *testing.T) {
	ctx := context.Background()
	repository := New(tally.NoopScope)
	s := newSession("a")
	s.State = entity.SessionStateInitializing
	require.NoError(t, repository.Set(ctx, s))

	require.NoError(t, repository.SetState(ctx, "a", entity.SessionStateShuttingDown))
	ok, err := repository.CompareAndSetState(ctx, "a", entity.SessionStateInitializing, entity.SessionStateReady)
	require.NoError(t, err)
	assert.False(t, ok)
	got, err := repository.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStateShuttingDown, got.State)

	require.NoError(t, repository.SetState(ctx, "a", entity.SessionStateInitializing))
	ok, err = repository.CompareAndSetState(ctx, "a", entity.SessionStateInitializing, entity.SessionStateReady)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = repository.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStateReady, got.State)

	_, err = repository.CompareAndSetState(ctx, "missing", entity.SessionStateInitializing, entity.SessionStateReady)
	var nf *errors.SessionNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestSetStateAndDelete(t *testing.T) {
	ctx := context.Background()
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	repository := New(testScope)

	require.NoError(t, repository.Set(ctx, newSession("a")))
	require.NoError(t, repository.Set(ctx, newSession("b")))
	assert.Equal(t, float64(2), gaugeValue(testScope, "testing.sessions.active"))

	require.NoError(t, repository.SetState(ctx, "a", entity.SessionStateShuttingDown))
	s, err := repository.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStateShuttingDown, s.State)

	var nf *errors.SessionNotFoundError
	assert.ErrorAs(t, repository.SetState(ctx, "missing", entity.SessionStateReady), &nf)

	require.NoError(t, repository.Delete(ctx, "a"))
	require.NoError(t, repository.Delete(ctx, "a"))
	assert.Equal(t, float64(1), gaugeValue(testScope, "testing.sessions.active"))

	list := repository.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestDocumentVersions(t *testing.T) {
	ctx := context.Background()
	repository := New(tally.NoopScope)
	require.NoError(t, repository.Set(ctx, newSession("a")))

	t.Run("open then three changes yields version 4", func(t *testing.T) {
		v, err := repository.OpenDocument(ctx, "a", _doc)
		require.NoError(t, err)
		assert.Equal(t, int32(1), v)

		for i := 0; i < 3; i++ {
			_, wasOpen, err := repository.NextDocumentVersion(ctx, "a", _doc)
			require.NoError(t, err)
			assert.True(t, wasOpen)
		}
		v, ok := documentVersion(t, repository, "a", _doc)
		assert.True(t, ok)
		assert.Equal(t, int32(4), v)
	})

	t.Run("close then reopen restarts at 1", func(t *testing.T) {
		wasOpen, err := repository.CloseDocument(ctx, "a", _doc)
		require.NoError(t, err)
		assert.True(t, wasOpen)
		_, ok := documentVersion(t, repository, "a", _doc)
		assert.False(t, ok)

		v, err := repository.OpenDocument(ctx, "a", _doc)
		require.NoError(t, err)
		assert.Equal(t, int32(1), v)
	})

	t.Run("change without open starts from zero", func(t *testing.T) {
		other := uri.URI("file:///repo/other.go")
		v, wasOpen, err := repository.NextDocumentVersion(ctx, "a", other)
		require.NoError(t, err)
		assert.False(t, wasOpen)
		assert.Equal(t, int32(1), v)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := repository.OpenDocument(ctx, "missing", _doc)
		assert.Error(t, err)
		_, _, err = repository.NextDocumentVersion(ctx, "missing", _doc)
		assert.Error(t, err)
		_, err = repository.CloseDocument(ctx, "missing", _doc)
		assert.Error(t, err)
		_, ok := documentVersion(t, repository, "missing", _doc)
		assert.False(t, ok)
	})

	t.Run("delete purges versions", func(t *testing.T) {
		require.NoError(t, repository.Delete(ctx, "a"))
		_, ok := documentVersion(t, repository, "a", _doc)
		assert.False(t, ok)
	})
}

func TestDocumentVersionsNeverRepeat(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		repository := New(tally.NoopScope)
		if err := repository.Set(ctx, newSession("a")); err != nil {
			t.Fatal(err)
		}

		var last int32
		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 50).Draw(t, "ops")
		for _, op := range ops {
			switch op {
			case 0:
				v, _ := repository.OpenDocument(ctx, "a", _doc)
				if v != 1 {
					t.Fatalf("open assigned version %d", v)
				}
				last = v
			case 1:
				v, _, _ := repository.NextDocumentVersion(ctx, "a", _doc)
				if v != last+1 {
					t.Fatalf("change produced version %d after %d", v, last)
				}
				last = v
			case 2:
				_, _ = repository.CloseDocument(ctx, "a", _doc)
				last = 0
			}
		}
	})
}

func gaugeValue(scope tally.TestScope, name string) float64 {
	for _, g := range scope.Snapshot().Gauges() {
		if g.Name() == name {
			return g.Value()
		}
	}
	return -1
}
