package correlation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"github.com/uber/lspc/src/lspc/internal/clock"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	engine *engine
	clock  *clock.Fake
	logs   *observer.ObservedLogs
	stats  tally.TestScope
}

func newFixture(t *testing.T) fixture {
	core, logs := observer.New(zapcore.DebugLevel)
	fake := clock.NewFake()
	stats := tally.NewTestScope("testing", make(map[string]string, 0))
	e := New(Params{
		Logger: zap.New(core).Sugar(),
		Stats:  stats,
		Clock:  fake,
	})
	return fixture{engine: e.(*engine), clock: fake, logs: logs, stats: stats}
}

func counterValue(scope tally.TestScope, name string) int64 {
	for _, c := range scope.Snapshot().Counters() {
		if c.Name() == name {
			return c.Value()
		}
	}
	return 0
}

func TestNew(t *testing.T) {
	t.Run("default timeout", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, 30*time.Second, f.engine.defaultTimeout)
	})

	t.Run("configured timeout", func(t *testing.T) {
		provider, err := config.NewStaticProvider(map[string]interface{}{
			"requests": map[string]interface{}{
				"timeoutMs": 5000,
			},
		})
		require.NoError(t, err)

		e := New(Params{
			Config: provider,
			Logger: zap.NewNop().Sugar(),
			Stats:  tally.NoopScope,
			Clock:  clock.NewFake(),
		})
		assert.Equal(t, 5*time.Second, e.(*engine).defaultTimeout)
	})
}

func TestNextID(t *testing.T) {
	f := newFixture(t)

	last := f.engine.NextID()
	for i := 0; i < 100; i++ {
		next := f.engine.NextID()
		assert.Greater(t, next, last)
		last = next
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id := f.engine.NextID()
	p := f.engine.Register("s1", id, protocol.MethodTextDocumentHover, 0)
	assert.Equal(t, 1, f.engine.PendingCount())
	assert.Equal(t, 1, f.clock.Armed())
	method, ok := f.engine.Method(id)
	assert.True(t, ok)
	assert.Equal(t, protocol.MethodTextDocumentHover, method)

	assert.True(t, f.engine.Resolve(id, json.RawMessage(`{"contents":"x"}`)))
	result, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contents":"x"}`, string(result))
	assert.Equal(t, 0, f.engine.PendingCount())
	assert.Equal(t, 0, f.clock.Armed(), "timer must be cleared")
	_, ok = f.engine.Method(id)
	assert.False(t, ok)
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id := f.engine.NextID()
	p := f.engine.Register("s1", id, protocol.MethodTextDocumentDefinition, 0)
	protocolErr := &errors.ProtocolError{Code: -32603, Message: "boom"}
	assert.True(t, f.engine.Reject(id, protocolErr))

	_, err := p.Wait(ctx)
	assert.Equal(t, protocolErr, err)
	assert.Equal(t, 0, f.engine.PendingCount())
}

func TestUnknownResponse(t *testing.T) {
	f := newFixture(t)

	assert.NotPanics(t, func() {
		assert.False(t, f.engine.Resolve(99, nil))
		assert.False(t, f.engine.Reject(100, errors.New("late")))
	})

	logs := f.logs.FilterMessage("response for unknown request").All()
	require.Len(t, logs, 2)
	assert.Equal(t, int32(99), logs[0].ContextMap()["id"])
	assert.Equal(t, int64(2), counterValue(f.stats, "testing.correlation.unknown_responses"))
}

func TestTimeout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id := f.engine.NextID()
	p := f.engine.Register("s1", id, protocol.MethodTextDocumentReferences, 0)
	other := f.engine.Register("s1", f.engine.NextID(), protocol.MethodTextDocumentHover, time.Minute)

	f.clock.Advance(29 * time.Second)
	assert.Equal(t, 2, f.engine.PendingCount())

	f.clock.Advance(time.Second)
	_, err := p.Wait(ctx)
	require.True(t, errors.IsTimeout(err))
	assert.Contains(t, err.Error(), protocol.MethodTextDocumentReferences)
	assert.Equal(t, 1, f.engine.PendingCount(), "only the expired entry is removed")

	assert.False(t, f.engine.Resolve(id, json.RawMessage(`null`)), "a stray response after timeout is ignored")

	assert.True(t, f.engine.Resolve(other.ID, json.RawMessage(`null`)))
	_, err = other.Wait(ctx)
	assert.NoError(t, err)
}

func TestCancelSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.engine.Register("s1", f.engine.NextID(), "a", 0)
	b := f.engine.Register("s1", f.engine.NextID(), "b", 0)
	c := f.engine.Register("s2", f.engine.NextID(), "c", 0)

	reason := &errors.SessionStoppedError{SessionID: "s1"}
	assert.Equal(t, 2, f.engine.CancelSession("s1", reason))
	assert.Equal(t, 1, f.engine.PendingCount())
	assert.Equal(t, 1, f.clock.Armed())

	for _, p := range []*Pending{a, b} {
		_, err := p.Wait(ctx)
		assert.Equal(t, reason, err)
	}

	f.engine.Resolve(c.ID, json.RawMessage(`1`))
	result, err := c.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", string(result))
}

func TestCancelAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pending := []*Pending{
		f.engine.Register("s1", f.engine.NextID(), "a", 0),
		f.engine.Register("s2", f.engine.NextID(), "b", 0),
	}

	assert.Equal(t, 2, f.engine.CancelAll(errors.ClientClosedError))
	assert.Equal(t, 0, f.engine.CancelAll(errors.ClientClosedError))
	assert.Equal(t, 0, f.engine.PendingCount())
	assert.Equal(t, 0, f.clock.Armed())

	for _, p := range pending {
		_, err := p.Wait(ctx)
		assert.Equal(t, errors.ClientClosedError, err)
	}

	f.clock.Advance(time.Hour)
	assert.Equal(t, int64(0), counterValue(f.stats, "testing.correlation.timeouts"))
}

func TestWaitContextCancelled(t *testing.T) {
	f := newFixture(t)

	p := f.engine.Register("s1", f.engine.NextID(), "slow", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.engine.PendingCount())
}

func TestWaitCancelledAfterCompletion(t *testing.T) {
	f := newFixture(t)

	id := f.engine.NextID()
	p := f.engine.Register("s1", id, "textDocument/hover", 0)
	require.True(t, f.engine.Resolve(id, json.RawMessage(`{"contents":"doc"}`)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contents":"doc"}`, string(result))
	assert.Empty(t, f.logs.FilterMessage("response for unknown request").All())
	assert.Equal(t, int64(0), counterValue(f.stats, "testing.correlation.unknown_responses"))
}

func TestDuplicateID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.engine.Register("s1", 7, "a", 0)
	second := f.engine.Register("s1", 7, "b", 0)

	_, err := second.Wait(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, f.engine.PendingCount())

	f.engine.Resolve(7, json.RawMessage(`true`))
	_, err = first.Wait(ctx)
	assert.NoError(t, err)
}

func TestOutOfOrderResponses(t *testing.T) {
	ctx := context.Background()
	e := New(Params{
		Logger: zap.NewNop().Sugar(),
		Stats:  tally.NoopScope,
		Clock:  clock.New(),
	})

	const n = 50
	pending := make([]*Pending, n)
	for i := range pending {
		pending[i] = e.Register("s1", e.NextID(), fmt.Sprintf("m%d", i), time.Minute)
	}

	var wg sync.WaitGroup
	for i := n - 1; i >= 0; i-- {
		wg.Add(1)
		go func(p *Pending) {
			defer wg.Done()
			e.Resolve(p.ID, json.RawMessage(fmt.Sprint(p.ID)))
		}(pending[i])
	}
	wg.Wait()

	for _, p := range pending {
		result, err := p.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(p.ID), string(result))
	}
	assert.Equal(t, 0, e.PendingCount())
}

func TestPendingSetReturnsToBaseline(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New(Params{
			Logger: zap.NewNop().Sugar(),
			Stats:  tally.NoopScope,
			Clock:  clock.NewFake(),
		})

		ids := make([]int32, rapid.IntRange(1, 30).Draw(t, "n"))
		for i := range ids {
			ids[i] = e.NextID()
			e.Register("s1", ids[i], "m", 0)
		}
		for _, id := range ids {
			if rapid.Bool().Draw(t, "resolve") {
				e.Resolve(id, nil)
			} else {
				e.Reject(id, errors.New("rejected"))
			}
		}
		if e.PendingCount() != 0 {
			t.Fatalf("pending count %d after completing every entry", e.PendingCount())
		}
		e.Resolve(ids[0], nil)
		if e.PendingCount() != 0 {
			t.Fatalf("stray response changed the pending set")
		}
	})
}
