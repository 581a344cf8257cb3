package process

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/internal/clock"
	"github.com/uber/lspc/src/lspc/internal/executor"
	"github.com/uber/lspc/src/lspc/internal/fs"
	"github.com/uber/lspc/src/lspc/internal/fs/fsmock"
	"github.com/uber/lspc/src/lspc/mapper"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newProvider(t *testing.T, servers map[string]interface{}, gw map[string]interface{}) config.Provider {
	provider, err := config.NewStaticProvider(map[string]interface{}{
		_serversKey: servers,
		_gatewayKey: gw,
	})
	require.NoError(t, err)
	return provider
}

func newGateway(t *testing.T, p Params) *gateway {
	if p.Logger == nil {
		p.Logger = zap.NewNop().Sugar()
	}
	if p.Executor == nil {
		p.Executor = executor.NewExecutor()
	}
	if p.FS == nil {
		p.FS = fs.New()
	}
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	g, err := New(p)
	require.NoError(t, err)
	return g.(*gateway)
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		g := newGateway(t, Params{Config: newProvider(t, nil, nil)})
		assert.Equal(t, _defaultStopGrace, g.stopGrace)
		assert.Equal(t, _defaultMaxReadErrors, g.maxReadErrors)
		assert.Empty(t, g.servers)
	})

	t.Run("configured", func(t *testing.T) {
		g := newGateway(t, Params{Config: newProvider(t,
			map[string]interface{}{
				"go": map[string]interface{}{
					"command":    "gopls",
					"args":       []string{"serve"},
					"languageId": "go",
				},
			},
			map[string]interface{}{
				"stopGraceMs":   250,
				"maxReadErrors": 3,
			},
		)})
		assert.Equal(t, 250*time.Millisecond, g.stopGrace)
		assert.Equal(t, 3, g.maxReadErrors)
		assert.Equal(t, ServerConfig{Command: "gopls", Args: []string{"serve"}, LanguageID: "go"}, g.servers["go"])
	})

	t.Run("bad config", func(t *testing.T) {
		provider, err := config.NewStaticProvider(map[string]interface{}{
			_serversKey: "not a map",
		})
		require.NoError(t, err)
		_, err = New(Params{Config: provider, Logger: zap.NewNop().Sugar()})
		assert.Error(t, err)
	})
}

func TestGetStatus(t *testing.T) {
	servers := map[string]interface{}{
		"installed": map[string]interface{}{
			"command":     "srv",
			"installPath": "/opt/lspc/srv",
			"downloadUrl": "https://example.com/srv.tgz",
		},
		"onpath": map[string]interface{}{
			"command": "srv",
		},
		"missing": map[string]interface{}{
			"command":     "nothing",
			"installPath": "/opt/lspc/nothing",
		},
	}

	t.Run("installed binary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fsMock := fsmock.NewMockLspcFS(ctrl)
		fsMock.EXPECT().FileExists("/opt/lspc/srv").Return(true, nil).Times(1)

		g := newGateway(t, Params{Config: newProvider(t, servers, nil), FS: fsMock})
		want := entity.ServerStatus{
			Available:   true,
			Installed:   true,
			InstallPath: "/opt/lspc/srv",
			CanDownload: true,
			DownloadURL: "https://example.com/srv.tgz",
		}
		assert.Equal(t, want, g.GetStatus(context.Background(), "installed"))
		// Served from the cache.
		assert.Equal(t, want, g.GetStatus(context.Background(), "installed"))
		assert.True(t, g.CheckAvailable(context.Background(), "installed"))
	})

	t.Run("found on path", func(t *testing.T) {
		g := newGateway(t, Params{Config: newProvider(t, servers, nil)})
		g.lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }

		status := g.GetStatus(context.Background(), "onpath")
		assert.True(t, status.Available)
		assert.False(t, status.Installed)
		assert.Equal(t, "/usr/bin/srv", status.InstallPath)
		assert.False(t, status.CanDownload)
	})

	t.Run("missing binary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fsMock := fsmock.NewMockLspcFS(ctrl)
		fsMock.EXPECT().FileExists("/opt/lspc/nothing").Return(false, nil)

		g := newGateway(t, Params{Config: newProvider(t, servers, nil), FS: fsMock})
		g.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

		assert.Equal(t, entity.ServerStatus{}, g.GetStatus(context.Background(), "missing"))
		assert.False(t, g.CheckAvailable(context.Background(), "missing"))
	})

	t.Run("unknown language", func(t *testing.T) {
		g := newGateway(t, Params{Config: newProvider(t, servers, nil)})
		assert.Equal(t, entity.ServerStatus{}, g.GetStatus(context.Background(), "cobol"))
	})
}

func TestStartFailures(t *testing.T) {
	servers := map[string]interface{}{
		"echo": map[string]interface{}{"command": "srv"},
	}

	t.Run("unknown language", func(t *testing.T) {
		g := newGateway(t, Params{Config: newProvider(t, servers, nil)})
		result := g.Start(context.Background(), "cobol", t.TempDir())
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "no server configured")
	})

	t.Run("unavailable", func(t *testing.T) {
		g := newGateway(t, Params{Config: newProvider(t, servers, nil)})
		g.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
		result := g.Start(context.Background(), "echo", t.TempDir())
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "not available")
	})

	t.Run("exec failure", func(t *testing.T) {
		ex := executor.NewExecutor(executor.WithStartFunc(func(*exec.Cmd) error {
			return errors.New("permission denied")
		}))
		g := newGateway(t, Params{Config: newProvider(t, servers, nil), Executor: ex})
		g.lookPath = func(string) (string, error) { return "/usr/bin/srv", nil }

		result := g.Start(context.Background(), "echo", t.TempDir())
		assert.False(t, result.Success)
		assert.Empty(t, result.SessionID)
		assert.Contains(t, result.Error, "permission denied")
	})
}

func TestEchoServer(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	g := newGateway(t, Params{Config: newProvider(t,
		map[string]interface{}{"echo": map[string]interface{}{"command": "cat"}},
		nil,
	)})

	received := make(chan entity.InboundEvent, 4)
	unsubscribe := g.Subscribe(func(e entity.InboundEvent) { received <- e })
	defer unsubscribe()

	result := g.Start(context.Background(), "echo", t.TempDir())
	require.True(t, result.Success, result.Error)
	require.NotEmpty(t, result.SessionID)

	raw, err := mapper.NotificationToBytes("window/logMessage", map[string]interface{}{"type": 3, "message": "hello"})
	require.NoError(t, err)
	require.NoError(t, g.Send(context.Background(), result.SessionID, raw))

	select {
	case e := <-received:
		assert.Equal(t, result.SessionID, e.SessionID)
		msg, err := mapper.BytesToInboundMessage(e.Message)
		require.NoError(t, err)
		assert.Equal(t, entity.MessageKindNotification, msg.Kind)
		assert.Equal(t, "window/logMessage", msg.Method)
		assert.JSONEq(t, `{"type":3,"message":"hello"}`, string(msg.Params))
	case <-time.After(5 * time.Second):
		t.Fatal("no message echoed back")
	}

	require.NoError(t, g.Stop(context.Background(), result.SessionID))
	assert.NoError(t, g.Stop(context.Background(), result.SessionID))
	assert.Error(t, g.Send(context.Background(), result.SessionID, raw))
}

func TestSendUnknownSession(t *testing.T) {
	g := newGateway(t, Params{Config: newProvider(t, nil, nil)})
	err := g.Send(context.Background(), "nope", []byte(`{"jsonrpc":"2.0","method":"exit"}`))
	assert.ErrorContains(t, err, "nope")
}

func TestStopKillsUnresponsiveServer(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	g := newGateway(t, Params{Config: newProvider(t,
		map[string]interface{}{"stubborn": map[string]interface{}{"command": "sleep", "args": []string{"60"}}},
		map[string]interface{}{"stopGraceMs": 20},
	)})

	result := g.Start(context.Background(), "stubborn", t.TempDir())
	require.True(t, result.Success, result.Error)

	done := make(chan error, 1)
	go func() { done <- g.Stop(context.Background(), result.SessionID) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("stop did not return")
	}
}

func TestLifecycleStopsRunningServers(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	lc := fxtest.NewLifecycle(t)
	g := newGateway(t, Params{
		Config: newProvider(t,
			map[string]interface{}{"echo": map[string]interface{}{"command": "cat"}},
			nil,
		),
		Lifecycle: lc,
	})
	lc.RequireStart()

	for i := 0; i < 3; i++ {
		result := g.Start(context.Background(), "echo", t.TempDir())
		require.True(t, result.Success, result.Error)
	}
	lc.RequireStop()

	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Empty(t, g.processes)
}

func TestInstallDirectoryWatch(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "srv")

	lc := fxtest.NewLifecycle(t)
	g := newGateway(t, Params{
		Config: newProvider(t,
			map[string]interface{}{"watched": map[string]interface{}{"installPath": binary}},
			map[string]interface{}{"installDir": dir},
		),
		Lifecycle: lc,
	})
	lc.RequireStart()
	defer lc.RequireStop()

	assert.False(t, g.GetStatus(context.Background(), "watched").Installed)

	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))
	assert.Eventually(t, func() bool {
		return g.GetStatus(context.Background(), "watched").Installed
	}, 5*time.Second, 10*time.Millisecond)
}

func TestInstallDirectoryDefaultsToUserCache(t *testing.T) {
	t.Run("cache directory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fsMock := fsmock.NewMockLspcFS(ctrl)
		fsMock.EXPECT().UserCacheDir().Return("/home/user/.cache", nil)
		fsMock.EXPECT().DirExists("/home/user/.cache/lspc/servers").Return(false, nil)

		lc := fxtest.NewLifecycle(t)
		g := newGateway(t, Params{Config: newProvider(t, nil, nil), FS: fsMock, Lifecycle: lc})
		lc.RequireStart()
		defer lc.RequireStop()

		assert.Equal(t, "/home/user/.cache/lspc/servers", g.installDir)
	})

	t.Run("no cache directory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fsMock := fsmock.NewMockLspcFS(ctrl)
		fsMock.EXPECT().UserCacheDir().Return("", errors.New("$HOME is not defined"))

		lc := fxtest.NewLifecycle(t)
		g := newGateway(t, Params{Config: newProvider(t, nil, nil), FS: fsMock, Lifecycle: lc})
		lc.RequireStart()
		defer lc.RequireStop()

		assert.Empty(t, g.installDir)
	})
}

func TestStderrWriter(t *testing.T) {
	w := &stderrWriter{logger: zap.NewNop().Sugar()}
	n, err := w.Write([]byte("one\ntwo\n"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
}
