package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/factory"
	"github.com/uber/lspc/src/lspc/internal/clock"
	"github.com/uber/lspc/src/lspc/internal/executor"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// serverProcess is one running language server and the framed stream attached to its stdio.
type serverProcess struct {
	id     string
	cmd    *exec.Cmd
	stream jsonrpc2.Stream
	logger *zap.SugaredLogger

	writeMu  sync.Mutex
	stopping atomic.Bool
	stopOnce sync.Once
	stopErr  error

	// exited is closed once the process has been reaped, done once the read loop returned.
	exited chan struct{}
	done   chan struct{}
}

func startServerProcess(ex executor.Executor, cmd *exec.Cmd, env []string, logger *zap.SugaredLogger) (*serverProcess, error) {
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("creating stdout pipe: %w", err), stdinR.Close(), stdinW.Close())
	}

	id := factory.SessionID()
	logger = logger.With("session", id)

	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = &stderrWriter{logger: logger}

	if err := ex.Start(cmd, env); err != nil {
		return nil, multierr.Combine(
			fmt.Errorf("starting %q: %w", cmd.Path, err),
			stdinR.Close(), stdinW.Close(), stdoutR.Close(), stdoutW.Close(),
		)
	}

	// The child holds its own copies of these ends now.
	if err := multierr.Combine(stdinR.Close(), stdoutW.Close()); err != nil {
		logger.Warnw("closing child pipe ends", "error", err)
	}

	p := &serverProcess{
		id:     id,
		cmd:    cmd,
		stream: jsonrpc2.NewStream(&pipeConn{reader: stdoutR, writer: stdinW}),
		logger: logger,
		exited: make(chan struct{}),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(p.exited)
		if err := cmd.Wait(); err != nil && !p.stopping.Load() {
			logger.Warnw("server exited", "error", err)
		}
	}()

	return p, nil
}

// readLoop publishes every message read from the server until the stream ends.
func (p *serverProcess) readLoop(maxErrors int, publish func(entity.InboundEvent)) {
	defer close(p.done)

	failures := 0
	for {
		msg, _, err := p.stream.Read(context.Background())
		if err != nil {
			if p.stopping.Load() || isClosed(err) {
				return
			}
			failures++
			p.logger.Warnw("reading from server", "error", err, "failures", failures)
			if failures >= maxErrors {
				p.logger.Errorw("too many read failures, detaching from server", "error", err)
				return
			}
			continue
		}
		failures = 0

		raw, err := json.Marshal(msg)
		if err != nil {
			p.logger.Warnw("re-encoding server message", "error", err)
			continue
		}
		publish(entity.InboundEvent{SessionID: p.id, Message: raw})
	}
}

func (p *serverProcess) send(ctx context.Context, message []byte) error {
	if p.stopping.Load() {
		return fmt.Errorf("server process for session %q is stopping", p.id)
	}

	msg, err := jsonrpc2.DecodeMessage(message)
	if err != nil {
		return fmt.Errorf("decoding outbound message: %w", err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if _, err := p.stream.Write(ctx, msg); err != nil {
		return fmt.Errorf("writing to server: %w", err)
	}
	return nil
}

// stop closes the stream, gives the process grace to exit and kills it otherwise.
// Repeated calls return the result of the first.
func (p *serverProcess) stop(clk clock.Clock, grace time.Duration) error {
	p.stopOnce.Do(func() {
		p.stopping.Store(true)

		p.writeMu.Lock()
		closeErr := p.stream.Close()
		p.writeMu.Unlock()

		expired := make(chan struct{})
		timer := clk.AfterFunc(grace, func() { close(expired) })
		select {
		case <-p.exited:
			timer.Stop()
		case <-expired:
			p.logger.Infow("server did not exit in time, killing", "grace", grace)
			if p.cmd.Process != nil {
				if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
					closeErr = multierr.Append(closeErr, err)
				}
			}
			<-p.exited
		}

		<-p.done
		if closeErr != nil && !isClosed(closeErr) {
			p.stopErr = closeErr
		}
	})
	return p.stopErr
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

// pipeConn joins the read end of the server's stdout and the write end of its stdin.
type pipeConn struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (c *pipeConn) Read(b []byte) (int, error)  { return c.reader.Read(b) }
func (c *pipeConn) Write(b []byte) (int, error) { return c.writer.Write(b) }

func (c *pipeConn) Close() error {
	return multierr.Combine(c.writer.Close(), c.reader.Close())
}

// stderrWriter forwards server stderr to the debug log.
type stderrWriter struct {
	logger *zap.SugaredLogger
}

func (w *stderrWriter) Write(b []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		if line != "" {
			w.logger.Debugw("server stderr", "line", line)
		}
	}
	return len(b), nil
}
