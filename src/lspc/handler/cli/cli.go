// Package cli exposes the language client as a set of cobra commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"github.com/uber/lspc/src/lspc/controller/diagnostics"
	sessionmanager "github.com/uber/lspc/src/lspc/controller/session-manager"
	"github.com/uber/lspc/src/lspc/gateway/process"
	"github.com/uber/lspc/src/lspc/internal/clock"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"github.com/uber/lspc/src/lspc/internal/fs"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "cli"

const _defaultDiagnosticsWait = 3 * time.Second

// _extensionLanguages guesses a language from a file extension when --lang is omitted.
var _extensionLanguages = map[string]string{
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "typescript",
	".jsx":  "typescript",
	".py":   "python",
	".rs":   "rust",
	".java": "java",
}

// Handler runs one command line invocation against a started application.
type Handler interface {
	Execute(ctx context.Context, args []string) error
}

// Params are inbound parameters to initialize a new Handler.
type Params struct {
	fx.In

	Logger      *zap.SugaredLogger
	Sessions    sessionmanager.Controller
	Diagnostics diagnostics.Controller
	Gateway     process.Gateway
	FS          fs.LspcFS
	Clock       clock.Clock
}

type handler struct {
	logger      *zap.SugaredLogger
	sessions    sessionmanager.Controller
	diagnostics diagnostics.Controller
	gateway     process.Gateway
	fs          fs.LspcFS
	clock       clock.Clock

	out io.Writer
	err io.Writer
}

// New creates a new Handler.
func New(p Params) Handler {
	return &handler{
		logger:      p.Logger.With("plugin", _nameKey),
		sessions:    p.Sessions,
		diagnostics: p.Diagnostics,
		gateway:     p.Gateway,
		fs:          p.FS,
		clock:       p.Clock,
	}
}

// Execute runs the command selected by args.
func (h *handler) Execute(ctx context.Context, args []string) error {
	cmd := h.rootCommand()
	if h.out != nil {
		cmd.SetOut(h.out)
	}
	if h.err != nil {
		cmd.SetErr(h.err)
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (h *handler) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "lspc",
		Short:         "Query language servers from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		h.statusCommand(),
		h.diagnosticsCommand(),
		h.hoverCommand(),
		h.definitionCommand(),
		h.referencesCommand(),
		h.symbolsCommand(),
	)
	return root
}

func (h *handler) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <language>",
		Short: "Show whether a server for the language can be launched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), h.gateway.GetStatus(cmd.Context(), args[0]))
		},
	}
}

// target is a file inside a project that a command operates on.
type target struct {
	language string
	root     string
	file     string
}

type targetFlags struct {
	language string
	root     string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.language, "lang", "", "language of the server to use; guessed from the file extension when empty")
	cmd.Flags().StringVar(&f.root, "root", "", "project root; defaults to the git top-level directory of the file")
}

func (h *handler) resolve(flags targetFlags, file string) (target, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return target{}, fmt.Errorf("resolving %q: %w", file, err)
	}

	language := flags.language
	if language == "" {
		var ok bool
		language, ok = _extensionLanguages[strings.ToLower(filepath.Ext(abs))]
		if !ok {
			return target{}, fmt.Errorf("cannot guess the language of %q, pass --lang", file)
		}
	}

	root := flags.root
	if root == "" {
		dir := filepath.Dir(abs)
		root, err = h.fs.WorkspaceRoot(dir)
		if err != nil || root == "" {
			h.logger.Debugw("no workspace root found, using the file directory", "file", abs, "error", err)
			root = dir
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return target{}, fmt.Errorf("resolving root %q: %w", flags.root, err)
	}

	return target{language: language, root: root, file: abs}, nil
}

// open starts or reuses the session for t and opens its file with the current content on disk.
func (h *handler) open(ctx context.Context, t target) (string, error) {
	content, err := h.fs.ReadFile(t.file)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", t.file, err)
	}

	sessionID, err := h.sessions.Start(ctx, t.language, t.root)
	if errors.IsServerMissing(err) {
		return "", fmt.Errorf("%w; install the %s language server so its binary is on PATH, then check it with `lspc status %s`", err, t.language, t.language)
	}
	if err != nil {
		return "", err
	}

	if err := h.sessions.OpenDocument(ctx, sessionID, t.file, "", string(content)); err != nil {
		return "", fmt.Errorf("opening %q: %w", t.file, err)
	}
	return sessionID, nil
}

func (h *handler) diagnosticsCommand() *cobra.Command {
	var (
		flags targetFlags
		wait  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "diagnostics FILE...",
		Short: "Open files and print the diagnostics servers publish for them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var targets []target
			for _, file := range args {
				t, err := h.resolve(flags, file)
				if err != nil {
					return err
				}
				if _, err := h.open(ctx, t); err != nil {
					return err
				}
				targets = append(targets, t)
			}

			if err := h.sleep(ctx, wait); err != nil {
				return err
			}

			report := diagnosticsReport{Files: make(map[string]interface{}, len(targets))}
			for _, t := range targets {
				report.Files[t.file] = h.diagnostics.GetDiagnostics(ctx, t.file)
			}
			report.Counts = h.diagnostics.Counts(ctx)
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&wait, "wait", _defaultDiagnosticsWait, "how long to collect diagnostics before printing")
	return cmd
}

type diagnosticsReport struct {
	Files  map[string]interface{} `json:"files"`
	Counts interface{}            `json:"counts"`
}

// sleep waits for d on the injected clock, returning early if ctx ends.
func (h *handler) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	done := make(chan struct{})
	timer := h.clock.AfterFunc(d, func() { close(done) })
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type positionFlags struct {
	targetFlags
	file   string
	line   uint32
	column uint32
}

func (f *positionFlags) register(cmd *cobra.Command) {
	f.targetFlags.register(cmd)
	cmd.Flags().StringVar(&f.file, "file", "", "file to query")
	cmd.Flags().Uint32Var(&f.line, "line", 1, "1-based line")
	cmd.Flags().Uint32Var(&f.column, "col", 1, "1-based column")
	_ = cmd.MarkFlagRequired("file")
}

func (f positionFlags) position() (protocol.Position, error) {
	if f.line == 0 || f.column == 0 {
		return protocol.Position{}, fmt.Errorf("line and column are 1-based, got %d:%d", f.line, f.column)
	}
	return protocol.Position{Line: f.line - 1, Character: f.column - 1}, nil
}

// route reuses the session already serving t, opening the file only when none is.
func (h *handler) route(ctx context.Context, t target) (string, error) {
	if sessionID, ok := h.sessions.Route(ctx, t.file, t.language, t.root); ok {
		h.logger.Debugw("routed to running session", "file", t.file, "session", sessionID)
		return sessionID, nil
	}
	return h.open(ctx, t)
}

type positionQueryFunc func(ctx context.Context, sessionID string, file string, pos protocol.Position) interface{}

// positionQuery finds a session for the file named by flags with locate and runs query at the requested position.
func (h *handler) positionQuery(cmd *cobra.Command, flags positionFlags, locate func(context.Context, target) (string, error), query positionQueryFunc) error {
	pos, err := flags.position()
	if err != nil {
		return err
	}
	t, err := h.resolve(flags.targetFlags, flags.file)
	if err != nil {
		return err
	}
	sessionID, err := locate(cmd.Context(), t)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), query(cmd.Context(), sessionID, t.file, pos))
}

func (h *handler) hoverCommand() *cobra.Command {
	var flags positionFlags
	cmd := &cobra.Command{
		Use:   "hover",
		Short: "Print hover information at a position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return h.positionQuery(cmd, flags, h.open, func(ctx context.Context, sessionID string, file string, pos protocol.Position) interface{} {
				return h.sessions.Hover(ctx, sessionID, file, pos)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func (h *handler) definitionCommand() *cobra.Command {
	var flags positionFlags
	cmd := &cobra.Command{
		Use:   "definition",
		Short: "Print the definition locations of the symbol at a position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return h.positionQuery(cmd, flags, h.route, func(ctx context.Context, sessionID string, file string, pos protocol.Position) interface{} {
				return h.sessions.Definition(ctx, sessionID, file, pos)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func (h *handler) referencesCommand() *cobra.Command {
	var (
		flags              positionFlags
		includeDeclaration bool
	)
	cmd := &cobra.Command{
		Use:   "references",
		Short: "Print the references to the symbol at a position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return h.positionQuery(cmd, flags, h.route, func(ctx context.Context, sessionID string, file string, pos protocol.Position) interface{} {
				return h.sessions.References(ctx, sessionID, file, pos, includeDeclaration)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&includeDeclaration, "include-declaration", true, "include the declaration itself")
	return cmd
}

func (h *handler) symbolsCommand() *cobra.Command {
	var flags targetFlags
	cmd := &cobra.Command{
		Use:   "symbols FILE",
		Short: "Print the symbols declared in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := h.resolve(flags, args[0])
			if err != nil {
				return err
			}
			sessionID, err := h.open(cmd.Context(), t)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), h.sessions.DocumentSymbols(cmd.Context(), sessionID, t.file))
		},
	}
	flags.register(cmd)
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
