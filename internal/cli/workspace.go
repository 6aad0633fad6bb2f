package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/keytar/internal/edit"
	"github.com/roach88/keytar/internal/scene"
	"github.com/roach88/keytar/internal/store"
)

// SceneOptions holds the flags that select the scene a command edits.
type SceneOptions struct {
	*RootOptions
	Database  string
	ScenePath string
}

func addSceneFlags(cmd *cobra.Command, opts *SceneOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite scene database")
	cmd.Flags().StringVar(&opts.ScenePath, "scene", "", "path to YAML scene file, rewritten after edits")
	cmd.MarkFlagsMutuallyExclusive("db", "scene")
	cmd.MarkFlagsOneRequired("db", "scene")
}

// workspace is an opened scene. With --db edits commit to the database
// as they run; with --scene the file is rewritten by save.
type workspace struct {
	host edit.Host

	st   *store.Store
	sess *store.Session

	scene *scene.Scene

	// path is the database or scene file
	path string
}

func openWorkspace(ctx context.Context, opts *SceneOptions) (*workspace, error) {
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		sess, err := st.Session(ctx)
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to open session", err)
		}
		return &workspace{host: sess, st: st, sess: sess, path: opts.Database}, nil
	}

	doc, err := scene.Load(opts.ScenePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load scene", err)
	}
	sc, err := scene.FromDocument(doc)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load scene", err)
	}
	return &workspace{host: sc, scene: sc, path: opts.ScenePath}, nil
}

// save writes a file-backed scene back to its file.
func (w *workspace) save() error {
	if w.scene == nil {
		return nil
	}
	if err := w.scene.Document().Save(w.path); err != nil {
		return WrapExitError(ExitCommandError, "failed to save scene", err)
	}
	return nil
}

// requireDB rejects commands that need the database's undo history.
func (w *workspace) requireDB(command string) error {
	if w.sess == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s requires --db: scene files keep no undo history", command))
	}
	return nil
}

// String names the workspace's backing file.
func (w *workspace) String() string {
	if w.st != nil {
		return "database " + w.path
	}
	return "scene " + w.path
}

func (w *workspace) Close() {
	if w.st == nil {
		return
	}
	if err := w.st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// runEdit opens the scene, applies fn, saves, and prints fn's report.
func runEdit(cmd *cobra.Command, opts *SceneOptions, op string, fn func(h edit.Host) (any, error)) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	ws, err := openWorkspace(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer ws.Close()
	formatter.VerboseLog("editing %s", ws)

	report, err := fn(ws.host)
	if err != nil {
		return formatter.EditFailed(err)
	}
	if err := ws.save(); err != nil {
		return err
	}
	if ws.scene != nil {
		formatter.VerboseLog("saved %s", ws.path)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s: %s\n", op, describeReport(report))
	return nil
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
