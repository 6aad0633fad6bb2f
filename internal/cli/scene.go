package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/keytar/internal/edit"
	"github.com/roach88/keytar/internal/scene"
	"github.com/roach88/keytar/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult summarizes an imported scene.
type ImportResult struct {
	Channels int `json:"channels"`
	Keys     int `json:"keys"`
	Cameras  int `json:"cameras"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <scene.yaml>",
		Short: "Load a scene file into a database",
		Long: `Validate a YAML scene and load it into a SQLite database.

The database is created if it does not exist. Any scene already stored
there is replaced and its undo history cleared.

Example:
  keytar import --db ./shot.db shot.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	doc, err := scene.Load(path)
	if err != nil {
		_ = formatter.Error(edit.CodeInvalidArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scene", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := st.Import(cmd.Context(), doc); err != nil {
		return WrapExitError(ExitCommandError, "failed to import scene", err)
	}

	result := ImportResult{Channels: len(doc.Channels), Cameras: len(doc.Cameras)}
	for _, ch := range doc.Channels {
		result.Keys += len(ch.Keys)
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d channel(s), %d key(s), %d camera(s) into %s\n",
		result.Channels, result.Keys, result.Cameras, opts.Database)
	return nil
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Output   string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a database scene as YAML",
		Long: `Write the scene stored in a database as a YAML scene document.

Automatic slopes are omitted, so the output imports back unchanged.

Examples:
  keytar export --db ./shot.db
  keytar export --db ./shot.db -o shot.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	doc, err := st.Export(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to export scene", err)
	}
	if opts.Output != "" {
		if err := doc.Save(opts.Output); err != nil {
			return WrapExitError(ExitCommandError, "failed to write scene", err)
		}
		return nil
	}
	if opts.Format == "json" {
		return newFormatter(cmd, opts.RootOptions).Success(doc)
	}
	return doc.Write(cmd.OutOrStdout())
}

// KeyRow is one key as listed by the keys command.
type KeyRow struct {
	Frame    float64 `json:"frame"`
	Value    float64 `json:"value"`
	Interp   string  `json:"interp"`
	InSlope  float64 `json:"in_slope"`
	OutSlope float64 `json:"out_slope"`
	Auto     bool    `json:"auto"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SceneOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keys <channel>",
		Short: "List a channel's keys",
		Long: `List the keys of one channel in frame order, with their slopes.

Example:
  keytar keys --db ./shot.db /obj/geo1/tx`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(opts, args[0], cmd)
		},
	}
	addSceneFlags(cmd, opts)

	return cmd
}

func runKeys(opts *SceneOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	ws, err := openWorkspace(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer ws.Close()

	keys, err := edit.Keys(ws.host, path)
	if err != nil {
		return formatter.EditFailed(err)
	}
	rows := make([]KeyRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, KeyRow{
			Frame:    k.Frame,
			Value:    k.Value,
			Interp:   k.Interp.String(),
			InSlope:  k.InSlope,
			OutSlope: k.OutSlope,
			Auto:     k.IsSlopeAuto(),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(rows)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "%s: %d key(s)\n", path, len(rows))
	for _, r := range rows {
		auto := ""
		if r.Auto {
			auto = " (auto)"
		}
		fmt.Fprintf(w, "  %8g  %10g  %-8s  in %g  out %g%s\n", r.Frame, r.Value, r.Interp, r.InSlope, r.OutSlope, auto)
	}
	return nil
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SceneOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the undo history",
		Long: `List the committed edits that undo can revert, oldest first.

Example:
  keytar history --db ./shot.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}
	addSceneFlags(cmd, opts)

	return cmd
}

func runHistory(opts *SceneOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	ws, err := openWorkspace(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer ws.Close()
	if err := ws.requireDB("history"); err != nil {
		return err
	}

	history, err := ws.sess.History()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(history)
	}
	if len(history) == 0 {
		fmt.Fprintln(formatter.Writer, "No undo history.")
		return nil
	}
	for _, g := range history {
		fmt.Fprintf(formatter.Writer, "  %4d  %s  (%s)\n", g.Seq, g.Label, g.ID)
	}
	return nil
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SceneOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent edit",
		Long: `Revert the most recent committed edit in a database scene.

Exit codes:
  0 - Edit reverted
  1 - Nothing to undo
  2 - Command error

Example:
  keytar undo --db ./shot.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndo(opts, cmd)
		},
	}
	addSceneFlags(cmd, opts)

	return cmd
}

func runUndo(opts *SceneOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	ws, err := openWorkspace(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer ws.Close()
	if err := ws.requireDB("undo"); err != nil {
		return err
	}

	label, err := edit.Undo(ws.host)
	if err != nil {
		return formatter.EditFailed(err)
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"label": label})
	}
	fmt.Fprintf(formatter.Writer, "✓ Undid %q\n", label)
	return nil
}
