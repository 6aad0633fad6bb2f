package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSceneYAML = `
frame: 1
cameras:
  - path: /obj/cam1
channels:
  - path: /obj/geo1/tx
    keys:
      - {frame: 1, value: 0}
      - {frame: 5, value: 0}
      - {frame: 10, value: 0}
      - {frame: 20, value: 4}
  - path: /obj/geo1/ty
    keys:
      - {frame: 1, value: 0, interp: linear}
      - {frame: 12, value: 5, interp: linear}
      - {frame: 21, value: 10}
  - path: /obj/geo1/tz
    keys:
      - {frame: 1, value: -10}
`

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeScene writes the test scene to a temp file.
func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSceneYAML), 0o644))
	return path
}

// importScene imports the test scene into a temp database.
func importScene(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "shot.db")
	_, err := execute(t, "import", "--db", db, writeScene(t))
	require.NoError(t, err)
	return db
}
