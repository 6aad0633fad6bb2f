package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keytar/internal/keyops"
)

const validScenario = `
name: valid
description: "A scenario with every step kind"
scene:
  channels:
    - path: /c
      keys: [{frame: 1, value: 0}]
steps:
  - op: flatten
  - op: transform
    keys: ["/c@1"]
    sx: 2
    pivot: mm
  - op: set_frame
    frame: 3
  - op: undo
assertions:
  - type: keys
    channel: /c
    frames: [1]
  - type: history
    count: 0
`

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "valid", s.Name)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, OpTransform, s.Steps[1].Op)
	assert.Equal(t, []string{"/c@1"}, s.Steps[1].Keys)
	require.NotNil(t, s.Steps[2].Frame)
	assert.Equal(t, 3.0, *s.Steps[2].Frame)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, []float64{1}, s.Assertions[0].Frames)
	assert.Contains(t, s.Scene, "channels")
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\nscene: {}\nsteps: [{op: undo}]\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nscene: {}\nsteps: [{op: undo}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing scene",
			yaml:    "name: x\ndescription: d\nsteps: [{op: undo}]\n",
			wantErr: "scene is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x\ndescription: d\nscene: {}\nsteps: []\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: x\ndescription: d\nscene: {}\nsteps: [{op: smooth}]\n",
			wantErr: `unknown op "smooth"`,
		},
		{
			name:    "transform without keys",
			yaml:    "name: x\ndescription: d\nscene: {}\nsteps: [{op: transform}]\n",
			wantErr: "keys are required for transform",
		},
		{
			name:    "nudge without camera",
			yaml:    "name: x\ndescription: d\nscene: {}\nsteps: [{op: nudge}]\n",
			wantErr: "camera is required",
		},
		{
			name:    "set_frame without frame",
			yaml:    "name: x\ndescription: d\nscene: {}\nsteps: [{op: set_frame}]\n",
			wantErr: "frame is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\ndescription: d\nscene: {}\nsteps: [{op: undo}]\nassertions: [{type: curve}]\n",
			wantErr: `unknown assertion type "curve"`,
		},
		{
			name:    "assertion without channel",
			yaml:    "name: x\ndescription: d\nscene: {}\nsteps: [{op: undo}]\nassertions: [{type: sample}]\n",
			wantErr: "channel is required for sample",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_ExpectAllowsMissingKeys(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
description: d
scene: {}
steps:
  - op: transform
    expect: {error: INVALID_SELECTION}
`))
	assert.NoError(t, err)
}

func TestStep_TransformOptions(t *testing.T) {
	defaults, err := Step{Op: OpTransform}.TransformOptions()
	require.NoError(t, err)
	assert.Equal(t, keyops.DefaultTransformOptions(), defaults)

	sx, off := -1.0, false
	opts, err := Step{
		Op:         OpTransform,
		ScaleX:     &sx,
		TranslateY: 2,
		Pivot:      "tl",
		PivotX:     5,
		Ripple:     &off,
		Snap:       &off,
	}.TransformOptions()
	require.NoError(t, err)
	assert.Equal(t, -1.0, opts.ScaleX)
	assert.Equal(t, 1.0, opts.ScaleY)
	assert.Equal(t, 2.0, opts.TranslateY)
	assert.Equal(t, 5.0, opts.Pivot.X)
	assert.False(t, opts.Ripple)
	assert.False(t, opts.SnapFrame)

	_, err = Step{Op: OpTransform, Pivot: "centre"}.TransformOptions()
	assert.Error(t, err)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", "sub/c.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0o644))
	}

	files, err := FindScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yaml"),
	}, files)

	_, err = FindScenarios(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}
