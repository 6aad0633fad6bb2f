package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/keytar/internal/keyops"
)

// Scenario defines an edit scenario.
// A scenario loads a scene, runs a sequence of edit steps and asserts on
// the resulting keys and undo history.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Scene is the initial scene document.
	Scene map[string]any `yaml:"scene"`

	// Steps are the edits to run, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final scene.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one edit operation with its parameters. Only the fields the
// operation reads are used.
type Step struct {
	// Op is the operation name (see the Op constants).
	Op string `yaml:"op"`

	// Keys are key specs ("path", "path@f1,f2", "path@start:end").
	Keys []string `yaml:"keys,omitempty"`

	// Channels are channel paths for tween.
	Channels []string `yaml:"channels,omitempty"`

	// Prefixes select channels for flatten. None selects every channel.
	Prefixes []string `yaml:"prefixes,omitempty"`

	// Frame is the tween frame or the set_frame target.
	Frame *float64 `yaml:"frame,omitempty"`

	Blend float64 `yaml:"blend,omitempty"`

	// Transform parameters. Unset scales are 1; ripple and snap
	// default to on.
	ScaleX     *float64 `yaml:"sx,omitempty"`
	ScaleY     *float64 `yaml:"sy,omitempty"`
	TranslateX float64  `yaml:"tx,omitempty"`
	TranslateY float64  `yaml:"ty,omitempty"`
	Pivot      string   `yaml:"pivot,omitempty"`
	PivotX     float64  `yaml:"px,omitempty"`
	PivotY     float64  `yaml:"py,omitempty"`
	Ripple     *bool    `yaml:"ripple,omitempty"`
	Snap       *bool    `yaml:"snap,omitempty"`

	// Axis is the flip axis, "x" or "y".
	Axis string `yaml:"axis,omitempty"`

	// Nudge parameters.
	Camera string   `yaml:"camera,omitempty"`
	Parms  []string `yaml:"parms,omitempty"`
	Dir    string   `yaml:"dir,omitempty"`
	Amount float64  `yaml:"amount,omitempty"`
	Range  string   `yaml:"range,omitempty"`

	// Expect checks the step's outcome. Nil means the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error code, e.g. "ZERO_TIME_RANGE".
	// Empty means success.
	Error string `yaml:"error,omitempty"`

	// Report is a subset match against the operation's report fields.
	Report map[string]any `yaml:"report,omitempty"`
}

// Step operation names.
const (
	OpFlatten   = "flatten"
	OpTransform = "transform"
	OpFlip      = "flip"
	OpTween     = "tween"
	OpNudge     = "nudge"
	OpUndo      = "undo"
	OpSetFrame  = "set_frame"
)

// Assertion validates the final scene.
type Assertion struct {
	// Type specifies the assertion type:
	// - "keys": the channel's key frames equal Frames
	// - "value": the key at Frame holds Value (and Interp, if set)
	// - "sample": the channel evaluates to Value at Frame
	// - "history": the undo history holds Count groups
	Type string `yaml:"type"`

	Channel string    `yaml:"channel,omitempty"`
	Frames  []float64 `yaml:"frames,omitempty"`
	Frame   float64   `yaml:"frame,omitempty"`
	Value   float64   `yaml:"value,omitempty"`
	Interp  string    `yaml:"interp,omitempty"`

	// Tolerance bounds value and sample comparisons. Zero means 1e-9.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertKeys    = "keys"
	AssertValue   = "value"
	AssertSample  = "sample"
	AssertHistory = "history"
)

// TransformOptions builds the transform options of a transform step.
func (s Step) TransformOptions() (keyops.TransformOptions, error) {
	opts := keyops.DefaultTransformOptions()
	if s.ScaleX != nil {
		opts.ScaleX = *s.ScaleX
	}
	if s.ScaleY != nil {
		opts.ScaleY = *s.ScaleY
	}
	opts.TranslateX = s.TranslateX
	opts.TranslateY = s.TranslateY
	if s.Pivot != "" {
		align, err := keyops.ParseAlignment(s.Pivot)
		if err != nil {
			return opts, err
		}
		opts.Pivot = keyops.Pivot{Align: align, X: s.PivotX, Y: s.PivotY}
	}
	if s.Ripple != nil {
		opts.Ripple = *s.Ripple
	}
	if s.Snap != nil {
		opts.SnapFrame = *s.Snap
	}
	return opts, nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ext := filepath.Ext(path)
		if !info.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Scene == nil {
		return fmt.Errorf("scene is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks the fields each operation requires.
func validateStep(index int, s *Step) error {
	switch s.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpTransform, OpFlip:
		if len(s.Keys) == 0 && s.Expect == nil {
			return fmt.Errorf("steps[%d]: keys are required for %s", index, s.Op)
		}
	case OpTween:
		if len(s.Keys) == 0 && len(s.Channels) == 0 && s.Expect == nil {
			return fmt.Errorf("steps[%d]: keys or channels are required for tween", index)
		}
	case OpNudge:
		if s.Camera == "" {
			return fmt.Errorf("steps[%d]: camera is required for nudge", index)
		}
	case OpSetFrame:
		if s.Frame == nil {
			return fmt.Errorf("steps[%d]: frame is required for set_frame", index)
		}
	case OpFlatten, OpUndo:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertKeys, AssertValue, AssertSample:
		if a.Channel == "" {
			return fmt.Errorf("assertions[%d]: channel is required for %s", index, a.Type)
		}
	case AssertHistory:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
