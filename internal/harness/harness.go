package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/roach88/keytar/internal/edit"
	"github.com/roach88/keytar/internal/scene"
	"github.com/roach88/keytar/internal/store"
	"github.com/roach88/keytar/internal/testutil"
)

// UndoReport is the report of an undo step.
type UndoReport struct {
	Label string `json:"label"`
}

// FrameReport is the report of a set_frame step.
type FrameReport struct {
	Frame float64 `json:"frame"`
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// sequential undo group IDs.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Validate and import the scene document
// 3. Execute steps, checking each expect clause
// 4. Evaluate assertions and snapshot the final scene
//
// Run returns an error only when the scenario cannot be set up; failed
// expectations are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	st.WithIDs(testutil.NewSequentialIDs("group"))

	ctx := context.Background()
	doc, err := scene.Decode(scenario.Scene)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	if err := st.Import(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to import scene: %w", err)
	}
	sess, err := st.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		report, err := runStep(sess, step)
		sr := StepResult{Op: step.Op, Code: edit.Code(err)}
		if err == nil {
			sr.Report = report
		}
		result.Steps = append(result.Steps, sr)
		for _, msg := range checkExpect(step, sr, err) {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, step.Op, msg))
		}
	}

	for _, msg := range EvaluateAssertions(scenario.Assertions, sess) {
		result.AddError(msg)
	}

	if err := snapshot(ctx, st, sess, result); err != nil {
		return nil, fmt.Errorf("failed to snapshot scene: %w", err)
	}
	return result, nil
}

// runStep dispatches one step to the edit operations.
func runStep(h edit.Host, step Step) (any, error) {
	switch step.Op {
	case OpFlatten:
		return edit.Flatten(h, step.Prefixes...)
	case OpTransform:
		opts, err := step.TransformOptions()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", edit.ErrInvalidArgument, err)
		}
		return edit.Transform(h, step.Keys, opts)
	case OpFlip:
		return edit.Flip(h, step.Keys, step.Axis, step.Pivot)
	case OpTween:
		return edit.Tween(h, edit.TweenRequest{
			Keys:     step.Keys,
			Channels: step.Channels,
			Frame:    step.Frame,
			Blend:    step.Blend,
		})
	case OpNudge:
		return edit.Nudge(h, edit.NudgeRequest{
			Camera: step.Camera,
			Parms:  step.Parms,
			Dir:    step.Dir,
			Amount: step.Amount,
			Range:  step.Range,
		})
	case OpUndo:
		label, err := edit.Undo(h)
		return UndoReport{Label: label}, err
	case OpSetFrame:
		if err := h.SetFrame(*step.Frame); err != nil {
			return nil, err
		}
		return FrameReport{Frame: *step.Frame}, nil
	}
	return nil, fmt.Errorf("%w: unknown op %q", edit.ErrInvalidArgument, step.Op)
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(step Step, sr StepResult, err error) []string {
	want := ExpectClause{}
	if step.Expect != nil {
		want = *step.Expect
	}
	if sr.Code != want.Error {
		if want.Error == "" {
			return []string{fmt.Sprintf("unexpected error: %v", err)}
		}
		return []string{fmt.Sprintf("expected error %s, got %q", want.Error, sr.Code)}
	}
	if len(want.Report) == 0 || err != nil {
		return nil
	}

	fields, ferr := reportFields(sr.Report)
	if ferr != nil {
		return []string{ferr.Error()}
	}
	var msgs []string
	for key, expected := range want.Report {
		actual, ok := fields[key]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("report has no field %q", key))
			continue
		}
		if !valuesEqual(actual, expected) {
			msgs = append(msgs, fmt.Sprintf("report.%s = %v, expected %v", key, actual, expected))
		}
	}
	return msgs
}

// reportFields flattens a report struct into its JSON fields.
func reportFields(report any) (map[string]any, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return fields, nil
}

// valuesEqual compares a JSON-decoded actual value with a YAML-decoded
// expected one. Numbers compare by value whatever their Go type.
func valuesEqual(actual, expected any) bool {
	if a, ok := toFloat(actual); ok {
		e, ok := toFloat(expected)
		return ok && a == e
	}
	return reflect.DeepEqual(actual, expected)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// snapshot records the final channels and undo history in result.
func snapshot(ctx context.Context, st *store.Store, sess *store.Session, result *Result) error {
	doc, err := st.Export(ctx)
	if err != nil {
		return err
	}
	for _, ch := range doc.Channels {
		cs := ChannelSnapshot{Path: ch.Path, Keys: []KeySnapshot{}}
		for _, k := range ch.Keys {
			cs.Keys = append(cs.Keys, KeySnapshot{Frame: k.Frame, Value: k.Value, Interp: k.Interp})
		}
		result.Channels = append(result.Channels, cs)
	}

	history, err := sess.History()
	if err != nil {
		return err
	}
	for _, g := range history {
		result.History = append(result.History, g.Label)
	}
	return nil
}
