package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/keytar/internal/anim"
	"github.com/roach88/keytar/internal/store"
)

const defaultTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Channel  string // Channel the assertion read, if any
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Channel != "" {
		fmt.Fprintf(&buf, " on %s", e.Channel)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// assertKeys checks the channel's key frames, in order.
func assertKeys(c anim.Channel, a Assertion) error {
	keys, err := c.Keyframes()
	if err != nil {
		return err
	}
	got := anim.Frames(keys)
	want := a.Frames
	if want == nil {
		want = []float64{}
	}
	if got == nil {
		got = []float64{}
	}
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     AssertKeys,
			Channel:  a.Channel,
			Expected: fmt.Sprintf("frames %v", want),
			Actual:   fmt.Sprintf("frames %v", got),
		}
	}
	return nil
}

// assertValue checks the key at a frame.
func assertValue(c anim.Channel, a Assertion) error {
	k, ok, err := c.KeyframeAt(a.Frame)
	if err != nil {
		return err
	}
	if !ok {
		return &AssertionError{
			Type:     AssertValue,
			Channel:  a.Channel,
			Expected: fmt.Sprintf("key at frame %g", a.Frame),
			Actual:   "no key",
		}
	}
	if !near(k.Value, a.Value, a.Tolerance) {
		return &AssertionError{
			Type:     AssertValue,
			Channel:  a.Channel,
			Expected: fmt.Sprintf("value %g at frame %g", a.Value, a.Frame),
			Actual:   fmt.Sprintf("value %g", k.Value),
		}
	}
	if a.Interp != "" && k.Interp.String() != a.Interp {
		return &AssertionError{
			Type:     AssertValue,
			Channel:  a.Channel,
			Expected: fmt.Sprintf("%s key at frame %g", a.Interp, a.Frame),
			Actual:   fmt.Sprintf("%s key", k.Interp),
		}
	}
	return nil
}

// assertSample checks the channel's evaluated value at a frame.
func assertSample(c anim.Channel, a Assertion) error {
	v, err := c.ValueAt(a.Frame)
	if err != nil {
		return err
	}
	if !near(v, a.Value, a.Tolerance) {
		return &AssertionError{
			Type:     AssertSample,
			Channel:  a.Channel,
			Expected: fmt.Sprintf("%g at frame %g", a.Value, a.Frame),
			Actual:   fmt.Sprintf("%g", v),
		}
	}
	return nil
}

// assertHistory checks the number of undo groups.
func assertHistory(sess *store.Session, a Assertion) error {
	history, err := sess.History()
	if err != nil {
		return err
	}
	if len(history) != a.Count {
		labels := make([]string, len(history))
		for i, g := range history {
			labels[i] = g.Label
		}
		return &AssertionError{
			Type:     AssertHistory,
			Expected: fmt.Sprintf("%d undo groups", a.Count),
			Actual:   fmt.Sprintf("%d undo groups %q", len(history), labels),
		}
	}
	return nil
}

func near(got, want, tol float64) bool {
	if tol == 0 {
		tol = defaultTolerance
	}
	return math.Abs(got-want) <= tol
}

// EvaluateAssertions evaluates all assertions against the session's scene.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(assertions []Assertion, sess *store.Session) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertKeys, AssertValue, AssertSample:
			var c anim.Channel
			c, err = sess.Channel(assertion.Channel)
			if err != nil {
				break
			}
			switch assertion.Type {
			case AssertKeys:
				err = assertKeys(c, assertion)
			case AssertValue:
				err = assertValue(c, assertion)
			default:
				err = assertSample(c, assertion)
			}
		case AssertHistory:
			err = assertHistory(sess, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return errors
}
