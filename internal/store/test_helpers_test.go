package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/keytar/internal/anim"
	"github.com/roach88/keytar/internal/scene"
	"github.com/roach88/keytar/internal/testutil"
)

const testScene = `
frame: 5
cameras:
  - path: /obj/cam1
    translate: [0, 0, 10]
channels:
  - path: /obj/geo1/tx
    keys:
      - {frame: 0, value: 5}
      - {frame: 1, value: 5}
      - {frame: 2, value: 5}
      - {frame: 3, value: 8}
  - path: /obj/geo1/ty
    keys:
      - {frame: 0, value: 0, interp: linear}
      - {frame: 10, value: 10, interp: linear}
  - path: /obj/geo1/tz
    keys: []
`

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s.WithIDs(testutil.NewSequentialIDs("group"))
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession imports testScene and opens a session on it.
func createTestSession(t *testing.T) (*Store, *Session) {
	t.Helper()
	s := createTestStore(t)
	doc, err := scene.Parse([]byte(testScene))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if err := s.Import(context.Background(), doc); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	sess, err := s.Session(context.Background())
	if err != nil {
		t.Fatalf("Session() failed: %v", err)
	}
	return s, sess
}

func mustChannel(t *testing.T, sess *Session, path string) anim.Channel {
	t.Helper()
	c, err := sess.Channel(path)
	if err != nil {
		t.Fatalf("Channel(%q) failed: %v", path, err)
	}
	return c
}

func frames(t *testing.T, c anim.Curve) []float64 {
	t.Helper()
	keys, err := c.Keyframes()
	if err != nil {
		t.Fatalf("Keyframes() failed: %v", err)
	}
	return anim.Frames(keys)
}

// failingCurve wraps a curve and fails every SetKeyframe after the
// first okSets.
type failingCurve struct {
	anim.Curve
	okSets int
}

func (c *failingCurve) SetKeyframe(k anim.Keyframe) error {
	if c.okSets == 0 {
		return errInjected
	}
	c.okSets--
	return c.Curve.SetKeyframe(k)
}
