package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/keytar/internal/anim"
)

// Batch and undo errors.
var (
	ErrBatchOpen     = errors.New("a batch is already open")
	ErrNoBatch       = errors.New("no batch is open")
	ErrNothingToUndo = anim.ErrNothingToUndo
)

// Scene is an in-memory host: channels, cameras, the time cursor and the
// playbar selection. It keeps an undo group per batch that changed keys.
//
// A batch snapshots every channel when it begins. EndBatch with a non-nil
// error restores the snapshot, so a failed operation leaves no trace.
// Scene is not safe for concurrent use.
type Scene struct {
	curves  map[string]*Curve
	cameras map[string]*anim.StaticCamera
	specs   map[string]CameraSpec

	frame   float64
	playbar *Range

	open    *undoGroup
	history []undoGroup
}

type undoGroup struct {
	label  string
	before map[string][]anim.Keyframe
}

// New returns an empty scene at frame 1.
func New() *Scene {
	return &Scene{
		curves:  make(map[string]*Curve),
		cameras: make(map[string]*anim.StaticCamera),
		specs:   make(map[string]CameraSpec),
		frame:   1,
	}
}

// FromDocument builds a scene from a validated document.
func FromDocument(doc *Document) (*Scene, error) {
	s := New()
	s.frame = doc.Frame
	if doc.Playbar != nil {
		r := *doc.Playbar
		s.playbar = &r
	}
	for _, cs := range doc.Cameras {
		s.AddCamera(cs)
	}
	for _, ch := range doc.Channels {
		keys, err := ch.Keyframes()
		if err != nil {
			return nil, err
		}
		s.curves[anim.CleanPath(ch.Path)] = NewCurve(ch.Path, keys...)
	}
	slog.Debug("scene loaded", "channels", len(s.curves), "cameras", len(s.cameras))
	return s, nil
}

// Document exports the scene.
func (s *Scene) Document() *Document {
	doc := &Document{Frame: s.frame}
	if s.playbar != nil {
		r := *s.playbar
		doc.Playbar = &r
	}
	for _, p := range sortedKeys(s.specs) {
		doc.Cameras = append(doc.Cameras, s.specs[p])
	}
	for _, p := range sortedKeys(s.curves) {
		ch := ChannelSpec{Path: p, Keys: []KeySpec{}}
		for _, k := range s.curves[p].keys {
			ch.Keys = append(ch.Keys, KeySpecOf(k))
		}
		doc.Channels = append(doc.Channels, ch)
	}
	return doc
}

// AddCamera adds or replaces a camera.
func (s *Scene) AddCamera(cs CameraSpec) {
	cs.Path = anim.CleanPath(cs.Path)
	s.specs[cs.Path] = cs
	s.cameras[cs.Path] = cs.Camera()
}

// AddChannel adds an empty channel, or returns the existing one.
func (s *Scene) AddChannel(path string) *Curve {
	path = anim.CleanPath(path)
	if c, ok := s.curves[path]; ok {
		return c
	}
	c := NewCurve(path)
	s.curves[path] = c
	return c
}

// Curve returns the channel at path.
func (s *Scene) Curve(path string) (*Curve, error) {
	c, ok := s.curves[anim.CleanPath(path)]
	if !ok {
		return nil, fmt.Errorf("channel %q: %w", path, anim.ErrNotFound)
	}
	return c, nil
}

// Channel returns the channel at path.
func (s *Scene) Channel(path string) (anim.Channel, error) {
	c, err := s.Curve(path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ChannelPaths returns the sorted paths of every channel under prefix.
func (s *Scene) ChannelPaths(prefix string) ([]string, error) {
	prefix = anim.CleanPath(prefix)
	var out []string
	for _, p := range sortedKeys(s.curves) {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Camera implements anim.CameraLookup.
func (s *Scene) Camera(path string) (anim.Camera, error) {
	c, ok := s.cameras[anim.CleanPath(path)]
	if !ok {
		return nil, fmt.Errorf("camera %q: %w", path, anim.ErrNotFound)
	}
	return c, nil
}

// Frame implements anim.TimeCursor.
func (s *Scene) Frame() float64 { return s.frame }

// SetFrame implements anim.TimeCursor.
func (s *Scene) SetFrame(frame float64) error {
	s.frame = frame
	return nil
}

// SelectionRange implements anim.Playbar. Without an explicit selection
// the range covers every key in the scene.
func (s *Scene) SelectionRange() (float64, float64, error) {
	if s.playbar != nil {
		return s.playbar.Start, s.playbar.End, nil
	}
	start, end := math.Inf(1), math.Inf(-1)
	for _, c := range s.curves {
		if len(c.keys) == 0 {
			continue
		}
		start = math.Min(start, c.keys[0].Frame)
		end = math.Max(end, c.keys[len(c.keys)-1].Frame)
	}
	if start > end {
		return s.frame, s.frame, nil
	}
	return start, end, nil
}

// BeginBatch implements anim.Batcher.
func (s *Scene) BeginBatch(label string) error {
	if s.open != nil {
		return fmt.Errorf("begin %q: %w (%q)", label, ErrBatchOpen, s.open.label)
	}
	s.open = &undoGroup{label: label, before: s.snapshot()}
	return nil
}

// EndBatch implements anim.Batcher. A non-nil err rolls the batch back.
func (s *Scene) EndBatch(err error) error {
	if s.open == nil {
		return ErrNoBatch
	}
	g := *s.open
	s.open = nil
	if err != nil {
		s.restore(g.before)
		slog.Debug("batch rolled back", "label", g.label, "error", err)
		return nil
	}
	if s.unchanged(g.before) {
		return nil
	}
	s.history = append(s.history, g)
	return nil
}

// Undo reverts the most recent batch and returns its label.
func (s *Scene) Undo() (string, error) {
	if s.open != nil {
		return "", ErrBatchOpen
	}
	if len(s.history) == 0 {
		return "", ErrNothingToUndo
	}
	g := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.restore(g.before)
	return g.label, nil
}

// UndoLabels returns the labels of the undo history, oldest first.
func (s *Scene) UndoLabels() []string {
	out := make([]string, len(s.history))
	for i, g := range s.history {
		out[i] = g.label
	}
	return out
}

func (s *Scene) snapshot() map[string][]anim.Keyframe {
	snap := make(map[string][]anim.Keyframe, len(s.curves))
	for p, c := range s.curves {
		snap[p] = append([]anim.Keyframe(nil), c.keys...)
	}
	return snap
}

// unchanged reports whether every channel still matches snap.
func (s *Scene) unchanged(snap map[string][]anim.Keyframe) bool {
	for p, c := range s.curves {
		if !slices.Equal(c.keys, snap[p]) {
			return false
		}
	}
	return true
}

func (s *Scene) restore(snap map[string][]anim.Keyframe) {
	for p, c := range s.curves {
		c.keys = append([]anim.Keyframe(nil), snap[p]...)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
