package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/roach88/keytar/internal/anim"
)

// Document is the YAML form of a scene.
type Document struct {
	// Frame is the time cursor position.
	Frame float64 `json:"frame" yaml:"frame"`

	// Playbar is the selected frame range on the timeline. Nil means the
	// whole keyed range.
	Playbar *Range `json:"playbar,omitempty" yaml:"playbar,omitempty"`

	Cameras  []CameraSpec  `json:"cameras,omitempty" yaml:"cameras,omitempty"`
	Channels []ChannelSpec `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// Range is an inclusive frame range.
type Range struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// CameraSpec describes a static camera. Rotations are in degrees, applied
// about X, then Y, then Z, before the translation.
type CameraSpec struct {
	Path        string    `json:"path" yaml:"path"`
	Focal       float64   `json:"focal" yaml:"focal"`
	Aperture    float64   `json:"aperture" yaml:"aperture"`
	ResX        float64   `json:"resx" yaml:"resx"`
	ResY        float64   `json:"resy" yaml:"resy"`
	PixelAspect float64   `json:"pixel_aspect" yaml:"pixel_aspect"`
	Near        float64   `json:"near" yaml:"near"`
	Far         float64   `json:"far" yaml:"far"`
	Translate   []float64 `json:"translate" yaml:"translate,flow"`
	Rotate      []float64 `json:"rotate" yaml:"rotate,flow"`
}

// Camera builds the camera described by c.
func (c CameraSpec) Camera() *anim.StaticCamera {
	return &anim.StaticCamera{
		Params: anim.Intrinsics{
			Focal:       c.Focal,
			Aperture:    c.Aperture,
			ResX:        c.ResX,
			ResY:        c.ResY,
			PixelAspect: c.PixelAspect,
			Near:        c.Near,
			Far:         c.Far,
		},
		Transform: c.WorldTransform(),
	}
}

// WorldTransform returns the camera's object-to-world matrix.
func (c CameraSpec) WorldTransform() mgl64.Mat4 {
	r, t := vec3(c.Rotate), vec3(c.Translate)
	rot := mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Z())).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r.Y()))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r.X())))
	return mgl64.Translate3D(t.X(), t.Y(), t.Z()).Mul4(rot)
}

func vec3(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// ChannelSpec is one animation channel.
type ChannelSpec struct {
	Path string    `json:"path" yaml:"path"`
	Keys []KeySpec `json:"keys" yaml:"keys"`
}

// KeySpec is one keyframe. A missing slope marks that side as automatic.
type KeySpec struct {
	Frame    float64  `json:"frame" yaml:"frame"`
	Value    float64  `json:"value" yaml:"value"`
	Interp   string   `json:"interp" yaml:"interp,omitempty"`
	InSlope  *float64 `json:"in_slope,omitempty" yaml:"in_slope,omitempty"`
	OutSlope *float64 `json:"out_slope,omitempty" yaml:"out_slope,omitempty"`
	InAccel  float64  `json:"in_accel" yaml:"in_accel,omitempty"`
	OutAccel float64  `json:"out_accel" yaml:"out_accel,omitempty"`
}

// Keyframe converts k to the model type.
func (k KeySpec) Keyframe() (anim.Keyframe, error) {
	interp, err := anim.ParseInterpolation(k.Interp)
	if err != nil {
		return anim.Keyframe{}, err
	}
	key := anim.Keyframe{
		Frame:    k.Frame,
		Value:    k.Value,
		InAccel:  k.InAccel,
		OutAccel: k.OutAccel,
		Interp:   interp,
	}
	if k.InSlope != nil {
		key.InSlope = *k.InSlope
	} else {
		key.InSlopeAuto = true
	}
	if k.OutSlope != nil {
		key.OutSlope = *k.OutSlope
	} else {
		key.OutSlopeAuto = true
	}
	return key, nil
}

// KeySpecOf converts a model keyframe for serialization. Automatic
// slopes are omitted.
func KeySpecOf(k anim.Keyframe) KeySpec {
	s := KeySpec{
		Frame:    k.Frame,
		Value:    k.Value,
		InAccel:  k.InAccel,
		OutAccel: k.OutAccel,
		Interp:   k.Interp.String(),
	}
	if !k.InSlopeAuto {
		v := k.InSlope
		s.InSlope = &v
	}
	if !k.OutSlopeAuto {
		v := k.OutSlope
		s.OutSlope = &v
	}
	return s
}

// Keyframes converts and frame-sorts the channel's keys.
func (c ChannelSpec) Keyframes() ([]anim.Keyframe, error) {
	keys := make([]anim.Keyframe, 0, len(c.Keys))
	for i, ks := range c.Keys {
		k, err := ks.Keyframe()
		if err != nil {
			return nil, fmt.Errorf("%s: key %d: %w", c.Path, i, err)
		}
		keys = append(keys, k)
	}
	anim.SortKeyframes(keys)
	return keys, nil
}

// Parse decodes a YAML scene, validating it against the embedded schema
// and filling schema defaults.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return Decode(raw)
}

// Decode validates an already-decoded YAML value, such as a scene
// embedded in another file.
func Decode(raw any) (*Document, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	var doc Document
	if err := applySchema(raw, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.normalize()
	return &doc, nil
}

// Load reads and parses a scene file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks what the schema cannot: unique paths and unique key
// frames per channel.
func (d *Document) Validate() error {
	cams := make(map[string]bool, len(d.Cameras))
	for _, c := range d.Cameras {
		p := anim.CleanPath(c.Path)
		if cams[p] {
			return fmt.Errorf("duplicate camera %q", p)
		}
		cams[p] = true
	}
	chans := make(map[string]bool, len(d.Channels))
	for _, c := range d.Channels {
		p := anim.CleanPath(c.Path)
		if chans[p] {
			return fmt.Errorf("duplicate channel %q", p)
		}
		chans[p] = true

		frames := make(map[float64]bool, len(c.Keys))
		for _, k := range c.Keys {
			if frames[k.Frame] {
				return fmt.Errorf("channel %q: duplicate key at frame %g", p, k.Frame)
			}
			frames[k.Frame] = true
		}
		if _, err := c.Keyframes(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) normalize() {
	for i := range d.Cameras {
		d.Cameras[i].Path = anim.CleanPath(d.Cameras[i].Path)
	}
	for i := range d.Channels {
		c := &d.Channels[i]
		c.Path = anim.CleanPath(c.Path)
		if c.Keys == nil {
			c.Keys = []KeySpec{}
		}
		sort.SliceStable(c.Keys, func(a, b int) bool { return c.Keys[a].Frame < c.Keys[b].Frame })
	}
	sort.SliceStable(d.Cameras, func(a, b int) bool { return d.Cameras[a].Path < d.Cameras[b].Path })
	sort.SliceStable(d.Channels, func(a, b int) bool { return d.Channels[a].Path < d.Channels[b].Path })
}

// Write encodes d as YAML.
func (d *Document) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return enc.Close()
}

// Marshal returns d as YAML bytes.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes d to path.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene file: %w", err)
	}
	return nil
}
