package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/keytar/internal/edit"
	"github.com/roach88/keytar/internal/keyops"
)

// NewFlattenCommand creates the flatten command.
func NewFlattenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SceneOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "flatten [channel-prefix...]",
		Short: "Remove redundant keys from flat runs",
		Long: `Remove the keys inside runs of equal values.

Each run keeps its first and last key; the first key's outgoing segment
becomes linear. With no prefixes every channel is compacted.

Examples:
  keytar flatten --db ./shot.db
  keytar flatten --scene shot.yaml /obj/geo1/`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, opts, keyops.LabelRemoveFlat, func(h edit.Host) (any, error) {
				return edit.Flatten(h, args...)
			})
		},
	}
	addSceneFlags(cmd, opts)

	return cmd
}

// TransformOptions holds flags for the transform command.
type TransformOptions struct {
	*SceneOptions
	ScaleX     float64
	ScaleY     float64
	TranslateX float64
	TranslateY float64
	Pivot      string
	PivotX     float64
	PivotY     float64
	NoRipple   bool
	NoSnap     bool
}

func (o *TransformOptions) options() (keyops.TransformOptions, error) {
	align, err := keyops.ParseAlignment(o.Pivot)
	if err != nil {
		return keyops.TransformOptions{}, fmt.Errorf("%w: %v", edit.ErrInvalidArgument, err)
	}
	return keyops.TransformOptions{
		ScaleX:     o.ScaleX,
		ScaleY:     o.ScaleY,
		TranslateX: o.TranslateX,
		TranslateY: o.TranslateY,
		Pivot:      keyops.Pivot{Align: align, X: o.PivotX, Y: o.PivotY},
		Ripple:     !o.NoRipple,
		SnapFrame:  !o.NoSnap,
	}, nil
}

// NewTransformCommand creates the transform command.
func NewTransformCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransformOptions{SceneOptions: &SceneOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "transform <keys>...",
		Short: "Scale and translate keys about a pivot",
		Long: `Scale and translate the selected keys about a pivot.

Keys are named as "path" (all keys), "path@f1,f2" (exact frames) or
"path@start:end" (an inclusive range). The pivot is one of the nine
bounding-box alignments (tl tm tr ml mm mr bl bm br) or "none" for the
explicit --px/--py point. Unless --no-ripple is set, keys outside the
selection shift to make room for a time scale.

Examples:
  keytar transform --db ./shot.db /obj/geo1/tx@10:20 --sx 2 --pivot ml
  keytar transform --scene shot.yaml /obj/geo1/ty --sy 0.5 --pivot none --py 0`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, opts.SceneOptions, keyops.LabelTransform, func(h edit.Host) (any, error) {
				topts, err := opts.options()
				if err != nil {
					return nil, err
				}
				return edit.Transform(h, args, topts)
			})
		},
	}
	addSceneFlags(cmd, opts.SceneOptions)
	cmd.Flags().Float64Var(&opts.ScaleX, "sx", 1, "time scale")
	cmd.Flags().Float64Var(&opts.ScaleY, "sy", 1, "value scale")
	cmd.Flags().Float64Var(&opts.TranslateX, "tx", 0, "time offset")
	cmd.Flags().Float64Var(&opts.TranslateY, "ty", 0, "value offset")
	cmd.Flags().StringVar(&opts.Pivot, "pivot", "mm", "pivot alignment, or none")
	cmd.Flags().Float64Var(&opts.PivotX, "px", 0, "pivot frame when --pivot=none")
	cmd.Flags().Float64Var(&opts.PivotY, "py", 0, "pivot value when --pivot=none")
	cmd.Flags().BoolVar(&opts.NoRipple, "no-ripple", false, "leave keys outside the selection in place")
	cmd.Flags().BoolVar(&opts.NoSnap, "no-snap", false, "keep fractional frames")

	return cmd
}

// FlipOptions holds flags for the flip command.
type FlipOptions struct {
	*SceneOptions
	Axis  string
	Pivot string
}

// NewFlipCommand creates the flip command.
func NewFlipCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FlipOptions{SceneOptions: &SceneOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "flip <keys>...",
		Short: "Mirror keys in time or value",
		Long: `Mirror the selected keys about a bounding-box pivot.

--axis x reverses the keys in time; --axis y mirrors their values.

Example:
  keytar flip --db ./shot.db /obj/geo1/tx@1:9 --axis x`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, opts.SceneOptions, keyops.LabelTransform, func(h edit.Host) (any, error) {
				return edit.Flip(h, args, opts.Axis, opts.Pivot)
			})
		},
	}
	addSceneFlags(cmd, opts.SceneOptions)
	cmd.Flags().StringVar(&opts.Axis, "axis", "x", "axis to mirror (x|y)")
	cmd.Flags().StringVar(&opts.Pivot, "pivot", "mm", "pivot alignment")

	return cmd
}

// TweenOptions holds flags for the tween command.
type TweenOptions struct {
	*SceneOptions
	Channels []string
	Frame    float64
	Blend    float64
}

// NewTweenCommand creates the tween command.
func NewTweenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TweenOptions{SceneOptions: &SceneOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "tween [keys...]",
		Short: "Blend keys toward their neighbors",
		Long: `Blend keys between their previous and next neighbors.

A blend of 0 takes the previous key's value, 1 the next key's and 0.5
the midpoint; values outside [0, 1] extrapolate. Tween either the named
keys, or whole channels (--channel) at --frame, which defaults to the
scene's current frame.

Examples:
  keytar tween --db ./shot.db /obj/geo1/tx@12 --blend 0.5
  keytar tween --scene shot.yaml --channel /obj/geo1/tx --channel /obj/geo1/ty --frame 12`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := edit.TweenRequest{Keys: args, Channels: opts.Channels, Blend: opts.Blend}
			if cmd.Flags().Changed("frame") {
				req.Frame = &opts.Frame
			}
			return runEdit(cmd, opts.SceneOptions, keyops.LabelTween, func(h edit.Host) (any, error) {
				return edit.Tween(h, req)
			})
		},
	}
	addSceneFlags(cmd, opts.SceneOptions)
	cmd.Flags().StringArrayVar(&opts.Channels, "channel", nil, "channel to tween at --frame (repeatable)")
	cmd.Flags().Float64Var(&opts.Frame, "frame", 0, "frame for --channel tweens (default current frame)")
	cmd.Flags().Float64Var(&opts.Blend, "blend", 0.5, "blend from the previous key (0) to the next (1)")

	return cmd
}

// NudgeOptions holds flags for the nudge command.
type NudgeOptions struct {
	*SceneOptions
	Camera string
	Parms  []string
	Dir    string
	Amount float64
	Range  string
}

// NewNudgeCommand creates the nudge command.
func NewNudgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NudgeOptions{SceneOptions: &SceneOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "nudge",
		Short: "Move vector parameters along a camera's view",
		Long: `Move vector parameters in a direction of a camera's view.

Each --parm names a vector parameter whose channels are the path with
x, y and z appended. Directions are left, right, up, down, fwd and
back. Left, right, up and down move across the screen in normalized
device coordinates, where the frame spans -1 to 1; fwd and back move
along the view axis in world units. --range selects the keys to move
(cur, sel or all).

Example:
  keytar nudge --db ./shot.db --camera /obj/cam1 --parm /obj/geo1/t --dir back --amount 5 --range all`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := edit.NudgeRequest{
				Camera: opts.Camera,
				Parms:  opts.Parms,
				Dir:    opts.Dir,
				Amount: opts.Amount,
				Range:  opts.Range,
			}
			return runEdit(cmd, opts.SceneOptions, keyops.LabelNudge, func(h edit.Host) (any, error) {
				return edit.Nudge(h, req)
			})
		},
	}
	addSceneFlags(cmd, opts.SceneOptions)
	cmd.Flags().StringVar(&opts.Camera, "camera", "", "camera path (required)")
	_ = cmd.MarkFlagRequired("camera")
	cmd.Flags().StringArrayVar(&opts.Parms, "parm", nil, "vector parameter path (repeatable)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "nudge direction")
	cmd.Flags().Float64Var(&opts.Amount, "amount", 0.1, "step: NDC units across the screen, world units in depth")
	cmd.Flags().StringVar(&opts.Range, "range", "all", "keys to move (cur|sel|all)")

	return cmd
}

// describeReport renders an edit report as one line of text.
func describeReport(report any) string {
	switch r := report.(type) {
	case keyops.Report:
		return fmt.Sprintf("%d curve(s), %d key(s) set, %d deleted", r.Curves, r.Set, r.Deleted)
	case keyops.TweenReport:
		return fmt.Sprintf("%d key(s) written, %d skipped", r.Written, r.Skipped)
	case keyops.NudgeReport:
		return fmt.Sprintf("%d parameter(s), %d key(s) moved", r.Targets, r.Keys)
	}
	return fmt.Sprint(report)
}
