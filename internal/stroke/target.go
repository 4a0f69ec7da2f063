package stroke

import "fmt"

// TargetKind discriminates what an edit gesture is holding on to.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetPoint
	TargetLeftSize
	TargetRightSize
	TargetLeftCurve
	TargetRightCurve
)

// EditTarget is what a hand grabbed while editing: a stroke point or one of
// the visual-cue handles that tune the brush profile.
type EditTarget struct {
	Kind  TargetKind
	Index int // valid for TargetPoint only
}

// None is the empty target.
var None = EditTarget{}

// Point targets the stroke point at index i.
func Point(i int) EditTarget { return EditTarget{Kind: TargetPoint, Index: i} }

// LeftSizeHandle targets the end of the left wing.
func LeftSizeHandle() EditTarget { return EditTarget{Kind: TargetLeftSize} }

// RightSizeHandle targets the end of the right wing.
func RightSizeHandle() EditTarget { return EditTarget{Kind: TargetRightSize} }

// LeftCurveHandle targets the left falloff preview point.
func LeftCurveHandle() EditTarget { return EditTarget{Kind: TargetLeftCurve} }

// RightCurveHandle targets the right falloff preview point.
func RightCurveHandle() EditTarget { return EditTarget{Kind: TargetRightCurve} }

// IsPoint reports whether the target is a stroke point.
func (t EditTarget) IsPoint() bool { return t.Kind == TargetPoint }

// IsHandle reports whether the target is one of the brush-profile handles.
func (t EditTarget) IsHandle() bool { return t.Kind >= TargetLeftSize }

func (t EditTarget) String() string {
	switch t.Kind {
	case TargetNone:
		return "none"
	case TargetPoint:
		return fmt.Sprintf("point(%d)", t.Index)
	case TargetLeftSize:
		return "left-size"
	case TargetRightSize:
		return "right-size"
	case TargetLeftCurve:
		return "left-curve"
	case TargetRightCurve:
		return "right-curve"
	default:
		return fmt.Sprintf("target(%d)", int(t.Kind))
	}
}
