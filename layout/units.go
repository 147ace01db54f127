package layout

import (
	"strconv"
	"strings"
)

// 长度与行高的单位处理。布局内部统一使用毫米（mm），字号在模板中通常写作 pt。

// Unit represents the original unit of a length value as written in a template.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Pt 构造以 pt 为单位的长度。
func Pt(v float64) Length { return Length{Value: v, Unit: UnitPT} }

// Mm 构造以 mm 为单位的长度。
func Mm(v float64) Length { return Length{Value: v, Unit: UnitMM} }

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts the length to millimeters; unit-less values are taken as mm.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPT converts the length to points.
func (l Length) ToPT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseRawLengthStr parses a template length string preserving its unit.
// ok is false when the numeric part is not a number.
func ParseRawLengthStr(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec is either a factor of the font size (1.4x) or an absolute length (5mm).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight 解析 "1.4x" 或 "5mm" 形式的行高。
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l, ok := ParseRawLengthStr(v)
	if !ok || l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// ResolveMM computes the absolute line height in mm for the given font size.
func (s LineHeightSpec) ResolveMM(fontSize Length) float64 {
	switch s.Kind {
	case LineHeightAbsolute:
		return s.Len.ToMM()
	default:
		factor := s.Factor
		if factor <= 0 {
			factor = 1.4
		}
		return fontSize.ToMM() * factor
	}
}
