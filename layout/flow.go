package layout

import (
	"strings"

	"github.com/ByLCY/fragments/markup"
)

// 正文排版：把样式片段按词流入固定矩形区域。
// 超出区域底部时追加一个省略号片段并立即停止，不做分页续排。

// Phase 是排版状态机的当前状态。Overflowed 为终态。
type Phase int

const (
	LineStart Phase = iota
	MidLine
	Overflowed
)

func (p Phase) String() string {
	switch p {
	case LineStart:
		return "line-start"
	case MidLine:
		return "mid-line"
	case Overflowed:
		return "overflowed"
	default:
		return "unknown"
	}
}

// MarshalText 让调试 JSON 输出可读的状态名。
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// State 是一次 Flow 调用独占的游标状态，随结果一起返回。
type State struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Line  int     `json:"line"` // 当前行序号，从 0 开始
	Phase Phase   `json:"phase"`
}

// Measurer 测量一段文本在给定样式下的宽度（mm）。实现必须是确定性的。
type Measurer interface {
	Measure(text string, style markup.Style) float64
}

// MeasureFunc 将普通函数适配为 Measurer。
type MeasureFunc func(text string, style markup.Style) float64

func (f MeasureFunc) Measure(text string, style markup.Style) float64 { return f(text, style) }

// DefaultUnderlineOffset 是下划线相对基线的下移距离（约 1pt）。
const DefaultUnderlineOffset = 1 * PtToMm

// 浮点累减造成的误差不应让最后一行被误判为溢出。
const overflowEpsilon = 1e-9

// FlowOptions 控制 Flow 的可选行为。
type FlowOptions struct {
	// UnderlineOffset 为 0 时使用 DefaultUnderlineOffset。
	UnderlineOffset float64
}

// Flow 将 doc 排入 area，首行基线位于区域顶部下方一个行高处。
// 返回按绘制顺序排列的片段以及排版结束时的状态。
func Flow(doc markup.Document, area ContentArea, measure Measurer, lineHeight float64, opts FlowOptions) ([]Fragment, State) {
	f := &flower{
		area:       area,
		measure:    measure,
		lineHeight: lineHeight,
		underline:  opts.UnderlineOffset,
		state: State{
			X:     area.X,
			Y:     area.Top() - lineHeight,
			Phase: LineStart,
		},
	}
	if f.underline == 0 {
		f.underline = DefaultUnderlineOffset
	}
	for i := 0; i < doc.Len(); i++ {
		if f.state.Phase == Overflowed {
			break
		}
		run := doc.At(i)
		if run.IsLineBreak() {
			f.newline()
			continue
		}
		f.placeRun(run)
	}
	return f.frags, f.state
}

type flower struct {
	area       ContentArea
	measure    Measurer
	lineHeight float64
	underline  float64
	state      State
	frags      []Fragment
}

// placeRun 按词放置一个片段。文本内嵌的换行符与 LineBreak 片段等价。
func (f *flower) placeRun(run markup.Run) {
	style := run.Style
	space := f.measure.Measure(" ", style)
	for i, segment := range strings.Split(run.Text, "\n") {
		if i > 0 {
			f.newline()
		}
		for _, word := range strings.Fields(segment) {
			if f.state.Phase == Overflowed {
				return
			}
			f.placeWord(word, style, space)
		}
		if f.state.Phase == Overflowed {
			return
		}
	}
}

func (f *flower) placeWord(word string, style markup.Style, space float64) {
	w := f.measure.Measure(word, style)
	// 行首的超宽单词照常放置，保证每个词都能推进。
	if f.state.Phase == MidLine && f.state.X+w > f.area.Right() {
		f.newline()
		if f.state.Phase == Overflowed {
			return
		}
	}
	frag := Fragment{
		Text:  word,
		X:     f.state.X,
		Y:     f.state.Y,
		Width: w,
		Style: style,
	}
	if style.Underline {
		frag.Underline = &Segment{X1: f.state.X, X2: f.state.X + w, Y: f.state.Y - f.underline}
	}
	f.frags = append(f.frags, frag)
	f.state.X += w + space
	f.state.Phase = MidLine
}

func (f *flower) newline() {
	f.state.X = f.area.X
	f.state.Y -= f.lineHeight
	f.state.Line++
	f.state.Phase = LineStart
	if f.state.Y < f.area.Y-overflowEpsilon {
		f.frags = append(f.frags, Fragment{
			Text:     markup.Ellipsis,
			X:        f.area.X,
			Y:        f.state.Y,
			Width:    f.measure.Measure(markup.Ellipsis, markup.Style{}),
			Ellipsis: true,
		})
		f.state.Phase = Overflowed
	}
}
