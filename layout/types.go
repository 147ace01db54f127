package layout

import "github.com/ByLCY/fragments/markup"

// 该文件定义布局结果，供渲染与调试 JSON 共用。
// 坐标单位为毫米，原点位于页面左下角（与 PDF 一致），y 向上增大；文本坐标为基线位置。

// Result 保存全部页面与文档元信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
	Fonts FontSet      `json:"fonts"`
}

// FontSet 记录四种字形对应的 TTF 路径，空值表示使用内置字体。
type FontSet struct {
	Regular    string `json:"regular,omitempty"`
	Bold       string `json:"bold,omitempty"`
	Italic     string `json:"italic,omitempty"`
	BoldItalic string `json:"boldItalic,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DefaultTextColor 是未指定颜色时的文本颜色。
var DefaultTextColor = Color{R: 0, G: 0, B: 0}

// Page 对应一条记录。Texts 是单行标签，Content 是带样式的正文块。
type Page struct {
	RecordID string       `json:"recordId,omitempty"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Margin   Margin       `json:"margin"`
	Texts    []TextBox    `json:"texts"`
	Content  ContentBlock `json:"content"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一个已经排好坐标的单行文本。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	FontSize float64 `json:"fontSize"` // mm
	Bold     bool    `json:"bold,omitempty"`
	Italic   bool    `json:"italic,omitempty"`
	Color    Color   `json:"color"`
}

// ContentArea 是正文可用的矩形区域，Y 为底边。
type ContentArea struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Top 返回区域上边缘的 y 坐标。
func (a ContentArea) Top() float64 { return a.Y + a.Height }

// Right 返回区域右边缘的 x 坐标。
func (a ContentArea) Right() float64 { return a.X + a.Width }

// ContentBlock 保存正文排版结果。Fragments 的顺序即绘制顺序。
type ContentBlock struct {
	Area       ContentArea `json:"area"`
	FontSize   float64     `json:"fontSize"` // mm
	LineHeight float64     `json:"lineHeight"`
	Color      Color       `json:"color"`
	Fragments  []Fragment  `json:"fragments"`
	State      State       `json:"state"`
}

// Fragment 是一次连续绘制的文本片段。Style.Color 为空时由渲染器使用默认颜色。
type Fragment struct {
	Text      string       `json:"text"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Width     float64      `json:"width"`
	Style     markup.Style `json:"style"`
	Underline *Segment     `json:"underline,omitempty"`
	Ellipsis  bool         `json:"ellipsis,omitempty"`
}

// Segment 是一条水平线段（下划线）。
type Segment struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
	Y  float64 `json:"y"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
