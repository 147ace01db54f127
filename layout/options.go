package layout

import (
	"errors"

	"github.com/ByLCY/fragments/markup"
)

// ErrNoTypesetter 表示 Build 缺少测量后端。
var ErrNoTypesetter = errors.New("layout: 缺少排版后端 Typesetter")

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	// MaxLength 覆盖模板中的正文长度上限，<=0 时使用模板值。
	MaxLength int
	Flow      FlowOptions
}

// TextStyle 描述测量时使用的字号（mm）与字形。
type TextStyle struct {
	FontSize float64
	Bold     bool
	Italic   bool
}

// Typesetter 负责根据字体度量测量文本宽度，由渲染器实现。
type Typesetter interface {
	TextWidth(text string, style TextStyle) float64
}

// typesetMeasurer 以固定字号把 Typesetter 适配为正文排版所需的 Measurer。
type typesetMeasurer struct {
	ts       Typesetter
	fontSize float64
}

func (m typesetMeasurer) Measure(text string, style markup.Style) float64 {
	return m.ts.TextWidth(text, TextStyle{
		FontSize: m.fontSize,
		Bold:     style.Bold,
		Italic:   style.Italic,
	})
}
