package markup

import "strings"

// 该文件定义解析结果：样式片段（Run）与只读文档（Document）。

// RunKind 区分纯文本、带样式文本与显式换行三种片段。
type RunKind int

const (
	RunPlain RunKind = iota
	RunStyled
	RunLineBreak
)

func (k RunKind) String() string {
	switch k {
	case RunPlain:
		return "plain"
	case RunStyled:
		return "styled"
	case RunLineBreak:
		return "linebreak"
	default:
		return "unknown"
	}
}

// Style 描述一个片段上的独立样式标记。Color 为空表示使用渲染器默认颜色。
type Style struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Color     string `json:"color,omitempty"`
}

// IsZero 报告样式是否未设置任何标记。
func (s Style) IsZero() bool {
	return s == Style{}
}

// Run 是解析后的最小单元。LineBreak 片段不携带文本与样式。
type Run struct {
	Kind  RunKind `json:"kind"`
	Text  string  `json:"text,omitempty"`
	Style Style   `json:"style"`
}

// Plain 构造纯文本片段。
func Plain(text string) Run { return Run{Kind: RunPlain, Text: text} }

// Styled 构造带样式片段。
func Styled(text string, style Style) Run { return Run{Kind: RunStyled, Text: text, Style: style} }

// LineBreak 构造显式换行片段。
func LineBreak() Run { return Run{Kind: RunLineBreak} }

// IsLineBreak reports whether r is the line break marker.
func (r Run) IsLineBreak() bool { return r.Kind == RunLineBreak }

// Document 是按原文顺序排列的片段序列，创建后不可修改。
type Document struct {
	runs []Run
}

// NewDocument 复制 runs 构造文档，调用方之后对切片的修改不会影响文档。
func NewDocument(runs []Run) Document {
	if len(runs) == 0 {
		return Document{}
	}
	cp := make([]Run, len(runs))
	copy(cp, runs)
	return Document{runs: cp}
}

// Runs 返回片段副本。
func (d Document) Runs() []Run {
	if len(d.runs) == 0 {
		return nil
	}
	out := make([]Run, len(d.runs))
	copy(out, d.runs)
	return out
}

// Len 返回片段数量。
func (d Document) Len() int { return len(d.runs) }

// At 返回第 i 个片段。
func (d Document) At(i int) Run { return d.runs[i] }

// Empty reports whether the document has no runs.
func (d Document) Empty() bool { return len(d.runs) == 0 }

// PlainText 按顺序拼接所有非换行片段的文本，即去掉标记符号后的原文。
func (d Document) PlainText() string {
	var b strings.Builder
	for _, r := range d.runs {
		if r.Kind == RunLineBreak {
			continue
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

// Text 与 PlainText 相同，但换行片段以 "\n" 计入。
func (d Document) Text() string {
	var b strings.Builder
	for _, r := range d.runs {
		if r.Kind == RunLineBreak {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(r.Text)
	}
	return b.String()
}
