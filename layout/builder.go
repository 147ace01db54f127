package layout

import (
	"fmt"

	"github.com/ByLCY/fragments/binding"
	"github.com/ByLCY/fragments/markup"
	"github.com/ByLCY/fragments/record"
)

// Build 为每条记录按模板生成一页：左上标题、右上序号、序号下方的属性列、
// 正文块，以及有评论时右下角的评论标签。
func Build(records []record.Record, tpl PageTemplate, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, ErrNoTypesetter
	}
	if tpl.Width <= 0 || tpl.Height <= 0 {
		return nil, fmt.Errorf("无效的页面尺寸 %gx%g", tpl.Width, tpl.Height)
	}
	pages := make([]Page, 0, len(records))
	for _, rec := range records {
		pages = append(pages, BuildPage(rec, tpl, opts))
	}
	return &Result{
		Pages: pages,
		Meta:  tpl.Meta,
		Fonts: tpl.Fonts,
	}, nil
}

// BuildPage 排版单条记录。opts.Typesetter 必须非空。
func BuildPage(rec record.Record, tpl PageTemplate, opts BuildOptions) Page {
	b := pageBuilder{
		tpl:  tpl,
		ts:   opts.Typesetter,
		data: rec.Data(),
		page: Page{
			RecordID: rec.ID,
			Width:    tpl.Width,
			Height:   tpl.Height,
			Margin:   tpl.Margin,
		},
	}
	m := tpl.Margin

	if spec := tpl.Title; !spec.Hidden {
		b.addText(spec, b.format(spec, b.data), m.Left, tpl.Height-spec.Top, alignLeft)
	}
	if spec := tpl.Sequence; !spec.Hidden {
		b.addText(spec, b.format(spec, b.data), tpl.Width-m.Right, tpl.Height-spec.Top, alignRight)
	}
	if spec := tpl.Attributes; !spec.Hidden {
		x := tpl.Width - m.Right - spec.Width
		for i, attr := range rec.Attributes {
			data := mergeData(b.data, map[string]any{"value": attr, "index": i + 1})
			y := tpl.Height - spec.Top - float64(i)*spec.Step
			b.addText(spec, b.format(spec, data), x, y, alignLeft)
		}
	}
	if spec := tpl.Content; !spec.Hidden {
		b.page.Content = b.content(spec, rec.Content, opts)
	}
	if spec := tpl.Comments; !spec.Hidden && rec.Comments > 0 {
		b.addText(spec, b.format(spec, b.data), tpl.Width-m.Right, m.Bottom, alignRight)
	}
	return b.page
}

type align int

const (
	alignLeft align = iota
	alignRight
)

type pageBuilder struct {
	tpl  PageTemplate
	ts   Typesetter
	data map[string]any
	page Page
}

func (b *pageBuilder) format(spec ElementSpec, data map[string]any) string {
	if spec.Format == "" {
		return ""
	}
	return binding.Interpolate(spec.Format, data)
}

// addText 追加单行文本；右对齐时 x 为右边缘。空文本不输出。
func (b *pageBuilder) addText(spec ElementSpec, text string, x, y float64, a align) {
	if text == "" {
		return
	}
	style := TextStyle{FontSize: spec.FontSize.ToMM(), Bold: spec.Bold, Italic: spec.Italic}
	width := b.ts.TextWidth(text, style)
	if a == alignRight {
		x -= width
	}
	b.page.Texts = append(b.page.Texts, TextBox{
		Content:  text,
		X:        x,
		Y:        y,
		Width:    width,
		FontSize: style.FontSize,
		Bold:     spec.Bold,
		Italic:   spec.Italic,
		Color:    spec.Color,
	})
}

// content 按 Truncate → Parse → Flow 排版正文。首行基线位于页面顶部下方 spec.Top 处。
func (b *pageBuilder) content(spec ElementSpec, text string, opts BuildOptions) ContentBlock {
	m := b.tpl.Margin
	fontSize := spec.FontSize.ToMM()
	lineHeight := spec.LineHeight.ResolveMM(spec.FontSize)

	maxLength := spec.MaxLength
	if opts.MaxLength > 0 {
		maxLength = opts.MaxLength
	}
	if maxLength > 0 {
		text = markup.Truncate(text, maxLength)
	}
	doc := markup.Parse(text)

	area := ContentArea{
		X:      m.Left,
		Y:      m.Bottom,
		Width:  b.tpl.Width - m.Left - m.Right,
		Height: b.tpl.Height - spec.Top + lineHeight - m.Bottom,
	}
	if area.Width < 0 {
		area.Width = 0
	}
	if area.Height < 0 {
		area.Height = 0
	}
	measure := typesetMeasurer{ts: b.ts, fontSize: fontSize}
	frags, state := Flow(doc, area, measure, lineHeight, opts.Flow)
	return ContentBlock{
		Area:       area,
		FontSize:   fontSize,
		LineHeight: lineHeight,
		Color:      spec.Color,
		Fragments:  frags,
		State:      state,
	}
}

func mergeData(base map[string]any, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
