package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/fragments/dsl"
)

// ElementSpec 描述页面上一个元素的样式与位置。
// Top 统一表示元素（首行）基线到页面顶部的距离（mm）。
type ElementSpec struct {
	FontSize   Length         `json:"fontSize"`
	Color      Color          `json:"color"`
	Bold       bool           `json:"bold,omitempty"`
	Italic     bool           `json:"italic,omitempty"`
	Format     string         `json:"format,omitempty"`
	Top        float64        `json:"top"`
	Width      float64        `json:"width,omitempty"`
	Step       float64        `json:"step,omitempty"`
	LineHeight LineHeightSpec `json:"lineHeight"`
	MaxLength  int            `json:"maxLength,omitempty"`
	Hidden     bool           `json:"hidden,omitempty"`
}

// PageTemplate 是编译后的页面模板，每条记录按它生成一页。
type PageTemplate struct {
	Name       string       `json:"name"`
	Size       string       `json:"size"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Margin     Margin       `json:"margin"`
	Title      ElementSpec  `json:"title"`
	Sequence   ElementSpec  `json:"sequence"`
	Attributes ElementSpec  `json:"attributes"`
	Content    ElementSpec  `json:"content"`
	Comments   ElementSpec  `json:"comments"`
	Meta       DocumentMeta `json:"meta"`
	Fonts      FontSet      `json:"fonts"`
}

// DefaultTemplateSource 是内置模板的 DSL 写法，与 DefaultPageTemplate 等价。
const DefaultTemplateSource = `template Fragments v1 {
  meta {
    title: "Airtable Records"
    creator: "fragments"
  }
  page A5 landscape margin 10mm {
    title      size 14pt top 10mm format "${title}"
    sequence   size 14pt top 10mm format "${sequence}"
    attributes size 10pt top 20mm width 30mm step 5mm format "${value}"
    content    size 12pt top 30mm line-height 5mm max-length 2000
    comments   size 10pt format "Comments: ${count}"
  }
}
`

// DefaultPageTemplate 返回内置版式：A5 横向，边距 10mm，正文 12pt、行高 5mm、最多 2000 字符。
func DefaultPageTemplate() PageTemplate {
	margin := Margin{Top: 10, Right: 10, Bottom: 10, Left: 10}
	tpl := PageTemplate{
		Name:   "Fragments",
		Size:   "A5",
		Width:  210,
		Height: 148,
		Margin: margin,
		Meta: DocumentMeta{
			Title:   "Airtable Records",
			Creator: "fragments",
		},
	}
	applyElementDefaults(&tpl)
	return tpl
}

// applyElementDefaults 按边距推导各元素的默认值：标题与序号在上边距处，
// 属性列再低一个边距，正文首行基线在三倍边距处。
func applyElementDefaults(tpl *PageTemplate) {
	m := tpl.Margin.Top
	tpl.Title = ElementSpec{FontSize: Pt(14), Color: DefaultTextColor, Top: m, Format: "${title}"}
	tpl.Sequence = ElementSpec{FontSize: Pt(14), Color: DefaultTextColor, Top: m, Format: "${sequence}"}
	tpl.Attributes = ElementSpec{FontSize: Pt(10), Color: DefaultTextColor, Top: 2 * m, Width: 30, Step: 5, Format: "${value}"}
	tpl.Content = ElementSpec{
		FontSize:   Pt(12),
		Color:      DefaultTextColor,
		Top:        3 * m,
		LineHeight: LineHeightSpec{Kind: LineHeightAbsolute, Len: Mm(5)},
		MaxLength:  2000,
	}
	tpl.Comments = ElementSpec{FontSize: Pt(10), Color: DefaultTextColor, Format: "Comments: ${count}"}
}

// CompileTemplate 将模板 AST 转换为 PageTemplate。
func CompileTemplate(doc *dsl.Template) (PageTemplate, error) {
	if doc == nil {
		return PageTemplate{}, fmt.Errorf("模板为空")
	}
	section := doc.Page()
	if section == nil {
		return PageTemplate{}, fmt.Errorf("模板中缺少 page 段落")
	}
	width, height, err := resolvePageSize(section)
	if err != nil {
		return PageTemplate{}, err
	}
	tpl := PageTemplate{
		Name:   doc.Name,
		Size:   strings.ToUpper(section.Size),
		Width:  width,
		Height: height,
		Margin: resolveMargin(section.Params),
		Meta:   collectMeta(doc),
		Fonts:  collectFonts(doc),
	}
	applyElementDefaults(&tpl)

	for _, el := range section.Elements {
		spec, err := tpl.element(el.Name)
		if err != nil {
			return PageTemplate{}, fmt.Errorf("%s: %w", el.Pos, err)
		}
		if err := applyElementAttrs(spec, el.Attrs()); err != nil {
			return PageTemplate{}, fmt.Errorf("%s: %s: %w", el.Pos, el.Name, err)
		}
	}
	return tpl, nil
}

func (tpl *PageTemplate) element(name string) (*ElementSpec, error) {
	switch name {
	case "title":
		return &tpl.Title, nil
	case "sequence":
		return &tpl.Sequence, nil
	case "attributes":
		return &tpl.Attributes, nil
	case "content":
		return &tpl.Content, nil
	case "comments":
		return &tpl.Comments, nil
	default:
		return nil, fmt.Errorf("未知的页面元素 %q", name)
	}
}

func applyElementAttrs(spec *ElementSpec, attrs map[string]string) error {
	for key, val := range attrs {
		switch key {
		case "size":
			l, ok := ParseRawLengthStr(val)
			if !ok || l.Value <= 0 {
				return fmt.Errorf("无效的字号 %q", val)
			}
			if l.Unit == UnitNone {
				l.Unit = UnitPT
			}
			spec.FontSize = l
		case "color":
			c, err := parseColor(val)
			if err != nil {
				return err
			}
			spec.Color = c
		case "bold":
			spec.Bold = parseBool(val)
		case "italic":
			spec.Italic = parseBool(val)
		case "hidden":
			spec.Hidden = parseBool(val)
		case "format", "label":
			spec.Format = val
		case "top":
			v, err := parseLength(val)
			if err != nil {
				return err
			}
			spec.Top = v
		case "width":
			v, err := parseLength(val)
			if err != nil {
				return err
			}
			spec.Width = v
		case "step":
			v, err := parseLength(val)
			if err != nil {
				return err
			}
			spec.Step = v
		case "line-height":
			lh, ok := ParseLineHeight(val)
			if !ok {
				return fmt.Errorf("无效的行高 %q", val)
			}
			spec.LineHeight = lh
		case "max-length":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("无效的长度上限 %q", val)
			}
			spec.MaxLength = n
		default:
			return fmt.Errorf("不支持的属性 %q", key)
		}
	}
	return nil
}

func resolvePageSize(section *dsl.PageSection) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(section.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", section.Size)
	}
	width, height := base[0], base[1]
	for _, token := range section.Params {
		switch token.Value {
		case "landscape":
			if width < height {
				width, height = height, width
			}
		case "portrait":
			if width > height {
				width, height = height, width
			}
		}
	}
	return width, height, nil
}

// 纵向尺寸（mm）。
var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"A6":     {105, 148},
	"LETTER": {215.9, 279.4},
}

// resolveMargin 读取 `margin v1 [v2 [v3 [v4]]]`，语义同 CSS，默认四边 10mm。
func resolveMargin(params []*dsl.Lexeme) Margin {
	margin := Margin{Top: 10, Right: 10, Bottom: 10, Left: 10}
	for i := 0; i < len(params); i++ {
		if params[i].Value != "margin" {
			continue
		}
		var vals []float64
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			v, err := parseLength(params[j].Value)
			if err != nil {
				break
			}
			vals = append(vals, v)
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
		case 4:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
		i += len(vals)
	}
	return margin
}

func collectMeta(doc *dsl.Template) DocumentMeta {
	meta := DocumentMeta{Creator: "fragments"}
	for _, section := range doc.Sections {
		if section.Meta == nil {
			continue
		}
		for _, entry := range section.Meta.Entries {
			switch strings.ToLower(entry.Key) {
			case "title":
				meta.Title = entry.Value.Text()
			case "author":
				meta.Author = entry.Value.Text()
			case "subject":
				meta.Subject = entry.Value.Text()
			case "creator":
				meta.Creator = entry.Value.Text()
			case "keywords":
				meta.Keywords = entry.Value.Strings()
			}
		}
	}
	return meta
}

func collectFonts(doc *dsl.Template) FontSet {
	var fonts FontSet
	for _, section := range doc.Sections {
		if section.Fonts == nil {
			continue
		}
		for _, entry := range section.Fonts.Entries {
			switch strings.ToLower(entry.Key) {
			case "regular":
				fonts.Regular = entry.Value.Text()
			case "bold":
				fonts.Bold = entry.Value.Text()
			case "italic":
				fonts.Italic = entry.Value.Text()
			case "bold-italic", "bolditalic":
				fonts.BoldItalic = entry.Value.Text()
			}
		}
	}
	return fonts
}

// parseLength 将带单位的长度转换为 mm，无单位按 mm 处理。
func parseLength(value string) (float64, error) {
	l, ok := ParseRawLengthStr(value)
	if !ok {
		return 0, fmt.Errorf("无效的长度 %q", value)
	}
	return l.ToMM(), nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}
