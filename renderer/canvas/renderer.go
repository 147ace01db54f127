package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"golang.org/x/image/colornames"

	"github.com/ByLCY/fragments/fonts"
	"github.com/ByLCY/fragments/layout"
	"github.com/ByLCY/fragments/renderer"
)

// 下划线线宽约 0.5pt。
const underlineWidth = 0.5 * layout.PtToMm

// Renderer draws layout results via github.com/tdewolff/canvas and measures
// text with the same font family, so layout and output agree on widths.
type Renderer struct {
	family *canvas.FontFamily

	faceMu sync.Mutex
	faces  map[faceKey]*canvas.FontFace
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Backend  = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type faceKey struct {
	style canvas.FontStyle
	size  float64
	color color.RGBA
}

// Options configures the canvas renderer.
type Options struct {
	// Fonts 为各字形指定 TTF 文件，留空的字形使用内置 Go 字体。
	Fonts layout.FontSet
}

// NewRenderer loads the font family up front so later measurement cannot fail.
func NewRenderer(opts Options) (*Renderer, error) {
	family := canvas.NewFontFamily("fragments")
	for _, slot := range []struct {
		path  string
		style fonts.Style
		cs    canvas.FontStyle
	}{
		{opts.Fonts.Regular, fonts.Regular, canvas.FontRegular},
		{opts.Fonts.Bold, fonts.Bold, canvas.FontBold},
		{opts.Fonts.Italic, fonts.Italic, canvas.FontItalic},
		{opts.Fonts.BoldItalic, fonts.BoldItalic, canvas.FontBold | canvas.FontItalic},
	} {
		data := fonts.Load(slot.style)
		if slot.path != "" {
			custom, err := fonts.LoadFile(slot.path)
			if err != nil {
				return nil, err
			}
			data = custom
		}
		if err := family.LoadFont(data, 0, slot.cs); err != nil {
			return nil, fmt.Errorf("加载%s字体失败: %w", slot.style, err)
		}
	}
	return &Renderer{
		family: family,
		faces:  map[faceKey]*canvas.FontFace{},
	}, nil
}

// TextWidth 实现 layout.Typesetter。字号与返回值均为毫米。
func (r *Renderer) TextWidth(text string, style layout.TextStyle) float64 {
	if text == "" || style.FontSize <= 0 {
		return 0
	}
	face := r.face(fontStyle(style.Bold, style.Italic), style.FontSize, color.RGBA{A: 0xff})
	return face.TextWidth(text)
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		// 布局坐标原点在左下角，y 向上，与 PDF 一致
		ctx.SetCoordSystem(canvas.CartesianI)
		r.drawPage(ctx, page)
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawPage 先画单行标签，再按片段顺序画正文；下划线紧跟在所属片段之后。
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) {
	for _, tb := range page.Texts {
		face := r.face(fontStyle(tb.Bold, tb.Italic), tb.FontSize, rgba(tb.Color))
		ctx.DrawText(tb.X, tb.Y, canvas.NewTextLine(face, tb.Content, canvas.Left))
	}

	block := page.Content
	fallback := rgba(block.Color)
	for _, frag := range block.Fragments {
		col := ResolveColor(frag.Style.Color, fallback)
		face := r.face(fontStyle(frag.Style.Bold, frag.Style.Italic), block.FontSize, col)
		ctx.DrawText(frag.X, frag.Y, canvas.NewTextLine(face, frag.Text, canvas.Left))
		if seg := frag.Underline; seg != nil {
			drawUnderline(ctx, *seg, col)
		}
	}
}

func drawUnderline(ctx *canvas.Context, seg layout.Segment, col color.RGBA) {
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(seg.X2-seg.X1, 0)
	ctx.SetFillColor(color.RGBA{})
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(underlineWidth)
	ctx.DrawPath(seg.X1, seg.Y, p)
}

// face 返回缓存的字体面。size 为毫米，canvas 需要 pt，在这里换算。
func (r *Renderer) face(style canvas.FontStyle, sizeMM float64, col color.RGBA) *canvas.FontFace {
	key := faceKey{style: style, size: sizeMM, color: col}
	r.faceMu.Lock()
	defer r.faceMu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f
	}
	f := r.family.Face(toPt(sizeMM), col, style, canvas.FontNormal)
	r.faces[key] = f
	return f
}

func fontStyle(bold, italic bool) canvas.FontStyle {
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	if italic {
		style |= canvas.FontItalic
	}
	return style
}

// ResolveColor 解析 #RRGGBB、#RGB 或 CSS 颜色名；无法识别时返回 fallback，从不报错。
func ResolveColor(value string, fallback color.RGBA) color.RGBA {
	v := strings.TrimSpace(value)
	if v == "" {
		return fallback
	}
	if strings.HasPrefix(v, "#") {
		if c, ok := parseHex(v[1:]); ok {
			return c
		}
		return fallback
	}
	if c, ok := colornames.Map[strings.ToLower(v)]; ok {
		return c
	}
	return fallback
}

func parseHex(hex string) (color.RGBA, bool) {
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func rgba(c layout.Color) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
