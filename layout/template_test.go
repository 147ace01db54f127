package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/ByLCY/fragments/dsl"
)

func compile(t *testing.T, src string) (PageTemplate, error) {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析模板失败: %v", err)
	}
	return CompileTemplate(doc)
}

func TestDefaultTemplateSourceMatchesDefault(t *testing.T) {
	got, err := compile(t, DefaultTemplateSource)
	if err != nil {
		t.Fatalf("CompileTemplate: %v", err)
	}
	want := DefaultPageTemplate()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("compiled default differs:\n got %s\nwant %s", spew.Sdump(got), spew.Sdump(want))
	}
}

func TestCompileTemplateOverrides(t *testing.T) {
	src := `template Custom v2 {
  meta { title: "T" author: "A" keywords: ["x", "y"] }
  fonts { regular: "r.ttf" bold-italic: "bi.ttf" }
  page A4 portrait margin 15mm 20mm {
    title bold color #336699 size 16pt
    content size 10pt line-height 1.5x max-length 300
    comments hidden
  }
}`
	tpl, err := compile(t, src)
	if err != nil {
		t.Fatalf("CompileTemplate: %v", err)
	}
	if tpl.Width != 210 || tpl.Height != 297 {
		t.Fatalf("unexpected size %gx%g", tpl.Width, tpl.Height)
	}
	if tpl.Margin != (Margin{Top: 15, Right: 20, Bottom: 15, Left: 20}) {
		t.Fatalf("unexpected margin %+v", tpl.Margin)
	}
	if !tpl.Title.Bold || tpl.Title.Color != (Color{R: 0x33, G: 0x66, B: 0x99}) || tpl.Title.FontSize != Pt(16) {
		t.Fatalf("title overrides not applied: %+v", tpl.Title)
	}
	if tpl.Title.Top != 15 {
		t.Fatalf("title top should follow the margin, got %g", tpl.Title.Top)
	}
	lh := tpl.Content.LineHeight.ResolveMM(tpl.Content.FontSize)
	if want := 10 * PtToMm * 1.5; lh < want-1e-9 || lh > want+1e-9 {
		t.Fatalf("line height = %g, want %g", lh, want)
	}
	if tpl.Content.MaxLength != 300 {
		t.Fatalf("max length = %d", tpl.Content.MaxLength)
	}
	if !tpl.Comments.Hidden {
		t.Fatalf("comments should be hidden")
	}
	if tpl.Meta.Author != "A" || len(tpl.Meta.Keywords) != 2 || tpl.Meta.Creator != "fragments" {
		t.Fatalf("unexpected meta %+v", tpl.Meta)
	}
	if tpl.Fonts.Regular != "r.ttf" || tpl.Fonts.BoldItalic != "bi.ttf" {
		t.Fatalf("unexpected fonts %+v", tpl.Fonts)
	}
}

func TestCompileTemplateErrors(t *testing.T) {
	cases := map[string]string{
		"unknown size":    `template X v1 { page B7 { } }`,
		"unknown element": `template X v1 { page A5 { footer size 10pt } }`,
		"bad attribute":   `template X v1 { page A5 { title rotate 90 } }`,
		"bad color":       `template X v1 { page A5 { title color red } }`,
	}
	for name, src := range cases {
		if _, err := compile(t, src); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := CompileTemplate(&dsl.Template{Name: "empty"}); err == nil || !strings.Contains(err.Error(), "page") {
		t.Fatalf("missing page section should fail, got %v", err)
	}
}

func TestResolveMarginForms(t *testing.T) {
	cases := []struct {
		src  string
		want Margin
	}{
		{`margin 5mm`, Margin{5, 5, 5, 5}},
		{`margin 1mm 2mm 3mm`, Margin{1, 2, 3, 2}},
		{`margin 1mm 2mm 3mm 4mm`, Margin{1, 2, 3, 4}},
		{`landscape`, Margin{10, 10, 10, 10}},
	}
	for _, tc := range cases {
		tpl, err := compile(t, "template X v1 { page A5 "+tc.src+" { } }")
		if err != nil {
			t.Fatalf("%s: %v", tc.src, err)
		}
		if tpl.Margin != tc.want {
			t.Fatalf("%s: margin = %+v, want %+v", tc.src, tpl.Margin, tc.want)
		}
	}
}
