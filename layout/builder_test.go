package layout

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/fragments/markup"
	"github.com/ByLCY/fragments/record"
)

// stubTypesetter 是测试用的最小实现：每个字符宽度等于字号的一半，粗体再加 10%。
// 避免引入 renderer 造成循环依赖。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(text string, style TextStyle) float64 {
	w := float64(utf8.RuneCountInString(text)) * style.FontSize / 2
	if style.Bold {
		w *= 1.1
	}
	return w
}

func sampleRecord() record.Record {
	return record.Record{
		ID:         "rec1",
		Title:      "Заголовок",
		Sequence:   "7",
		Attributes: []string{"Tag1", "Tag2", "Tag3"},
		Content:    "Обычный **жирный** текст",
		Comments:   2,
	}
}

func findText(page Page, content string) (TextBox, bool) {
	for _, tb := range page.Texts {
		if tb.Content == content {
			return tb, true
		}
	}
	return TextBox{}, false
}

func TestBuildRequiresTypesetter(t *testing.T) {
	_, err := Build([]record.Record{sampleRecord()}, DefaultPageTemplate(), BuildOptions{})
	if !errors.Is(err, ErrNoTypesetter) {
		t.Fatalf("expected ErrNoTypesetter, got %v", err)
	}
}

func TestBuildOnePagePerRecord(t *testing.T) {
	recs := []record.Record{sampleRecord(), {ID: "rec2", Title: "B", Sequence: "8"}}
	res, err := Build(recs, DefaultPageTemplate(), BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(res.Pages))
	}
	if res.Pages[1].RecordID != "rec2" || res.Meta.Title != "Airtable Records" {
		t.Fatalf("unexpected result: %+v / %+v", res.Pages[1].RecordID, res.Meta)
	}
}

func TestBuildPagePlacement(t *testing.T) {
	tpl := DefaultPageTemplate()
	page := BuildPage(sampleRecord(), tpl, BuildOptions{Typesetter: stubTypesetter{}})

	if page.Width != 210 || page.Height != 148 {
		t.Fatalf("unexpected page size %gx%g", page.Width, page.Height)
	}

	title, ok := findText(page, "Заголовок")
	if !ok {
		t.Fatalf("title missing: %+v", page.Texts)
	}
	if title.X != 10 || title.Y != 138 {
		t.Fatalf("title at (%g,%g), want (10,138)", title.X, title.Y)
	}

	seq, ok := findText(page, "7")
	if !ok {
		t.Fatalf("sequence missing")
	}
	if math.Abs(seq.X+seq.Width-200) > 1e-9 || seq.Y != 138 {
		t.Fatalf("sequence should be right-aligned at 200, got x=%g w=%g y=%g", seq.X, seq.Width, seq.Y)
	}

	for i, name := range []string{"Tag1", "Tag2", "Tag3"} {
		tb, ok := findText(page, name)
		if !ok {
			t.Fatalf("attribute %s missing", name)
		}
		wantY := 148 - 20 - float64(i)*5
		if tb.X != 170 || math.Abs(tb.Y-wantY) > 1e-9 {
			t.Fatalf("attribute %s at (%g,%g), want (170,%g)", name, tb.X, tb.Y, wantY)
		}
	}

	comments, ok := findText(page, "Comments: 2")
	if !ok {
		t.Fatalf("comment label missing: %+v", page.Texts)
	}
	if comments.Y != 10 || math.Abs(comments.X+comments.Width-200) > 1e-9 {
		t.Fatalf("comment label misplaced: %+v", comments)
	}
}

func TestBuildPageContentBlock(t *testing.T) {
	page := BuildPage(sampleRecord(), DefaultPageTemplate(), BuildOptions{Typesetter: stubTypesetter{}})
	block := page.Content
	if block.LineHeight != 5 {
		t.Fatalf("line height = %g, want 5", block.LineHeight)
	}
	if len(block.Fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(block.Fragments))
	}
	first := block.Fragments[0]
	if first.X != 10 || math.Abs(first.Y-118) > 1e-9 {
		t.Fatalf("first baseline at (%g,%g), want (10,118)", first.X, first.Y)
	}
	if !block.Fragments[1].Style.Bold {
		t.Fatalf("second fragment should be bold")
	}
	if block.Area.Y != 10 || block.Area.Width != 190 {
		t.Fatalf("unexpected content area %+v", block.Area)
	}
}

func TestBuildPageNoCommentsLabel(t *testing.T) {
	rec := sampleRecord()
	rec.Comments = 0
	page := BuildPage(rec, DefaultPageTemplate(), BuildOptions{Typesetter: stubTypesetter{}})
	for _, tb := range page.Texts {
		if strings.HasPrefix(tb.Content, "Comments") {
			t.Fatalf("comment label should be omitted when there are no comments")
		}
	}
}

func TestBuildPageMaxLengthOverride(t *testing.T) {
	rec := sampleRecord()
	rec.Content = "abcdefghij klmnop"
	page := BuildPage(rec, DefaultPageTemplate(), BuildOptions{Typesetter: stubTypesetter{}, MaxLength: 5})
	frags := page.Content.Fragments
	if len(frags) != 1 || frags[0].Text != "abcde"+markup.Ellipsis {
		t.Fatalf("unexpected fragments %+v", frags)
	}
}

func TestBuildPageContentOverflow(t *testing.T) {
	tpl := DefaultPageTemplate()
	tpl.Content.MaxLength = 0
	rec := sampleRecord()
	rec.Content = strings.Repeat("слово ", 2000)
	page := BuildPage(rec, tpl, BuildOptions{Typesetter: stubTypesetter{}})
	block := page.Content
	if block.State.Phase != Overflowed {
		t.Fatalf("long content should overflow, state %+v", block.State)
	}
	last := block.Fragments[len(block.Fragments)-1]
	if !last.Ellipsis {
		t.Fatalf("last fragment should be the ellipsis")
	}
	for _, f := range block.Fragments[:len(block.Fragments)-1] {
		if f.Y < block.Area.Y-1e-9 {
			t.Fatalf("content fragment below area: %+v", f)
		}
	}
}

func TestBuildHiddenElement(t *testing.T) {
	tpl := DefaultPageTemplate()
	tpl.Attributes.Hidden = true
	page := BuildPage(sampleRecord(), tpl, BuildOptions{Typesetter: stubTypesetter{}})
	if _, ok := findText(page, "Tag1"); ok {
		t.Fatalf("hidden attributes should not be rendered")
	}
}

func TestBuildAttributeFormatIndex(t *testing.T) {
	tpl := DefaultPageTemplate()
	tpl.Attributes.Format = "${index}. ${value}"
	page := BuildPage(sampleRecord(), tpl, BuildOptions{Typesetter: stubTypesetter{}})
	if _, ok := findText(page, "2. Tag2"); !ok {
		t.Fatalf("formatted attribute missing: %+v", page.Texts)
	}
}
