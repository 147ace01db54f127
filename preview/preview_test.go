package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"

	"github.com/ByLCY/fragments/markup"
	"github.com/ByLCY/fragments/record"
)

func TestWritePlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	recs := []record.Record{{Title: "Title", Sequence: "3", Attributes: []string{"a", "b"}, Content: "**bold** text", Comments: 2}}
	if err := Write(&buf, recs, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("non-terminal output should not contain escapes: %q", out)
	}
	for _, want := range []string{"Title  #3", "a · b", "bold text", "Comments: 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteANSIStyles(t *testing.T) {
	var buf bytes.Buffer
	recs := []record.Record{{Title: "T", Content: "**b** _i_ __u__ <color:#102030>c</color> <color:red>r</color>"}}
	if err := Write(&buf, recs, Options{Mode: Always, Width: 120}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"\x1b[1mb\x1b[0m", "\x1b[3mi\x1b[0m", "\x1b[4mu\x1b[0m", "\x1b[38;2;16;32;48mc\x1b[0m", "\x1b[31mr\x1b[0m"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%q", want, out)
		}
	}
}

func TestWriteWrapsToWidth(t *testing.T) {
	var buf bytes.Buffer
	recs := []record.Record{{Title: strings.Repeat("Очень длинный заголовок ", 4), Content: strings.Repeat("слово ", 40)}}
	if err := Write(&buf, recs, Options{Width: 24, Mode: Always}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if ansi.PrintableRuneWidth(line) > 24 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}

func TestWriteAppliesMaxLength(t *testing.T) {
	var buf bytes.Buffer
	recs := []record.Record{{Title: "T", Content: "abcdefghij"}}
	if err := Write(&buf, recs, Options{MaxLength: 4}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "abcd"+markup.Ellipsis) {
		t.Fatalf("content should be truncated:\n%s", buf.String())
	}
}

func TestColorParamUnknown(t *testing.T) {
	if got := colorParam("notacolor"); got != "" {
		t.Fatalf("unknown color should map to nothing, got %q", got)
	}
	if got := colorParam("teal"); got != "38;2;0;128;128" {
		t.Fatalf("teal = %q", got)
	}
}
