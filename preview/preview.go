// Package preview prints records to a terminal with the same inline styles
// the PDF uses, for checking markup without opening the document.
package preview

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/image/colornames"
	"golang.org/x/term"

	"github.com/ByLCY/fragments/markup"
	"github.com/ByLCY/fragments/record"
)

const defaultWidth = 80

// Mode controls ANSI escape output.
type Mode int

const (
	// Auto enables escapes only when the writer is a terminal.
	Auto Mode = iota
	Always
	Never
)

// Options configures Write.
type Options struct {
	// Width 为 0 时取终端宽度，非终端时为 80 列。
	Width int
	Mode  Mode
	// MaxLength 与 PDF 相同的正文长度上限，<=0 表示不截断。
	MaxLength int
}

// Write prints every record: a clipped title line, its attributes, the
// wrapped styled content and the comment count.
func Write(w io.Writer, records []record.Record, opts Options) error {
	width := resolveWidth(w, opts.Width)
	ansi := opts.Mode == Always || (opts.Mode == Auto && isTerminal(w))

	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteString(strings.Repeat("─", width))
			b.WriteString("\n")
		}
		header := rec.Title
		if rec.Sequence != "" {
			header = fmt.Sprintf("%s  #%s", rec.Title, rec.Sequence)
		}
		header = truncate.StringWithTail(header, uint(width), "…")
		if ansi {
			header = sgr("1") + header + sgr("0")
		}
		b.WriteString(header)
		b.WriteString("\n")
		if len(rec.Attributes) > 0 {
			b.WriteString(truncate.StringWithTail(strings.Join(rec.Attributes, " · "), uint(width), "…"))
			b.WriteString("\n")
		}
		b.WriteString("\n")

		content := rec.Content
		if opts.MaxLength > 0 {
			content = markup.Truncate(content, opts.MaxLength)
		}
		body := styledText(markup.Parse(content), ansi)
		b.WriteString(wordwrap.String(body, width))
		b.WriteString("\n")
		if rec.Comments > 0 {
			fmt.Fprintf(&b, "\nComments: %d\n", rec.Comments)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// styledText 把片段序列转换为带 SGR 转义的文本；ansi 为 false 时只输出文字。
func styledText(doc markup.Document, ansi bool) string {
	var b strings.Builder
	for _, run := range doc.Runs() {
		if run.IsLineBreak() {
			b.WriteString("\n")
			continue
		}
		params := sgrParams(run.Style)
		if !ansi || len(params) == 0 {
			b.WriteString(run.Text)
			continue
		}
		b.WriteString(sgr(strings.Join(params, ";")))
		b.WriteString(run.Text)
		b.WriteString(sgr("0"))
	}
	return b.String()
}

func sgrParams(s markup.Style) []string {
	var params []string
	if s.Bold {
		params = append(params, "1")
	}
	if s.Italic {
		params = append(params, "3")
	}
	if s.Underline {
		params = append(params, "4")
	}
	if c := colorParam(s.Color); c != "" {
		params = append(params, c)
	}
	return params
}

var basicColors = map[string]string{
	"black":   "30",
	"red":     "31",
	"green":   "32",
	"yellow":  "33",
	"blue":    "34",
	"magenta": "35",
	"cyan":    "36",
	"white":   "37",
}

// colorParam 将标记中的颜色映射为 SGR 参数：基本色名用 16 色，其余用 24 位真彩色。
func colorParam(value string) string {
	if value == "" {
		return ""
	}
	name := strings.ToLower(value)
	if code, ok := basicColors[name]; ok {
		return code
	}
	if strings.HasPrefix(value, "#") && len(value) == 7 {
		v, err := strconv.ParseUint(value[1:], 16, 32)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("38;2;%d;%d;%d", v>>16&0xff, v>>8&0xff, v&0xff)
	}
	if c, ok := colornames.Map[name]; ok {
		return fmt.Sprintf("38;2;%d;%d;%d", c.R, c.G, c.B)
	}
	return ""
}

func sgr(params string) string { return "\x1b[" + params + "m" }

func resolveWidth(w io.Writer, width int) int {
	if width > 0 {
		return width
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultWidth
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
