package markup

import "strings"

// 行内标记语法：
//
//	<color:#RRGGBB>文本</color> 或 <color:name>文本</color>
//	**粗体**
//	__下划线__
//	_斜体_
//	\n 显式换行
//
// 每个位置按固定优先级逐个尝试，且匹配必须恰好从当前位置开始。
// 下划线必须先于斜体尝试，否则 "__x__" 会被拆成斜体加多余的下划线。

const (
	colorOpenPrefix = "<color:"
	colorClose      = "</color>"
	boldDelim       = "**"
	underlineDelim  = "__"
	italicDelim     = "_"
)

// spanMatcher 尝试在 pos 处锚定匹配一个样式区间，返回片段与区间结束位置。
type spanMatcher func(text string, pos int) (Run, int, bool)

// spanMatchers 的顺序即优先级。
var spanMatchers = [...]spanMatcher{
	matchColor,
	matchBold,
	matchUnderline,
	matchItalic,
}

// Parse 将带标记的文本解析为片段序列。任何输入都不会报错：
// 未闭合的标记按普通文本原样保留。
func Parse(text string) Document {
	var runs []Run
	pos := 0
	for pos < len(text) {
		if run, end, ok := matchSpanAt(text, pos); ok {
			runs = append(runs, run)
			pos = end
			continue
		}
		if text[pos] == '\n' {
			runs = append(runs, LineBreak())
			pos++
			continue
		}
		end := nextSpanStart(text, pos)
		runs = append(runs, Plain(text[pos:end]))
		pos = end
	}
	return Document{runs: runs}
}

func matchSpanAt(text string, pos int) (Run, int, bool) {
	for _, m := range spanMatchers {
		if run, end, ok := m(text, pos); ok {
			return run, end, true
		}
	}
	return Run{}, 0, false
}

// nextSpanStart 返回 pos 之后第一个能锚定匹配样式区间的位置；没有则返回文本末尾。
// 结果至少比 pos 前进一个字符，保证解析总能推进。
func nextSpanStart(text string, pos int) int {
	for p := pos + 1; p < len(text); p++ {
		if !isSpanLead(text[p]) {
			continue
		}
		if _, _, ok := matchSpanAt(text, p); ok {
			return p
		}
	}
	return len(text)
}

// 分隔符都是 ASCII，不会出现在多字节 UTF-8 序列内部，按字节扫描即可。
func isSpanLead(b byte) bool {
	return b == '<' || b == '*' || b == '_'
}

func matchColor(text string, pos int) (Run, int, bool) {
	if !strings.HasPrefix(text[pos:], colorOpenPrefix) {
		return Run{}, 0, false
	}
	valueStart := pos + len(colorOpenPrefix)
	valueEnd := scanColorValue(text, valueStart)
	if valueEnd < 0 || valueEnd >= len(text) || text[valueEnd] != '>' {
		return Run{}, 0, false
	}
	inner, end, ok := closeSpan(text, valueEnd+1, colorClose)
	if !ok {
		return Run{}, 0, false
	}
	return Styled(inner, Style{Color: text[valueStart:valueEnd]}), end, true
}

// scanColorValue 识别 #RRGGBB 或由字母组成的颜色名，返回值结束位置，失败返回 -1。
func scanColorValue(text string, start int) int {
	if start >= len(text) {
		return -1
	}
	if text[start] == '#' {
		end := start + 1 + 6
		if end > len(text) {
			return -1
		}
		for i := start + 1; i < end; i++ {
			if !isHexDigit(text[i]) {
				return -1
			}
		}
		return end
	}
	i := start
	for i < len(text) && isASCIILetter(text[i]) {
		i++
	}
	if i == start {
		return -1
	}
	return i
}

func matchBold(text string, pos int) (Run, int, bool) {
	return matchDelimited(text, pos, boldDelim, Style{Bold: true})
}

func matchUnderline(text string, pos int) (Run, int, bool) {
	return matchDelimited(text, pos, underlineDelim, Style{Underline: true})
}

func matchItalic(text string, pos int) (Run, int, bool) {
	return matchDelimited(text, pos, italicDelim, Style{Italic: true})
}

func matchDelimited(text string, pos int, delim string, style Style) (Run, int, bool) {
	if !strings.HasPrefix(text[pos:], delim) {
		return Run{}, 0, false
	}
	inner, end, ok := closeSpan(text, pos+len(delim), delim)
	if !ok {
		return Run{}, 0, false
	}
	return Styled(inner, style), end, true
}

// closeSpan 从 innerStart 起寻找最近的 closing，内部文本至少一个字符且不能跨行。
func closeSpan(text string, innerStart int, closing string) (string, int, bool) {
	if innerStart >= len(text) {
		return "", 0, false
	}
	idx := strings.Index(text[innerStart+1:], closing)
	if idx < 0 {
		return "", 0, false
	}
	innerEnd := innerStart + 1 + idx
	inner := text[innerStart:innerEnd]
	if strings.IndexByte(inner, '\n') >= 0 {
		return "", 0, false
	}
	return inner, innerEnd + len(closing), true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
