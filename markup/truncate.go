package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ellipsis 是截断后追加的标记。
const Ellipsis = "..."

// Truncate 将 text 限制在 maxLength 个字符（rune）以内：超出时取前 maxLength 个字符、
// 去掉末尾空白并追加 "..."，因此结果最多 maxLength+3 个字符。
// 截断不感知标记语法，可能留下未闭合的分隔符，Parse 会把它们当作普通文本。
func Truncate(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	cut := 0
	for i := range text {
		if maxLength == 0 {
			cut = i
			break
		}
		maxLength--
	}
	return strings.TrimRightFunc(text[:cut], unicode.IsSpace) + Ellipsis
}
