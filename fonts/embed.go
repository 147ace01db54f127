package fonts

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Style 对应四种内置字形。
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// StyleOf 根据粗体/斜体标记选择字形。
func StyleOf(bold, italic bool) Style {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// Load 返回内置 Go 字体（覆盖拉丁与西里尔字母）的 TTF 数据。
func Load(style Style) []byte {
	switch style {
	case Bold:
		return gobold.TTF
	case Italic:
		return goitalic.TTF
	case BoldItalic:
		return gobolditalic.TTF
	default:
		return goregular.TTF
	}
}

// LoadFile 读取自定义字体文件，path 可带 "file:" 前缀。
func LoadFile(path string) ([]byte, error) {
	path = strings.TrimPrefix(path, "file:")
	if path == "" {
		return nil, fmt.Errorf("字体路径为空")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}
