package layout

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// WriteDebugJSON 将布局结果（含每页正文片段与排版终态）写入 path，便于排查换行与溢出。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeDebugJSON 以缩进 JSON 输出布局结果。
func EncodeDebugJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
