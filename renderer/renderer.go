package renderer

import "github.com/ByLCY/fragments/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时负责测量与输出：布局阶段用它测量文本，渲染阶段用同一套字体绘制，
// 保证换行位置与最终绘制一致。
type Backend interface {
	Renderer
	layout.Typesetter
}
