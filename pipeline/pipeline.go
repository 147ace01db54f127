// Package pipeline wires the stages together: fetch records, compose pages,
// render the document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ByLCY/fragments/layout"
	"github.com/ByLCY/fragments/record"
	"github.com/ByLCY/fragments/renderer"
)

// ErrNoRecords 表示数据源没有返回任何记录。
var ErrNoRecords = errors.New("pipeline: no records to render")

// Options 汇总一次运行的依赖。
type Options struct {
	Source   record.Source
	Template layout.PageTemplate
	Backend  renderer.Backend
	// MaxLength 覆盖模板中的正文长度上限，<=0 时使用模板值。
	MaxLength int
	// DebugPath 非空时写出布局 JSON。
	DebugPath string
	Logger    *log.Logger
}

// Result 是一次运行的产物。
type Result struct {
	PDF         []byte
	Layout      *layout.Result
	Pages       int
	RecordCount int
}

// Run 执行 fetch → build → render，错误会标明失败的阶段。
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("pipeline: 缺少数据源")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("pipeline: 缺少渲染后端")
	}

	logger.Printf("fetching records")
	records, err := opts.Source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	logger.Printf("fetched %d records", len(records))
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	res, err := layout.Build(records, opts.Template, layout.BuildOptions{
		Typesetter: opts.Backend,
		MaxLength:  opts.MaxLength,
	})
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}
	for i, page := range res.Pages {
		logger.Printf("page %d/%d: %s (%d fragments, %s)",
			i+1, len(res.Pages), records[i].Title, len(page.Content.Fragments), page.Content.State.Phase)
	}
	if opts.DebugPath != "" {
		if err := layout.WriteDebugJSON(res, opts.DebugPath); err != nil {
			return nil, fmt.Errorf("write layout debug: %w", err)
		}
		logger.Printf("layout written to %s", opts.DebugPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf, err := opts.Backend.Render(res)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	logger.Printf("rendered %d pages (%d bytes)", len(res.Pages), len(pdf))
	return &Result{
		PDF:         pdf,
		Layout:      res,
		Pages:       len(res.Pages),
		RecordCount: len(records),
	}, nil
}
