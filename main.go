package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/ByLCY/fragments/config"
	"github.com/ByLCY/fragments/dsl"
	"github.com/ByLCY/fragments/layout"
	"github.com/ByLCY/fragments/pipeline"
	"github.com/ByLCY/fragments/preview"
	"github.com/ByLCY/fragments/record"
	"github.com/ByLCY/fragments/record/airtable"
	canvasrenderer "github.com/ByLCY/fragments/renderer/canvas"
)

type cliOptions struct {
	output       string
	input        string
	templatePath string
	envFile      string
	maxLength    int
	debugPath    string
	preview      bool
	fonts        layout.FontSet
}

func main() {
	var opts cliOptions
	flags := pflag.NewFlagSet("fragments", pflag.ExitOnError)
	flags.StringVarP(&opts.output, "out", "o", "output/fragments.pdf", "PDF 输出路径")
	flags.StringVarP(&opts.input, "input", "i", "", "从 JSON 文件读取记录，而不是 Airtable")
	flags.StringVarP(&opts.templatePath, "template", "t", "", "页面模板文件，缺省使用内置版式")
	flags.StringVar(&opts.envFile, "env", "", "环境变量文件，缺省尝试 .env")
	flags.IntVar(&opts.maxLength, "max-length", 0, "正文长度上限，覆盖模板与 FRAGMENTS_MAX_LENGTH")
	flags.StringVar(&opts.debugPath, "debug", "", "布局调试 JSON 输出路径")
	flags.BoolVar(&opts.preview, "preview", false, "在终端预览记录而不生成 PDF")
	flags.StringVar(&opts.fonts.Regular, "font-regular", "", "常规字体 TTF 路径")
	flags.StringVar(&opts.fonts.Bold, "font-bold", "", "粗体 TTF 路径")
	flags.StringVar(&opts.fonts.Italic, "font-italic", "", "斜体 TTF 路径")
	flags.StringVar(&opts.fonts.BoldItalic, "font-bold-italic", "", "粗斜体 TTF 路径")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fragments [flags]\n\nFlags:\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if err := run(ctx, opts, logger); err != nil {
		logger.Fatalf("生成失败: %v", err)
	}
}

// run 串联配置、数据源、布局与渲染。
func run(ctx context.Context, opts cliOptions, logger *log.Logger) error {
	cfg, err := loadConfig(opts.envFile)
	if err != nil {
		return err
	}
	maxLength := cfg.MaxLength
	if opts.maxLength > 0 {
		maxLength = opts.maxLength
	}

	source, err := newSource(opts.input, cfg)
	if err != nil {
		return err
	}

	tpl, err := loadTemplate(opts.templatePath)
	if err != nil {
		return err
	}
	if maxLength <= 0 {
		maxLength = tpl.Content.MaxLength
	}

	if opts.preview {
		records, err := source.Records(ctx)
		if err != nil {
			return fmt.Errorf("读取记录失败: %w", err)
		}
		return preview.Write(os.Stdout, records, preview.Options{MaxLength: maxLength})
	}

	backend, err := canvasrenderer.NewRenderer(canvasrenderer.Options{Fonts: mergeFonts(tpl.Fonts, opts.fonts)})
	if err != nil {
		return fmt.Errorf("初始化渲染器失败: %w", err)
	}

	result, err := pipeline.Run(ctx, pipeline.Options{
		Source:    source,
		Template:  tpl,
		Backend:   backend,
		MaxLength: maxLength,
		DebugPath: opts.debugPath,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(opts.output, result.PDF, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	logger.Printf("已生成 PDF：%s（%d 条记录）", opts.output, result.RecordCount)
	return nil
}

func loadConfig(envFile string) (config.Config, error) {
	if envFile == "" {
		return config.Load()
	}
	return config.Load(envFile)
}

func newSource(input string, cfg config.Config) (record.Source, error) {
	if input != "" {
		return &record.FileSource{Path: input, Fields: cfg.Fields}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &airtable.Client{
		BaseURL: cfg.AirtableURL,
		APIKey:  cfg.AirtableAPIKey,
		BaseID:  cfg.AirtableBaseID,
		TableID: cfg.AirtableTableID,
		Fields:  cfg.Fields,
	}, nil
}

// loadTemplate 解析模板文件；模板中的相对字体路径以模板所在目录为基准。
func loadTemplate(path string) (layout.PageTemplate, error) {
	if path == "" {
		return layout.DefaultPageTemplate(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return layout.PageTemplate{}, fmt.Errorf("无法打开模板文件 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := dsl.ParseFile(path, file)
	if err != nil {
		return layout.PageTemplate{}, fmt.Errorf("解析模板失败: %w", err)
	}
	tpl, err := layout.CompileTemplate(doc)
	if err != nil {
		return layout.PageTemplate{}, fmt.Errorf("编译模板失败: %w", err)
	}
	base := filepath.Dir(path)
	for _, p := range []*string{&tpl.Fonts.Regular, &tpl.Fonts.Bold, &tpl.Fonts.Italic, &tpl.Fonts.BoldItalic} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	return tpl, nil
}

// mergeFonts 让命令行指定的字体覆盖模板中的同名字形。
func mergeFonts(base, override layout.FontSet) layout.FontSet {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	return layout.FontSet{
		Regular:    pick(base.Regular, override.Regular),
		Bold:       pick(base.Bold, override.Bold),
		Italic:     pick(base.Italic, override.Italic),
		BoldItalic: pick(base.BoldItalic, override.BoldItalic),
	}
}
