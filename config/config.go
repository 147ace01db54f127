// Package config loads Airtable credentials and field overrides from .env
// files and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ByLCY/fragments/record"
)

// ErrMissingConfig 表示缺少必需的环境变量。
var ErrMissingConfig = errors.New("config: missing required configuration")

// DefaultEnvFile 在未显式指定时尝试读取，不存在则忽略。
const DefaultEnvFile = ".env"

// Config 汇总运行所需的外部配置。
type Config struct {
	AirtableAPIKey  string
	AirtableBaseID  string
	AirtableTableID string
	AirtableURL     string
	// MaxLength 为 0 表示沿用模板中的正文长度上限。
	MaxLength int
	Fields    record.Fields
}

// Load 依次读取 envFiles（缺省为 .env），再以进程环境变量覆盖同名项。
// 显式指定但不存在的文件会报错。
func Load(envFiles ...string) (Config, error) {
	values := map[string]string{}
	files := envFiles
	optional := false
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
		optional = true
	}
	for _, file := range files {
		m, err := godotenv.Read(file)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("读取环境文件 %s 失败: %w", file, err)
		}
		for k, v := range m {
			values[k] = v
		}
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(values[key])
	}

	cfg := Config{
		AirtableAPIKey:  lookup("AIRTABLE_API_KEY"),
		AirtableBaseID:  lookup("AIRTABLE_BASE_ID"),
		AirtableTableID: lookup("AIRTABLE_TABLE_ID"),
		AirtableURL:     lookup("AIRTABLE_URL"),
		Fields:          record.DefaultFields(),
	}
	if raw := lookup("FRAGMENTS_MAX_LENGTH"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("FRAGMENTS_MAX_LENGTH 无效: %q", raw)
		}
		cfg.MaxLength = n
	}
	override := func(dst *string, key string) {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.Fields.Title, "FRAGMENTS_FIELD_TITLE")
	override(&cfg.Fields.Sequence, "FRAGMENTS_FIELD_SEQUENCE")
	override(&cfg.Fields.Attribute, "FRAGMENTS_FIELD_ATTRIBUTE")
	override(&cfg.Fields.Content, "FRAGMENTS_FIELD_CONTENT")
	override(&cfg.Fields.Comments, "FRAGMENTS_FIELD_COMMENTS")
	return cfg, nil
}

// Validate 检查访问 Airtable 所需的三项配置。
func (c Config) Validate() error {
	var missing []string
	if c.AirtableAPIKey == "" {
		missing = append(missing, "AIRTABLE_API_KEY")
	}
	if c.AirtableBaseID == "" {
		missing = append(missing, "AIRTABLE_BASE_ID")
	}
	if c.AirtableTableID == "" {
		missing = append(missing, "AIRTABLE_TABLE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}
