package record

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource 从本地 JSON 文件读取记录，支持两种形态：
// Airtable 导出的 {"records":[{"id":..,"fields":{..}}]}，
// 以及扁平数组 [{"id":..,"fields":{..}}] 或 [{"Название":..}]。
type FileSource struct {
	Path   string
	Fields Fields
}

var _ Source = (*FileSource)(nil)

// RawRecord 是数据源返回的一行原始数据。
type RawRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Records 读取并校验文件中的全部记录，按序号排序后返回。
func (s *FileSource) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("读取记录文件失败: %w", err)
	}
	raws, err := DecodeRaw(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return Convert(raws, s.Fields)
}

// DecodeRaw 解析 JSON 字节为原始记录列表。
func DecodeRaw(data []byte) ([]RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("记录文件为空")
	}
	if trimmed[0] == '{' {
		var envelope struct {
			Records []RawRecord `json:"records"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("解析记录 JSON 失败: %w", err)
		}
		return envelope.Records, nil
	}
	var items []map[string]any
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("解析记录 JSON 失败: %w", err)
	}
	raws := make([]RawRecord, 0, len(items))
	for i, item := range items {
		raw := RawRecord{ID: fmt.Sprintf("row%d", i+1)}
		if id, ok := item["id"].(string); ok && id != "" {
			raw.ID = id
		}
		if fields, ok := item["fields"].(map[string]any); ok {
			raw.Fields = fields
		} else {
			raw.Fields = item
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// Convert 校验原始记录并转换为 Record，遇到第一条缺字段的记录即返回错误。
// 结果按序号排序。
func Convert(raws []RawRecord, fields Fields) ([]Record, error) {
	if fields == (Fields{}) {
		fields = DefaultFields()
	}
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := FromFields(raw.ID, raw.Fields, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	Sort(records)
	return records, nil
}
