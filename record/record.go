// Package record models the rows pulled from the data source: field mapping,
// validation, ordering and content normalization.
package record

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrMissingFields is wrapped by validation errors for rows lacking required columns.
var ErrMissingFields = errors.New("record: missing required fields")

// Record is one validated row; each record becomes one page.
type Record struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Sequence   string   `json:"sequence"`
	Attributes []string `json:"attributes"`
	Content    string   `json:"content"`
	Comments   int      `json:"comments"`
}

// Source yields validated records.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// Fields maps record attributes to source column names.
type Fields struct {
	Title     string
	Sequence  string
	Attribute string
	Content   string
	Comments  string
}

// DefaultFields returns the column names used by the fragments Airtable base.
func DefaultFields() Fields {
	return Fields{
		Title:     "Название",
		Sequence:  "Порядковый номер",
		Attribute: "Атрибут 1",
		Content:   "Фрагмент",
		Comments:  "Comments",
	}
}

func (f Fields) required() []string {
	return []string{f.Title, f.Sequence, f.Attribute, f.Content}
}

// MissingFieldsError lists every required column absent from a row.
type MissingFieldsError struct {
	RecordID string
	Missing  []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("record %s is missing required fields: %s", e.RecordID, strings.Join(e.Missing, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// FromFields validates a raw row and converts it to a Record.
func FromFields(id string, raw map[string]any, fields Fields) (Record, error) {
	var missing []string
	for _, name := range fields.required() {
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Record{}, &MissingFieldsError{RecordID: id, Missing: missing}
	}
	return Record{
		ID:         id,
		Title:      stringValue(raw[fields.Title]),
		Sequence:   stringValue(raw[fields.Sequence]),
		Attributes: stringList(raw[fields.Attribute]),
		Content:    NormalizeContent(stringValue(raw[fields.Content])),
		Comments:   countValue(raw[fields.Comments]),
	}, nil
}

// NormalizeContent converts line endings to "\n" and composes the text to NFC
// so that length limits count user-perceived characters.
func NormalizeContent(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}

// Sort orders records by sequence. Numeric sequences compare numerically and
// sort before non-numeric ones; the sort is stable.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return lessSequence(records[i].Sequence, records[j].Sequence)
	})
}

func lessSequence(a, b string) bool {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA == nil && errB == nil:
		return fa < fb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// Data exposes the record to template bindings such as ${title} or ${count}.
func (r Record) Data() map[string]any {
	attrs := make([]any, len(r.Attributes))
	for i, a := range r.Attributes {
		attrs[i] = a
	}
	return map[string]any{
		"id":         r.ID,
		"title":      r.Title,
		"sequence":   r.Sequence,
		"attributes": attrs,
		"content":    r.Content,
		"count":      r.Comments,
		"comments":   r.Comments,
	}
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		return strings.Join(stringList(x), ", ")
	default:
		return fmt.Sprint(x)
	}
}

func stringList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, stringValue(item))
		}
		return out
	default:
		return []string{stringValue(x)}
	}
}

func countValue(v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return int(x)
	case int:
		return x
	case []any:
		return len(x)
	case []string:
		return len(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
