package matcher

import (
	"encoding/json"
	"fmt"
)

// FieldMapping cấu hình ánh xạ: segment type -> danh sách field (theo thứ tự
// ưu tiên) mà matcher đọc khi đánh giá TypedLiteral trên segment đó.
type FieldMapping struct {
	fields map[string][]string
}

// NewFieldMapping tạo FieldMapping rỗng.
func NewFieldMapping() FieldMapping {
	return FieldMapping{fields: make(map[string][]string)}
}

// DefaultFieldMapping trả về mapping mặc định theo OneBot12:
// text -> text, face -> id, image -> file rồi url, at -> user_id.
func DefaultFieldMapping() FieldMapping {
	fm := NewFieldMapping()
	fm.AddMapping("text", "text")
	fm.AddMapping("face", "id")
	fm.AddMapping("image", "file", "url")
	fm.AddMapping("at", "user_id")
	return fm
}

// AddMapping đặt danh sách field cho một segment type. Ghi đè key trùng.
func (fm *FieldMapping) AddMapping(segmentType string, fields ...string) {
	if fm.fields == nil {
		fm.fields = make(map[string][]string)
	}
	fm.fields[segmentType] = append([]string(nil), fields...)
}

// Merge trả về bản mới: mapping mặc định của fm được phủ thêm overrides.
// Key trong overrides ghi đè key trùng; key còn lại của fm giữ nguyên
// (merge chứ không thay thế toàn bộ).
func (fm FieldMapping) Merge(overrides map[string][]string) FieldMapping {
	out := NewFieldMapping()
	for k, v := range fm.fields {
		out.fields[k] = append([]string(nil), v...)
	}
	for k, v := range overrides {
		out.fields[k] = append([]string(nil), v...)
	}
	return out
}

// FieldsFor trả về danh sách field ưu tiên cho segment type;
// nil nếu type không có mapping (matcher coi là non-match, không phải lỗi).
func (fm FieldMapping) FieldsFor(segmentType string) []string {
	return fm.fields[segmentType]
}

// HasMapping kiểm tra có ánh xạ cho type hay không.
func (fm FieldMapping) HasMapping(segmentType string) bool {
	_, ok := fm.fields[segmentType]
	return ok
}

// Mappings trả về một bản sao các ánh xạ hiện có.
func (fm FieldMapping) Mappings() map[string][]string {
	out := make(map[string][]string, len(fm.fields))
	for k, v := range fm.fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// stringifyValue chuẩn hoá giá trị field về string để so sánh:
// - string giữ nguyên; bool/number -> chuỗi tương ứng
// - nil (JSON null) -> không phải giá trị
// - map/array -> không phải giá trị (non-match, không phải lỗi)
func stringifyValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case json.Number:
		return t.String(), true
	case float64, float32, int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return fmt.Sprint(t), true
	case map[string]any, []any:
		return "", false
	default:
		return "", false
	}
}
