package engine_onebot_by_golang

import (
	"encoding/json"
)

// Segment là một đơn vị cấu trúc của message theo định dạng OneBot12:
// tag `type` + map `data` (field -> giá trị bất kỳ: string/number/nested).
type Segment struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// NewSegment tạo segment với type tuỳ ý. Data nil được thay bằng map rỗng
// để giữ bất biến "data luôn tồn tại".
func NewSegment(typ string, data map[string]any) Segment {
	if data == nil {
		data = map[string]any{}
	}
	return Segment{Type: typ, Data: data}
}

// NewText tạo segment văn bản thuần.
func NewText(text string) Segment {
	return Segment{Type: "text", Data: map[string]any{"text": text}}
}

// NewFace tạo segment biểu cảm (emoji/sticker) theo id.
func NewFace(id any) Segment {
	return Segment{Type: "face", Data: map[string]any{"id": id}}
}

// NewImage tạo segment ảnh theo file id.
func NewImage(file string) Segment {
	return Segment{Type: "image", Data: map[string]any{"file": file}}
}

// NewAt tạo segment mention theo user_id.
func NewAt(userID string) Segment {
	return Segment{Type: "at", Data: map[string]any{"user_id": userID}}
}

// Clone trả về bản sao sâu: map Data và mọi map/slice lồng nhau đều được copy
// để matcher có thể chèn/cắt trên bản làm việc mà không đụng dữ liệu caller.
func (s Segment) Clone() Segment {
	return Segment{Type: s.Type, Data: deepCopyMap(s.Data)}
}

// CloneSegments copy sâu cả mảng segment (bản làm việc của matcher).
func CloneSegments(segs []Segment) []Segment {
	out := make([]Segment, len(segs))
	for i := range segs {
		out[i] = segs[i].Clone()
	}
	return out
}

// Key serialize segment thành chuỗi ổn định, phục vụ debug/so sánh trong test.
func (s Segment) Key() string {
	b, _ := json.Marshal(s)
	return string(b)
}

// ---------------- deep copy helpers ----------------

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		cp := make([]any, len(t))
		for i, e := range t {
			cp[i] = deepCopyValue(e)
		}
		return cp
	default:
		// scalar (string/number/bool/json.Number/nil) — immutable
		return v
	}
}
