package matcher

import (
	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
)

// Outcome gom kết quả một lượt so khớp: segment đã tiêu thụ (theo thứ tự khớp),
// tham số đã trích (thứ tự chèn = lần xuất hiện đầu tiên), và segment còn dư.
// Mỗi lượt Match tạo Outcome mới; không chia sẻ state giữa các lượt.
type Outcome struct {
	matched   []engine.Segment
	names     []string
	params    map[string]any
	remaining []engine.Segment
}

// NewOutcome tạo outcome rỗng.
func NewOutcome() *Outcome {
	return &Outcome{params: make(map[string]any)}
}

// AddMatched nối thêm segment đã tiêu thụ.
func (o *Outcome) AddMatched(segs ...engine.Segment) {
	o.matched = append(o.matched, segs...)
}

// AddParam ghi một tham số. Tên đã có thì giữ vị trí cũ, cập nhật giá trị.
func (o *Outcome) AddParam(name string, value any) {
	if _, ok := o.params[name]; !ok {
		o.names = append(o.names, name)
	}
	o.params[name] = value
}

// AddRemaining nối thêm segment không tiêu thụ.
func (o *Outcome) AddRemaining(segs ...engine.Segment) {
	o.remaining = append(o.remaining, segs...)
}

// IsValid: outcome hợp lệ khi có ít nhất một tham số hoặc một segment đã khớp.
// Pattern không tiêu thụ gì và không trích gì bị coi là không khớp.
func (o *Outcome) IsValid() bool {
	return len(o.params) > 0 || len(o.matched) > 0
}

// Matched trả về các segment đã tiêu thụ, theo thứ tự khớp.
func (o *Outcome) Matched() []engine.Segment { return o.matched }

// Remaining trả về các segment còn dư, theo thứ tự gốc.
func (o *Outcome) Remaining() []engine.Segment { return o.remaining }

// Param đọc một tham số theo tên.
func (o *Outcome) Param(name string) (any, bool) {
	v, ok := o.params[name]
	return v, ok
}

// ParamNames trả về tên tham số theo thứ tự lần đầu được ghi.
func (o *Outcome) ParamNames() []string {
	return append([]string(nil), o.names...)
}

// Params trả về bản sao map tham số.
func (o *Outcome) Params() map[string]any {
	out := make(map[string]any, len(o.params))
	for k, v := range o.params {
		out[k] = v
	}
	return out
}

// ParamCount số tham số đã trích.
func (o *Outcome) ParamCount() int { return len(o.params) }
