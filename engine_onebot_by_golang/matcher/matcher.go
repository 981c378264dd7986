package matcher

import (
	"strings"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
)

// Match chạy thuật toán so khớp một lượt, hai con trỏ (token index / segment
// index), không backtracking. Input segments được copy sâu trước khi chạy nên
// các thao tác cắt/chèn trên bản làm việc không chạm dữ liệu của caller.
// Trả về (outcome, true) khi khớp và outcome hợp lệ, (nil, false) nếu không.
// Gọi lặp lại với cùng input cho cùng kết quả.
//
// fields chỉ được tra khi đánh giá TypedLiteral; Literal và tham số text đọc
// thẳng data["text"] của text segment, tham số kiểu khác trích nguyên segment.
func Match(tokens []engine.Token, segments []engine.Segment, fields FieldMapping) (*Outcome, bool) {
	work := engine.CloneSegments(segments)
	out := NewOutcome()
	si := 0

	for _, tok := range tokens {
		if si < len(work) {
			step, ok := matchToken(tok, &work, si, fields)
			if ok {
				out.AddMatched(step.consumed...)
				if step.hasParam {
					out.AddParam(step.paramName, step.paramValue)
				}
				si = step.next
				continue
			}
		}
		// Segment vắng mặt hoặc không khớp
		if tok.IsOptional() {
			out.AddParam(tok.Name, optionalDefault(tok))
			if si < len(work) {
				// tiêu thụ-bỏ segment không khớp
				si++
			}
			continue
		}
		// Token bắt buộc không khớp: cả pattern thất bại ngay
		return nil, false
	}

	for ; si < len(work); si++ {
		out.AddRemaining(work[si])
	}
	if !out.IsValid() {
		return nil, false
	}
	return out, true
}

// stepResult mô tả một bước khớp thành công.
type stepResult struct {
	consumed   []engine.Segment
	hasParam   bool
	paramName  string
	paramValue any
	next       int // segment index kế tiếp (không nhất thiết +1)
}

// matchToken đánh giá một token trên work[si]. Có thể chèn segment mới vào
// work tại si+1 khi chỉ tiêu thụ một phần text (cắt tiền tố).
func matchToken(tok engine.Token, work *[]engine.Segment, si int, fields FieldMapping) (stepResult, bool) {
	seg := (*work)[si]

	switch tok.Kind {
	case engine.TokLiteral:
		return matchLiteral(tok, seg, work, si)

	case engine.TokTypedLiteral:
		return matchTypedLiteral(tok, seg, work, si, fields)

	case engine.TokParameter:
		return matchParameter(tok, seg, si)

	case engine.TokRest:
		return matchRest(tok, work, si)
	}
	return stepResult{}, false
}

// matchLiteral: khớp tiền tố chính xác (phân biệt hoa thường, không trim) trên
// text segment. Phần text dư được chèn lại vào bản làm việc ngay sau vị trí
// hiện tại để token kế tiếp dùng.
func matchLiteral(tok engine.Token, seg engine.Segment, work *[]engine.Segment, si int) (stepResult, bool) {
	if seg.Type != "text" {
		return stepResult{}, false
	}
	text, ok := stringifyValue(seg.Data["text"])
	if !ok || !strings.HasPrefix(text, tok.Value) {
		return stepResult{}, false
	}
	if rest := text[len(tok.Value):]; rest != "" {
		*work = insertSegment(*work, si+1, engine.NewText(rest))
	}
	return stepResult{
		consumed: []engine.Segment{engine.NewText(tok.Value)},
		next:     si + 1,
	}, true
}

// matchTypedLiteral: type phải trùng, rồi thử lần lượt các field theo thứ tự
// ưu tiên trong mapping. Field đầu tiên thoả (a) giá trị stringify bằng đúng
// value, hoặc (b) — chỉ với text segment — chứa value làm substring, thắng.
// Với substring, phần text đứng TRƯỚC chỗ khớp bị loại bỏ (chính sách thống
// nhất cho mọi nhánh), phần sau được chèn lại như matchLiteral.
func matchTypedLiteral(tok engine.Token, seg engine.Segment, work *[]engine.Segment, si int, fields FieldMapping) (stepResult, bool) {
	if seg.Type != tok.SegmentType {
		return stepResult{}, false
	}
	for _, field := range fields.FieldsFor(seg.Type) {
		v, present := seg.Data[field]
		if !present {
			continue
		}
		s, ok := stringifyValue(v)
		if !ok {
			continue
		}
		if s == tok.Value {
			// khớp nguyên field: tiêu thụ cả segment
			return stepResult{
				consumed: []engine.Segment{seg},
				next:     si + 1,
			}, true
		}
		if seg.Type == "text" {
			if idx := strings.Index(s, tok.Value); idx >= 0 {
				if after := s[idx+len(tok.Value):]; after != "" {
					*work = insertSegment(*work, si+1, engine.NewText(after))
				}
				return stepResult{
					consumed: []engine.Segment{engine.NewText(tok.Value)},
					next:     si + 1,
				}, true
			}
		}
	}
	return stepResult{}, false
}

// matchParameter: dataType "text" trích nguyên field text (không cắt một
// phần); dataType khác trích nguyên segment làm giá trị tham số.
func matchParameter(tok engine.Token, seg engine.Segment, si int) (stepResult, bool) {
	if tok.DataType == "text" {
		if seg.Type != "text" {
			return stepResult{}, false
		}
		text, ok := stringifyValue(seg.Data["text"])
		if !ok {
			return stepResult{}, false
		}
		return stepResult{
			consumed:   []engine.Segment{seg},
			hasParam:   true,
			paramName:  tok.Name,
			paramValue: text,
			next:       si + 1,
		}, true
	}
	if seg.Type != tok.DataType {
		return stepResult{}, false
	}
	return stepResult{
		consumed:   []engine.Segment{seg},
		hasParam:   true,
		paramName:  tok.Name,
		paramValue: seg,
		next:       si + 1,
	}, true
}

// matchRest: gom tham lam từ vị trí hiện tại; dataType rỗng gom mọi type,
// ngược lại dừng ở segment đầu tiên khác type. Phải gom được ít nhất một.
func matchRest(tok engine.Token, work *[]engine.Segment, si int) (stepResult, bool) {
	j := si
	for j < len(*work) && (tok.DataType == "" || (*work)[j].Type == tok.DataType) {
		j++
	}
	if j == si {
		return stepResult{}, false
	}
	run := make([]engine.Segment, j-si)
	copy(run, (*work)[si:j])
	return stepResult{
		consumed:   run,
		hasParam:   true,
		paramName:  tok.Name,
		paramValue: run,
		next:       j,
	}, true
}

// optionalDefault: default khai báo sẵn nếu có, "" cho tham số text, nil cho
// các kiểu còn lại.
func optionalDefault(tok engine.Token) any {
	if tok.Default != nil {
		return tok.Default
	}
	if tok.DataType == "text" {
		return ""
	}
	return nil
}

// insertSegment chèn một segment vào vị trí i (append + dịch đuôi, O(n) trên
// bản làm việc riêng).
func insertSegment(segs []engine.Segment, i int, s engine.Segment) []engine.Segment {
	segs = append(segs, engine.Segment{})
	copy(segs[i+1:], segs[i:])
	segs[i] = s
	return segs
}
