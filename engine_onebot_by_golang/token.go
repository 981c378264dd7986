package engine_onebot_by_golang

import "fmt"

// TokenKind phân loại chỉ thị so khớp sinh ra từ pattern compiler.
type TokenKind int

const (
	// Khớp tiền tố chính xác trên text segment
	TokLiteral TokenKind = iota
	// Khớp segment theo type + giá trị field đã ánh xạ
	TokTypedLiteral
	// Trích một segment (hoặc text của nó) thành tham số có tên
	TokParameter
	// Gom tham lam một dãy segment liên tiếp
	TokRest
)

func (k TokenKind) String() string {
	switch k {
	case TokLiteral:
		return "Literal"
	case TokTypedLiteral:
		return "TypedLiteral"
	case TokParameter:
		return "Parameter"
	case TokRest:
		return "Rest"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token là tagged union cho một chỉ thị so khớp. Bất biến sau khi compiler
// phát sinh; mỗi variant chỉ dùng một tập field con (xem constructor tương ứng).
type Token struct {
	Kind TokenKind

	// Literal / TypedLiteral
	Value string

	// TypedLiteral
	SegmentType string

	// Parameter / Rest
	Name     string
	DataType string // "" với Rest nghĩa là gom mọi type
	Optional bool
	Default  any // nil nếu không khai báo default
}

// NewLiteral tạo token khớp tiền tố văn bản, giữ nguyên whitespace.
func NewLiteral(value string) Token {
	return Token{Kind: TokLiteral, Value: value}
}

// NewTypedLiteral tạo token khớp segment theo type và giá trị field.
func NewTypedLiteral(segmentType, value string) Token {
	return Token{Kind: TokTypedLiteral, SegmentType: segmentType, Value: value}
}

// NewParameter tạo token tham số bắt buộc.
func NewParameter(name, dataType string) Token {
	return Token{Kind: TokParameter, Name: name, DataType: dataType}
}

// NewOptionalParameter tạo token tham số tuỳ chọn kèm default (nil = không có).
func NewOptionalParameter(name, dataType string, def any) Token {
	return Token{Kind: TokParameter, Name: name, DataType: dataType, Optional: true, Default: def}
}

// NewRestParameter tạo token gom dãy; dataType rỗng nghĩa là mọi type.
func NewRestParameter(name, dataType string) Token {
	return Token{Kind: TokRest, Name: name, DataType: dataType}
}

// IsOptional: chỉ Parameter mới có thể optional.
func (t Token) IsOptional() bool {
	return t.Kind == TokParameter && t.Optional
}

// Clone trả về bản sao token. Default là giá trị scalar do compiler phát sinh
// nên copy nông là đủ.
func (t Token) Clone() Token {
	return t
}

// CloneTokens copy mảng token.
func CloneTokens(toks []Token) []Token {
	out := make([]Token, len(toks))
	copy(out, toks)
	return out
}

// String phục vụ debug/log.
func (t Token) String() string {
	switch t.Kind {
	case TokLiteral:
		return fmt.Sprintf("Literal(%q)", t.Value)
	case TokTypedLiteral:
		return fmt.Sprintf("TypedLiteral{%s:%q}", t.SegmentType, t.Value)
	case TokParameter:
		if t.Optional {
			return fmt.Sprintf("Parameter[%s:%s=%v]", t.Name, t.DataType, t.Default)
		}
		return fmt.Sprintf("Parameter<%s:%s>", t.Name, t.DataType)
	case TokRest:
		return fmt.Sprintf("Rest[...%s:%s]", t.Name, t.DataType)
	default:
		return t.Kind.String()
	}
}
