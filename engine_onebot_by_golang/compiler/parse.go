package compiler

import (
	"fmt"
	"strconv"
	"strings"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
)

// Pattern grammar:
//
//   chuỗi thường            -> Literal (whitespace giữ nguyên văn)
//   {type:value}            -> TypedLiteral
//   <name:type>             -> Parameter bắt buộc (bỏ :type => text)
//   [name:type=default]     -> Parameter tuỳ chọn (default tuỳ chọn)
//   [...name:type]          -> RestParameter ([...name] = mọi type)
//   \x                      -> escape x thành literal
//
// Matcher tin hoàn toàn dãy token nhận được; mọi lỗi cú pháp phải bị chặn ở đây.

// ---------------- Error ----------------

type PatternSyntaxError struct {
	Pattern string
	Pos     int
	Reason  string
}

func (e *PatternSyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at offset %d in %q: %s", e.Pos, e.Pattern, e.Reason)
}

// ---------------- Parser ----------------

// Parse biên dịch pattern string thành dãy token cho matcher.
func Parse(pattern string) ([]engine.Token, error) {
	var toks []engine.Token
	var lit strings.Builder

	flushLiteral := func() {
		if lit.Len() > 0 {
			toks = append(toks, engine.NewLiteral(lit.String()))
			lit.Reset()
		}
	}

	rs := []rune(pattern)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			if i+1 >= len(rs) {
				return nil, &PatternSyntaxError{pattern, i, "trailing escape"}
			}
			i++
			lit.WriteRune(rs[i])

		case '{':
			flushLiteral()
			body, end, err := readGroup(pattern, rs, i, '}')
			if err != nil {
				return nil, err
			}
			segType, value, found := strings.Cut(body, ":")
			if !found || segType == "" {
				return nil, &PatternSyntaxError{pattern, i, "typed literal must be {type:value}"}
			}
			toks = append(toks, engine.NewTypedLiteral(segType, value))
			i = end

		case '<':
			flushLiteral()
			body, end, err := readGroup(pattern, rs, i, '>')
			if err != nil {
				return nil, err
			}
			name, typ := splitNameType(body, "text")
			if name == "" {
				return nil, &PatternSyntaxError{pattern, i, "parameter needs a name"}
			}
			toks = append(toks, engine.NewParameter(name, typ))
			i = end

		case '[':
			flushLiteral()
			body, end, err := readGroup(pattern, rs, i, ']')
			if err != nil {
				return nil, err
			}
			tok, perr := parseBracket(pattern, i, body)
			if perr != nil {
				return nil, perr
			}
			toks = append(toks, tok)
			i = end

		case '}', '>', ']':
			return nil, &PatternSyntaxError{pattern, i, fmt.Sprintf("unmatched %q", rs[i])}

		default:
			lit.WriteRune(rs[i])
		}
	}
	flushLiteral()
	return toks, nil
}

// parseBracket xử lý 2 dạng trong ngoặc vuông: rest ([...name:type]) và
// parameter tuỳ chọn ([name:type=default]).
func parseBracket(pattern string, pos int, body string) (engine.Token, error) {
	if rest, ok := strings.CutPrefix(body, "..."); ok {
		// rest không có default; bỏ :type nghĩa là gom mọi type
		name, typ := splitNameType(rest, "")
		if name == "" {
			return engine.Token{}, &PatternSyntaxError{pattern, pos, "rest parameter needs a name"}
		}
		return engine.NewRestParameter(name, typ), nil
	}

	spec, def, hasDefault := strings.Cut(body, "=")
	name, typ := splitNameType(spec, "text")
	if name == "" {
		return engine.Token{}, &PatternSyntaxError{pattern, pos, "optional parameter needs a name"}
	}
	var defValue any
	if hasDefault {
		defValue = parseDefault(def, typ)
	}
	return engine.NewOptionalParameter(name, typ, defValue), nil
}

// readGroup đọc thân ngoặc từ rs[open+1] đến ký tự đóng; trả (body, index đóng).
func readGroup(pattern string, rs []rune, open int, closer rune) (string, int, error) {
	for j := open + 1; j < len(rs); j++ {
		if rs[j] == closer {
			return string(rs[open+1 : j]), j, nil
		}
	}
	return "", 0, &PatternSyntaxError{pattern, open, fmt.Sprintf("missing closing %q", closer)}
}

// splitNameType tách "name:type"; thiếu :type thì dùng defType.
func splitNameType(s, defType string) (name, typ string) {
	name, typ, found := strings.Cut(s, ":")
	if !found || typ == "" {
		typ = defType
	}
	return name, typ
}

// parseDefault ép kiểu default theo dataType của tham số: tham số number nhận
// int64/float64, còn lại giữ nguyên chuỗi.
func parseDefault(raw, dataType string) any {
	if dataType == "number" {
		if iv, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return iv
		}
		if fv, err := strconv.ParseFloat(raw, 64); err == nil {
			return fv
		}
	}
	return raw
}
