package command

import (
	"fmt"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/compiler"
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/matcher"
)

// HandlerFn là một callback trong chuỗi xử lý của command. Trả (value, error);
// error làm dừng chuỗi ngay lập tức.
type HandlerFn func(out *matcher.Outcome) (any, error)

// Command gắn một pattern đã biên dịch với field mapping và chuỗi callback.
// Callbacks chạy tuần tự đúng thứ tự đăng ký, từng cái một, không concurrent.
type Command struct {
	Name    string
	Pattern string

	tokens   []engine.Token
	fields   matcher.FieldMapping
	handlers []HandlerFn
}

// New biên dịch pattern và tạo command với field mapping mặc định.
func New(name, pattern string) (*Command, error) {
	toks, err := compiler.Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", name, err)
	}
	return &Command{
		Name:    name,
		Pattern: pattern,
		tokens:  toks,
		fields:  matcher.DefaultFieldMapping(),
	}, nil
}

// WithFieldMapping phủ thêm overrides lên mapping mặc định (merge, không thay
// thế toàn bộ).
func (c *Command) WithFieldMapping(overrides map[string][]string) *Command {
	c.fields = c.fields.Merge(overrides)
	return c
}

// Handle thêm một callback vào cuối chuỗi. Trả lại command để chain tiếp.
func (c *Command) Handle(fn HandlerFn) *Command {
	c.handlers = append(c.handlers, fn)
	return c
}

// Match chạy matcher trên segments với token/mapping của command.
func (c *Command) Match(segments []engine.Segment) (*matcher.Outcome, bool) {
	return matcher.Match(c.tokens, segments, c.fields)
}

// Exec chạy matcher rồi gọi lần lượt các callback với outcome; gom giá trị
// trả về theo thứ tự. Không khớp => (nil, nil, nil). Error của callback dừng
// chuỗi và được trả ra cùng các giá trị đã gom trước đó.
func (c *Command) Exec(segments []engine.Segment) (*matcher.Outcome, []any, error) {
	out, ok := c.Match(segments)
	if !ok {
		return nil, nil, nil
	}
	values := make([]any, 0, len(c.handlers))
	for _, h := range c.handlers {
		v, err := h(out)
		if err != nil {
			return out, values, fmt.Errorf("command %s handler %d: %w", c.Name, len(values), err)
		}
		values = append(values, v)
	}
	return out, values, nil
}

// Tokens trả về bản sao dãy token đã biên dịch.
func (c *Command) Tokens() []engine.Token {
	return engine.CloneTokens(c.tokens)
}

// FieldMapping trả về mapping hiện tại của command.
func (c *Command) FieldMapping() matcher.FieldMapping { return c.fields }

// HandlerCount số callback đã đăng ký.
func (c *Command) HandlerCount() int { return len(c.handlers) }

// Complexity phân loại pattern của command theo heuristic chung.
func (c *Command) Complexity() engine.PatternComplexity {
	return engine.AnalyzePatternComplexity(c.tokens)
}

// LiteralValues gom giá trị của mọi Literal/TypedLiteral trong pattern,
// phục vụ literal prefilter ở tầng dispatch.
func (c *Command) LiteralValues() []string {
	var out []string
	for _, t := range c.tokens {
		switch t.Kind {
		case engine.TokLiteral, engine.TokTypedLiteral:
			if t.Value != "" {
				out = append(out, t.Value)
			}
		}
	}
	return out
}
