package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/command"
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/matcher"
)

// Engine giữ tập command đã biên dịch và đánh giá message đến trên toàn bộ
// tập đó, có literal prefilter để bỏ qua sớm command không thể khớp.
// Không an toàn cho concurrent: mỗi goroutine nên serialize qua một mutex
// (xem internal/server).
type Engine struct {
	commands  []*command.Command
	config    engine.EngineConfig
	prefilter *LiteralPrefilter
	// command index luôn qua prefilter (không đóng góp pattern quét được);
	// không tính vào prefilterHits
	alwaysPass map[int]bool

	// counters
	commandsEvaluated int
	prefilterHits     int
	prefilterMisses   int
}

// CommandMatch là một command khớp với message.
type CommandMatch struct {
	Name    string
	Outcome *matcher.Outcome
	Values  []any // giá trị các callback trả về, theo thứ tự đăng ký
}

// EvaluationResult gom kết quả một lượt dispatch.
type EvaluationResult struct {
	Matches           []CommandMatch
	CommandsEvaluated int
}

// FromCommands tạo engine từ tập command và config.
func FromCommands(cmds []*command.Command, cfg engine.EngineConfig) (*Engine, error) {
	if cfg.MaxCommands > 0 && len(cmds) > cfg.MaxCommands {
		return nil, fmt.Errorf("too many commands: %d > %d", len(cmds), cfg.MaxCommands)
	}
	e := &Engine{
		commands: append([]*command.Command(nil), cmds...),
		config:   cfg,
	}
	if cfg.EnablePrefilter {
		pf := PrefilterFromCommands(e.commands)
		e.prefilter = &pf
		e.alwaysPass = make(map[int]bool)
		for _, i := range pf.AlwaysPassCommands() {
			e.alwaysPass[i] = true
		}
	}
	return e, nil
}

// Evaluate chạy toàn bộ command trên một message; trả mọi command khớp.
// Callback error của một command dừng cả lượt (hành vi fail-fast).
func (e *Engine) Evaluate(segments []engine.Segment) (EvaluationResult, error) {
	res := EvaluationResult{}
	var candidates map[int]bool
	if e.prefilter != nil {
		candidates = e.prefilter.CandidateCommands(scanText(segments))
	}
	for i, cmd := range e.commands {
		if candidates != nil {
			if !candidates[i] {
				e.prefilterMisses++
				continue
			}
			if !e.alwaysPass[i] {
				e.prefilterHits++
			}
		}
		e.commandsEvaluated++
		res.CommandsEvaluated++
		out, values, err := cmd.Exec(segments)
		if err != nil {
			return res, err
		}
		if out != nil {
			res.Matches = append(res.Matches, CommandMatch{Name: cmd.Name, Outcome: out, Values: values})
		}
	}
	return res, nil
}

// EvaluateBatch đánh giá nhiều message theo lô.
func (e *Engine) EvaluateBatch(batch [][]engine.Segment) ([]EvaluationResult, error) {
	out := make([]EvaluationResult, 0, len(batch))
	for _, segs := range batch {
		r, err := e.Evaluate(segs)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Accessors (metrics and configuration)

func (e *Engine) CommandCount() int {
	if e == nil {
		return 0
	}
	return len(e.commands)
}

func (e *Engine) ContainsCommand(name string) bool {
	if e == nil {
		return false
	}
	for _, c := range e.commands {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (e *Engine) Config() engine.EngineConfig {
	if e == nil {
		return engine.DefaultEngineConfig()
	}
	return e.config
}

func (e *Engine) Stats() (commandsEvaluated, prefilterHits, prefilterMisses int) {
	if e == nil {
		return 0, 0, 0
	}
	return e.commandsEvaluated, e.prefilterHits, e.prefilterMisses
}

func (e *Engine) PrefilterStats() PrefilterStats {
	if e == nil || e.prefilter == nil {
		return PrefilterStats{}
	}
	return e.prefilter.Stats()
}

// scanText dựng chuỗi cho prefilter quét: text thô của mọi text segment
// (khớp chính xác cho Literal) nối thêm JSON của cả message (bắt giá trị
// TypedLiteral nằm trong data của segment khác). JSON phải được encode với
// SetEscapeHTML(false): nếu không, `<` `>` `&` bị đổi sang dạng escape u003c
// và pattern chứa chúng không bao giờ khớp. Sau bước này chỉ còn `"` và `\`
// có thể bị escape, đúng tập ký tự mà scannable loại khỏi automaton.
func scanText(segments []engine.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Type != "text" {
			continue
		}
		if t, ok := s.Data["text"].(string); ok {
			b.WriteString(t)
			b.WriteByte('\n')
		}
	}
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(segments)
	return b.String()
}
