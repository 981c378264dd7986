//go:build aho
// +build aho

package dispatch

import (
	"fmt"
	"strings"

	ac "github.com/petar-dambovaliev/aho-corasick"

	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/command"
)

//
// Literal prefilter cho tầng dispatch: gom giá trị Literal/TypedLiteral của
// mọi command vào một automaton Aho–Corasick; message không chứa literal nào
// của một command thì command đó bị loại trước khi chạy matcher đầy đủ.
//

// -------------------- Statistics --------------------

type PrefilterStats struct {
	// Tổng số pattern trong automaton
	PatternCount int `json:"pattern_count"`
	// Số command đóng góp pattern
	CommandCount int `json:"command_count"`
	// Số command luôn được cho qua (không có literal quét được)
	AlwaysPassCount int `json:"always_pass_count"`
	// Ước tính selectivity (0.0 = rất chọn lọc, 1.0 = khớp tất)
	EstimatedSelectivity float64 `json:"estimated_selectivity"`
	// Ước lượng footprint bộ nhớ
	MemoryUsage int `json:"memory_usage"`
}

func (s PrefilterStats) IsEffective() bool {
	return s.PatternCount >= 5 && s.EstimatedSelectivity < 0.7
}

func (s PrefilterStats) ShouldEnablePrefilter() bool {
	return s.PatternCount >= 1 && s.EstimatedSelectivity < 0.8
}

func (s PrefilterStats) StrategyName() string {
	return fmt.Sprintf("AhoCorasick (%d patterns)", s.PatternCount)
}

// -------------------- Config --------------------

type PrefilterConfig struct {
	// Bật khớp ASCII case-insensitive trong AC
	CaseInsensitive bool `json:"case_insensitive"`
	// Bỏ qua pattern quá ngắn
	MinPatternLength int `json:"min_pattern_length"`
	// Giới hạn số pattern (nil = no limit)
	MaxPatterns *int `json:"max_patterns"`
	// Công tắc tổng
	Enabled bool `json:"enabled"`
}

func DefaultPrefilterConfig() PrefilterConfig {
	max := 1000
	return PrefilterConfig{
		CaseInsensitive:  false, // matcher so khớp case-sensitive
		MinPatternLength: 1,
		MaxPatterns:      &max,
		Enabled:          true,
	}
}

func DisabledPrefilterConfig() PrefilterConfig {
	cfg := DefaultPrefilterConfig()
	cfg.Enabled = false
	return cfg
}

// -------------------- Prefilter --------------------

type LiteralPrefilter struct {
	// Automaton AC (nil nếu không có pattern)
	ac *ac.AhoCorasick
	// Toàn bộ pattern (giữ raw để debug)
	patterns []string
	// chỉ số pattern -> các command index dùng pattern đó
	patternToCommands map[int][]int
	// command index luôn cho qua (không đóng góp pattern quét được)
	alwaysPass []int
	stats      PrefilterStats
	cfg        PrefilterConfig
}

func (p *LiteralPrefilter) Stats() PrefilterStats { return p.stats }

// AlwaysPassCommands trả về các command index không đóng góp pattern quét
// được (luôn phải đánh giá đầy đủ).
func (p *LiteralPrefilter) AlwaysPassCommands() []int { return p.alwaysPass }

// CandidateCommands trả về tập command index cần đánh giá đầy đủ cho text đã
// quét; nil nghĩa là prefilter không hoạt động (đánh giá tất cả).
func (p *LiteralPrefilter) CandidateCommands(text string) map[int]bool {
	if p == nil || p.ac == nil || p.stats.PatternCount == 0 {
		return nil
	}
	out := make(map[int]bool, len(p.alwaysPass))
	for _, i := range p.alwaysPass {
		out[i] = true
	}
	for _, m := range p.ac.FindAll(text) {
		for _, ci := range p.patternToCommands[m.Pattern()] {
			out[ci] = true
		}
	}
	return out
}

// -------------------- Builder nội bộ --------------------

type patternBuilder struct {
	cfg PrefilterConfig

	dedupe            map[string]int
	combined          []string
	patternToCommands map[int][]int
	alwaysPass        []int
	commandCount      int
}

func newPatternBuilder(cfg PrefilterConfig) *patternBuilder {
	return &patternBuilder{
		cfg:               cfg,
		dedupe:            make(map[string]int),
		patternToCommands: make(map[int][]int),
	}
}

func (pb *patternBuilder) keyFor(pattern string) string {
	if pb.cfg.CaseInsensitive {
		return strings.ToLower(pattern)
	}
	return pattern
}

// scannable: pattern chứa quote/backslash có thể bị JSON-escape trong text
// quét, dẫn tới loại nhầm command — loại khỏi automaton cho an toàn.
func scannable(pattern string) bool {
	return !strings.ContainsAny(pattern, `"\`)
}

func (pb *patternBuilder) addCommand(idx int, cmd *command.Command) {
	pb.commandCount++

	added := false
	for _, v := range cmd.LiteralValues() {
		if len(v) < pb.cfg.MinPatternLength || !scannable(v) {
			continue
		}
		if pb.cfg.MaxPatterns != nil && len(pb.combined) >= *pb.cfg.MaxPatterns {
			break
		}
		key := pb.keyFor(v)
		pi, ok := pb.dedupe[key]
		if !ok {
			pi = len(pb.combined)
			pb.combined = append(pb.combined, v)
			pb.dedupe[key] = pi
		}
		pb.patternToCommands[pi] = append(pb.patternToCommands[pi], idx)
		added = true
	}
	if !added {
		pb.alwaysPass = append(pb.alwaysPass, idx)
	}
}

func (pb *patternBuilder) build() LiteralPrefilter {
	total := len(pb.combined)

	stats := PrefilterStats{
		PatternCount:         total,
		CommandCount:         pb.commandCount,
		AlwaysPassCount:      len(pb.alwaysPass),
		EstimatedSelectivity: estimateSelectivity(total, pb.commandCount, len(pb.alwaysPass)),
		MemoryUsage:          estimateMemoryUsage(pb.combined),
	}

	var automaton *ac.AhoCorasick
	if pb.cfg.Enabled && total > 0 {
		builder := ac.NewAhoCorasickBuilder(ac.Opts{
			AsciiCaseInsensitive: pb.cfg.CaseInsensitive,
			MatchKind:            ac.LeftMostLongestMatch,
		})
		acBuilt := builder.Build(pb.combined)
		automaton = &acBuilt
	}

	return LiteralPrefilter{
		ac:                automaton,
		patterns:          append([]string(nil), pb.combined...),
		patternToCommands: pb.patternToCommands,
		alwaysPass:        pb.alwaysPass,
		stats:             stats,
		cfg:               pb.cfg,
	}
}

// -------------------- Public API --------------------

// PrefilterFromCommands tạo prefilter từ tập command (config mặc định).
func PrefilterFromCommands(cmds []*command.Command) LiteralPrefilter {
	return PrefilterWithConfig(cmds, DefaultPrefilterConfig())
}

// PrefilterWithConfig tạo prefilter với cấu hình custom.
func PrefilterWithConfig(cmds []*command.Command, cfg PrefilterConfig) LiteralPrefilter {
	if !cfg.Enabled {
		return LiteralPrefilter{
			patternToCommands: map[int][]int{},
			stats:             PrefilterStats{EstimatedSelectivity: 1.0},
			cfg:               cfg,
		}
	}
	pb := newPatternBuilder(cfg)
	for i, c := range cmds {
		pb.addCommand(i, c)
	}
	return pb.build()
}

// -------------------- Heuristics --------------------

func estimateSelectivity(patternCount, commandCount, alwaysPass int) float64 {
	if patternCount == 0 || commandCount == 0 {
		return 1.0
	}
	// command luôn cho qua kéo selectivity về 1.0
	base := 1.0 / (1.0 + float64(patternCount)/10.0)
	passRatio := float64(alwaysPass) / float64(commandCount)
	return base + (1.0-base)*passRatio
}

func estimateMemoryUsage(patterns []string) int {
	sum := 0
	for _, p := range patterns {
		sum += len(p)
	}
	// hệ số thô cho node automaton
	return sum * 16
}
