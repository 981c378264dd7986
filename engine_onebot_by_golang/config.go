package engine_onebot_by_golang

// Unified configuration for the OneBot segment-matching engine

import "fmt"

// -------------------- Enums --------------------

type ExecutionStrategy int

const (
	// Đặt Adaptive = 0 để zero-value hữu ích
	ExecutionAdaptive ExecutionStrategy = iota
	ExecutionDevelopment
	ExecutionProduction
)

func (s ExecutionStrategy) String() string {
	switch s {
	case ExecutionAdaptive:
		return "Adaptive"
	case ExecutionDevelopment:
		return "Development"
	case ExecutionProduction:
		return "Production"
	default:
		return fmt.Sprintf("ExecutionStrategy(%d)", int(s))
	}
}

type PatternComplexity int

const (
	ComplexitySimple PatternComplexity = iota
	ComplexityMedium
	ComplexityComplex
)

func (c PatternComplexity) String() string {
	switch c {
	case ComplexitySimple:
		return "Simple"
	case ComplexityMedium:
		return "Medium"
	case ComplexityComplex:
		return "Complex"
	default:
		return fmt.Sprintf("PatternComplexity(%d)", int(c))
	}
}

// -------------------- Heuristics --------------------

// AnalyzePatternComplexity phân loại pattern theo số token/tham số.
// Rest parameter luôn đẩy pattern lên tối thiểu Medium vì quét tham lam.
func AnalyzePatternComplexity(tokens []Token) PatternComplexity {
	params := 0
	hasRest := false
	for _, t := range tokens {
		switch t.Kind {
		case TokParameter:
			params++
		case TokRest:
			hasRest = true
		}
	}
	// Simple: toàn literal, rất ngắn
	if !hasRest && params == 0 && len(tokens) <= 3 {
		return ComplexitySimple
	}
	// Complex: pattern dài hoặc nhiều tham số
	if len(tokens) > 8 || params > 4 {
		return ComplexityComplex
	}
	return ComplexityMedium
}

// RecommendedStrategy gợi ý chiến lược theo độ phức tạp.
func (c PatternComplexity) RecommendedStrategy() ExecutionStrategy {
	switch c {
	case ComplexitySimple:
		return ExecutionProduction
	case ComplexityMedium, ComplexityComplex:
		return ExecutionAdaptive
	default:
		return ExecutionAdaptive
	}
}

// -------------------- EngineConfig --------------------

type EngineConfig struct {
	// Batch size cho xử lý message theo lô
	BatchSize int `json:"batch_size"`

	// Chiến lược thực thi: mặc định Adaptive
	Strategy ExecutionStrategy `json:"execution_strategy"`

	// Bật prefilter literal (Aho–Corasick) trước khi chạy matcher đầy đủ
	EnablePrefilter bool `json:"enable_prefilter"`

	// Số lệnh tối đa cho một engine (0 = không giới hạn)
	MaxCommands int `json:"max_commands"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BatchSize:       100,
		Strategy:        ExecutionAdaptive,
		EnablePrefilter: true,
		MaxCommands:     0,
	}
}

func NewEngineConfig() EngineConfig {
	return DefaultEngineConfig()
}

func ProductionConfig() EngineConfig {
	return EngineConfig{
		BatchSize:       1000,
		Strategy:        ExecutionProduction,
		EnablePrefilter: true,
		MaxCommands:     0,
	}
}

func DevelopmentConfig() EngineConfig {
	return EngineConfig{
		BatchSize:       10,
		Strategy:        ExecutionDevelopment,
		EnablePrefilter: false,
		MaxCommands:     0,
	}
}

func (c EngineConfig) WithBatchSize(size int) EngineConfig {
	c.BatchSize = size
	return c
}

func (c EngineConfig) WithExecutionStrategy(s ExecutionStrategy) EngineConfig {
	c.Strategy = s
	return c
}

func (c EngineConfig) WithPrefilter(enable bool) EngineConfig {
	c.EnablePrefilter = enable
	return c
}

func (c EngineConfig) WithMaxCommands(n int) EngineConfig {
	c.MaxCommands = n
	return c
}
