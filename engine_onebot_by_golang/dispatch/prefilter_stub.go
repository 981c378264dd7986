//go:build !aho
// +build !aho

package dispatch

import (
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/command"
)

// PrefilterStats (stub): mirrors the aho build type with zero values.
type PrefilterStats struct {
	PatternCount         int
	CommandCount         int
	AlwaysPassCount      int
	EstimatedSelectivity float64
	MemoryUsage          int
}

func (s PrefilterStats) IsEffective() bool           { return false }
func (s PrefilterStats) ShouldEnablePrefilter() bool { return false }
func (s PrefilterStats) StrategyName() string        { return "Disabled" }

// LiteralPrefilter is a no-op stub when the aho build tag is not set:
// CandidateCommands returns nil so the engine evaluates every command.
type LiteralPrefilter struct{}

func (p *LiteralPrefilter) CandidateCommands(_ string) map[int]bool { return nil }
func (p *LiteralPrefilter) Stats() PrefilterStats                   { return PrefilterStats{} }
func (p *LiteralPrefilter) AlwaysPassCommands() []int               { return nil }

// PrefilterFromCommands returns a stub prefilter in no-aho builds.
func PrefilterFromCommands(_ []*command.Command) LiteralPrefilter { return LiteralPrefilter{} }
