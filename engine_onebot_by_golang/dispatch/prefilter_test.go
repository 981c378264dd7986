//go:build aho
// +build aho

package dispatch

import (
	"testing"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/command"
)

func TestPrefilterFiltersNonCandidates(t *testing.T) {
	cmds := []*command.Command{
		mustCommand(t, "ping", "ping"),
		mustCommand(t, "roll", "roll <dice>"),
	}
	pf := PrefilterFromCommands(cmds)

	got := pf.CandidateCommands("ping")
	if got == nil {
		t.Fatalf("automaton must be active")
	}
	if !got[0] {
		t.Fatalf("ping must be a candidate: %v", got)
	}
	if got[1] {
		t.Fatalf("roll must be filtered out: %v", got)
	}
}

func TestPrefilterNeverFiltersTruePositives(t *testing.T) {
	// tính đúng đắn: mọi command thật sự khớp phải nằm trong candidate set
	cmds := []*command.Command{
		mustCommand(t, "greet", "hello <name>"),
		mustCommand(t, "face", "{face:1}"),
	}
	eng, err := FromCommands(cmds, engine.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("FromCommands: %v", err)
	}

	msgs := [][]engine.Segment{
		{engine.NewText("hello Ann")},
		{engine.NewFace(1)},
	}
	wantName := []string{"greet", "face"}
	for i, segs := range msgs {
		res, err := eng.Evaluate(segs)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if len(res.Matches) != 1 || res.Matches[0].Name != wantName[i] {
			t.Fatalf("msg %d: matches = %+v, want %s", i, res.Matches, wantName[i])
		}
	}
}

func TestPrefilterAlwaysPassCommands(t *testing.T) {
	// command thuần tham số không có literal để quét: luôn cho qua
	cmds := []*command.Command{
		mustCommand(t, "any", "[...all]"),
		mustCommand(t, "ping", "ping"),
	}
	pf := PrefilterFromCommands(cmds)

	got := pf.CandidateCommands("unrelated message")
	if !got[0] {
		t.Fatalf("literal-free command must always pass: %v", got)
	}
	if got[1] {
		t.Fatalf("ping must still be filtered: %v", got)
	}
	if pf.Stats().AlwaysPassCount != 1 {
		t.Fatalf("AlwaysPassCount = %d, want 1", pf.Stats().AlwaysPassCount)
	}
}

func TestPrefilterUnscannablePatternsExcluded(t *testing.T) {
	// literal chứa quote/backslash có thể bị JSON-escape trong text quét:
	// loại khỏi automaton, command rơi vào nhóm luôn cho qua
	cmds := []*command.Command{
		mustCommand(t, "quoted", `say \"x\"`),
	}
	pf := PrefilterFromCommands(cmds)

	if pf.Stats().PatternCount != 0 {
		t.Fatalf("unscannable pattern leaked into automaton: %+v", pf.Stats())
	}
	if got := pf.CandidateCommands("anything"); got != nil && !got[0] {
		t.Fatalf("unscannable command must always pass: %v", got)
	}
}

func TestPrefilterHTMLCharacterLiterals(t *testing.T) {
	// literal chứa < > & nằm trong data của segment khác text: text quét
	// phải giữ nguyên các ký tự này (không HTML-escape), nếu không command
	// bị loại dù matcher đầy đủ sẽ khớp
	for _, value := range []string{"<b>", "a&b", "x>y"} {
		cmd := mustCommand(t, "sticker", "{sticker:"+value+"}")
		cmd.WithFieldMapping(map[string][]string{"sticker": {"name"}})
		eng, err := FromCommands([]*command.Command{cmd}, engine.DefaultEngineConfig())
		if err != nil {
			t.Fatalf("FromCommands: %v", err)
		}

		seg := engine.NewSegment("sticker", map[string]any{"name": value})
		res, err := eng.Evaluate([]engine.Segment{seg})
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if len(res.Matches) != 1 {
			t.Fatalf("value %q: prefilter dropped a matching command: got %d matches", value, len(res.Matches))
		}
	}
}

func TestPrefilterHitCountSkipsAlwaysPass(t *testing.T) {
	cmds := []*command.Command{
		mustCommand(t, "any", "[...all]"),
		mustCommand(t, "ping", "ping"),
	}
	eng, err := FromCommands(cmds, engine.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("FromCommands: %v", err)
	}
	if _, err := eng.Evaluate([]engine.Segment{engine.NewText("ping")}); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// command luôn-cho-qua không được tính là hit của automaton
	_, hits, misses := eng.Stats()
	if hits != 1 {
		t.Fatalf("prefilterHits = %d, want 1 (ping only)", hits)
	}
	if misses != 0 {
		t.Fatalf("prefilterMisses = %d, want 0", misses)
	}
}

func TestPrefilterDisabledConfig(t *testing.T) {
	pf := PrefilterWithConfig([]*command.Command{mustCommand(t, "p", "ping")}, DisabledPrefilterConfig())
	if pf.CandidateCommands("ping") != nil {
		t.Fatalf("disabled prefilter must return nil (evaluate all)")
	}
}

func TestPrefilterDedupesSharedPatterns(t *testing.T) {
	cmds := []*command.Command{
		mustCommand(t, "a", "go fast"),
		mustCommand(t, "b", "go fast"),
	}
	pf := PrefilterFromCommands(cmds)
	if pf.Stats().PatternCount != 1 {
		t.Fatalf("PatternCount = %d, want 1 (dedupe)", pf.Stats().PatternCount)
	}
	got := pf.CandidateCommands("please go fast now")
	if !got[0] || !got[1] {
		t.Fatalf("both commands must be candidates: %v", got)
	}
}

func TestPrefilterStatsHeuristics(t *testing.T) {
	var cmds []*command.Command
	for _, p := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		cmds = append(cmds, mustCommand(t, p, p))
	}
	pf := PrefilterFromCommands(cmds)
	stats := pf.Stats()
	if stats.PatternCount != 5 || stats.CommandCount != 5 {
		t.Fatalf("stats = %+v", stats)
	}
	if !stats.IsEffective() {
		t.Fatalf("5 distinct patterns, no always-pass: should be effective: %+v", stats)
	}
	if stats.MemoryUsage <= 0 {
		t.Fatalf("memory estimate missing")
	}
}
