package dispatch

import (
	"errors"
	"strings"
	"testing"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/command"
	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/matcher"
)

func mustCommand(t *testing.T, name, pattern string) *command.Command {
	t.Helper()
	cmd, err := command.New(name, pattern)
	if err != nil {
		t.Fatalf("command %s: %v", name, err)
	}
	return cmd
}

func TestEvaluateCollectsAllMatches(t *testing.T) {
	cmds := []*command.Command{
		mustCommand(t, "greet", "hello <name>"),
		mustCommand(t, "other", "bye"),
		mustCommand(t, "prefix", "hello "),
	}
	eng, err := FromCommands(cmds, engine.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("FromCommands: %v", err)
	}

	res, err := eng.Evaluate([]engine.Segment{engine.NewText("hello Ann")})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("matches = %d, want 2 (greet + prefix)", len(res.Matches))
	}
	names := map[string]bool{}
	for _, m := range res.Matches {
		names[m.Name] = true
	}
	if !names["greet"] || !names["prefix"] {
		t.Fatalf("wrong match set: %v", names)
	}
}

func TestEvaluateHandlerValues(t *testing.T) {
	cmd := mustCommand(t, "greet", "hello <name>")
	cmd.Handle(func(out *matcher.Outcome) (any, error) {
		v, _ := out.Param("name")
		return "hi " + v.(string), nil
	})
	eng, _ := FromCommands([]*command.Command{cmd}, engine.DefaultEngineConfig())

	res, err := eng.Evaluate([]engine.Segment{engine.NewText("hello Bob")})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Matches) != 1 || len(res.Matches[0].Values) != 1 || res.Matches[0].Values[0] != "hi Bob" {
		t.Fatalf("unexpected result: %+v", res.Matches)
	}
}

func TestEvaluateHandlerErrorFailsFast(t *testing.T) {
	boom := errors.New("boom")
	bad := mustCommand(t, "bad", "go")
	bad.Handle(func(out *matcher.Outcome) (any, error) { return nil, boom })
	after := mustCommand(t, "after", "go")
	ran := false
	after.Handle(func(out *matcher.Outcome) (any, error) { ran = true; return nil, nil })

	eng, _ := FromCommands([]*command.Command{bad, after}, engine.DefaultEngineConfig())
	_, err := eng.Evaluate([]engine.Segment{engine.NewText("go")})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if ran {
		t.Fatalf("evaluation must stop at the failing command")
	}
}

func TestEvaluateBatch(t *testing.T) {
	eng, _ := FromCommands([]*command.Command{mustCommand(t, "p", "ping")}, engine.DefaultEngineConfig())
	results, err := eng.EvaluateBatch([][]engine.Segment{
		{engine.NewText("ping")},
		{engine.NewText("pong")},
	})
	if err != nil {
		t.Fatalf("EvaluateBatch: %v", err)
	}
	if len(results) != 2 || len(results[0].Matches) != 1 || len(results[1].Matches) != 0 {
		t.Fatalf("unexpected batch results: %+v", results)
	}
}

func TestMaxCommandsLimit(t *testing.T) {
	cfg := engine.DefaultEngineConfig().WithMaxCommands(1)
	cmds := []*command.Command{
		mustCommand(t, "a", "a"),
		mustCommand(t, "b", "b"),
	}
	if _, err := FromCommands(cmds, cfg); err == nil {
		t.Fatalf("expected too-many-commands error")
	}
}

func TestEngineAccessors(t *testing.T) {
	eng, _ := FromCommands([]*command.Command{mustCommand(t, "a", "a")}, engine.DevelopmentConfig())
	if eng.CommandCount() != 1 {
		t.Fatalf("CommandCount = %d", eng.CommandCount())
	}
	if !eng.ContainsCommand("a") || eng.ContainsCommand("zz") {
		t.Fatalf("ContainsCommand wrong")
	}
	if eng.Config().Strategy != engine.ExecutionDevelopment {
		t.Fatalf("Config lost")
	}

	var nilEngine *Engine
	if nilEngine.CommandCount() != 0 || nilEngine.ContainsCommand("a") {
		t.Fatalf("nil engine accessors must be safe")
	}
}

func TestScanText(t *testing.T) {
	segs := []engine.Segment{
		engine.NewText("hello"),
		engine.NewFace(1),
	}
	text := scanText(segs)
	if !strings.HasPrefix(text, "hello\n") {
		t.Fatalf("raw text missing: %q", text)
	}
	// JSON của message phải có mặt để bắt giá trị trong data của segment khác
	if !strings.Contains(text, `"face"`) {
		t.Fatalf("serialized form missing: %q", text)
	}
}

func TestScanTextKeepsHTMLCharacters(t *testing.T) {
	// < > & phải xuất hiện nguyên văn trong JSON quét; dạng escape u003c
	// của json.Marshal mặc định làm automaton trượt pattern chứa chúng
	segs := []engine.Segment{
		engine.NewSegment("sticker", map[string]any{"name": "<b>&c"}),
	}
	text := scanText(segs)
	if !strings.Contains(text, `"name":"<b>&c"`) {
		t.Fatalf("scan text must keep < > & literal: %q", text)
	}
	if strings.Contains(text, "u003c") {
		t.Fatalf("scan text must not HTML-escape: %q", text)
	}
}
