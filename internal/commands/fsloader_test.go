package commands

import (
	"os"
	"path/filepath"
	"testing"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDirRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ping.yaml", "name: ping\npattern: ping\n")
	writeFile(t, dir, "sub/greet.yml", "name: greet\npattern: \"hello <name>\"\n")
	writeFile(t, dir, "notes.txt", "ignored")

	specs, err := LoadDirRecursive(dir)
	if err != nil {
		t.Fatalf("LoadDirRecursive: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("specs = %d, want 2", len(specs))
	}
	names := map[string]bool{}
	for _, s := range specs {
		names[s.Name] = true
	}
	if !names["ping"] || !names["greet"] {
		t.Fatalf("missing spec: %v", names)
	}
}

func TestLoadDirRecursiveBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "pattern: no-name\n")
	if _, err := LoadDirRecursive(dir); err == nil {
		t.Fatalf("invalid spec must fail the load")
	}
}

func TestCompile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "v.yaml", "name: video\npattern: \"{video:clip.mp4}\"\nfields:\n  video: file\n")

	specs, err := LoadDirRecursive(dir)
	if err != nil {
		t.Fatalf("LoadDirRecursive: %v", err)
	}
	cmds, err := Compile(specs)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Name != "video" {
		t.Fatalf("cmds: %v", cmds)
	}

	// field override từ YAML phải có hiệu lực khi match
	seg := engine.NewSegment("video", map[string]any{"file": "clip.mp4"})
	if _, ok := cmds[0].Match([]engine.Segment{seg}); !ok {
		t.Fatalf("custom field mapping from YAML must apply")
	}
}

func TestCompileBadPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "name: bad\npattern: \"{oops\"\n")
	specs, err := LoadDirRecursive(dir)
	if err != nil {
		t.Fatalf("LoadDirRecursive: %v", err)
	}
	if _, err := Compile(specs); err == nil {
		t.Fatalf("bad pattern must fail compile")
	}
}
