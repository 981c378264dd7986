package commands

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang/command"
	"github.com/PhucNguyen204/OneBot_V2/pkg/onebot"
)

func isYAML(p string) bool {
	l := strings.ToLower(p)
	return strings.HasSuffix(l, ".yml") || strings.HasSuffix(l, ".yaml")
}

func LoadDirRecursive(root string) ([]onebot.CommandSpec, error) {
	var out []onebot.CommandSpec
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil { return err }
		if d.IsDir() || !isYAML(p) { return nil }
		b, err := os.ReadFile(p); if err != nil { return err }
		cs, err := onebot.LoadCommandYAML(b); if err != nil { return err }
		out = append(out, cs)
		return nil
	})
	return out, err
}

// Compile biên dịch các spec thành command, áp field overrides nếu có.
func Compile(specs []onebot.CommandSpec) ([]*command.Command, error) {
	out := make([]*command.Command, 0, len(specs))
	for _, cs := range specs {
		c, err := command.New(cs.Name, cs.Pattern)
		if err != nil { return nil, err }
		if ov := cs.FieldOverrides(); ov != nil {
			c = c.WithFieldMapping(ov)
		}
		out = append(out, c)
	}
	return out, nil
}
