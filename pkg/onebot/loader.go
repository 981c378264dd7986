package onebot

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldList nhận cả hai dạng YAML: một field đơn ("id") hoặc danh sách ưu
// tiên (["file", "url"]).
type FieldList []string

func (f *FieldList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*f = FieldList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := node.Decode(&ss); err != nil {
			return err
		}
		*f = FieldList(ss)
		return nil
	default:
		return fmt.Errorf("field mapping must be string or list, got yaml kind %d", node.Kind)
	}
}

// CommandSpec là định nghĩa một command trong file YAML.
type CommandSpec struct {
	Name        string               `yaml:"name"`
	Pattern     string               `yaml:"pattern"`
	Description string               `yaml:"description"`
	Fields      map[string]FieldList `yaml:"fields"`
	Reply       string               `yaml:"reply"`
}

// LoadCommandYAML parse và validate một định nghĩa command.
func LoadCommandYAML(b []byte) (CommandSpec, error) {
	var cs CommandSpec
	if err := yaml.Unmarshal(b, &cs); err != nil {
		return CommandSpec{}, err
	}
	if cs.Name == "" {
		return CommandSpec{}, errors.New("command missing name")
	}
	if cs.Pattern == "" {
		return CommandSpec{}, fmt.Errorf("command %s: missing pattern", cs.Name)
	}
	for typ, fields := range cs.Fields {
		if typ == "" || len(fields) == 0 {
			return CommandSpec{}, fmt.Errorf("command %s: bad field mapping for %q", cs.Name, typ)
		}
	}
	return cs, nil
}

// FieldOverrides chuyển phần fields sang dạng matcher.Merge nhận.
func (cs CommandSpec) FieldOverrides() map[string][]string {
	if len(cs.Fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(cs.Fields))
	for k, v := range cs.Fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}
