package onebot

import (
	"reflect"
	"testing"
)

func TestLoadCommandYAML(t *testing.T) {
	doc := `
name: roll
pattern: "roll <dice> [n:number=1]"
description: roll some dice
reply: "you rolled {result}"
fields:
  face: id
  image:
    - file
    - url
`
	cs, err := LoadCommandYAML([]byte(doc))
	if err != nil {
		t.Fatalf("LoadCommandYAML: %v", err)
	}
	if cs.Name != "roll" || cs.Pattern != "roll <dice> [n:number=1]" {
		t.Fatalf("spec: %+v", cs)
	}

	// scalar và sequence đều ra danh sách field
	want := map[string][]string{
		"face":  {"id"},
		"image": {"file", "url"},
	}
	if got := cs.FieldOverrides(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FieldOverrides = %v, want %v", got, want)
	}
}

func TestLoadCommandYAMLValidation(t *testing.T) {
	cases := []string{
		`pattern: x`,               // thiếu name
		`name: x`,                  // thiếu pattern
		"name: x\npattern: p\nfields:\n  face: []\n", // field list rỗng
		`{broken`, // YAML hỏng
	}
	for _, doc := range cases {
		if _, err := LoadCommandYAML([]byte(doc)); err == nil {
			t.Fatalf("LoadCommandYAML(%q) must fail", doc)
		}
	}
}

func TestLoadCommandYAMLRejectsMapField(t *testing.T) {
	doc := "name: x\npattern: p\nfields:\n  face:\n    nested: map\n"
	if _, err := LoadCommandYAML([]byte(doc)); err == nil {
		t.Fatalf("mapping-valued field must fail")
	}
}

func TestFieldOverridesEmpty(t *testing.T) {
	cs, _ := LoadCommandYAML([]byte("name: x\npattern: p\n"))
	if cs.FieldOverrides() != nil {
		t.Fatalf("no fields must yield nil overrides")
	}
}
