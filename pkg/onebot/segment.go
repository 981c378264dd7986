package onebot

import (
	"bytes"
	"encoding/json"
	"fmt"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
)

// DecodeMessage parse một mảng segment OneBot12 [{type,data},...] thành
// []engine.Segment. Số được giữ dạng json.Number để stringify không mất chữ số.
func DecodeMessage(b []byte) ([]engine.Segment, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var segs []engine.Segment
	if err := dec.Decode(&segs); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	for i := range segs {
		if segs[i].Type == "" {
			return nil, fmt.Errorf("segment %d: missing type", i)
		}
		if segs[i].Data == nil {
			segs[i].Data = map[string]any{}
		}
	}
	return segs, nil
}

// EncodeMessage serialize segment về wire shape OneBot12.
func EncodeMessage(segs []engine.Segment) ([]byte, error) {
	return json.Marshal(segs)
}
