package onebot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	engine "github.com/PhucNguyen204/OneBot_V2/engine_onebot_by_golang"
)

// Self định danh bot trên platform (OneBot12 `self`).
type Self struct {
	Platform string `json:"platform"`
	UserID   string `json:"user_id"`
}

// Event là một event OneBot12; core chỉ quan tâm message event nhưng giữ đủ
// field chung để ingest mọi loại.
type Event struct {
	ID         string           `json:"id"`
	Time       float64          `json:"time"`
	Type       string           `json:"type"`
	DetailType string           `json:"detail_type"`
	SubType    string           `json:"sub_type"`
	Self       Self             `json:"self"`
	Message    []engine.Segment `json:"message,omitempty"`
	AltMessage string           `json:"alt_message,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
	GroupID    string           `json:"group_id,omitempty"`
}

// DecodeEvent parse một event OneBot12.
func DecodeEvent(b []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var ev Event
	if err := dec.Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, errors.New("event missing type")
	}
	for i := range ev.Message {
		if ev.Message[i].Type == "" {
			return Event{}, fmt.Errorf("message segment %d: missing type", i)
		}
		if ev.Message[i].Data == nil {
			ev.Message[i].Data = map[string]any{}
		}
	}
	return ev, nil
}

// IsMessage: event có mang message segments để dispatch hay không.
func (e Event) IsMessage() bool {
	return e.Type == "message" && len(e.Message) > 0
}

// Segments trả về message segments của event.
func (e Event) Segments() []engine.Segment { return e.Message }
