// Package apierr classifies the error bodies the backend sends back.
//
// The backend answers errors in several shapes: a bare string, {"detail": "..."},
// {"detail": [{"msg": "..."}, ...]} for validation failures, or {"message": "..."}.
// Parse turns a body into a Payload tagged with its shape, and Message renders
// the one line shown to the operator.
package apierr

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindDetail
	KindDetailList
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindDetail:
		return "detail"
	case KindDetailList:
		return "detail_list"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Payload is a classified error body. Text is set for KindText, KindDetail
// and KindMessage; Items for KindDetailList.
type Payload struct {
	Kind  Kind
	Text  string
	Items []string
}

type envelope struct {
	Detail  json.RawMessage `json:"detail"`
	Message json.RawMessage `json:"message"`
}

// Parse classifies body. Shapes are tried in order: raw string, detail string,
// detail list, message. An empty detail falls through to message; a detail of
// any other type makes the payload unknown.
func Parse(body []byte) Payload {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Payload{Kind: KindUnknown}
	}

	if !json.Valid(trimmed) {
		return Payload{Kind: KindText, Text: string(trimmed)}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil || s == "" {
			return Payload{Kind: KindUnknown}
		}
		return Payload{Kind: KindText, Text: s}
	case '{':
	default:
		return Payload{Kind: KindUnknown}
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Payload{Kind: KindUnknown}
	}

	if present(env.Detail) {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil {
			if s != "" {
				return Payload{Kind: KindDetail, Text: s}
			}
		} else {
			var items []json.RawMessage
			if err := json.Unmarshal(env.Detail, &items); err != nil {
				return Payload{Kind: KindUnknown}
			}
			return Payload{Kind: KindDetailList, Items: itemMessages(items)}
		}
	}

	if present(env.Message) {
		var s string
		if err := json.Unmarshal(env.Message, &s); err == nil && s != "" {
			return Payload{Kind: KindMessage, Text: s}
		}
	}

	return Payload{Kind: KindUnknown}
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// itemMessages renders each validation item as its msg, or as compact JSON
// when it has no usable msg.
func itemMessages(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var withMsg struct {
			Msg any `json:"msg"`
		}
		if err := json.Unmarshal(item, &withMsg); err == nil {
			if s, ok := withMsg.Msg.(string); ok && s != "" {
				out = append(out, s)
				continue
			}
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, item); err != nil {
			out = append(out, string(item))
			continue
		}
		out = append(out, buf.String())
	}
	return out
}

// Message renders p, or returns fallback when p has nothing to show.
func (p Payload) Message(fallback string) string {
	var msg string
	switch p.Kind {
	case KindText, KindDetail, KindMessage:
		msg = p.Text
	case KindDetailList:
		msg = strings.Join(p.Items, ", ")
	}
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
