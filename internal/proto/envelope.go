// Package proto implements the envelope-and-body wire codec shared by
// every workload: parsing a line into an Envelope, rendering one back
// to a line, and the request/reply body shaping rules (msg_id,
// in_reply_to, "<type>_ok").
package proto

import (
	"encoding/json"
	"fmt"

	"maelstrom-node/internal/ids"
)

// Body is the untyped inner payload of an Envelope: a flat JSON object
// carrying "type", optional "msg_id", optional "in_reply_to", and
// whatever workload-specific fields that type requires. The codec
// layer never interprets unknown "type" values as errors; handlers do.
type Body map[string]any

// Type returns the body's "type" field, if present and a string.
func (b Body) Type() (string, bool) {
	v, ok := b["type"].(string)
	return v, ok
}

// MsgID returns the body's "msg_id" field, if present and numeric.
func (b Body) MsgID() (uint64, bool) {
	return numericField(b, "msg_id")
}

// InReplyTo returns the body's "in_reply_to" field, if present and
// numeric.
func (b Body) InReplyTo() (uint64, bool) {
	return numericField(b, "in_reply_to")
}

func numericField(b Body, key string) (uint64, bool) {
	v, ok := b[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case uint64:
		return n, true
	case int:
		return uint64(n), true
	case int64:
		return uint64(n), true
	case float64:
		return uint64(n), true
	case json.Number:
		u, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return uint64(u), true
	default:
		return 0, false
	}
}

// Decode round-trips b's fields into target, the "permissive" decode
// the spec calls for: an unrecognized type is not a codec-layer error,
// only a mismatch between the body's fields and target's shape is.
func Decode(b Body, target any) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("proto: encode body: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("proto: decode body: %w", err)
	}
	return nil
}

// Envelope is the outer message: {src, dest, body}.
type Envelope struct {
	Src  ids.PeerID `json:"src"`
	Dest ids.PeerID `json:"dest"`
	Body Body       `json:"body"`
}

// ParseLine parses a single line of input (without its trailing
// newline) into an Envelope.
func ParseLine(line []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(line, &e); err != nil {
		return Envelope{}, fmt.Errorf("proto: parse line: %w", err)
	}
	return e, nil
}

// Render serializes e as a single line, without a trailing newline.
func (e Envelope) Render() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("proto: render envelope: %w", err)
	}
	return raw, nil
}

// MalformedRequestError reports why reply construction failed; callers
// surface it to the runtime's logger rather than to the peer, since by
// definition there is no well-formed request to reply to.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("proto: malformed request: %s", e.Reason)
}

// payloadFields marshals payload and asserts it is a JSON object,
// returning its fields so they can be merged into a Body.
func payloadFields(payload any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("payload does not serialize to an object: %w", err)
	}
	return fields, nil
}

// NewRequest builds an outbound request envelope with a fresh msg_id
// already filled in.
func NewRequest(src, dest ids.PeerID, msgID ids.MessageID, typ string, payload any) (Envelope, error) {
	fields, err := payloadFields(payload)
	if err != nil {
		return Envelope{}, &MalformedRequestError{Reason: err.Error()}
	}
	body := Body{}
	for k, v := range fields {
		body[k] = v
	}
	body["type"] = typ
	body["msg_id"] = msgID
	return Envelope{Src: src, Dest: dest, Body: body}, nil
}

// ReplyFor builds the reply to request carrying payload's fields, per
// the rules in spec.md §4.1: in_reply_to is the request's msg_id, type
// is "<request type>_ok", and src/dest are swapped. It fails with a
// MalformedRequestError when request has no msg_id, its type is
// missing or not a string, or payload does not serialize to an object.
func ReplyFor(request Envelope, payload any) (Envelope, error) {
	msgID, ok := request.Body.MsgID()
	if !ok {
		return Envelope{}, &MalformedRequestError{Reason: "request has no msg_id"}
	}
	requestType, ok := request.Body.Type()
	if !ok {
		return Envelope{}, &MalformedRequestError{Reason: "request type is missing or not a string"}
	}
	fields, err := payloadFields(payload)
	if err != nil {
		return Envelope{}, &MalformedRequestError{Reason: err.Error()}
	}

	body := Body{}
	for k, v := range fields {
		body[k] = v
	}
	body["in_reply_to"] = msgID
	body["type"] = requestType + "_ok"

	return Envelope{Src: request.Dest, Dest: request.Src, Body: body}, nil
}

// ErrorReplyFor builds an "error" reply envelope carrying code/text.
func ErrorReplyFor(request Envelope, errBody any) (Envelope, error) {
	msgID, ok := request.Body.MsgID()
	if !ok {
		return Envelope{}, &MalformedRequestError{Reason: "request has no msg_id"}
	}
	fields, err := payloadFields(errBody)
	if err != nil {
		return Envelope{}, &MalformedRequestError{Reason: err.Error()}
	}
	body := Body{}
	for k, v := range fields {
		body[k] = v
	}
	body["in_reply_to"] = msgID
	body["type"] = "error"
	return Envelope{Src: request.Dest, Dest: request.Src, Body: body}, nil
}
