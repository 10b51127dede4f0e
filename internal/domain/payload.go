package domain

import (
	"encoding/json"
	"fmt"
)

// Control message types. Only MsgParamUpdate triggers behavior.
const (
	MsgParamUpdate = 1
)

// PayloadKind discriminates the variants of Payload.
type PayloadKind int

const (
	// KindFrame carries an input frame.
	KindFrame PayloadKind = iota + 1
	// KindControl carries a control message.
	KindControl
	// KindStop is the sentinel that tells a worker to exit.
	KindStop
)

// String returns a human-readable representation of the kind.
func (k PayloadKind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindControl:
		return "control"
	case KindStop:
		return "stop"
	default:
		return "unknown"
	}
}

// ControlMessage is a structured message received as a text frame.
type ControlMessage struct {
	Type   int
	Params ParamSet
}

// Recognized reports whether the message type triggers any behavior.
// Other types are forward-compatible no-ops.
func (m ControlMessage) Recognized() bool {
	return m.Type == MsgParamUpdate
}

// controlWire is the JSON layout of a control message:
// {"type": int, "prompt": string, "seed": int, "steps": int, "strength": number}.
type controlWire struct {
	Type *int `json:"type"`
	ParamSet
}

// DecodeControl parses a JSON control message. Fields that are omitted keep the
// values from defaults. Param ranges are only validated for MsgParamUpdate.
func DecodeControl(data []byte, defaults ParamSet) (ControlMessage, error) {
	w := controlWire{ParamSet: defaults}
	if err := json.Unmarshal(data, &w); err != nil {
		return ControlMessage{}, fmt.Errorf("%w: decode control: %v", ErrProtocol, err)
	}
	if w.Type == nil {
		return ControlMessage{}, fmt.Errorf("%w: control message without type", ErrProtocol)
	}

	msg := ControlMessage{Type: *w.Type, Params: w.ParamSet}
	if msg.Recognized() {
		if err := msg.Params.Validate(); err != nil {
			return ControlMessage{}, err
		}
	}
	return msg, nil
}

// Payload is the closed variant delivered from a connection to its worker.
// Ownership is transient: the mailbox owns it until the worker dequeues it.
type Payload struct {
	Kind    PayloadKind
	Frame   Frame
	Control ControlMessage
}

// FramePayload wraps an input frame.
func FramePayload(f Frame) Payload {
	return Payload{Kind: KindFrame, Frame: f}
}

// ControlPayload wraps a control message.
func ControlPayload(m ControlMessage) Payload {
	return Payload{Kind: KindControl, Control: m}
}

// StopPayload returns the sentinel payload.
func StopPayload() Payload {
	return Payload{Kind: KindStop}
}
