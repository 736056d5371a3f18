package session

import (
	"strings"

	"github.com/pion/webrtc/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rosaguta/DIV-C-Server/internal/version"
)

// Data channel frame types.
const (
	FrameHello = "hello"
	FrameText  = "text"
)

// Frame is the envelope for every data channel message between peers.
type Frame struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// HelloPayload introduces a peer once its channel opens.
type HelloPayload struct {
	Name    string `msgpack:"name"`
	Version string `msgpack:"version"`
}

// TextPayload is one chat line.
type TextPayload struct {
	Body string `msgpack:"body"`
}

// DecodePayload decodes the frame payload into v.
func (f Frame) DecodePayload(v any) error {
	return msgpack.Unmarshal(f.Payload, v)
}

// NewFrame creates a Frame with the given type and payload.
func NewFrame(t string, payload any) (Frame, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: t, Payload: b}, nil
}

// EncodeFrame builds and serialises a frame.
func EncodeFrame(t string, payload any) ([]byte, error) {
	f, err := NewFrame(t, payload)
	if err != nil {
		return nil, NewError("create frame", err)
	}
	data, err := msgpack.Marshal(f)
	if err != nil {
		return nil, NewError("marshal frame", err)
	}
	return data, nil
}

// ParseFrame decodes a raw data channel message.
func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, NewError("parse frame", err)
	}
	return &f, nil
}

func sendFrame(dc *webrtc.DataChannel, t string, payload any) error {
	if dc == nil || dc.ReadyState() != webrtc.DataChannelStateOpen {
		return ErrChannelNotOpen
	}
	data, err := EncodeFrame(t, payload)
	if err != nil {
		return err
	}
	return dc.Send(data)
}

func hello(name string) HelloPayload {
	return HelloPayload{
		Name:    name,
		Version: strings.TrimPrefix(version.Version, "v"),
	}
}
